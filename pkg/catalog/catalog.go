// Package catalog defines the catalog entries the enricher reads and the
// source-control records it emits.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// DefaultNodeType is the node type that carries extension metadata.
const DefaultNodeType = "Extension"

// RecordType is the internal type of every emitted record.
const RecordType = "SourceControlInfo"

// recordNamespace seeds the name-based record ids.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://extensions.quarkus.io/source-control-info"))

// Node is one inbound catalog entry.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is the part of a node the enricher reads.
type Metadata struct {
	SourceControl string `json:"sourceControl,omitempty"`
	Maven         *Maven `json:"maven,omitempty"`
}

// Maven holds the artifact coordinates of an extension.
type Maven struct {
	GroupID    string `json:"groupId,omitempty"`
	ArtifactID string `json:"artifactId,omitempty"`
}

// Artifact returns the node's artifact coordinate, zero when absent.
func (n Node) Artifact() ArtifactCoordinate {
	if n.Metadata.Maven == nil {
		return ArtifactCoordinate{}
	}
	return ArtifactCoordinate{GroupID: n.Metadata.Maven.GroupID, ArtifactID: n.Metadata.Maven.ArtifactID}
}

// ArtifactCoordinate identifies a Maven artifact.
type ArtifactCoordinate struct {
	GroupID    string
	ArtifactID string
}

// Key returns "groupId:artifactId", the metadata-file location cache key.
func (a ArtifactCoordinate) Key() string {
	return a.GroupID + ":" + a.ArtifactID
}

// SourceControlID is the comma-joined source-control identifier of a node.
// The repository URL is always the first component; the remaining parts
// distinguish entries that share a repository.
type SourceControlID struct {
	URL   string
	Parts []string
}

// ParseSourceControlID splits raw at commas. The URL is empty when raw is.
func ParseSourceControlID(raw string) SourceControlID {
	if raw == "" {
		return SourceControlID{}
	}
	fields := strings.Split(raw, ",")
	return SourceControlID{URL: fields[0], Parts: fields[1:]}
}

// String returns the exact comma-joined form.
func (id SourceControlID) String() string {
	if len(id.Parts) == 0 {
		return id.URL
	}
	return id.URL + "," + strings.Join(id.Parts, ",")
}

// IsZero reports whether the identifier carries no URL.
func (id SourceControlID) IsZero() bool { return id.URL == "" }

// Contributor is a person who committed to the extension.
type Contributor struct {
	Name          string `json:"name"`
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	URL           string `json:"url"`
}

// SourceControlInfo is the record emitted for each enriched entry.
type SourceControlInfo struct {
	ID       string   `json:"id"`
	Key      string   `json:"key"`
	Internal Internal `json:"internal"`

	URL                 string        `json:"url"`
	Project             string        `json:"project,omitempty"`
	Owner               string        `json:"owner,omitempty"`
	IssuesURL           string        `json:"issuesUrl,omitempty"`
	Issues              *int          `json:"issues,omitempty"`
	Labels              []string      `json:"labels,omitempty"`
	OwnerImageURL       string        `json:"ownerImageUrl,omitempty"`
	ExtensionYamlURL    string        `json:"extensionYamlUrl,omitempty"`
	ExtensionPathInRepo string        `json:"extensionPathInRepo,omitempty"`
	ExtensionRootURL    string        `json:"extensionRootUrl,omitempty"`
	Sponsors            []string      `json:"sponsors,omitempty"`
	Contributors        []Contributor `json:"contributors,omitempty"`
	SocialImage         string        `json:"socialImage,omitempty"`
	ProjectImage        string        `json:"projectImage,omitempty"`
}

// Internal carries bookkeeping for the consuming content graph.
type Internal struct {
	Type          string `json:"type"`
	ContentDigest string `json:"contentDigest"`
}

// RecordID returns the stable record id for a source-control identifier.
// The same identifier always yields the same id across runs.
func RecordID(id SourceControlID) string {
	return uuid.NewSHA1(recordNamespace, []byte(id.String())).String()
}

// Seal sets the id, foreign key and internal fields of r from id. The
// digest covers every other field, so it must be called last.
func (r *SourceControlInfo) Seal(id SourceControlID) {
	r.ID = RecordID(id)
	r.Key = id.String()
	r.Internal = Internal{Type: RecordType}
	r.Internal.ContentDigest = r.digest()
}

func (r *SourceControlInfo) digest() string {
	c := *r
	c.Internal.ContentDigest = ""
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
