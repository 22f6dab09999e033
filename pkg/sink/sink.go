// Package sink writes emitted source-control records to their consumers.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
)

// Sink receives the records of one run.
type Sink interface {
	Write(ctx context.Context, records []*catalog.SourceControlInfo) error
	Close() error
}

// JSONSink writes records as an indented JSON array.
type JSONSink struct {
	w      io.Writer
	closer io.Closer
}

// NewJSONSink writes to w. Close does not close w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

// CreateJSONFile creates (or truncates) path and writes to it.
func CreateJSONFile(path string) (*JSONSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &JSONSink{w: f, closer: f}, nil
}

// Write encodes records. A nil slice is written as an empty array.
func (s *JSONSink) Write(_ context.Context, records []*catalog.SourceControlInfo) error {
	if records == nil {
		records = []*catalog.SourceControlInfo{}
	}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Close closes the file opened by CreateJSONFile.
func (s *JSONSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ReadJSON loads records written by a JSONSink.
func ReadJSON(path string) ([]*catalog.SourceControlInfo, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "records file %s", path)
	}
	if err != nil {
		return nil, err
	}
	var records []*catalog.SourceControlInfo
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode records file %s", path)
	}
	return records, nil
}

var _ Sink = (*JSONSink)(nil)
