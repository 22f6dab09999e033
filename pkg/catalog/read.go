package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
)

// ReadNodes decodes nodes from r, which holds either a JSON array or one
// JSON object per line.
func ReadNodes(r io.Reader) ([]Node, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var nodes []Node
		if err := dec.Decode(&nodes); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode node array")
		}
		return nodes, nil
	}

	var nodes []Node
	for line := 1; ; line++ {
		var n Node
		err := dec.Decode(&n)
		if err == io.EOF {
			return nodes, nil
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode node %d", line)
		}
		nodes = append(nodes, n)
	}
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, fmt.Errorf("unread: %w", err)
		}
		return b, nil
	}
}

// FilterType keeps the nodes of type typ. Nodes without a type are treated
// as DefaultNodeType.
func FilterType(nodes []Node, typ string) []Node {
	if typ == "" {
		typ = DefaultNodeType
	}
	var out []Node
	for _, n := range nodes {
		t := n.Type
		if t == "" {
			t = DefaultNodeType
		}
		if t == typ {
			out = append(out, n)
		}
	}
	return out
}
