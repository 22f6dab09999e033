package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

// captureStdout redirects status output to a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}
