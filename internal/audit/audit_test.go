package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ipn_log.txt")
	logger := NewFileLogger(path)

	logger.Event("ipn received: %s", `{"pp_id":"pp_1"}`)
	logger.Event("duplicate ipn detected for pp_id %s", "pp_1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `ipn received: {"pp_id":"pp_1"}`)
	assert.Contains(t, lines[1], "duplicate ipn detected for pp_id pp_1")
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.Event("anything %d", 1)
	})
}
