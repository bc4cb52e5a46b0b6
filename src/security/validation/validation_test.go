package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileKind(t *testing.T) {
	csv := strings.NewReader("Trade Date,Activity,Symbol\n2024-01-01,BUY,ABC\n")
	kind, err := DetectFileKind(csv)
	require.NoError(t, err)
	assert.Equal(t, KindCSV, kind)

	rest, err := io.ReadAll(csv)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(rest), "Trade Date"), "reader must be rewound")

	zip := bytes.NewReader(append([]byte("PK\x03\x04"), make([]byte, 64)...))
	kind, err = DetectFileKind(zip)
	require.NoError(t, err)
	assert.Equal(t, KindXLSX, kind)

	_, err = DetectFileKind(bytes.NewReader([]byte{0x7f, 'E', 'L', 'F', 0, 0, 0, 1}))
	assert.Error(t, err)

	_, err = DetectFileKind(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Brokerage note", CleanText("  Brokerage\x00 note\x07 "))
	assert.Equal(t, "a\tb", StripUnprintable("a\tb\x1b"))
}
