package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/claimfolio/src/logger"
)

const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
)

var zipMagic = []byte("PK\x03\x04")

// DetectFileKind sniffs the first bytes of an activity export and tells whether
// it is a spreadsheet (zip container) or delimited text. The reader is rewound.
func DetectFileKind(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset the read pointer so the parser sees the whole file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}
	if n == 0 {
		return "", fmt.Errorf("file is empty")
	}

	if bytes.HasPrefix(buffer[:n], zipMagic) {
		return KindXLSX, nil
	}

	detected := http.DetectContentType(buffer[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])
	switch detected {
	case "text/plain", "text/csv", "application/csv":
		logger.Get().Debug("File content type (magic bytes) validated", "detectedContentType", detected)
		return KindCSV, nil
	default:
		logger.Get().Warn("Disallowed detected file content type (magic bytes)", "detectedContentType", detected)
		return "", fmt.Errorf("detected file content type '%s' is neither a spreadsheet nor a CSV file", detected)
	}
}
