// src/parsers/factory.go
package parsers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/claimfolio/src/parsers/delimited"
	"github.com/username/claimfolio/src/parsers/spreadsheet"
)

var ErrUnsupportedSource = errors.New("unsupported source")

func GetParser(source string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "csv":
		return delimited.NewParser(), nil
	case "xlsx":
		return spreadsheet.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source '%s': %w", source, ErrUnsupportedSource)
	}
}
