// src/parsers/parser.go
package parsers

import (
	"io"

	"github.com/username/claimfolio/src/models"
)

// Parser turns an activity export into header-keyed rows, in file order.
type Parser interface {
	Parse(file io.Reader) ([]models.RawRow, error)
}
