// Package serializer decodes raw series payloads in one of the supported
// encodings into the canonical column-oriented table. Decoding is a pure
// function over the input bytes; malformed payloads surface a Decode error
// and are never silently skipped.
package serializer

import (
	"stockflow/apperr"
	"stockflow/models"
)

// Serializer decodes a raw byte payload into the format-independent
// intermediate table. One implementation exists per supported file format.
type Serializer interface {
	Decode(raw []byte) (*Table, error)
}

// ForFormat selects the serializer matching a stock's declared file format.
// The format set is closed; an unknown value means the metadata record is
// inconsistent and is reported as an internal failure, not a client error.
func ForFormat(format models.FileFormat) (Serializer, error) {
	switch format {
	case models.FormatCSV:
		return CSVSerializer{}, nil
	case models.FormatExcel:
		return ExcelSerializer{}, nil
	case models.FormatJSON:
		return JSONSerializer{}, nil
	default:
		return nil, apperr.New(apperr.Internal, "no serializer registered for format %q", format)
	}
}

// Normalize decodes raw bytes of the given format, applies the column
// rename map and coerces the result into the canonical series schema.
// Row order follows the source file; no implicit sort is applied.
func Normalize(raw []byte, format models.FileFormat, renames map[string]string) (*models.StockSeries, error) {
	s, err := ForFormat(format)
	if err != nil {
		return nil, err
	}

	table, err := s.Decode(raw)
	if err != nil {
		return nil, err
	}

	table.Rename(renames)

	return seriesFromTable(table)
}
