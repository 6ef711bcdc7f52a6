package models

import (
	"fmt"
	"strings"
	"time"
)

// FileFormat identifies the encoding of a stock's series file in blob
// storage. The value doubles as the file extension and the key prefix
// segment under which the object is stored.
type FileFormat string

const (
	FormatCSV   FileFormat = "csv"
	FormatExcel FileFormat = "xlsx"
	FormatJSON  FileFormat = "json"
)

// ParseFileFormat validates a raw format string against the supported set.
func ParseFileFormat(s string) (FileFormat, error) {
	switch FileFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatExcel:
		return FormatExcel, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported file format %q", s)
	}
}

// Ext returns the file extension used for series objects of this format.
func (f FileFormat) Ext() string {
	return string(f)
}

// Stock is one metadata record per listed company. Records are created by
// the seeding command and are read-only from the API's perspective.
type Stock struct {
	ID          string     `bson:"-" json:"id"`
	CompanyName string     `bson:"company_name" json:"company_name"`
	Industry    string     `bson:"industry" json:"industry"`
	Symbol      string     `bson:"symbol" json:"symbol"`
	Series      string     `bson:"series" json:"series"`
	ISINCode    string     `bson:"isin_code" json:"isin_code"`
	FileFormat  FileFormat `bson:"file_format" json:"file_format"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	LastUpdated time.Time  `bson:"last_updated" json:"last_updated"`
}

// StockListing is the paginated envelope returned by the listing endpoint.
type StockListing struct {
	Stocks []Stock `json:"stocks"`
	Skip   int64   `json:"skip"`
	Limit  int64   `json:"limit"`
	Total  int64   `json:"total"`
}

// stockFields is the exact set of sortable Stock attribute names. Sort
// inputs must match a member exactly; substring matches are not accepted.
var stockFields = map[string]struct{}{
	"id":           {},
	"company_name": {},
	"industry":     {},
	"symbol":       {},
	"series":       {},
	"isin_code":    {},
	"file_format":  {},
	"created_at":   {},
	"last_updated": {},
}

// IsStockField reports whether name is a Stock attribute usable as a sort key.
func IsStockField(name string) bool {
	_, ok := stockFields[name]
	return ok
}
