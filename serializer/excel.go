package serializer

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"stockflow/apperr"
)

// ExcelSerializer decodes xlsx workbooks. Only the first sheet is read; the
// first row is the header row. Cell values are taken as formatted strings,
// matching what the workbook displays.
type ExcelSerializer struct{}

func (ExcelSerializer) Decode(raw []byte) (*Table, error) {
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, err, "malformed xlsx payload")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.New(apperr.Decode, "xlsx workbook has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, err, "failed to read xlsx sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.Decode, "xlsx sheet %q has no header row", sheets[0])
	}

	table := &Table{Columns: rows[0]}
	for _, record := range rows[1:] {
		// GetRows trims trailing empty cells, so short records are expected.
		row := make([]*string, len(table.Columns))
		for i := range table.Columns {
			if i < len(record) {
				value := record[i]
				row[i] = &value
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
