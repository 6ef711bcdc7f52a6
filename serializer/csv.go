package serializer

import (
	"bytes"
	"encoding/csv"

	"stockflow/apperr"
)

// CSVSerializer decodes comma-separated payloads. The first record is the
// header row; short records leave trailing cells absent.
type CSVSerializer struct{}

func (CSVSerializer) Decode(raw []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.Decode, err, "malformed csv payload")
	}
	if len(records) == 0 {
		return nil, apperr.New(apperr.Decode, "csv payload has no header row")
	}

	table := &Table{Columns: records[0]}
	for _, record := range records[1:] {
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
