package serializer

import (
	"encoding/json"
	"sort"
	"strconv"

	"stockflow/apperr"
)

// JSONSerializer decodes json payloads in either of the two shapes produced
// by series exports: an array of row objects, or a columnar object mapping
// column names to equal-length arrays.
type JSONSerializer struct{}

func (JSONSerializer) Decode(raw []byte) (*Table, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperr.Wrap(apperr.Decode, err, "malformed json payload")
	}

	switch v := payload.(type) {
	case []interface{}:
		return tableFromRecords(v)
	case map[string]interface{}:
		return tableFromColumns(v)
	default:
		return nil, apperr.New(apperr.Decode, "json payload must be an array of objects or an object of columns")
	}
}

func tableFromRecords(records []interface{}) (*Table, error) {
	seen := map[string]struct{}{}
	rows := make([]map[string]interface{}, 0, len(records))

	for i, record := range records {
		obj, ok := record.(map[string]interface{})
		if !ok {
			return nil, apperr.New(apperr.Decode, "json record %d is not an object", i)
		}
		for key := range obj {
			seen[key] = struct{}{}
		}
		rows = append(rows, obj)
	}

	table := &Table{Columns: sortedKeys(seen)}
	for i, obj := range rows {
		row := make([]*string, len(table.Columns))
		for c, name := range table.Columns {
			value, ok := obj[name]
			if !ok {
				continue
			}
			cell, err := jsonCell(value)
			if err != nil {
				return nil, apperr.Wrap(apperr.Decode, err, "json record %d column %q", i, name)
			}
			row[c] = cell
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func tableFromColumns(columns map[string]interface{}) (*Table, error) {
	seen := map[string]struct{}{}
	for key := range columns {
		seen[key] = struct{}{}
	}

	table := &Table{Columns: sortedKeys(seen)}

	length := -1
	values := make(map[string][]interface{}, len(columns))
	for _, name := range table.Columns {
		cells, ok := columns[name].([]interface{})
		if !ok {
			return nil, apperr.New(apperr.Decode, "json column %q is not an array", name)
		}
		if length >= 0 && len(cells) != length {
			return nil, apperr.New(apperr.Decode, "json column %q has %d values, want %d", name, len(cells), length)
		}
		length = len(cells)
		values[name] = cells
	}

	for i := 0; i < length; i++ {
		row := make([]*string, len(table.Columns))
		for c, name := range table.Columns {
			cell, err := jsonCell(values[name][i])
			if err != nil {
				return nil, apperr.Wrap(apperr.Decode, err, "json column %q row %d", name, i)
			}
			row[c] = cell
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// jsonCell renders a decoded json scalar as an optional string cell.
func jsonCell(value interface{}) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s, nil
	case bool:
		s := strconv.FormatBool(v)
		return &s, nil
	default:
		return nil, apperr.New(apperr.Decode, "unsupported json value of type %T", value)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
