package serializer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockflow/apperr"
	"stockflow/models"
)

// dateLayouts are tried in order when coercing the date column. Series
// exports use ISO dates; xlsx sheets may render dates in short US form.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/06",
	"01/02/2006",
}

// seriesFromTable coerces a renamed table into the canonical series schema.
// The canonical column set is closed: columns outside it are dropped, and a
// canonical column absent from the source yields all-null values. Only the
// date column is mandatory.
func seriesFromTable(t *Table) (*models.StockSeries, error) {
	dates, err := timeColumn(t, "date")
	if err != nil {
		return nil, err
	}

	series := &models.StockSeries{
		Date:   dates,
		Symbol: stringColumn(t, "symbol"),
		Series: stringColumn(t, "series"),
	}

	floatColumns := []struct {
		name string
		dst  *[]*float64
	}{
		{"previous_close", &series.PreviousClose},
		{"open", &series.Open},
		{"high", &series.High},
		{"low", &series.Low},
		{"last", &series.Last},
		{"close", &series.Close},
		{"vwap", &series.VWAP},
		{"turnover", &series.Turnover},
		{"trades", &series.Trades},
		{"deliverable_percent", &series.DeliverablePercent},
	}
	for _, col := range floatColumns {
		values, err := floatColumn(t, col.name)
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}

	intColumns := []struct {
		name string
		dst  *[]*int64
	}{
		{"volume", &series.Volume},
		{"deliverable_volume", &series.DeliverableVolume},
	}
	for _, col := range intColumns {
		values, err := intColumn(t, col.name)
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}

	return series, nil
}

func timeColumn(t *Table, name string) ([]time.Time, error) {
	cells := t.Column(name)
	if cells == nil {
		return nil, apperr.New(apperr.Decode, "series payload is missing the %q column", name)
	}

	out := make([]time.Time, len(cells))
	for i, cell := range cells {
		if isNull(cell) {
			return nil, apperr.New(apperr.Decode, "series row %d has no %s value", i, name)
		}
		ts, err := parseDate(*cell)
		if err != nil {
			return nil, apperr.Wrap(apperr.Decode, err, "series row %d has a malformed %s value", i, name)
		}
		out[i] = ts
	}
	return out, nil
}

func stringColumn(t *Table, name string) []*string {
	out := make([]*string, len(t.Rows))
	cells := t.Column(name)
	if cells == nil {
		return out
	}

	for i, cell := range cells {
		if isNull(cell) {
			continue
		}
		value := *cell
		out[i] = &value
	}
	return out
}

func floatColumn(t *Table, name string) ([]*float64, error) {
	out := make([]*float64, len(t.Rows))
	cells := t.Column(name)
	if cells == nil {
		return out, nil
	}

	for i, cell := range cells {
		if isNull(cell) {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(*cell), 64)
		if err != nil {
			return nil, apperr.New(apperr.Decode, "series row %d has a malformed %s value %q", i, name, *cell)
		}
		out[i] = &value
	}
	return out, nil
}

func intColumn(t *Table, name string) ([]*int64, error) {
	out := make([]*int64, len(t.Rows))
	cells := t.Column(name)
	if cells == nil {
		return out, nil
	}

	for i, cell := range cells {
		if isNull(cell) {
			continue
		}
		value, err := parseInt(strings.TrimSpace(*cell))
		if err != nil {
			return nil, apperr.New(apperr.Decode, "series row %d has a malformed %s value %q", i, name, *cell)
		}
		out[i] = &value
	}
	return out, nil
}

// parseInt accepts plain integers as well as float renderings of whole
// numbers, which json exports produce for integer columns.
func parseInt(s string) (int64, error) {
	if value, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	value := int64(f)
	if float64(value) != f {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return value, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// isNull reports whether a cell carries no value. Empty cells and the usual
// not-a-number spellings all normalize to null.
func isNull(cell *string) bool {
	if cell == nil {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(*cell)) {
	case "", "nan", "null", "none", "na":
		return true
	default:
		return false
	}
}
