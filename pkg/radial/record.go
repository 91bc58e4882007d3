package radial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/radials/pkg/errors"
)

// Cell is one value of a row. Value holds the raw value and Rendered the
// display text the host shows for it; either may be empty.
type Cell struct {
	Value    any    `json:"value,omitempty"`
	Rendered string `json:"rendered,omitempty"`
}

// Text returns the display text of the cell, preferring Rendered.
func (c Cell) Text() string {
	if c.Rendered != "" {
		return c.Rendered
	}
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Number returns the numeric value of the cell and whether it is finite.
// Strings are parsed after trimming whitespace. A nil Value falls back to
// the rendered text.
func (c Cell) Number() (float64, bool) {
	var f float64
	switch v := c.Value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		return parseNumber(v)
	case nil:
		return parseNumber(c.Rendered)
	default:
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UnmarshalJSON accepts either a bare scalar (`12.5`, `"North"`) or an
// object with "value" and "rendered" keys.
func (c *Cell) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		type plain Cell
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*c = Cell(p)
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*c = Cell{Value: v}
	return nil
}

// Row maps field identifiers to cells.
type Row map[string]Cell

// FieldRoles names the category and metric fields of a dataset, in order.
// Categories[0] labels the slices; Categories[1], when present, groups them
// into concentric rings. Metrics[0] is metricA and Metrics[1] is metricB.
type FieldRoles struct {
	Categories []string `json:"categories"`
	Metrics    []string `json:"metrics"`
}

// Requirements states how many metric fields a layout needs.
type Requirements struct {
	Metrics int
}

// Record is one normalized row.
type Record struct {
	Category   string  `json:"category"`
	Group      string  `json:"group,omitempty"`
	MetricA    float64 `json:"metricA"`
	MetricB    float64 `json:"metricB,omitempty"`
	HasMetricB bool    `json:"hasMetricB,omitempty"`
	Row        int     `json:"row"` // index into the input rows
}

// Normalize validates and coerces rows into records.
//
// A row is dropped, and counted, when its category text is empty, when a
// grouping field is configured and its text is empty, or when a required
// metric is missing or not finite. metricB is optional unless req asks for
// two metrics. Normalize fails with MISSING_FIELDS when roles cannot satisfy
// req and with NO_VALID_DATA when every row is dropped.
func Normalize(rows []Row, roles FieldRoles, req Requirements) ([]Record, int, error) {
	need := max(req.Metrics, 1)
	if len(roles.Categories) == 0 {
		return nil, 0, errors.New(errors.ErrCodeMissingFields, "at least one category field is required")
	}
	if len(roles.Metrics) < need {
		return nil, 0, errors.New(errors.ErrCodeMissingFields,
			"%d metric field(s) required, got %d", need, len(roles.Metrics))
	}
	for _, f := range roles.Categories[:min(2, len(roles.Categories))] {
		if err := errors.ValidateFieldName(f); err != nil {
			return nil, 0, err
		}
	}
	for _, f := range roles.Metrics[:min(2, len(roles.Metrics))] {
		if err := errors.ValidateFieldName(f); err != nil {
			return nil, 0, err
		}
	}

	catField := roles.Categories[0]
	groupField := ""
	if len(roles.Categories) > 1 {
		groupField = roles.Categories[1]
	}
	aField := roles.Metrics[0]
	bField := ""
	if len(roles.Metrics) > 1 {
		bField = roles.Metrics[1]
	}

	records := make([]Record, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		rec, ok := normalizeRow(row, catField, groupField, aField, bField, need)
		if !ok {
			dropped++
			continue
		}
		rec.Row = i
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, dropped, errors.New(errors.ErrCodeNoValidData,
			"none of the %d rows has a category and finite %s", len(rows), aField)
	}
	return records, dropped, nil
}

func normalizeRow(row Row, catField, groupField, aField, bField string, need int) (Record, bool) {
	cat := strings.TrimSpace(row[catField].Text())
	if cat == "" {
		return Record{}, false
	}
	var group string
	if groupField != "" {
		if group = strings.TrimSpace(row[groupField].Text()); group == "" {
			return Record{}, false
		}
	}
	a, ok := row[aField].Number()
	if !ok {
		return Record{}, false
	}
	rec := Record{Category: cat, Group: group, MetricA: a}
	if bField != "" {
		b, ok := row[bField].Number()
		if !ok && need > 1 {
			return Record{}, false
		}
		rec.MetricB, rec.HasMetricB = b, ok
	}
	return rec, true
}
