package radial

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/matzehuels/radials/pkg/errors"
)

func TestCellNumber(t *testing.T) {
	tests := []struct {
		name   string
		cell   Cell
		want   float64
		wantOK bool
	}{
		{"float", Cell{Value: 12.5}, 12.5, true},
		{"int", Cell{Value: 4}, 4, true},
		{"json number", Cell{Value: json.Number("2e3")}, 2000, true},
		{"padded string", Cell{Value: " 3.5 "}, 3.5, true},
		{"rendered fallback", Cell{Rendered: "7"}, 7, true},
		{"word", Cell{Value: "abc"}, 0, false},
		{"empty string", Cell{Value: ""}, 0, false},
		{"nil", Cell{}, 0, false},
		{"NaN", Cell{Value: math.NaN()}, 0, false},
		{"Inf", Cell{Value: math.Inf(1)}, 0, false},
		{"NaN string", Cell{Value: "NaN"}, 0, false},
		{"bool", Cell{Value: true}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cell.Number()
			if ok != tt.wantOK {
				t.Fatalf("Number() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Number() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Cell{Value: "North"}, "North"},
		{Cell{Value: 1.5}, "1.5"},
		{Cell{Value: 3, Rendered: "three"}, "three"},
		{Cell{}, ""},
	}
	for _, tt := range tests {
		if got := tt.cell.Text(); got != tt.want {
			t.Errorf("Text(%+v) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestCellUnmarshalJSON(t *testing.T) {
	var row Row
	data := `{"region": "North", "sales": 12.5, "share": {"value": 0.25, "rendered": "25%"}}`
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got := row["region"].Text(); got != "North" {
		t.Errorf("region Text() = %q, want %q", got, "North")
	}
	if got, ok := row["sales"].Number(); !ok || got != 12.5 {
		t.Errorf("sales Number() = %v, %v, want 12.5, true", got, ok)
	}
	if got := row["share"].Text(); got != "25%" {
		t.Errorf("share Text() = %q, want %q", got, "25%")
	}
	if got, ok := row["share"].Number(); !ok || got != 0.25 {
		t.Errorf("share Number() = %v, %v, want 0.25, true", got, ok)
	}
}

func rowsOf(pairs ...any) []Row {
	var rows []Row
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, Row{
			"category": Cell{Value: pairs[i]},
			"value":    Cell{Value: pairs[i+1]},
		})
	}
	return rows
}

var singleMetric = FieldRoles{Categories: []string{"category"}, Metrics: []string{"value"}}

func TestNormalize(t *testing.T) {
	rows := rowsOf("A", 50.0, "", 10.0, "B", "30", "C", "n/a", "D", math.Inf(1), "  ", 4.0, "E", 0.0)

	records, dropped, err := Normalize(rows, singleMetric, Requirements{Metrics: 1})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}

	want := []Record{
		{Category: "A", MetricA: 50, Row: 0},
		{Category: "B", MetricA: 30, Row: 2},
		{Category: "E", MetricA: 0, Row: 6},
	}
	if len(records) != len(want) {
		t.Fatalf("len(records) = %d, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("records[%d] = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		rows  []Row
		roles FieldRoles
		req   Requirements
		code  errors.Code
	}{
		{
			name:  "no category fields",
			rows:  rowsOf("A", 1.0),
			roles: FieldRoles{Metrics: []string{"value"}},
			req:   Requirements{Metrics: 1},
			code:  errors.ErrCodeMissingFields,
		},
		{
			name:  "no metric fields",
			rows:  rowsOf("A", 1.0),
			roles: FieldRoles{Categories: []string{"category"}},
			req:   Requirements{Metrics: 1},
			code:  errors.ErrCodeMissingFields,
		},
		{
			name:  "second metric required",
			rows:  rowsOf("A", 1.0),
			roles: singleMetric,
			req:   Requirements{Metrics: 2},
			code:  errors.ErrCodeMissingFields,
		},
		{
			name:  "empty field name",
			rows:  rowsOf("A", 1.0),
			roles: FieldRoles{Categories: []string{""}, Metrics: []string{"value"}},
			req:   Requirements{Metrics: 1},
			code:  errors.ErrCodeMissingFields,
		},
		{
			name:  "all metrics non-numeric",
			rows:  rowsOf("A", "x", "B", "y", "C", ""),
			roles: singleMetric,
			req:   Requirements{Metrics: 1},
			code:  errors.ErrCodeNoValidData,
		},
		{
			name:  "no rows",
			rows:  nil,
			roles: singleMetric,
			req:   Requirements{Metrics: 1},
			code:  errors.ErrCodeNoValidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, _, err := Normalize(tt.rows, tt.roles, tt.req)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Normalize() error = %v, want code %s", err, tt.code)
			}
			if records != nil {
				t.Errorf("Normalize() records = %v, want nil", records)
			}
		})
	}
}

func TestNormalizeTwoMetrics(t *testing.T) {
	roles := FieldRoles{Categories: []string{"team", "quarter"}, Metrics: []string{"perf", "growth"}}
	rows := []Row{
		{"team": {Value: "Red"}, "quarter": {Value: "Q1"}, "perf": {Value: 8.0}, "growth": {Value: 3.0}},
		{"team": {Value: "Blue"}, "quarter": {Value: "Q1"}, "perf": {Value: 5.0}, "growth": {Value: "-"}},
		{"team": {Value: "Green"}, "quarter": {Value: ""}, "perf": {Value: 5.0}, "growth": {Value: 1.0}},
	}

	t.Run("optional metricB", func(t *testing.T) {
		records, dropped, err := Normalize(rows, roles, Requirements{Metrics: 1})
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if dropped != 1 || len(records) != 2 {
			t.Fatalf("Normalize() = %d records, %d dropped, want 2, 1", len(records), dropped)
		}
		if !records[0].HasMetricB || records[0].MetricB != 3 || records[0].Group != "Q1" {
			t.Errorf("records[0] = %+v, want metricB 3 in group Q1", records[0])
		}
		if records[1].HasMetricB {
			t.Errorf("records[1].HasMetricB = true, want false")
		}
	})

	t.Run("required metricB", func(t *testing.T) {
		records, dropped, err := Normalize(rows, roles, Requirements{Metrics: 2})
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if dropped != 2 || len(records) != 1 || records[0].Category != "Red" {
			t.Errorf("Normalize() = %+v, %d dropped, want only Red with 2 dropped", records, dropped)
		}
	})
}
