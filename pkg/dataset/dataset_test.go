package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/radials/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffregion, sales ,share\nNorth,12.5,0.4\nSouth,n/a\n\"East, inner\",7,0.1\n"
	tbl, err := ReadCSV(strings.NewReader(in), ',')
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if want := []string{"region", "sales", "share"}; !reflect.DeepEqual(tbl.Fields, want) {
		t.Errorf("Fields = %v, want %v", tbl.Fields, want)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(tbl.Rows))
	}
	if got := tbl.Rows[2]["region"].Text(); got != "East, inner" {
		t.Errorf("quoted cell = %q, want %q", got, "East, inner")
	}
	if _, ok := tbl.Rows[1]["share"]; ok {
		t.Error("short row has a share cell")
	}
	if v, ok := tbl.Rows[0]["sales"].Number(); !ok || v != 12.5 {
		t.Errorf("sales = %v, %v, want 12.5, true", v, ok)
	}
}

func TestReadCSVByteOrderMark(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"with BOM", "\ufeffregion,sales\nNorth,1\n"},
		{"without BOM", "region,sales\nNorth,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tt.in), ',')
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}
			if tbl.Fields[0] != "region" {
				t.Errorf("Fields[0] = %q, want %q", tbl.Fields[0], "region")
			}
			if got := tbl.Rows[0]["region"].Text(); got != "North" {
				t.Errorf("region = %q, want North", got)
			}
		})
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"blank header", "a,,c\n1,2,3\n"},
		{"bad quoting", "a,b\n\"x,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), ',')
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ReadCSV() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantFields []string
		wantRows   int
	}{
		{
			name:       "array",
			in:         `[{"team": "Red", "perf": 8}, {"team": "Blue", "growth": 2}]`,
			wantFields: []string{"growth", "perf", "team"},
			wantRows:   2,
		},
		{
			name:       "table",
			in:         `{"fields": ["team", "perf"], "rows": [{"team": {"value": "Red", "rendered": "Team Red"}, "perf": 8}]}`,
			wantFields: []string{"team", "perf"},
			wantRows:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadJSON(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ReadJSON() error = %v", err)
			}
			if !reflect.DeepEqual(tbl.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, want %v", tbl.Fields, tt.wantFields)
			}
			if len(tbl.Rows) != tt.wantRows {
				t.Errorf("len(Rows) = %d, want %d", len(tbl.Rows), tt.wantRows)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader("  ")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ReadJSON(blank) error = %v, want INVALID_INPUT", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	tsv := filepath.Join(dir, "data.tsv")
	if err := os.WriteFile(tsv, []byte("name\tvalue\nA\t1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadFile(tsv)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0]["value"].Text() != "1" {
		t.Errorf("ReadFile() = %+v", tbl)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.csv")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}

	xlsx := filepath.Join(dir, "data.xlsx")
	os.WriteFile(xlsx, []byte("x"), 0o644)
	if _, err := ReadFile(xlsx); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("xlsx error = %v, want INVALID_FORMAT", err)
	}
}

func TestInferRoles(t *testing.T) {
	in := "region,quarter,sales,growth,notes\nNorth,Q1,10,0.5,\nSouth,Q2,,1.5,ok\n"
	tbl, err := ReadCSV(strings.NewReader(in), ',')
	if err != nil {
		t.Fatal(err)
	}

	roles := InferRoles(tbl)
	if want := []string{"region", "quarter", "notes"}; !reflect.DeepEqual(roles.Categories, want) {
		t.Errorf("Categories = %v, want %v", roles.Categories, want)
	}
	if want := []string{"sales", "growth"}; !reflect.DeepEqual(roles.Metrics, want) {
		t.Errorf("Metrics = %v, want %v", roles.Metrics, want)
	}
}

func TestSelect(t *testing.T) {
	tbl := &Table{Fields: []string{"a", "b", "c"}}
	roles, err := tbl.Select([]string{"c"}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if roles.Categories[0] != "c" || len(roles.Metrics) != 2 {
		t.Errorf("Select() = %+v", roles)
	}

	if _, err := tbl.Select([]string{"zzz"}, nil); !errors.Is(err, errors.ErrCodeMissingFields) {
		t.Errorf("Select(unknown) error = %v, want MISSING_FIELDS", err)
	}
}
