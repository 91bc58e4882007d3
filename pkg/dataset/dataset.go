// Package dataset loads tabular rows for the layout engine from CSV, TSV
// and JSON files.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

// Table is a loaded dataset. Fields lists the columns in file order.
type Table struct {
	Fields []string     `json:"fields"`
	Rows   []radial.Row `json:"rows"`
}

// ReadFile loads a table, choosing the parser by file extension.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, ',')
	case ".tsv", ".tab":
		return ReadCSV(f, '\t')
	case ".json":
		return ReadJSON(f)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported data file %q (want .csv, .tsv or .json)", filepath.Base(path))
	}
}

// ReadCSV parses delimited text whose first record is the header. Every
// cell becomes a string value; numeric parsing happens during
// normalization.
func ReadCSV(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty file: missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if err := errors.ValidateFieldName(header[i]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "header column %d", i+1)
		}
	}

	t := &Table{Fields: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read row %d", len(t.Rows)+2)
		}
		row := make(radial.Row, len(header))
		for i, field := range header {
			if i < len(rec) {
				row[field] = radial.Cell{Value: rec[i]}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadJSON parses either an object {"fields": [...], "rows": [...]} or a
// bare array of row objects. For arrays, fields are the union of row keys
// in sorted order.
func ReadJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read json")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty json document")
	}

	var t Table
	if data[0] == '[' {
		if err := json.Unmarshal(data, &t.Rows); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode rows")
		}
	} else if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode table")
	}

	if len(t.Fields) == 0 {
		seen := map[string]bool{}
		for _, row := range t.Rows {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					t.Fields = append(t.Fields, k)
				}
			}
		}
		sort.Strings(t.Fields)
	}
	return &t, nil
}

// InferRoles guesses field roles: a field is a metric when every
// non-empty cell parses as a finite number, otherwise a category. Both
// lists keep the table's field order.
func InferRoles(t *Table) radial.FieldRoles {
	var roles radial.FieldRoles
	for _, f := range t.Fields {
		numeric, seen := true, false
		for _, row := range t.Rows {
			c, ok := row[f]
			if !ok || strings.TrimSpace(c.Text()) == "" {
				continue
			}
			seen = true
			if _, ok := c.Number(); !ok {
				numeric = false
				break
			}
		}
		if numeric && seen {
			roles.Metrics = append(roles.Metrics, f)
		} else {
			roles.Categories = append(roles.Categories, f)
		}
	}
	return roles
}

// Select keeps the named fields, in the given order, as the table roles.
// Unknown names fail with MISSING_FIELDS.
func (t *Table) Select(categories, metrics []string) (radial.FieldRoles, error) {
	known := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		known[f] = true
	}
	for _, f := range append(append([]string{}, categories...), metrics...) {
		if !known[f] {
			return radial.FieldRoles{}, errors.New(errors.ErrCodeMissingFields,
				"field %q not found (have %s)", f, strings.Join(t.Fields, ", "))
		}
	}
	return radial.FieldRoles{Categories: categories, Metrics: metrics}, nil
}
