package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// The two recognized identifier columns. Files written by the older
// collector use the snake_case name, current collector output uses
// camelCase. A single file sticks with one of the two across its history.
const (
	ControlColumnLegacy  = "usajobs_control_number"
	ControlColumnCurrent = "usajobsControlNumber"
)

// Variant identifies which column naming scheme a table uses.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantLegacy
	VariantCurrent
)

func (v Variant) String() string {
	switch v {
	case VariantLegacy:
		return "legacy"
	case VariantCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Posting holds the fields used to describe a record to an operator.
type Posting struct {
	ControlNumber string
	Title         string
	Agency        string
	OpenDate      string
}

// Table is one loaded dataset file. The variant is resolved once, at load.
type Table struct {
	Path    string
	variant Variant
	columns map[string]int
	rows    [][]string
}

// Load reads a tracked dataset file from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Parse reads a table from raw bytes, e.g. a historical version fetched
// from version control.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parse table: missing header row")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[name] = i
	}

	variant := VariantUnknown
	if _, ok := columns[ControlColumnLegacy]; ok {
		variant = VariantLegacy
	} else if _, ok := columns[ControlColumnCurrent]; ok {
		variant = VariantCurrent
	}

	return &Table{
		variant: variant,
		columns: columns,
		rows:    records[1:],
	}, nil
}

func (t *Table) RowCount() int {
	return len(t.rows)
}

func (t *Table) Variant() Variant {
	return t.variant
}

// ControlNumbers returns the set of record identifiers present in the
// table. Rows with an empty identifier are dropped. The second return is
// false when the table has no recognized identifier column.
func (t *Table) ControlNumbers() (map[string]struct{}, bool) {
	col, ok := t.controlColumn()
	if !ok {
		return map[string]struct{}{}, false
	}

	ids := make(map[string]struct{}, len(t.rows))
	for _, row := range t.rows {
		if col >= len(row) {
			continue
		}
		if id := row[col]; id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, true
}

// Posting resolves a control number back to its row and returns the fields
// an operator needs to triage a removed record. Detail columns follow the
// same naming variants as the identifier column.
func (t *Table) Posting(controlNumber string) (Posting, bool) {
	col, ok := t.controlColumn()
	if !ok {
		return Posting{}, false
	}

	for _, row := range t.rows {
		if col >= len(row) || row[col] != controlNumber {
			continue
		}
		return Posting{
			ControlNumber: controlNumber,
			Title:         t.field(row, "positionTitle", "position_title"),
			Agency:        t.field(row, "hiringAgencyName", "hiring_agency_name"),
			OpenDate:      t.field(row, "positionOpenDate", "position_open_date"),
		}, true
	}
	return Posting{}, false
}

func (t *Table) controlColumn() (int, bool) {
	switch t.variant {
	case VariantLegacy:
		return t.columns[ControlColumnLegacy], true
	case VariantCurrent:
		return t.columns[ControlColumnCurrent], true
	default:
		return 0, false
	}
}

func (t *Table) field(row []string, names ...string) string {
	for _, name := range names {
		if i, ok := t.columns[name]; ok && i < len(row) && row[i] != "" {
			return row[i]
		}
	}
	return "Unknown"
}
