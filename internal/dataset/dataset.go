package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Sex of the bill payer as recorded in the dataset.
type Sex string

const (
	Male   Sex = "Male"
	Female Sex = "Female"
)

// Smoker indicates whether the party sat in the smoking section.
type Smoker string

const (
	SmokerYes Smoker = "Yes"
	SmokerNo  Smoker = "No"
)

// Day of the week the bill was paid. The reference dataset spells
// Thursday "Thur", so that is the accepted form.
type Day string

const (
	Thur Day = "Thur"
	Fri  Day = "Fri"
	Sat  Day = "Sat"
	Sun  Day = "Sun"
)

// Meal is the time-of-day category ("time" column).
type Meal string

const (
	Lunch  Meal = "Lunch"
	Dinner Meal = "Dinner"
)

// Canonical orderings for grouped output. Maps iterate randomly, so every
// consumer that groups by a dimension walks these instead.
var (
	Sexes   = []Sex{Male, Female}
	Smokers = []Smoker{SmokerYes, SmokerNo}
	Days    = []Day{Thur, Fri, Sat, Sun}
	Meals   = []Meal{Lunch, Dinner}
)

// Record is one restaurant transaction.
type Record struct {
	TotalBill float64
	Tip       float64
	Sex       Sex
	Smoker    Smoker
	Day       Day
	Meal      Meal
	Size      int
}

// TipRate returns the tip as a percentage of the total bill.
func (r Record) TipRate() float64 {
	return r.Tip / r.TotalBill * 100
}

// Table is the full record set, loaded once and read-only afterwards.
type Table struct {
	Source  string
	Records []Record
}

func (t *Table) Len() int { return len(t.Records) }

// SchemaError reports required columns absent from the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// RowError reports a single row that violates the schema. Line is 1-based
// counting the header as line 1.
type RowError struct {
	Line   int
	Column string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: column %q: %s", e.Line, e.Column, e.Reason)
}

var columns = []string{"total_bill", "tip", "sex", "smoker", "day", "time", "size"}

// Load reads a tips CSV into a Table. The header must contain all seven
// required columns; every row must parse cleanly. Any violation is fatal:
// there are no partial results.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Missing: columns}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	t := &Table{Source: filepath.Base(path)}
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// csv.Reader catches short/long rows via FieldsPerRecord.
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		row := Record{}
		if row.TotalBill, err = parseAmount(rec[idx["total_bill"]]); err != nil {
			return nil, &RowError{Line: line, Column: "total_bill", Reason: err.Error()}
		}
		if row.Tip, err = parseAmount(rec[idx["tip"]]); err != nil {
			return nil, &RowError{Line: line, Column: "tip", Reason: err.Error()}
		}
		if row.Sex, err = parseSex(rec[idx["sex"]]); err != nil {
			return nil, &RowError{Line: line, Column: "sex", Reason: err.Error()}
		}
		if row.Smoker, err = parseSmoker(rec[idx["smoker"]]); err != nil {
			return nil, &RowError{Line: line, Column: "smoker", Reason: err.Error()}
		}
		if row.Day, err = parseDay(rec[idx["day"]]); err != nil {
			return nil, &RowError{Line: line, Column: "day", Reason: err.Error()}
		}
		if row.Meal, err = parseMeal(rec[idx["time"]]); err != nil {
			return nil, &RowError{Line: line, Column: "time", Reason: err.Error()}
		}
		if row.Size, err = parseSize(rec[idx["size"]]); err != nil {
			return nil, &RowError{Line: line, Column: "size", Reason: err.Error()}
		}
		t.Records = append(t.Records, row)
	}
	return t, nil
}

func parseAmount(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a decimal amount: %q", v)
	}
	if x < 0 {
		return 0, fmt.Errorf("negative amount: %q", v)
	}
	return x, nil
}

func parseSex(raw string) (Sex, error) {
	switch s := Sex(strings.TrimSpace(raw)); s {
	case Male, Female:
		return s, nil
	default:
		return "", fmt.Errorf("unrecognized value %q (want Male|Female)", raw)
	}
}

func parseSmoker(raw string) (Smoker, error) {
	switch s := Smoker(strings.TrimSpace(raw)); s {
	case SmokerYes, SmokerNo:
		return s, nil
	default:
		return "", fmt.Errorf("unrecognized value %q (want Yes|No)", raw)
	}
}

func parseDay(raw string) (Day, error) {
	switch d := Day(strings.TrimSpace(raw)); d {
	case Thur, Fri, Sat, Sun:
		return d, nil
	default:
		return "", fmt.Errorf("unrecognized value %q (want Thur|Fri|Sat|Sun)", raw)
	}
}

func parseMeal(raw string) (Meal, error) {
	switch m := Meal(strings.TrimSpace(raw)); m {
	case Lunch, Dinner:
		return m, nil
	default:
		return "", fmt.Errorf("unrecognized value %q (want Lunch|Dinner)", raw)
	}
}

func parseSize(raw string) (int, error) {
	v := strings.TrimSpace(raw)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", v)
	}
	if n < 1 {
		return 0, fmt.Errorf("party size must be >= 1, got %d", n)
	}
	return n, nil
}
