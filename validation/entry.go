// Package validation checks untyped entry payloads and turns them into typed
// create/update parameters. It never touches the store.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Skryldev/entry-catalog/models"
)

// MinYear is the earliest accepted release year.
const MinYear = 1800

// yearsAhead is how far past the current year an entry may be dated.
const yearsAhead = 10

// Error carries per-field messages for every rule the input failed.
type Error struct {
	Fields map[string][]string `json:"fields"`
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation: invalid fields: " + strings.Join(names, ", ")
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// MaxYear returns the latest accepted release year relative to now.
func MaxYear(now time.Time) int { return now.Year() + yearsAhead }

// Create validates a full entry payload. Every field is required.
func Create(input map[string]any, now time.Time) (models.CreateEntryParams, error) {
	patch, err := check(input, true, now)
	if err != nil {
		return models.CreateEntryParams{}, err
	}
	return models.CreateEntryParams{
		Title:    *patch.Title,
		Type:     *patch.Type,
		Director: *patch.Director,
		Budget:   *patch.Budget,
		Location: *patch.Location,
		Duration: *patch.Duration,
		Year:     *patch.Year,
	}, nil
}

// Update validates a partial entry payload. Absent fields stay nil in the
// result; an empty payload is valid.
func Update(input map[string]any, now time.Time) (models.UpdateEntryParams, error) {
	return check(input, false, now)
}

func check(input map[string]any, full bool, now time.Time) (models.UpdateEntryParams, error) {
	var (
		out  models.UpdateEntryParams
		verr Error
	)

	field := func(name string) (any, bool) {
		v, ok := input[name]
		if !ok && full {
			verr.add(name, label(name)+" is required")
		}
		return v, ok
	}

	for _, f := range []struct {
		name string
		dst  **string
	}{
		{"title", &out.Title},
		{"director", &out.Director},
		{"location", &out.Location},
		{"duration", &out.Duration},
	} {
		v, ok := field(f.name)
		if !ok {
			continue
		}
		if s, ok := checkString(&verr, f.name, v); ok {
			*f.dst = &s
		}
	}

	if v, ok := field("type"); ok {
		s, isString := v.(string)
		if t := models.EntryType(s); isString && t.Valid() {
			out.Type = &t
		} else {
			verr.add("type", fmt.Sprintf("Type must be either %q or %q", models.EntryTypeMovie, models.EntryTypeTVShow))
		}
	}

	if v, ok := field("budget"); ok {
		if n, isNum := number(v); !isNum {
			verr.add("budget", "Budget must be a number")
		} else if n <= 0 {
			verr.add("budget", "Budget must be a positive number")
		} else {
			out.Budget = &n
		}
	}

	if v, ok := field("year"); ok {
		if y, ok := checkYear(&verr, v, now); ok {
			out.Year = &y
		}
	}

	if len(verr.Fields) > 0 {
		return models.UpdateEntryParams{}, &verr
	}
	return out, nil
}

func checkString(verr *Error, name string, v any) (string, bool) {
	s, ok := v.(string)
	switch {
	case !ok:
		verr.add(name, label(name)+" must be a string")
		return "", false
	case s == "":
		verr.add(name, label(name)+" is required")
		return "", false
	}
	return s, true
}

func checkYear(verr *Error, v any, now time.Time) (int, bool) {
	n, ok := number(v)
	if !ok {
		verr.add("year", "Year must be a number")
		return 0, false
	}

	valid := true
	if n != math.Trunc(n) {
		verr.add("year", "Year must be an integer")
		valid = false
	}
	if maxYear := MaxYear(now); n < MinYear || n > float64(maxYear) {
		verr.add("year", fmt.Sprintf("Year must be between %d and %d", MinYear, maxYear))
		valid = false
	}
	if !valid {
		return 0, false
	}
	return int(n), true
}

// number accepts json.Number (decoders using UseNumber) as well as native
// Go numeric values. NaN and infinities are not numbers here.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func label(field string) string {
	return strings.ToUpper(field[:1]) + field[1:]
}
