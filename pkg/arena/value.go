package arena

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the typed form of a completion's raw string input. Exactly one
// of the variant fields is meaningful, selected by Type.
type Value struct {
	Type    UnitType
	Number  float64
	Minutes int
	Bool    bool
	Text    string
}

// ParseValue decodes a raw completion value according to the arena's unit
// type. Time values accept "HH:MM:SS", "MM:SS" or a plain minute count.
func ParseValue(t UnitType, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case UnitNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("not a number: %q", raw)
		}
		return Value{Type: UnitNumber, Number: n}, nil
	case UnitTime:
		m, err := parseMinutes(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: UnitTime, Minutes: m}, nil
	case UnitBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1", "done":
			return Value{Type: UnitBoolean, Bool: true}, nil
		case "false", "no", "n", "0", "":
			return Value{Type: UnitBoolean, Bool: false}, nil
		}
		return Value{}, fmt.Errorf("not a boolean: %q", raw)
	case UnitText, "":
		return Value{Type: UnitText, Text: raw}, nil
	}
	return Value{}, fmt.Errorf("unknown unit type %q", t)
}

func parseMinutes(raw string) (int, error) {
	if m, err := strconv.Atoi(raw); err == nil {
		if m < 0 {
			return 0, fmt.Errorf("negative duration: %q", raw)
		}
		return m, nil
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("not a duration: %q", raw)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("not a duration: %q", raw)
		}
		nums[i] = n
	}
	if len(parts) == 2 {
		// MM:SS, seconds round down
		return nums[0], nil
	}
	// HH:MM:SS
	return nums[0]*60 + nums[1], nil
}

// Raw returns the canonical string encoding stored on the completion.
func (v Value) Raw() string {
	switch v.Type {
	case UnitNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case UnitTime:
		return strconv.Itoa(v.Minutes)
	case UnitBoolean:
		return strconv.FormatBool(v.Bool)
	}
	return v.Text
}

// Display formats the value for presentation, e.g. "5.2 km", "30 minutes",
// "Yes". The label only applies to number values.
func (v Value) Display(unitLabel string) string {
	switch v.Type {
	case UnitNumber:
		s := strconv.FormatFloat(v.Number, 'f', -1, 64)
		if unitLabel != "" {
			return s + " " + unitLabel
		}
		return s
	case UnitTime:
		if v.Minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", v.Minutes)
	case UnitBoolean:
		if v.Bool {
			return "Yes"
		}
		return "No"
	}
	return v.Text
}

// NumericValue coerces a raw completion value to a float for averaging.
// Unparseable input counts as 0 rather than failing the aggregation.
func NumericValue(raw string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return n
}
