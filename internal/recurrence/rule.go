package recurrence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"day-planner/internal/apperr"
)

// Rule wraps a Pattern so it can live in one text column as
// {"kind": "...", <variant fields>}.
type Rule struct {
	Pattern Pattern

	// raw and invalid hold a stored column that could not be decoded.
	raw     []byte
	invalid error
}

// Err reports why a stored rule could not be decoded, or nil.
func (r Rule) Err() error {
	return r.invalid
}

func (r Rule) Kind() Kind {
	if r.Pattern == nil {
		return ""
	}
	return r.Pattern.Kind()
}

func (r Rule) MarshalJSON() ([]byte, error) {
	if r.Pattern == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("encode %s pattern: %w", r.Pattern.Kind(), err)
	}
	out, err := sjson.SetBytes(body, "kind", string(r.Pattern.Kind()))
	if err != nil {
		return nil, fmt.Errorf("tag %s pattern: %w", r.Pattern.Kind(), err)
	}
	return out, nil
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return apperr.Validation("malformed recurrence pattern")
	}
	if gjson.ParseBytes(data).Type == gjson.Null {
		*r = Rule{}
		return nil
	}
	kind := Kind(gjson.GetBytes(data, "kind").String())
	var (
		p   Pattern
		err error
	)
	switch kind {
	case KindDaily:
		p = Daily{}
	case KindWeekly:
		var w Weekly
		err = json.Unmarshal(data, &w)
		p = w
	case KindMonthly:
		var m Monthly
		err = json.Unmarshal(data, &m)
		p = m
	case KindYearly:
		var y Yearly
		err = json.Unmarshal(data, &y)
		p = y
	case KindInterval:
		var i Interval
		err = json.Unmarshal(data, &i)
		p = i
	default:
		return apperr.Validation("unrecognized recurrence pattern %q", kind)
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeValidation, fmt.Sprintf("decode %s pattern", kind), err)
	}
	*r = Rule{Pattern: p}
	return nil
}

// Value stores the rule as JSON text. An undecodable rule is written back unchanged.
func (r Rule) Value() (driver.Value, error) {
	if r.Pattern == nil {
		if r.raw != nil {
			return string(r.raw), nil
		}
		return nil, nil
	}
	b, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a rule written by Value. A column holding an unknown or malformed pattern
// still scans: the row stays readable and deletable, and Err carries the validation
// error the evaluator reports.
func (r *Rule) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = Rule{}
		return nil
	case []byte:
		data = append([]byte(nil), v...)
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan recurrence rule: unsupported type %T", src)
	}
	var decoded Rule
	if err := decoded.UnmarshalJSON(data); err != nil {
		*r = Rule{raw: data, invalid: err}
		return nil
	}
	*r = decoded
	return nil
}
