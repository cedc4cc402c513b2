package odds

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Precision is the number of decimal places kept on converted multipliers.
const Precision = 3

var hundred = decimal.NewFromInt(100)

// InvalidOddsError is returned when a feed value cannot be read as an
// integer American odds value.
type InvalidOddsError struct {
	Value  any
	Reason string
}

func (e *InvalidOddsError) Error() string {
	return fmt.Sprintf("invalid odds value %v: %s", e.Value, e.Reason)
}

// ToDecimal converts American (moneyline style) odds into a decimal
// multiplier that includes the returned stake.
//
//	+150 -> 2.5
//	-200 -> 1.5
func ToDecimal(american int) decimal.Decimal {
	if american >= 0 {
		return decimal.NewFromInt(int64(american)).Add(hundred).Div(hundred).Round(Precision)
	}
	abs := decimal.NewFromInt(int64(-american))
	return abs.Add(hundred).Div(abs).Round(Precision)
}

// Parse reads a single feed value as American odds. Strings, json.Number
// and any numeric type are accepted; floats are truncated.
func Parse(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, &InvalidOddsError{Value: v, Reason: "missing value"}
	case bool:
		return 0, &InvalidOddsError{Value: v, Reason: "boolean is not an odds value"}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, &InvalidOddsError{Value: v, Reason: "not an integer"}
		}
		return checkNonZero(n)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, &InvalidOddsError{Value: v, Reason: "not an integer"}
		}
		return checkNonZero(int(n))
	}

	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, &InvalidOddsError{Value: v, Reason: err.Error()}
	}
	return checkNonZero(n)
}

func checkNonZero(n int) (int, error) {
	if n == 0 {
		return 0, &InvalidOddsError{Value: n, Reason: "zero is not a valid price"}
	}
	return n, nil
}

// Convert parses and converts every value, flattening nested slices and
// arrays depth first, so a whole feed block can be converted in one call.
func Convert(values ...any) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		var err error
		out, err = appendConverted(out, v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendConverted(out []decimal.Decimal, v any) ([]decimal.Decimal, error) {
	if v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				var err error
				out, err = appendConverted(out, rv.Index(i).Interface())
				if err != nil {
					return nil, err
				}
			}
			return out, nil
		}
	}

	american, err := Parse(v)
	if err != nil {
		return nil, err
	}
	return append(out, ToDecimal(american)), nil
}
