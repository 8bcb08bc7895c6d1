package runtime

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/macrograph/pkg/domain"
)

// parseValue applies type-directed parsing to a resolved value.
// int and float are parsed leniently from their longest numeric prefix; vectors pass through.
// nil stays nil so that unbound sockets surface at the consuming node.
func parseValue(v any, t domain.ValueType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case domain.ValueTypeInt:
		i, ok := toInt(v)
		if !ok {
			return nil, &domain.InvalidValueError{Value: v, Type: t}
		}
		return i, nil
	case domain.ValueTypeFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, &domain.InvalidValueError{Value: v, Type: t}
		}
		return f, nil
	}
	return v, nil
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case float32:
		return truncate(float64(x))
	case float64:
		return truncate(x)
	case json.Number:
		return ParseIntPrefix(string(x))
	case string:
		return ParseIntPrefix(x)
	}
	if first, ok := firstElement(v); ok {
		return toInt(first)
	}
	return 0, false
}

// truncate drops the fraction and saturates at the int range.
func truncate(f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(math.Trunc(f)), true
}

// firstElement returns the leading component of a vector value. A vector read
// as a number yields its first component, the way its text form "x,y,z" parses.
func firstElement(v any) (any, bool) {
	switch x := v.(type) {
	case domain.Float3:
		return x[0], true
	case domain.Float4:
		return x[0], true
	case []any:
		if len(x) > 0 {
			return x[0], true
		}
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		return ParseFloatPrefix(string(x))
	case string:
		return ParseFloatPrefix(x)
	}
	if first, ok := firstElement(v); ok {
		return toFloat(first)
	}
	return 0, false
}

// ParseIntPrefix parses the longest leading integer of s, after optional whitespace and sign.
// A 0x prefix selects hexadecimal. "3.7" yields 3; "abc" yields false.
// Values beyond the int range saturate.
func ParseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			if neg {
				return math.MinInt, true
			}
			return math.MaxInt, true
		}
		return 0, false
	}
	if neg {
		n = -n
	}
	return int(n), true
}

// ParseFloatPrefix parses the longest leading decimal number of s, after optional whitespace.
// It accepts a sign, a fraction, an exponent and "Infinity". "2.5m" yields 2.5.
func ParseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	digits := 0
	for i < len(s) && isDigit(s[i], 10) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j], 10) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j], 10) {
			for j < len(s) && isDigit(s[j], 10) {
				j++
			}
			i = j
		}
	}

	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		// Out of range exponents still carry a usable ±Inf or 0 from ParseFloat.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// asFloat3 interprets a resolved value as a 3-tuple.
// It accepts domain.Float3 and decoded JSON arrays of exactly three numbers.
func asFloat3(v any) (domain.Float3, bool) {
	switch x := v.(type) {
	case domain.Float3:
		return x, true
	case [3]float64:
		return domain.Float3(x), true
	}
	vals, ok := asNumbers(v, 3)
	if !ok {
		return domain.Float3{}, false
	}
	return domain.Float3{vals[0], vals[1], vals[2]}, true
}

// asFloat4 interprets a resolved value as a 4-tuple.
func asFloat4(v any) (domain.Float4, bool) {
	switch x := v.(type) {
	case domain.Float4:
		return x, true
	case [4]float64:
		return domain.Float4(x), true
	}
	vals, ok := asNumbers(v, 4)
	if !ok {
		return domain.Float4{}, false
	}
	return domain.Float4{vals[0], vals[1], vals[2], vals[3]}, true
}

func asNumbers(v any, n int) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		if len(x) != n {
			return nil, false
		}
		return x, true
	case []any:
		if len(x) != n {
			return nil, false
		}
		out := make([]float64, n)
		for i, e := range x {
			f, ok := asFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

// asFloat accepts numbers only. Strings have already been parsed by their socket type.
func asFloat(v any) (float64, bool) {
	switch v.(type) {
	case string, nil:
		return 0, false
	}
	return toFloat(v)
}

// asInt accepts numbers only, truncating fractional values.
func asInt(v any) (int, bool) {
	switch v.(type) {
	case string, nil:
		return 0, false
	}
	return toInt(v)
}
