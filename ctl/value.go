package ctl

import (
	"fmt"
	"math"
	"strconv"
)

// Assign stores v into out. out must be a pointer to one of the supported
// kinds. Integer values convert between kinds when they fit.
func Assign(out, v any) error {
	switch dst := out.(type) {
	case *uint64:
		n, err := AsUint64(v)
		if err != nil {
			return err
		}
		*dst = n
	case *uint32:
		n, err := AsUint64(v)
		if err != nil {
			return err
		}
		if n > math.MaxUint32 {
			return fmt.Errorf("%w: %d overflows uint32", ErrBadValue, n)
		}
		*dst = uint32(n)
	case *int:
		n, err := AsInt(v)
		if err != nil {
			return err
		}
		*dst = n
	case *bool:
		b, err := AsBool(v)
		if err != nil {
			return err
		}
		*dst = b
	case *string:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: want string, have %T", ErrBadValue, v)
		}
		*dst = s
	case *float64:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: want float64, have %T", ErrBadValue, v)
		}
		*dst = f
	default:
		return fmt.Errorf("%w: unsupported destination %T", ErrBadValue, out)
	}
	return nil
}

// AsUint64 converts an integer value to uint64.
func AsUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case uintptr:
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrBadValue, n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrBadValue, n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("%w: want integer, have %T", ErrBadValue, v)
	}
}

// AsInt converts an integer value to int.
func AsInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, fmt.Errorf("%w: %d overflows int", ErrBadValue, n)
		}
		return int(n), nil
	default:
		u, err := AsUint64(v)
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows int", ErrBadValue, u)
		}
		return int(u), nil
	}
}

// AsBool converts a boolean value.
func AsBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: want bool, have %T", ErrBadValue, v)
	}
	return b, nil
}

// Format renders a value for display.
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Parse converts command-line text to the kind of sample, which is usually
// the node's current value.
func Parse(text string, sample any) (any, error) {
	switch sample.(type) {
	case bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return b, nil
	case string:
		return text, nil
	case float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return f, nil
	case int:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return n, nil
	case uint32:
		n, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return uint32(n), nil
	default:
		n, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return n, nil
	}
}
