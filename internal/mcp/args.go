package mcp

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

// Args is a decoded tool argument object. Accessors coerce JSON numbers,
// strings and booleans to the requested type and report failures as
// ValidationErrors naming the argument.
type Args map[string]any

// Has reports whether key is present with a non-null value.
func (a Args) Has(key string) bool {
	v, ok := a[key]

	return ok && v != nil
}

// String returns the string value of key, or "" when absent.
func (a Args) String(key string) (string, error) {
	if !a.Has(key) {
		return "", nil
	}

	s, err := cast.ToStringE(a[key])
	if err != nil {
		return "", &errors.ValidationError{Field: key, Err: err}
	}

	return s, nil
}

// RequiredString returns the string value of key and fails when it is
// absent or empty.
func (a Args) RequiredString(key string) (string, error) {
	s, err := a.String(key)
	if err != nil {
		return "", err
	}

	if s == "" {
		return "", &errors.ValidationError{Field: key, Err: errors.ErrMissingArgument}
	}

	return s, nil
}

// Int returns the integer value of key, or def when absent. Fractional
// numbers are rejected.
func (a Args) Int(key string, def int) (int, error) {
	if !a.Has(key) {
		return def, nil
	}

	if f, ok := a[key].(float64); ok && f != float64(int(f)) {
		return 0, &errors.ValidationError{Field: key, Err: fmt.Errorf("%v is not an integer", f)}
	}

	n, err := cast.ToIntE(a[key])
	if err != nil {
		return 0, &errors.ValidationError{Field: key, Err: err}
	}

	return n, nil
}

// RequiredInt returns the integer value of key and fails when it is absent.
func (a Args) RequiredInt(key string) (int, error) {
	if !a.Has(key) {
		return 0, &errors.ValidationError{Field: key, Err: errors.ErrMissingArgument}
	}

	return a.Int(key, 0)
}

// Bool returns the boolean value of key, or def when absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	if !a.Has(key) {
		return def, nil
	}

	b, err := cast.ToBoolE(a[key])
	if err != nil {
		return false, &errors.ValidationError{Field: key, Err: err}
	}

	return b, nil
}
