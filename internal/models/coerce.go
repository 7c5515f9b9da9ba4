package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrBadTimestamp = errors.New("bad timestamp")

// CoerceTime turns a timestamp that may already be a time value, or may have
// been flattened to RFC 3339 text or epoch milliseconds, into a time.Time.
// Applying it to its own result returns the same value.
func CoerceTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("%w: nil", ErrBadTimestamp)
		}
		return *t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, t)
		}
		return parsed, nil
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrBadTimestamp, t)
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrBadTimestamp, v)
	}
}
