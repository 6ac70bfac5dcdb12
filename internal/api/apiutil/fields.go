package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// PathID reads a positive integer path value such as {id}.
func PathID(r *http.Request, name string) (int64, error) {
	value, err := ParsePositiveInt64Field(r.PathValue(name), name)
	if err != nil {
		return 0, FieldError{Field: name, Reason: "must be a positive integer"}
	}
	return value, nil
}

// OptionalQueryInt reads a positive integer query parameter. ok is false when
// the parameter is absent.
func OptionalQueryInt(r *http.Request, name string) (value int, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	parsed, err := ParsePositiveInt64Field(raw, name)
	if err != nil {
		return 0, false, FieldError{Field: name, Reason: "must be a positive integer"}
	}
	return int(parsed), true, nil
}

// ParseDateField validates a YYYY-MM-DD date and returns it normalized.
func ParseDateField(raw string, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", FieldError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return parsed.Format("2006-01-02"), nil
}
