package api

import (
	"strings"

	"github.com/spf13/cast"
)

// Has reports whether key is present with a non-blank value.
func (d Descriptor) Has(key string) bool {
	v, ok := d.Config[key]
	if !ok || v == nil {
		return false
	}
	return strings.TrimSpace(cast.ToString(v)) != "" || len(cast.ToSlice(v)) > 0
}

// String returns the payload value for key as a string.
func (d Descriptor) String(key string) string {
	return cast.ToString(d.Config[key])
}

// StringOr returns the payload value for key, or def when it is blank.
func (d Descriptor) StringOr(key, def string) string {
	if s := strings.TrimSpace(d.String(key)); s != "" {
		return s
	}
	return def
}

// Bool returns the payload value for key as a bool. Unparsable values are false.
func (d Descriptor) Bool(key string) bool {
	return cast.ToBool(d.Config[key])
}

// Int returns the payload value for key as an int, or def when it is missing.
func (d Descriptor) Int(key string, def int) int {
	v, ok := d.Config[key]
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// StringSlice returns the payload value for key as a string slice. A single
// string is returned as a one-element slice.
func (d Descriptor) StringSlice(key string) []string {
	v, ok := d.Config[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	return cast.ToStringSlice(v)
}

// Missing returns the keys from required that have no value, in order.
func (d Descriptor) Missing(required ...string) []string {
	var missing []string
	for _, key := range required {
		if !d.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}
