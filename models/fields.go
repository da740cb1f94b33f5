package models

import (
	"strings"
	"unicode"
)

// FormFields is the raw key/value payload of a submitted form.
type FormFields map[string]string

// Get returns the trimmed value stored under key or under its camelCase spelling.
func (f FormFields) Get(key string) string {
	if v := strings.TrimSpace(f[key]); v != "" {
		return v
	}
	if camel := snakeToCamel(key); camel != key {
		return strings.TrimSpace(f[camel])
	}
	return ""
}

// First returns the first non-empty value among keys.
func (f FormFields) First(keys ...string) string {
	for _, key := range keys {
		if v := f.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// Missing lists the keys that are absent or blank, in the given order.
func (f FormFields) Missing(keys []string) []string {
	var missing []string
	for _, key := range keys {
		if f.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
