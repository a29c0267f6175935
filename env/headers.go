package env

import "strings"

// Header is one header entry. Key casing is preserved as given.
type Header struct {
	Key   string
	Value string
}

// Headers is an ordered header list that may hold repeated keys.
type Headers []Header

// Get returns the first value whose key matches name case-insensitively.
func (h Headers) Get(name string) (string, bool) {
	for _, hd := range h {
		if strings.EqualFold(hd.Key, name) {
			return hd.Value, true
		}
	}
	return "", false
}

// Values returns every value whose key matches name case-insensitively.
func (h Headers) Values(name string) []string {
	var out []string
	for _, hd := range h {
		if strings.EqualFold(hd.Key, name) {
			out = append(out, hd.Value)
		}
	}
	return out
}

// Count returns how many entries match name case-insensitively.
func (h Headers) Count(name string) int {
	n := 0
	for _, hd := range h {
		if strings.EqualFold(hd.Key, name) {
			n++
		}
	}
	return n
}

// Merge appends the entries of other whose keys are not already present.
// Existing entries win; the receiver is not modified.
func (h Headers) Merge(other Headers) Headers {
	out := make(Headers, len(h), len(h)+len(other))
	copy(out, h)
	for _, hd := range other {
		if _, ok := h.Get(hd.Key); !ok {
			out = append(out, hd)
		}
	}
	return out
}

// Set replaces the first matching entry, keeping its key casing, and drops
// further matches. The entry is appended when absent.
func (h Headers) Set(name, value string) Headers {
	out := make(Headers, 0, len(h)+1)
	found := false
	for _, hd := range h {
		if !strings.EqualFold(hd.Key, name) {
			out = append(out, hd)
			continue
		}
		if !found {
			out = append(out, Header{Key: hd.Key, Value: value})
			found = true
		}
	}
	if !found {
		out = append(out, Header{Key: name, Value: value})
	}
	return out
}
