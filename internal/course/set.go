package course

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// setTag is the object key that marks an encoded Set.
const setTag = "$set"

// Set is an unordered collection of string keys. Insertion is idempotent.
type Set map[string]struct{}

// NewSet returns a Set holding the given keys.
func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is a member.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key and reports whether it was newly added.
func (s *Set) Add(key string) bool {
	if *s == nil {
		*s = make(Set)
	}
	if _, ok := (*s)[key]; ok {
		return false
	}
	(*s)[key] = struct{}{}
	return true
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy. A nil Set clones to an empty one.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as {"$set": [sorted members]}.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{setTag: s.Sorted()})
}

// UnmarshalJSON accepts the tagged form, a plain array (older documents)
// and null. Duplicate members collapse.
func (s *Set) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = make(Set)
		return nil
	}

	var members []string
	switch {
	case len(data) > 0 && data[0] == '[':
		if err := json.Unmarshal(data, &members); err != nil {
			return fmt.Errorf("decode set array: %w", err)
		}
	default:
		var tagged map[string][]string
		if err := json.Unmarshal(data, &tagged); err != nil {
			return fmt.Errorf("decode set: %w", err)
		}
		m, ok := tagged[setTag]
		if !ok {
			return fmt.Errorf("decode set: missing %q tag", setTag)
		}
		members = m
	}

	*s = NewSet(members...)
	return nil
}

