package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Link is a single dependency declaration.
type Link struct {
	// Target is the dependency name as written in the manifest.
	Target string `json:"target" yaml:"target"`

	// Constraint is the version constraint string, e.g. "^1.0".
	Constraint string `json:"constraint" yaml:"constraint"`

	// Source is the name of the package that declared the link.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// LinkSet is an insertion-ordered collection of links keyed by the
// lowercased target name. The zero value is an empty set ready to use.
type LinkSet struct {
	order  []string
	byName map[string]Link
}

// Key returns the lookup key used for a dependency name.
func Key(target string) string {
	return strings.ToLower(target)
}

// NewLinkSet builds a set from links, later duplicates replacing earlier ones.
func NewLinkSet(links ...Link) LinkSet {
	var s LinkSet
	for _, l := range links {
		s.Set(l)
	}
	return s
}

// Len returns the number of links.
func (s LinkSet) Len() int {
	return len(s.order)
}

// IsEmpty reports whether the set has no links.
func (s LinkSet) IsEmpty() bool {
	return len(s.order) == 0
}

// Get looks up a link by dependency name (case-insensitive).
func (s LinkSet) Get(target string) (Link, bool) {
	l, ok := s.byName[Key(target)]
	return l, ok
}

// Set inserts or replaces the link for l.Target. A replaced link keeps its
// original position.
func (s *LinkSet) Set(l Link) {
	if s.byName == nil {
		s.byName = make(map[string]Link)
	}
	key := Key(l.Target)
	if _, exists := s.byName[key]; !exists {
		s.order = append(s.order, key)
	}
	s.byName[key] = l
}

// Links returns the links in insertion order.
func (s LinkSet) Links() []Link {
	out := make([]Link, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byName[key])
	}
	return out
}

// Constraints returns a target -> constraint map.
func (s LinkSet) Constraints() map[string]string {
	out := make(map[string]string, len(s.order))
	for _, key := range s.order {
		l := s.byName[key]
		out[l.Target] = l.Constraint
	}
	return out
}

// Clone returns an independent copy of the set.
func (s LinkSet) Clone() LinkSet {
	out := LinkSet{
		order:  append([]string(nil), s.order...),
		byName: make(map[string]Link, len(s.byName)),
	}
	for k, v := range s.byName {
		out.byName[k] = v
	}
	return out
}

// MarshalJSON encodes the set as an ordered {"target": "constraint"} object.
func (s LinkSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range s.Links() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, l.Target); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, l.Constraint); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the set as a target -> constraint mapping.
func (s LinkSet) MarshalYAML() (interface{}, error) {
	return s.Constraints(), nil
}

// ParseLinks decodes a {"target": "constraint"} JSON object, preserving key
// order. Every link is attributed to source.
func ParseLinks(raw json.RawMessage, source string) (LinkSet, error) {
	var s LinkSet
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return s, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return s, fmt.Errorf("invalid link collection: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return s, fmt.Errorf("link collection must be an object, got %s", describeToken(tok))
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return s, fmt.Errorf("invalid link collection: %w", err)
		}
		target, _ := tok.(string)

		var constraint interface{}
		if err := dec.Decode(&constraint); err != nil {
			return s, fmt.Errorf("invalid constraint for %q: %w", target, err)
		}
		str, ok := constraint.(string)
		if !ok {
			return s, fmt.Errorf("constraint for %q must be a string, got %T", target, constraint)
		}
		s.Set(Link{Target: target, Constraint: str, Source: source})
	}

	if _, err := dec.Token(); err != nil {
		return s, fmt.Errorf("invalid link collection: %w", err)
	}
	return s, nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return string(v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}
