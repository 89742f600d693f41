// Package manifest models Composer-style package manifests.
//
// A Document is the root composer.json that merged descriptors are folded
// into. It keeps every top-level field in its original order so a rewritten
// file differs from the source only in the merged link sections.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Section names for the dependency link collections.
const (
	SectionRequire    = "require"
	SectionRequireDev = "require-dev"
)

// DefaultRootName is the source name used for links declared by a root
// document without a "name" field.
const DefaultRootName = "__root__"

type field struct {
	key string
	raw json.RawMessage
}

// Document is a parsed root composer.json.
type Document struct {
	// Path is where the document was loaded from (may be empty).
	Path string

	fields     []field
	name       string
	require    LinkSet
	requireDev LinkSet
}

// ParseDocument parses a composer.json payload.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("invalid manifest: top level must be an object, got %s", describeToken(tok))
	}

	doc := &Document{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid manifest: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid manifest field %q: %w", key, err)
		}
		if i, dup := index[key]; dup {
			doc.fields[i].raw = raw
			continue
		}
		index[key] = len(doc.fields)
		doc.fields = append(doc.fields, field{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	doc.name = DefaultRootName
	if raw, ok := doc.Raw("name"); ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("invalid manifest: name must be a string")
		}
		doc.name = name
	}

	if raw, ok := doc.Raw(SectionRequire); ok {
		if doc.require, err = ParseLinks(raw, doc.name); err != nil {
			return nil, fmt.Errorf("invalid manifest %s: %w", SectionRequire, err)
		}
	}
	if raw, ok := doc.Raw(SectionRequireDev); ok {
		if doc.requireDev, err = ParseLinks(raw, doc.name); err != nil {
			return nil, fmt.Errorf("invalid manifest %s: %w", SectionRequireDev, err)
		}
	}

	return doc, nil
}

// Name returns the root package name.
func (d *Document) Name() string {
	return d.name
}

// Raw returns the raw JSON of a top-level field.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	for _, f := range d.fields {
		if f.key == key {
			return f.raw, true
		}
	}
	return nil, false
}

// Keys returns the top-level field names in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		keys = append(keys, f.key)
	}
	return keys
}

// RequireLinks returns a copy of the root "require" links.
func (d *Document) RequireLinks() LinkSet {
	return d.require.Clone()
}

// SetRequireLinks replaces the root "require" links.
func (d *Document) SetRequireLinks(links LinkSet) {
	d.require = links.Clone()
}

// RequireDevLinks returns a copy of the root "require-dev" links.
func (d *Document) RequireDevLinks() LinkSet {
	return d.requireDev.Clone()
}

// SetRequireDevLinks replaces the root "require-dev" links.
func (d *Document) SetRequireDevLinks(links LinkSet) {
	d.requireDev = links.Clone()
}

// Marshal renders the document with four-space indentation. Link sections
// are re-rendered from the current link sets; a section that was absent in
// the source is appended only when it is non-empty.
func (d *Document) Marshal() ([]byte, error) {
	fields := make([]field, 0, len(d.fields)+2)
	seen := map[string]bool{}
	for _, f := range d.fields {
		switch f.key {
		case SectionRequire, SectionRequireDev:
			raw, err := d.sectionJSON(f.key)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field{key: f.key, raw: raw})
			seen[f.key] = true
		default:
			fields = append(fields, f)
		}
	}
	for _, section := range []string{SectionRequire, SectionRequireDev} {
		if seen[section] || d.section(section).IsEmpty() {
			continue
		}
		raw, err := d.sectionJSON(section)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{key: section, raw: raw})
	}

	var buf bytes.Buffer
	if len(fields) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("{\n")
	for i, f := range fields {
		buf.WriteString("    ")
		if err := writeJSONString(&buf, f.key); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := json.Indent(&buf, f.raw, "    ", "    "); err != nil {
			return nil, fmt.Errorf("failed to render field %q: %w", f.key, err)
		}
		if i < len(fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func (d *Document) section(name string) LinkSet {
	if name == SectionRequireDev {
		return d.requireDev
	}
	return d.require
}

func (d *Document) sectionJSON(name string) (json.RawMessage, error) {
	links := d.section(name)
	if links.IsEmpty() {
		return json.RawMessage("{}"), nil
	}
	return links.MarshalJSON()
}
