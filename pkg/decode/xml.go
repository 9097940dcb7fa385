package decode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"canopy/pkg/domain"
)

// decodeXML walks the token stream and rebuilds the same generic shape the
// YAML and JSON readers produce. The document element itself is a wrapper
// (<spec>...</spec>) and is unwrapped; its contents become the top-level
// value.
func decodeXML(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := nextElement(dec)
	if err != nil {
		return nil, &domain.FormatError{Format: FormatXML, Err: err}
	}
	if root == nil {
		return nil, &domain.FormatError{Format: FormatXML, Err: errors.New("empty document")}
	}

	el, err := readElement(dec, root.Name.Local)
	if err != nil {
		return nil, &domain.FormatError{Format: FormatXML, Err: err}
	}
	return el.value(), nil
}

// nextElement skips prologue tokens until the first start element.
func nextElement(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}

// element is a parsed XML element: character data plus ordered children.
type element struct {
	name     string
	text     strings.Builder
	children []*element
}

// readElement consumes tokens up to and including the matching end tag.
func readElement(dec *xml.Decoder, name string) (*element, error) {
	el := &element{name: name}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := readElement(dec, t.Name.Local)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		case xml.CharData:
			el.text.Write(t)
		case xml.EndElement:
			return el, nil
		}
	}
}

// value converts the element into the generic shape. An element without
// children is a scalar string. An element whose children all share one tag
// is a collection wrapper (<children><child>..</child></children>) and
// yields a sequence, even for a single entry. Anything else is a mapping,
// with repeated tags promoted to sequences.
func (e *element) value() any {
	if len(e.children) == 0 {
		return strings.TrimSpace(e.text.String())
	}

	uniform := true
	for _, c := range e.children[1:] {
		if c.name != e.children[0].name {
			uniform = false
			break
		}
	}
	if uniform {
		seq := make([]any, 0, len(e.children))
		for _, c := range e.children {
			seq = append(seq, c.value())
		}
		return seq
	}

	m := make(map[string]any, len(e.children))
	for _, c := range e.children {
		v := c.value()
		existing, ok := m[c.name]
		if !ok {
			m[c.name] = v
			continue
		}
		if list, isList := existing.([]any); isList {
			m[c.name] = append(list, v)
		} else {
			m[c.name] = []any{existing, v}
		}
	}
	return m
}
