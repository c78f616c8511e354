package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var (
	// ErrNoRoot is returned when the input holds no element at all.
	ErrNoRoot = errors.New("document has no root element")
	// ErrMultipleRoots is returned when a second top-level element follows the first.
	ErrMultipleRoots = errors.New("document has more than one root element")
)

type frame struct {
	name  string
	obj   *Node
	attrs map[string]bool
	text  strings.Builder
}

func (f *frame) object() *Node {
	if f.obj == nil {
		f.obj = Object()
	}
	return f.obj
}

func (f *frame) addChild(name string, child *Node) {
	obj := f.object()
	if f.attrs[name] {
		obj.index[name] = Ambiguous()
		return
	}
	if prev, ok := obj.index[name]; ok && prev.kind == KindAmbiguous {
		return
	}
	obj.append(name, child)
}

func (f *frame) node() *Node {
	text := f.text.String()
	if strings.TrimSpace(text) == "" {
		text = ""
	}
	if f.obj == nil {
		return Leaf(text)
	}
	if text != "" {
		if _, clash := f.obj.index[TextKey]; clash {
			// a child or attribute named "_" competes with the element text
			f.obj.index[TextKey] = Ambiguous()
		} else {
			f.obj.Set(TextKey, Leaf(text))
		}
	}
	return f.obj
}

// Parse decodes a whole XML document into a tree keyed by its root element:
// the result is an object with exactly one key, the root tag name.
//
// Attributes are merged into their element's key space, a tag repeated among
// its siblings becomes a sequence and a single occurrence stays a leaf or an
// object. Namespaces are dropped; only local names are kept.
func Parse(r io.Reader) (*Node, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	var (
		stack []*frame
		root  *Node
	)

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree.Parse: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, ErrMultipleRoots
			}
			f := &frame{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				if f.attrs == nil {
					f.attrs = make(map[string]bool)
				}
				f.attrs[a.Name.Local] = true
				f.object().Set(a.Name.Local, Leaf(a.Value))
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := f.node()
			if len(stack) == 0 {
				root = Object().Set(f.name, n)
				continue
			}
			stack[len(stack)-1].addChild(f.name, n)
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}
