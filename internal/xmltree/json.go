package xmltree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes leaves as strings, objects as JSON objects in key order
// and sequences as arrays. Nil and ambiguous nodes encode as null.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.kind {
	case KindLeaf:
		b, err := json.Marshal(n.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindObject:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := n.index[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
	return nil
}

// UnmarshalJSON rebuilds a tree from its JSON form, keeping object key order.
// Numbers and booleans become leaves holding their literal text.
func (n *Node) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	v, err := decodeValue(d)
	if err != nil {
		return fmt.Errorf("xmltree.UnmarshalJSON: %w", err)
	}
	if v == nil {
		*n = Node{kind: KindAmbiguous}
		return nil
	}
	*n = *v
	return nil
}

func decodeValue(d *json.Decoder) (*Node, error) {
	tok, err := d.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return nil, nil
	case string:
		return Leaf(t), nil
	case json.Number:
		return Leaf(t.String()), nil
	case bool:
		return Leaf(fmt.Sprint(t)), nil
	case json.Delim:
		switch t {
		case '{':
			obj := Object()
			for d.More() {
				kt, err := d.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				child, err := decodeValue(d)
				if err != nil {
					return nil, err
				}
				obj.Set(key, child)
			}
			if _, err := d.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			seq := Sequence()
			for d.More() {
				item, err := decodeValue(d)
				if err != nil {
					return nil, err
				}
				seq.items = append(seq.items, item)
			}
			if _, err := d.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
