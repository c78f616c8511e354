package xmltree

import "strings"

// Path is a compiled dot-separated element path such as "SCORE.BureauScore".
type Path []string

// ParsePath splits a dotted path into its segments.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// String returns the dotted form of p.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// resolve walks p from n. At every step a sequence is replaced by its first
// element before descending, so callers never need to know whether a wrapper
// element happened to repeat in a given document.
func (p Path) resolve(n *Node) (out *Node) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()

	cur := n
	for _, seg := range p {
		if cur == nil {
			return nil
		}
		cur = cur.first()
		if cur == nil {
			return nil
		}
		cur = cur.Child(seg)
	}
	return cur
}

// Scalar resolves p and returns its text, or nil when the value is missing,
// empty or not text. A trailing sequence yields its first element. A path
// ending on an object yields the object's own character data (its "_" key),
// or nil when it has none; the object is never stringified.
func (p Path) Scalar(n *Node) *string {
	v := p.resolve(n).first()
	if v == nil {
		return nil
	}
	var s string
	switch v.kind {
	case KindLeaf:
		s = v.text
	case KindObject:
		s = v.Child(TextKey).Text()
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// Array resolves p and always returns a slice: a sequence as-is, a single
// value wrapped, and nothing for a missing or empty value.
func (p Path) Array(n *Node) []*Node {
	v := p.resolve(n)
	if v.IsEmpty() {
		return []*Node{}
	}
	if v.kind == KindSequence {
		return v.Items()
	}
	return []*Node{v}
}

// Scalar is ParsePath(path).Scalar(n).
func Scalar(n *Node, path string) *string {
	return ParsePath(path).Scalar(n)
}

// Array is ParsePath(path).Array(n).
func Array(n *Node, path string) []*Node {
	return ParsePath(path).Array(n)
}
