package xmltree

// Kind discriminates the variants of a Node.
type Kind int

const (
	// KindLeaf is a text-only element or an attribute value.
	KindLeaf Kind = iota
	// KindObject is an element with attributes and/or child elements.
	KindObject
	// KindSequence holds the occurrences of a tag that repeated among its siblings.
	KindSequence
	// KindAmbiguous marks an attribute and a child element sharing one name.
	// Accessors treat it as absent.
	KindAmbiguous
)

// TextKey is the object key under which character data is kept when an element
// also carries attributes or child elements.
const TextKey = "_"

// Node is one value of a parsed XML document.
type Node struct {
	kind  Kind
	text  string
	keys  []string
	index map[string]*Node
	items []*Node
}

// Leaf returns a text node.
func Leaf(text string) *Node {
	return &Node{kind: KindLeaf, text: text}
}

// Object returns an empty object node. Use Set to populate it.
func Object() *Node {
	return &Node{kind: KindObject, index: make(map[string]*Node)}
}

// Sequence returns a sequence node holding items in order.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Ambiguous returns the fail-closed marker node.
func Ambiguous() *Node {
	return &Node{kind: KindAmbiguous}
}

// Kind reports the variant of n.
func (n *Node) Kind() Kind {
	return n.kind
}

// Text returns the text of a leaf, or "" for any other kind.
func (n *Node) Text() string {
	if n == nil || n.kind != KindLeaf {
		return ""
	}
	return n.text
}

// IsEmpty reports whether n is nil, an empty leaf or an ambiguous marker.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.kind {
	case KindLeaf:
		return n.text == ""
	case KindAmbiguous:
		return true
	}
	return false
}

// Set stores child under key, keeping first-insertion order. It is a no-op on
// non-object nodes.
func (n *Node) Set(key string, child *Node) *Node {
	if n == nil || n.kind != KindObject {
		return n
	}
	if _, ok := n.index[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.index[key] = child
	return n
}

// Child performs a direct lookup: only objects have children and sequences are
// not collapsed. It returns nil when there is nothing to descend into.
func (n *Node) Child(key string) *Node {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return n.index[key]
}

// Keys returns the object keys in document order.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindObject {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Items returns the elements of a sequence.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindSequence {
		return nil
	}
	out := make([]*Node, len(n.items))
	copy(out, n.items)
	return out
}

// Len returns the number of keys of an object or items of a sequence.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindObject:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	}
	return 0
}

// first collapses a sequence to its first element.
func (n *Node) first() *Node {
	if n == nil || n.kind != KindSequence {
		return n
	}
	if len(n.items) == 0 {
		return nil
	}
	return n.items[0]
}

// append adds an occurrence of key, promoting a single value to a sequence the
// second time the key is seen.
func (n *Node) append(key string, child *Node) {
	prev, ok := n.index[key]
	switch {
	case !ok:
		n.Set(key, child)
	case prev.kind == KindSequence:
		prev.items = append(prev.items, child)
	default:
		n.index[key] = Sequence(prev, child)
	}
}
