package descriptor

// Kind tags the shape of a Node
type Kind int

const (
	ScalarNode Kind = iota
	ObjectNode
	ArrayNode
)

func (k Kind) String() string {
	switch k {
	case ObjectNode:
		return "object"
	case ArrayNode:
		return "array"
	default:
		return "scalar"
	}
}

// Field is one key of an object node, kept in document order
type Field struct {
	Key   string
	Value *Node
}

// Node is a parsed descriptor document. Only the field matching Kind is set.
type Node struct {
	Kind   Kind
	Fields []Field
	Items  []*Node
	Value  string
}

// Object builds an object node from fields
func Object(fields ...Field) *Node {
	n := &Node{Kind: ObjectNode}
	for _, f := range fields {
		n.Set(f.Key, f.Value)
	}
	return n
}

// Array builds an array node
func Array(items ...*Node) *Node {
	return &Node{Kind: ArrayNode, Items: items}
}

// Scalar builds a scalar node
func Scalar(value string) *Node {
	return &Node{Kind: ScalarNode, Value: value}
}

// F is shorthand for a Field
func F(key string, value *Node) Field {
	return Field{Key: key, Value: value}
}

// Set assigns key on an object node, replacing an existing field in place
func (n *Node) Set(key string, value *Node) {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = value
			return
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
}

// Get returns the value of key on an object node
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != ObjectNode {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the object's keys in document order
func (n *Node) Keys() []string {
	if n == nil || n.Kind != ObjectNode {
		return nil
	}
	keys := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
