package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned when a descriptor document cannot be parsed
var ErrMalformed = errors.New("malformed descriptor")

// maxDepth bounds nesting while building the tree
const maxDepth = 512

// maxNodes bounds the size of the built tree. Aliases are expanded into
// copies, so a small document can otherwise grow exponentially.
const maxNodes = 1 << 20

// DefaultCandidates are probed in order when no descriptor path is given
var DefaultCandidates = []string{
	"serverless.yml",
	"serverless.yaml",
	"serverless.json",
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// Load reads and parses a descriptor file. TOML files are recognized by
// extension; everything else is read as YAML, which also covers JSON.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return ParseYAML(data)
}

// Detect returns the first candidate that exists as a regular file in dir
func Detect(dir string, candidates []string) (string, bool) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// ParseYAML builds a tree from a YAML or JSON document. Aliases and merge
// keys are resolved; custom tags such as !Ref are kept as plain values.
func ParseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind == 0 {
		return Object(), nil
	}

	b := &yamlBuilder{}
	root, err := b.build(&doc, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return root, nil
}

// yamlBuilder converts yaml.v3 nodes, counting every node it creates
type yamlBuilder struct {
	nodes int
}

func (b *yamlBuilder) build(n *yaml.Node, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d levels", maxDepth)
	}
	b.nodes++
	if b.nodes > maxNodes {
		return nil, fmt.Errorf("document expands to more than %d nodes", maxNodes)
	}
	if n == nil {
		return Scalar(""), nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Object(), nil
		}
		return b.build(n.Content[0], depth+1)

	case yaml.AliasNode:
		return b.build(n.Alias, depth+1)

	case yaml.MappingNode:
		obj := &Node{Kind: ObjectNode}
		var explicit []Field
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			v, err := b.build(value, depth+1)
			if err != nil {
				return nil, err
			}
			if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
				mergeInto(obj, v)
				continue
			}
			explicit = append(explicit, Field{Key: key.Value, Value: v})
		}
		// Explicit keys win over merged ones
		for _, f := range explicit {
			obj.Set(f.Key, f.Value)
		}
		return obj, nil

	case yaml.SequenceNode:
		arr := &Node{Kind: ArrayNode, Items: make([]*Node, 0, len(n.Content))}
		for _, item := range n.Content {
			v, err := b.build(item, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil

	default:
		return Scalar(n.Value), nil
	}
}

// mergeInto applies a `<<` value; earlier sources take precedence
func mergeInto(obj *Node, src *Node) {
	switch src.Kind {
	case ObjectNode:
		for _, f := range src.Fields {
			if _, ok := obj.Get(f.Key); !ok {
				obj.Set(f.Key, f.Value)
			}
		}
	case ArrayNode:
		for _, item := range src.Items {
			mergeInto(obj, item)
		}
	}
}

// ParseTOML builds a tree from a TOML document. Keys are sorted since the
// decoded tables carry no order.
func ParseTOML(data []byte) (*Node, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromValue(raw), nil
}

func fromValue(v any) *Node {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := &Node{Kind: ObjectNode, Fields: make([]Field, 0, len(keys))}
		for _, k := range keys {
			obj.Fields = append(obj.Fields, Field{Key: k, Value: fromValue(val[k])})
		}
		return obj
	case []map[string]any:
		arr := &Node{Kind: ArrayNode, Items: make([]*Node, 0, len(val))}
		for _, item := range val {
			arr.Items = append(arr.Items, fromValue(item))
		}
		return arr
	case []any:
		arr := &Node{Kind: ArrayNode, Items: make([]*Node, 0, len(val))}
		for _, item := range val {
			arr.Items = append(arr.Items, fromValue(item))
		}
		return arr
	case nil:
		return Scalar("")
	default:
		return Scalar(fmt.Sprint(val))
	}
}
