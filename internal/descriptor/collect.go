package descriptor

import (
	"regexp"
	"strings"
)

// DefaultSection is the key whose children are declared variables
const DefaultSection = "environment"

var declName = regexp.MustCompile(`^\w+$`)

// Collect walks the document and returns every variable declared under a
// section key at any depth. Sections that are not objects (or lists of
// KEY=value entries) contribute nothing. The result is never nil.
func Collect(root *Node, sections ...string) map[string]bool {
	if len(sections) == 0 {
		sections = []string{DefaultSection}
	}
	names := make(map[string]bool, len(sections))
	for _, s := range sections {
		names[s] = true
	}

	declared := make(map[string]bool)
	walk(root, names, declared)
	return declared
}

func walk(n *Node, sections map[string]bool, declared map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ObjectNode:
		for _, f := range n.Fields {
			if sections[f.Key] {
				declare(f.Value, declared)
			}
			walk(f.Value, sections, declared)
		}
	case ArrayNode:
		for _, item := range n.Items {
			walk(item, sections, declared)
		}
	}
}

// declare adds the variables of one section value
func declare(n *Node, declared map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ObjectNode:
		for _, f := range n.Fields {
			declared[f.Key] = true
		}
	case ArrayNode:
		// docker-compose list form: ["KEY=value", "KEY"]
		for _, item := range n.Items {
			if item == nil || item.Kind != ScalarNode {
				continue
			}
			key, _, _ := strings.Cut(item.Value, "=")
			key = strings.TrimSpace(key)
			if declName.MatchString(key) {
				declared[key] = true
			}
		}
	}
}
