package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const dumpIndent = "    "

// DumpReference renders a human-readable reference listing of a tree:
// one line per node with its default value (~ when unset), preceded by
// comment lines for descriptions, requirements, enumerations and examples.
func DumpReference(root *Node) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	writeNode(&b, root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat(dumpIndent, depth)

	if comments := nodeComments(n); len(comments) > 0 {
		b.WriteString("\n")
		for _, c := range comments {
			b.WriteString(indent + "# " + c + "\n")
		}
	}

	if n.IsBranch() {
		b.WriteString(indent + n.Name + ":\n")
		for _, child := range n.Children {
			writeNode(b, child, depth+1)
		}
		return
	}

	value := "~"
	if n.HasDefault {
		value = inline(n.DefaultValue)
	}
	line := fmt.Sprintf("%s%-21s %s", indent, n.Name+":", value)
	b.WriteString(strings.TrimRight(line, " ") + "\n")
}

func nodeComments(n *Node) []string {
	var comments []string
	if n.Description != "" {
		comments = append(comments, strings.Split(n.Description, "\n")...)
	}
	if n.IsRequired {
		comments = append(comments, "Required")
	}
	if len(n.AllowedValues) > 0 {
		parts := make([]string, len(n.AllowedValues))
		for i, v := range n.AllowedValues {
			parts[i] = inline(v)
		}
		comments = append(comments, "One of "+strings.Join(parts, "; "))
	}
	if n.ExampleValue != nil {
		comments = append(comments, "Example: "+inline(n.ExampleValue))
	}
	return comments
}

// inline renders a value on a single line, YAML style for scalars and JSON
// flow style for maps and lists.
func inline(v any) string {
	switch v.(type) {
	case nil:
		return "~"
	case map[string]any, []any:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(out)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(out))
}
