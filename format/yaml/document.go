// Package yaml provides a YAML codec for documents.
// It operates on the yaml.Node AST so mappings keep document key order in
// both directions.
package yaml

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
	"gopkg.in/yaml.v3"
)

// NewCodec creates a new YAML codec.
//
// Example:
//
//	reg := format.NewRegistry(yaml.NewCodec())
//	codec, _ := reg.ForPath("export.yml")
func NewCodec() document.Codec {
	return format.NewCodec(document.FormatYAML, Encode, Decode, format.CodecConfig{
		Extensions: []string{".yaml", ".yml"},
	})
}

// Encode writes doc as a YAML mapping.
func Encode(doc *document.Document) ([]byte, error) {
	if err := doc.ValidatePlain(); err != nil {
		return nil, err
	}
	root := &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{valueToNode(document.Ordered(doc))},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// valueToNode creates a new yaml.Node from a plain value.
func valueToNode(value any) *yaml.Node {
	switch v := value.(type) {
	case document.OrderedMap:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if len(v) == 0 {
			node.Style = yaml.FlowStyle
		}
		for _, mem := range v {
			node.Content = append(node.Content, stringNode(mem.Key), valueToNode(mem.Value))
		}
		return node
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(v) == 0 || allScalars(v) {
			node.Style = yaml.FlowStyle
		}
		for _, elem := range v {
			node.Content = append(node.Content, valueToNode(elem))
		}
		return node
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: document.FormatFloat(v)}
	case string:
		return stringNode(v)
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		return node
	}
}

// stringNode encodes s so it reads back as a string, quoting it when it
// would otherwise resolve to another type.
func stringNode(s string) *yaml.Node {
	node := &yaml.Node{}
	_ = node.Encode(s)
	return node
}

func allScalars(list []any) bool {
	for _, elem := range list {
		switch elem.(type) {
		case document.OrderedMap, []any:
			return false
		}
	}
	return true
}

// Decode parses YAML data into a Document.
//
// Empty/nil input is treated as an empty document. The root must be a
// mapping.
func Decode(data []byte) (*document.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return document.New(), nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	node := getRootMapping(&root)
	if node.Kind == yaml.ScalarNode && parseScalarValue(node) == nil {
		return document.New(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse YAML: root must be a mapping, got %s", nodeKindString(node.Kind))
	}
	return document.FromOrdered(nodeToValue(node).(document.OrderedMap))
}

func getRootMapping(root *yaml.Node) *yaml.Node {
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		return resolveAlias(root.Content[0])
	}
	return resolveAlias(root)
}

// resolveAlias returns the actual node if the given node is an alias, otherwise returns the node itself.
func resolveAlias(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

// nodeToValue converts a yaml.Node to a plain value, keeping mapping order.
// Alias nodes are automatically resolved to their target value.
func nodeToValue(node *yaml.Node) any {
	node = resolveAlias(node)
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return parseScalarValue(node)

	case yaml.MappingNode:
		m := make(document.OrderedMap, 0, len(node.Content)/2)
		for i := 0; i < len(node.Content)-1; i += 2 {
			key := node.Content[i].Value
			m = append(m, document.Member{Key: key, Value: nodeToValue(node.Content[i+1])})
		}
		return m

	case yaml.SequenceNode:
		s := make([]any, len(node.Content))
		for i, n := range node.Content {
			s[i] = nodeToValue(n)
		}
		return s

	default:
		return nil
	}
}

// parseScalarValue parses a scalar node value.
// It distinguishes between:
//   - null (explicit null or empty untagged value): returns nil
//   - empty string (!!str tag with empty value): returns ""
//   - zero values (0, false, etc.): returns the actual zero value
func parseScalarValue(node *yaml.Node) any {
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!str":
		return node.Value
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return f
		}
	}

	if node.Value == "" {
		return nil
	}
	if i, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		return i
	}
	return node.Value
}

// nodeKindString returns a human-readable string for a node kind.
func nodeKindString(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
