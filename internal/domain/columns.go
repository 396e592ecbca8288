package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColumnDefinition is one unresolved column of a request. Definition is a
// string such as "int 18-65", a list of category values, or anything else
// (which resolves to the unspecified kind).
type ColumnDefinition struct {
	Name       string
	Definition any
}

// ColumnDefinitions is an ordered name -> definition mapping. It decodes from
// a YAML or JSON object and keeps the document's key order.
type ColumnDefinitions []ColumnDefinition

func (c ColumnDefinitions) Names() []string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.Name
	}
	return names
}

func (c *ColumnDefinitions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("columns: expected a mapping, got line %d", node.Line)
	}
	out := make(ColumnDefinitions, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var def any
		if err := val.Decode(&def); err != nil {
			return fmt.Errorf("columns.%s: %w", key.Value, err)
		}
		out = append(out, ColumnDefinition{Name: key.Value, Definition: def})
	}
	*c = out
	return nil
}

func (c ColumnDefinitions) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range c {
		var val yaml.Node
		if err := val.Encode(d.Definition); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.Name},
			&val,
		)
	}
	return node, nil
}

func (c *ColumnDefinitions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("columns: expected a JSON object")
	}

	out := make(ColumnDefinitions, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("columns: unexpected key %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("columns.%s: %w", name, err)
		}
		out = append(out, ColumnDefinition{Name: name, Definition: normalizeJSON(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

func (c ColumnDefinitions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.Definition)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalizeJSON turns json.Number values into int64 when integral and
// float64 otherwise, so category lists decoded from JSON and YAML agree.
func normalizeJSON(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil && !strings.ContainsAny(val.String(), ".eE") {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i := range val {
			val[i] = normalizeJSON(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeJSON(val[k])
		}
		return val
	default:
		return v
	}
}
