package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	sm "github.com/reoring/strictmodel"
)

// YAML decodes a single YAML document. Streams with more than one document
// are rejected; use YAMLDocuments for those.
func YAML(data []byte) (any, error) {
	docs, err := YAMLDocuments(data)
	if err != nil {
		return nil, err
	}
	switch len(docs) {
	case 0:
		return nil, parseError(sm.Path{}, io.ErrUnexpectedEOF)
	case 1:
		return docs[0], nil
	}
	return nil, parseError(sm.Path{}, fmt.Errorf("expected one document, found %d", len(docs)))
}

// YAMLDocuments decodes every document of a multi-document YAML stream.
// Mapping keys are read as strings, integers as int64 and floats as float64.
func YAMLDocuments(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for i := 0; ; i++ {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, parseError(sm.Path{}.Index(i), err)
		}
		v, err := yamlNode(&root, sm.Path{})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func yamlNode(n *yaml.Node, p sm.Path) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlNode(n.Content[0], p)
	case yaml.AliasNode:
		return yamlNode(n.Alias, p)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, parseError(p, fmt.Errorf("line %d: mapping key must be a scalar", k.Line))
			}
			kp := p.Field(k.Value)
			if _, dup := m[k.Value]; dup {
				return nil, duplicateField(kp, k.Value)
			}
			val, err := yamlNode(v, kp)
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlNode(c, p.Index(i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	}
	return nil, parseError(p, fmt.Errorf("line %d: unsupported node", n.Line))
}

func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i
		}
		// out of int64 range: keep the digits for json.Number-style coercion
		if _, err := strconv.ParseUint(n.Value, 10, 64); err == nil {
			return json.Number(n.Value)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}
