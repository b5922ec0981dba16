package ai

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// SchemaFor reflects T into the response schema format Gemini accepts.
// Fields without omitempty are required. T may be an unnamed struct.
func SchemaFor[T any]() (*genai.Schema, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return convertSchema(reflector.Reflect(&v))
}

func convertSchema(s *jsonschema.Schema) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}

	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
		if s.Properties != nil {
			out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				child, err := convertSchema(pair.Value)
				if err != nil {
					return nil, fmt.Errorf("property %s: %w", pair.Key, err)
				}
				out.Properties[pair.Key] = child
			}
		}
		if len(s.Required) > 0 {
			out.Required = append([]string(nil), s.Required...)
		}
	case "array":
		out.Type = genai.TypeArray
		items, err := convertSchema(s.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	case "string":
		out.Type = genai.TypeString
		for _, e := range s.Enum {
			if str, ok := e.(string); ok {
				out.Enum = append(out.Enum, str)
			}
		}
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", s.Type)
	}
	return out, nil
}
