package llm

import "cloud.google.com/go/vertexai/genai"

// Type is the JSON type of a schema node.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema is the provider-neutral subset of OpenAPI used to constrain
// structured output.
type Schema struct {
	Type        Type
	Description string
	Nullable    bool
	Enum        []string
	Items       *Schema
	MinItems    int64
	MaxItems    int64
	Properties  map[string]*Schema
	Required    []string
}

// String, Number and the other helpers build leaf schemas.
func String(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func NullableString(desc string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Nullable: true}
}

func Number(desc string) *Schema { return &Schema{Type: TypeNumber, Description: desc} }

func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: desc, Enum: values}
}

func Array(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

// ExactArray constrains an array to exactly n items.
func ExactArray(items *Schema, n int64) *Schema {
	return &Schema{Type: TypeArray, Items: items, MinItems: n, MaxItems: n}
}

// Object builds an object schema where every property is required.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

var genaiTypes = map[Type]genai.Type{
	TypeString:  genai.TypeString,
	TypeNumber:  genai.TypeNumber,
	TypeInteger: genai.TypeInteger,
	TypeBoolean: genai.TypeBoolean,
	TypeArray:   genai.TypeArray,
	TypeObject:  genai.TypeObject,
}

func (s *Schema) toGenai() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Items:       s.Items.toGenai(),
		MinItems:    s.MinItems,
		MaxItems:    s.MaxItems,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v.toGenai()
		}
	}
	return out
}
