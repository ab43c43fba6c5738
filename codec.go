package roundtrip

import (
	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"
)

// Codec turns a value into text and back. Decoding must populate the value
// pointed to by v.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct {
	opts json.Options
}

// JSON returns a Codec backed by json/v2. Nil slices and maps are written as
// null so that they come back as nil; opts are applied after these defaults
// and may override them.
func JSON(opts ...json.Options) Codec {
	all := append([]json.Options{
		json.FormatNilSliceAsNull(true),
		json.FormatNilMapAsNull(true),
	}, opts...)
	return &jsonCodec{opts: json.JoinOptions(all...)}
}

func (c *jsonCodec) Name() string { return "json" }

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v, c.opts)
}

func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v, c.opts)
}

type yamlCodec struct{}

// YAML returns a Codec backed by gopkg.in/yaml.v3. Struct fields are named by
// their yaml tags, or by their lowercased Go names when untagged.
func YAML() Codec { return yamlCodec{} }

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
