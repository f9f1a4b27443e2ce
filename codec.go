package generational

import "encoding/json"

// Codec encodes the values stored in an arena snapshot. Implementations must
// be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Name is written to the snapshot header and checked on load.
	Name() string
}

// JSONCodec is the standard-library JSON codec.
type JSONCodec struct{}

// Marshal encodes the value to JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSONCodec) Name() string { return "json" }
