//go:build !hotconf_no_toml

package format

import "github.com/pelletier/go-toml/v2"

type tomlCodec struct{}

func (tomlCodec) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

func (tomlCodec) Unmarshal(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

func init() {
	Register(TOML, tomlCodec{})
}
