//go:build !hotconf_no_yaml

package format

import "gopkg.in/yaml.v3"

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func init() {
	Register(YAML, yamlCodec{})
}
