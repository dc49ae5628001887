package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Format
	}{
		{"config.json", JSON},
		{"config.yaml", YAML},
		{"config.yml", YAML},
		{"config.toml", TOML},
		{"config.txt", Unknown},
		{"config", Unknown},
		{"/etc/app/CONFIG.JSON", JSON},
		{"nested/dir/app.Yml", YAML},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.path), "Detect(%q)", tt.path)
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Format
	}{
		{"json object", `{"a": 1}`, JSON},
		{"json array", `[1, 2]`, JSON},
		{"json with leading whitespace", "\n\t {\"a\": 1}", JSON},
		{"yaml comment", "# settings\nname: app", YAML},
		{"yaml mapping", "name: app", YAML},
		{"toml", "name = \"app\"\n[section]\nvalue = 1", TOML},
		{"empty", "", TOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Sniff([]byte(tt.content)))
		})
	}
}

func TestFormatAccessors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "JSON", JSON.String())
	assert.Equal(t, "YAML", YAML.String())
	assert.Equal(t, "TOML", TOML.String())
	assert.Equal(t, "Unknown", Unknown.String())

	assert.Equal(t, "json", JSON.Extension())
	assert.Equal(t, "yaml", YAML.Extension())
	assert.Equal(t, "toml", TOML.Extension())
	// Unknown falls back to JSON, matching save behavior.
	assert.Equal(t, "json", Unknown.Extension())

	assert.Equal(t, "application/json", JSON.MIMEType())
	assert.Equal(t, "application/x-yaml", YAML.MIMEType())
	assert.Equal(t, "application/toml", TOML.MIMEType())
	assert.Equal(t, "application/json", Unknown.MIMEType())
}

func TestLookupRegisteredCodecs(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{JSON, YAML, TOML} {
		codec, err := Lookup(f)
		require.NoError(t, err, "codec for %s should be registered", f)
		require.NotNil(t, codec)
	}
}

func TestLookupUnsupported(t *testing.T) {
	t.Parallel()

	_, err := Lookup(Unknown)
	require.Error(t, err)

	var unsupported UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, Unknown, unsupported.Format)
	assert.Contains(t, err.Error(), "not supported")
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name  string `json:"name" yaml:"name" toml:"name"`
		Value int    `json:"value" yaml:"value" toml:"value"`
	}
	in := payload{Name: "app", Value: 42}

	for _, f := range []Format{JSON, YAML, TOML} {
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			codec, err := Lookup(f)
			require.NoError(t, err)

			data, err := codec.Marshal(in)
			require.NoError(t, err)

			var out payload
			require.NoError(t, codec.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestJSONMarshalIsPretty(t *testing.T) {
	t.Parallel()

	codec, err := Lookup(JSON)
	require.NoError(t, err)

	data, err := codec.Marshal(map[string]int{"port": 8080})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n", "saved JSON should be indented")
}
