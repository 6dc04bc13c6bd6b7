package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct{ Floors int }

type sampleConf struct {
	Floors int    `json:"floors"`
	Name   string `json:"name"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	require.NoError(t, reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Floors: c.Floors}, nil
	}))
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"floors": 12}})
	require.NoError(t, err)
	assert.Equal(t, 12, inst.Floors)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }))
	assert.Error(t, reg.Register("y", nil))
	_, err := reg.Create(ModuleConfig{Type: "y"})
	assert.Error(t, err)
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"b", "a", "c"} {
		require.NoError(t, reg.Register(n, func(map[string]any) (int, error) { return 0, nil }))
	}
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())
}

func TestDecodeWeaklyTyped(t *testing.T) {
	var c sampleConf
	require.NoError(t, Decode(map[string]any{"floors": "8", "name": "east"}, &c))
	assert.Equal(t, 8, c.Floors)
	assert.Equal(t, "east", c.Name)
}
