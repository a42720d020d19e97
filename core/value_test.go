package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSONRoundTrip(t *testing.T) {
	m := Metadata{
		"name":       String("atlas"),
		"importance": Number(0.9),
		"enabled":    Bool(true),
		"tags":       StringList([]string{"a", "b"}),
		"nested":     Map(Metadata{"inner": Number(42)}),
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "atlas", decoded.GetString("name"))
	imp, ok := decoded.GetNumber("importance")
	require.True(t, ok)
	assert.InDelta(t, 0.9, imp, 1e-9)
	assert.True(t, decoded.GetBool("enabled"))
	assert.Equal(t, []string{"a", "b"}, decoded.GetStringList("tags"))
	inner, ok := decoded.GetMap("nested").GetNumber("inner")
	require.True(t, ok)
	assert.InDelta(t, 42, inner, 1e-9)
}

func TestFromAny_RejectsUnsupportedTypes(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)
}

func TestMetadata_CloneIsIndependent(t *testing.T) {
	m := Metadata{"nested": Map(Metadata{"k": String("v")})}
	clone := m.Clone()
	clone.GetMap("nested")["k"] = String("changed")
	assert.Equal(t, "v", m.GetMap("nested").GetString("k"))
}

func TestMetadata_AccessorsOnMissingKeys(t *testing.T) {
	m := Metadata{}
	assert.Equal(t, "", m.GetString("missing"))
	_, ok := m.GetNumber("missing")
	assert.False(t, ok)
	assert.False(t, m.GetBool("missing"))
	assert.Nil(t, m.GetStringList("missing"))
	assert.Nil(t, m.GetMap("missing"))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-0.5))
	assert.Equal(t, 1.0, ClampScore(1.5))
	assert.Equal(t, 0.42, ClampScore(0.42))
}
