package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshal(t *testing.T) {
	type payload struct {
		Name  Optional[string] `json:"name"`
		Count Optional[int]    `json:"count"`
	}

	t.Run("absent field", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Name.Set)
		assert.False(t, p.Name.Valid)
	})

	t.Run("explicit null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &p))
		assert.True(t, p.Name.Set)
		assert.False(t, p.Name.Valid)
	})

	t.Run("value present", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":"deep clean","count":3}`), &p))
		assert.True(t, p.Name.Set)
		assert.True(t, p.Name.Valid)
		assert.Equal(t, "deep clean", p.Name.Value)
		assert.Equal(t, 3, p.Count.Value)
	})

	t.Run("type mismatch", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"count":"three"}`), &p))
	})
}

func TestOptionalOr(t *testing.T) {
	assert.Equal(t, 7, Some(7).Or(1))
	assert.Equal(t, 1, Null[int]().Or(1))
	assert.Equal(t, 1, Optional[int]{}.Or(1))
}
