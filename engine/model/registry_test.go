package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/stretchr/testify/assert"
)

func TestRegistryStartsEmpty(t *testing.T) {
	r := NewRegistry()
	n, ok := r.Get()
	assert.False(t, ok)
	assert.Nil(t, n)
	assert.Zero(t, r.Generation())
}

func TestRegistrySetOverwrites(t *testing.T) {
	r := NewRegistry()
	first, second := scene.NewNode(), scene.NewNode()

	r.Set(first)
	r.Set(second)

	n, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, second.ID(), n.ID())
	assert.Equal(t, uint64(2), r.Generation())
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	n := scene.NewNode()
	r.Set(n)

	assert.Equal(t, n, r.Clear())
	_, ok := r.Get()
	assert.False(t, ok)
	assert.Nil(t, r.Clear())

	r.Set(nil)
	_, ok = r.Get()
	assert.False(t, ok)
	assert.Equal(t, uint64(1), r.Generation())
}
