package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterLookupDeregister(t *testing.T) {
	r := NewRegistry()
	var got any
	r.Register(ID("h1"), Func(func(msg any) { got = msg }))

	h, ok := r.Lookup(ID("h1"))
	assert.True(t, ok)
	h.Invoke("hello")
	assert.Equal(t, "hello", got)

	r.Deregister(ID("h1"))
	_, ok = r.Lookup(ID("h1"))
	assert.False(t, ok)
}

func TestRegistry_UnknownLookup(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(ID("nope"))
	assert.False(t, ok)
}

func TestRegistry_OverwriteRegistration(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register(ID("h1"), Func(func(msg any) { calls = 1 }))
	r.Register(ID("h1"), Func(func(msg any) { calls = 2 }))

	h, ok := r.Lookup(ID("h1"))
	assert.True(t, ok)
	h.Invoke(nil)
	assert.Equal(t, 2, calls)
}
