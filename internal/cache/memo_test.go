package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
)

func TestMemo_GetSet(t *testing.T) {
	m := NewMemo[[]string]()
	ctx := context.Background()

	_, ok := m.Get("400")
	assert.False(t, ok)

	m.Set(ctx, "400", []string{"a", "b"})
	got, ok := m.Get("400")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, m.Len())

	// Overwriting a key keeps a single entry
	m.Set(ctx, "400", []string{"c"})
	got, _ = m.Get("400")
	assert.Equal(t, []string{"c"}, got)
	assert.Equal(t, 1, m.Len())
}

func TestMemo_ResetsOnOverflow(t *testing.T) {
	m := NewMemo[int]()
	ctx := logging.EnsureLogger(context.Background())

	for i := 0; i < maxEntries; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), i)
	}
	assert.Equal(t, maxEntries, m.Len())

	m.Set(ctx, "overflow", 1)
	assert.Equal(t, 1, m.Len())

	v, ok := m.Get("overflow")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestMemo_ConcurrentAccess(t *testing.T) {
	m := NewMemo[int]()
	ctx := context.Background()
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			key := fmt.Sprintf("k%d", n)
			for j := 0; j < 100; j++ {
				m.Set(ctx, key, j)
				m.Get(key)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.Equal(t, 4, m.Len())
}
