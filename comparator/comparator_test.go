package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytewise(t *testing.T) {
	t.Run("ordering", func(t *testing.T) {
		assert.Negative(t, Bytewise.Compare([]byte("a"), []byte("b")))
		assert.Positive(t, Bytewise.Compare([]byte("b"), []byte("a")))
		assert.Zero(t, Bytewise.Compare([]byte("ab"), []byte("ab")))
	})

	t.Run("prefix sorts first", func(t *testing.T) {
		assert.Negative(t, Bytewise.Compare([]byte("ab"), []byte("abc")))
	})

	t.Run("empty key sorts first", func(t *testing.T) {
		assert.Negative(t, Bytewise.Compare(nil, []byte{0x00}))
		assert.Zero(t, Bytewise.Compare(nil, []byte{}))
	})
}

func TestReverseBytewise(t *testing.T) {
	assert.Positive(t, ReverseBytewise.Compare([]byte("a"), []byte("b")))
	assert.Negative(t, ReverseBytewise.Compare([]byte("b"), []byte("a")))
	assert.Zero(t, ReverseBytewise.Compare([]byte("x"), []byte("x")))
}

func TestByName(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		c, ok := ByName("lsmkit.bytewise")
		require.True(t, ok)
		assert.Equal(t, Bytewise.Name(), c.Name())

		c, ok = ByName("lsmkit.bytewise.reverse")
		require.True(t, ok)
		assert.Equal(t, ReverseBytewise.Name(), c.Name())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := ByName("lsmkit.custom")
		assert.False(t, ok)
	})
}
