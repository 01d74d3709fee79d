package mtreetest

import (
	"testing"

	"github.com/gordian-engine/mtree"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() (h mtree.Hasher, hashSize int)

// TestHasherCompliance confirms the basic [mtree.Hasher] contract:
// deterministic output, fixed size, input sensitivity,
// and non-commutative node hashing.
func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		h, sz := f()

		dst01 := make([]byte, sz)
		h.Leaf([]byte("deterministic_data"), dst01[:0])

		dst02 := make([]byte, sz)
		h.Leaf([]byte("deterministic_data"), dst02[:0])

		require.Equal(t, dst01, dst02)
	})

	t.Run("leaf respects input", func(t *testing.T) {
		t.Parallel()

		h, sz := f()

		dst01 := make([]byte, sz)
		h.Leaf([]byte("data_1"), dst01[:0])

		dst02 := make([]byte, sz)
		h.Leaf([]byte("data_2"), dst02[:0])

		require.NotEqual(t, dst01, dst02)
	})

	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h, sz := f()

		left := make([]byte, sz)
		h.Leaf([]byte("left"), left[:0])
		right := make([]byte, sz)
		h.Leaf([]byte("right"), right[:0])

		dst01 := make([]byte, sz)
		h.Node(left, right, dst01[:0])

		dst02 := make([]byte, sz)
		h.Node(left, right, dst02[:0])

		require.Equal(t, dst01, dst02)
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h, sz := f()

		left := make([]byte, sz)
		h.Leaf([]byte("left"), left[:0])
		right := make([]byte, sz)
		h.Leaf([]byte("right"), right[:0])

		dst01 := make([]byte, sz)
		h.Node(left, right, dst01[:0])

		dst02 := make([]byte, sz)
		h.Node(right, left, dst02[:0])

		require.NotEqual(t, dst01, dst02)
	})
}
