package mtree_test

import (
	"testing"

	"github.com/gordian-engine/mtree"
	"github.com/gordian-engine/mtree/mtreetest"
	"github.com/gordian-engine/mtree/mtsha256"
	"github.com/stretchr/testify/require"
)

func TestPartialTree_addEveryLeaf(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 5, mtsha256.Hasher{}, mtsha256.HashSize)
	pt := f.NewPartialTree(t)

	require.Equal(t, 5, pt.NumLeaves())
	require.Zero(t, pt.NumConfirmedLeaves())

	for i, r := range f.Records {
		require.False(t, pt.HasLeaf(i))

		require.NoError(t, pt.AddLeaf(i, r, f.Proofs[i]))

		require.True(t, pt.HasLeaf(i))
		require.Equal(t, i+1, pt.NumConfirmedLeaves())
	}

	require.Equal(t, f.Root, pt.Root())
}

func TestPartialTree_addLeavesOutOfOrder(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 8, mtsha256.Hasher{}, mtsha256.HashSize)
	pt := f.NewPartialTree(t)

	for _, i := range []int{7, 0, 4, 2, 6, 1, 3, 5} {
		require.NoError(t, pt.AddLeaf(i, f.Records[i], f.Proofs[i]))
	}

	require.Equal(t, 8, pt.NumConfirmedLeaves())
}

func TestPartialTree_alreadyHaveLeaf(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 4, mtsha256.Hasher{}, mtsha256.HashSize)
	pt := f.NewPartialTree(t)

	require.NoError(t, pt.AddLeaf(1, f.Records[1], f.Proofs[1]))

	err := pt.AddLeaf(1, f.Records[1], f.Proofs[1])
	require.ErrorIs(t, err, mtree.ErrAlreadyHaveLeaf)
}

func TestPartialTree_leafMismatch(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 4, mtsha256.Hasher{}, mtsha256.HashSize)
	pt := f.NewPartialTree(t)

	// Confirming leaf 0 also makes leaf 1's digest trusted
	// (it is the first sibling in leaf 0's proof).
	require.NoError(t, pt.AddLeaf(0, f.Records[0], f.Proofs[0]))

	err := pt.AddLeaf(1, []byte("wrong record"), f.Proofs[1])
	require.ErrorIs(t, err, mtree.ErrLeafMismatch)

	require.False(t, pt.HasLeaf(1))

	// The genuine record is still accepted afterward.
	require.NoError(t, pt.AddLeaf(1, f.Records[1], f.Proofs[1]))
}

func TestPartialTree_proofMismatch(t *testing.T) {
	t.Parallel()

	t.Run("wrong record on a fresh index", func(t *testing.T) {
		t.Parallel()

		f := mtreetest.NewFixture(t, 4, mtsha256.Hasher{}, mtsha256.HashSize)
		pt := f.NewPartialTree(t)

		// No digest for leaf 2 is trusted yet,
		// so the failure surfaces at the root comparison.
		err := pt.AddLeaf(2, []byte("wrong record"), f.Proofs[2])
		require.ErrorIs(t, err, mtree.ErrProofMismatch)
	})

	t.Run("tampered sibling digest", func(t *testing.T) {
		t.Parallel()

		f := mtreetest.NewFixture(t, 4, mtsha256.Hasher{}, mtsha256.HashSize)
		pt := f.NewPartialTree(t)

		bad := cloneProof(f.Proofs[2])
		bad.Entries[1].Sibling[0] ^= 0x01

		err := pt.AddLeaf(2, f.Records[2], bad)
		require.ErrorIs(t, err, mtree.ErrProofMismatch)
	})

	t.Run("proof from a different tree", func(t *testing.T) {
		t.Parallel()

		f := mtreetest.NewFixture(t, 4, mtsha256.Hasher{}, mtsha256.HashSize)
		pt := f.NewPartialTree(t)

		other := mtree.NewTree([][]byte{
			[]byte("w"), []byte("x"), []byte("y"), []byte("z"),
		}, f.Cfg)
		otherProof, err := other.Prove([]byte("y"))
		require.NoError(t, err)

		err = pt.AddLeaf(2, []byte("y"), otherProof)
		require.ErrorIs(t, err, mtree.ErrProofMismatch)
	})

	t.Run("conflicts with previously confirmed sibling", func(t *testing.T) {
		t.Parallel()

		f := mtreetest.NewFixture(t, 4, mtsha256.Hasher{}, mtsha256.HashSize)
		pt := f.NewPartialTree(t)

		require.NoError(t, pt.AddLeaf(3, f.Records[3], f.Proofs[3]))

		// Leaf 2's proof names leaf 3 as its sibling;
		// disagreeing with the confirmed digest must be rejected
		// before any root comparison could pass.
		bad := cloneProof(f.Proofs[2])
		h := mtsha256.Hasher{}
		h.Leaf([]byte("impostor"), bad.Entries[0].Sibling[:0])

		err := pt.AddLeaf(2, f.Records[2], bad)
		require.ErrorIs(t, err, mtree.ErrProofMismatch)
	})
}

func TestPartialTree_badProofShape(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 5, mtsha256.Hasher{}, mtsha256.HashSize)

	t.Run("truncated proof", func(t *testing.T) {
		t.Parallel()

		pt := f.NewPartialTree(t)

		bad := mtree.Proof{Entries: f.Proofs[0].Entries[:1]}
		err := pt.AddLeaf(0, f.Records[0], bad)
		require.ErrorIs(t, err, mtree.ErrBadProofShape)
	})

	t.Run("flipped side tag", func(t *testing.T) {
		t.Parallel()

		pt := f.NewPartialTree(t)

		bad := cloneProof(f.Proofs[0])
		bad.Entries[0].Side = mtree.SideLeft

		err := pt.AddLeaf(0, f.Records[0], bad)
		require.ErrorIs(t, err, mtree.ErrBadProofShape)
	})

	t.Run("wrong sibling digest size", func(t *testing.T) {
		t.Parallel()

		pt := f.NewPartialTree(t)

		bad := cloneProof(f.Proofs[0])
		bad.Entries[0].Sibling = bad.Entries[0].Sibling[:8]

		err := pt.AddLeaf(0, f.Records[0], bad)
		require.ErrorIs(t, err, mtree.ErrBadProofShape)
	})

	t.Run("leaf index out of range", func(t *testing.T) {
		t.Parallel()

		pt := f.NewPartialTree(t)

		require.Error(t, pt.AddLeaf(5, f.Records[0], f.Proofs[0]))
		require.Error(t, pt.AddLeaf(-1, f.Records[0], f.Proofs[0]))
	})
}

func TestPartialTree_singleLeaf(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 1, mtsha256.Hasher{}, mtsha256.HashSize)
	pt := f.NewPartialTree(t)

	// A single-record tree's root is its leaf digest,
	// so the empty proof must check the record against the root directly.
	err := pt.AddLeaf(0, []byte("wrong record"), mtree.Proof{})
	require.ErrorIs(t, err, mtree.ErrLeafMismatch)

	require.NoError(t, pt.AddLeaf(0, f.Records[0], mtree.Proof{}))
	require.True(t, pt.HasLeaf(0))
}

func TestPartialTree_HasLeaf_outOfBounds(t *testing.T) {
	t.Parallel()

	f := mtreetest.NewFixture(t, 3, mtsha256.Hasher{}, mtsha256.HashSize)
	pt := f.NewPartialTree(t)

	require.False(t, pt.HasLeaf(-1))
	require.False(t, pt.HasLeaf(3))
}
