package mtreetest

import (
	"testing"

	"github.com/gordian-engine/mtree"
	"github.com/gordian-engine/mtree/internal/mtest"
	"github.com/stretchr/testify/require"
)

// Fixture contains a populated tree and a proof for every record,
// to simplify tests that need proven membership out of the box.
type Fixture struct {
	Cfg mtree.TreeConfig

	Records [][]byte

	Tree *mtree.Tree

	Root []byte

	// Proofs is aligned one-to-one with Records.
	Proofs []mtree.Proof
}

// NewFixture builds a tree over nRecords pseudorandom records
// (derived from the test name, so re-runs are deterministic),
// generates a proof per record, and returns everything bundled.
//
// If any tree operation fails, t.Fatal is called.
func NewFixture(t *testing.T, nRecords int, h mtree.Hasher, hashSize int) *Fixture {
	t.Helper()

	cfg := mtree.TreeConfig{
		Hasher:   h,
		HashSize: hashSize,
		Log:      mtest.NewLogger(t),
	}

	records := mtest.RandomRecordsForTest(t, nRecords, 64)

	tree := mtree.NewTree(records, cfg)

	root, err := tree.Root()
	require.NoError(t, err)

	proofs := make([]mtree.Proof, nRecords)
	for i, r := range records {
		proofs[i], err = tree.Prove(r)
		require.NoError(t, err)
	}

	return &Fixture{
		Cfg: cfg,

		Records: records,

		Tree: tree,

		Root: root,

		Proofs: proofs,
	}
}

// NewPartialTree returns a partial tree trusting only the fixture's root,
// configured compatibly with the fixture's tree.
func (f *Fixture) NewPartialTree(t *testing.T) *mtree.PartialTree {
	t.Helper()

	return mtree.NewPartialTree(mtree.PartialTreeConfig{
		NumLeaves: len(f.Records),

		Hasher:   f.Cfg.Hasher,
		HashSize: f.Cfg.HashSize,

		Root: f.Root,

		Log: f.Cfg.Log,
	})
}
