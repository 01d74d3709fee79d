package mtree

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bits-and-blooms/bitset"
)

// PartialTree is a partially known Merkle tree,
// for a verifier that starts with only a trusted root digest
// and learns the record set one proven leaf at a time.
//
// Use [*PartialTree.AddLeaf] to confirm a record and its proof.
// Every digest discovered while confirming a proof is retained,
// so inconsistent proofs are rejected
// even when each would have replayed to the root on its own.
// The PartialTree does not hold references to any record data;
// store confirmed records externally.
type PartialTree struct {
	// Digest storage per level, leaf level first.
	// A slot's contents are only meaningful
	// once its haveNodes bit is set.
	levels [][][]byte

	// Bit index into haveNodes where each level begins.
	offsets []uint

	// Which node slots hold a trusted digest.
	haveNodes *bitset.BitSet

	// Which leaves have had their record content confirmed;
	// distinct from haveNodes, as we can trust a leaf digest
	// without having seen the record behind it.
	haveLeaves *bitset.BitSet

	nLeaves int

	hasher   Hasher
	hashSize int

	log *slog.Logger
}

// PartialTreeConfig contains all the details for [NewPartialTree].
type PartialTreeConfig struct {
	// NumLeaves is the record count of the tree the root commits to.
	NumLeaves int

	Hasher   Hasher
	HashSize int

	// Root is the trusted root digest.
	// It is copied, so the caller may reuse the slice.
	Root []byte

	// Log is optional.
	// If set, rejected leaves are logged at debug level.
	Log *slog.Logger
}

// NewPartialTree returns a partial tree trusting only cfg.Root.
func NewPartialTree(cfg PartialTreeConfig) *PartialTree {
	if cfg.NumLeaves <= 0 {
		panic(fmt.Errorf(
			"BUG: NumLeaves must be positive (got %d)", cfg.NumLeaves,
		))
	}
	if cfg.Hasher == nil {
		panic(fmt.Errorf("BUG: Hasher must not be nil"))
	}
	if cfg.HashSize <= 0 {
		panic(fmt.Errorf(
			"BUG: HashSize must be positive (got %d)", cfg.HashSize,
		))
	}
	if len(cfg.Root) != cfg.HashSize {
		panic(fmt.Errorf(
			"BUG: root must be %d bytes, got %d", cfg.HashSize, len(cfg.Root),
		))
	}

	// Same level geometry as a fully built Tree.
	var widths []int
	for n := cfg.NumLeaves; ; n = (n + 1) / 2 {
		widths = append(widths, n)
		if n == 1 {
			break
		}
	}

	nNodes := 0
	for _, w := range widths {
		nNodes += w
	}

	// One backing slice for every node slot.
	mem := make([]byte, nNodes*cfg.HashSize)

	levels := make([][][]byte, len(widths))
	offsets := make([]uint, len(widths))
	var nodeIdx int
	for li, w := range widths {
		offsets[li] = uint(nodeIdx)

		level := make([][]byte, w)
		for i := range level {
			start := nodeIdx * cfg.HashSize
			end := start + cfg.HashSize

			level[i] = mem[start:end]
			nodeIdx++
		}
		levels[li] = level
	}

	pt := &PartialTree{
		levels:  levels,
		offsets: offsets,

		haveNodes:  bitset.MustNew(uint(nNodes)),
		haveLeaves: bitset.MustNew(uint(cfg.NumLeaves)),

		nLeaves: cfg.NumLeaves,

		hasher:   cfg.Hasher,
		hashSize: cfg.HashSize,

		log: cfg.Log,
	}

	copy(pt.levels[len(pt.levels)-1][0], cfg.Root)
	pt.haveNodes.Set(pt.offsets[len(pt.offsets)-1])

	return pt
}

var ErrAlreadyHaveLeaf = errors.New("already confirmed record for given leaf")

var ErrLeafMismatch = errors.New("record did not match trusted leaf digest")

var ErrProofMismatch = errors.New("proof did not replay to a trusted digest")

var ErrBadProofShape = errors.New("proof has the wrong shape for this tree")

// AddLeaf confirms that the given record at the given leaf index
// matches the given proof, against everything trusted so far.
//
// On success, the leaf digest, the proof's sibling digests,
// and every digest computed on the path to the root
// become trusted for subsequent AddLeaf calls.
//
// If the record was already confirmed, AddLeaf returns
// [ErrAlreadyHaveLeaf]; if a record disagrees with a trusted
// leaf digest, [ErrLeafMismatch]; if the proof disagrees with
// the root or any trusted interior digest, [ErrProofMismatch];
// and if the proof's length, digest sizes, or side tags
// don't match the tree's geometry, [ErrBadProofShape].
func (t *PartialTree) AddLeaf(leafIdx int, record []byte, proof Proof) error {
	err := t.addLeaf(leafIdx, record, proof)
	if err != nil && t.log != nil {
		t.log.Debug(
			"Rejected leaf",
			"leaf_idx", leafIdx,
			"err", err,
		)
	}
	return err
}

func (t *PartialTree) addLeaf(leafIdx int, record []byte, proof Proof) error {
	if leafIdx < 0 || leafIdx >= t.nLeaves {
		return fmt.Errorf(
			"leaf index %d out of range [0, %d)", leafIdx, t.nLeaves,
		)
	}

	if len(proof.Entries) != len(t.levels)-1 {
		return ErrBadProofShape
	}

	// Validate the proof geometry before doing any hashing.
	// The side tags are fully determined by the leaf index,
	// so a disagreeing tag can never belong to this tree.
	idx := leafIdx
	for _, e := range proof.Entries {
		if len(e.Sibling) != t.hashSize {
			return ErrBadProofShape
		}

		wantSide := SideRight
		if idx&1 == 1 {
			wantSide = SideLeft
		}
		if e.Side != wantSide {
			return ErrBadProofShape
		}

		idx >>= 1
	}

	// Replay the path, recording the digest computed at each level.
	pathMem := make([]byte, len(t.levels)*t.hashSize)
	path := make([][]byte, len(t.levels))
	for i := range path {
		start := i * t.hashSize
		path[i] = pathMem[start : start+t.hashSize]
	}

	t.hasher.Leaf(record, path[0][:0])

	for i, e := range proof.Entries {
		if e.Side == SideRight {
			t.hasher.Node(path[i], e.Sibling, path[i+1][:0])
		} else {
			t.hasher.Node(e.Sibling, path[i], path[i+1][:0])
		}
	}

	// Leaf-level checks come first so that a re-sent valid leaf
	// reports ErrAlreadyHaveLeaf rather than a proof error.
	if t.haveNodes.Test(t.offsets[0] + uint(leafIdx)) {
		if !bytes.Equal(t.levels[0][leafIdx], path[0]) {
			return ErrLeafMismatch
		}
		if t.haveLeaves.Test(uint(leafIdx)) {
			return ErrAlreadyHaveLeaf
		}
	}

	// Every digest on the path, and every sibling in the proof,
	// must agree with whatever is already trusted.
	// The root slot is always trusted,
	// so an untampered-but-wrong proof fails here.
	idx = leafIdx
	for i, e := range proof.Entries {
		sibIdx := siblingIndex(idx, len(t.levels[i]))

		if sibIdx != idx && t.haveNodes.Test(t.offsets[i]+uint(sibIdx)) {
			if !bytes.Equal(t.levels[i][sibIdx], e.Sibling) {
				return ErrProofMismatch
			}
		}

		parentIdx := idx >> 1
		if t.haveNodes.Test(t.offsets[i+1] + uint(parentIdx)) {
			if !bytes.Equal(t.levels[i+1][parentIdx], path[i+1]) {
				return ErrProofMismatch
			}
		}

		idx >>= 1
	}

	// Everything checked out; commit the path and the siblings.
	idx = leafIdx
	for i, e := range proof.Entries {
		copy(t.levels[i][idx], path[i])
		t.haveNodes.Set(t.offsets[i] + uint(idx))

		sibIdx := siblingIndex(idx, len(t.levels[i]))
		if sibIdx != idx {
			copy(t.levels[i][sibIdx], e.Sibling)
			t.haveNodes.Set(t.offsets[i] + uint(sibIdx))
		}

		idx >>= 1
	}

	t.haveLeaves.Set(uint(leafIdx))

	return nil
}

// HasLeaf reports whether the record for the given leaf
// has already been confirmed via [*PartialTree.AddLeaf].
//
// HasLeaf reports false if idx is out of bounds.
func (t *PartialTree) HasLeaf(idx int) bool {
	if idx < 0 || idx >= t.nLeaves {
		return false
	}
	return t.haveLeaves.Test(uint(idx))
}

// NumConfirmedLeaves returns how many leaves
// have had their record content confirmed.
func (t *PartialTree) NumConfirmedLeaves() int {
	return int(t.haveLeaves.Count())
}

// NumLeaves returns the leaf count this partial tree was configured with.
func (t *PartialTree) NumLeaves() int {
	return t.nLeaves
}

// Root returns the trusted root digest.
// The caller must not modify the returned slice.
func (t *PartialTree) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

// siblingIndex returns the index paired with idx
// on a level of the given width.
// A lone trailing node is its own sibling.
func siblingIndex(idx, width int) int {
	if idx&1 == 1 {
		return idx - 1
	}
	if idx+1 < width {
		return idx + 1
	}
	return idx
}
