package mtree

import (
	"bytes"
	"fmt"
	"log/slog"
)

// Tree is a binary Merkle tree over an ordered collection of byte records.
//
// The tree retains the raw records in insertion order,
// so that [*Tree.Prove] can locate a record by exact value equality,
// and it retains every digest level from the leaves up to the root.
// Level i+1 always has ceil(n/2) digests for a level of n;
// when a level has an odd count, the lone trailing digest
// is paired with itself to form its parent.
//
// A Tree is not safe for concurrent use:
// callers must serialize [*Tree.Add] against every other method.
// Digests returned from a Tree and [Proof] values generated from it
// are immutable and freely shareable once produced.
type Tree struct {
	cfg TreeConfig

	// Raw records in insertion order.
	records [][]byte

	// levels[0] holds one leaf digest per record,
	// each following level is the pairwise merge of the one below,
	// and the last level holds the single root digest.
	// Nil while the tree has no records.
	levels [][][]byte
}

// TreeConfig is the configuration for [NewTree].
type TreeConfig struct {
	Hasher Hasher

	// HashSize is the fixed output size of Hasher, in bytes.
	HashSize int

	// Log is optional.
	// If set, the tree logs rebuild details at debug level.
	Log *slog.Logger
}

// NewTree returns a tree built over the given records, in order.
// The records are copied, so the caller may reuse the input slices.
//
// A nil or empty records slice is allowed and produces an empty tree:
// [*Tree.Root] and [*Tree.Prove] report [ErrEmptyTree]
// until the first [*Tree.Add].
//
// Building is deterministic: the same records in the same order
// with the same hasher always produce the same root.
func NewTree(records [][]byte, cfg TreeConfig) *Tree {
	if cfg.Hasher == nil {
		panic(fmt.Errorf("BUG: TreeConfig.Hasher must not be nil"))
	}
	if cfg.HashSize <= 0 {
		panic(fmt.Errorf(
			"BUG: TreeConfig.HashSize must be positive (got %d)", cfg.HashSize,
		))
	}

	t := &Tree{
		cfg: cfg,

		records: make([][]byte, len(records)),
	}
	for i, r := range records {
		t.records[i] = bytes.Clone(r)
	}

	t.rebuild()
	return t
}

// Add appends one record to the tree and rebuilds every level
// from the new leaf layer upward.
// There is no incremental recomputation;
// the cost is proportional to the full record count.
//
// Proofs generated before Add are not updated:
// they remain internally consistent values
// but no longer verify against the new root.
func (t *Tree) Add(record []byte) {
	t.records = append(t.records, bytes.Clone(record))
	t.rebuild()
}

// Root returns the root digest summarizing the whole record set,
// or [ErrEmptyTree] if the tree holds no records.
//
// The returned slice is a view into the tree's memory
// and must not be modified.
func (t *Tree) Root() ([]byte, error) {
	if len(t.levels) == 0 {
		return nil, ErrEmptyTree
	}

	return t.levels[len(t.levels)-1][0], nil
}

// NumRecords returns how many records the tree holds.
func (t *Tree) NumRecords() int {
	return len(t.records)
}

// HasRecord reports whether any stored record
// is byte-equal to the given record.
func (t *Tree) HasRecord(record []byte) bool {
	return t.recordIndex(record) >= 0
}

// Leaf returns the digest for the leaf at the given index.
// The caller must not modify the returned slice.
func (t *Tree) Leaf(idx int) []byte {
	if idx < 0 || idx >= len(t.records) {
		panic(fmt.Errorf(
			"BUG: attempted to get leaf at index %d; must be in range [0, %d)",
			idx, len(t.records),
		))
	}

	return t.levels[0][idx]
}

// recordIndex returns the index of the first stored record
// byte-equal to record, or -1 when absent.
func (t *Tree) recordIndex(record []byte) int {
	for i, r := range t.records {
		if bytes.Equal(r, record) {
			return i
		}
	}
	return -1
}

// rebuild derives every digest level from the current record list.
func (t *Tree) rebuild() {
	if len(t.records) == 0 {
		t.levels = nil
		return
	}

	nLevels := 1
	for n := len(t.records); n > 1; n = (n + 1) / 2 {
		nLevels++
	}
	levels := make([][][]byte, 0, nLevels)

	level := t.newLevel(len(t.records))
	for i, r := range t.records {
		t.cfg.Hasher.Leaf(r, level[i][:0])
	}
	levels = append(levels, level)

	for len(level) > 1 {
		next := t.newLevel((len(level) + 1) / 2)
		for i := 0; i < len(level); i += 2 {
			// A lone trailing digest pairs with itself.
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}

			t.cfg.Hasher.Node(level[i], right, next[i/2][:0])
		}

		levels = append(levels, next)
		level = next
	}

	t.levels = levels

	if t.cfg.Log != nil {
		t.cfg.Log.Debug(
			"Rebuilt tree",
			"records", len(t.records),
			"levels", len(t.levels),
		)
	}
}

// newLevel allocates one level of n digests
// backed by a single byte slice.
func (t *Tree) newLevel(n int) [][]byte {
	mem := make([]byte, n*t.cfg.HashSize)

	level := make([][]byte, n)
	for i := range level {
		start := i * t.cfg.HashSize
		end := start + t.cfg.HashSize

		level[i] = mem[start:end]
	}

	return level
}
