package mtree

import (
	"bytes"
	"fmt"
)

// Side indicates where a proof entry's sibling digest is placed
// relative to the digest being extended,
// when the two are concatenated into the parent hash input.
type Side byte

const (
	// SideLeft means the sibling digest is the left half
	// of the parent hash input.
	SideLeft Side = 0

	// SideRight means the sibling digest is the right half
	// of the parent hash input.
	SideRight Side = 1
)

// String returns "left", "right",
// or a decimal rendering for any invalid value.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", byte(s))
	}
}

// ProofEntry is one step of a membership proof:
// the sibling digest at one level,
// and the side that sibling takes in the parent hash input.
type ProofEntry struct {
	Sibling []byte
	Side    Side
}

// Proof is an ordered membership proof,
// with one entry per level from the leaf layer
// up to just below the root.
//
// A Proof owns its digests and is an independent value
// once generated: it does not observe later mutation
// of the Tree it came from.
// A proof generated before an [*Tree.Add] call is stale
// and will fail to verify against the post-Add root.
type Proof struct {
	Entries []ProofEntry
}

// Prove generates a membership proof for the given record.
//
// The record is located by exact byte equality over the stored records;
// if several stored records are equal, the lowest index wins.
// Proving a record that was never added returns a [RecordNotFoundError],
// and proving against an empty tree returns [ErrEmptyTree].
//
// Prove is read-only; it never modifies the tree.
func (t *Tree) Prove(record []byte) (Proof, error) {
	if len(t.levels) == 0 {
		return Proof{}, ErrEmptyTree
	}

	idx := t.recordIndex(record)
	if idx < 0 {
		return Proof{}, RecordNotFoundError{Record: record}
	}

	entries := make([]ProofEntry, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		var e ProofEntry
		if idx&1 == 1 {
			e = ProofEntry{
				Sibling: bytes.Clone(level[idx-1]),
				Side:    SideLeft,
			}
		} else {
			// A lone trailing digest is its own sibling.
			sibIdx := idx
			if idx+1 < len(level) {
				sibIdx = idx + 1
			}

			e = ProofEntry{
				Sibling: bytes.Clone(level[sibIdx]),
				Side:    SideRight,
			}
		}

		entries = append(entries, e)
		idx >>= 1
	}

	return Proof{Entries: entries}, nil
}

// VerifyProof replays the hashing implied by the proof,
// starting from the candidate leaf digest,
// and reports whether the final digest equals root.
//
// It is a pure decision function, independent of any live [Tree]:
// a holder of only a root digest can check membership
// without access to the record set.
// Any tampering -- a flipped bit in the candidate digest,
// a reordered or substituted proof entry, a flipped side tag,
// or a root from a different tree -- yields false, never an error.
func VerifyProof(h Hasher, hashSize int, p Proof, leaf, root []byte) bool {
	if len(leaf) != hashSize || len(root) != hashSize {
		return false
	}

	cur := make([]byte, hashSize)
	copy(cur, leaf)
	next := make([]byte, hashSize)

	for _, e := range p.Entries {
		if len(e.Sibling) != hashSize {
			return false
		}

		switch e.Side {
		case SideRight:
			h.Node(cur, e.Sibling, next[:0])
		case SideLeft:
			h.Node(e.Sibling, cur, next[:0])
		default:
			return false
		}

		cur, next = next, cur
	}

	return bytes.Equal(cur, root)
}
