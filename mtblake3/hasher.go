package mtblake3

import (
	"github.com/gordian-engine/mtree"
	"github.com/zeebo/blake3"
)

const HashSize = 32

// Hasher is an [mtree.Hasher] backed by BLAKE3 with 256-bit output.
//
// Like the mtsha256 hasher, leaves are hashed as H(record)
// and nodes as H(left || right).
type Hasher struct{}

var _ mtree.Hasher = Hasher{}

func (Hasher) Leaf(record []byte, dst []byte) {
	h := blake3.New()
	_, _ = h.Write(record)
	h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) {
	h := blake3.New()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	h.Sum(dst)
}
