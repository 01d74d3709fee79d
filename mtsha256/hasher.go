package mtsha256

import (
	"crypto/sha256"

	"github.com/gordian-engine/mtree"
)

const HashSize = sha256.Size

// Hasher is an [mtree.Hasher] backed by SHA-256 hashes.
//
// Leaves are hashed as H(record) and nodes as H(left || right),
// with no domain separation between the two.
type Hasher struct{}

var _ mtree.Hasher = Hasher{}

func (Hasher) Leaf(record []byte, dst []byte) {
	h := sha256.New()
	_, _ = h.Write(record)
	h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) {
	h := sha256.New()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	h.Sum(dst)
}
