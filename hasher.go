package mtree

// Hasher is the user-defined interface for digesting records and nodes.
// The [Tree] passes each record's raw bytes to the Leaf method to
// create a leaf digest, and it passes pairs of digests to the Node
// method to create each parent digest.
//
// To be allocation-efficient, the Hasher implementation
// must append its hash output to dst, instead of creating a new byte slice.
// Hasher must not retain references to the dst slice.
//
// Both methods must be deterministic and produce output of a single
// fixed size, reported alongside the Hasher wherever a config struct
// carries one. A tree built with one Hasher only verifies against
// proofs and roots produced with the same Hasher.
//
// Furthermore, Hasher methods must be safe to call concurrently.
type Hasher interface {
	Leaf(record []byte, dst []byte)
	Node(left, right []byte, dst []byte)
}
