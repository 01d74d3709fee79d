// Package mtree provides a binary Merkle tree over an ordered
// collection of byte records.
//
// A [Tree] digests every record into a leaf, then repeatedly merges
// adjacent digests pairwise until a single root digest remains.
// The root compactly commits to the entire record set;
// [*Tree.Prove] produces a [Proof] of membership for one record,
// and [VerifyProof] checks such a proof against a root digest
// without any access to the rest of the records.
//
// The concrete digest algorithm is pluggable through the [Hasher]
// interface; see the mtsha256 and mtblake3 subpackages
// for ready-made implementations.
package mtree
