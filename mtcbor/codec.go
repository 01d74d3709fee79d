// Package mtcbor encodes proofs and root summaries as CBOR,
// for callers that transfer them between processes.
//
// The tree engine itself has no wire format;
// this package is a thin wrapper around the mtree value types.
package mtcbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gordian-engine/mtree"
)

// Deterministic encoding, so that equal proofs
// always produce byte-equal messages.
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

type proofEntryMsg struct {
	Sibling []byte `cbor:"1,keyasint"`
	Side    byte   `cbor:"2,keyasint"`
}

type proofMsg struct {
	Entries []proofEntryMsg `cbor:"1,keyasint"`
}

type rootSummaryMsg struct {
	Root       []byte `cbor:"1,keyasint"`
	NumRecords uint64 `cbor:"2,keyasint"`
	HashSize   uint64 `cbor:"3,keyasint"`
}

// RootSummary pairs a root digest with the tree shape details
// a proof consumer needs to configure verification,
// e.g. through [mtree.PartialTreeConfig].
type RootSummary struct {
	Root       []byte
	NumRecords int
	HashSize   int
}

// EncodeProof returns the CBOR encoding of p.
func EncodeProof(p mtree.Proof) ([]byte, error) {
	msg := proofMsg{
		Entries: make([]proofEntryMsg, len(p.Entries)),
	}
	for i, e := range p.Entries {
		msg.Entries[i] = proofEntryMsg{
			Sibling: e.Sibling,
			Side:    byte(e.Side),
		}
	}

	b, err := encMode.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}
	return b, nil
}

// DecodeProof parses a proof encoded by [EncodeProof].
//
// Every sibling digest must be hashSize bytes
// and every side tag must be a valid [mtree.Side],
// so that a successfully decoded proof is structurally usable.
// Whether it actually verifies is still up to [mtree.VerifyProof].
func DecodeProof(b []byte, hashSize int) (mtree.Proof, error) {
	var msg proofMsg
	if err := cbor.Unmarshal(b, &msg); err != nil {
		return mtree.Proof{}, fmt.Errorf("failed to decode proof: %w", err)
	}

	entries := make([]mtree.ProofEntry, len(msg.Entries))
	for i, e := range msg.Entries {
		if len(e.Sibling) != hashSize {
			return mtree.Proof{}, fmt.Errorf(
				"proof entry %d: sibling digest must be %d bytes, got %d",
				i, hashSize, len(e.Sibling),
			)
		}

		side := mtree.Side(e.Side)
		if side != mtree.SideLeft && side != mtree.SideRight {
			return mtree.Proof{}, fmt.Errorf(
				"proof entry %d: invalid side tag %d", i, e.Side,
			)
		}

		entries[i] = mtree.ProofEntry{
			Sibling: e.Sibling,
			Side:    side,
		}
	}

	return mtree.Proof{Entries: entries}, nil
}

// EncodeRootSummary returns the CBOR encoding of s.
func EncodeRootSummary(s RootSummary) ([]byte, error) {
	b, err := encMode.Marshal(rootSummaryMsg{
		Root:       s.Root,
		NumRecords: uint64(s.NumRecords),
		HashSize:   uint64(s.HashSize),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode root summary: %w", err)
	}
	return b, nil
}

// DecodeRootSummary parses a summary encoded by [EncodeRootSummary].
// The root digest's length must match the declared hash size.
func DecodeRootSummary(b []byte) (RootSummary, error) {
	var msg rootSummaryMsg
	if err := cbor.Unmarshal(b, &msg); err != nil {
		return RootSummary{}, fmt.Errorf("failed to decode root summary: %w", err)
	}

	if msg.HashSize == 0 || uint64(len(msg.Root)) != msg.HashSize {
		return RootSummary{}, fmt.Errorf(
			"root digest must be %d bytes, got %d", msg.HashSize, len(msg.Root),
		)
	}

	return RootSummary{
		Root:       msg.Root,
		NumRecords: int(msg.NumRecords),
		HashSize:   int(msg.HashSize),
	}, nil
}
