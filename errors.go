package mtree

import (
	"errors"
	"fmt"
)

// ErrEmptyTree is returned from [*Tree.Root] and [*Tree.Prove]
// when the tree holds zero records and therefore has no defined root.
var ErrEmptyTree = errors.New("tree has no records")

// RecordNotFoundError is returned from [*Tree.Prove]
// if no stored record is byte-equal to the given record.
type RecordNotFoundError struct {
	Record []byte
}

func (e RecordNotFoundError) Error() string {
	return fmt.Sprintf("record %x not present in tree", e.Record)
}
