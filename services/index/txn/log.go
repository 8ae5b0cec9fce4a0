// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package txn holds the transaction log for staged registry mutations.
//
// Every mutating call on the registry records an Op here instead of
// touching committed state. Commit replays the log in submission order
// against a snapshot of committed state; Rollback drops the log without
// side effects. Ordering is load-bearing: a delete staged after a
// register in the same transaction must observe the registered entry.
package txn

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// OpKind identifies the type of a staged operation.
type OpKind string

const (
	// OpRegister stages registration of a path entry.
	OpRegister OpKind = "register"

	// OpUnregister stages removal of a path entry from the registry.
	OpUnregister OpKind = "unregister"

	// OpRegisterCategory stages creation of a category.
	OpRegisterCategory OpKind = "register-category"

	// OpDeleteCategory stages deletion of a category.
	OpDeleteCategory OpKind = "delete-category"

	// OpDeletePath stages deletion of a path entry, optionally with all
	// registered descendants.
	OpDeletePath OpKind = "delete-path"

	// OpTag stages adding an existing entry to an additional category.
	OpTag OpKind = "tag"
)

// Op is one staged mutation. Fields are interpreted per kind; unused
// fields are zero.
type Op struct {
	// Kind selects the mutation.
	Kind OpKind

	// Seq is the submission order, assigned by the log starting at 1.
	Seq uint64

	// EntryID carries the pre-assigned entry ID for OpRegister.
	EntryID uuid.UUID

	// Path is the target path for entry operations.
	Path string

	// Directory is true when OpRegister creates a directory entry.
	Directory bool

	// Category names the category for OpRegister, OpRegisterCategory,
	// OpDeleteCategory and OpTag.
	Category string

	// Info is the optional note for OpRegister and OpRegisterCategory.
	Info string

	// Recursive extends OpUnregister and OpDeletePath to registered
	// descendants of a directory entry.
	Recursive bool

	// Unregister allows OpDeleteCategory to unregister remaining
	// members instead of failing.
	Unregister bool

	// StagedAt records when the operation entered the log.
	StagedAt time.Time
}

// Log is an ordered sequence of staged operations.
//
// Thread Safety:
//
//	Log is safe for concurrent use. The registry serializes commits
//	itself; the log only guards its own slice.
type Log struct {
	mu   sync.Mutex
	ops  []Op
	next uint64
}

// NewLog creates an empty transaction log.
func NewLog() *Log {
	return &Log{next: 1}
}

// Append records op at the end of the log and stamps its sequence
// number and staging time. Returns the assigned sequence number.
func (l *Log) Append(op Op) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	op.Seq = l.next
	if op.StagedAt.IsZero() {
		op.StagedAt = time.Now()
	}
	l.next++
	l.ops = append(l.ops, op)
	return op.Seq
}

// Ops returns a copy of the staged operations in submission order.
func (l *Log) Ops() []Op {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Op, len(l.ops))
	copy(out, l.ops)
	return out
}

// Len returns the number of staged operations.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ops)
}

// Clear discards all staged operations. Sequence numbering continues
// from where it left off so replayed transactions stay distinguishable
// in logs.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = nil
}
