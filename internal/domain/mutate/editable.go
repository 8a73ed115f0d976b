// Package mutate perturbs sampled reads: it draws an edit combination
// for each read under a sampling policy and places the edits at random
// positions, optionally verifying the achieved penalty against an exact
// alignment oracle.
package mutate

import "strings"

// Editable is a sequence of single-base slots supporting O(1) tombstone
// deletion, replacement, and prefix insertion. Deleting a slot empties
// it instead of shrinking the array, so slot indices stay stable across
// a whole batch of edits; the final sequence is assembled by String.
type Editable struct {
	slots []string
}

// NewEditable splits s into one slot per byte.
func NewEditable(s string) *Editable {
	slots := make([]string, len(s))
	for i := range slots {
		slots[i] = s[i : i+1]
	}
	return &Editable{slots: slots}
}

// Len returns the slot count (the original sequence length).
func (e *Editable) Len() int {
	return len(e.slots)
}

// Get returns the current content of slot i; empty once tombstoned.
func (e *Editable) Get(i int) string {
	return e.slots[i]
}

// Set replaces the content of slot i.
func (e *Editable) Set(i int, s string) {
	e.slots[i] = s
}

// Delete tombstones slot i.
func (e *Editable) Delete(i int) {
	e.slots[i] = ""
}

// Prepend inserts c in front of slot i's current content.
func (e *Editable) Prepend(i int, c byte) {
	e.slots[i] = string(c) + e.slots[i]
}

// String assembles the edited sequence, skipping tombstones.
func (e *Editable) String() string {
	var b strings.Builder
	b.Grow(len(e.slots))
	for _, s := range e.slots {
		b.WriteString(s)
	}
	return b.String()
}
