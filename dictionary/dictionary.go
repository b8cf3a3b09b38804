// Package dictionary holds the "previous value" state consulted by the copy,
// delta, increment and tail operators.
//
// Lookups never hash strings at runtime. Each (scope, key) pair is given a
// dense slot number once, when the schema is finalized, and a Dictionary is
// a flat array of tri-state entries indexed by that number.
package dictionary

import (
	"fmt"

	"github.com/wippyai/fastcodec/value"
)

// State is the tri-state of a dictionary entry.
type State uint8

const (
	Undefined State = iota
	Null
	Assigned
)

func (s State) String() string {
	switch s {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Assigned:
		return "value"
	}
	return fmt.Sprintf("State(%d)", s)
}

// Slot indexes a dictionary entry.
type Slot int32

// NoSlot marks an operator that does not use the dictionary.
const NoSlot Slot = -1

// Global is the default scope name.
const Global = "global"

// Key names a dictionary entry before slot assignment.
type Key struct {
	Scope string
	Name  string
}

func (k Key) String() string {
	return k.Scope + ":" + k.Name
}

// Layout assigns slots to keys. It is built once during schema finalize and
// is read-only afterwards.
type Layout struct {
	slots map[Key]Slot
	keys  []Key
}

// NewLayout creates an empty layout.
func NewLayout() *Layout {
	return &Layout{slots: make(map[Key]Slot)}
}

// Slot returns the slot for k, assigning the next free one on first use.
func (l *Layout) Slot(k Key) Slot {
	if s, ok := l.slots[k]; ok {
		return s
	}
	s := Slot(len(l.keys))
	l.slots[k] = s
	l.keys = append(l.keys, k)
	return s
}

// Lookup returns the slot for k if one was assigned.
func (l *Layout) Lookup(k Key) (Slot, bool) {
	s, ok := l.slots[k]
	return s, ok
}

// Key returns the key a slot was assigned for.
func (l *Layout) Key(s Slot) Key {
	return l.keys[s]
}

// Len returns the number of assigned slots.
func (l *Layout) Len() int {
	return len(l.keys)
}

type entry struct {
	value value.Value
	state State
}

// Dictionary is the mutable state of one decoding or encoding session. It
// is not safe for concurrent use.
//
// Between Begin and Commit every change is journaled so that Rollback can
// restore the entries as they were at Begin.
type Dictionary struct {
	entries    []entry
	journal    []change
	journaling bool
}

type change struct {
	slot Slot
	prev entry
}

// New creates a dictionary with size undefined entries.
func New(size int) *Dictionary {
	return &Dictionary{entries: make([]entry, size)}
}

// Len returns the number of slots.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Get returns the state of s and, when Assigned, its value.
func (d *Dictionary) Get(s Slot) (value.Value, State) {
	e := &d.entries[s]
	return e.value, e.state
}

// Set stores v in s.
func (d *Dictionary) Set(s Slot, v value.Value) {
	d.record(s)
	d.entries[s] = entry{value: v, state: Assigned}
}

// SetNull marks s as explicitly null.
func (d *Dictionary) SetNull(s Slot) {
	d.record(s)
	d.entries[s] = entry{state: Null}
}

// Reset returns every entry to Undefined.
func (d *Dictionary) Reset() {
	if d.journaling {
		for i := range d.entries {
			if d.entries[i].state != Undefined {
				d.record(Slot(i))
			}
		}
	}
	clear(d.entries)
}

// Begin starts journaling changes, discarding any earlier journal.
func (d *Dictionary) Begin() {
	d.journal = d.journal[:0]
	d.journaling = true
}

// Commit keeps every change since Begin and stops journaling.
func (d *Dictionary) Commit() {
	clear(d.journal)
	d.journal = d.journal[:0]
	d.journaling = false
}

// Rollback undoes every change since Begin and stops journaling. Without
// a Begin it does nothing.
func (d *Dictionary) Rollback() {
	for i := len(d.journal) - 1; i >= 0; i-- {
		c := d.journal[i]
		d.entries[c.slot] = c.prev
	}
	d.Commit()
}

func (d *Dictionary) record(s Slot) {
	if d.journaling {
		d.journal = append(d.journal, change{slot: s, prev: d.entries[s]})
	}
}

// Grow extends the dictionary to hold size slots. New slots are Undefined.
func (d *Dictionary) Grow(size int) {
	if size <= len(d.entries) {
		return
	}
	d.entries = append(d.entries, make([]entry, size-len(d.entries))...)
}
