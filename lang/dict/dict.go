// Package dict implements the radix (Patricia) trie dictionary the
// compiler passes use as their symbol table, most importantly as the
// inference pass's scope chain. Each key maps to a stack of values so
// push/pop can implement nested lexical scoping: push on block entry, pop
// on block exit restores whatever was visible before.
package dict

import "unsafe"

type valueNode struct {
	value interface{}
	next  *valueNode
}

// entry is one node of the trie: a key fragment, its children (keyed by
// first byte, linked via next) and its stack of values. Keys do not own
// their storage - callers guarantee the key's backing array outlives the
// Dict, typically because both belong to the same compilation unit.
type entry struct {
	keyPart string
	values  *valueNode
	next    *entry // sibling at the same trie level
	child   *entry // first child
}

// slabSize is how many nodes each slab holds. One slab covers the whole
// scope chain of a typical compilation unit, so most dictionaries never
// grow a second one.
const slabSize = 128

// Dict is a trie dictionary with arena-style node storage: entries and
// value stack nodes are carved out of fixed-size slabs the Dict owns, one
// bump allocation per node, and the whole dictionary's memory is handed
// back as a unit when the Dict is dropped or Reset - never node by node.
// The slabs are typed ([]entry, []valueNode) rather than raw bytes so the
// collector can see the pointers the nodes hold; a byte region could not
// keep a node's key or values alive.
type Dict struct {
	root  *entry
	last  string
	found *entry

	entrySlab []entry
	valueSlab []valueNode
}

// Create returns a new empty Dict. Slabs are grown on first use.
func Create() *Dict {
	return &Dict{}
}

// newEntry carves one entry out of the current slab, starting a fresh slab
// when it is full. Nodes already handed out stay where they are; the trie's
// own pointers keep every slab reachable until the Dict goes away.
func (d *Dict) newEntry(e entry) *entry {
	if len(d.entrySlab) == cap(d.entrySlab) {
		d.entrySlab = make([]entry, 0, slabSize)
	}
	d.entrySlab = append(d.entrySlab, e)
	return &d.entrySlab[len(d.entrySlab)-1]
}

func (d *Dict) newValue(v valueNode) *valueNode {
	if len(d.valueSlab) == cap(d.valueSlab) {
		d.valueSlab = make([]valueNode, 0, slabSize)
	}
	d.valueSlab = append(d.valueSlab, v)
	return &d.valueSlab[len(d.valueSlab)-1]
}

// GetEntry returns the trie entry for key, or nil if key isn't present. A
// one-slot cache keyed by the last queried key string (compared first by
// pointer identity, then by content) avoids re-walking the trie for the
// "get immediately followed by get" access pattern common in the inference
// pass.
func (d *Dict) GetEntry(key string) *entry {
	if key == "" {
		return nil
	}
	if d.last != "" && (samePointer(key, d.last) || key == d.last) {
		return d.found
	}
	d.last = key
	d.found = nil

	el := &d.root
	for *el != nil {
		en := *el
		i := 0
		for i < len(key) && i < len(en.keyPart) && key[i] == en.keyPart[i] {
			i++
		}

		if i == len(key) {
			if len(en.keyPart) == i {
				d.found = en
				return en
			}
			return nil
		}
		if i > 0 && i < len(en.keyPart) {
			return nil
		}

		if i == 0 {
			el = &en.next
			continue
		}

		key = key[i:]
		next := &en.child
		for *next != nil && (*next).keyPart[0] != key[0] {
			next = &(*next).next
		}
		if *next == nil {
			return nil
		}
		el = next
	}
	return nil
}

// Get returns the value on top of the stack for key, or nil if key has no
// entry or no values pushed.
func (d *Dict) Get(key string) interface{} {
	en := d.GetEntry(key)
	if en == nil || en.values == nil {
		return nil
	}
	return en.values.value
}

// Put replaces the top-of-stack value for key, splitting trie edges as
// needed, and creating the key if it doesn't already exist.
func (d *Dict) Put(key string, value interface{}) {
	if key == "" {
		return
	}
	d.last = ""

	el := &d.root
	for *el != nil {
		en := *el
		i := 0
		for i < len(key) && i < len(en.keyPart) && key[i] == en.keyPart[i] {
			i++
		}

		if i == len(key) || (i > 0 && i < len(en.keyPart)) {
			if len(en.keyPart) == i {
				if en.values == nil {
					en.values = d.newValue(valueNode{})
				}
				en.values.value = value
				return
			}
			// key is a prefix of en's key part, or they diverge partway through:
			// split en into a shorter prefix entry with a child holding the rest.
			tail := d.newEntry(entry{
				keyPart: en.keyPart[i:],
				values:  en.values,
				child:   en.child,
			})
			en.child = tail
			en.keyPart = en.keyPart[:i]
			if i == len(key) {
				en.values = d.newValue(valueNode{value: value})
				return
			}
			en.values = nil
			newElem := d.newEntry(entry{keyPart: key[i:], values: d.newValue(valueNode{value: value})})
			newElem.next = en.child
			en.child = newElem
			return
		}

		if len(en.keyPart) == i {
			key = key[i:]
			next := &en.child
			for *next != nil && (*next).keyPart[0] != key[0] {
				next = &(*next).next
			}
			if *next == nil {
				*next = d.newEntry(entry{keyPart: key, values: d.newValue(valueNode{value: value})})
				return
			}
			el = next
			continue
		}
		el = &en.next
	}
	*el = d.newEntry(entry{keyPart: key, values: d.newValue(valueNode{value: value})})
}

// Push adds a new value onto the stack for key, making it the current
// value; if key doesn't exist yet it is created. This is how block entry
// installs a local declaration over whatever outer declaration shares its
// name.
func (d *Dict) Push(key string, value interface{}) {
	en := d.GetEntry(key)
	if en == nil {
		d.Put(key, value)
		return
	}
	en.values = d.newValue(valueNode{value: value, next: en.values})
}

// Pop removes and returns the current value for key, restoring whatever
// value (if any) was pushed before it. This is how block exit undoes the
// scoping effect of Push, making push-then-pop a no-op observable to Get.
func (d *Dict) Pop(key string) interface{} {
	en := d.GetEntry(key)
	if en == nil || en.values == nil {
		return nil
	}
	v := en.values
	en.values = v.next
	return v.value
}

// Reset discards every entry and releases the node slabs, returning the
// Dict to the empty state it had right after Create. Scope dictionaries
// built for a single compilation unit are thrown away this way once
// inference finishes with them, rather than one entry at a time.
func (d *Dict) Reset() {
	d.root = nil
	d.last = ""
	d.found = nil
	d.entrySlab = nil
	d.valueSlab = nil
}

// samePointer reports whether a and b are backed by the same underlying
// byte array, so identical interned strings compare equal without a
// byte-by-byte scan even when their contents happen to differ at the
// moment of comparison (they never should, for interned keys).
func samePointer(a, b string) bool {
	return len(a) > 0 && len(a) == len(b) && unsafe.StringData(a) == unsafe.StringData(b)
}
