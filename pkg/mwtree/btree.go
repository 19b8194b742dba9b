// Copyright 2023 TiKV Project Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mwtree

import (
	"github.com/tikv/mwtree/pkg/errs"
	"golang.org/x/exp/constraints"
)

// BTree is a classic B-Tree of minimum degree t: every node stores values next
// to its keys, holds at most 2t-1 keys and, unless it is the root, at least
// t-1 keys. The configured order is t, and Order returns t rather than the
// maximum key count: an order-3 BTree keeps up to 5 keys per node.
//
// Insert splits full nodes on the way down and Delete grows thin nodes on the
// way down, so neither has to walk back up.
//
// BTree is not safe for concurrent use.
type BTree[K constraints.Ordered, V any] struct {
	degree int
	dup    DuplicatePolicy
	root   *node[K, V]
	length int
	height int
}

// NewBTree creates a BTree from cfg. cfg.Variant is ignored.
func NewBTree[K constraints.Ordered, V any](cfg *Config) (*BTree[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BTree[K, V]{
		degree: cfg.Order,
		dup:    cfg.Duplicate,
		root:   newLeaf[K, V](),
		height: 1,
	}, nil
}

// maxKeys returns the max number of keys to allow per node.
func (t *BTree[K, V]) maxKeys() int {
	return t.degree*2 - 1
}

// minKeys returns the min number of keys to allow per node (ignored for the
// root node).
func (t *BTree[K, V]) minKeys() int {
	return t.degree - 1
}

// Variant implements Tree.
func (t *BTree[K, V]) Variant() Variant {
	return VariantBTree
}

// Order returns the minimum degree.
func (t *BTree[K, V]) Order() int {
	return t.degree
}

// Len returns the number of keys currently in the tree.
func (t *BTree[K, V]) Len() int {
	return t.length
}

// Height returns the number of levels, 1 for a tree that is a single leaf.
func (t *BTree[K, V]) Height() int {
	return t.height
}

// Insert adds key with value. An existing key gets its value replaced, or
// ErrDuplicateKey under DuplicateReject.
func (t *BTree[K, V]) Insert(key K, value V) error {
	if t.dup == DuplicateReject && t.Has(key) {
		return errs.ErrDuplicateKey.GenWithStackByArgs(key)
	}
	if len(t.root.keys) >= t.maxKeys() {
		k, v, second := t.root.split(t.maxKeys() / 2)
		oldroot := t.root
		t.root = &node[K, V]{
			keys:     []K{k},
			values:   []V{v},
			children: []*node[K, V]{oldroot, second},
		}
		t.height++
	}
	if !t.root.insert(key, value, t.maxKeys()) {
		t.length++
	}
	return nil
}

// insert inserts an entry into the subtree rooted at this node, making sure
// no nodes in the subtree exceed maxKeys keys. Returns true if an equal key
// was found and its value replaced.
func (n *node[K, V]) insert(key K, value V, maxKeys int) bool {
	i, found := n.find(key)
	if found {
		n.values[i] = value
		return true
	}
	if n.leaf {
		n.insertEntry(i, key, value)
		return false
	}
	if n.maybeSplitChild(i, maxKeys) {
		inTree := n.keys[i]
		switch {
		case key < inTree:
			// no change, we want first split node
		case inTree < key:
			i++ // we want second split node
		default:
			n.values[i] = value
			return true
		}
	}
	return n.children[i].insert(key, value, maxKeys)
}

// Get looks for key, returning its value. It returns (zeroValue, false) if
// the key is absent.
func (t *BTree[K, V]) Get(key K) (_ V, _ bool) {
	n := t.root
	for {
		i, found := n.find(key)
		if found {
			return n.values[i], true
		}
		if n.leaf {
			return
		}
		n = n.children[i]
	}
}

// Has returns true if the given key is in the tree.
func (t *BTree[K, V]) Has(key K) bool {
	_, found := t.Get(key)
	return found
}

// Min returns the smallest entry, or found == false if the tree is empty.
func (t *BTree[K, V]) Min() (key K, value V, found bool) {
	n := minNode(t.root)
	if len(n.keys) == 0 {
		return
	}
	return n.keys[0], n.values[0], true
}

// Max returns the largest entry, or found == false if the tree is empty.
func (t *BTree[K, V]) Max() (key K, value V, found bool) {
	n := maxNode(t.root)
	if len(n.keys) == 0 {
		return
	}
	last := len(n.keys) - 1
	return n.keys[last], n.values[last], true
}

// toRemove details what entry to remove in a node.remove call.
type toRemove int

const (
	removeItem toRemove = iota // removes the given key
	removeMin                  // removes smallest key in the subtree
	removeMax                  // removes largest key in the subtree
)

// Delete removes key, returning its value. An absent key leaves the tree
// untouched and returns (zeroValue, false).
func (t *BTree[K, V]) Delete(key K) (_ V, _ bool) {
	if !t.Has(key) {
		return
	}
	_, value, found := t.root.remove(key, t.minKeys(), removeItem)
	if len(t.root.keys) == 0 && !t.root.leaf {
		t.root = t.root.children[0]
		t.height--
	}
	if found {
		t.length--
	}
	return value, found
}

// remove removes an entry from the subtree rooted at this node. Every child
// it descends into is first grown to hold more than minKeys keys.
func (n *node[K, V]) remove(key K, minKeys int, typ toRemove) (_ K, _ V, _ bool) {
	var zero K
	var i int
	var found bool
	switch typ {
	case removeMax:
		if n.leaf {
			k, v := n.removeEntry(len(n.keys) - 1)
			return k, v, true
		}
		i = len(n.keys)
	case removeMin:
		if n.leaf {
			k, v := n.removeEntry(0)
			return k, v, true
		}
		i = 0
	case removeItem:
		i, found = n.find(key)
		if n.leaf {
			if found {
				k, v := n.removeEntry(i)
				return k, v, true
			}
			return
		}
	default:
		panic("invalid type")
	}
	if found {
		outKey, outValue := n.keys[i], n.values[i]
		switch {
		case len(n.children[i].keys) > minKeys:
			// Replace with the predecessor, the rightmost entry of the left
			// subtree.
			n.keys[i], n.values[i], _ = n.children[i].remove(zero, minKeys, removeMax)
			return outKey, outValue, true
		case len(n.children[i+1].keys) > minKeys:
			// Replace with the successor, the leftmost entry of the right
			// subtree.
			n.keys[i], n.values[i], _ = n.children[i+1].remove(zero, minKeys, removeMin)
			return outKey, outValue, true
		default:
			// Both neighbours are thin: merge them around the key and remove
			// it from the merged node.
			n.mergeAround(i)
			return n.children[i].remove(key, minKeys, removeItem)
		}
	}
	if len(n.children[i].keys) <= minKeys {
		i = n.growChild(i, minKeys)
	}
	return n.children[i].remove(key, minKeys, typ)
}

// Clear removes all entries from the tree.
func (t *BTree[K, V]) Clear() {
	t.root, t.length, t.height = newLeaf[K, V](), 0, 1
}

// Iter returns an iterator over all entries in ascending order.
func (t *BTree[K, V]) Iter() *Iterator[K, V] {
	c := &stackCursor[K, V]{}
	c.pushLeft(t.root)
	return newIterator[K, V](c)
}

// Seek returns an iterator positioned at the first entry whose key is >= start.
func (t *BTree[K, V]) Seek(start K) *Iterator[K, V] {
	c := &stackCursor[K, V]{}
	c.seek(t.root, start)
	return newIterator[K, V](c)
}

// Ascend calls fn for every entry in ascending order until fn returns false.
func (t *BTree[K, V]) Ascend(fn ItemIterator[K, V]) {
	ascend(t.Iter(), nil, fn)
}

// AscendRange calls fn for every entry within [greaterOrEqual, lessThan)
// until fn returns false.
func (t *BTree[K, V]) AscendRange(greaterOrEqual, lessThan K, fn ItemIterator[K, V]) {
	ascend(t.Seek(greaterOrEqual), &lessThan, fn)
}

// Snapshot implements Tree.
func (t *BTree[K, V]) Snapshot() *Snapshot[K] {
	return takeSnapshot(VariantBTree, t.degree, t.length, t.height, t.root)
}

// Verify implements Tree.
func (t *BTree[K, V]) Verify() error {
	v := &verifier[K, V]{
		variant: VariantBTree,
		minKeys: t.minKeys(),
		maxKeys: t.maxKeys(),
		root:    t.root,
	}
	return v.run(t.length, t.height)
}
