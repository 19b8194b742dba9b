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

// BPlusTree keeps every entry in its leaves, which are chained left to right,
// and only routing keys in internal nodes. Nodes hold at most m keys and,
// unless they are the root, at least ceil(m/2), where m is the order.
//
// Insert and Delete record the descent path and repair overflow or underflow
// from the leaf back up to the root.
//
// BPlusTree is not safe for concurrent use.
type BPlusTree[K constraints.Ordered, V any] struct {
	order  int
	dup    DuplicatePolicy
	root   *node[K, V]
	length int
	height int
}

// frame is one step of a descent: node n and the index of the child taken
// from it.
type frame[K constraints.Ordered, V any] struct {
	n *node[K, V]
	i int
}

// NewBPlusTree creates a BPlusTree from cfg. cfg.Variant is ignored.
func NewBPlusTree[K constraints.Ordered, V any](cfg *Config) (*BPlusTree[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BPlusTree[K, V]{
		order:  cfg.Order,
		dup:    cfg.Duplicate,
		root:   newLeaf[K, V](),
		height: 1,
	}, nil
}

func (t *BPlusTree[K, V]) maxKeys() int {
	return t.order
}

// minKeys is ceil(order/2), ignored for the root.
func (t *BPlusTree[K, V]) minKeys() int {
	return (t.order + 1) / 2
}

// Variant implements Tree.
func (t *BPlusTree[K, V]) Variant() Variant {
	return VariantBPlusTree
}

// Order returns the fanout.
func (t *BPlusTree[K, V]) Order() int {
	return t.order
}

// Len returns the number of keys currently in the tree.
func (t *BPlusTree[K, V]) Len() int {
	return t.length
}

// Height returns the number of levels, 1 for a tree that is a single leaf.
func (t *BPlusTree[K, V]) Height() int {
	return t.height
}

// descend records the route from the root to the leaf that owns key.
func (t *BPlusTree[K, V]) descend(key K) []frame[K, V] {
	path := make([]frame[K, V], 0, t.height)
	n := t.root
	for !n.leaf {
		i := n.route(key)
		path = append(path, frame[K, V]{n: n, i: i})
		n = n.children[i]
	}
	return append(path, frame[K, V]{n: n})
}

// leafFor returns the leaf that owns key.
func (t *BPlusTree[K, V]) leafFor(key K) *node[K, V] {
	n := t.root
	for !n.leaf {
		n = n.children[n.route(key)]
	}
	return n
}

// Insert adds key with value. An existing key gets its value replaced, or
// ErrDuplicateKey under DuplicateReject.
func (t *BPlusTree[K, V]) Insert(key K, value V) error {
	path := t.descend(key)
	leaf := path[len(path)-1].n
	i, found := leaf.find(key)
	if found {
		if t.dup == DuplicateReject {
			return errs.ErrDuplicateKey.GenWithStackByArgs(key)
		}
		leaf.values[i] = value
		return nil
	}
	leaf.insertEntry(i, key, value)
	t.length++
	t.splitUpward(path)
	return nil
}

// Get looks for key, returning its value. It returns (zeroValue, false) if
// the key is absent.
func (t *BPlusTree[K, V]) Get(key K) (_ V, _ bool) {
	leaf := t.leafFor(key)
	if i, found := leaf.find(key); found {
		return leaf.values[i], true
	}
	return
}

// Has returns true if the given key is in the tree.
func (t *BPlusTree[K, V]) Has(key K) bool {
	_, found := t.Get(key)
	return found
}

// Delete removes key, returning its value. An absent key leaves the tree
// untouched and returns (zeroValue, false).
func (t *BPlusTree[K, V]) Delete(key K) (_ V, _ bool) {
	path := t.descend(key)
	leaf := path[len(path)-1].n
	i, found := leaf.find(key)
	if !found {
		return
	}
	_, value := leaf.removeEntry(i)
	t.length--
	t.rebalanceUpward(path)
	return value, true
}

// Min returns the smallest entry, or found == false if the tree is empty.
func (t *BPlusTree[K, V]) Min() (key K, value V, found bool) {
	n := minNode(t.root)
	if len(n.keys) == 0 {
		return
	}
	return n.keys[0], n.values[0], true
}

// Max returns the largest entry, or found == false if the tree is empty.
func (t *BPlusTree[K, V]) Max() (key K, value V, found bool) {
	n := maxNode(t.root)
	if len(n.keys) == 0 {
		return
	}
	last := len(n.keys) - 1
	return n.keys[last], n.values[last], true
}

// Clear removes all entries from the tree.
func (t *BPlusTree[K, V]) Clear() {
	t.root, t.length, t.height = newLeaf[K, V](), 0, 1
}

// Iter returns an iterator that walks the leaf chain from the leftmost leaf.
func (t *BPlusTree[K, V]) Iter() *Iterator[K, V] {
	return newIterator[K, V](&leafCursor[K, V]{leaf: minNode(t.root)})
}

// Seek returns an iterator positioned at the first entry whose key is >= start.
func (t *BPlusTree[K, V]) Seek(start K) *Iterator[K, V] {
	leaf := t.leafFor(start)
	i, _ := leaf.find(start)
	return newIterator[K, V](&leafCursor[K, V]{leaf: leaf, i: i})
}

// Ascend calls fn for every entry in ascending order until fn returns false.
func (t *BPlusTree[K, V]) Ascend(fn ItemIterator[K, V]) {
	ascend(t.Iter(), nil, fn)
}

// AscendRange calls fn for every entry within [greaterOrEqual, lessThan)
// until fn returns false.
func (t *BPlusTree[K, V]) AscendRange(greaterOrEqual, lessThan K, fn ItemIterator[K, V]) {
	ascend(t.Seek(greaterOrEqual), &lessThan, fn)
}

// Snapshot implements Tree.
func (t *BPlusTree[K, V]) Snapshot() *Snapshot[K] {
	return takeSnapshot(VariantBPlusTree, t.order, t.length, t.height, t.root)
}

// Verify implements Tree.
func (t *BPlusTree[K, V]) Verify() error {
	v := &verifier[K, V]{
		variant: VariantBPlusTree,
		minKeys: t.minKeys(),
		maxKeys: t.maxKeys(),
		root:    t.root,
	}
	return v.run(t.length, t.height)
}
