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
	"sort"

	"golang.org/x/exp/constraints"
)

// node is shared by both variants.
//
// BTree nodes keep values[i] for keys[i] on every level and, when internal,
// len(children) == len(keys)+1.
//
// BPlusTree leaves keep values[i] for keys[i]; BPlusTree internal nodes keep
// no values, len(children) == len(keys) and keys[i] is the smallest key in
// the subtree children[i]. Leaves are chained through next.
type node[K constraints.Ordered, V any] struct {
	keys     []K
	values   []V
	children []*node[K, V]
	leaf     bool
	next     *node[K, V]
}

func newLeaf[K constraints.Ordered, V any]() *node[K, V] {
	return &node[K, V]{leaf: true}
}

// find returns the index where the given key should be inserted into this
// node. 'found' is true if the key already exists at the given index.
func (n *node[K, V]) find(key K) (index int, found bool) {
	i := sort.Search(len(n.keys), func(i int) bool {
		return key < n.keys[i]
	})
	if i > 0 && !(n.keys[i-1] < key) {
		return i - 1, true
	}
	return i, false
}

// route returns the child of a BPlusTree internal node whose subtree may hold
// key: the last child whose first key is <= key, or the first child when key
// is smaller than everything.
func (n *node[K, V]) route(key K) int {
	i := sort.Search(len(n.keys), func(i int) bool {
		return key < n.keys[i]
	})
	if i > 0 {
		i--
	}
	return i
}

// insertEntry inserts a key/value pair at index.
func (n *node[K, V]) insertEntry(index int, key K, value V) {
	n.keys = insertAt(n.keys, index, key)
	n.values = insertAt(n.values, index, value)
}

// removeEntry removes the key/value pair at index.
func (n *node[K, V]) removeEntry(index int) (key K, value V) {
	n.keys, key = removeAt(n.keys, index)
	n.values, value = removeAt(n.values, index)
	return
}

// minNode returns the leftmost leaf below n.
func minNode[K constraints.Ordered, V any](n *node[K, V]) *node[K, V] {
	for !n.leaf {
		n = n.children[0]
	}
	return n
}

// maxNode returns the rightmost leaf below n.
func maxNode[K constraints.Ordered, V any](n *node[K, V]) *node[K, V] {
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n
}

// insertAt inserts a value into the given index, pushing all subsequent values
// forward.
func insertAt[T any](s []T, index int, v T) []T {
	var zero T
	s = append(s, zero)
	if index < len(s)-1 {
		copy(s[index+1:], s[index:])
	}
	s[index] = v
	return s
}

// removeAt removes a value at a given index, pulling all subsequent values
// back.
func removeAt[T any](s []T, index int) ([]T, T) {
	v := s[index]
	copy(s[index:], s[index+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1], v
}

// truncate keeps the first index elements and clears the rest so that the
// dropped values can be collected.
func truncate[T any](s []T, index int) []T {
	var zero T
	for i := index; i < len(s); i++ {
		s[i] = zero
	}
	return s[:index]
}

// tail copies s[index:] into a fresh slice.
func tail[T any](s []T, index int) []T {
	return append([]T(nil), s[index:]...)
}
