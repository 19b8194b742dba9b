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
	"fmt"

	"github.com/tikv/mwtree/pkg/errs"
	"golang.org/x/exp/constraints"
)

type verifier[K constraints.Ordered, V any] struct {
	variant Variant
	minKeys int
	maxKeys int
	root    *node[K, V]

	leaves []*node[K, V]
	count  int
}

// bound is an optional limit on the keys of a subtree.
type bound[K constraints.Ordered] struct {
	key       K
	set       bool
	inclusive bool
}

func violation(format string, args ...interface{}) error {
	return errs.ErrInvariantViolation.GenWithStackByArgs(fmt.Sprintf(format, args...))
}

func (v *verifier[K, V]) run(length, height int) error {
	if height < 1 {
		return violation("height %d is less than 1", height)
	}
	if err := v.walk(v.root, 0, height, bound[K]{}, bound[K]{}); err != nil {
		return err
	}
	if v.count != length {
		return violation("counted %d keys, length is %d", v.count, length)
	}
	if v.variant == VariantBPlusTree {
		return v.checkChain()
	}
	return nil
}

func (v *verifier[K, V]) walk(n *node[K, V], depth, height int, lo, hi bound[K]) error {
	if n == nil {
		return violation("nil node at depth %d", depth)
	}
	isRoot := n == v.root
	if len(n.keys) > v.maxKeys {
		return violation("node at depth %d has %d keys, max is %d", depth, len(n.keys), v.maxKeys)
	}
	if !isRoot && len(n.keys) < v.minKeys {
		return violation("node at depth %d has %d keys, min is %d", depth, len(n.keys), v.minKeys)
	}
	for i, key := range n.keys {
		if i > 0 && !(n.keys[i-1] < key) {
			return violation("keys %v at depth %d are not strictly ascending", n.keys, depth)
		}
		if lo.set && (key < lo.key || (!lo.inclusive && key == lo.key)) {
			return violation("key %v at depth %d is below its lower bound %v", key, depth, lo.key)
		}
		if hi.set && !(key < hi.key) {
			return violation("key %v at depth %d is not below its upper bound %v", key, depth, hi.key)
		}
	}
	if n.leaf {
		return v.checkLeaf(n, depth, height)
	}
	if depth+1 >= height {
		return violation("internal node at depth %d, height is %d", depth, height)
	}
	if v.variant == VariantBPlusTree {
		return v.walkBPlusInternal(n, depth, height, hi)
	}
	return v.walkBTreeInternal(n, depth, height, lo, hi)
}

func (v *verifier[K, V]) checkLeaf(n *node[K, V], depth, height int) error {
	if depth != height-1 {
		return violation("leaf at depth %d, height is %d", depth, height)
	}
	if len(n.children) != 0 {
		return violation("leaf at depth %d has %d children", depth, len(n.children))
	}
	if len(n.values) != len(n.keys) {
		return violation("leaf at depth %d has %d keys and %d values", depth, len(n.keys), len(n.values))
	}
	v.count += len(n.keys)
	v.leaves = append(v.leaves, n)
	return nil
}

func (v *verifier[K, V]) walkBTreeInternal(n *node[K, V], depth, height int, lo, hi bound[K]) error {
	if len(n.keys) == 0 {
		return violation("internal node at depth %d has no keys", depth)
	}
	if len(n.children) != len(n.keys)+1 {
		return violation("internal node at depth %d has %d keys and %d children", depth, len(n.keys), len(n.children))
	}
	if len(n.values) != len(n.keys) {
		return violation("internal node at depth %d has %d keys and %d values", depth, len(n.keys), len(n.values))
	}
	v.count += len(n.keys)
	for i, c := range n.children {
		clo, chi := lo, hi
		if i > 0 {
			clo = bound[K]{key: n.keys[i-1], set: true}
		}
		if i < len(n.keys) {
			chi = bound[K]{key: n.keys[i], set: true}
		}
		if err := v.walk(c, depth+1, height, clo, chi); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier[K, V]) walkBPlusInternal(n *node[K, V], depth, height int, hi bound[K]) error {
	if len(n.children) != len(n.keys) {
		return violation("internal node at depth %d has %d keys and %d children", depth, len(n.keys), len(n.children))
	}
	if len(n.children) < 2 && n == v.root {
		return violation("internal root has %d children", len(n.children))
	}
	if len(n.values) != 0 {
		return violation("internal node at depth %d carries %d values", depth, len(n.values))
	}
	for i, c := range n.children {
		chi := hi
		if i+1 < len(n.keys) {
			chi = bound[K]{key: n.keys[i+1], set: true}
		}
		if err := v.walk(c, depth+1, height, bound[K]{key: n.keys[i], set: true, inclusive: true}, chi); err != nil {
			return err
		}
		first := minNode(c)
		if len(first.keys) == 0 || first.keys[0] != n.keys[i] {
			return violation("separator %v at depth %d does not match the first key of its subtree", n.keys[i], depth)
		}
	}
	return nil
}

func (v *verifier[K, V]) checkChain() error {
	for i, leaf := range v.leaves {
		var want *node[K, V]
		if i+1 < len(v.leaves) {
			want = v.leaves[i+1]
		}
		if leaf.next != want {
			return violation("leaf %d of %d is not linked to its right neighbour", i, len(v.leaves))
		}
	}
	return nil
}
