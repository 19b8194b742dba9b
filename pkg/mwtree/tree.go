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
	"golang.org/x/exp/constraints"
)

// ItemIterator allows callers of Ascend* to iterate in-order over portions of
// the tree. When this function returns false, iteration will stop and the
// associated Ascend* function will immediately return.
type ItemIterator[K constraints.Ordered, V any] func(key K, value V) bool

// Tree is the behaviour shared by BTree and BPlusTree.
type Tree[K constraints.Ordered, V any] interface {
	// Insert adds key with value, honouring the configured DuplicatePolicy.
	Insert(key K, value V) error
	// Get returns the value stored under key.
	Get(key K) (V, bool)
	// Has reports whether key is stored.
	Has(key K) bool
	// Delete removes key and returns its value. Missing keys are a no-op.
	Delete(key K) (V, bool)
	// Min returns the smallest entry.
	Min() (K, V, bool)
	// Max returns the largest entry.
	Max() (K, V, bool)
	// Len returns the number of stored keys.
	Len() int
	// Height returns the number of levels.
	Height() int
	// Order returns the configured order.
	Order() int
	// Variant returns the tree layout.
	Variant() Variant
	// Iter returns an ascending iterator over all entries.
	Iter() *Iterator[K, V]
	// Seek returns an ascending iterator starting at the first key >= start.
	Seek(start K) *Iterator[K, V]
	// Ascend calls fn in ascending order until it returns false.
	Ascend(fn ItemIterator[K, V])
	// AscendRange calls fn for keys in [greaterOrEqual, lessThan).
	AscendRange(greaterOrEqual, lessThan K, fn ItemIterator[K, V])
	// Snapshot returns a level order copy of the structure.
	Snapshot() *Snapshot[K]
	// Verify checks every structural invariant.
	Verify() error
	// Clear removes all entries.
	Clear()
}

var (
	_ Tree[int, struct{}] = (*BTree[int, struct{}])(nil)
	_ Tree[int, struct{}] = (*BPlusTree[int, struct{}])(nil)
)

// New creates the tree selected by cfg.Variant.
func New[K constraints.Ordered, V any](cfg *Config) (Tree[K, V], error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Variant == VariantBPlusTree {
		t, err := NewBPlusTree[K, V](cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	t, err := NewBTree[K, V](cfg)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Keys returns all keys of t in ascending order.
func Keys[K constraints.Ordered, V any](t Tree[K, V]) []K {
	keys := make([]K, 0, t.Len())
	t.Ascend(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
