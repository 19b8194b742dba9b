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

import "golang.org/x/exp/constraints"

type cursor[K constraints.Ordered, V any] interface {
	next() (K, V, bool)
}

// Iterator walks entries in ascending key order. It is invalidated by any
// Insert, Delete or Clear on the tree it came from.
//
//	it := t.Seek(10)
//	for it.Next() {
//		fmt.Println(it.Key(), it.Value())
//	}
type Iterator[K constraints.Ordered, V any] struct {
	c     cursor[K, V]
	key   K
	value V
	valid bool
}

func newIterator[K constraints.Ordered, V any](c cursor[K, V]) *Iterator[K, V] {
	return &Iterator[K, V]{c: c}
}

// Next advances the iterator and reports whether an entry is available.
func (it *Iterator[K, V]) Next() bool {
	it.key, it.value, it.valid = it.c.next()
	return it.valid
}

// Valid reports whether the last call to Next found an entry.
func (it *Iterator[K, V]) Valid() bool {
	return it.valid
}

// Key returns the current key.
func (it *Iterator[K, V]) Key() K {
	return it.key
}

// Value returns the current value.
func (it *Iterator[K, V]) Value() V {
	return it.value
}

// leafCursor follows the BPlusTree leaf chain.
type leafCursor[K constraints.Ordered, V any] struct {
	leaf *node[K, V]
	i    int
}

func (c *leafCursor[K, V]) next() (key K, value V, ok bool) {
	for c.leaf != nil && c.i >= len(c.leaf.keys) {
		c.leaf, c.i = c.leaf.next, 0
	}
	if c.leaf == nil {
		return
	}
	key, value = c.leaf.keys[c.i], c.leaf.values[c.i]
	c.i++
	return key, value, true
}

// stackCursor does an in-order walk of a BTree. Each frame holds a node and
// the index of the next key to emit from it.
type stackCursor[K constraints.Ordered, V any] struct {
	stack []frame[K, V]
}

func (c *stackCursor[K, V]) pushLeft(n *node[K, V]) {
	for {
		c.stack = append(c.stack, frame[K, V]{n: n})
		if n.leaf {
			return
		}
		n = n.children[0]
	}
}

// seek builds the stack so that the first emitted key is the smallest one
// that is >= start.
func (c *stackCursor[K, V]) seek(n *node[K, V], start K) {
	for {
		i, found := n.find(start)
		c.stack = append(c.stack, frame[K, V]{n: n, i: i})
		if found || n.leaf {
			return
		}
		n = n.children[i]
	}
}

func (c *stackCursor[K, V]) next() (key K, value V, ok bool) {
	for len(c.stack) > 0 {
		top := len(c.stack) - 1
		f := c.stack[top]
		if f.i >= len(f.n.keys) {
			c.stack = c.stack[:top]
			continue
		}
		key, value = f.n.keys[f.i], f.n.values[f.i]
		c.stack[top].i++
		if !f.n.leaf {
			c.pushLeft(f.n.children[f.i+1])
		}
		return key, value, true
	}
	return
}

// ascend drains it into fn, stopping before lessThan when it is set.
func ascend[K constraints.Ordered, V any](it *Iterator[K, V], lessThan *K, fn ItemIterator[K, V]) {
	for it.Next() {
		if lessThan != nil && !(it.Key() < *lessThan) {
			return
		}
		if !fn(it.Key(), it.Value()) {
			return
		}
	}
}
