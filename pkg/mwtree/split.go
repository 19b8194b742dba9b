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

// split splits a BTree node at the given index. The current node shrinks,
// and this function returns the entry that existed at that index and a new
// node containing all entries/children after it.
func (n *node[K, V]) split(i int) (K, V, *node[K, V]) {
	key, value := n.keys[i], n.values[i]
	next := &node[K, V]{leaf: n.leaf}
	next.keys = tail(n.keys, i+1)
	next.values = tail(n.values, i+1)
	n.keys = truncate(n.keys, i)
	n.values = truncate(n.values, i)
	if !n.leaf {
		next.children = tail(n.children, i+1)
		n.children = truncate(n.children, i+1)
	}
	return key, value, next
}

// maybeSplitChild checks if a BTree child is full, and if so splits it around
// its median, which moves up into n. Returns whether or not a split occurred.
func (n *node[K, V]) maybeSplitChild(i, maxKeys int) bool {
	if len(n.children[i].keys) < maxKeys {
		return false
	}
	first := n.children[i]
	key, value, second := first.split(maxKeys / 2)
	n.insertEntry(i, key, value)
	n.children = insertAt(n.children, i+1, second)
	return true
}

// splitHalf moves the upper half of a BPlusTree node, starting at
// ceil(len/2), into a new right sibling and returns it. A leaf sibling is
// linked right after n in the leaf chain. The caller promotes the sibling's
// first key into the parent.
func (n *node[K, V]) splitHalf() *node[K, V] {
	mid := (len(n.keys) + 1) / 2
	next := &node[K, V]{leaf: n.leaf}
	next.keys = tail(n.keys, mid)
	n.keys = truncate(n.keys, mid)
	if n.leaf {
		next.values = tail(n.values, mid)
		n.values = truncate(n.values, mid)
		next.next = n.next
		n.next = next
	} else {
		next.children = tail(n.children, mid)
		n.children = truncate(n.children, mid)
	}
	return next
}

// splitUpward repairs overflow along a BPlusTree descent path, leaf first.
// Every level also refreshes the separator its parent keeps for it, since an
// insert may have lowered the first key of the subtree.
func (t *BPlusTree[K, V]) splitUpward(path []frame[K, V]) {
	for level := len(path) - 1; level >= 0; level-- {
		n := path[level].n
		if level > 0 {
			parent := path[level-1]
			parent.n.keys[parent.i] = n.keys[0]
		}
		if len(n.keys) <= t.maxKeys() {
			continue
		}
		next := n.splitHalf()
		if level == 0 {
			t.root = &node[K, V]{
				keys:     []K{n.keys[0], next.keys[0]},
				children: []*node[K, V]{n, next},
			}
			t.height++
			continue
		}
		parent := path[level-1]
		parent.n.keys = insertAt(parent.n.keys, parent.i+1, next.keys[0])
		parent.n.children = insertAt(parent.n.children, parent.i+1, next)
	}
}
