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

// siblings returns the left and right neighbours of children[i], nil when
// children[i] sits at that boundary.
func (n *node[K, V]) siblings(i int) (left, right *node[K, V]) {
	if i > 0 {
		left = n.children[i-1]
	}
	if i+1 < len(n.children) {
		right = n.children[i+1]
	}
	return
}

// BPlusTree rebalancing.

// rebalanceUpward repairs underflow along a BPlusTree descent path after a
// removal from its leaf. A merge can leave the parent underfull, so the loop
// keeps going up to the root instead of stopping at the first repair.
func (t *BPlusTree[K, V]) rebalanceUpward(path []frame[K, V]) {
	for level := len(path) - 1; level > 0; level-- {
		n := path[level].n
		parent := path[level-1]
		if len(n.keys) > 0 {
			parent.n.keys[parent.i] = n.keys[0]
		}
		if len(n.keys) >= t.minKeys() {
			continue
		}
		t.fixUnderflow(parent.n, parent.i)
	}
	t.collapseRoot()
}

// fixUnderflow restores occupancy of parent.children[i] by, in order:
// borrowing from the left sibling, borrowing from the right sibling, merging
// into the left sibling, merging the right sibling in.
func (t *BPlusTree[K, V]) fixUnderflow(parent *node[K, V], i int) {
	left, right := parent.siblings(i)
	switch {
	case left != nil && len(left.keys) > t.minKeys():
		parent.borrowFromLeft(i)
	case right != nil && len(right.keys) > t.minKeys():
		parent.borrowFromRight(i)
	case left != nil:
		parent.mergeSiblings(i - 1)
	case right != nil:
		parent.mergeSiblings(i)
	}
}

// collapseRoot replaces an internal root that has only one child with that
// child.
func (t *BPlusTree[K, V]) collapseRoot() {
	for !t.root.leaf && len(t.root.children) == 1 {
		t.root = t.root.children[0]
		t.height--
	}
}

// borrowFromLeft moves the last entry of children[i-1] to the front of
// children[i] and updates the separator of children[i].
func (n *node[K, V]) borrowFromLeft(i int) {
	child, left := n.children[i], n.children[i-1]
	last := len(left.keys) - 1
	child.keys = insertAt(child.keys, 0, left.keys[last])
	left.keys = truncate(left.keys, last)
	if child.leaf {
		child.values = insertAt(child.values, 0, left.values[last])
		left.values = truncate(left.values, last)
	} else {
		child.children = insertAt(child.children, 0, left.children[last])
		left.children = truncate(left.children, last)
	}
	n.keys[i] = child.keys[0]
}

// borrowFromRight moves the first entry of children[i+1] to the end of
// children[i] and updates the separator of children[i+1].
func (n *node[K, V]) borrowFromRight(i int) {
	child, right := n.children[i], n.children[i+1]
	var key K
	right.keys, key = removeAt(right.keys, 0)
	child.keys = append(child.keys, key)
	if child.leaf {
		var value V
		right.values, value = removeAt(right.values, 0)
		child.values = append(child.values, value)
	} else {
		var c *node[K, V]
		right.children, c = removeAt(right.children, 0)
		child.children = append(child.children, c)
	}
	n.keys[i+1] = right.keys[0]
}

// mergeSiblings appends children[i+1] to children[i] and drops it from n,
// splicing it out of the leaf chain.
func (n *node[K, V]) mergeSiblings(i int) {
	left, right := n.children[i], n.children[i+1]
	left.keys = append(left.keys, right.keys...)
	if left.leaf {
		left.values = append(left.values, right.values...)
		left.next = right.next
	} else {
		left.children = append(left.children, right.children...)
	}
	n.keys, _ = removeAt(n.keys, i+1)
	n.children, _ = removeAt(n.children, i+1)
}

// BTree rebalancing.

// growChild makes sure children[i] of a BTree node holds more than minKeys
// keys so that a removal below it cannot underflow. It steals through the
// separator from the left sibling, then from the right one, and merges with a
// sibling when neither can spare a key. The returned index is where the
// grown child now lives.
func (n *node[K, V]) growChild(i, minKeys int) int {
	left, right := n.siblings(i)
	switch {
	case left != nil && len(left.keys) > minKeys:
		n.rotateFromLeft(i)
	case right != nil && len(right.keys) > minKeys:
		n.rotateFromRight(i)
	default:
		if right == nil {
			i--
		}
		n.mergeAround(i)
	}
	return i
}

// rotateFromLeft moves separator keys[i-1] down to the front of children[i]
// and the last key of children[i-1] up into its place.
func (n *node[K, V]) rotateFromLeft(i int) {
	child, left := n.children[i], n.children[i-1]
	child.insertEntry(0, n.keys[i-1], n.values[i-1])
	last := len(left.keys) - 1
	n.keys[i-1], n.values[i-1] = left.keys[last], left.values[last]
	left.keys = truncate(left.keys, last)
	left.values = truncate(left.values, last)
	if !left.leaf {
		lastChild := len(left.children) - 1
		child.children = insertAt(child.children, 0, left.children[lastChild])
		left.children = truncate(left.children, lastChild)
	}
}

// rotateFromRight moves separator keys[i] down to the end of children[i] and
// the first key of children[i+1] up into its place.
func (n *node[K, V]) rotateFromRight(i int) {
	child, right := n.children[i], n.children[i+1]
	child.keys = append(child.keys, n.keys[i])
	child.values = append(child.values, n.values[i])
	n.keys[i], n.values[i] = right.removeEntry(0)
	if !right.leaf {
		var c *node[K, V]
		right.children, c = removeAt(right.children, 0)
		child.children = append(child.children, c)
	}
}

// mergeAround pulls separator keys[i] down and concatenates children[i],
// the separator and children[i+1] into children[i].
func (n *node[K, V]) mergeAround(i int) {
	left, right := n.children[i], n.children[i+1]
	key, value := n.removeEntry(i)
	n.children, _ = removeAt(n.children, i+1)
	left.keys = append(left.keys, key)
	left.keys = append(left.keys, right.keys...)
	left.values = append(left.values, value)
	left.values = append(left.values, right.values...)
	left.children = append(left.children, right.children...)
}
