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
	"github.com/phf/go-queue/queue"
	"golang.org/x/exp/constraints"
)

// NodeSnapshot is a copy of one node. IDs are assigned in level order
// starting with 0 for the root.
type NodeSnapshot[K constraints.Ordered] struct {
	ID       int   `json:"id"`
	Depth    int   `json:"depth"`
	Leaf     bool  `json:"leaf"`
	Keys     []K   `json:"keys"`
	Children []int `json:"children,omitempty"`
	// Next is the ID of the next leaf in a BPlusTree leaf chain, -1 otherwise.
	Next int `json:"next"`
}

// Snapshot is a read-only copy of a tree's shape. It shares no memory with
// the tree, so it stays valid after the tree changes.
type Snapshot[K constraints.Ordered] struct {
	Variant string            `json:"variant"`
	Order   int               `json:"order"`
	Height  int               `json:"height"`
	Len     int               `json:"len"`
	Nodes   []NodeSnapshot[K] `json:"nodes"`
}

type queued[K constraints.Ordered, V any] struct {
	n     *node[K, V]
	depth int
}

func takeSnapshot[K constraints.Ordered, V any](variant Variant, order, length, height int, root *node[K, V]) *Snapshot[K] {
	s := &Snapshot[K]{
		Variant: variant.String(),
		Order:   order,
		Height:  height,
		Len:     length,
	}
	ids := make(map[*node[K, V]]int)
	var leaves []*node[K, V]
	q := queue.New()
	q.PushBack(queued[K, V]{n: root})
	ids[root] = 0
	for q.Len() > 0 {
		item := q.PopFront().(queued[K, V])
		n := item.n
		ns := NodeSnapshot[K]{
			ID:    ids[n],
			Depth: item.depth,
			Leaf:  n.leaf,
			Keys:  append([]K{}, n.keys...),
			Next:  -1,
		}
		for _, c := range n.children {
			ids[c] = len(ids)
			ns.Children = append(ns.Children, ids[c])
			q.PushBack(queued[K, V]{n: c, depth: item.depth + 1})
		}
		if n.leaf {
			leaves = append(leaves, n)
		}
		s.Nodes = append(s.Nodes, ns)
	}
	for _, leaf := range leaves {
		if leaf.next == nil {
			continue
		}
		if id, ok := ids[leaf.next]; ok {
			s.Nodes[ids[leaf]].Next = id
		}
	}
	return s
}

// Root returns the root node.
func (s *Snapshot[K]) Root() NodeSnapshot[K] {
	return s.Nodes[0]
}

// Node returns the node with the given ID.
func (s *Snapshot[K]) Node(id int) NodeSnapshot[K] {
	return s.Nodes[id]
}

// Levels groups the key lists of all nodes by depth, root first.
func (s *Snapshot[K]) Levels() [][][]K {
	levels := make([][][]K, s.Height)
	for _, n := range s.Nodes {
		levels[n.Depth] = append(levels[n.Depth], n.Keys)
	}
	return levels
}

// LeafChain returns the leaf key lists in the order given by the leaf chain
// of a BPlusTree. For a BTree it returns the leaves left to right.
func (s *Snapshot[K]) LeafChain() [][]K {
	var chain [][]K
	first := -1
	for _, n := range s.Nodes {
		if n.Leaf {
			first = n.ID
			break
		}
	}
	if first < 0 {
		return nil
	}
	if s.Variant != VariantBPlusTree.String() {
		for _, n := range s.Nodes[first:] {
			chain = append(chain, n.Keys)
		}
		return chain
	}
	for id := first; id >= 0; id = s.Nodes[id].Next {
		chain = append(chain, s.Nodes[id].Keys)
	}
	return chain
}
