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
	"math/rand"
	"testing"

	"github.com/google/btree"
	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/errs"
)

func perm(n int) []int {
	return rand.Perm(n)
}

func variants() []Variant {
	return []Variant{VariantBTree, VariantBPlusTree}
}

func mustNew(re *require.Assertions, opts ...Option) Tree[int, string] {
	t, err := New[int, string](NewConfig(opts...))
	re.NoError(err)
	return t
}

func TestConfig(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.Equal(VariantBTree, cfg.Variant)
	re.Equal(defaultBTreeOrder, cfg.Order)
	re.Equal(DefaultMaxOrder, cfg.MaxOrder)
	re.Equal(DuplicateOverwrite, cfg.Duplicate)
	re.NoError(cfg.Validate())

	cfg = NewConfig(WithVariant(VariantBPlusTree))
	re.Equal(defaultBPlusTreeOrder, cfg.Order)

	for _, order := range []int{-1, 0, 1, 2, 11, 100} {
		cfg := &Config{Order: order}
		err := cfg.Validate()
		re.Error(err, "order %d", order)
		re.True(errs.ErrInvalidOrder.Equal(err), "order %d", order)
	}
	for _, order := range []int{3, 7, 10} {
		re.NoError((&Config{Order: order}).Validate())
	}

	cfg = NewConfig(WithOrder(16), WithMaxOrder(32))
	re.NoError(cfg.Validate())
	err := NewConfig(WithMaxOrder(2)).Validate()
	re.True(errs.ErrInvalidMaxOrder.Equal(err))

	re.True(errs.ErrUnknownVariant.Equal((&Config{Order: 3, Variant: 9}).Validate()))
	re.True(errs.ErrUnknownDuplicatePolicy.Equal((&Config{Order: 3, Duplicate: 9}).Validate()))
}

func TestParse(t *testing.T) {
	re := require.New(t)
	for s, want := range map[string]Variant{
		"btree": VariantBTree, "B-Tree": VariantBTree,
		"bplustree": VariantBPlusTree, "b+tree": VariantBPlusTree, "B+": VariantBPlusTree,
	} {
		v, err := ParseVariant(s)
		re.NoError(err)
		re.Equal(want, v, s)
	}
	_, err := ParseVariant("avl")
	re.True(errs.ErrUnknownVariant.Equal(err))

	p, err := ParseDuplicatePolicy("reject")
	re.NoError(err)
	re.Equal(DuplicateReject, p)
	re.Equal("reject", p.String())
	_, err = ParseDuplicatePolicy("ignore")
	re.True(errs.ErrUnknownDuplicatePolicy.Equal(err))
}

func TestNewRejectsInvalidOrder(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr, err := New[int, string](&Config{Variant: v, Order: 2})
		re.Nil(tr)
		re.True(errs.ErrInvalidOrder.Equal(err))
	}
	tr, err := New[int, string](nil)
	re.NoError(err)
	re.Equal(VariantBTree, tr.Variant())
}

func TestEmptyTree(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr := mustNew(re, WithVariant(v))
		for _, k := range []int{-1, 0, 42} {
			_, ok := tr.Get(k)
			re.False(ok)
			re.False(tr.Has(k))
		}
		re.Equal(0, tr.Len())
		re.Equal(1, tr.Height())
		re.NoError(tr.Verify())
		re.False(tr.Iter().Next())
		re.False(tr.Seek(0).Next())
		re.Empty(Keys(tr))
	}
}

func TestDuplicatePolicy(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr := mustNew(re, WithVariant(v))
		for i := 0; i < 30; i++ {
			re.NoError(tr.Insert(i, "a"))
		}
		re.NoError(tr.Insert(7, "b"))
		got, _ := tr.Get(7)
		re.Equal("b", got)
		re.Equal(30, tr.Len())

		tr = mustNew(re, WithVariant(v), WithDuplicatePolicy(DuplicateReject))
		for i := 0; i < 30; i++ {
			re.NoError(tr.Insert(i, "a"))
		}
		before := tr.Snapshot()
		err := tr.Insert(7, "b")
		re.Error(err)
		re.True(errs.ErrDuplicateKey.Equal(err))
		re.Contains(err.Error(), "key 7 already exists")
		got, _ = tr.Get(7)
		re.Equal("a", got)
		re.Equal(before, tr.Snapshot())
	}
}

func TestClear(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr := mustNew(re, WithVariant(v))
		for _, k := range perm(100) {
			re.NoError(tr.Insert(k, "v"))
		}
		tr.Clear()
		re.Equal(0, tr.Len())
		re.Equal(1, tr.Height())
		re.NoError(tr.Verify())
		re.NoError(tr.Insert(1, "v"))
		re.Equal(1, tr.Len())
	}
}

func TestStringKeys(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr, err := New[string, int](NewConfig(WithVariant(v), WithOrder(3)))
		re.NoError(err)
		words := []string{"pear", "apple", "fig", "kiwi", "plum", "date", "lime", "yuzu", "cherry"}
		for i, w := range words {
			re.NoError(tr.Insert(w, i))
		}
		re.NoError(tr.Verify())
		re.Equal([]string{"apple", "cherry", "date", "fig", "kiwi", "lime", "pear", "plum", "yuzu"}, Keys(tr))
	}
}

// TestRandomAgainstOracle drives both variants with a random mix of inserts
// and deletes and compares them with github.com/google/btree after each step.
func TestRandomAgainstOracle(t *testing.T) {
	re := require.New(t)
	r := rand.New(rand.NewSource(20230314))
	for _, v := range variants() {
		for order := MinOrder; order <= DefaultMaxOrder; order++ {
			desc := fmt.Sprintf("%s order %d", v, order)
			tr := mustNew(re, WithVariant(v), WithOrder(order))
			oracle := btree.NewOrderedG[int](2)
			values := make(map[int]string)
			for op := 0; op < 3000; op++ {
				key := r.Intn(500)
				if r.Intn(3) == 0 {
					_, ok := tr.Delete(key)
					_, want := oracle.Delete(key)
					re.Equal(want, ok, desc)
					delete(values, key)
				} else {
					value := fmt.Sprint(op)
					re.NoError(tr.Insert(key, value))
					oracle.ReplaceOrInsert(key)
					values[key] = value
				}
				if op%100 == 0 {
					re.NoError(tr.Verify(), desc)
				}
				re.Equal(oracle.Len(), tr.Len(), desc)
			}
			re.NoError(tr.Verify(), desc)
			var want []int
			oracle.Ascend(func(k int) bool {
				want = append(want, k)
				return true
			})
			re.Equal(want, Keys(tr), desc)
			for k, value := range values {
				got, ok := tr.Get(k)
				re.True(ok, desc)
				re.Equal(value, got, desc)
			}
			minKey, _ := oracle.Min()
			got, _, ok := tr.Min()
			re.True(ok)
			re.Equal(minKey, got, desc)
			maxKey, _ := oracle.Max()
			got, _, ok = tr.Max()
			re.True(ok)
			re.Equal(maxKey, got, desc)
		}
	}
}

// TestVerifyDetectsCorruption breaks trees by hand and expects Verify to
// notice.
func TestVerifyDetectsCorruption(t *testing.T) {
	re := require.New(t)
	build := func(v Variant) Tree[int, string] {
		tr := mustNew(re, WithVariant(v), WithOrder(3))
		for k := 0; k < 200; k++ {
			re.NoError(tr.Insert(k, "v"))
		}
		return tr
	}
	rootOf := func(tr Tree[int, string]) *node[int, string] {
		switch t := tr.(type) {
		case *BTree[int, string]:
			return t.root
		case *BPlusTree[int, string]:
			return t.root
		}
		return nil
	}
	corruptions := map[string]func(root *node[int, string]){
		"unsorted": func(root *node[int, string]) {
			leaf := minNode(root)
			leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]
		},
		"underfull": func(root *node[int, string]) {
			leaf := minNode(root)
			leaf.keys = leaf.keys[:1]
			leaf.values = leaf.values[:1]
		},
		"uneven depth": func(root *node[int, string]) {
			root.children[0] = minNode(root)
		},
	}
	for _, v := range variants() {
		for name, corrupt := range corruptions {
			tr := build(v)
			corrupt(rootOf(tr))
			err := tr.Verify()
			re.Error(err, "%s %s", v, name)
			re.True(errs.ErrInvariantViolation.Equal(err), "%s %s", v, name)
		}
	}
	tr := build(VariantBPlusTree)
	minNode(rootOf(tr)).next = nil
	re.True(errs.ErrInvariantViolation.Equal(tr.Verify()))
}
