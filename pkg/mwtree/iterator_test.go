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
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(re *require.Assertions, v Variant, order int, keys ...int) Tree[int, string] {
	tr := mustNew(re, WithVariant(v), WithOrder(order))
	for _, k := range keys {
		re.NoError(tr.Insert(k, "v"))
	}
	return tr
}

func evens(n int) []int {
	var out []int
	for i := 0; i < n; i++ {
		out = append(out, i*2)
	}
	return out
}

func TestSeek(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		for order := MinOrder; order <= 5; order++ {
			tr := fill(re, v, order, evens(100)...)
			for start := -1; start <= 200; start++ {
				it := tr.Seek(start)
				want := start
				if want < 0 {
					want = 0
				}
				if want%2 == 1 {
					want++
				}
				if want > 198 {
					re.False(it.Next(), "%s seek %d", v, start)
					continue
				}
				re.True(it.Next(), "%s seek %d", v, start)
				re.Equal(want, it.Key(), "%s seek %d", v, start)
				re.True(it.Valid())
				count := 1
				for it.Next() {
					count++
				}
				re.Equal(100-want/2, count, "%s seek %d", v, start)
				re.False(it.Valid())
			}
		}
	}
}

func TestIteratorValues(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr := mustNew(re, WithVariant(v))
		for _, k := range perm(64) {
			re.NoError(tr.Insert(k, string(rune('a'+k%26))))
		}
		it := tr.Iter()
		for i := 0; i < 64; i++ {
			re.True(it.Next())
			re.Equal(i, it.Key())
			re.Equal(string(rune('a'+i%26)), it.Value())
		}
		re.False(it.Next())
	}
}

func TestAscendRange(t *testing.T) {
	re := require.New(t)
	for _, v := range variants() {
		tr := fill(re, v, 3, perm(100)...)
		var got []int
		tr.AscendRange(40, 60, func(k int, _ string) bool {
			got = append(got, k)
			return true
		})
		re.Equal(rangeOf(40, 60), got)

		got = got[:0]
		tr.AscendRange(90, 200, func(k int, _ string) bool {
			got = append(got, k)
			return true
		})
		re.Equal(rangeOf(90, 100), got)

		got = got[:0]
		tr.AscendRange(60, 40, func(k int, _ string) bool {
			got = append(got, k)
			return true
		})
		re.Empty(got)

		got = got[:0]
		tr.Ascend(func(k int, _ string) bool {
			if k >= 10 {
				return false
			}
			got = append(got, k)
			return true
		})
		re.Equal(rangeOf(0, 10), got)
	}
}

func rangeOf(lo, hi int) []int {
	var out []int
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}
