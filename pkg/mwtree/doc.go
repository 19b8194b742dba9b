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

// Package mwtree implements in-memory multiway ordered search trees.
//
// Two layouts share one API, Tree:
//
//   - BTree stores a value next to every key on every level. Order is the
//     minimum degree t.
//   - BPlusTree stores values in leaves only and links the leaves into a chain
//     for range scans. Order is the fanout m.
//
// Keys must be ordered (golang.org/x/exp/constraints.Ordered); values are
// arbitrary. Neither tree is safe for concurrent use, callers that share a
// tree across goroutines must serialize access themselves.
package mwtree
