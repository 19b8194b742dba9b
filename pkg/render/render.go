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

// Package render turns tree snapshots into text, a per level listing or an
// HTML fragment, and summarizes node occupancy per level.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/mwtree"
	"golang.org/x/exp/constraints"
)

// Format selects an output of Render.
type Format string

// Supported formats.
const (
	FormatText   Format = "text"
	FormatLevels Format = "levels"
	FormatHTML   Format = "html"
)

// Render writes s to w in the given format.
func Render[K constraints.Ordered](w io.Writer, s *mwtree.Snapshot[K], format Format) error {
	switch format {
	case FormatText, "":
		return Text(w, s)
	case FormatLevels:
		return Levels(w, s)
	case FormatHTML:
		return HTML(w, s)
	}
	return errs.ErrUnknownFormat.GenWithStackByArgs(format)
}

func joinKeys[K constraints.Ordered](keys []K) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, ", ")
}

func header[K constraints.Ordered](s *mwtree.Snapshot[K]) string {
	return fmt.Sprintf("%s order=%d height=%d len=%d", s.Variant, s.Order, s.Height, s.Len)
}

// Text writes one node per line, children indented under their parent.
// Leaves that continue in a leaf chain end with " ->".
func Text[K constraints.Ordered](w io.Writer, s *mwtree.Snapshot[K]) error {
	var b strings.Builder
	b.WriteString(header(s))
	b.WriteByte('\n')
	var walk func(id int)
	walk = func(id int) {
		n := s.Node(id)
		b.WriteString(strings.Repeat("  ", n.Depth))
		b.WriteString("[" + joinKeys(n.Keys) + "]")
		if n.Next >= 0 {
			b.WriteString(" ->")
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(0)
	_, err := io.WriteString(w, b.String())
	return err
}

// Levels writes one line per depth, root first.
func Levels[K constraints.Ordered](w io.Writer, s *mwtree.Snapshot[K]) error {
	var b strings.Builder
	b.WriteString(header(s))
	b.WriteByte('\n')
	for depth, nodes := range s.Levels() {
		fmt.Fprintf(&b, "%d:", depth)
		for _, keys := range nodes {
			b.WriteString(" [" + joinKeys(keys) + "]")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type htmlNode struct {
	Keys     string
	Indent   int
	Children []htmlNode
}

var htmlTemplate = template.Must(template.New("tree").Parse(
	`{{define "node"}}<div class="node" style="margin-left: {{.Indent}}px;">{{.Keys}}` +
		`{{if .Children}}<div class="children">{{range .Children}}{{template "node" .}}{{end}}</div>{{end}}</div>{{end}}` +
		`<div class="tree">{{template "node" .}}</div>`))

// HTML writes nested divs, one per node.
func HTML[K constraints.Ordered](w io.Writer, s *mwtree.Snapshot[K]) error {
	var build func(id int) htmlNode
	build = func(id int) htmlNode {
		n := s.Node(id)
		hn := htmlNode{Keys: joinKeys(n.Keys), Indent: n.Depth * 20}
		for _, c := range n.Children {
			hn.Children = append(hn.Children, build(c))
		}
		return hn
	}
	return htmlTemplate.Execute(w, build(0))
}

// LevelStats summarizes the key counts of the nodes on one level.
type LevelStats struct {
	Depth   int     `json:"depth"`
	Nodes   int     `json:"nodes"`
	Keys    int     `json:"keys"`
	MinKeys int     `json:"min_keys"`
	MaxKeys int     `json:"max_keys"`
	AvgKeys float64 `json:"avg_keys"`
}

// Occupancy returns one LevelStats per depth, root first.
func Occupancy[K constraints.Ordered](s *mwtree.Snapshot[K]) []LevelStats {
	counts := make([][]int, s.Height)
	for _, n := range s.Nodes {
		counts[n.Depth] = append(counts[n.Depth], len(n.Keys))
	}
	stats := make([]LevelStats, 0, len(counts))
	for depth, c := range counts {
		if len(c) == 0 {
			continue
		}
		sum := pie.Sum(c)
		stats = append(stats, LevelStats{
			Depth:   depth,
			Nodes:   len(c),
			Keys:    sum,
			MinKeys: pie.Min(c),
			MaxKeys: pie.Max(c),
			AvgKeys: float64(sum) / float64(len(c)),
		})
	}
	return stats
}
