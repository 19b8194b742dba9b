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

package bench

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/charts"
	"github.com/tikv/mwtree/pkg/errs"
)

// RenderChart writes an html bar chart of the average keys per node on each
// level, one series per result. Shorter trees are padded with zeroes.
func RenderChart(w io.Writer, results []*Result) error {
	height := 0
	for _, r := range results {
		if len(r.Occupancy) > height {
			height = len(r.Occupancy)
		}
	}
	levels := make([]string, height)
	for i := range levels {
		levels[i] = fmt.Sprintf("level %d", i)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.TitleOpts{Title: "Node occupancy", Subtitle: "average keys per node"},
		charts.ToolboxOpts{Show: true},
	)
	bar.AddXAxis(levels)
	for _, r := range results {
		avg := make([]float64, height)
		for _, level := range r.Occupancy {
			avg[level.Depth] = level.AvgKeys
		}
		bar.AddYAxis(fmt.Sprintf("%s order %d", r.Variant, r.Order), avg)
	}
	if err := bar.Render(w); err != nil {
		return errs.ErrRenderChart.Wrap(err).GenWithStackByArgs("occupancy")
	}
	return nil
}

// WriteChart renders the chart into the file at path.
func WriteChart(path string, results []*Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errs.ErrRenderChart.Wrap(err).GenWithStackByArgs(path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errs.ErrRenderChart.Wrap(cerr).GenWithStackByArgs(path)
		}
	}()
	return RenderChart(f, results)
}
