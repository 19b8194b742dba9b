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

package api

import (
	"net/http"

	"github.com/tikv/mwtree/pkg/utils/apiutil"
	"github.com/tikv/mwtree/server"
	"github.com/unrolled/render"
)

type treeHandler struct {
	handler *server.Handler
	rd      *render.Render
}

func newTreeHandler(handler *server.Handler, rd *render.Render) *treeHandler {
	return &treeHandler{
		handler: handler,
		rd:      rd,
	}
}

// @Summary  Get the config and shape of the tree.
// @Produce  json
// @Success  200  {object}  server.TreeInfo
// @Router   /tree [get]
func (h *treeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.handler.TreeInfo())
}

// resetInput is the optional JSON body of a reset request.
type resetInput struct {
	Variant string `json:"variant"`
	Order   int    `json:"order"`
}

// @Summary  Replace the tree with an empty one.
// @Param    body     body   resetInput  false  "variant and order of the new tree"
// @Param    variant  query  string      false  "btree or bplustree, overrides the body"
// @Param    order    query  integer     false  "order of the new tree, overrides the body"
// @Produce  json
// @Success  200  {object}  server.TreeInfo
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /reset [post]
func (h *treeHandler) ResetTree(w http.ResponseWriter, r *http.Request) {
	var input resetInput
	if r.ContentLength != 0 {
		if err := apiutil.ReadJSONRespondError(h.rd, w, r.Body, &input); err != nil {
			return
		}
	}
	order, err := apiutil.ParseInt64Query(r, "order", int64(input.Order))
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	if v := r.URL.Query().Get("variant"); v != "" {
		input.Variant = v
	}
	info, err := h.handler.ResetTree(input.Variant, int(order))
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, info)
}

// @Summary  Check the structural invariants of the tree.
// @Produce  json
// @Success  200  {string}  string  "The tree is valid."
// @Failure  500  {string}  string  "The violated invariant."
// @Router   /verify [get]
func (h *treeHandler) VerifyTree(w http.ResponseWriter, r *http.Request) {
	if err := h.handler.Verify(); err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, "The tree is valid.")
}

// @Summary  Get the operation counters of the tree.
// @Produce  json
// @Success  200  {object}  server.StatsInfo
// @Router   /stats [get]
func (h *treeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.handler.Stats())
}

// @Summary  Zero the operation counters of the tree.
// @Produce  json
// @Success  200  {string}  string  "The counters are reset."
// @Router   /stats/reset [post]
func (h *treeHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	h.handler.ResetStats()
	h.rd.JSON(w, http.StatusOK, "The counters are reset.")
}
