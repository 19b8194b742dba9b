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

const (
	defaultRandomCount = 10
	defaultRandomMin   = 1
	defaultRandomMax   = 100
)

type randomHandler struct {
	handler *server.Handler
	rd      *render.Render
}

func newRandomHandler(handler *server.Handler, rd *render.Render) *randomHandler {
	return &randomHandler{
		handler: handler,
		rd:      rd,
	}
}

// @Summary  Insert random keys.
// @Param    count  query  integer  false  "Number of keys to draw"   default(10)
// @Param    min    query  integer  false  "Smallest key to draw"    default(1)
// @Param    max    query  integer  false  "Largest key to draw"     default(100)
// @Produce  json
// @Success  200  {object}  server.BatchResult
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /random/insert [post]
func (h *randomHandler) Insert(w http.ResponseWriter, r *http.Request) {
	count, err := apiutil.ParseInt64Query(r, "count", defaultRandomCount)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	minKey, err := apiutil.ParseInt64Query(r, "min", defaultRandomMin)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	maxKey, err := apiutil.ParseInt64Query(r, "max", defaultRandomMax)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	res, err := h.handler.RandomInsert(int(count), minKey, maxKey)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, res)
}

// @Summary  Delete random stored keys.
// @Param    count  query  integer  false  "Number of keys to delete"  default(10)
// @Produce  json
// @Success  200  {object}  server.BatchResult
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /random/delete [post]
func (h *randomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	count, err := apiutil.ParseInt64Query(r, "count", defaultRandomCount)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	res, err := h.handler.RandomDelete(int(count))
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, res)
}
