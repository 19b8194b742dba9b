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
	"io"
	"math"
	"net/http"

	"github.com/docker/go-units"
	"github.com/gorilla/mux"
	"github.com/pingcap/errcode"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/utils/apiutil"
	"github.com/tikv/mwtree/server"
	"github.com/unrolled/render"
)

type keyHandler struct {
	handler     *server.Handler
	rd          *render.Render
	maxBodySize int64
}

func newKeyHandler(svr *server.Server, handler *server.Handler, rd *render.Render) *keyHandler {
	return &keyHandler{
		handler:     handler,
		rd:          rd,
		maxBodySize: int64(svr.GetConfig().MaxBodySize),
	}
}

func (h *keyHandler) parseKey(w http.ResponseWriter, r *http.Request) (int64, bool) {
	key, ferr := apiutil.ParseInt64VarsField(mux.Vars(r), "key")
	if ferr != nil {
		apiutil.ErrorResp(h.rd, w, errcode.NewInvalidInputErr(ferr))
		return 0, false
	}
	return key, true
}

// @Summary  Store a value under a key.
// @Param    key   path  integer  true  "The key"
// @Param    body  body  string   true  "The raw value"
// @Produce  json
// @Success  200  {object}  server.Entry
// @Failure  400  {string}  string  "The input is invalid."
// @Failure  409  {string}  string  "The key exists and duplicates are rejected."
// @Failure  413  {string}  string  "The value is too large."
// @Router   /keys/{key} [put]
func (h *keyHandler) PutKey(w http.ResponseWriter, r *http.Request) {
	key, ok := h.parseKey(w, r)
	if !ok {
		return
	}
	defer r.Body.Close()
	value, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
	if err != nil {
		errorResp(h.rd, w, errs.ErrReadBody.Wrap(err).GenWithStackByCause())
		return
	}
	if int64(len(value)) > h.maxBodySize {
		errorResp(h.rd, w, errs.ErrValueTooLarge.FastGenByArgs(units.BytesSize(float64(h.maxBodySize))))
		return
	}
	if err := h.handler.Put(key, string(value)); err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, server.Entry{Key: key, Value: string(value)})
}

// @Summary  Get the value of a key.
// @Param    key  path  integer  true  "The key"
// @Produce  json
// @Success  200  {object}  server.Entry
// @Failure  400  {string}  string  "The input is invalid."
// @Failure  404  {string}  string  "The key does not exist."
// @Router   /keys/{key} [get]
func (h *keyHandler) GetKey(w http.ResponseWriter, r *http.Request) {
	key, ok := h.parseKey(w, r)
	if !ok {
		return
	}
	value, err := h.handler.Get(key)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, server.Entry{Key: key, Value: value})
}

// @Summary  Delete a key.
// @Param    key  path  integer  true  "The key"
// @Produce  json
// @Success  200  {object}  server.Entry  "The deleted entry."
// @Failure  400  {string}  string  "The input is invalid."
// @Failure  404  {string}  string  "The key does not exist."
// @Router   /keys/{key} [delete]
func (h *keyHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	key, ok := h.parseKey(w, r)
	if !ok {
		return
	}
	value, err := h.handler.Delete(key)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, server.Entry{Key: key, Value: value})
}

// @Summary  List entries in ascending key order.
// @Param    start  query  integer  false  "Inclusive lower bound"
// @Param    end    query  integer  false  "Exclusive upper bound"
// @Param    limit  query  integer  false  "Max number of entries, 0 for all"
// @Produce  json
// @Success  200  {array}   server.Entry
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /scan [get]
func (h *keyHandler) Scan(w http.ResponseWriter, r *http.Request) {
	start, err := apiutil.ParseInt64Query(r, "start", math.MinInt64)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	var end *int64
	if r.URL.Query().Get("end") != "" {
		e, err := apiutil.ParseInt64Query(r, "end", math.MaxInt64)
		if err != nil {
			errorResp(h.rd, w, err)
			return
		}
		end = &e
	}
	limit, err := apiutil.ParseInt64Query(r, "limit", 0)
	if err != nil {
		errorResp(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, h.handler.Scan(start, end, int(limit)))
}
