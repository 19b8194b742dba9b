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
	"bytes"
	"net/http"

	"github.com/tikv/mwtree/pkg/render"
	"github.com/tikv/mwtree/server"
	urender "github.com/unrolled/render"
)

type snapshotHandler struct {
	handler *server.Handler
	rd      *urender.Render
}

func newSnapshotHandler(handler *server.Handler, rd *urender.Render) *snapshotHandler {
	return &snapshotHandler{
		handler: handler,
		rd:      rd,
	}
}

// @Summary  Get a level order copy of the tree structure.
// @Produce  json
// @Success  200  {object}  mwtree.Snapshot
// @Router   /snapshot [get]
func (h *snapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.handler.Snapshot())
}

// @Summary  Render the tree structure.
// @Param    format  query  string  false  "text, levels or html"  default(text)
// @Produce  plain
// @Produce  html
// @Success  200  {string}  string
// @Failure  400  {string}  string  "The format is unknown."
// @Router   /render [get]
func (h *snapshotHandler) Render(w http.ResponseWriter, r *http.Request) {
	format := render.Format(r.URL.Query().Get("format"))
	var buf bytes.Buffer
	if err := render.Render(&buf, h.handler.Snapshot(), format); err != nil {
		errorResp(h.rd, w, err)
		return
	}
	if format == render.FormatHTML {
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}
	h.rd.Text(w, http.StatusOK, buf.String())
}
