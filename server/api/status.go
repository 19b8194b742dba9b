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

	"github.com/tikv/mwtree/pkg/versioninfo"
	"github.com/tikv/mwtree/server"
	"github.com/unrolled/render"
)

type statusHandler struct {
	svr *server.Server
	rd  *render.Render
}

// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type status struct {
	versioninfo.Status
	Name           string `json:"name"`
	StartTimestamp int64  `json:"start_timestamp"`
}

func newStatusHandler(svr *server.Server, rd *render.Render) *statusHandler {
	return &statusHandler{
		svr: svr,
		rd:  rd,
	}
}

// @Summary  Get the build info of mwtree server.
// @Produce  json
// @Success  200  {object}  status
// @Router   /status [get]
func (h *statusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, status{
		Status:         versioninfo.Current(),
		Name:           h.svr.Name(),
		StartTimestamp: h.svr.StartTimestamp(),
	})
}
