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
	"time"

	"github.com/tikv/mwtree/pkg/audit"
	"github.com/tikv/mwtree/pkg/utils/requestutil"
	"github.com/tikv/mwtree/server"
	"github.com/urfave/negroni"
)

// serviceMiddlewareBuilder is used to build service middleware for HTTP api
type serviceMiddlewareBuilder struct {
	svr      *server.Server
	handlers []negroni.Handler
}

func newServiceMiddlewareBuilder(s *server.Server) *serviceMiddlewareBuilder {
	return &serviceMiddlewareBuilder{
		svr:      s,
		handlers: []negroni.Handler{newRequestInfoMiddleware(), newAuditMiddleware(s)},
	}
}

func (s *serviceMiddlewareBuilder) createHandler(next func(http.ResponseWriter, *http.Request)) http.Handler {
	return negroni.New(append(s.handlers, negroni.WrapFunc(next))...)
}

// requestInfoMiddleware attaches the request info to the request context.
type requestInfoMiddleware struct{}

func newRequestInfoMiddleware() negroni.Handler {
	return &requestInfoMiddleware{}
}

func (rm *requestInfoMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	requestInfo := requestutil.GetRequestInfo(r)
	r = r.WithContext(requestutil.WithRequestInfo(r.Context(), requestInfo))
	next(w, r)
}

type auditMiddleware struct {
	svr *server.Server
}

func newAuditMiddleware(s *server.Server) negroni.Handler {
	return &auditMiddleware{svr: s}
}

// ServeHTTP is used to implement negroni.Handler for auditMiddleware
func (s *auditMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	requestInfo, ok := requestutil.RequestInfoFrom(r.Context())
	if !ok {
		requestInfo = requestutil.GetRequestInfo(r)
		r = r.WithContext(requestutil.WithRequestInfo(r.Context(), requestInfo))
	}

	labels := s.svr.GetServiceAuditBackendLabels(requestInfo.ServiceLabel)
	if labels == nil {
		next(w, r)
		return
	}

	backends := make([]audit.Backend, 0, len(s.svr.GetAuditBackend()))
	for _, backend := range s.svr.GetAuditBackend() {
		if backend.Match(labels) {
			backends = append(backends, backend)
		}
	}

	next(w, r)

	r = r.WithContext(requestutil.WithEndTime(r.Context(), time.Now()))
	for _, backend := range backends {
		backend.ProcessHTTPRequest(r)
	}
}
