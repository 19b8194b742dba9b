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
	"reflect"
	"runtime"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tikv/mwtree/pkg/audit"
	"github.com/tikv/mwtree/server"
	"github.com/unrolled/render"
)

// createRouteOption is used to register service for mux.Route
type createRouteOption func(route *mux.Route)

// setMethods is used to add HTTP Method matcher for mux.Route
func setMethods(method ...string) createRouteOption {
	return func(route *mux.Route) {
		route.Methods(method...)
	}
}

// routeCreateFunc is used to registers a new route which will be registered matcher or service by opts for the URL path
func routeCreateFunc(route *mux.Route, handler http.Handler, name string, opts ...createRouteOption) {
	route = route.Handler(handler).Name(name)
	for _, opt := range opts {
		opt(route)
	}
}

func createIndentRender() *render.Render {
	return render.New(render.Options{
		IndentJSON: true,
	})
}

func getFunctionName(f interface{}) string {
	strs := strings.Split(runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name(), ".")
	return strings.Split(strs[len(strs)-1], "-")[0]
}

func createRouter(prefix string, svr *server.Server) *mux.Router {
	serviceMiddle := newServiceMiddlewareBuilder(svr)
	registerFunc := func(router *mux.Router, path string,
		handleFunc func(http.ResponseWriter, *http.Request), opts ...createRouteOption) {
		routeCreateFunc(router.Path(path), serviceMiddle.createHandler(handleFunc),
			getFunctionName(handleFunc), opts...)
	}

	setAuditBackend := func(labels ...string) createRouteOption {
		return func(route *mux.Route) {
			svr.SetServiceAuditBackendForHTTP(route, labels...)
		}
	}

	// localLog should be used in modifying the tree.
	localLog := audit.LocalLogLabel
	// prometheus will be used in all API.
	prometheus := audit.PrometheusHistogram

	rd := createIndentRender()
	rootRouter := mux.NewRouter().PathPrefix(prefix).Subrouter()
	handler := svr.GetHandler()

	apiPrefix := "/api/v1"
	apiRouter := rootRouter.PathPrefix(apiPrefix).Subrouter()

	versionHandler := newVersionHandler(rd)
	registerFunc(apiRouter, "/version", versionHandler.GetVersion, setMethods(http.MethodGet))
	statusHandler := newStatusHandler(svr, rd)
	registerFunc(apiRouter, "/status", statusHandler.GetStatus, setMethods(http.MethodGet))

	treeHandler := newTreeHandler(handler, rd)
	registerFunc(apiRouter, "/tree", treeHandler.GetTree, setMethods(http.MethodGet), setAuditBackend(prometheus))
	registerFunc(apiRouter, "/reset", treeHandler.ResetTree, setMethods(http.MethodPost), setAuditBackend(localLog, prometheus))
	registerFunc(apiRouter, "/verify", treeHandler.VerifyTree, setMethods(http.MethodGet), setAuditBackend(prometheus))
	registerFunc(apiRouter, "/stats", treeHandler.GetStats, setMethods(http.MethodGet))
	registerFunc(apiRouter, "/stats/reset", treeHandler.ResetStats, setMethods(http.MethodPost), setAuditBackend(localLog))

	keyHandler := newKeyHandler(svr, handler, rd)
	registerFunc(apiRouter, "/keys/{key}", keyHandler.PutKey, setMethods(http.MethodPut), setAuditBackend(localLog, prometheus))
	registerFunc(apiRouter, "/keys/{key}", keyHandler.GetKey, setMethods(http.MethodGet), setAuditBackend(prometheus))
	registerFunc(apiRouter, "/keys/{key}", keyHandler.DeleteKey, setMethods(http.MethodDelete), setAuditBackend(localLog, prometheus))
	registerFunc(apiRouter, "/scan", keyHandler.Scan, setMethods(http.MethodGet), setAuditBackend(prometheus))

	snapshotHandler := newSnapshotHandler(handler, rd)
	registerFunc(apiRouter, "/snapshot", snapshotHandler.GetSnapshot, setMethods(http.MethodGet), setAuditBackend(prometheus))
	registerFunc(apiRouter, "/render", snapshotHandler.Render, setMethods(http.MethodGet), setAuditBackend(prometheus))

	randomHandler := newRandomHandler(handler, rd)
	registerFunc(apiRouter, "/random/insert", randomHandler.Insert, setMethods(http.MethodPost), setAuditBackend(localLog, prometheus))
	registerFunc(apiRouter, "/random/delete", randomHandler.Delete, setMethods(http.MethodPost), setAuditBackend(localLog, prometheus))

	apiRouter.Handle("/metrics", promhttp.HandlerFor(svr.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return rootRouter
}
