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

package server

import (
	"context"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tikv/mwtree/pkg/audit"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/instrument"
	"github.com/tikv/mwtree/pkg/mwtree"
	"github.com/tikv/mwtree/pkg/utils/logutil"
	"github.com/tikv/mwtree/pkg/utils/syncutil"
	"github.com/tikv/mwtree/pkg/versioninfo"
	"github.com/tikv/mwtree/server/config"
	"go.uber.org/zap"
)

const (
	serverMetricsInterval = time.Minute
	readHeaderTimeout     = 10 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// Server serves one in-memory tree over HTTP.
type Server struct {
	// Server state. 0 is not running, 1 is running.
	isRunning int64
	// Server start timestamp
	startTimestamp int64

	cfg *config.Config
	ctx context.Context

	serverLoopCtx    context.Context
	serverLoopCancel func()
	serverLoopWg     sync.WaitGroup

	// mu guards tree and rnd. The Recorder updates its counters on every
	// call, so reads take the write lock too.
	mu      syncutil.RWMutex
	tree    *instrument.Recorder[int64, string]
	treeCfg *mwtree.Config
	rnd     *rand.Rand

	registry *prometheus.Registry
	metrics  *serverMetrics

	handler *Handler

	httpHandler http.Handler
	httpServer  *http.Server
	listener    net.Listener

	serviceAuditBackendLabels map[string]*audit.BackendLabels
	auditBackends             []audit.Backend
}

// HandlerBuilder builds a server HTTP handler.
type HandlerBuilder func(context.Context, *Server) (http.Handler, error)

// CreateServer creates the tree and the HTTP handler of a server. It does
// not listen until Run is called.
func CreateServer(ctx context.Context, cfg *config.Config, builder HandlerBuilder) (*Server, error) {
	log.Info("mwtree server config", zap.Reflect("config", cfg))
	treeCfg, err := cfg.Tree.TreeConfig()
	if err != nil {
		return nil, err
	}
	tree, err := mwtree.New[int64, string](treeCfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:            cfg,
		ctx:            ctx,
		startTimestamp: time.Now().Unix(),
		treeCfg:        treeCfg,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		registry:       prometheus.NewRegistry(),
	}
	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	treeMetrics, err := instrument.NewMetrics(s.registry, nil)
	if err != nil {
		return nil, err
	}
	s.tree = instrument.NewRecorder(tree, treeMetrics)
	if s.metrics, err = newServerMetrics(s.registry); err != nil {
		return nil, errs.ErrRegisterMetrics.Wrap(err).GenWithStackByCause()
	}
	s.handler = newHandler(s)

	// create audit backend
	s.auditBackends = []audit.Backend{
		audit.NewLocalLogBackend(),
		audit.NewPrometheusHistogramBackend(s.metrics.serviceAuditHistogram),
	}
	s.serviceAuditBackendLabels = make(map[string]*audit.BackendLabels)

	if builder != nil {
		if s.httpHandler, err = builder(ctx, s); err != nil {
			return nil, err
		}
	}
	logutil.SetRedactLog(cfg.Security.RedactInfoLog)
	return s, nil
}

// Run starts listening on the configured address and serving in background.
func (s *Server) Run() error {
	if s.httpHandler == nil {
		return errs.ErrStartHTTPServer.FastGenByArgs(s.cfg.Addr)
	}
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errs.ErrStartHTTPServer.Wrap(err).GenWithStackByArgs(s.cfg.Addr)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.httpHandler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	atomic.StoreInt64(&s.isRunning, 1)
	s.metrics.serverInfo.WithLabelValues(versioninfo.ReleaseVersion, versioninfo.GitHash).Set(float64(s.startTimestamp))

	s.startServerLoop(s.ctx)
	log.Info("mwtree server is serving", zap.String("addr", s.GetAddr()))
	return nil
}

func (s *Server) startServerLoop(ctx context.Context) {
	s.serverLoopCtx, s.serverLoopCancel = context.WithCancel(ctx)
	s.serverLoopWg.Add(2)
	go s.serveLoop()
	go s.serverMetricsLoop()
}

func (s *Server) stopServerLoop() {
	s.serverLoopCancel()
	s.serverLoopWg.Wait()
}

func (s *Server) serveLoop() {
	defer logutil.LogPanic()
	defer s.serverLoopWg.Done()

	if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		log.Error("http server stopped unexpectedly", errs.ZapError(errs.ErrStartHTTPServer, err))
	}
}

// serverMetricsLoop logs the tree shape and stats periodically.
func (s *Server) serverMetricsLoop() {
	defer logutil.LogPanic()
	defer s.serverLoopWg.Done()

	ctx, cancel := context.WithCancel(s.serverLoopCtx)
	defer cancel()
	ticker := time.NewTicker(serverMetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			info := s.handler.TreeInfo()
			log.Info("tree status",
				zap.String("variant", info.Variant),
				zap.Int("order", info.Order),
				zap.Int("len", info.Len),
				zap.Int("height", info.Height),
				zap.Uint64("reads", info.Stats.Reads),
				zap.Uint64("writes", info.Stats.Writes))
		case <-ctx.Done():
			log.Info("server is closed, exit metrics loop")
			return
		}
	}
}

// Close stops the HTTP server and the background loops.
func (s *Server) Close() {
	if !atomic.CompareAndSwapInt64(&s.isRunning, 1, 0) {
		// server is already closed
		return
	}

	log.Info("closing server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown http server meet error", errs.ZapError(err))
	}
	s.stopServerLoop()
	log.Info("close server")
}

// IsClosed checks whether server is closed or not.
func (s *Server) IsClosed() bool {
	return atomic.LoadInt64(&s.isRunning) == 0
}

// Context returns the context of server.
func (s *Server) Context() context.Context {
	return s.ctx
}

// Name returns the unique name for this server.
func (s *Server) Name() string {
	return s.cfg.Name
}

// GetConfig gets the config information.
func (s *Server) GetConfig() *config.Config {
	return s.cfg.Clone()
}

// GetHandler returns the handler for API.
func (s *Server) GetHandler() *Handler {
	return s.handler
}

// GetRegistry returns the registry holding the server and tree metrics.
func (s *Server) GetRegistry() *prometheus.Registry {
	return s.registry
}

// GetAddr returns the address the server listens on. Before Run it is the
// configured address.
func (s *Server) GetAddr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// StartTimestamp returns the start timestamp of this server
func (s *Server) StartTimestamp() int64 {
	return s.startTimestamp
}

// SetServiceAuditBackendForHTTP is used to register service audit config for HTTP.
func (s *Server) SetServiceAuditBackendForHTTP(route *mux.Route, labels ...string) {
	if len(route.GetName()) == 0 || len(labels) == 0 {
		return
	}
	s.serviceAuditBackendLabels[route.GetName()] = &audit.BackendLabels{Labels: labels}
}

// GetServiceAuditBackendLabels returns the audit labels of a route, or nil.
func (s *Server) GetServiceAuditBackendLabels(serviceLabel string) *audit.BackendLabels {
	return s.serviceAuditBackendLabels[serviceLabel]
}

// GetAuditBackend returns the audit backends.
func (s *Server) GetAuditBackend() []audit.Backend {
	return s.auditBackends
}
