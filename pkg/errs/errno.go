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

package errs

import "github.com/pingcap/errors"

// tree config errors
var (
	ErrInvalidOrder           = errors.Normalize("invalid order %d, it must be in [%d, %d]", errors.RFCCodeText("MWTree:config:ErrInvalidOrder"))
	ErrInvalidMaxOrder        = errors.Normalize("invalid max order %d, it must not be less than %d", errors.RFCCodeText("MWTree:config:ErrInvalidMaxOrder"))
	ErrUnknownVariant         = errors.Normalize("unknown tree variant %v", errors.RFCCodeText("MWTree:config:ErrUnknownVariant"))
	ErrUnknownDuplicatePolicy = errors.Normalize("unknown duplicate key policy %v", errors.RFCCodeText("MWTree:config:ErrUnknownDuplicatePolicy"))
)

// tree errors
var (
	ErrDuplicateKey       = errors.Normalize("key %v already exists", errors.RFCCodeText("MWTree:tree:ErrDuplicateKey"))
	ErrInvariantViolation = errors.Normalize("tree invariant violated: %s", errors.RFCCodeText("MWTree:tree:ErrInvariantViolation"))
)

// config file errors
var (
	ErrLoadConfig     = errors.Normalize("load config from %s failed", errors.RFCCodeText("MWTree:config:ErrLoadConfig"))
	ErrConfigItem     = errors.Normalize("config item error", errors.RFCCodeText("MWTree:config:ErrConfigItem"))
	ErrInitLogger     = errors.Normalize("init logger error", errors.RFCCodeText("MWTree:common:ErrInitLogger"))
	ErrParseVersion   = errors.Normalize("parse version %s failed", errors.RFCCodeText("MWTree:common:ErrParseVersion"))
	ErrRenderChart    = errors.Normalize("render chart %s failed", errors.RFCCodeText("MWTree:bench:ErrRenderChart"))
	ErrOracleMismatch = errors.Normalize("tree diverged from the reference model at op %d: %s", errors.RFCCodeText("MWTree:bench:ErrOracleMismatch"))
)

// render errors
var (
	ErrUnknownFormat = errors.Normalize("unknown render format %s", errors.RFCCodeText("MWTree:render:ErrUnknownFormat"))
)

// apiutil errors
var (
	ErrParseKey = errors.Normalize("parse key %s failed", errors.RFCCodeText("MWTree:apiutil:ErrParseKey"))
	ErrBindJSON = errors.Normalize("bind JSON error", errors.RFCCodeText("MWTree:apiutil:ErrBindJSON"))
	ErrReadBody = errors.Normalize("read request body error", errors.RFCCodeText("MWTree:apiutil:ErrReadBody"))
)

// server errors
var (
	ErrStartHTTPServer = errors.Normalize("start http server on %s failed", errors.RFCCodeText("MWTree:server:ErrStartHTTPServer"))
	ErrKeyNotFound     = errors.Normalize("key %d not found", errors.RFCCodeText("MWTree:server:ErrKeyNotFound"))
	ErrInvalidBatch    = errors.Normalize("invalid random batch: %s", errors.RFCCodeText("MWTree:server:ErrInvalidBatch"))
	ErrValueTooLarge   = errors.Normalize("value exceeds the max body size %s", errors.RFCCodeText("MWTree:server:ErrValueTooLarge"))
)

// prometheus errors
var (
	ErrPrometheusPushMetrics = errors.Normalize("push metrics to gateway failed", errors.RFCCodeText("MWTree:prometheus:ErrPrometheusPushMetrics"))
	ErrRegisterMetrics       = errors.Normalize("register metrics failed", errors.RFCCodeText("MWTree:prometheus:ErrRegisterMetrics"))
)
