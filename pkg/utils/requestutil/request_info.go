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

package requestutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tikv/mwtree/pkg/utils/apiutil"
)

// RequestInfo describes an HTTP request for logging and timing.
type RequestInfo struct {
	ServiceLabel string
	Method       string
	Component    string
	IP           string
	URLParam     string
	StartTime    time.Time
}

func (info *RequestInfo) String() string {
	return fmt.Sprintf("{ServiceLabel:%s, Method:%s, Component:%s, IP:%s, StartTime:%s, URLParam:%s}",
		info.ServiceLabel, info.Method, info.Component, info.IP, info.StartTime.Format(time.RFC3339Nano), info.URLParam)
}

// GetRequestInfo returns request info needed from http.Request. The body is
// left unread.
func GetRequestInfo(r *http.Request) RequestInfo {
	return RequestInfo{
		ServiceLabel: apiutil.GetRouteName(r),
		Method:       fmt.Sprintf("%s/%s:%s", r.Proto, r.Method, r.URL.Path),
		Component:    apiutil.GetComponentNameOnHTTP(r),
		IP:           apiutil.GetIPAddrFromHTTPRequest(r),
		URLParam:     getURLParam(r),
		StartTime:    time.Now(),
	}
}

func getURLParam(r *http.Request) string {
	if len(r.URL.RawQuery) == 0 {
		return ""
	}
	buf, err := json.Marshal(r.URL.Query())
	if err != nil {
		return ""
	}
	return string(buf)
}
