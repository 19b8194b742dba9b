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

package command

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"github.com/tikv/mwtree/pkg/utils/apiutil"
)

var (
	treeControllerComponentName = "tree-ctl"
	dialClient                  = &http.Client{
		Transport: apiutil.NewComponentSignatureRoundTripper(http.DefaultTransport, treeControllerComponentName),
	}
	apiPrefix = strings.TrimPrefix(apiutil.CorePath, "/")
)

type bodyOption struct {
	body io.Reader
}

// BodyOption sets the type and content of the body
type BodyOption func(*bodyOption)

// WithBody returns a BodyOption
func WithBody(body io.Reader) BodyOption {
	return func(bo *bodyOption) {
		bo.body = body
	}
}

func doRequest(cmd *cobra.Command, prefix string, method string, customHeader http.Header,
	opts ...BodyOption) (string, error) {
	b := &bodyOption{}
	for _, o := range opts {
		o(b)
	}
	var resp string

	endpoints := getEndpoints(cmd)
	err := tryURLs(cmd, endpoints, func(endpoint string) error {
		return do(endpoint, prefix, method, &resp, customHeader, b)
	})
	return resp, err
}

// printRequest issues the request and prints the response or the error.
func printRequest(cmd *cobra.Command, prefix, method string, opts ...BodyOption) {
	r, err := doRequest(cmd, prefix, method, http.Header{}, opts...)
	if err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	cmd.Println(r)
}

func dial(req *http.Request) (string, error) {
	resp, err := dialClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		if code := resp.Header.Get(apiutil.ErrorCodeHeader); code != "" {
			return "", errors.Errorf("[%d] %s: %s", resp.StatusCode, code, strings.TrimSpace(string(content)))
		}
		return "", errors.Errorf("[%d] %s", resp.StatusCode, strings.TrimSpace(string(content)))
	}
	return string(content), nil
}

// DoFunc receives an endpoint which you can issue request to
type DoFunc func(endpoint string) error

// tryURLs issues requests to each URL and tries next one if there
// is an error
func tryURLs(cmd *cobra.Command, endpoints []string, f DoFunc) error {
	var err error
	for _, endpoint := range endpoints {
		endpoint, err = checkURL(endpoint)
		if err != nil {
			cmd.Println(err.Error())
			os.Exit(1)
		}
		err = f(endpoint)
		if err != nil {
			continue
		}
		break
	}
	if len(endpoints) > 1 && err != nil {
		err = errors.Errorf("after trying all endpoints, no endpoint is available, the last error we met: %s", err)
	}
	return err
}

func getEndpoints(cmd *cobra.Command) []string {
	addrs, err := cmd.Flags().GetString("addr")
	if err != nil {
		cmd.Println("get server address failed, should set flag with '-u'")
		os.Exit(1)
	}
	return strings.Split(addrs, ",")
}

// do send a request to server. Default is Get.
func do(endpoint, prefix, method string, resp *string, customHeader http.Header, b *bodyOption) error {
	var err error
	url := endpoint + "/" + prefix
	if method == "" {
		method = http.MethodGet
	}
	var req *http.Request

	req, err = http.NewRequest(method, url, b.body)
	if err != nil {
		return err
	}

	for key, values := range customHeader {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	// the resp would be returned by the outer function
	*resp, err = dial(req)
	return err
}

func checkURL(endpoint string) (string, error) {
	if j := strings.Index(endpoint, "//"); j == -1 {
		endpoint = "//" + endpoint
	}
	var u *url.URL
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Errorf("address format is wrong, should like 'http://127.0.0.1:2479' or '127.0.0.1:2479'")
	}
	if u.Scheme == "" || u.Scheme == "mwtree" {
		u.Scheme = "http"
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// parseKey parses a decimal int64 key argument.
func parseKey(s string) (int64, error) {
	key, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("key %q is not a valid int64", s)
	}
	return key, nil
}

// withQuery appends the changed flags of cmd as query parameters.
func withQuery(cmd *cobra.Command, prefix string, names ...string) string {
	query := url.Values{}
	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Changed {
			query.Set(name, flag.Value.String())
		}
	}
	if len(query) == 0 {
		return prefix
	}
	return prefix + "?" + query.Encode()
}
