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
	"encoding/json"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/tikv/mwtree/pkg/versioninfo"
)

var versionPrefix = apiPrefix + "/version"

type serverVersion struct {
	Version string `json:"version"`
	Hash    string `json:"hash"`
}

// NewVersionCommand returns a version subcommand of rootCmd
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "show the version of the server and check it against this tool",
		Run:   versionCommandFunc,
	}
}

// NewExitCommand return a exit subcommand of rootCmd
func NewExitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exit",
		Short: "exit tree-ctl",
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(0)
		},
	}
}

func versionCommandFunc(cmd *cobra.Command, args []string) {
	r, err := doRequest(cmd, versionPrefix, http.MethodGet, http.Header{})
	if err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	cmd.Println(r)
	var got serverVersion
	if err := json.Unmarshal([]byte(r), &got); err != nil {
		cmd.Println(err)
		return
	}
	cmd.Println(checkCompatible(versioninfo.ReleaseVersion, got.Version))
}

// checkCompatible describes whether a client at local can talk to a server at
// remote. Unparsable versions, such as development builds, are reported as
// unknown.
func checkCompatible(local, remote string) string {
	lv, err := versioninfo.ParseVersion(local)
	if err != nil {
		return "compatibility unknown: " + err.Error()
	}
	rv, err := versioninfo.ParseVersion(remote)
	if err != nil {
		return "compatibility unknown: " + err.Error()
	}
	if versioninfo.IsCompatible(*lv, *rv) {
		return "compatible with server " + rv.String()
	}
	return "incompatible with server " + rv.String() + ", tree-ctl is " + lv.String()
}
