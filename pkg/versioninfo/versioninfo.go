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

package versioninfo

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
	"github.com/pingcap/log"
	"github.com/tikv/mwtree/pkg/errs"
	"go.uber.org/zap"
)

// Version information, set with -ldflags at build time.
var (
	ReleaseVersion = "v0.1.0"
	BuildTS        = "None"
	GitHash        = "None"
	GitBranch      = "None"
)

// Status is the version information served by the API.
type Status struct {
	Version   string `json:"version"`
	GitHash   string `json:"git_hash"`
	GitBranch string `json:"git_branch"`
	BuildTS   string `json:"build_ts"`
}

// Current returns the version information of this binary.
func Current() Status {
	return Status{
		Version:   ReleaseVersion,
		GitHash:   GitHash,
		GitBranch: GitBranch,
		BuildTS:   BuildTS,
	}
}

// ParseVersion wraps semver.NewVersion and accepts a leading "v".
func ParseVersion(v string) (*semver.Version, error) {
	if len(v) > 0 && v[0] == 'v' {
		v = v[1:]
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return nil, errs.ErrParseVersion.Wrap(err).GenWithStackByArgs(v)
	}
	return ver, nil
}

// IsCompatible checks if the version a is compatible with the version b.
func IsCompatible(a, b semver.Version) bool {
	if a.LessThan(b) {
		return true
	}
	return a.Major == b.Major && a.Minor == b.Minor
}

// Log prints the version information of the given component.
func Log(component string) {
	log.Info(fmt.Sprintf("Welcome to %s", component))
	log.Info(component, zap.String("release-version", ReleaseVersion))
	log.Info(component, zap.String("git-hash", GitHash))
	log.Info(component, zap.String("git-branch", GitBranch))
	log.Info(component, zap.String("utc-build-time", BuildTS))
}

// Print prints the version information, without log info.
func Print() {
	fmt.Println("Release Version:", ReleaseVersion)
	fmt.Println("Git Commit Hash:", GitHash)
	fmt.Println("Git Branch:", GitBranch)
	fmt.Println("UTC Build Time: ", BuildTS)
}
