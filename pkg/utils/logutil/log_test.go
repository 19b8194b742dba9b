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

package logutil

import (
	"testing"

	"github.com/pingcap/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestStringToZapLogLevel(t *testing.T) {
	re := require.New(t)
	re.Equal(zapcore.FatalLevel, StringToZapLogLevel("fatal"))
	re.Equal(zapcore.ErrorLevel, StringToZapLogLevel("ERROR"))
	re.Equal(zapcore.WarnLevel, StringToZapLogLevel("warn"))
	re.Equal(zapcore.WarnLevel, StringToZapLogLevel("warning"))
	re.Equal(zapcore.DebugLevel, StringToZapLogLevel("debug"))
	re.Equal(zapcore.InfoLevel, StringToZapLogLevel("info"))
	re.Equal(zapcore.InfoLevel, StringToZapLogLevel("whatever"))
}

func TestRedactLog(t *testing.T) {
	re := require.New(t)
	defer SetRedactLog(false)
	testCases := []struct {
		arg             string
		enableRedactLog bool
		expect          string
	}{
		{"foo", true, "?"},
		{"foo", false, "foo"},
		{"", true, "?"},
	}
	for _, testCase := range testCases {
		SetRedactLog(testCase.enableRedactLog)
		re.Equal(testCase.expect, RedactString(testCase.arg))
		re.Equal(zap.String("value", testCase.expect), ZapRedactString("value", testCase.arg))
	}
}

func TestSetupLogger(t *testing.T) {
	re := require.New(t)
	defer SetRedactLog(false)
	var (
		lg    *zap.Logger
		props *log.ZapProperties
	)
	cfg := log.Config{Level: "debug", Format: "text"}
	re.NoError(SetupLogger(cfg, &lg, &props, true))
	re.NotNil(lg)
	re.NotNil(props)
	re.True(IsRedactLogEnabled())

	cfg = log.Config{Level: "nope"}
	re.Error(SetupLogger(cfg, &lg, &props))
}
