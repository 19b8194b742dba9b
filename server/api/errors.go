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

	"github.com/pingcap/errcode"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/utils/apiutil"
	"github.com/unrolled/render"
)

var (
	notFoundCode = errcode.NotFoundCode
	conflictCode = errcode.AlreadyExistsCode
	tooLargeCode = errcode.InvalidInputCode.Child("input.size").SetHTTP(http.StatusRequestEntityTooLarge)
)

// codedError attaches an errcode.Code to a normalized error.
type codedError struct {
	error
	code errcode.Code
}

// Code implements errcode.ErrorCode.
func (e codedError) Code() errcode.Code {
	return e.code
}

var inputErrors = []interface{ Equal(error) bool }{
	errs.ErrParseKey,
	errs.ErrInvalidOrder,
	errs.ErrInvalidMaxOrder,
	errs.ErrUnknownVariant,
	errs.ErrUnknownDuplicatePolicy,
	errs.ErrInvalidBatch,
	errs.ErrUnknownFormat,
}

// toErrorCode maps tree and server errors onto HTTP status codes. Unknown
// errors are returned unchanged and answered with 500.
func toErrorCode(err error) error {
	switch {
	case errs.ErrKeyNotFound.Equal(err):
		return codedError{error: err, code: notFoundCode}
	case errs.ErrDuplicateKey.Equal(err):
		return codedError{error: err, code: conflictCode}
	case errs.ErrValueTooLarge.Equal(err):
		return codedError{error: err, code: tooLargeCode}
	}
	for _, e := range inputErrors {
		if e.Equal(err) {
			return errcode.NewInvalidInputErr(err)
		}
	}
	return err
}

func errorResp(rd *render.Render, w http.ResponseWriter, err error) {
	apiutil.ErrorResp(rd, w, toErrorCode(err))
}
