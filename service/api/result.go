package api

import (
	"encoding/json"
	"errors"

	"github.com/viant/datarequest/service/workflow"
)

// Status codes of the remote call contract
const (
	StatusOK      = 0
	StatusFailure = -1
)

// Result is the reply of a remote call; Fields are flattened next to status and statusInfo
type Result struct {
	Status     int
	StatusInfo string
	ErrorKind  string
	Fields     map[string]interface{}
}

// MarshalJSON encodes the result as a single flat object
func (r *Result) MarshalJSON() ([]byte, error) {
	aMap := make(map[string]interface{}, len(r.Fields)+3)
	for k, v := range r.Fields {
		aMap[k] = v
	}
	aMap["status"] = r.Status
	aMap["statusInfo"] = r.StatusInfo
	if r.ErrorKind != "" {
		aMap["errorKind"] = r.ErrorKind
	}
	return json.Marshal(aMap)
}

// OK returns a successful result
func OK(fields map[string]interface{}) *Result {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return &Result{Status: StatusOK, StatusInfo: "OK", Fields: fields}
}

// Failure converts err into the status contract
func Failure(err error) *Result {
	result := &Result{Status: StatusFailure, StatusInfo: internalServerError, ErrorKind: string(workflow.KindInternal)}
	var wErr *workflow.Error
	if !errors.As(err, &wErr) {
		return result
	}
	result.ErrorKind = string(wErr.Kind)
	if wErr.Code != 0 {
		result.Status = wErr.Code
	}
	if wErr.Message != "" {
		result.StatusInfo = wErr.Message
	} else if wErr.Kind != workflow.KindInternal {
		result.StatusInfo = string(wErr.Kind)
	}
	return result
}

const internalServerError = "Internal server error"
