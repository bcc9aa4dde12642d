package mcp

import (
	"encoding/json"

	"github.com/local-mcps/devtools-mcp/internal/common"
)

const internalFaultMessage = "internal error while handling the request"

// Result is the outcome of one dispatch: either a payload or an error,
// never both.
type Result struct {
	Payload interface{}
	Err     *common.MCPError
}

type errorEnvelope struct {
	Error *common.MCPError `json:"error"`
}

func Success(payload interface{}) *Result {
	return &Result{Payload: payload}
}

func Failure(code common.ErrorCode, message string) *Result {
	return &Result{Err: common.NewMCPError(code, message, nil)}
}

func (r *Result) IsError() bool {
	return r.Err != nil
}

func (r *Result) Kind() common.ErrorCode {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

func (r *Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(errorEnvelope{Error: r.Err})
	}
	return json.Marshal(r.Payload)
}

// Text renders the result as indented JSON. A payload that cannot be
// encoded turns into an internal fault.
func (r *Result) Text() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		data, _ = json.MarshalIndent(Failure(common.CodeInternalFault, internalFaultMessage), "", "  ")
	}
	return string(data)
}
