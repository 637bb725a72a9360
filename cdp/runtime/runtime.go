// Package runtime holds the minimal wire shapes for the CDP Runtime domain
// chromatica needs: enabling the domain so execution-context-created events
// flow, grounded on the subset of github.com/chromedp/cdproto/runtime that
// handler.go exercises. Script evaluation is out of scope; see SPEC_FULL.md.
package runtime

// Command method names.
const (
	CommandEnable  = "Runtime.enable"
	CommandDisable = "Runtime.disable"

	EventExecutionContextCreated   = "Runtime.executionContextCreated"
	EventExecutionContextDestroyed = "Runtime.executionContextDestroyed"
)

// ExecutionContextDescription is the executionContextCreated payload's
// nested context object.
type ExecutionContextDescription struct {
	ID      int64  `json:"id"`
	Origin  string `json:"origin"`
	Name    string `json:"name"`
	AuxData map[string]interface{} `json:"auxData,omitempty"`
}

// EventExecutionContextCreatedParams is Runtime.executionContextCreated's
// params.
type EventExecutionContextCreatedParams struct {
	Context ExecutionContextDescription `json:"context"`
}

// EventExecutionContextDestroyedParams is
// Runtime.executionContextDestroyed's params.
type EventExecutionContextDestroyedParams struct {
	ExecutionContextID int64 `json:"executionContextId"`
}
