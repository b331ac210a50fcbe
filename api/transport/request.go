package transport

import "strings"

// Path parameter names consumed by the dispatcher.
const (
	ParamTaskID   = "taskId"
	ParamDeadline = "deadline"
)

// Request is the inbound envelope handed to the dispatcher. It is independent
// of the HTTP server so the same routing runs behind any front door.
type Request struct {
	Verb       string            `json:"httpMethod"`
	PathParams map[string]string `json:"pathParameters,omitempty"`
	Body       *string           `json:"body,omitempty"`
}

// PathParam returns a non-blank path parameter.
func (r Request) PathParam(name string) (string, bool) {
	if r.PathParams == nil {
		return "", false
	}
	value, ok := r.PathParams[name]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
