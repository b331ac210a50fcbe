package transport

import (
	"encoding/json"
	"net/http"
)

const internalErrorBody = `{"message":"Internal server error"}`

// Envelope is the JSON body of every task response. Either key may be absent.
type Envelope struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// Response is the outbound envelope produced by the dispatcher.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// CORSHeaders is the fixed header set attached to every response.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "POST,GET,PUT,DELETE",
		"Content-Type":                 "application/json",
	}
}

// NewResponse builds a response with an envelope body. A 204 carries no body.
func NewResponse(status int, message string, data interface{}) Response {
	resp := Response{StatusCode: status, Headers: CORSHeaders()}
	if status == http.StatusNoContent {
		return resp
	}

	body, err := json.Marshal(Envelope{Message: message, Data: data})
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		resp.Body = internalErrorBody
		return resp
	}
	resp.Body = string(body)
	return resp
}
