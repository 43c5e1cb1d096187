package model

import (
	"time"
)

// AuditLog is one complete record of an API operation.
type AuditLog struct {
	ID        string `json:"id"`     // request ID (UUID)
	Caller    string `json:"caller"` // authenticated caller identity
	Method    string `json:"method"` // HTTP method
	Path      string `json:"path"`   // request path
	IP        string `json:"ip"`     // client IP
	UserAgent string `json:"user_agent"`

	RequestBody   string `json:"request_body"` // redacted
	RequestHeader string `json:"request_header"`

	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Business context added by handlers/services: credited rewards,
	// allocation outcomes, upstream errors.
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}
