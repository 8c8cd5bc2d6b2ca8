package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ProgressFunc receives cumulative byte-level progress while a request body is
// being sent. It is only invoked when the total size is known in advance.
type ProgressFunc func(uploaded, total int64)

// File is the binary payload of a single upload attempt.
type File struct {
	Name   string
	Reader io.Reader
	Size   int64 // -1 when unknown
}

// Request describes one upload exchange. It is built fresh per attempt and
// not mutated afterwards.
type Request struct {
	File       File
	BaseAPIURL string
	API        string
	AuthToken  string
}

// UploadURL returns the endpoint the file is posted to.
func (r *Request) UploadURL() string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.BaseAPIURL, "/"), r.API)
}

// OutcomeKind enumerates the three mutually exclusive terminal signals of an
// exchange.
type OutcomeKind int

const (
	Loaded OutcomeKind = iota
	Errored
	Aborted
)

// Outcome is the terminal result of one exchange. Exactly one is produced per
// Send call.
type Outcome struct {
	Kind     OutcomeKind
	Response *Response // set when Kind is Loaded; nil for an empty or unparseable body
	Err      error     // set when Kind is Errored
}

// ResponseError is the failure shape a backend reports inside a JSON body.
type ResponseError struct {
	Message string `json:"message"`
}

// Response is the parsed JSON body of a completed exchange.
type Response struct {
	ImageID string         `json:"imageId"`
	Error   *ResponseError `json:"error,omitempty"`
}

// Transport performs the network exchange for a single upload. Implementations
// are one-shot: a Transport must not be reused across uploads.
type Transport interface {
	Send(ctx context.Context, req *Request, progress ProgressFunc) Outcome
}
