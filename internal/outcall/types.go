// Package outcall issues outbound HTTP requests through a replicated host and
// provides the deterministic response transform replicas agree on.
package outcall

import (
	"context"
	"fmt"

	"github.com/thep2p/go-eth-outcall/internal/model"
)

// HTTP methods accepted by the host.
const (
	MethodGet  = "GET"
	MethodPost = "POST"
	MethodHead = "HEAD"
)

// Header is a single HTTP header. Header lists keep their order.
type Header struct {
	Name  string
	Value string
}

// Request is an outbound HTTP request as submitted to the host.
type Request struct {
	URL     string
	Method  string
	Headers []Header
	Body    []byte
	// MaxResponseBytes bounds the response body. Zero selects the host limit.
	MaxResponseBytes uint64
	// Transform is applied by the host to every replica's raw response before
	// the responses are compared. Nil leaves responses untouched.
	Transform TransformFunc
}

// Response is an HTTP response as seen by, or agreed on by, the replicas.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

// TransformFunc maps one raw response to its canonical form. It must be pure.
type TransformFunc func(Response) Response

// Host performs outbound HTTP requests on behalf of the caller.
//
// HTTPRequest consumes cycles whatever the outcome and returns either the
// response agreed by the replicas or a *RejectError.
type Host interface {
	HTTPRequest(ctx context.Context, req Request, cycles uint64) (Response, error)
}

// RejectionCode classifies why the host rejected a request.
type RejectionCode int

const (
	NoError RejectionCode = iota
	SysFatal
	SysTransient
	DestinationInvalid
	CanisterReject
	CanisterError
)

// String returns the name of the rejection code.
func (c RejectionCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case SysFatal:
		return "SysFatal"
	case SysTransient:
		return "SysTransient"
	case DestinationInvalid:
		return "DestinationInvalid"
	case CanisterReject:
		return "CanisterReject"
	case CanisterError:
		return "CanisterError"
	default:
		return fmt.Sprintf("RejectionCode(%d)", int(c))
	}
}

// RejectError is the host's rejection of an outbound request.
// It matches model.ErrOutcall under errors.Is.
type RejectError struct {
	Code    RejectionCode
	Message string
}

// Reject returns a RejectError with a formatted message.
func Reject(code RejectionCode, format string, args ...any) *RejectError {
	return &RejectError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("outcall rejected (%s): %s", e.Code, e.Message)
}

// Is reports whether target is model.ErrOutcall.
func (e *RejectError) Is(target error) bool {
	return target == model.ErrOutcall
}
