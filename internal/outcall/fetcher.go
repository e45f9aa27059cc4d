package outcall

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HostMaxResponseBytes is the largest response body any request may ask for.
const HostMaxResponseBytes = 2_000_000

// errResponseTooLarge reports a response body above the request's bound.
var errResponseTooLarge = errors.New("response body exceeds size limit")

// Fetcher performs one replica's execution of a request and returns its raw response.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// HTTPFetcher is a Fetcher backed by a fasthttp client.
type HTTPFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewHTTPFetcher creates an HTTPFetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			Name:                "eth-outcall",
			MaxResponseBodySize: HostMaxResponseBytes,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		timeout: timeout,
	}
}

// Fetch sends req and returns the raw response with its headers in wire order.
// The request's Host header, when present, is sent in place of the URL host.
func (f *HTTPFetcher) Fetch(ctx context.Context, r Request) (Response, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.URL)
	req.Header.SetMethod(r.Method)
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, fasthttp.HeaderHost) {
			req.UseHostHeader = true
			req.Header.SetHost(h.Value)
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}
	req.SetBody(r.Body)

	deadline := time.Now().Add(f.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrBodyTooLarge) {
			return Response{}, errResponseTooLarge
		}
		return Response{}, fmt.Errorf("%s %s: %w", r.Method, r.URL, err)
	}

	limit := r.MaxResponseBytes
	if limit == 0 {
		limit = HostMaxResponseBytes
	}
	if uint64(len(resp.Body())) > limit {
		return Response{}, errResponseTooLarge
	}

	headers := make([]Header, 0, resp.Header.Len())
	resp.Header.VisitAll(func(key, value []byte) {
		headers = append(headers, Header{Name: string(key), Value: string(value)})
	})

	return Response{
		Status:  resp.StatusCode(),
		Headers: headers,
		Body:    append([]byte(nil), resp.Body()...),
	}, nil
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) (Response, error)

// Fetch calls f(ctx, req).
func (f FetcherFunc) Fetch(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
