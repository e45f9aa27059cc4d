package testutils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// RecordedRequest is a request received by an RPCServer.
type RecordedRequest struct {
	Method      string
	Host        string
	ContentType string
	Body        []byte
}

// Reply produces the status and body for the n-th request (starting at 0) with the given body.
type Reply func(n int, body []byte) (status int, response string)

// RPCServer is a JSON-RPC endpoint backed by httptest that records every request.
// Each response carries a Date and X-Request-Id header that differ between requests.
type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	reply    Reply
}

// NewRPCServer starts an RPCServer answering with reply. It is closed when the test ends.
func NewRPCServer(t *testing.T, reply Reply) *RPCServer {
	t.Helper()

	s := &RPCServer{reply: reply}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err, "failed to read request body")

		s.mu.Lock()
		n := len(s.requests)
		s.requests = append(s.requests, RecordedRequest{
			Method:      r.Method,
			Host:        r.Host,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		s.mu.Unlock()

		status, response := s.reply(n, body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Date", time.Now().Add(time.Duration(n)*time.Second).UTC().Format(http.TimeFormat))
		w.Header().Set("X-Request-Id", fmt.Sprintf("req-%d", n))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns a copy of the requests received so far.
func (s *RPCServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// StaticReply answers every request with the same status and body.
func StaticReply(status int, response string) Reply {
	return func(int, []byte) (int, string) {
		return status, response
	}
}

// ResultReply answers every request with a JSON-RPC success carrying result.
func ResultReply(result string) Reply {
	return StaticReply(http.StatusOK, fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":"%s"}`, result))
}

// AddressWord returns the 0x-prefixed 32-byte ABI word holding addr, as returned by eth_call.
func AddressWord(addr common.Address) string {
	return "0x" + strings.Repeat("00", 12) + strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))
}
