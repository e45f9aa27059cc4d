package outcall_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-outcall/internal/outcall"
)

// TestStripHeadersSameBodyDifferentHeaders verifies responses that differ only in
// headers transform into byte-identical canonical responses.
func TestStripHeadersSameBodyDifferentHeaders(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","id":1,"result":"0x000000000000000000000000deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"}`)

	a := outcall.Response{
		Status: 200,
		Headers: []outcall.Header{
			{Name: "Date", Value: "Mon, 12 Oct 2026 10:00:00 GMT"},
			{Name: "Connection", Value: "keep-alive"},
			{Name: "Cf-Ray", Value: "8c1d2e3f4a5b6c7d-AMS"},
		},
		Body: append([]byte(nil), body...),
	}
	b := outcall.Response{
		Status: 200,
		Headers: []outcall.Header{
			{Name: "Date", Value: "Mon, 12 Oct 2026 10:00:01 GMT"},
			{Name: "Cf-Ray", Value: "8c1d2e3f4a5b6c7e-FRA"},
		},
		Body: append([]byte(nil), body...),
	}
	c := outcall.Response{Status: 200, Body: append([]byte(nil), body...)}

	ca, cb, cc := outcall.StripHeaders(a), outcall.StripHeaders(b), outcall.StripHeaders(c)
	require.Equal(t, ca, cb)
	require.Equal(t, ca, cc)
	require.Equal(t, outcall.Fingerprint(ca), outcall.Fingerprint(cb))
	require.Equal(t, outcall.Fingerprint(ca), outcall.Fingerprint(cc))

	ja, err := json.Marshal(ca)
	require.NoError(t, err)
	jb, err := json.Marshal(cb)
	require.NoError(t, err)
	require.True(t, bytes.Equal(ja, jb), "canonical responses must serialize identically")

	require.NotEqual(t, outcall.Fingerprint(a), outcall.Fingerprint(b), "raw responses differ")
}

// TestStripHeadersKeepsStatusAndBody verifies status and body are retained verbatim.
func TestStripHeadersKeepsStatusAndBody(t *testing.T) {
	raw := outcall.Response{
		Status:  503,
		Headers: []outcall.Header{{Name: "Retry-After", Value: "3"}},
		Body:    []byte("upstream unavailable"),
	}

	canonical := outcall.StripHeaders(raw)
	require.Equal(t, 503, canonical.Status)
	require.Equal(t, []byte("upstream unavailable"), canonical.Body)
	require.NotNil(t, canonical.Headers)
	require.Empty(t, canonical.Headers)

	// the input is not modified
	require.Len(t, raw.Headers, 1)
}

// TestStripHeadersDistinguishesBodies verifies semantic differences survive the transform.
func TestStripHeadersDistinguishesBodies(t *testing.T) {
	a := outcall.StripHeaders(outcall.Response{Status: 200, Body: []byte(`{"result":"0x01"}`)})
	b := outcall.StripHeaders(outcall.Response{Status: 200, Body: []byte(`{"result":"0x02"}`)})
	c := outcall.StripHeaders(outcall.Response{Status: 500, Body: []byte(`{"result":"0x01"}`)})

	require.NotEqual(t, outcall.Fingerprint(a), outcall.Fingerprint(b))
	require.NotEqual(t, outcall.Fingerprint(a), outcall.Fingerprint(c))
}

// TestStripHeadersIsIdempotent verifies applying the transform twice changes nothing.
func TestStripHeadersIsIdempotent(t *testing.T) {
	raw := outcall.Response{Status: 200, Headers: []outcall.Header{{Name: "Date", Value: "x"}}, Body: []byte("b")}
	once := outcall.StripHeaders(raw)
	require.Equal(t, once, outcall.StripHeaders(once))
}
