package bridge_test

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-outcall/internal/abi"
	"github.com/thep2p/go-eth-outcall/internal/bridge"
	"github.com/thep2p/go-eth-outcall/internal/metrics"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/network"
	"github.com/thep2p/go-eth-outcall/internal/outcall"
	"github.com/thep2p/go-eth-outcall/internal/signature"
	"github.com/thep2p/go-eth-outcall/internal/testutils"
	"github.com/thep2p/go-eth-outcall/internal/testutils/mocks"
)

const contract = "0xABCDEFabcdef0123456789ABCDEF0123456789ab"

// newService builds a Service on the built-in networks whose outbound calls go to host.
func newService(t *testing.T, host outcall.Host) (*bridge.Service, *metrics.Metrics) {
	logger := testutils.Logger(t)
	m := metrics.New()
	return bridge.NewService(logger,
		network.NewDefaultRegistry(),
		outcall.NewExecutor(logger, host),
		signature.NewVerifier(logger),
		m), m
}

func rpcResponse(body string) outcall.Response {
	return outcall.Response{Status: http.StatusOK, Headers: []outcall.Header{}, Body: []byte(body)}
}

// TestGetNFTOwnerSepolia verifies the exact eth_call envelope sent to sepolia and the decoded owner.
func TestGetNFTOwnerSepolia(t *testing.T) {
	host := mocks.NewMockHost(t)
	owner := testutils.RandomAddress(t)
	expectedPayload := `{"jsonrpc":"2.0","method":"eth_call","params":[{"to":"0xabcdefabcdef0123456789abcdef0123456789ab",` +
		`"data":"0x6352211e0000000000000000000000000000000000000000000000000000000000000007"},"latest"],"id":1}`

	host.EXPECT().
		HTTPRequest(mock.Anything, mock.Anything, uint64(model.DefaultCycles)).
		Run(func(_ context.Context, req outcall.Request, _ uint64) {
			require.Equal(t, "https://rpc.sepolia.org", req.URL)
			require.Equal(t, outcall.MethodPost, req.Method)
			require.Equal(t, expectedPayload, string(req.Body))
			require.Contains(t, req.Headers, outcall.Header{Name: "Host", Value: "rpc.sepolia.org"})
			require.Contains(t, req.Headers, outcall.Header{Name: "Content-Type", Value: "application/json"})
		}).
		Return(rpcResponse(fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":"%s"}`, testutils.AddressWord(owner))), nil).
		Once()

	svc, m := newService(t, host)
	got, err := svc.GetNFTOwner(context.Background(), "sepolia", contract, big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(owner.Hex()[2:]), got)
	require.Len(t, got, 40)

	_, _, _, _, queries := m.Collectors()
	require.Equal(t, 1.0, testutil.ToFloat64(queries.WithLabelValues("ownerOf", "sepolia", metrics.OutcomeSuccess)))
}

// TestGetNFTOwnerAbortsBeforeIO verifies invalid input never reaches the host.
func TestGetNFTOwnerAbortsBeforeIO(t *testing.T) {
	host := mocks.NewMockHost(t)
	svc, _ := newService(t, host)
	ctx := context.Background()

	_, err := svc.GetNFTOwner(ctx, "goerli", contract, big.NewInt(1))
	require.ErrorIs(t, err, model.ErrUnknownNetwork)

	_, err = svc.GetNFTOwner(ctx, "sepolia", "0x1234", big.NewInt(1))
	require.ErrorIs(t, err, model.ErrInput)

	_, err = svc.GetNFTOwner(ctx, "sepolia", "0x"+strings.Repeat("zz", 20), big.NewInt(1))
	require.ErrorIs(t, err, model.ErrInput)

	_, err = svc.GetNFTOwner(ctx, "sepolia", contract, nil)
	require.ErrorIs(t, err, model.ErrInput)

	tooLarge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = svc.GetNFTOwner(ctx, "sepolia", contract, tooLarge)
	require.ErrorIs(t, err, model.ErrEncoding)

	host.AssertNotCalled(t, "HTTPRequest", mock.Anything, mock.Anything, mock.Anything)
}

// TestGetNFTOwnerNetworkNamesAreCaseInsensitive verifies network lookup ignores case.
func TestGetNFTOwnerNetworkNamesAreCaseInsensitive(t *testing.T) {
	host := mocks.NewMockHost(t)
	owner := testutils.RandomAddress(t)
	host.EXPECT().
		HTTPRequest(mock.Anything, mock.MatchedBy(func(req outcall.Request) bool {
			return req.URL == "https://cloudflare-eth.com"
		}), mock.Anything).
		Return(rpcResponse(fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":"%s"}`, testutils.AddressWord(owner))), nil).
		Once()

	svc, _ := newService(t, host)
	got, err := svc.GetNFTOwner(context.Background(), "MainNet", contract, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(owner.Hex()[2:]), got)
}

// TestGetNFTOwnerFailures verifies host and reply failures are classified and never retried.
func TestGetNFTOwnerFailures(t *testing.T) {
	tests := []struct {
		name string
		resp outcall.Response
		err  error
		want error
	}{
		{
			name: "host rejection",
			err:  outcall.Reject(outcall.SysTransient, "No consensus could be reached."),
			want: model.ErrOutcall,
		},
		{
			name: "json-rpc error",
			resp: rpcResponse(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`),
			want: model.ErrMalformedJSON,
		},
		{
			name: "not json",
			resp: rpcResponse(`<html>rate limited</html>`),
			want: model.ErrMalformedJSON,
		},
		{
			name: "empty result",
			resp: rpcResponse(`{"jsonrpc":"2.0","id":1,"result":"0x"}`),
			want: model.ErrMalformedJSON,
		},
		{
			name: "partial word",
			resp: rpcResponse(`{"jsonrpc":"2.0","id":1,"result":"0x0102"}`),
			want: model.ErrMalformedJSON,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := mocks.NewMockHost(t)
			host.EXPECT().
				HTTPRequest(mock.Anything, mock.Anything, mock.Anything).
				Return(tt.resp, tt.err).
				Once()

			svc, m := newService(t, host)
			_, err := svc.GetNFTOwner(context.Background(), "sepolia", contract, big.NewInt(1))
			require.ErrorIs(t, err, tt.want)
			host.AssertNumberOfCalls(t, "HTTPRequest", 1)

			_, _, _, _, queries := m.Collectors()
			require.Equal(t, 1.0, testutil.ToFloat64(queries.WithLabelValues("ownerOf", "sepolia", metrics.OutcomeRejected)))
		})
	}
}

// TestCallDecodesOtherViews verifies the generic view call path with a uint256 return value.
func TestCallDecodesOtherViews(t *testing.T) {
	host := mocks.NewMockHost(t)
	holder := testutils.RandomAddress(t)
	host.EXPECT().
		HTTPRequest(mock.Anything, mock.MatchedBy(func(req outcall.Request) bool {
			return strings.Contains(string(req.Body), `"data":"0x70a08231`)
		}), mock.Anything).
		Return(rpcResponse(`{"jsonrpc":"2.0","id":1,"result":"0x000000000000000000000000000000000000000000000000000000000000002a"}`), nil).
		Once()

	svc, _ := newService(t, host)
	v, err := svc.Call(context.Background(), abi.ERC721BalanceOf, "sepolia", contract, holder)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), v)
}

// TestVerifyECDSA verifies the service delegates to the verifier and counts results.
func TestVerifyECDSA(t *testing.T) {
	svc, m := newService(t, mocks.NewMockHost(t))
	priv := testutils.PrivateKeyFixture(t)
	signer := crypto.PubkeyToAddress(priv.PublicKey)
	sig := testutils.SignPersonalMessage(t, priv, []byte("login nonce 42"))

	valid, err := svc.VerifyECDSA(strings.ToLower(signer.Hex()), "login nonce 42", sig)
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = svc.VerifyECDSA(testutils.RandomAddress(t).Hex(), "login nonce 42", sig)
	require.NoError(t, err)
	require.False(t, valid)

	valid, err = svc.VerifyECDSA(signer.Hex(), "login nonce 42", "0xdeadbeef")
	require.NoError(t, err)
	require.False(t, valid)

	_, _, _, verifications, _ := m.Collectors()
	require.Equal(t, 1.0, testutil.ToFloat64(verifications.WithLabelValues("valid")))
	require.Equal(t, 2.0, testutil.ToFloat64(verifications.WithLabelValues("invalid")))
}

// TestTransformStripsHeaders verifies the registered transform.
func TestTransformStripsHeaders(t *testing.T) {
	svc, _ := newService(t, mocks.NewMockHost(t))
	a := svc.Transform(outcall.Response{Status: 200, Headers: []outcall.Header{{Name: "Date", Value: "1"}}, Body: []byte("x")})
	b := svc.Transform(outcall.Response{Status: 200, Headers: []outcall.Header{{Name: "Date", Value: "2"}}, Body: []byte("x")})
	require.Equal(t, a, b)
	require.NotNil(t, a.Headers)
	require.Empty(t, a.Headers)
}

// TestVerifyNFTOwnership verifies claims against the on-chain owner.
func TestVerifyNFTOwnership(t *testing.T) {
	owner := testutils.RandomAddress(t)
	host := mocks.NewMockHost(t)
	host.EXPECT().
		HTTPRequest(mock.Anything, mock.Anything, mock.Anything).
		Return(rpcResponse(fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":"%s"}`, testutils.AddressWord(owner))), nil)

	svc, _ := newService(t, host)
	ctx := context.Background()
	claim := bridge.NFTClaim{Network: "sepolia", Contract: contract, TokenID: big.NewInt(3), Owner: owner.Hex()}

	ok, err := svc.VerifyNFTOwnership(ctx, claim)
	require.NoError(t, err)
	require.True(t, ok)

	other := claim
	other.Owner = testutils.RandomAddress(t).Hex()
	ok, err = svc.VerifyNFTOwnerships(ctx, []bridge.NFTClaim{claim, other})
	require.NoError(t, err)
	require.False(t, ok)

	bad := claim
	bad.Owner = "nobody"
	_, err = svc.VerifyNFTOwnership(ctx, bad)
	require.ErrorIs(t, err, model.ErrInput)

	_, err = svc.VerifyNFTOwnerships(ctx, nil)
	require.ErrorIs(t, err, model.ErrInput)
}

// TestNewServiceOverHTTP runs an ownerOf query through the configured replicated host
// against a local endpoint registered as sepolia.
func TestNewServiceOverHTTP(t *testing.T) {
	owner := testutils.RandomAddress(t)
	server := testutils.NewRPCServer(t, testutils.ResultReply(testutils.AddressWord(owner)))

	cfg := model.DefaultConfig().Apply(
		model.WithNetwork("sepolia", server.URL),
		model.WithReplicas(3, 0))
	svc, err := bridge.New(testutils.Logger(t), cfg)
	require.NoError(t, err)

	got, err := svc.GetNFTOwner(context.Background(), "sepolia", contract, big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(owner.Hex()[2:]), got)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	requests := server.Requests()
	require.Len(t, requests, 3, "every replica issues the request")
	for _, r := range requests {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, u.Host, r.Host)
		require.Equal(t, "application/json", r.ContentType)
		require.Contains(t, string(r.Body), `"data":"0x6352211e0000000000000000000000000000000000000000000000000000000000000007"`)
	}

	require.Equal(t, []string{"mainnet", "sepolia"}, svc.Networks().Available())
	_, _, cycles, _, _ := svc.Metrics().Collectors()
	require.Equal(t, float64(model.DefaultCycles), testutil.ToFloat64(cycles))
}

// TestNewServiceRejectsInvalidConfig verifies configuration validation.
func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.MaxResponseBytes = 0
	_, err := bridge.New(testutils.Logger(t), cfg)
	require.ErrorIs(t, err, model.ErrInput)

	cfg = model.DefaultConfig().Apply(model.WithNetwork("local", "ftp://localhost"))
	_, err = bridge.New(testutils.Logger(t), cfg)
	require.ErrorIs(t, err, model.ErrInput)
}
