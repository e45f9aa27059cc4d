package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thep2p/go-eth-outcall/internal/model"
)

// wordSize is the width of one ABI word; eth_call results are whole words.
const wordSize = 32

// Error is the error member of a JSON-RPC response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// DecodeResult parses a JSON-RPC response body and returns the bytes of its
// hex-encoded result. The body must be valid UTF-8 JSON without an error
// member, and the result must decode to a non-zero multiple of 32 bytes.
func DecodeResult(body []byte) ([]byte, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid utf-8", model.ErrMalformedJSON)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedJSON, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: rpc error %d: %s", model.ErrMalformedJSON, resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Result) == 0 || bytes.Equal(resp.Result, []byte("null")) {
		return nil, fmt.Errorf("%w: missing result", model.ErrMalformedJSON)
	}

	var result string
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("%w: result is not a string: %v", model.ErrMalformedJSON, err)
	}

	data, err := hexutil.Decode(result)
	if err != nil {
		return nil, fmt.Errorf("%w: result %q: %v", model.ErrMalformedJSON, result, err)
	}
	if len(data) == 0 || len(data)%wordSize != 0 {
		return nil, fmt.Errorf("%w: result is %d bytes, expected a non-zero multiple of %d",
			model.ErrMalformedJSON, len(data), wordSize)
	}
	return data, nil
}
