// Package jsonrpc builds eth_call request envelopes and decodes their replies.
package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/utils"
)

// RequestID is the fixed id carried by every request envelope.
const RequestID = 1

// Request is a JSON-RPC 2.0 request. Field order fixes the serialized byte layout.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// CallObject is the transaction object of an eth_call.
type CallObject struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// BuildEthCall returns the eth_call envelope that executes data against the
// contract at to in the latest block. Identical inputs always produce
// byte-identical output.
func BuildEthCall(to common.Address, data []byte) ([]byte, error) {
	req := Request{
		JSONRPC: model.JSONRPCVersion,
		Method:  model.EthCall,
		Params: []any{
			CallObject{
				To:   utils.ByteToHex(to.Bytes()),
				Data: utils.ByteToHex(data),
			},
			model.EthLatestBlock,
		},
		ID: RequestID,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", model.EthCall, err)
	}
	return payload, nil
}
