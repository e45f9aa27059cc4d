package network

import "github.com/thep2p/go-eth-outcall/internal/model"

// builtin is the fixed network to endpoint table.
var builtin = []Network{
	{Name: model.NetworkMainnet, URL: "https://cloudflare-eth.com"},
	{Name: model.NetworkSepolia, URL: "https://rpc.sepolia.org"},
}

// DefaultRegistry is the global network registry, pre-populated with the built-in networks.
var DefaultRegistry = NewDefaultRegistry()
