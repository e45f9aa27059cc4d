package model

const (
	// JSONRPCVersion is the protocol version carried by every request envelope.
	JSONRPCVersion = "2.0"

	// EthCall represents the method for executing a read-only contract call.
	EthCall = "eth_call"

	// EthLatestBlock represents the latest block identifier in Ethereum.
	// Calls are always evaluated against it; historical queries are not supported.
	EthLatestBlock = "latest"

	// ContentTypeJSON is the media type of JSON-RPC request bodies.
	ContentTypeJSON = "application/json"

	// HeaderContentType is the name of the content type request header.
	HeaderContentType = "Content-Type"

	// HeaderHost is the name of the host request header.
	HeaderHost = "Host"

	// NetworkMainnet is the Ethereum main network.
	NetworkMainnet = "mainnet"

	// NetworkSepolia is the Sepolia test network.
	NetworkSepolia = "sepolia"
)
