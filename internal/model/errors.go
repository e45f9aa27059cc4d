package model

import "errors"

// Error kinds shared by every stage of the bridge. Stages wrap one of these
// with fmt.Errorf("%w: ...") so callers can tell failures apart with errors.Is.
var (
	// ErrInput marks a malformed address, signature, hex string or token id.
	ErrInput = errors.New("invalid input")

	// ErrUnknownNetwork marks a network name that has no registered endpoint.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrEncoding marks an ABI argument that cannot be represented in its declared type.
	ErrEncoding = errors.New("abi encoding failed")

	// ErrOutcall marks a host, network or transport failure of the outbound call.
	ErrOutcall = errors.New("outcall failed")

	// ErrMalformedJSON marks a reply that is not a decodable JSON-RPC success response.
	ErrMalformedJSON = errors.New("malformed json-rpc response")
)
