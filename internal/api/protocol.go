package api

import "github.com/thep2p/go-eth-outcall/internal/model"

// VerifyECDSAReq is the body of POST /verify_ecdsa.
type VerifyECDSAReq struct {
	Address   string `json:"address" binding:"required"`
	Message   string `json:"message"`
	Signature string `json:"signature" binding:"required"`
}

// ValidRes reports the outcome of a verification.
type ValidRes struct {
	Valid bool `json:"valid"`
}

// GetNFTOwnerReq is the body of POST /get_nft_owner.
type GetNFTOwnerReq struct {
	Network         string         `json:"network" binding:"required"`
	ContractAddress string         `json:"contract_address" binding:"required"`
	TokenID         *model.TokenID `json:"token_id" binding:"required"`
}

// GetNFTOwnerRes carries the owner as 40 lowercase hex digits without a 0x prefix.
type GetNFTOwnerRes struct {
	Owner string `json:"owner"`
}

// NFTClaim is one ownership assertion of POST /verify_nft_owners.
type NFTClaim struct {
	Network         string         `json:"network" binding:"required"`
	ContractAddress string         `json:"contract_address" binding:"required"`
	TokenID         *model.TokenID `json:"token_id" binding:"required"`
	Owner           string         `json:"owner" binding:"required"`
}

// VerifyNFTOwnersReq is the body of POST /verify_nft_owners.
type VerifyNFTOwnersReq struct {
	Claims []NFTClaim `json:"claims" binding:"required,min=1,dive"`
}

// NetworksRes lists the registered network names.
type NetworksRes struct {
	Networks []string `json:"networks"`
}

// ErrRes is the body of every failed request.
type ErrRes struct {
	Err  string `json:"err"`
	Code string `json:"code,omitempty"` // host rejection code of outcall failures
}
