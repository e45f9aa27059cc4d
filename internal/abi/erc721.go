package abi

// ERC-721 view functions.
var (
	// ERC721OwnerOf is ownerOf(uint256) -> address.
	ERC721OwnerOf = MustNewFunction(FunctionSpec{
		Name:       "ownerOf",
		Inputs:     []string{"uint256"},
		Outputs:    []string{"address"},
		Mutability: "view",
	})

	// ERC721BalanceOf is balanceOf(address) -> uint256.
	ERC721BalanceOf = MustNewFunction(FunctionSpec{
		Name:       "balanceOf",
		Inputs:     []string{"address"},
		Outputs:    []string{"uint256"},
		Mutability: "view",
	})

	// ERC721GetApproved is getApproved(uint256) -> address.
	ERC721GetApproved = MustNewFunction(FunctionSpec{
		Name:       "getApproved",
		Inputs:     []string{"uint256"},
		Outputs:    []string{"address"},
		Mutability: "view",
	})
)
