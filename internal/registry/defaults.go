package registry

// DefaultDefinition returns the built-in table of tracked deployments.
func DefaultDefinition() Definition {
	return Definition{
		Families: []Family{
			{Name: "evm", DefaultNetwork: "ethereum", NativeSymbol: "ETH"},
			{Name: "svm", DefaultNetwork: "solana", NativeSymbol: "SOL"},
		},
		Networks: []Network{
			{ID: "ethereum", Family: "evm", DisplayName: "Ethereum", APIName: "eth", Aliases: []string{"mainnet", "1"}},
			{ID: "arbitrum", Family: "evm", DisplayName: "Arbitrum", APIName: "arbitrum", Aliases: []string{"arb", "42161"}},
			{ID: "optimism", Family: "evm", DisplayName: "Optimism", APIName: "optimism", Aliases: []string{"op", "10"}},
			{ID: "base", Family: "evm", DisplayName: "Base", APIName: "base", Aliases: []string{"8453"}},
			{ID: "polygon", Family: "evm", DisplayName: "Polygon", APIName: "polygon", Aliases: []string{"matic", "137"}},
			{ID: "solana", Family: "svm", DisplayName: "Solana", APIName: "svm", Aliases: []string{"sol", "mainnet-beta"}},
		},
		Assets: []Asset{
			{Symbol: "USDC", Addresses: []AssetAddress{
				{Network: "ethereum", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
				{Network: "arbitrum", Address: "0xaf88d065e77c8cc2239327c5edb3a432268e5831"},
				{Network: "optimism", Address: "0x7f5c764cbc14f9669b88837ca1490cca17c31607"},
				{Network: "base", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
				{Network: "polygon", Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"},
				{Network: "solana", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
			}},
			{Symbol: "USDbC", Addresses: []AssetAddress{
				{Network: "base", Address: "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA"},
			}},
			{Symbol: "WETH", Addresses: []AssetAddress{
				{Network: "ethereum", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
				{Network: "arbitrum", Address: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"},
				{Network: "optimism", Address: "0x4200000000000000000000000000000000000006"},
				{Network: "base", Address: "0x4200000000000000000000000000000000000006"},
				{Network: "polygon", Address: "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"},
				{Network: "solana", Address: "7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs"},
			}},
			{Symbol: "WBTC", Addresses: []AssetAddress{
				{Network: "ethereum", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"},
				{Network: "arbitrum", Address: "0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f"},
				{Network: "optimism", Address: "0x68f180fcCe6836688e9084f035309E29Bf0A2095"},
				{Network: "base", Address: "0x236aa50979D5f3De3Bd1Eeb40E81137F22ab794b"},
				{Network: "polygon", Address: "0x1BFD67037B42Cf73acF2047067bd4F2C47D9BfD6"},
				{Network: "solana", Address: "3NZ9JMVBmGAqocybic2c7LQCJScmgsAZ6vQqTDzcqmJh"},
			}},
			{Symbol: "ETH", Addresses: []AssetAddress{
				{Network: "ethereum", Address: ZeroAddress},
				{Network: "arbitrum", Address: ZeroAddress},
				{Network: "optimism", Address: ZeroAddress},
				{Network: "base", Address: ZeroAddress},
			}},
			{Symbol: "BTC", Addresses: []AssetAddress{
				{Network: "solana", Address: "9n4nbM75f5Ui33ZbPYXn59EwSgE8CGsHtAeTH5YFeJ9E"},
			}},
			{Symbol: "SOL", Addresses: []AssetAddress{
				{Network: "solana", Address: "So11111111111111111111111111111111111111112"},
				{Network: "ethereum", Address: "0xD31a59c85aE9D8edEFeC411D448f90841571b89c"},
				{Network: "arbitrum", Address: "0x2bcC6D6CdBbDC0a4071e48bb3B969b06B3330c07"},
			}},
			{Symbol: "USDT", Addresses: []AssetAddress{
				{Network: "ethereum", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
				{Network: "arbitrum", Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"},
				{Network: "optimism", Address: "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58"},
				{Network: "base", Address: "0xfde4C96c8593536E31F229EA8f37b2ADa2699bb2"},
				{Network: "polygon", Address: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F"},
				{Network: "solana", Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"},
			}},
			{Symbol: "DAI", Addresses: []AssetAddress{
				{Network: "ethereum", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F"},
				{Network: "arbitrum", Address: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"},
				{Network: "optimism", Address: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"},
				{Network: "base", Address: "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"},
				{Network: "polygon", Address: "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"},
			}},
		},
	}
}

// Default builds the registry from DefaultDefinition.
func Default() *Registry {
	return MustNew(DefaultDefinition())
}
