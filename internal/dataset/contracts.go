package dataset

// Chain identifies the network a contract is deployed on.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainArbitrum Chain = "arbitrum"
	ChainOptimism Chain = "optimism"
	ChainBase     Chain = "base"
)

// ChainIDs maps chains to Etherscan unified v2 API chain ids.
var ChainIDs = map[Chain]string{
	ChainEthereum: "1",
	ChainArbitrum: "42161",
	ChainOptimism: "10",
	ChainBase:     "8453",
}

// ExplorerURLs maps chains to their block explorer address pages.
var ExplorerURLs = map[Chain]string{
	ChainEthereum: "https://etherscan.io/address/",
	ChainArbitrum: "https://arbiscan.io/address/",
	ChainOptimism: "https://optimistic.etherscan.io/address/",
	ChainBase:     "https://basescan.org/address/",
}

// Entry is one curated contract in the thesis dataset.
type Entry struct {
	Name              string
	Address           string
	Chain             Chain
	Category          string
	Filename          string
	AmountLost        string
	Date              string
	VulnerabilityType string
	Description       string
}

// SafeContracts are audited, non-exploited contracts used as the
// false-positive baseline.
var SafeContracts = []Entry{
	{
		Name:        "Uniswap V4 Pool Manager",
		Address:     "0x000000000004444c5dc75cb358380d2e3de08a90",
		Chain:       ChainEthereum,
		Category:    "safe/ethereum/defi",
		Filename:    "uniswap_v4_poolmanager.sol",
		Date:        "2025-01-31",
		Description: "Uniswap V4 singleton pool manager - audited",
	},
}

// Exploits are the hand-picked exploited contracts, one per vulnerability
// class under study.
var Exploits = []Entry{
	{
		Name:              "Sentiment Lending Pool (Proxy)",
		Address:           "0x62C5aa8277E49B3EAd43dC67453EC91dC6826403",
		Chain:             ChainArbitrum,
		Category:          "exploits/arbitrum/reentrancy",
		Filename:          "sentiment_pool_proxy.sol",
		Date:              "2023-04-04",
		AmountLost:        "$1,000,000",
		VulnerabilityType: "REENTRANCY",
		Description:       "Read-only reentrancy via Balancer exitPool() let attacker borrow against stale balances; ~$1M withdrawn (most later returned).",
	},
	{
		Name:              "Parity Wallet (First Hack)",
		Address:           "0x863df6bfa4469f3ead0be8f9f2aae51c91a907b4",
		Chain:             ChainEthereum,
		Category:          "exploits/ethereum/access-control",
		Filename:          "parity_wallet_1.sol",
		AmountLost:        "$30,000,000",
		Date:              "2017-07-19",
		VulnerabilityType: "ACCESS_CONTROL",
		Description:       "Unprotected initWallet function allowed attacker to become owner",
	},
	{
		Name:              "BeautyChain (BEC)",
		Address:           "0xc5d105e63711398af9bbff092d4b6769c82f793d",
		Chain:             ChainEthereum,
		Category:          "exploits/ethereum/arithmetic",
		Filename:          "beautychain.sol",
		AmountLost:        "Token supply inflation",
		Date:              "2018-04-22",
		VulnerabilityType: "ARITHMETIC",
		Description:       "BatchOverflow bug - CVE-2018-10299",
	},
	{
		Name:              "Anubis (ANKH)",
		Address:           "0x507586012a126421c3669A64B8393fffA9C44462",
		Chain:             ChainEthereum,
		Category:          "exploits/ethereum/rugpull",
		Filename:          "anubis_ankh.sol",
		Date:              "2021-10-29",
		AmountLost:        "$60,000,000",
		VulnerabilityType: "LIQUIDITY_DRAIN",
		Description:       "AnubisDAO rugpull: developers drained 13,556 ETH from the Balancer liquidity pool within 20 hours of launch.",
	},
	{
		Name:              "Private_Bank Honeypot",
		Address:           "0x95d34980095380851902ccd9a1fb4c813c2cb639",
		Chain:             ChainEthereum,
		Category:          "exploits/ethereum/honeypot",
		Filename:          "private_bank.sol",
		AmountLost:        "N/A (Honeypot)",
		Date:              "2018-01-01",
		VulnerabilityType: "HONEYPOT",
		Description:       "Fake reentrancy vulnerability with hidden revert in Logger",
	},
}

// AllContracts is the full six-contract dataset: safe baseline + exploits.
func AllContracts() []Entry {
	out := make([]Entry, 0, len(SafeContracts)+len(Exploits))
	out = append(out, SafeContracts...)
	out = append(out, Exploits...)
	return out
}
