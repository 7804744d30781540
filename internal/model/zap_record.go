package model

// ZapRecord is a committed zap operation persisted to the history sink.
// Amounts are decimal strings to survive JSON round-trips intact.
type ZapRecord struct {
	Kind            string `json:"kind"` // "zap_in" or "zap_out"
	Caller          string `json:"caller"`
	Pair            string `json:"pair"`
	TokenA          string `json:"token_a"`
	TokenB          string `json:"token_b"`
	Token           string `json:"token"` // input token on entry, output token on exit
	AmountIn        string `json:"amount_in,omitempty"`
	LiquidityMinted string `json:"liquidity_minted,omitempty"`
	LiquidityIn     string `json:"liquidity_in,omitempty"`
	AmountOut       string `json:"amount_out,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}
