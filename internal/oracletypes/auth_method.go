package oracletypes

// AuthMethod names the smart contract (and chain) that can answer "is this
// message authorized?" for a wallet. account_id is the contract address;
// chain_id selects the verifier. metadata, when present on a NEAR auth
// method, is a JSON string such as `{"method":"hot_verify_deposit"}`
// overriding the default hot_verify method name — any other shape is opaque
// passthrough, never interpreted.
type AuthMethod struct {
	AccountID string  `json:"account_id"`
	Metadata  *string `json:"metadata"`
	ChainID   ChainId `json:"chain_id"`
}

// WalletAuthMethods is the output of NEAR's get_wallet on the registry
// contract. AccessList is ordered; callers must supply one user_payload per
// element in the same order (see ProofModel).
type WalletAuthMethods struct {
	AccessList  []AuthMethod `json:"access_list"`
	KeyGen      uint64       `json:"key_gen"`
	BlockHeight uint64       `json:"block_height"`
}

// ProofModel is the caller-supplied proof accompanying a verification
// request: one message body shared across auth methods, and one user
// payload per auth method in AccessList order.
type ProofModel struct {
	MessageBody  string   `json:"message_body"`
	UserPayloads []string `json:"user_payloads"`
}

// VerifyArgs is the argument bundle passed to a NEAR hot_verify call. The
// other chains' verifiers take their own chain-specific input types.
type VerifyArgs struct {
	MsgBody     string
	MsgHash     string // base58
	WalletID    *string
	UserPayload string
	Metadata    *string
}

// AuthMethodMetadata is the only schema the oracle interprets out of a NEAR
// auth method's opaque metadata string.
type AuthMethodMetadata struct {
	Method string `json:"method"`
}
