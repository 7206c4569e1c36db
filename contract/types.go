package contract

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BridgeState is the bridge-wide lifecycle state.
type BridgeState string

// BridgeState values.
const (
	BridgeStateActive BridgeState = "active"
	BridgeStateHalted BridgeState = "halted"
)

// TokenState is the lifecycle state of a registered token.
type TokenState string

// TokenState values.
const (
	TokenStateEnabled    TokenState = "enabled"
	TokenStateDisabled   TokenState = "disabled"
	TokenStateProcessing TokenState = "processing"
	TokenStateInactive   TokenState = "inactive"
)

// Relayer is a member of the off-chain multi-signer relayer set. The three fields must each be
// unique across the whole config: two relayers can never share a host address, an XRPL address,
// or an XRPL public key.
type Relayer struct {
	HostAddress sdk.AccAddress `json:"host_address"`
	XRPLAddress string         `json:"xrpl_address"`
	XRPLPubKey  string         `json:"xrpl_pub_key"`
}

// Config is the singleton bridge configuration.
type Config struct {
	Owner                       sdk.AccAddress `json:"owner"`
	Relayers                    []Relayer   `json:"relayers"`
	EvidenceThreshold           uint32      `json:"evidence_threshold"`
	UsedTicketSequenceThreshold uint32      `json:"used_ticket_sequence_threshold"`
	TrustSetLimitAmount         sdkmath.Int `json:"trust_set_limit_amount"`
	BridgeXRPLAddress           string      `json:"bridge_xrpl_address"`
	BridgeState                 BridgeState `json:"bridge_state"`
	XRPLBaseFee                 uint32      `json:"xrpl_base_fee"`
	// AssetServiceAddress is the address of the external host-chain token-minting facility
	// (out of scope: the asset service is consumed only through its address).
	AssetServiceAddress sdk.AccAddress `json:"asset_service_address"`
	// RateLimitAddress is the optional external rate-limit service address (out of scope).
	RateLimitAddress sdk.AccAddress `json:"rate_limit_address,omitempty"`
	// SwapForwarderAddress is the optional external multi-hop swap forwarder address (out of scope).
	SwapForwarderAddress sdk.AccAddress `json:"swap_forwarder_address,omitempty"`
}

// RelayerByHostAddress returns the relayer with the given host address, if any.
func (c Config) RelayerByHostAddress(addr sdk.AccAddress) (Relayer, bool) {
	for _, r := range c.Relayers {
		if r.HostAddress.Equals(addr) {
			return r, true
		}
	}
	return Relayer{}, false
}

// IsRelayer reports whether addr belongs to the current relayer set.
func (c Config) IsRelayer(addr sdk.AccAddress) bool {
	_, ok := c.RelayerByHostAddress(addr)
	return ok
}

// XRPLToken is a token originated on XRPL and bridged into the host chain. Primary key is the
// (Issuer, Currency) pair; HostDenom is a unique secondary index.
type XRPLToken struct {
	Issuer           string      `json:"issuer"`
	Currency         string      `json:"currency"`
	HostDenom        string      `json:"host_denom"`
	SendingPrecision int32       `json:"sending_precision"`
	MaxHoldingAmount sdkmath.Int `json:"max_holding_amount"`
	State            TokenState  `json:"state"`
	BridgingFee      sdkmath.Int `json:"bridging_fee"`
	// BridgedAmount tracks the cumulative amount currently held in custody by the bridge for this
	// token, enforced against MaxHoldingAmount on inbound (XRPL->host) confirmation.
	BridgedAmount sdkmath.Int `json:"bridged_amount"`
}

// XRPLTokenKey is the primary key of an XRPLToken.
type XRPLTokenKey struct {
	Issuer   string
	Currency string
}

// HostToken is a token originated on the host chain and registered to be bridged to XRPL. Primary
// key is Denom; XRPLCurrency is a unique secondary index.
type HostToken struct {
	Denom            string      `json:"denom"`
	Decimals         uint32      `json:"decimals"`
	XRPLCurrency     string      `json:"xrpl_currency"`
	SendingPrecision int32       `json:"sending_precision"`
	MaxHoldingAmount sdkmath.Int `json:"max_holding_amount"`
	State            TokenState  `json:"state"`
	BridgingFee      sdkmath.Int `json:"bridging_fee"`
	// BridgedAmount tracks the cumulative amount currently held in custody by the bridge (as an
	// XRPL-side IOU issued by the bridge's own account) for this token, enforced against
	// MaxHoldingAmount symmetrically with XRPLToken.BridgedAmount.
	BridgedAmount sdkmath.Int `json:"bridged_amount"`
}

// PendingRefund is an amount a user may reclaim after a rejected/invalid/cancelled transfer.
type PendingRefund struct {
	Address    sdk.AccAddress `json:"address"`
	ID         string         `json:"id"`
	XRPLTxHash string         `json:"xrpl_tx_hash,omitempty"`
	Coin       sdk.Coin       `json:"coin"`
}

// TransactionEvidence is the query-facing view of an in-flight evidence record.
type TransactionEvidence struct {
	Hash             string           `json:"hash"`
	RelayerAddresses []sdk.AccAddress `json:"relayer_addresses"`
}
