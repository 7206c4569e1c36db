package contract

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pkg/errors"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/contract/store"
	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/logger"
	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/xrpl"
)

// MaxRelayers is the largest relayer set the bridge will accept at instantiation or key rotation.
const MaxRelayers = 32

// Keeper is the bridge contract's host-environment binding: a KVStore standing in for the
// CosmWasm dependencies object, and a structured logger for host-side observability. It owns no
// other mutable state - every piece of bridge state lives in store, addressed through the typed
// Item/Map handles declared in storage.go.
type Keeper struct {
	store store.KVStore
	log   logger.Logger
}

// NewKeeper binds a Keeper to a concrete KVStore and Logger. The KVStore is expected to already be
// scoped to this contract's storage namespace by the caller (the host environment); Keeper never
// prefixes beyond the TopKey byte conventions in keys.go.
func NewKeeper(s store.KVStore, log logger.Logger) *Keeper {
	return &Keeper{store: s, log: log}
}

// InstantiateMsg is the payload supplied when the bridge contract is first deployed.
type InstantiateMsg struct {
	Owner                       sdk.AccAddress
	Relayers                    []Relayer
	EvidenceThreshold           uint32
	UsedTicketSequenceThreshold uint32
	TrustSetLimitAmount         sdkmath.Int
	BridgeXRPLAddress           string
	XRPLBaseFee                 uint32
	// AssetServiceAddress is the external token-minting facility's address (out of scope: consumed
	// only as an address, never called into).
	AssetServiceAddress sdk.AccAddress
	// RateLimitAddress is the optional external rate-limit service address (out of scope).
	RateLimitAddress sdk.AccAddress
	// SwapForwarderAddress is the optional external multi-hop swap forwarder address (out of scope).
	SwapForwarderAddress sdk.AccAddress
	// IssueToken, when true, auto-registers the reserved native-XRP pseudo-token (issuer/currency
	// fixed, 6-decimal host precision) at instantiation instead of requiring a separate
	// RegisterXRPLToken call for it.
	IssueToken bool
}

// XRPPseudoIssuer and XRPPseudoCurrency are the reserved (issuer, currency) pair the registry uses
// to represent native XRP, which has no real XRPL issuer of its own.
const (
	XRPPseudoIssuer      = "rrrrrrrrrrrrrrrrrrrrrhoLvTp"
	XRPPseudoCurrency    = "XRP"
	xrpHostTokenDecimals = 6
)

// Instantiate validates msg and persists the bridge's initial configuration and empty ledgers.
func (k *Keeper) Instantiate(ctx context.Context, msg InstantiateMsg) (Config, error) {
	if len(msg.Relayers) == 0 {
		return Config{}, errors.Wrap(ErrInvalidThreshold, "at least one relayer is required")
	}
	if len(msg.Relayers) > MaxRelayers {
		return Config{}, ErrTooManyRelayers
	}
	if msg.EvidenceThreshold == 0 || msg.EvidenceThreshold > uint32(len(msg.Relayers)) {
		return Config{}, ErrInvalidThreshold
	}
	if msg.UsedTicketSequenceThreshold < 2 || msg.UsedTicketSequenceThreshold > MaxTicketsToAllocate {
		return Config{}, ErrInvalidUsedTicketSequenceThreshold
	}
	if !xrpl.IsValidAddress(msg.BridgeXRPLAddress) {
		return Config{}, ErrInvalidXRPLAddress
	}
	if msg.TrustSetLimitAmount.GT(maxTrustSetLimitAmount) {
		return Config{}, ErrInvalidTrustSetLimitAmount
	}
	// The bridge's own XRPL account can never be a valid send/issue/relayer-signer target.
	if err := prohibitedXRPLAddressesMap.Save(k.store, msg.BridgeXRPLAddress, struct{}{}); err != nil {
		return Config{}, err
	}
	if err := k.validateRelayers(msg.Relayers); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Owner:                       msg.Owner,
		Relayers:                    msg.Relayers,
		EvidenceThreshold:           msg.EvidenceThreshold,
		UsedTicketSequenceThreshold: msg.UsedTicketSequenceThreshold,
		TrustSetLimitAmount:         msg.TrustSetLimitAmount,
		BridgeXRPLAddress:           msg.BridgeXRPLAddress,
		BridgeState:                 BridgeStateActive,
		XRPLBaseFee:                 msg.XRPLBaseFee,
		AssetServiceAddress:         msg.AssetServiceAddress,
		RateLimitAddress:            msg.RateLimitAddress,
		SwapForwarderAddress:        msg.SwapForwarderAddress,
	}
	if err := configItem.Save(k.store, cfg); err != nil {
		return Config{}, err
	}
	if err := availableTicketsItem.Save(k.store, nil); err != nil {
		return Config{}, err
	}
	if err := usedTicketsCounterItem.Save(k.store, 0); err != nil {
		return Config{}, err
	}
	if err := pendingTicketUpdateItem.Save(k.store, false); err != nil {
		return Config{}, err
	}
	if err := pendingRotateKeysItem.Save(k.store, false); err != nil {
		return Config{}, err
	}

	if msg.IssueToken {
		key := XRPLTokenKey{Issuer: XRPPseudoIssuer, Currency: XRPPseudoCurrency}
		token := XRPLToken{
			Issuer:           XRPPseudoIssuer,
			Currency:         XRPPseudoCurrency,
			HostDenom:        deriveHostDenomFromXRPLToken(XRPPseudoIssuer, XRPPseudoCurrency),
			SendingPrecision: xrpHostTokenDecimals,
			MaxHoldingAmount: sdkmath.NewIntWithDecimal(1, 17),
			State:            TokenStateEnabled,
			BridgingFee:      sdkmath.ZeroInt(),
			BridgedAmount:    sdkmath.ZeroInt(),
		}
		if err := xrplTokensMap.Save(k.store, key, token); err != nil {
			return Config{}, err
		}
		if err := xrplTokensByHostDenomMap.Save(k.store, token.HostDenom, key); err != nil {
			return Config{}, err
		}
	}

	k.log.Info(ctx, "bridge instantiated", logger.StringField("bridge_xrpl_address", msg.BridgeXRPLAddress))
	return cfg, nil
}

// maxTrustSetLimitAmount is the registry-wide ceiling on a TrustSet's limit amount, expressed at
// XRPL's own 15-decimal precision.
var maxTrustSetLimitAmount = sdkmath.NewIntWithDecimal(1, 17)

func (k *Keeper) validateRelayers(relayers []Relayer) error {
	hostAddrs := make(map[string]struct{}, len(relayers))
	xrplAddrs := make(map[string]struct{}, len(relayers))
	xrplPubKeys := make(map[string]struct{}, len(relayers))
	for _, r := range relayers {
		if !xrpl.IsValidAddress(r.XRPLAddress) {
			return ErrInvalidXRPLAddress
		}
		if k.isProhibitedXRPLAddress(r.XRPLAddress) {
			return ErrProhibitedAddress
		}
		if _, ok := hostAddrs[r.HostAddress.String()]; ok {
			return ErrDuplicatedRelayer
		}
		if _, ok := xrplAddrs[r.XRPLAddress]; ok {
			return ErrDuplicatedRelayer
		}
		if _, ok := xrplPubKeys[r.XRPLPubKey]; ok {
			return ErrDuplicatedRelayer
		}
		hostAddrs[r.HostAddress.String()] = struct{}{}
		xrplAddrs[r.XRPLAddress] = struct{}{}
		xrplPubKeys[r.XRPLPubKey] = struct{}{}
	}
	return nil
}

func (k *Keeper) requireActive(cfg Config) error {
	if cfg.BridgeState == BridgeStateHalted {
		return ErrBridgeHalted
	}
	return nil
}

// SaveEvidence is the relayer-facing entry point for the evidence aggregator. While a key rotation
// is in flight the bridge is halted to every evidence except the one confirming (or rejecting)
// that very rotation.
func (k *Keeper) SaveEvidence(ctx context.Context, sender sdk.AccAddress, e Evidence) error {
	cfg, err := k.authorize(sender, ActionSaveEvidence)
	if err != nil {
		return err
	}

	if cfg.BridgeState == BridgeStateHalted {
		pendingRotation, err := k.pendingRotateKeys()
		if err != nil {
			return err
		}
		if !(pendingRotation && e.XRPLTransactionResult != nil && k.isRotateKeysOperation(e.XRPLTransactionResult.OperationID())) {
			return ErrBridgeHalted
		}
	}

	confirmed, err := k.submitEvidence(ctx, sender, e)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	switch {
	case e.XRPLToHostTransfer != nil:
		return k.applyXRPLToHostTransfer(cfg, *e.XRPLToHostTransfer)
	case e.XRPLTransactionResult != nil:
		return k.applyXRPLTransactionResult(ctx, *e.XRPLTransactionResult)
	}
	return nil
}

func (k *Keeper) pendingRotateKeys() (bool, error) {
	v, _, err := pendingRotateKeysItem.Load(k.store)
	return v, err
}

func (k *Keeper) isRotateKeysOperation(operationID uint32) bool {
	op, err := k.loadOperation(operationID)
	if err != nil {
		return false
	}
	return op.OperationType.RotateKeys != nil
}

// applyXRPLToHostTransfer records a confirmed inbound XRPL->host deposit against the relevant
// token's custody ledger. Minting the corresponding host-chain balance to the recipient is
// delegated to the external asset-minting facility (out of scope); this only updates the bridge's
// own books.
//
// Two distinct token catalogs can be the subject of this evidence: an XRPL-originated token coming
// home to its own (issuer, currency), or a host-originated token's IOU returning from XRPL, which
// is always issued by the bridge's own XRPL account (e.issuer == cfg.BridgeXRPLAddress) under the
// currency code reserved for it at registration.
func (k *Keeper) applyXRPLToHostTransfer(cfg Config, e XRPLToHostTransferEvidence) error {
	if e.Issuer == cfg.BridgeXRPLAddress {
		return k.applyXRPLToHostTransferForHostToken(e)
	}

	token, found, err := k.xrplTokenByIssuerCurrency(e.Issuer, e.Currency)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	if token.State != TokenStateEnabled {
		return ErrTokenNotEnabled
	}

	truncated, _, err := truncateXRPLOriginatedAmount(token.SendingPrecision, e.Amount)
	if err != nil {
		return err
	}
	net, err := k.chargeBridgingFee(token.HostDenom, token.BridgingFee, truncated)
	if err != nil {
		return err
	}
	return k.adjustXRPLTokenBridgedAmount(e.Issuer, e.Currency, net)
}

// applyXRPLToHostTransferForHostToken handles the mirror-image leg of applyXRPLToHostTransfer: a
// host-originated token's IOU, issued by the bridge's own XRPL account, returning into bridge
// custody. The amount arrives at XRPL's 15-decimal precision and must be rescaled down to the
// token's native host-chain decimals before the fee and custody cap are applied.
func (k *Keeper) applyXRPLToHostTransferForHostToken(e XRPLToHostTransferEvidence) error {
	token, found, err := k.hostTokenByXRPLCurrency(e.Currency)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	if token.State != TokenStateEnabled {
		return ErrTokenNotEnabled
	}

	rescaled, err := convertXRPLDecimalsToHostDecimals(e.Amount, token.Decimals)
	if err != nil {
		return err
	}
	truncated, _, err := truncateHostOriginatedAmount(token.Decimals, token.SendingPrecision, rescaled)
	if err != nil {
		return err
	}
	net, err := k.chargeBridgingFee(token.Denom, token.BridgingFee, truncated)
	if err != nil {
		return err
	}
	// The IOU is returning from XRPL to host custody, releasing the lock placed when it was sent
	// outbound, so this leg subtracts from the cumulative bridged amount.
	return k.adjustHostTokenBridgedAmount(token.Denom, net.Neg())
}

// applyXRPLTransactionResult dispatches a confirmed outbound-operation outcome to its
// operation-type-specific handling, then removes the now-resolved pending operation.
func (k *Keeper) applyXRPLTransactionResult(ctx context.Context, r XRPLTransactionResultEvidence) error {
	opID := r.OperationID()
	op, err := k.loadOperation(opID)
	if err != nil {
		return err
	}
	defer k.removeOperation(opID)

	if err := validateOperationResultMatchesType(r, op.OperationType); err != nil {
		return err
	}

	returnsTicket := r.TransactionResult == TransactionResultInvalid ||
		(r.TransactionResult == TransactionResultRejected && op.OperationType.AllocateTickets == nil)
	if returnsTicket && op.TicketSequence != nil {
		if err := k.returnTicket(*op.TicketSequence); err != nil {
			return err
		}
	}

	switch {
	case op.OperationType.AllocateTickets != nil:
		return k.resolveAllocateTickets(r, *op.OperationType.AllocateTickets)
	case op.OperationType.TrustSet != nil:
		return k.resolveTrustSet(r, *op.OperationType.TrustSet)
	case op.OperationType.CosmosToXRPLTransfer != nil:
		return k.resolveCosmosToXRPLTransfer(r, op, *op.OperationType.CosmosToXRPLTransfer)
	case op.OperationType.RotateKeys != nil:
		return k.resolveRotateKeys(ctx, r, *op.OperationType.RotateKeys)
	}
	return nil
}

// validateOperationResultMatchesType rejects evidence whose OperationResult payload doesn't
// belong to the pending operation it's attached to — e.g. a TicketsAllocation result reported
// against a TrustSet or CosmosToXRPLTransfer operation, which resolveTrustSet/
// resolveCosmosToXRPLTransfer would otherwise silently ignore instead of rejecting outright.
func validateOperationResultMatchesType(r XRPLTransactionResultEvidence, opType OperationType) error {
	if r.OperationResult == nil {
		return nil
	}
	if r.OperationResult.TicketsAllocation != nil && opType.AllocateTickets == nil {
		return ErrInvalidOperationResult
	}
	return nil
}

func (k *Keeper) resolveAllocateTickets(r XRPLTransactionResultEvidence, op OperationTypeAllocateTickets) error {
	if r.TransactionResult == TransactionResultAccepted && r.OperationResult != nil && r.OperationResult.TicketsAllocation != nil {
		if err := k.allocateTickets(r.OperationResult.TicketsAllocation.Tickets); err != nil {
			return err
		}
		return nil
	}
	return pendingTicketUpdateItem.Save(k.store, false)
}

func (k *Keeper) resolveTrustSet(r XRPLTransactionResultEvidence, op OperationTypeTrustSet) error {
	if r.TransactionResult == TransactionResultAccepted {
		return k.activateXRPLToken(op.Issuer, op.Currency)
	}
	return k.setXRPLTokenStateInternal(op.Issuer, op.Currency, TokenStateInactive)
}

func (k *Keeper) resolveCosmosToXRPLTransfer(r XRPLTransactionResultEvidence, op Operation, payload OperationTypeCosmosToXRPLTransfer) error {
	if r.TransactionResult == TransactionResultAccepted {
		return nil
	}
	id := generateRefundID(op.ID())
	return k.createPendingRefund(payload.Sender, id, r.TxHash, payload.OriginalCoin)
}

func generateRefundID(operationID uint32) string {
	return uint32KeyString(operationID)
}

func uint32KeyString(v uint32) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = hex[v&0xf]
		v >>= 4
	}
	return string(b)
}

// resolveRotateKeys concludes a key rotation. Either outcome leaves the bridge Halted (only an
// explicit ResumeBridge reopens it) and wipes the evidence store: accepted evidence recorded under
// the outgoing relayer set (or partial votes on a rejected rotation) can never be meaningfully
// revisited once the rotation has resolved one way or the other.
func (k *Keeper) resolveRotateKeys(ctx context.Context, r XRPLTransactionResultEvidence, op OperationTypeRotateKeys) error {
	if err := pendingRotateKeysItem.Save(k.store, false); err != nil {
		return err
	}

	if r.TransactionResult == TransactionResultAccepted {
		cfg, _, err := configItem.Load(k.store)
		if err != nil {
			return err
		}
		cfg.Relayers = op.NewRelayers
		cfg.EvidenceThreshold = op.NewEvidenceThreshold
		if err := configItem.Save(k.store, cfg); err != nil {
			return err
		}
		k.log.Info(ctx, "relayer set rotated", logger.Int64Field("new_relayer_count", int64(len(cfg.Relayers))))
	}

	return clearAllEvidences(k.store)
}

// RotateKeys immediately halts the bridge and enqueues a RotateKeys operation; the bridge stays
// halted until the owner explicitly calls ResumeBridge, regardless of whether the rotation is
// ultimately accepted or rejected on XRPL.
func (k *Keeper) RotateKeys(ctx context.Context, sender sdk.AccAddress, accountSequence uint32, newRelayers []Relayer, newEvidenceThreshold uint32) error {
	cfg, err := k.authorize(sender, ActionRotateKeys)
	if err != nil {
		return err
	}
	pending, err := k.pendingRotateKeys()
	if err != nil {
		return err
	}
	if pending {
		return ErrRotateKeysOngoing
	}
	if newEvidenceThreshold == 0 || newEvidenceThreshold > uint32(len(newRelayers)) {
		return ErrInvalidThreshold
	}
	if err := k.validateRelayers(newRelayers); err != nil {
		return err
	}

	cfg.BridgeState = BridgeStateHalted
	if err := configItem.Save(k.store, cfg); err != nil {
		return err
	}

	ticket, _, err := k.reserveTicket(ctx, false)
	if err != nil {
		return err
	}
	if err := k.createOperation(ctx, ticket, accountSequence, OperationType{
		RotateKeys: &OperationTypeRotateKeys{NewRelayers: newRelayers, NewEvidenceThreshold: newEvidenceThreshold},
	}); err != nil {
		return err
	}
	return pendingRotateKeysItem.Save(k.store, true)
}

// HaltBridge halts the bridge. Either the owner or any relayer may trigger it (a relayer
// witnessing something wrong on the XRPL side shouldn't have to wait on the owner).
func (k *Keeper) HaltBridge(sender sdk.AccAddress) error {
	cfg, err := k.authorize(sender, ActionHaltBridge)
	if err != nil {
		return err
	}
	cfg.BridgeState = BridgeStateHalted
	return configItem.Save(k.store, cfg)
}

// ResumeBridge resumes the bridge. Refused while a key rotation is still in flight.
func (k *Keeper) ResumeBridge(sender sdk.AccAddress) error {
	cfg, err := k.authorize(sender, ActionResumeBridge)
	if err != nil {
		return err
	}
	pending, err := k.pendingRotateKeys()
	if err != nil {
		return err
	}
	if pending {
		return ErrRotateKeysOngoing
	}
	cfg.BridgeState = BridgeStateActive
	return configItem.Save(k.store, cfg)
}

// UpdateXRPLBaseFee updates the network's base fee and bumps every pending operation's version,
// wiping their collected signatures (the unsigned blobs they signed are priced at the old fee).
func (k *Keeper) UpdateXRPLBaseFee(sender sdk.AccAddress, newBaseFee uint32) error {
	if _, err := k.authorize(sender, ActionUpdateXRPLBaseFee); err != nil {
		return err
	}
	return k.bumpXRPLBaseFee(newBaseFee)
}

// RecoverTickets is the owner's escape hatch for when the ticket pool is fully drained.
func (k *Keeper) RecoverTickets(ctx context.Context, sender sdk.AccAddress, accountSequence, numberOfTickets uint32) error {
	cfg, err := k.authorize(sender, ActionRecoverTickets)
	if err != nil {
		return err
	}
	if err := k.requireActive(cfg); err != nil {
		return err
	}
	return k.recoverTickets(ctx, accountSequence, numberOfTickets)
}

// SaveSignature records a relayer's XRPL multisignature over a pending operation's current
// version. While the bridge is halted, signing is forbidden for every operation except the
// in-flight RotateKeys one (relayers must still be able to co-sign the rotation that will
// eventually let the owner resume the bridge).
func (k *Keeper) SaveSignature(sender sdk.AccAddress, operationID, version uint32, signature string) error {
	cfg, err := k.authorize(sender, ActionSaveSignature)
	if err != nil {
		return err
	}
	if cfg.BridgeState == BridgeStateHalted && !k.isRotateKeysOperation(operationID) {
		return ErrBridgeHalted
	}
	return k.saveSignature(sender, operationID, version, signature)
}

// CancelPendingOperation lets the owner discard a pending operation without XRPL-side execution,
// per operation type: an AllocateTickets cancel returns its ticket, if it carries one, and resets
// the pending-replenishment flag; a
// TrustSet cancel drops the token back to Inactive; a transfer cancel queues a refund for the
// sender; a RotateKeys cancel clears the pending-rotation flag but leaves the bridge Halted, same
// as a rejected rotation would.
func (k *Keeper) CancelPendingOperation(sender sdk.AccAddress, operationID uint32) error {
	if _, err := k.authorize(sender, ActionCancelPendingOperation); err != nil {
		return err
	}
	op, err := k.loadOperation(operationID)
	if err != nil {
		return err
	}
	k.removeOperation(operationID)

	switch {
	case op.OperationType.AllocateTickets != nil:
		if err := k.returnOperationTicket(op); err != nil {
			return err
		}
		return pendingTicketUpdateItem.Save(k.store, false)
	case op.OperationType.TrustSet != nil:
		if err := k.returnOperationTicket(op); err != nil {
			return err
		}
		ts := op.OperationType.TrustSet
		return k.setXRPLTokenStateInternal(ts.Issuer, ts.Currency, TokenStateInactive)
	case op.OperationType.CosmosToXRPLTransfer != nil:
		if err := k.returnOperationTicket(op); err != nil {
			return err
		}
		transfer := op.OperationType.CosmosToXRPLTransfer
		return k.createPendingRefund(transfer.Sender, generateRefundID(op.ID()), "", transfer.OriginalCoin)
	case op.OperationType.RotateKeys != nil:
		if err := k.returnOperationTicket(op); err != nil {
			return err
		}
		return pendingRotateKeysItem.Save(k.store, false)
	}
	return k.returnOperationTicket(op)
}

// TransferOwnership proposes sender's replacement as contract owner. The proposal only takes
// effect once the new owner calls AcceptOwnership; until then the current owner stays in control.
func (k *Keeper) TransferOwnership(sender, newOwner sdk.AccAddress) error {
	if _, err := k.authorize(sender, ActionTransferOwnership); err != nil {
		return err
	}
	return pendingOwnerItem.Save(k.store, newOwner)
}

// AcceptOwnership completes a pending ownership transfer. Only the proposed new owner may call it;
// it is deliberately not gated through the owner/relayer authorize() matrix since the caller isn't
// the current owner yet.
func (k *Keeper) AcceptOwnership(sender sdk.AccAddress) error {
	pendingOwner, found, err := pendingOwnerItem.Load(k.store)
	if err != nil {
		return err
	}
	if !found || !pendingOwner.Equals(sender) {
		return ErrNotOwner
	}
	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return err
	}
	cfg.Owner = sender
	if err := configItem.Save(k.store, cfg); err != nil {
		return err
	}
	pendingOwnerItem.Remove(k.store)
	return nil
}

// GetOwnership returns the current owner and, if one is in flight, the address proposed to
// replace them.
func (k *Keeper) GetOwnership() (owner sdk.AccAddress, pendingOwner sdk.AccAddress, err error) {
	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return nil, nil, err
	}
	pending, _, err := pendingOwnerItem.Load(k.store)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Owner, pending, nil
}

// RegisterHostToken registers a host-originated token for bridging to XRPL.
func (k *Keeper) RegisterHostToken(
	sender sdk.AccAddress, denom string, decimals uint32, sendingPrecision int32, maxHoldingAmount, bridgingFee sdkmath.Int,
) (HostToken, error) {
	if _, err := k.authorize(sender, ActionRegisterHostToken); err != nil {
		return HostToken{}, err
	}
	return k.registerHostToken(denom, decimals, sendingPrecision, maxHoldingAmount, bridgingFee)
}

// RegisterXRPLToken registers an XRPL-originated token for bridging to the host chain, reserving a
// ticket to carry the TrustSet operation the bridge account must submit before it's usable.
func (k *Keeper) RegisterXRPLToken(
	ctx context.Context, sender sdk.AccAddress, issuer, currency string, sendingPrecision int32, maxHoldingAmount, bridgingFee sdkmath.Int,
) (XRPLToken, error) {
	cfg, err := k.authorize(sender, ActionRegisterXRPLToken)
	if err != nil {
		return XRPLToken{}, err
	}
	if err := k.requireActive(cfg); err != nil {
		return XRPLToken{}, err
	}
	ticket, _, err := k.reserveTicket(ctx, false)
	if err != nil {
		return XRPLToken{}, err
	}
	return k.registerXRPLToken(ctx, ticket, issuer, currency, sendingPrecision, maxHoldingAmount, bridgingFee, cfg.TrustSetLimitAmount)
}

// RecoverXRPLTokenRegistration re-submits the TrustSet for an XRPL token whose registration was
// left Inactive by a rejected or invalidated TrustSet, reserving a fresh ticket to carry it.
func (k *Keeper) RecoverXRPLTokenRegistration(ctx context.Context, sender sdk.AccAddress, issuer, currency string) error {
	cfg, err := k.authorize(sender, ActionRecoverXRPLTokenRegistration)
	if err != nil {
		return err
	}
	if err := k.requireActive(cfg); err != nil {
		return err
	}
	ticket, _, err := k.reserveTicket(ctx, false)
	if err != nil {
		return err
	}
	return k.recoverXRPLTokenRegistration(ctx, ticket, issuer, currency, cfg.TrustSetLimitAmount)
}

// SetHostTokenState enables or disables a previously registered host token.
func (k *Keeper) SetHostTokenState(sender sdk.AccAddress, denom string, target TokenState) error {
	if _, err := k.authorize(sender, ActionUpdateHostToken); err != nil {
		return err
	}
	return k.setHostTokenState(denom, target)
}

// SetXRPLTokenState enables or disables a previously registered XRPL token.
func (k *Keeper) SetXRPLTokenState(sender sdk.AccAddress, issuer, currency string, target TokenState) error {
	if _, err := k.authorize(sender, ActionUpdateXRPLToken); err != nil {
		return err
	}
	return k.setXRPLTokenState(issuer, currency, target)
}

// SetXRPLTokenMaxHoldingAmount updates an XRPL token's registry holding cap.
func (k *Keeper) SetXRPLTokenMaxHoldingAmount(sender sdk.AccAddress, issuer, currency string, max sdkmath.Int) error {
	if _, err := k.authorize(sender, ActionUpdateXRPLToken); err != nil {
		return err
	}
	return k.setXRPLTokenMaxHoldingAmount(issuer, currency, max)
}

// UpdateProhibitedXRPLAddresses replaces the set of XRPL addresses the bridge refuses to send to,
// receive issuance from, or accept as a relayer's XRPL address. The bridge's own XRPL address is
// always kept in the set, whether or not addresses lists it.
func (k *Keeper) UpdateProhibitedXRPLAddresses(sender sdk.AccAddress, addresses []string) error {
	cfg, err := k.authorize(sender, ActionUpdateProhibitedXRPLAddresses)
	if err != nil {
		return err
	}
	var existing []string
	if err := prohibitedXRPLAddressesMap.Range(k.store, func(rawKey []byte, _ struct{}) (bool, error) {
		existing = append(existing, string(rawKey))
		return true, nil
	}); err != nil {
		return err
	}
	for _, addr := range existing {
		prohibitedXRPLAddressesMap.Remove(k.store, addr)
	}
	for _, addr := range addresses {
		if !xrpl.IsValidAddress(addr) {
			return ErrInvalidXRPLAddress
		}
		if err := prohibitedXRPLAddressesMap.Save(k.store, addr, struct{}{}); err != nil {
			return err
		}
	}
	return prohibitedXRPLAddressesMap.Save(k.store, cfg.BridgeXRPLAddress, struct{}{})
}

func (k *Keeper) isProhibitedXRPLAddress(addr string) bool {
	return prohibitedXRPLAddressesMap.Has(k.store, addr)
}

// SendToXRPLMsg is a host->XRPL outbound transfer request.
type SendToXRPLMsg struct {
	Sender        sdk.AccAddress
	Recipient     string
	Coin          sdk.Coin
	DeliverAmount *sdkmath.Int
}

// SendToXRPL reserves a ticket and enqueues a CosmosToXRPLTransfer operation paying out an amount
// already locked/burned on the host side to an XRPL recipient, net of precision truncation and the
// token's bridging fee.
func (k *Keeper) SendToXRPL(ctx context.Context, msg SendToXRPLMsg) error {
	cfg, err := k.authorize(msg.Sender, ActionSendToXRPL)
	if err != nil {
		return err
	}
	if err := k.requireActive(cfg); err != nil {
		return err
	}
	if !xrpl.IsValidAddress(msg.Recipient) {
		return ErrInvalidXRPLAddress
	}
	if k.isProhibitedXRPLAddress(msg.Recipient) {
		return ErrProhibitedAddress
	}
	if !msg.Coin.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	issuer, currency, xrplAmount, err := k.resolveOutboundXRPLAmount(cfg, msg)
	if err != nil {
		return err
	}

	ticket, _, err := k.reserveTicket(ctx, false)
	if err != nil {
		return err
	}
	payload := OperationTypeCosmosToXRPLTransfer{
		Issuer:       issuer,
		Currency:     currency,
		Amount:       xrplAmount,
		Sender:       msg.Sender,
		Recipient:    msg.Recipient,
		OriginalCoin: msg.Coin,
	}
	if msg.DeliverAmount != nil {
		payload.MaxAmount = &xrplAmount
		payload.Amount = *msg.DeliverAmount
	}
	return k.createOperation(ctx, ticket, 0, OperationType{CosmosToXRPLTransfer: &payload})
}

// resolveOutboundXRPLAmount looks up the token behind msg.Coin.Denom, applies its bridging fee and
// sending-precision truncation, and rescales the result onto the XRPL decimal representation (or
// leaves it as-is for tokens originated on XRPL, which are already tracked at that scale). A
// host-originated token is represented on XRPL as an IOU issued by the bridge's own XRPL account.
func (k *Keeper) resolveOutboundXRPLAmount(cfg Config, msg SendToXRPLMsg) (issuer, currency string, amount sdkmath.Int, err error) {
	if xrplToken, found, err := k.xrplTokenByHostDenom(msg.Coin.Denom); err != nil {
		return "", "", sdkmath.Int{}, err
	} else if found {
		if xrplToken.State != TokenStateEnabled {
			return "", "", sdkmath.Int{}, ErrTokenNotEnabled
		}
		truncated, _, err := truncateXRPLOriginatedAmount(xrplToken.SendingPrecision, msg.Coin.Amount)
		if err != nil {
			return "", "", sdkmath.Int{}, err
		}
		net, err := k.chargeBridgingFee(msg.Coin.Denom, xrplToken.BridgingFee, truncated)
		if err != nil {
			return "", "", sdkmath.Int{}, err
		}
		if err := k.adjustXRPLTokenBridgedAmount(xrplToken.Issuer, xrplToken.Currency, net.Neg()); err != nil {
			return "", "", sdkmath.Int{}, err
		}
		if msg.DeliverAmount != nil {
			if msg.DeliverAmount.IsNil() || !msg.DeliverAmount.IsPositive() || msg.DeliverAmount.GT(net) {
				return "", "", sdkmath.Int{}, ErrInvalidDeliverAmount
			}
		}
		return xrplToken.Issuer, xrplToken.Currency, net, nil
	}

	if msg.DeliverAmount != nil {
		return "", "", sdkmath.Int{}, ErrDeliverAmountIsProhibited
	}

	hostToken, found, err := k.hostTokenByDenom(msg.Coin.Denom)
	if err != nil {
		return "", "", sdkmath.Int{}, err
	}
	if !found {
		return "", "", sdkmath.Int{}, ErrTokenNotRegistered
	}
	if hostToken.State != TokenStateEnabled {
		return "", "", sdkmath.Int{}, ErrTokenNotEnabled
	}

	truncated, _, err := truncateHostOriginatedAmount(hostToken.Decimals, hostToken.SendingPrecision, msg.Coin.Amount)
	if err != nil {
		return "", "", sdkmath.Int{}, err
	}
	net, err := k.chargeBridgingFee(msg.Coin.Denom, hostToken.BridgingFee, truncated)
	if err != nil {
		return "", "", sdkmath.Int{}, err
	}
	// Locking the token on the host side to back the XRPL-bound IOU grows the cumulative bridged
	// amount, enforced against the registry's holding cap exactly as XRPLToken's inbound leg does.
	if err := k.adjustHostTokenBridgedAmount(hostToken.Denom, net); err != nil {
		return "", "", sdkmath.Int{}, err
	}
	rescaled, err := convertHostDecimalsToXRPLDecimals(net, hostToken.Decimals)
	if err != nil {
		return "", "", sdkmath.Int{}, err
	}
	if err := validateXRPLAmountSignificantDigits(rescaled); err != nil {
		return "", "", sdkmath.Int{}, err
	}
	return cfg.BridgeXRPLAddress, hostToken.XRPLCurrency, rescaled, nil
}

// ClaimRelayerFees lets a relayer withdraw its accumulated bridging-fee share.
func (k *Keeper) ClaimRelayerFees(sender sdk.AccAddress, requested sdk.Coins) (sdk.Coins, error) {
	if _, err := k.authorize(sender, ActionClaimFees); err != nil {
		return nil, err
	}
	return k.claimRelayerFees(sender, requested)
}

// ClaimPendingRefund lets a user reclaim an amount left over from a rejected/invalid transfer.
func (k *Keeper) ClaimPendingRefund(sender sdk.AccAddress, id string) (sdk.Coin, error) {
	if _, err := k.authorize(sender, ActionClaimRefunds); err != nil {
		return sdk.Coin{}, err
	}
	return k.claimPendingRefund(sender, id)
}

// UpdateUsedTicketSequenceThreshold updates the threshold at which ticket reservation
// auto-triggers a replenishment.
func (k *Keeper) UpdateUsedTicketSequenceThreshold(sender sdk.AccAddress, threshold uint32) error {
	cfg, err := k.authorize(sender, ActionUpdateUsedTicketSequenceThreshold)
	if err != nil {
		return err
	}
	if threshold < 2 || threshold > MaxTicketsToAllocate {
		return ErrInvalidUsedTicketSequenceThreshold
	}
	cfg.UsedTicketSequenceThreshold = threshold
	return configItem.Save(k.store, cfg)
}

// GetConfig returns the current bridge configuration.
func (k *Keeper) GetConfig() (Config, error) {
	cfg, _, err := configItem.Load(k.store)
	return cfg, err
}

// DefaultQueryLimit is the page size list queries use when the caller doesn't specify one.
const DefaultQueryLimit = 50

func pageLimit(limit uint32) uint32 {
	if limit == 0 {
		return DefaultQueryLimit
	}
	return limit
}

// GetPendingOperations lists operations awaiting confirmation, starting strictly after
// startAfterKey (empty for the first page). lastKey is nil once the final page has been returned.
func (k *Keeper) GetPendingOperations(startAfterKey []byte, limit uint32) (ops []Operation, lastKey []byte, err error) {
	lastKey, err = pendingOperationsMap.Page(k.store, startAfterKey, pageLimit(limit), func(_ []byte, op Operation) error {
		ops = append(ops, op)
		return nil
	})
	return ops, lastKey, err
}

// GetAvailableTickets returns the current ticket pool.
func (k *Keeper) GetAvailableTickets() ([]uint32, error) {
	return loadAvailableTickets(k)
}

// GetProhibitedXRPLAddresses lists every currently prohibited XRPL address.
func (k *Keeper) GetProhibitedXRPLAddresses() ([]string, error) {
	var addrs []string
	err := prohibitedXRPLAddressesMap.Range(k.store, func(rawKey []byte, _ struct{}) (bool, error) {
		addrs = append(addrs, string(rawKey))
		return true, nil
	})
	return addrs, err
}

// GetFeesCollected returns a relayer's currently claimable fee balance.
func (k *Keeper) GetFeesCollected(relayer sdk.AccAddress) (sdk.Coins, error) {
	coins, _, err := feesCollectedMap.Load(k.store, relayer.String())
	return coins, err
}

// GetPendingRefunds lists refunds owed to addr, paginated within that address's own list
// starting strictly after startAfterKey (empty for the first page).
func (k *Keeper) GetPendingRefunds(addr sdk.AccAddress, startAfterKey []byte, limit uint32) (refunds []PendingRefund, lastKey []byte, err error) {
	return k.pendingRefundsByAddressPage(addr, startAfterKey, pageLimit(limit))
}

// GetXRPLTokens lists registered XRPL-originated tokens, paginated by the (issuer|currency) key.
func (k *Keeper) GetXRPLTokens(startAfterKey []byte, limit uint32) (tokens []XRPLToken, lastKey []byte, err error) {
	lastKey, err = xrplTokensMap.Page(k.store, startAfterKey, pageLimit(limit), func(_ []byte, t XRPLToken) error {
		tokens = append(tokens, t)
		return nil
	})
	return tokens, lastKey, err
}

// GetHostTokens lists registered host-originated tokens, paginated by denom.
func (k *Keeper) GetHostTokens(startAfterKey []byte, limit uint32) (tokens []HostToken, lastKey []byte, err error) {
	lastKey, err = hostTokensMap.Page(k.store, startAfterKey, pageLimit(limit), func(_ []byte, t HostToken) error {
		tokens = append(tokens, t)
		return nil
	})
	return tokens, lastKey, err
}

// GetTransactionEvidences lists in-flight evidence records keyed by their canonical hash, paginated.
func (k *Keeper) GetTransactionEvidences(startAfterKey []byte, limit uint32) (records []TransactionEvidence, lastKey []byte, err error) {
	lastKey, err = txEvidencesMap.Page(k.store, startAfterKey, pageLimit(limit), func(rawKey []byte, e evidences) error {
		records = append(records, TransactionEvidence{Hash: string(rawKey), RelayerAddresses: e.RelayerAddresses})
		return nil
	})
	return records, lastKey, err
}

// GetTransactionEvidence returns the in-flight evidence record for a single evidence hash, if any.
func (k *Keeper) GetTransactionEvidence(hash string) (TransactionEvidence, bool, error) {
	e, found, err := txEvidencesMap.Load(k.store, hash)
	if err != nil || !found {
		return TransactionEvidence{}, found, err
	}
	return TransactionEvidence{Hash: hash, RelayerAddresses: e.RelayerAddresses}, true, nil
}
