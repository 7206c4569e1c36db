package contract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/xrpl"
)

// MaxHostTokenDecimals is the largest decimals value a host-originated token may register with.
const MaxHostTokenDecimals = 100

// XRPLDenomPrefix prefixes every host-chain denom minted to represent an XRPL-originated token.
const XRPLDenomPrefix = "xrpl"

// deriveHostDenomFromXRPLToken deterministically derives the host denom reserved for an
// XRPL-originated token from its (issuer, currency) pair, so the mapping never needs to be
// supplied by the caller and can't collide by construction across distinct tokens.
func deriveHostDenomFromXRPLToken(issuer, currency string) string {
	sum := sha256.Sum256([]byte(issuer + "|" + currency))
	return XRPLDenomPrefix + hex.EncodeToString(sum[:])[:40]
}

// deriveXRPLCurrencyFromDenom deterministically derives the 160-bit long-form XRPL currency code
// reserved for a host-originated token from its denom.
func deriveXRPLCurrencyFromDenom(denom string) string {
	sum := sha256.Sum256([]byte(denom))
	return strings.ToUpper(hex.EncodeToString(sum[:20]))
}

// hostDenomRegex mirrors the host chain's own token-factory denom shape: alphanumerics, '/', ':',
// '.', '_' and '-', never starting with a digit.
var hostDenomRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/:._-]{2,127}$`)

// IsValidHostDenom reports whether denom matches the host chain's token-factory denom pattern.
func IsValidHostDenom(denom string) bool {
	return hostDenomRegex.MatchString(denom)
}

// validateSendingPrecision enforces the registry-wide [-15, 15] sending-precision range, upper
// bounded by the token's own decimals (host tokens with fewer than 15 decimals can't claim more
// precision than they have; XRPL tokens always pass XRPLIssuedTokenDecimals here).
func validateSendingPrecision(sendingPrecision int32, decimals uint32) error {
	upper := int32(15)
	if decimals < 15 {
		upper = int32(decimals)
	}
	if sendingPrecision > upper || sendingPrecision < -15 {
		return ErrInvalidSendingPrecision
	}
	return nil
}

// registerHostToken adds a new host-originated token to the registry, under a unique denom with a
// unique XRPL currency code reserved for it.
func (k *Keeper) registerHostToken(
	denom string,
	decimals uint32,
	sendingPrecision int32,
	maxHoldingAmount sdkmath.Int,
	bridgingFee sdkmath.Int,
) (HostToken, error) {
	if !IsValidHostDenom(denom) {
		return HostToken{}, ErrInvalidDenom
	}
	if decimals > MaxHostTokenDecimals {
		return HostToken{}, ErrInvalidDecimals
	}
	if err := validateSendingPrecision(sendingPrecision, decimals); err != nil {
		return HostToken{}, err
	}
	if hostTokensMap.Has(k.store, denom) {
		return HostToken{}, ErrHostTokenAlreadyRegistered
	}

	currency, err := k.allocateHostTokenXRPLCurrency(denom)
	if err != nil {
		return HostToken{}, err
	}

	token := HostToken{
		Denom:            denom,
		Decimals:         decimals,
		XRPLCurrency:     currency,
		SendingPrecision: sendingPrecision,
		MaxHoldingAmount: maxHoldingAmount,
		BridgingFee:      bridgingFee,
		State:            TokenStateEnabled,
		BridgedAmount:    sdkmath.ZeroInt(),
	}
	if err := hostTokensMap.Save(k.store, denom, token); err != nil {
		return HostToken{}, err
	}
	if err := hostTokensByXRPLCurrencyMap.Save(k.store, currency, denom); err != nil {
		return HostToken{}, err
	}
	return token, nil
}

// allocateHostTokenXRPLCurrency deterministically derives a long-form (hex) XRPL currency code
// from the denom hash, retrying is unnecessary in practice since the full 160-bit space is used,
// but the uniqueness is still checked explicitly against the secondary index.
func (k *Keeper) allocateHostTokenXRPLCurrency(denom string) (string, error) {
	currency := deriveXRPLCurrencyFromDenom(denom)
	if hostTokensByXRPLCurrencyMap.Has(k.store, currency) {
		return "", ErrXRPLTokenAlreadyRegistered
	}
	return currency, nil
}

// registerXRPLToken adds a new XRPL-originated token to the registry, under a unique
// (issuer, currency) pair with a unique reserved host denom, and enqueues the TrustSet operation
// the bridge account must submit before the token can actually be bridged.
func (k *Keeper) registerXRPLToken(
	ctx context.Context,
	ticketSequence uint32,
	issuer, currency string,
	sendingPrecision int32,
	maxHoldingAmount sdkmath.Int,
	bridgingFee sdkmath.Int,
	trustSetLimitAmount sdkmath.Int,
) (XRPLToken, error) {
	if !xrpl.IsValidAddress(issuer) {
		return XRPLToken{}, ErrInvalidXRPLAddress
	}
	if k.isProhibitedXRPLAddress(issuer) {
		return XRPLToken{}, ErrProhibitedAddress
	}
	if !xrpl.IsValidCurrencyCode(currency) {
		return XRPLToken{}, ErrInvalidXRPLCurrency
	}
	if err := validateSendingPrecision(sendingPrecision, XRPLIssuedTokenDecimals); err != nil {
		return XRPLToken{}, err
	}

	key := XRPLTokenKey{Issuer: issuer, Currency: currency}
	if xrplTokensMap.Has(k.store, key) {
		return XRPLToken{}, ErrXRPLTokenAlreadyRegistered
	}

	hostDenom := deriveHostDenomFromXRPLToken(issuer, currency)
	if xrplTokensByHostDenomMap.Has(k.store, hostDenom) {
		return XRPLToken{}, ErrHostTokenAlreadyRegistered
	}

	token := XRPLToken{
		Issuer:           issuer,
		Currency:         currency,
		HostDenom:        hostDenom,
		SendingPrecision: sendingPrecision,
		MaxHoldingAmount: maxHoldingAmount,
		BridgingFee:      bridgingFee,
		State:            TokenStateProcessing,
		BridgedAmount:    sdkmath.ZeroInt(),
	}
	if err := xrplTokensMap.Save(k.store, key, token); err != nil {
		return XRPLToken{}, err
	}
	if err := xrplTokensByHostDenomMap.Save(k.store, hostDenom, key); err != nil {
		return XRPLToken{}, err
	}

	if err := k.createOperation(ctx, ticketSequence, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{
			Issuer:              issuer,
			Currency:            currency,
			TrustSetLimitAmount: trustSetLimitAmount,
		},
	}); err != nil {
		return XRPLToken{}, err
	}

	return token, nil
}

// activateXRPLToken flips a Processing XRPL token to Enabled once its TrustSet operation has been
// confirmed accepted on XRPL.
func (k *Keeper) activateXRPLToken(issuer, currency string) error {
	key := XRPLTokenKey{Issuer: issuer, Currency: currency}
	token, found, err := xrplTokensMap.Load(k.store, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	token.State = TokenStateEnabled
	return xrplTokensMap.Save(k.store, key, token)
}

// setXRPLTokenStateInternal forces an XRPL token into target, bypassing the Enabled/Disabled-only
// restriction setTokenState enforces on owner-initiated transitions. Used by the bridge's own
// lifecycle logic: a rejected TrustSet drops a Processing token to Inactive, and recovering a
// registration lifts an Inactive token back to Processing.
func (k *Keeper) setXRPLTokenStateInternal(issuer, currency string, target TokenState) error {
	key := XRPLTokenKey{Issuer: issuer, Currency: currency}
	token, found, err := xrplTokensMap.Load(k.store, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	token.State = target
	return xrplTokensMap.Save(k.store, key, token)
}

// recoverXRPLTokenRegistration re-enqueues the TrustSet for an Inactive XRPL token (one whose
// original TrustSet was rejected or invalidated on XRPL), consuming a freshly reserved ticket.
func (k *Keeper) recoverXRPLTokenRegistration(ctx context.Context, ticketSequence uint32, issuer, currency string, trustSetLimitAmount sdkmath.Int) error {
	token, found, err := k.xrplTokenByIssuerCurrency(issuer, currency)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	if token.State != TokenStateInactive {
		return ErrXRPLTokenNotInactive
	}
	if err := k.setXRPLTokenStateInternal(issuer, currency, TokenStateProcessing); err != nil {
		return err
	}
	return k.createOperation(ctx, ticketSequence, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{
			Issuer:              issuer,
			Currency:            currency,
			TrustSetLimitAmount: trustSetLimitAmount,
		},
	})
}

// setTokenState updates a registered token's lifecycle state, allowing only the Enabled/Disabled
// transitions callers are permitted to request directly; Processing and Inactive are internal
// states reached only by the bridge's own lifecycle logic.
func setTokenState(current TokenState, target TokenState) (TokenState, error) {
	if target != TokenStateEnabled && target != TokenStateDisabled {
		return "", ErrInvalidTargetTokenState
	}
	if current == TokenStateProcessing || current == TokenStateInactive {
		return "", ErrTokenStateIsImmutable
	}
	return target, nil
}

func (k *Keeper) setHostTokenState(denom string, target TokenState) error {
	token, found, err := hostTokensMap.Load(k.store, denom)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	newState, err := setTokenState(token.State, target)
	if err != nil {
		return err
	}
	token.State = newState
	return hostTokensMap.Save(k.store, denom, token)
}

func (k *Keeper) setXRPLTokenState(issuer, currency string, target TokenState) error {
	key := XRPLTokenKey{Issuer: issuer, Currency: currency}
	token, found, err := xrplTokensMap.Load(k.store, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	newState, err := setTokenState(token.State, target)
	if err != nil {
		return err
	}
	token.State = newState
	return xrplTokensMap.Save(k.store, key, token)
}

// setXRPLTokenMaxHoldingAmount updates the registry cap, rejecting a cap below what's already
// held in custody for this token.
func (k *Keeper) setXRPLTokenMaxHoldingAmount(issuer, currency string, max sdkmath.Int) error {
	key := XRPLTokenKey{Issuer: issuer, Currency: currency}
	token, found, err := xrplTokensMap.Load(k.store, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	if max.LT(token.BridgedAmount) {
		return ErrInvalidTargetMaxHoldingAmount
	}
	token.MaxHoldingAmount = max
	return xrplTokensMap.Save(k.store, key, token)
}

// adjustXRPLTokenBridgedAmount applies delta (positive on inbound custody, negative on outbound
// release) to a token's cumulative bridged amount, enforcing the registry's holding cap on
// increases.
func (k *Keeper) adjustXRPLTokenBridgedAmount(issuer, currency string, delta sdkmath.Int) error {
	key := XRPLTokenKey{Issuer: issuer, Currency: currency}
	token, found, err := xrplTokensMap.Load(k.store, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	newAmount := token.BridgedAmount.Add(delta)
	if newAmount.IsNegative() {
		newAmount = sdkmath.ZeroInt()
	}
	if delta.IsPositive() && newAmount.GT(token.MaxHoldingAmount) {
		return ErrMaximumBridgedAmountReached
	}
	token.BridgedAmount = newAmount
	return xrplTokensMap.Save(k.store, key, token)
}

// adjustHostTokenBridgedAmount applies delta (positive when the host token is locked outbound to
// back an XRPL-side IOU, negative when that IOU returns and the lock is released) to a host
// token's cumulative bridged amount, enforcing the registry's holding cap on increases exactly as
// adjustXRPLTokenBridgedAmount does for XRPL-originated tokens.
func (k *Keeper) adjustHostTokenBridgedAmount(denom string, delta sdkmath.Int) error {
	token, found, err := hostTokensMap.Load(k.store, denom)
	if err != nil {
		return err
	}
	if !found {
		return ErrTokenNotRegistered
	}
	newAmount := token.BridgedAmount.Add(delta)
	if newAmount.IsNegative() {
		newAmount = sdkmath.ZeroInt()
	}
	if delta.IsPositive() && newAmount.GT(token.MaxHoldingAmount) {
		return ErrMaximumBridgedAmountReached
	}
	token.BridgedAmount = newAmount
	return hostTokensMap.Save(k.store, denom, token)
}

func (k *Keeper) xrplTokenByIssuerCurrency(issuer, currency string) (XRPLToken, bool, error) {
	return xrplTokensMap.Load(k.store, XRPLTokenKey{Issuer: issuer, Currency: currency})
}

func (k *Keeper) xrplTokenByHostDenom(denom string) (XRPLToken, bool, error) {
	key, found, err := xrplTokensByHostDenomMap.Load(k.store, denom)
	if err != nil || !found {
		return XRPLToken{}, found, err
	}
	return xrplTokensMap.Load(k.store, key)
}

func (k *Keeper) hostTokenByDenom(denom string) (HostToken, bool, error) {
	return hostTokensMap.Load(k.store, denom)
}

func (k *Keeper) hostTokenByXRPLCurrency(currency string) (HostToken, bool, error) {
	denom, found, err := hostTokensByXRPLCurrencyMap.Load(k.store, currency)
	if err != nil || !found {
		return HostToken{}, found, err
	}
	return hostTokensMap.Load(k.store, denom)
}
