package contract

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// chargeBridgingFee subtracts bridgingFee from amount and splits it evenly across the current
// relayer set, crediting each relayer's claimable balance. A split that doesn't divide evenly
// carries its leftover forward per denom so that fee dust accumulates instead of vanishing,
// rather than being credited to any single relayer.
func (k *Keeper) chargeBridgingFee(denom string, bridgingFee, amount sdkmath.Int) (net sdkmath.Int, err error) {
	if amount.LT(bridgingFee) {
		return sdkmath.Int{}, ErrCannotCoverBridgingFees
	}
	net = amount.Sub(bridgingFee)
	if bridgingFee.IsZero() {
		return net, nil
	}

	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return sdkmath.Int{}, err
	}
	n := int64(len(cfg.Relayers))
	if n == 0 {
		return net, nil
	}

	carried, found, err := feeRemaindersMap.Load(k.store, denom)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if !found {
		carried = sdkmath.ZeroInt()
	}

	pool := bridgingFee.Add(carried)
	nInt := sdkmath.NewInt(n)
	share := pool.Quo(nInt)
	leftover := pool.Mod(nInt)

	if share.IsPositive() {
		coin := sdk.NewCoin(denom, share)
		for _, r := range cfg.Relayers {
			if err := k.addRelayerFee(r.HostAddress, coin); err != nil {
				return sdkmath.Int{}, err
			}
		}
	}
	if err := feeRemaindersMap.Save(k.store, denom, leftover); err != nil {
		return sdkmath.Int{}, err
	}
	return net, nil
}

func (k *Keeper) addRelayerFee(relayer sdk.AccAddress, coin sdk.Coin) error {
	collected, _, err := feesCollectedMap.Load(k.store, relayer.String())
	if err != nil {
		return err
	}
	collected = collected.Add(coin)
	return feesCollectedMap.Save(k.store, relayer.String(), collected)
}

// claimRelayerFees pays out a relayer's claimable fees. An empty requested set claims everything
// currently collected; otherwise the request must not exceed what's collected.
func (k *Keeper) claimRelayerFees(relayer sdk.AccAddress, requested sdk.Coins) (sdk.Coins, error) {
	collected, _, err := feesCollectedMap.Load(k.store, relayer.String())
	if err != nil {
		return nil, err
	}

	claimed := requested
	if claimed.IsZero() {
		claimed = collected
	} else if !collected.IsAllGTE(claimed) {
		return nil, ErrNotEnoughFeesToClaim
	}

	remaining := collected.Sub(claimed...)
	if remaining.IsZero() {
		feesCollectedMap.Remove(k.store, relayer.String())
	} else if err := feesCollectedMap.Save(k.store, relayer.String(), remaining); err != nil {
		return nil, err
	}
	return claimed, nil
}

// createPendingRefund registers a claimable refund for a user whose transfer was rejected,
// invalidated, or cancelled, and indexes it under the user's address for listing.
func (k *Keeper) createPendingRefund(addr sdk.AccAddress, id, xrplTxHash string, coin sdk.Coin) error {
	key := pendingRefundKey{Address: addr.String(), ID: id}
	if err := pendingRefundsMap.Save(k.store, key, PendingRefund{
		Address:    addr,
		ID:         id,
		XRPLTxHash: xrplTxHash,
		Coin:       coin,
	}); err != nil {
		return err
	}

	ids, _, err := pendingRefundsByAddressMap.Load(k.store, addr.String())
	if err != nil {
		return err
	}
	ids = append(ids, id)
	return pendingRefundsByAddressMap.Save(k.store, addr.String(), ids)
}

// claimPendingRefund removes and returns a previously registered refund.
func (k *Keeper) claimPendingRefund(addr sdk.AccAddress, id string) (sdk.Coin, error) {
	key := pendingRefundKey{Address: addr.String(), ID: id}
	refund, found, err := pendingRefundsMap.Load(k.store, key)
	if err != nil {
		return sdk.Coin{}, err
	}
	if !found {
		return sdk.Coin{}, ErrPendingRefundNotFound
	}
	pendingRefundsMap.Remove(k.store, key)

	ids, _, err := pendingRefundsByAddressMap.Load(k.store, addr.String())
	if err != nil {
		return sdk.Coin{}, err
	}
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) == 0 {
		pendingRefundsByAddressMap.Remove(k.store, addr.String())
	} else if err := pendingRefundsByAddressMap.Save(k.store, addr.String(), filtered); err != nil {
		return sdk.Coin{}, err
	}

	return refund.Coin, nil
}

// pendingRefundsByAddress returns every pending refund record outstanding for addr.
func (k *Keeper) pendingRefundsByAddress(addr sdk.AccAddress) ([]PendingRefund, error) {
	ids, _, err := pendingRefundsByAddressMap.Load(k.store, addr.String())
	if err != nil {
		return nil, err
	}
	refunds := make([]PendingRefund, 0, len(ids))
	for _, id := range ids {
		refund, found, err := pendingRefundsMap.Load(k.store, pendingRefundKey{Address: addr.String(), ID: id})
		if err != nil {
			return nil, err
		}
		if found {
			refunds = append(refunds, refund)
		}
	}
	return refunds, nil
}

// pendingRefundsByAddressPage lists up to limit refunds outstanding for addr, starting strictly
// after the refund ID in startAfterKey (empty for the first page). lastKey is nil once the final
// page of addr's own list has been returned, following the same cursor convention as the
// store-backed Map.Page queries even though this index is walked in plain Go rather than via the
// generic store since it's scoped to a single address's own id slice, not a whole map.
func (k *Keeper) pendingRefundsByAddressPage(addr sdk.AccAddress, startAfterKey []byte, limit uint32) (refunds []PendingRefund, lastKey []byte, err error) {
	ids, _, err := pendingRefundsByAddressMap.Load(k.store, addr.String())
	if err != nil {
		return nil, nil, err
	}

	start := 0
	if len(startAfterKey) > 0 {
		after := string(startAfterKey)
		for i, id := range ids {
			if id == after {
				start = i + 1
				break
			}
		}
	}

	end := start + int(limit)
	if end > len(ids) {
		end = len(ids)
	}
	for _, id := range ids[start:end] {
		refund, found, err := pendingRefundsMap.Load(k.store, pendingRefundKey{Address: addr.String(), ID: id})
		if err != nil {
			return nil, nil, err
		}
		if found {
			refunds = append(refunds, refund)
		}
	}
	if end < len(ids) {
		lastKey = []byte(ids[end-1])
	}
	return refunds, lastKey, nil
}
