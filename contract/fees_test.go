package contract

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestChargeBridgingFee_RejectsAmountBelowFee(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.chargeBridgingFee("utoken", sdkmath.NewInt(10), sdkmath.NewInt(5))
	require.ErrorIs(t, err, ErrCannotCoverBridgingFees)
}

func TestChargeBridgingFee_SplitsEvenlyAndCarriesRemainder(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 3)
	net, err := k.chargeBridgingFee("utoken", sdkmath.NewInt(10), sdkmath.NewInt(100))
	require.NoError(t, err)
	require.True(t, sdkmath.NewInt(90).Equal(net))

	// 10 split across 3 relayers: share=3, remainder=1 carried forward.
	for _, r := range cfg.Relayers {
		collected, _, err := feesCollectedMap.Load(k.store, r.HostAddress.String())
		require.NoError(t, err)
		require.True(t, collected.AmountOf("utoken").Equal(sdkmath.NewInt(3)))
	}
	remainder, _, err := feeRemaindersMap.Load(k.store, "utoken")
	require.NoError(t, err)
	require.True(t, sdkmath.NewInt(1).Equal(remainder))

	// A second charge folds the carried remainder back into the pool before splitting again.
	_, err = k.chargeBridgingFee("utoken", sdkmath.NewInt(10), sdkmath.NewInt(100))
	require.NoError(t, err)
	// pool = 10 (fee) + 1 (carried) = 11; share=3, new remainder=2.
	for _, r := range cfg.Relayers {
		collected, _, err := feesCollectedMap.Load(k.store, r.HostAddress.String())
		require.NoError(t, err)
		require.True(t, collected.AmountOf("utoken").Equal(sdkmath.NewInt(6)))
	}
	remainder, _, err = feeRemaindersMap.Load(k.store, "utoken")
	require.NoError(t, err)
	require.True(t, sdkmath.NewInt(2).Equal(remainder))
}

func TestClaimRelayerFees_EmptyRequestClaimsEverything(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	require.NoError(t, k.addRelayerFee(cfg.Relayers[0].HostAddress, sdk.NewCoin("utoken", sdkmath.NewInt(50))))

	claimed, err := k.claimRelayerFees(cfg.Relayers[0].HostAddress, sdk.NewCoins())
	require.NoError(t, err)
	require.True(t, claimed.AmountOf("utoken").Equal(sdkmath.NewInt(50)))

	_, found, err := feesCollectedMap.Load(k.store, cfg.Relayers[0].HostAddress.String())
	require.NoError(t, err)
	require.False(t, found)
}

func TestClaimRelayerFees_RejectsOverRequest(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	require.NoError(t, k.addRelayerFee(cfg.Relayers[0].HostAddress, sdk.NewCoin("utoken", sdkmath.NewInt(50))))

	_, err := k.claimRelayerFees(cfg.Relayers[0].HostAddress, sdk.NewCoins(sdk.NewCoin("utoken", sdkmath.NewInt(51))))
	require.ErrorIs(t, err, ErrNotEnoughFeesToClaim)
}

func TestPendingRefundLifecycle(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	recipient := testAddr(42)
	coin := sdk.NewCoin("utoken", sdkmath.NewInt(250))

	require.NoError(t, k.createPendingRefund(recipient, "refund-1", "DEADBEEF", coin))

	refunds, err := k.pendingRefundsByAddress(recipient)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	require.Equal(t, "refund-1", refunds[0].ID)

	claimedCoin, err := k.claimPendingRefund(recipient, "refund-1")
	require.NoError(t, err)
	require.True(t, claimedCoin.Amount.Equal(sdkmath.NewInt(250)))

	_, err = k.claimPendingRefund(recipient, "refund-1")
	require.ErrorIs(t, err, ErrPendingRefundNotFound)

	refunds, err = k.pendingRefundsByAddress(recipient)
	require.NoError(t, err)
	require.Empty(t, refunds)
}

func TestGetPendingRefunds_PaginatesWithinAddress(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	recipient := testAddr(42)
	for i, id := range []string{"refund-1", "refund-2", "refund-3"} {
		coin := sdk.NewCoin("utoken", sdkmath.NewInt(int64(100*(i+1))))
		require.NoError(t, k.createPendingRefund(recipient, id, "DEADBEEF", coin))
	}

	page1, lastKey, err := k.GetPendingRefunds(recipient, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, "refund-1", page1[0].ID)
	require.Equal(t, "refund-2", page1[1].ID)
	require.NotNil(t, lastKey)

	page2, lastKey, err := k.GetPendingRefunds(recipient, lastKey, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Equal(t, "refund-3", page2[0].ID)
	require.Nil(t, lastKey)
}
