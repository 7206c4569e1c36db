package contract

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestValidateSendingPrecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		sendingPrecision int32
		decimals         uint32
		wantErr          bool
	}{
		{"within_bounds", 6, 6, false},
		{"negative_lower_bound", -15, 6, false},
		{"below_lower_bound", -16, 6, true},
		{"above_decimals_upper_bound", 7, 6, true},
		{"xrpl_token_at_max", 15, XRPLIssuedTokenDecimals, false},
		{"above_xrpl_cap", 16, XRPLIssuedTokenDecimals, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateSendingPrecision(tt.sendingPrecision, tt.decimals)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSendingPrecision)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRegisterHostToken_RejectsInvalidDenom(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerHostToken("1notadenom", 6, 6, sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInvalidDenom)
}

func TestRegisterHostToken_RejectsExcessiveDecimals(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerHostToken("utoken", MaxHostTokenDecimals+1, 6, sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrInvalidDecimals)
}

func TestRegisterHostToken_RejectsDuplicateDenom(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerHostToken("utoken", 6, 6, sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.NoError(t, err)

	_, err = k.registerHostToken("utoken", 6, 6, sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrHostTokenAlreadyRegistered)
}

func TestRegisterXRPLToken_RejectsProhibitedIssuer(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerXRPLToken(
		context.Background(), 1, cfg.BridgeXRPLAddress, "USD", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(), sdkmath.NewInt(1000),
	)
	require.ErrorIs(t, err, ErrProhibitedAddress)
}

func TestRegisterXRPLToken_RejectsInvalidCurrency(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerXRPLToken(
		context.Background(), 1, testXRPLAddresses[0], "not-a-currency!", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(), sdkmath.NewInt(1000),
	)
	require.ErrorIs(t, err, ErrInvalidXRPLCurrency)
}

func TestRegisterXRPLToken_StartsProcessingAndEnqueuesTrustSet(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	token, err := k.registerXRPLToken(
		context.Background(), 7, testXRPLAddresses[0], "USD", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(), sdkmath.NewInt(1000),
	)
	require.NoError(t, err)
	require.Equal(t, TokenStateProcessing, token.State)

	op, err := k.loadOperation(7)
	require.NoError(t, err)
	require.NotNil(t, op.OperationType.TrustSet)
	require.Equal(t, testXRPLAddresses[0], op.OperationType.TrustSet.Issuer)
}

func TestRecoverXRPLTokenRegistration_RequiresInactiveState(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerXRPLToken(
		context.Background(), 1, testXRPLAddresses[0], "USD", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(), sdkmath.NewInt(1000),
	)
	require.NoError(t, err)

	// Still Processing, not Inactive: recovery must be rejected.
	err = k.recoverXRPLTokenRegistration(context.Background(), 2, testXRPLAddresses[0], "USD", sdkmath.NewInt(1000))
	require.ErrorIs(t, err, ErrXRPLTokenNotInactive)

	require.NoError(t, k.setXRPLTokenStateInternal(testXRPLAddresses[0], "USD", TokenStateInactive))
	require.NoError(t, k.recoverXRPLTokenRegistration(context.Background(), 2, testXRPLAddresses[0], "USD", sdkmath.NewInt(1000)))

	token, found, err := k.xrplTokenByIssuerCurrency(testXRPLAddresses[0], "USD")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, TokenStateProcessing, token.State)
}

func TestSetTokenState_RejectsTransitionFromImmutableStates(t *testing.T) {
	t.Parallel()

	_, err := setTokenState(TokenStateProcessing, TokenStateEnabled)
	require.ErrorIs(t, err, ErrTokenStateIsImmutable)

	_, err = setTokenState(TokenStateInactive, TokenStateEnabled)
	require.ErrorIs(t, err, ErrTokenStateIsImmutable)

	_, err = setTokenState(TokenStateEnabled, TokenStateProcessing)
	require.ErrorIs(t, err, ErrInvalidTargetTokenState)

	got, err := setTokenState(TokenStateEnabled, TokenStateDisabled)
	require.NoError(t, err)
	require.Equal(t, TokenStateDisabled, got)
}

func TestSetXRPLTokenMaxHoldingAmount_RejectsCapBelowBridgedAmount(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerXRPLToken(
		context.Background(), 1, testXRPLAddresses[0], "USD", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(), sdkmath.NewInt(1000),
	)
	require.NoError(t, err)
	require.NoError(t, k.adjustXRPLTokenBridgedAmount(testXRPLAddresses[0], "USD", sdkmath.NewInt(500)))

	err = k.setXRPLTokenMaxHoldingAmount(testXRPLAddresses[0], "USD", sdkmath.NewInt(400))
	require.ErrorIs(t, err, ErrInvalidTargetMaxHoldingAmount)

	require.NoError(t, k.setXRPLTokenMaxHoldingAmount(testXRPLAddresses[0], "USD", sdkmath.NewInt(600)))
}

func TestAdjustXRPLTokenBridgedAmount_EnforcesMaxHoldingCapOnIncrease(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerXRPLToken(
		context.Background(), 1, testXRPLAddresses[0], "USD", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(), sdkmath.NewInt(1000),
	)
	require.NoError(t, err)

	err = k.adjustXRPLTokenBridgedAmount(testXRPLAddresses[0], "USD", sdkmath.NewInt(1001))
	require.ErrorIs(t, err, ErrMaximumBridgedAmountReached)

	require.NoError(t, k.adjustXRPLTokenBridgedAmount(testXRPLAddresses[0], "USD", sdkmath.NewInt(1000)))

	// Outbound release never goes negative even if it overshoots.
	require.NoError(t, k.adjustXRPLTokenBridgedAmount(testXRPLAddresses[0], "USD", sdkmath.NewInt(-5000)))
	token, _, err := k.xrplTokenByIssuerCurrency(testXRPLAddresses[0], "USD")
	require.NoError(t, err)
	require.True(t, token.BridgedAmount.IsZero())
}

func TestAdjustHostTokenBridgedAmount_EnforcesMaxHoldingCapOnIncrease(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	_, err := k.registerHostToken("utoken", 6, 6, sdkmath.NewInt(1000), sdkmath.ZeroInt())
	require.NoError(t, err)

	err = k.adjustHostTokenBridgedAmount("utoken", sdkmath.NewInt(1001))
	require.ErrorIs(t, err, ErrMaximumBridgedAmountReached)

	require.NoError(t, k.adjustHostTokenBridgedAmount("utoken", sdkmath.NewInt(1000)))

	// Release never goes negative even if it overshoots.
	require.NoError(t, k.adjustHostTokenBridgedAmount("utoken", sdkmath.NewInt(-5000)))
	token, _, err := k.hostTokenByDenom("utoken")
	require.NoError(t, err)
	require.True(t, token.BridgedAmount.IsZero())
}

func TestApplyXRPLToHostTransfer_HostTokenIOUReturnsThroughSecondaryIndex(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	token, err := k.registerHostToken("utoken", 6, 6, sdkmath.NewInt(1_000_000), sdkmath.ZeroInt())
	require.NoError(t, err)

	// Lock 100 utoken outbound first, so there is custody to release.
	require.NoError(t, k.adjustHostTokenBridgedAmount(token.Denom, sdkmath.NewInt(100)))

	e := XRPLToHostTransferEvidence{
		TxHash:    "HOSTRETURN",
		Issuer:    cfg.BridgeXRPLAddress,
		Currency:  token.XRPLCurrency,
		Amount:    sdkmath.NewIntWithDecimal(40, 15-6), // 40 utoken at XRPL's 15-decimal scale
		Recipient: testAddr(3),
	}
	require.NoError(t, k.applyXRPLToHostTransfer(cfg, e))

	got, _, err := k.hostTokenByDenom(token.Denom)
	require.NoError(t, err)
	require.True(t, sdkmath.NewInt(60).Equal(got.BridgedAmount))
}

func TestApplyXRPLToHostTransfer_HostTokenUnknownCurrencyRejected(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	e := XRPLToHostTransferEvidence{
		TxHash:    "HOSTRETURN2",
		Issuer:    cfg.BridgeXRPLAddress,
		Currency:  "DEADBEEFDEADBEEFDEADBEEFDEADBEEFDEADBEEF",
		Amount:    sdkmath.NewInt(1),
		Recipient: testAddr(3),
	}
	require.ErrorIs(t, k.applyXRPLToHostTransfer(cfg, e), ErrTokenNotRegistered)
}
