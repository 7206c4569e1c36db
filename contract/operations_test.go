package contract

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestSaveSignature_RejectsVersionMismatch(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	seedTickets(t, k, []uint32{1, 2})
	require.NoError(t, k.createOperation(context.Background(), 1, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{Issuer: testXRPLAddresses[0], Currency: "USD", TrustSetLimitAmount: sdkmath.NewInt(1000)},
	}))

	err := k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 0, "deadbeef")
	require.ErrorIs(t, err, ErrOperationVersionMismatch)

	require.NoError(t, k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 1, "deadbeef"))
}

func TestSaveSignature_RejectsDuplicateSignerSameVersion(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	require.NoError(t, k.createOperation(context.Background(), 1, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{Issuer: testXRPLAddresses[0], Currency: "USD", TrustSetLimitAmount: sdkmath.NewInt(1000)},
	}))

	require.NoError(t, k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 1, "aaaa"))
	err := k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 1, "bbbb")
	require.ErrorIs(t, err, ErrSignatureAlreadyProvided)
}

func TestSaveSignature_HaltedBridgeBlocksNonRotateKeysOperations(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	require.NoError(t, k.createOperation(context.Background(), 1, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{Issuer: testXRPLAddresses[0], Currency: "USD", TrustSetLimitAmount: sdkmath.NewInt(1000)},
	}))
	require.NoError(t, k.HaltBridge(cfg.Owner))

	err := k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 1, "aaaa")
	require.ErrorIs(t, err, ErrBridgeHalted)
}

func TestSaveSignature_HaltedBridgeStillAllowsRotateKeysSignatures(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 3)
	seedTickets(t, k, []uint32{1, 2})

	require.NoError(t, k.RotateKeys(context.Background(), cfg.Owner, 100, cfg.Relayers, 3))

	ops, _, err := k.GetPendingOperations(nil, DefaultQueryLimit)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	rotateOpID := ops[0].ID()

	require.NoError(t, k.SaveSignature(cfg.Relayers[0].HostAddress, rotateOpID, 1, "aaaa"))
}

func TestCancelPendingOperation_AllocateTicketsClearsPendingFlag(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	seedTickets(t, k, nil)
	require.NoError(t, k.recoverTickets(context.Background(), 5, 10))

	ops, _, err := k.GetPendingOperations(nil, DefaultQueryLimit)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	require.NoError(t, k.CancelPendingOperation(cfg.Owner, ops[0].ID()))

	pending, err := loadPendingTicketUpdate(k)
	require.NoError(t, err)
	require.False(t, pending)
}

func TestCancelPendingOperation_TrustSetReturnsTicketAndDropsTokenInactive(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	seedTickets(t, k, []uint32{9, 10})

	_, err := k.RegisterXRPLToken(
		context.Background(), cfg.Owner, testXRPLAddresses[0], "USD", 6,
		sdkmath.NewInt(1000), sdkmath.ZeroInt(),
	)
	require.NoError(t, err)

	tickets, err := loadAvailableTickets(k)
	require.NoError(t, err)
	require.Equal(t, []uint32{10}, tickets)

	require.NoError(t, k.CancelPendingOperation(cfg.Owner, 9))

	token, found, err := k.xrplTokenByIssuerCurrency(testXRPLAddresses[0], "USD")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, TokenStateInactive, token.State)

	tickets, err = loadAvailableTickets(k)
	require.NoError(t, err)
	require.Equal(t, []uint32{9, 10}, tickets)
}

func TestCancelPendingOperation_RotateKeysClearsPendingRotationButStaysHalted(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	seedTickets(t, k, []uint32{1, 2})

	require.NoError(t, k.RotateKeys(context.Background(), cfg.Owner, 100, cfg.Relayers, 1))

	ops, _, err := k.GetPendingOperations(nil, DefaultQueryLimit)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	require.NoError(t, k.CancelPendingOperation(cfg.Owner, ops[0].ID()))

	pending, err := k.pendingRotateKeys()
	require.NoError(t, err)
	require.False(t, pending)

	got, err := k.GetConfig()
	require.NoError(t, err)
	require.Equal(t, BridgeStateHalted, got.BridgeState)
}

func TestTransferAndAcceptOwnership(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	newOwner := testAddr(99)

	require.NoError(t, k.TransferOwnership(cfg.Owner, newOwner))

	// Only the proposed owner may accept.
	err := k.AcceptOwnership(testAddr(123))
	require.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, k.AcceptOwnership(newOwner))

	owner, pending, err := k.GetOwnership()
	require.NoError(t, err)
	require.True(t, owner.Equals(newOwner))
	require.Nil(t, pending)

	// The old owner has lost every owner-gated privilege.
	err = k.TransferOwnership(cfg.Owner, testAddr(7))
	require.ErrorIs(t, err, ErrUnauthorizedSender)
}

func TestUpdateXRPLBaseFee_BumpsPendingOperationVersionAndWipesSignatures(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 1)
	require.NoError(t, k.createOperation(context.Background(), 1, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{Issuer: testXRPLAddresses[0], Currency: "USD", TrustSetLimitAmount: sdkmath.NewInt(1000)},
	}))
	require.NoError(t, k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 1, "aaaa"))

	op, err := k.loadOperation(1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), op.Version)
	require.Len(t, op.Signatures, 1)

	require.NoError(t, k.UpdateXRPLBaseFee(cfg.Owner, 20))

	op, err = k.loadOperation(1)
	require.NoError(t, err)
	require.Equal(t, uint32(2), op.Version)
	require.Empty(t, op.Signatures)
	require.Equal(t, uint32(20), op.XRPLBaseFee)

	// The wiped version means a signature over the stale (pre-bump) version is now rejected.
	err = k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 1, "bbbb")
	require.ErrorIs(t, err, ErrOperationVersionMismatch)
	require.NoError(t, k.SaveSignature(cfg.Relayers[0].HostAddress, 1, 2, "bbbb"))
}
