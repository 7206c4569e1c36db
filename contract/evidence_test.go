package contract

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func sampleTransferEvidence(txHash string) Evidence {
	return Evidence{
		XRPLToHostTransfer: &XRPLToHostTransferEvidence{
			TxHash:    txHash,
			Issuer:    testXRPLAddresses[0],
			Currency:  "USD",
			Amount:    sdkmath.NewInt(100),
			Recipient: testAddr(2),
		},
	}
}

func TestSubmitEvidence_SameRelayerCannotVoteTwice(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 3)
	e := sampleTransferEvidence("AAAA")

	_, err := k.submitEvidence(context.Background(), cfg.Relayers[0].HostAddress, e)
	require.NoError(t, err)

	_, err = k.submitEvidence(context.Background(), cfg.Relayers[0].HostAddress, e)
	require.ErrorIs(t, err, ErrEvidenceAlreadyProvided)
}

func TestSubmitEvidence_ConfirmsOnlyAtThreshold(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 3)
	e := sampleTransferEvidence("BBBB")

	confirmed, err := k.submitEvidence(context.Background(), cfg.Relayers[0].HostAddress, e)
	require.NoError(t, err)
	require.False(t, confirmed)

	confirmed, err = k.submitEvidence(context.Background(), cfg.Relayers[1].HostAddress, e)
	require.NoError(t, err)
	require.False(t, confirmed)

	confirmed, err = k.submitEvidence(context.Background(), cfg.Relayers[2].HostAddress, e)
	require.NoError(t, err)
	require.True(t, confirmed)
}

func TestSubmitEvidence_RejectsAlreadyExecutedOperation(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 3)
	require.NoError(t, processedTxsMap.Save(k.store, "CCCC", struct{}{}))

	e := sampleTransferEvidence("CCCC")
	_, err := k.submitEvidence(context.Background(), cfg.Relayers[0].HostAddress, e)
	require.ErrorIs(t, err, ErrOperationAlreadyExecuted)
}

func TestEvidence_ValidateBasic_RejectsBothOrNeitherVariant(t *testing.T) {
	t.Parallel()

	require.Error(t, Evidence{}.ValidateBasic())

	both := Evidence{
		XRPLToHostTransfer:    &XRPLToHostTransferEvidence{Amount: sdkmath.NewInt(1)},
		XRPLTransactionResult: &XRPLTransactionResultEvidence{TransactionResult: TransactionResultInvalid},
	}
	require.ErrorIs(t, both.ValidateBasic(), ErrInvalidTransactionResultEvidence)
}

func TestXRPLTransactionResultEvidence_ValidateBasic(t *testing.T) {
	t.Parallel()

	seq := uint32(1)

	// Successful result must carry a tx hash.
	noHash := XRPLTransactionResultEvidence{TicketSequence: &seq, TransactionResult: TransactionResultAccepted}
	require.ErrorIs(t, noHash.validateBasic(), ErrInvalidSuccessfulTransactionResultEvidence)

	// Invalid result must NOT carry a tx hash.
	invalidWithHash := XRPLTransactionResultEvidence{
		TicketSequence:    &seq,
		TransactionResult: TransactionResultInvalid,
		TxHash:            "DEAD",
	}
	require.ErrorIs(t, invalidWithHash.validateBasic(), ErrInvalidFailedTransactionResultEvidence)

	// Exactly one of account/ticket sequence must be set.
	neither := XRPLTransactionResultEvidence{TransactionResult: TransactionResultInvalid}
	require.ErrorIs(t, neither.validateBasic(), ErrInvalidTransactionResultEvidence)

	// Accepted ticket allocation must carry tickets.
	emptyTickets := XRPLTransactionResultEvidence{
		TicketSequence:    &seq,
		TransactionResult: TransactionResultAccepted,
		TxHash:            "DEAD",
		OperationResult:   &OperationResult{TicketsAllocation: &TicketsAllocationResult{}},
	}
	require.ErrorIs(t, emptyTickets.validateBasic(), ErrInvalidTicketAllocationEvidence)

	valid := XRPLTransactionResultEvidence{
		TicketSequence:    &seq,
		TransactionResult: TransactionResultAccepted,
		TxHash:            "DEAD",
		OperationResult:   &OperationResult{TicketsAllocation: &TicketsAllocationResult{Tickets: []uint32{5, 6}}},
	}
	require.NoError(t, valid.validateBasic())
}

func TestClearAllEvidences(t *testing.T) {
	t.Parallel()

	k, cfg := newInstantiatedTestKeeper(t, 3)
	e1 := sampleTransferEvidence("1111")
	e2 := sampleTransferEvidence("2222")

	_, err := k.submitEvidence(context.Background(), cfg.Relayers[0].HostAddress, e1)
	require.NoError(t, err)
	_, err = k.submitEvidence(context.Background(), cfg.Relayers[0].HostAddress, e2)
	require.NoError(t, err)

	require.NoError(t, clearAllEvidences(k.store))

	_, found, err := txEvidencesMap.Load(k.store, mustEvidenceHash(t, e1))
	require.NoError(t, err)
	require.False(t, found)
}

func TestApplyXRPLTransactionResult_RejectsTicketsAllocationAgainstOtherOperationType(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	seq := uint32(1)
	require.NoError(t, k.createOperation(context.Background(), seq, 0, OperationType{
		TrustSet: &OperationTypeTrustSet{Issuer: testXRPLAddresses[0], Currency: "USD", TrustSetLimitAmount: sdkmath.NewInt(1000)},
	}))

	err := k.applyXRPLTransactionResult(context.Background(), XRPLTransactionResultEvidence{
		TxHash:            "DEAD",
		TicketSequence:    &seq,
		TransactionResult: TransactionResultAccepted,
		OperationResult:   &OperationResult{TicketsAllocation: &TicketsAllocationResult{Tickets: []uint32{5, 6}}},
	})
	require.ErrorIs(t, err, ErrInvalidOperationResult)
}

func TestApplyXRPLTransactionResult_AllocateTicketsAcceptsMatchingResult(t *testing.T) {
	t.Parallel()

	k, _ := newInstantiatedTestKeeper(t, 1)
	seq := uint32(1)
	require.NoError(t, k.createOperation(context.Background(), seq, 0, OperationType{
		AllocateTickets: &OperationTypeAllocateTickets{Number: 2},
	}))

	err := k.applyXRPLTransactionResult(context.Background(), XRPLTransactionResultEvidence{
		TxHash:            "DEAD",
		TicketSequence:    &seq,
		TransactionResult: TransactionResultAccepted,
		OperationResult:   &OperationResult{TicketsAllocation: &TicketsAllocationResult{Tickets: []uint32{5, 6}}},
	})
	require.NoError(t, err)

	allocated, _, err := availableTicketsItem.Load(k.store)
	require.NoError(t, err)
	require.Equal(t, []uint32{5, 6}, allocated)
}

func mustEvidenceHash(t *testing.T, e Evidence) string {
	t.Helper()
	hash, err := evidenceHash(e)
	require.NoError(t, err)
	return hash
}
