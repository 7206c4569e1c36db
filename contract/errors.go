package contract

import (
	sdkerrors "cosmossdk.io/errors"
)

// ModuleName is the error codespace for every error this package registers.
const ModuleName = "bridgexrpl"

// Error codes and sentinel errors for every failure mode the bridge state machine can produce.
// Handlers return these directly (wrapped with context via errors.Wrapf from github.com/pkg/errors
// where extra detail helps); callers use errors.Is against these sentinels to branch on outcome,
// exactly like a native cosmos-sdk module's errors.go.
var (
	// Authorization.
	ErrUnauthorizedSender = sdkerrors.Register(ModuleName, 2, "sender is not authorized for this operation")
	ErrNotOwner           = sdkerrors.Register(ModuleName, 3, "caller is not the contract's current owner")
	ErrProhibitedAddress  = sdkerrors.Register(ModuleName, 4, "address is prohibited")

	// Validation.
	ErrInvalidXRPLAddress               = sdkerrors.Register(ModuleName, 10, "XRPL address is not valid")
	ErrInvalidXRPLCurrency               = sdkerrors.Register(ModuleName, 11, "currency must be a valid XRPL currency")
	ErrInvalidDenom                      = sdkerrors.Register(ModuleName, 12, "denom does not match the required host denom pattern")
	ErrInvalidDecimals                   = sdkerrors.Register(ModuleName, 13, "registered host token can't have more than the maximum allowed decimals")
	ErrInvalidSendingPrecision           = sdkerrors.Register(ModuleName, 14, "sending precision must be within [-15, 15] and can't be more than the token decimals")
	ErrInvalidAmount                     = sdkerrors.Register(ModuleName, 15, "amount must be more than 0")
	ErrInvalidXRPLAmount                 = sdkerrors.Register(ModuleName, 16, "amounts sent to XRPL can't have more than 17 significant digits")
	ErrInvalidSignatureLength            = sdkerrors.Register(ModuleName, 17, "signature can't be longer than 200 characters")
	ErrInvalidDeliverAmount               = sdkerrors.Register(ModuleName, 18, "deliver_amount can't be greater than funds attached minus fees")
	ErrDeliverAmountIsProhibited          = sdkerrors.Register(ModuleName, 19, "deliver_amount is only used for XRPL originated tokens being bridged back")
	ErrInvalidThreshold                   = sdkerrors.Register(ModuleName, 20, "evidence threshold can't be 0 or higher than the amount of relayers")
	ErrInvalidUsedTicketSequenceThreshold = sdkerrors.Register(ModuleName, 21, "used ticket sequence threshold must be within the allowed bounds")
	ErrTooManyRelayers                    = sdkerrors.Register(ModuleName, 22, "too many relayers provided")
	ErrDuplicatedRelayer                  = sdkerrors.Register(ModuleName, 23, "all relayers must have different XRPL addresses, public keys and host addresses")
	ErrInvalidTargetTokenState            = sdkerrors.Register(ModuleName, 24, "a token state can only be updated to enabled or disabled")
	ErrInvalidTargetMaxHoldingAmount      = sdkerrors.Register(ModuleName, 25, "max holding amount can't be less than the amount currently held")
	ErrInvalidTicketSequenceToAllocate    = sdkerrors.Register(ModuleName, 26, "number of tickets to recover must be greater than the used ticket threshold and within the max allowed")

	// State.
	ErrTokenNotRegistered             = sdkerrors.Register(ModuleName, 40, "token must be registered before it can be bridged")
	ErrTokenNotEnabled                = sdkerrors.Register(ModuleName, 41, "token must be enabled to be bridged")
	ErrHostTokenAlreadyRegistered     = sdkerrors.Register(ModuleName, 42, "host token is already registered")
	ErrXRPLTokenAlreadyRegistered     = sdkerrors.Register(ModuleName, 43, "XRPL token is already registered")
	ErrXRPLTokenNotInactive           = sdkerrors.Register(ModuleName, 44, "token must be inactive to be recovered")
	ErrTokenStateIsImmutable          = sdkerrors.Register(ModuleName, 45, "current token state is immutable")
	ErrNoAvailableTickets             = sdkerrors.Register(ModuleName, 46, "there are no available tickets")
	ErrLastTicketReserved             = sdkerrors.Register(ModuleName, 47, "last available ticket is reserved for the ticket allocation operation")
	ErrStillHaveAvailableTickets      = sdkerrors.Register(ModuleName, 48, "can't recover tickets while tickets are still available")
	ErrPendingTicketUpdate            = sdkerrors.Register(ModuleName, 49, "a ticket update operation is already pending")
	ErrPendingOperationNotFound       = sdkerrors.Register(ModuleName, 50, "no pending operation with this ID")
	ErrPendingOperationAlreadyExists  = sdkerrors.Register(ModuleName, 51, "a pending operation with this ID already exists")
	ErrOperationAlreadyExecuted       = sdkerrors.Register(ModuleName, 52, "operation has already been executed")
	ErrOperationVersionMismatch       = sdkerrors.Register(ModuleName, 53, "can't add a signature for an operation with a different version")
	ErrSignatureAlreadyProvided       = sdkerrors.Register(ModuleName, 54, "relayer already provided a signature for this operation")
	ErrEvidenceAlreadyProvided        = sdkerrors.Register(ModuleName, 55, "relayer already provided this evidence")
	ErrBridgeHalted                   = sdkerrors.Register(ModuleName, 56, "bridge is currently halted")
	ErrRotateKeysOngoing              = sdkerrors.Register(ModuleName, 57, "can't perform this operation while a key rotation is ongoing")
	ErrPendingRefundNotFound          = sdkerrors.Register(ModuleName, 58, "no pending refund for this user and ID")
	ErrNotEnoughFeesToClaim           = sdkerrors.Register(ModuleName, 59, "fee is not claimable, not enough fees collected")

	// Evidence shape.
	ErrInvalidTransactionResultEvidence           = sdkerrors.Register(ModuleName, 70, "evidence must contain exactly one of account sequence or ticket sequence")
	ErrInvalidSuccessfulTransactionResultEvidence = sdkerrors.Register(ModuleName, 71, "a non-invalid transaction result evidence must contain a transaction hash")
	ErrInvalidFailedTransactionResultEvidence     = sdkerrors.Register(ModuleName, 72, "an invalid transaction result evidence can't have a transaction hash")
	ErrInvalidTicketAllocationEvidence            = sdkerrors.Register(ModuleName, 73, "tickets must be present iff the ticket allocation was accepted")
	ErrInvalidOperationResult                     = sdkerrors.Register(ModuleName, 74, "operation result doesn't match the pending operation's type")

	// Money math.
	ErrAmountSentIsZeroAfterTruncation = sdkerrors.Register(ModuleName, 90, "amount sent is zero after truncating to sending precision")
	ErrMaximumBridgedAmountReached      = sdkerrors.Register(ModuleName, 91, "maximum amount this contract can hold for this token has been reached")
	ErrCannotCoverBridgingFees          = sdkerrors.Register(ModuleName, 92, "amount sent is not enough to cover the bridging fees")
	ErrInvalidTrustSetLimitAmount       = sdkerrors.Register(ModuleName, 93, "trust set limit amount exceeds the maximum allowed")
)
