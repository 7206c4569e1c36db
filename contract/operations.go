package contract

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// OperationTypeAllocateTickets requests a fresh batch of XRPL tickets from the bridge account.
type OperationTypeAllocateTickets struct {
	Number uint32 `json:"number"`
}

// OperationTypeTrustSet requests the bridge XRPL account issue a TrustSet towards an XRPL token
// newly registered for bridging, up to the configured trust limit.
type OperationTypeTrustSet struct {
	Issuer              string      `json:"issuer"`
	Currency            string      `json:"currency"`
	TrustSetLimitAmount sdkmath.Int `json:"trust_set_limit_amount"`
}

// OperationTypeCosmosToXRPLTransfer requests the bridge XRPL account pay out an amount previously
// locked/burned on the host side to an XRPL recipient.
type OperationTypeCosmosToXRPLTransfer struct {
	Issuer       string         `json:"issuer,omitempty"`
	Currency     string         `json:"currency,omitempty"`
	Amount       sdkmath.Int    `json:"amount"`
	MaxAmount    *sdkmath.Int   `json:"max_amount,omitempty"`
	Sender       sdk.AccAddress `json:"sender"`
	Recipient    string         `json:"recipient"`
	// OriginalCoin is the host-chain coin the sender actually locked/burned, kept so a
	// rejected/invalid outcome can be refunded in the denom and amount the sender parted with.
	OriginalCoin sdk.Coin `json:"original_coin"`
}

// OperationTypeRotateKeys requests the bridge XRPL account's signer list be replaced, retiring the
// current relayer set in favor of a new one.
type OperationTypeRotateKeys struct {
	NewRelayers          []Relayer `json:"new_relayers"`
	NewEvidenceThreshold uint32    `json:"new_evidence_threshold"`
}

// OperationType is the tagged union of pending-operation payloads. Exactly one field is set,
// following this package's struct-of-optional-pointers convention for Go sum types.
type OperationType struct {
	AllocateTickets      *OperationTypeAllocateTickets      `json:"allocate_tickets,omitempty"`
	TrustSet             *OperationTypeTrustSet             `json:"trust_set,omitempty"`
	CosmosToXRPLTransfer *OperationTypeCosmosToXRPLTransfer `json:"cosmos_to_xrpl_transfer,omitempty"`
	RotateKeys           *OperationTypeRotateKeys           `json:"rotate_keys,omitempty"`
}

// Signature is a single relayer's XRPL-side multisignature over an operation's unsigned
// transaction blob.
type Signature struct {
	Relayer   sdk.AccAddress `json:"relayer"`
	Signature string         `json:"signature"`
}

// Operation is a pending outbound XRPL transaction awaiting relayer signatures and, eventually,
// execution evidence. Its ID is either a reserved ticket sequence or (for the bootstrap
// AllocateTickets operation, which has no ticket to carry it) the bridge account's sequence.
type Operation struct {
	TicketSequence  *uint32       `json:"ticket_sequence,omitempty"`
	AccountSequence *uint32       `json:"account_sequence,omitempty"`
	Version         uint32        `json:"version"`
	Signatures      []Signature   `json:"signatures,omitempty"`
	OperationType   OperationType `json:"operation_type"`
	XRPLBaseFee     uint32        `json:"xrpl_base_fee"`
}

// ID returns the key this operation is stored under: its ticket sequence if it has one, otherwise
// its account sequence.
func (o Operation) ID() uint32 {
	if o.TicketSequence != nil {
		return *o.TicketSequence
	}
	if o.AccountSequence != nil {
		return *o.AccountSequence
	}
	return 0
}

// createOperation inserts a new pending operation keyed by ticket (when non-zero) or account
// sequence, rejecting an insert over an ID already in flight.
func (k *Keeper) createOperation(ctx context.Context, ticketSequence, accountSequence uint32, opType OperationType) error {
	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return err
	}

	op := Operation{
		OperationType: opType,
		XRPLBaseFee:   cfg.XRPLBaseFee,
		Version:       1,
	}
	var id uint32
	if ticketSequence != 0 {
		op.TicketSequence = &ticketSequence
		id = ticketSequence
	} else {
		op.AccountSequence = &accountSequence
		id = accountSequence
	}

	if pendingOperationsMap.Has(k.store, id) {
		return ErrPendingOperationAlreadyExists
	}
	return pendingOperationsMap.Save(k.store, id, op)
}

// loadOperation is a thin wrapper translating "not found" to the module's sentinel error.
func (k *Keeper) loadOperation(operationID uint32) (Operation, error) {
	op, found, err := pendingOperationsMap.Load(k.store, operationID)
	if err != nil {
		return Operation{}, err
	}
	if !found {
		return Operation{}, ErrPendingOperationNotFound
	}
	return op, nil
}

// saveSignature appends sender's XRPL multisignature to the pending operation, enforcing that the
// signer is voting on the operation's current version and has not already signed it.
func (k *Keeper) saveSignature(sender sdk.AccAddress, operationID, version uint32, signature string) error {
	if len(signature) > 200 {
		return ErrInvalidSignatureLength
	}
	op, err := k.loadOperation(operationID)
	if err != nil {
		return err
	}
	if op.Version != version {
		return ErrOperationVersionMismatch
	}
	for _, s := range op.Signatures {
		if s.Relayer.Equals(sender) {
			return ErrSignatureAlreadyProvided
		}
	}
	op.Signatures = append(op.Signatures, Signature{Relayer: sender, Signature: signature})
	return pendingOperationsMap.Save(k.store, operationID, op)
}

// removeOperation deletes a pending operation once it has been confirmed or cancelled.
func (k *Keeper) removeOperation(operationID uint32) {
	pendingOperationsMap.Remove(k.store, operationID)
}

// bumpXRPLBaseFee updates the network base fee and, for every currently pending operation, bumps
// its version and wipes any signatures collected so far: those signatures covered an unsigned
// transaction blob priced at the old fee and are no longer valid over the new one.
func (k *Keeper) bumpXRPLBaseFee(newBaseFee uint32) error {
	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return err
	}
	cfg.XRPLBaseFee = newBaseFee
	if err := configItem.Save(k.store, cfg); err != nil {
		return err
	}

	var ids []uint32
	var ops []Operation
	if err := pendingOperationsMap.Range(k.store, func(_ []byte, op Operation) (bool, error) {
		ids = append(ids, op.ID())
		ops = append(ops, op)
		return true, nil
	}); err != nil {
		return err
	}
	for i, op := range ops {
		op.Version++
		op.Signatures = nil
		op.XRPLBaseFee = newBaseFee
		if err := pendingOperationsMap.Save(k.store, ids[i], op); err != nil {
			return err
		}
	}
	return nil
}

// returnOperationTicket returns op's reserved ticket to the pool, if it has one. An auto-triggered
// AllocateTickets operation carries a ticket; one keyed by account sequence carries none.
func (k *Keeper) returnOperationTicket(op Operation) error {
	if op.TicketSequence == nil {
		return nil
	}
	return k.returnTicket(*op.TicketSequence)
}
