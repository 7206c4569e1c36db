package contract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pkg/errors"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/contract/store"
	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/logger"
)

// TransactionResult is the outcome a relayer reports for an XRPL transaction.
type TransactionResult string

// TransactionResult values.
const (
	TransactionResultAccepted TransactionResult = "accepted"
	TransactionResultRejected TransactionResult = "rejected"
	TransactionResultInvalid  TransactionResult = "invalid"
)

// XRPLToHostTransferEvidence attests an inbound XRPL->host token transfer.
type XRPLToHostTransferEvidence struct {
	TxHash    string         `json:"tx_hash"`
	Issuer    string         `json:"issuer"`
	Currency  string         `json:"currency"`
	Amount    sdkmath.Int    `json:"amount"`
	Recipient sdk.AccAddress `json:"recipient"`
	Memo      string         `json:"memo,omitempty"`
}

// TicketsAllocationResult carries the tickets allocated by an accepted AllocateTickets operation.
type TicketsAllocationResult struct {
	Tickets []uint32 `json:"tickets,omitempty"`
}

// OperationResult is the tagged union of operation-specific confirmation payloads. Only
// TicketsAllocation exists today; every other operation type confirms with no extra payload.
type OperationResult struct {
	TicketsAllocation *TicketsAllocationResult `json:"tickets_allocation,omitempty"`
}

// XRPLTransactionResultEvidence attests the fate of a previously submitted outbound XRPL
// transaction: exactly one of AccountSequence/TicketSequence identifies the pending operation.
type XRPLTransactionResultEvidence struct {
	TxHash            string            `json:"tx_hash,omitempty"`
	AccountSequence   *uint32           `json:"account_sequence,omitempty"`
	TicketSequence    *uint32           `json:"ticket_sequence,omitempty"`
	TransactionResult TransactionResult `json:"transaction_result"`
	OperationResult   *OperationResult  `json:"operation_result,omitempty"`
}

// OperationID returns the pending operation ID this result confirms or rejects.
func (e XRPLTransactionResultEvidence) OperationID() uint32 {
	if e.TicketSequence != nil {
		return *e.TicketSequence
	}
	if e.AccountSequence != nil {
		return *e.AccountSequence
	}
	return 0
}

// Evidence is the tagged union of every relayer-submitted claim the contract accepts. Exactly one
// of the two fields must be set; Go has no native sum type, so - following this codebase's own
// convention for OperationType - the union is modeled as a struct of optional pointers.
type Evidence struct {
	XRPLToHostTransfer    *XRPLToHostTransferEvidence    `json:"xrpl_to_host_transfer,omitempty"`
	XRPLTransactionResult *XRPLTransactionResultEvidence `json:"xrpl_transaction_result,omitempty"`
}

// TxHash returns the upper-cased transaction hash this evidence concerns. Invalid transaction
// results carry no hash and return "".
func (e Evidence) TxHash() string {
	switch {
	case e.XRPLToHostTransfer != nil:
		return strings.ToUpper(e.XRPLToHostTransfer.TxHash)
	case e.XRPLTransactionResult != nil:
		return strings.ToUpper(e.XRPLTransactionResult.TxHash)
	default:
		return ""
	}
}

// IsOperationValid reports whether the evidence describes an outcome that should be permanently
// recorded in ProcessedTx once confirmed: every transfer is valid, every transaction result is
// valid except Invalid ones (which never reached the XRPL ledger at all).
func (e Evidence) IsOperationValid() bool {
	if e.XRPLToHostTransfer != nil {
		return true
	}
	if e.XRPLTransactionResult != nil {
		return e.XRPLTransactionResult.TransactionResult != TransactionResultInvalid
	}
	return false
}

// ValidateBasic performs the shape validation relayers' evidence must satisfy independent of any
// stored state.
func (e Evidence) ValidateBasic() error {
	switch {
	case e.XRPLToHostTransfer != nil && e.XRPLTransactionResult != nil:
		return errors.Wrap(ErrInvalidTransactionResultEvidence, "evidence must carry exactly one variant")
	case e.XRPLToHostTransfer != nil:
		if e.XRPLToHostTransfer.Amount.IsNil() || !e.XRPLToHostTransfer.Amount.IsPositive() {
			return ErrInvalidAmount
		}
		return nil
	case e.XRPLTransactionResult != nil:
		return e.XRPLTransactionResult.validateBasic()
	default:
		return errors.Wrap(ErrInvalidTransactionResultEvidence, "evidence must carry exactly one variant")
	}
}

func (r XRPLTransactionResultEvidence) validateBasic() error {
	if (r.AccountSequence == nil) == (r.TicketSequence == nil) {
		return ErrInvalidTransactionResultEvidence
	}
	if r.TransactionResult != TransactionResultInvalid && r.TxHash == "" {
		return ErrInvalidSuccessfulTransactionResultEvidence
	}
	if r.TransactionResult == TransactionResultInvalid && r.TxHash != "" {
		return ErrInvalidFailedTransactionResultEvidence
	}
	if r.OperationResult != nil && r.OperationResult.TicketsAllocation != nil {
		ta := r.OperationResult.TicketsAllocation
		switch r.TransactionResult {
		case TransactionResultInvalid, TransactionResultRejected:
			if ta.Tickets != nil {
				return ErrInvalidTicketAllocationEvidence
			}
		case TransactionResultAccepted:
			if len(ta.Tickets) == 0 {
				return ErrInvalidTicketAllocationEvidence
			}
		}
	}
	return nil
}

// evidenceHash canonically hashes the evidence payload so that two relayers reporting the exact
// same observation produce the same key regardless of field ordering: Go's encoding/json already
// marshals struct fields in declaration order deterministically, which is sufficient for a fixed
// Go type - unlike the schema-less JSON the contract this logic is grounded on had to stabilize
// by sorting map keys.
func evidenceHash(e Evidence) (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal evidence for hashing")
	}
	sum := sha256.Sum256(raw)
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// evidences is the set of relayer addresses that have reported an identical evidence payload.
type evidences struct {
	RelayerAddresses []sdk.AccAddress `json:"relayer_addresses"`
}

func (e evidences) contains(addr sdk.AccAddress) bool {
	for _, a := range e.RelayerAddresses {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}

// submitEvidence implements the evidence aggregator: per-relayer deduplication and
// threshold-driven confirmation. It returns confirmed=true exactly when sender's submission was
// the one that reached the evidence threshold.
func (k *Keeper) submitEvidence(ctx context.Context, sender sdk.AccAddress, e Evidence) (confirmed bool, err error) {
	if err := e.ValidateBasic(); err != nil {
		return false, err
	}

	operationValid := e.IsOperationValid()
	txHash := e.TxHash()
	if operationValid {
		if _, ok := processedTxsMap.Load(k.store, txHash); ok {
			return false, ErrOperationAlreadyExecuted
		}
	}

	hash, err := evidenceHash(e)
	if err != nil {
		return false, err
	}

	stored, found, err := txEvidencesMap.Load(k.store, hash)
	if err != nil {
		return false, err
	}
	if !found {
		stored = evidences{RelayerAddresses: []sdk.AccAddress{sender}}
	} else {
		if stored.contains(sender) {
			return false, ErrEvidenceAlreadyProvided
		}
		stored.RelayerAddresses = append(stored.RelayerAddresses, sender)
	}

	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return false, err
	}

	if uint32(len(stored.RelayerAddresses)) >= cfg.EvidenceThreshold {
		if operationValid {
			if err := processedTxsMap.Save(k.store, txHash, struct{}{}); err != nil {
				return false, err
			}
		}
		if len(stored.RelayerAddresses) != 1 {
			txEvidencesMap.Remove(k.store, hash)
		}
		k.log.Debug(ctx, "evidence reached threshold", logger.StringField("hash", hash))
		return true, nil
	}

	if err := txEvidencesMap.Save(k.store, hash, stored); err != nil {
		return false, err
	}
	return false, nil
}

// clearAllEvidences wipes every in-flight evidence record. Called when a RotateKeys operation is
// confirmed: the relayer set (and therefore who is entitled to vote) has just changed, so
// in-flight consensus on stale evidence is discarded by design.
func clearAllEvidences(s store.KVStore) error {
	var keys [][]byte
	if err := txEvidencesMap.Range(s, func(rawKey []byte, _ evidences) (bool, error) {
		keys = append(keys, append([]byte{}, rawKey...))
		return true, nil
	}); err != nil {
		return err
	}
	for _, key := range keys {
		s.Delete(append(append([]byte{}, keyTxEvidences...), key...))
	}
	return nil
}
