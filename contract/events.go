package contract

import sdk "github.com/cosmos/cosmos-sdk/types"

// ContractAction identifies a handler invocation for authorization checks, logging, and event
// emission, mirroring the Rust state machine's own ContractActions enum.
type ContractAction string

// ContractAction values, named exactly as their Rust as_str() counterpart so operators correlating
// logs across the original implementation and this one see the same vocabulary.
const (
	ActionInstantiation                     ContractAction = "bridge_instantiation"
	ActionRegisterHostToken                 ContractAction = "register_cosmos_token"
	ActionRegisterXRPLToken                 ContractAction = "register_xrpl_token"
	ActionRecoverTickets                    ContractAction = "recover_tickets"
	ActionRecoverXRPLTokenRegistration      ContractAction = "recover_xrpl_token_registration"
	ActionSaveEvidence                      ContractAction = "save_evidence"
	ActionSaveSignature                     ContractAction = "save_signature"
	ActionSendToXRPL                        ContractAction = "send_to_xrpl"
	ActionClaimFees                         ContractAction = "claim_fees"
	ActionClaimRefunds                      ContractAction = "claim_refunds"
	ActionUpdateXRPLToken                   ContractAction = "update_xrpl_token"
	ActionUpdateHostToken                   ContractAction = "update_cosmos_token"
	ActionUpdateXRPLBaseFee                 ContractAction = "update_xrpl_base_fee"
	ActionUpdateProhibitedXRPLAddresses     ContractAction = "update_invalid_xrpl_addresses"
	ActionHaltBridge                        ContractAction = "halt_bridge"
	ActionResumeBridge                      ContractAction = "resume_bridge"
	ActionRotateKeys                        ContractAction = "rotate_keys"
	ActionCancelPendingOperation            ContractAction = "cancel_pending_operation"
	ActionUpdateUsedTicketSequenceThreshold ContractAction = "update_used_ticket_sequence_threshold"
	ActionTransferOwnership                 ContractAction = "transfer_ownership"
	ActionAcceptOwnership                   ContractAction = "accept_ownership"
)

// callerRole is the two-tier authorization model this bridge recognizes: the singular owner and
// the relayer set. Most handlers are owner-only; evidence/signature submission is relayer-only;
// a handful are open to either or to any caller at all.
type callerRole int

const (
	roleNone callerRole = iota
	roleOwner
	roleRelayer
)

func (k *Keeper) callerRole(cfg Config, addr sdk.AccAddress) callerRole {
	if cfg.Owner != nil && cfg.Owner.Equals(addr) {
		return roleOwner
	}
	if cfg.IsRelayer(addr) {
		return roleRelayer
	}
	return roleNone
}

// isAuthorized reports whether role may invoke action, mirroring UserType::is_authorized.
func isAuthorized(role callerRole, action ContractAction) bool {
	switch action {
	case ActionInstantiation, ActionSendToXRPL, ActionClaimRefunds:
		return true
	case ActionSaveEvidence, ActionSaveSignature, ActionClaimFees:
		return role == roleRelayer
	case ActionHaltBridge:
		return role == roleOwner || role == roleRelayer
	default:
		return role == roleOwner
	}
}

// authorize loads the config, resolves sender's role, and rejects the call unless that role is
// permitted to invoke action.
func (k *Keeper) authorize(sender sdk.AccAddress, action ContractAction) (Config, error) {
	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return Config{}, err
	}
	role := k.callerRole(cfg, sender)
	if !isAuthorized(role, action) {
		return Config{}, ErrUnauthorizedSender
	}
	return cfg, nil
}
