package xrpl

import rippledata "github.com/rubblelabs/ripple/data"

// IsValidAddress reports whether address is a syntactically valid XRPL classic account address:
// a base58check-encoded 20-byte account ID with the 'r' account-ID prefix. Validation is delegated
// to the ripple data library so the contract and the off-chain relayer always agree on what counts
// as a valid address.
func IsValidAddress(address string) bool {
	if len(address) < 25 || len(address) > 35 || address[0] != 'r' {
		return false
	}
	_, err := rippledata.NewAccountFromAddress(address)
	return err == nil
}
