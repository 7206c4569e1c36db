package contract

// Storage key prefixes. Top-level prefixes are a single byte and secondary-index prefixes two
// bytes, to keep the on-chain storage footprint small, mirroring the TopKey enum of the contract this package is modeled on.
var (
	keyConfig                  = []byte{'1'}
	keyTxEvidences              = []byte{'2'}
	keyProcessedTxs             = []byte{'3'}
	keyHostTokens               = []byte{'4'}
	keyHostTokensByXRPLCurrency = []byte{'6', '4'} // secondary index, shares the 'UsedXRPLCurrencies' slot
	keyXRPLTokens               = []byte{'5'}
	keyXRPLTokensByHostDenom    = []byte{'6', '5'} // secondary index, shares the 'UsedXRPLCurrencies' slot
	keyAvailableTickets         = []byte{'7'}
	keyUsedTicketsCounter       = []byte{'8'}
	keyPendingOperations        = []byte{'9'}
	keyPendingTicketUpdate      = []byte{'a'}
	keyPendingRefunds           = []byte{'b'}
	keyPendingRefundsByAddress  = []byte{'b', 'i'} // secondary index
	keyFeesCollected            = []byte{'c'}
	keyFeeRemainders            = []byte{'d'}
	keyPendingRotateKeys        = []byte{'e'}
	keyProhibitedXRPLAddresses  = []byte{'f'}
	keyPendingOwner             = []byte{'g'}
)
