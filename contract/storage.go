package contract

import (
	"encoding/binary"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/contract/store"
)

func uint32Key(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

var (
	configItem = store.NewItem[Config](keyConfig)

	txEvidencesMap  = store.NewMap[string, evidences](keyTxEvidences, func(h string) []byte { return []byte(h) })
	processedTxsMap = store.NewMap[string, struct{}](keyProcessedTxs, func(h string) []byte { return []byte(h) })

	xrplTokensMap = store.NewMap[XRPLTokenKey, XRPLToken](
		keyXRPLTokens,
		func(k XRPLTokenKey) []byte { return []byte(k.Issuer + "|" + k.Currency) },
	)
	xrplTokensByHostDenomMap = store.NewMap[string, XRPLTokenKey](
		keyXRPLTokensByHostDenom,
		func(denom string) []byte { return []byte(denom) },
	)

	hostTokensMap = store.NewMap[string, HostToken](
		keyHostTokens,
		func(denom string) []byte { return []byte(denom) },
	)
	hostTokensByXRPLCurrencyMap = store.NewMap[string, string](
		keyHostTokensByXRPLCurrency,
		func(currency string) []byte { return []byte(currency) },
	)

	availableTicketsItem   = store.NewItem[[]uint32](keyAvailableTickets)
	usedTicketsCounterItem = store.NewItem[uint32](keyUsedTicketsCounter)
	pendingTicketUpdateItem = store.NewItem[bool](keyPendingTicketUpdate)
	pendingRotateKeysItem   = store.NewItem[bool](keyPendingRotateKeys)

	pendingOperationsMap = store.NewMap[uint32, Operation](keyPendingOperations, uint32Key)

	pendingRefundsMap = store.NewMap[pendingRefundKey, PendingRefund](
		keyPendingRefunds,
		func(k pendingRefundKey) []byte { return []byte(k.Address + "|" + k.ID) },
	)
	// pendingRefundsByAddressMap is the multi-index over PendingRefund by owner address, storing
	// the list of outstanding refund IDs for that address.
	pendingRefundsByAddressMap = store.NewMap[string, []string](
		keyPendingRefundsByAddress,
		func(addr string) []byte { return []byte(addr) },
	)

	feesCollectedMap = store.NewMap[string, sdk.Coins](keyFeesCollected, func(addr string) []byte { return []byte(addr) })
	feeRemaindersMap = store.NewMap[string, sdkmath.Int](keyFeeRemainders, func(denom string) []byte { return []byte(denom) })

	prohibitedXRPLAddressesMap = store.NewMap[string, struct{}](
		keyProhibitedXRPLAddresses,
		func(addr string) []byte { return []byte(addr) },
	)

	// pendingOwnerItem holds the address proposed by the current owner but not yet accepted, for
	// the two-step ownership transfer. Empty/absent means no transfer is in flight.
	pendingOwnerItem = store.NewItem[sdk.AccAddress](keyPendingOwner)
)

// pendingRefundKey is the (address, id) composite primary key of a PendingRefund.
type pendingRefundKey struct {
	Address string
	ID      string
}
