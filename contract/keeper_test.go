package contract

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"go.uber.org/zap"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/contract/store"
	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/logger"
)

// testAddr builds a deterministic 20-byte host address distinguished by tag, for test readability.
func testAddr(tag byte) sdk.AccAddress {
	addr := make([]byte, 20)
	addr[19] = tag
	return sdk.AccAddress(addr)
}

// testXRPLAddresses are real, validly checksummed XRPL classic addresses used across tests, since
// xrpl.IsValidAddress delegates to actual base58check decoding.
var testXRPLAddresses = []string{
	"rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1",
	"rBprNyH2iH7Sqagi268aJuMubPB7XLjL1i",
	"rnZfuixFVhyAXWZDnYsCGEg2zGtpg4ZjKn",
}

// testBridgeXRPLAddress is a valid XRPL address distinct from testXRPLAddresses, used as the
// bridge's own XRPL account in tests.
const testBridgeXRPLAddress = "rcoreNywaoz2ZCQ8Lg2EbSLnGuRBmun6D"

var testXRPLPubKeys = []string{
	"ED5F5AC8B98974A3CA843326D9B88CEBD0560177B973EE0B149F782CFAA06DC66",
	"EDA8B7F0CBF1D31A2C3B4C8DA54CC9AD8B6EF0A2D1B6EDF4A74F19D81BC7E3A89",
	"ED0A6837D086F1F2070AFF14DC6B7B5E3B8CF0D6E9F4C3A19A4F5B8E3D2C1B9A0",
}

func newTestKeeper() *Keeper {
	return NewKeeper(store.NewMemStore(), logger.NewZapLoggerFromLogger(zap.NewNop()))
}

func newInstantiatedTestKeeper(t *testing.T, numRelayers int) (*Keeper, Config) {
	t.Helper()
	k := newTestKeeper()

	relayers := make([]Relayer, numRelayers)
	for i := 0; i < numRelayers; i++ {
		relayers[i] = Relayer{
			HostAddress: testAddr(byte(10 + i)),
			XRPLAddress: testXRPLAddresses[i%len(testXRPLAddresses)],
			XRPLPubKey:  testXRPLPubKeys[i%len(testXRPLPubKeys)],
		}
	}

	cfg, err := k.Instantiate(context.Background(), InstantiateMsg{
		Owner:                       testAddr(1),
		Relayers:                    relayers,
		EvidenceThreshold:           uint32(numRelayers),
		UsedTicketSequenceThreshold: 2,
		TrustSetLimitAmount:         sdkmath.NewInt(1000),
		BridgeXRPLAddress:           testBridgeXRPLAddress,
		XRPLBaseFee:                 10,
	})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return k, cfg
}
