package xrpl_test

import (
	"encoding/hex"
	"strings"
	"testing"

	rippledata "github.com/rubblelabs/ripple/data"
	"github.com/stretchr/testify/require"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/xrpl"
)

func TestConvertCurrencyToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		currency rippledata.Currency
		want     string
	}{
		{
			name:     "positive_short_currency",
			currency: mustCurrency(t, "ABC"),
			want:     "ABC",
		},
		{
			name:     "positive_long_currency",
			currency: mustCurrency(t, hex.EncodeToString([]byte(strings.Repeat("Z", 20)))),
			want:     "5A5A5A5A5A5A5A5A5A5A5A5A5A5A5A5A5A5A5A5A",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := xrpl.ConvertCurrencyToString(tt.currency)
			require.Equal(t, tt.want, got)
			// check that is convertable back
			currency, err := rippledata.NewCurrency(got)
			require.NoError(t, err)
			require.Equal(t, tt.currency.String(), currency.String())
		})
	}
}

func mustCurrency(t *testing.T, currencyString string) rippledata.Currency {
	currency, err := rippledata.NewCurrency(currencyString)
	require.NoError(t, err)
	return currency
}

func TestIsValidCurrencyCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		currency string
		want     bool
	}{
		{name: "short_valid", currency: "USD", want: true},
		{name: "short_reserved_xrp", currency: "XRP", want: false},
		{name: "short_too_long", currency: "USDT", want: false},
		{name: "long_valid_hex", currency: "0158415500000000C1F76FF6ECB0BAC600000000", want: true},
		{name: "long_reserved_prefix", currency: "0058415500000000C1F76FF6ECB0BAC600000000", want: false},
		{name: "long_lowercase_rejected", currency: "0158415500000000c1f76ff6ecb0bac600000000", want: false},
		{name: "garbage", currency: "!!", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, xrpl.IsValidCurrencyCode(tt.currency))
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	require.True(t, xrpl.IsValidAddress("rU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1"))
	require.False(t, xrpl.IsValidAddress(""))
	require.False(t, xrpl.IsValidAddress("not-an-address"))
	require.False(t, xrpl.IsValidAddress("XU6K7V3Po4snVhBBaU29sesqs2qTQJWDw1"))
}
