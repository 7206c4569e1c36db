// Package xrpl holds the pieces of XRPL wire-format knowledge the bridge contract needs to validate
// evidence and registrations: currency code shape and account address shape. It deliberately knows
// nothing about RPC, signing or scanning - those belong to the off-chain relayer, not the contract.
package xrpl

import (
	"encoding/hex"
	"regexp"
	"strings"

	rippledata "github.com/rubblelabs/ripple/data"
)

// XRPSymbol is the reserved currency symbol for the native XRP asset. It can never be registered
// as a standalone XRPL token currency code because XRP is bridged through its own issuer/currency pair.
const XRPSymbol = "XRP"

var shortCurrencyRegex = regexp.MustCompile(`^[A-Za-z0-9?!@#$%^*(){}\[\]|]{3}$`)

var longCurrencyRegex = regexp.MustCompile(`^[0-9A-F]{40}$`)

// ConvertCurrencyToString decodes XRPL currency to string which matches the contract expectation.
func ConvertCurrencyToString(currency rippledata.Currency) string {
	currencyString := currency.String()
	if len(currencyString) == 3 {
		return currencyString
	}
	hexString := hex.EncodeToString([]byte(currencyString))
	// append tailing zeros to match the contract expectation
	hexString += strings.Repeat("0", 40-len(hexString))
	return strings.ToUpper(hexString)
}

// IsValidCurrencyCode reports whether currency is a valid XRPL currency code: either a 3-character
// symbol drawn from the standard ISO-4217-like alphabet (excluding the reserved "XRP" symbol), or a
// 40-character uppercase hex code that does not start with the reserved "00" prefix.
func IsValidCurrencyCode(currency string) bool {
	if shortCurrencyRegex.MatchString(currency) {
		return currency != XRPSymbol
	}
	if longCurrencyRegex.MatchString(currency) {
		return !strings.HasPrefix(currency, "00")
	}
	return false
}
