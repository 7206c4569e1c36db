package contract

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// XRPLIssuedTokenDecimals is the fixed decimal scale XRPL uses internally for issued (non-XRP)
// currencies, regardless of what scale the host chain's matching denom was registered with.
const XRPLIssuedTokenDecimals = 15

// MaxXRPLSignificantDigits is the most significant digits an XRPL issued-currency amount can carry.
const MaxXRPLSignificantDigits = 17

// truncateAmount truncates amount to sendingPrecision decimal places relative to decimals and
// returns both the truncated amount and the truncated-off remainder. sendingPrecision may be
// negative, in which case truncation reaches above the decimal point (e.g. to the nearest 100
// units); it may also exceed decimals, in which case nothing is truncated at all.
func truncateAmount(decimals uint32, sendingPrecision int32, amount sdkmath.Int) (truncated, remainder sdkmath.Int, err error) {
	exponent := int64(decimals) - int64(sendingPrecision)
	if exponent <= 0 {
		return amount, sdkmath.ZeroInt(), nil
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(exponent), nil)
	quotient := new(big.Int)
	rem := new(big.Int)
	quotient.QuoRem(amount.BigInt(), divisor, rem)
	truncatedBig := new(big.Int).Mul(quotient, divisor)

	if truncatedBig.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, sdkmath.Int{}, ErrInvalidAmount
	}
	return sdkmath.NewIntFromBigInt(truncatedBig), sdkmath.NewIntFromBigInt(rem), nil
}

// truncateXRPLOriginatedAmount applies truncateAmount using a token's registered sending precision
// against the fixed XRPLIssuedTokenDecimals scale, rejecting a result that truncates to zero.
func truncateXRPLOriginatedAmount(sendingPrecision int32, amount sdkmath.Int) (truncated, remainder sdkmath.Int, err error) {
	truncated, remainder, err = truncateAmount(XRPLIssuedTokenDecimals, sendingPrecision, amount)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	if truncated.IsZero() {
		return sdkmath.Int{}, sdkmath.Int{}, ErrAmountSentIsZeroAfterTruncation
	}
	return truncated, remainder, nil
}

// truncateHostOriginatedAmount applies truncateAmount using a host token's own decimals and
// sending precision, rejecting a result that truncates to zero.
func truncateHostOriginatedAmount(decimals uint32, sendingPrecision int32, amount sdkmath.Int) (truncated, remainder sdkmath.Int, err error) {
	truncated, remainder, err = truncateAmount(decimals, sendingPrecision, amount)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	if truncated.IsZero() {
		return sdkmath.Int{}, sdkmath.Int{}, ErrAmountSentIsZeroAfterTruncation
	}
	return truncated, remainder, nil
}

// convertHostDecimalsToXRPLDecimals rescales an amount expressed with hostDecimals digits after
// the point to one expressed with XRPLIssuedTokenDecimals, mirroring the big.Int rescale this
// package's teacher performs when crossing between XRPL's and coreum's token representations.
func convertHostDecimalsToXRPLDecimals(amount sdkmath.Int, hostDecimals uint32) (sdkmath.Int, error) {
	return rescale(amount, hostDecimals, XRPLIssuedTokenDecimals)
}

// convertXRPLDecimalsToHostDecimals rescales an amount expressed with XRPLIssuedTokenDecimals
// digits after the point to one expressed with hostDecimals.
func convertXRPLDecimalsToHostDecimals(amount sdkmath.Int, hostDecimals uint32) (sdkmath.Int, error) {
	return rescale(amount, XRPLIssuedTokenDecimals, hostDecimals)
}

func rescale(amount sdkmath.Int, fromDecimals, toDecimals uint32) (sdkmath.Int, error) {
	if fromDecimals == toDecimals {
		return amount, nil
	}
	result := new(big.Int).Set(amount.BigInt())
	if toDecimals > fromDecimals {
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(toDecimals-fromDecimals)), nil)
		result.Mul(result, factor)
	} else {
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fromDecimals-toDecimals)), nil)
		result.Quo(result, factor)
	}
	if result.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, ErrInvalidAmount
	}
	return sdkmath.NewIntFromBigInt(result), nil
}

// validateXRPLAmountSignificantDigits rejects amounts XRPL itself cannot represent: issued-currency
// values are limited to 17 significant digits.
func validateXRPLAmountSignificantDigits(amount sdkmath.Int) error {
	digits := new(big.Int).Abs(amount.BigInt()).String()
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	trimmed := []byte(digits)
	for len(trimmed) > 1 && trimmed[len(trimmed)-1] == '0' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if len(trimmed) > MaxXRPLSignificantDigits {
		return ErrInvalidXRPLAmount
	}
	return nil
}
