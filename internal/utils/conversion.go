/*
This file contains the conversions between USD-denominated float amounts and the integer
base units that prepared protocol transactions carry (octas on Aptos, micro-denoms on Elys).
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidDecimals  = errors.New("decimals are invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

const maxDecimals = 18

// ToBaseUnits converts a token amount to integer base units with the given number of decimals.
// The amount is formatted as a decimal string first so the result does not pick up binary
// floating point noise.
func ToBaseUnits(amount float64, decimals int) (sdkmath.Int, error) {
	if decimals < 0 || decimals > maxDecimals {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidDecimals, decimals, maxDecimals)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	if amount == 0 {
		return sdkmath.ZeroInt(), nil
	}

	decAmount, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.*f", decimals, amount))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: failed to create decimal from string: %w", ErrConversionFailed, err)
	}

	result := decAmount.Mul(precisionFactor(decimals)).TruncateInt()
	if result.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	return result, nil
}

// DecToPercent converts an on-chain APR fraction (0.05) into percentage points (5).
func DecToPercent(dec sdkmath.LegacyDec) (float64, error) {
	if dec.IsNil() {
		return 0, ErrAmountNil
	}
	value, err := dec.MulInt64(100).Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, value)
	}
	return value, nil
}

func precisionFactor(decimals int) sdkmath.LegacyDec {
	return sdkmath.LegacyNewDecFromInt(sdkmath.NewIntWithDecimal(1, decimals))
}

// SumDecToPercent adds APR components (for example EDEN rewards and USDC dex fees) and
// converts the total into percentage points.
func SumDecToPercent(parts ...sdkmath.LegacyDec) (float64, error) {
	total := sdkmath.LegacyZeroDec()
	for _, part := range parts {
		if part.IsNil() {
			return 0, ErrAmountNil
		}
		total = total.Add(part)
	}
	return DecToPercent(total)
}
