package types

import (
	"github.com/gagliardetto/solana-go"
)

// MinLeverageTenths and MaxLeverageTenths bound the `leverage` argument of
// leverage_swap. Leverage is encoded in tenths (50 = 5.0x) at the public
// boundary, matching the source's integer convention (spec §9).
const (
	MinLeverageTenths uint64 = 10
	MaxLeverageTenths uint64 = 200
)

// ValidateSwapParams validates common spot-swap parameters.
func ValidateSwapParams(amountIn, minAmountOut uint64) error {
	if amountIn == 0 {
		return NewValidationError("amountIn", "must be greater than 0")
	}
	if minAmountOut == 0 {
		return NewValidationError("minAmountOut", "must be greater than 0")
	}
	return nil
}

// ValidateLeverageParams validates the inputs to leverage_swap (open).
func ValidateLeverageParams(collateral, leverageTenths uint64) error {
	if collateral == 0 {
		return ErrZeroCollateral
	}
	if leverageTenths < MinLeverageTenths {
		return ErrLeverageTooLow
	}
	if leverageTenths > MaxLeverageTenths {
		return ErrLeverageTooHigh
	}
	return nil
}

// ValidateBondingCurveParams validates launch_on_curve's target parameters
// against the graduation-seed requirement of spec §4.B: total_supply must
// leave enough tokens unsold to seed the post-graduation LP
// (target_tokens/2) beyond what the curve itself sells.
func ValidateBondingCurveParams(totalSupply, targetBase, targetTokens uint64) error {
	if targetBase == 0 || targetTokens == 0 {
		return ErrInvalidBondingCurveParams
	}
	if totalSupply < 2*targetTokens {
		return ErrInvalidBondingCurveParams
	}
	return nil
}

// ValidatePublicKey validates a public key is not zero.
func ValidatePublicKey(name string, key solana.PublicKey) error {
	if key.IsZero() {
		return NewValidationError(name, "cannot be zero")
	}
	return nil
}

// ValidatePublicKeys validates multiple public keys.
func ValidatePublicKeys(keys map[string]solana.PublicKey) error {
	for name, key := range keys {
		if err := ValidatePublicKey(name, key); err != nil {
			return err
		}
	}
	return nil
}
