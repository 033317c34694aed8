package types

import "github.com/gagliardetto/solana-go"

// The structs below give the external interface contract of spec §6 a
// concrete Go shape: one struct per command, named after the instruction
// it stands in for. They carry exactly the "essential args" §6 lists;
// nothing here performs signature verification or token-program plumbing
// (explicitly out of scope, spec §1) — callers are trusted to have
// already authenticated `Caller`.

// LaunchDirectArgs is the argument shape for launch_direct.
type LaunchDirectArgs struct {
	Caller       solana.PublicKey
	Mint         solana.PublicKey
	InitialBase  uint64
	TotalSupply  uint64
	Name         string
	Ticker       string
	MetadataURI  string
	FundingC     *uint64 // optional override, Q-format per-second constant
	LiqThreshold *uint64 // optional override, percent
}

// LaunchOnCurveArgs is the argument shape for launch_on_curve.
type LaunchOnCurveArgs struct {
	Caller       solana.PublicKey
	Mint         solana.PublicKey
	TotalSupply  uint64
	TargetBase   uint64
	TargetTokens uint64
	Name         string
	Ticker       string
	MetadataURI  string
	FundingC     *uint64
	LiqThreshold *uint64
}

// SwapOnCurveArgs is the argument shape for swap_on_curve.
type SwapOnCurveArgs struct {
	Caller      solana.PublicKey
	Mint        solana.PublicKey
	AmountIn    uint64
	InputIsBase bool
}

// SwapArgs is the argument shape for the live-pool spot swap.
type SwapArgs struct {
	Caller       solana.PublicKey
	Mint         solana.PublicKey
	AmountIn     uint64
	MinAmountOut uint64
	InputIsBase  bool
	Now          int64
}

// LeverageSwapArgs is the argument shape for opening a leveraged position.
// Leverage is encoded in tenths (50 = 5.0x), per spec §9's documented
// convention for the public boundary.
type LeverageSwapArgs struct {
	Caller       solana.PublicKey
	Mint         solana.PublicKey
	Collateral   uint64
	IsLong       bool
	LeverageTenths uint64
	MinSizeOut   uint64
	Nonce        uint64
	Now          int64
}

// ClosePositionArgs is the argument shape for close_position.
type ClosePositionArgs struct {
	Caller solana.PublicKey
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Nonce  uint64
	Now    int64
}

// LiquidateArgs is the argument shape for liquidate.
type LiquidateArgs struct {
	Caller solana.PublicKey
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Nonce  uint64
	Now    int64
}
