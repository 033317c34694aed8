// Package events defines the typed event surface emitted on every
// successful command (spec §6) and the sinks that consume it.
package events

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
)

// Event is the common interface implemented by every typed event below.
// Kind returns the event's wire name, matching the names spec §6 gives
// each event.
type Event interface {
	Kind() string
}

// BondingCurveLaunched is emitted by launch_on_curve.
type BondingCurveLaunched struct {
	Mint         solana.PublicKey
	TargetBase   uint64
	TargetTokens uint64
	SlopeM       uint64
}

func (BondingCurveLaunched) Kind() string { return "BondingCurveLaunched" }

// BondingCurveSwapped is emitted by swap_on_curve.
type BondingCurveSwapped struct {
	Mint              solana.PublicKey
	IsBuy             bool
	In                uint64
	Out               uint64
	TokensSoldAfter   uint64
	BaseRaisedAfter   uint64
}

func (BondingCurveSwapped) Kind() string { return "BondingCurveSwapped" }

// BondingCurveGraduated is emitted when a curve graduates to a live pool.
type BondingCurveGraduated struct {
	Mint            solana.PublicKey
	BaseRaisedFinal uint64
	LPTokens        uint64
}

func (BondingCurveGraduated) Kind() string { return "BondingCurveGraduated" }

// PoolLaunched is emitted by launch_direct.
type PoolLaunched struct {
	Mint        solana.PublicKey
	InitialBase uint64
}

func (PoolLaunched) Kind() string { return "PoolLaunched" }

// Swapped is emitted by a live-pool spot swap.
type Swapped struct {
	Mint        solana.PublicKey
	In          uint64
	Out         uint64
	InputIsBase bool
}

func (Swapped) Kind() string { return "Swapped" }

// PositionOpened is emitted by leverage_swap.
type PositionOpened struct {
	PositionID solana.PublicKey
	IsLong     bool
	Collateral uint64
	Size       uint64
	DeltaK     fixedpoint.U128
}

func (PositionOpened) Kind() string { return "PositionOpened" }

// PositionClosed is emitted by close_position.
type PositionClosed struct {
	PositionID solana.PublicKey
	Payout     uint64
}

func (PositionClosed) Kind() string { return "PositionClosed" }

// PositionLiquidated is emitted by liquidate.
type PositionLiquidated struct {
	PositionID solana.PublicKey
	Liquidator solana.PublicKey
	Reward     uint64
}

func (PositionLiquidated) Kind() string { return "PositionLiquidated" }
