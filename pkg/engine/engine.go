// Package engine wires spec §6's seven commands (launch_direct,
// launch_on_curve, swap_on_curve, swap, leverage_swap, close_position,
// liquidate) into a single façade over pkg/store, pkg/bondingcurve,
// pkg/pool, pkg/position, and pkg/launch. Grounded on the teacher's
// pkg/rpc.Client: a struct holding config/logger/rate-limiter, one method
// per external operation, each wrapping its work in the same
// limiter-then-execute-then-log shape client.call uses for RPC calls —
// here "execute" means "acquire the pool's mutex, mutate a private copy
// of the record, and publish it only on success" rather than an RPC
// round trip, since spec §5 requires no partial writes on failure.
package engine

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/time/rate"

	"github.com/ninja0404/ammcore/pkg/bondingcurve"
	"github.com/ninja0404/ammcore/pkg/config"
	"github.com/ninja0404/ammcore/pkg/events"
	"github.com/ninja0404/ammcore/pkg/launch"
	"github.com/ninja0404/ammcore/pkg/position"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

// Engine is the command façade described above. The zero value is not
// usable; build one with New.
type Engine struct {
	store *store.Store
	cfg   config.EngineConfig
	sink  events.Sink

	limMu    sync.Mutex
	limiters map[solana.PublicKey]*rate.Limiter
}

// New builds an Engine over an existing store. A nil sink defaults to
// events.NopSink{}, matching the teacher's zerolog.Nop() default.
func New(st *store.Store, cfg config.EngineConfig, sink events.Sink) (*Engine, error) {
	if st == nil {
		return nil, types.ErrNilStore
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Engine{
		store:    st,
		cfg:      cfg,
		sink:     sink,
		limiters: make(map[solana.PublicKey]*rate.Limiter),
	}, nil
}

func (e *Engine) limiterFor(mint solana.PublicKey) *rate.Limiter {
	e.limMu.Lock()
	defer e.limMu.Unlock()
	lim, ok := e.limiters[mint]
	if !ok {
		rps := e.cfg.RateLimit.CommandsPerSecond
		burst := e.cfg.RateLimit.Burst
		if rps <= 0 {
			rps = 50
		}
		if burst <= 0 {
			burst = int(rps * 2)
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
		e.limiters[mint] = lim
	}
	return lim
}

// acquire checks the per-pool command rate without blocking — a rejected
// command simply fails fast with ErrRateLimited rather than queuing,
// since spec §5 treats the engine as synchronous per caller.
func (e *Engine) acquire(mint solana.PublicKey) error {
	if !e.limiterFor(mint).Allow() {
		return types.ErrRateLimited
	}
	return nil
}

// withPool runs fn against a private copy of a pool's current record,
// publishing the copy via store.PutPool only if fn succeeds. The pool's
// mutex is held for the duration, serializing every command against the
// same mint (spec §5). Callers that also need to read or write a Position
// record as part of the same command (leverage_swap, close_position,
// liquidate) must do so from inside fn, under the same lock, so the
// command is atomic with respect to both the Pool and the Position it
// touches rather than only serialized at the pool-mutation step. Returns
// the published pool on success.
func (e *Engine) withPool(mint solana.PublicKey, fn func(*store.Pool) error) (*store.Pool, error) {
	mu := e.store.PoolMutex(mint)
	mu.Lock()
	defer mu.Unlock()

	record := e.store.GetPool(mint)
	if record == nil {
		return nil, types.ErrPoolNotFound
	}
	working := *record
	if err := fn(&working); err != nil {
		return nil, err
	}
	e.store.PutPool(mint, &working)
	return &working, nil
}

func (e *Engine) audit(mint solana.PublicKey, command string, now int64, summary string) {
	e.store.AppendAudit(mint, store.AuditEntry{Command: command, Timestamp: now, ResultSummary: summary})
}

// positionPDA derives the externally-visible position identity for
// events, so observers see the same address the PDA-derivation contract
// of spec §6 promises rather than an internal storage handle.
func positionPDA(pos *store.Position) solana.PublicKey {
	addr, _, err := types.DerivePositionAddress(pos.Pool, pos.Owner, pos.Nonce)
	if err != nil {
		return pos.Owner
	}
	return addr
}

// LaunchDirect implements spec §6's launch_direct.
func (e *Engine) LaunchDirect(args types.LaunchDirectArgs, now int64) (p *store.Pool, err error) {
	defer func() { observeCommand("launch_direct", err) }()

	mu := e.store.PoolMutex(args.Mint)
	mu.Lock()
	defer mu.Unlock()

	if e.store.GetPool(args.Mint) != nil {
		return nil, types.ErrPoolAlreadyLive
	}
	if err = e.acquire(args.Mint); err != nil {
		return nil, err
	}

	p, err = launch.Direct(args, e.cfg)
	if err != nil {
		return nil, err
	}
	p.LastUpdatedTimestamp = now
	e.store.PutPool(args.Mint, p)
	e.audit(args.Mint, "launch_direct", now, "pool launched live")
	e.sink.Emit(events.PoolLaunched{Mint: args.Mint, InitialBase: args.InitialBase})
	return p, nil
}

// LaunchOnCurve implements spec §6's launch_on_curve.
func (e *Engine) LaunchOnCurve(args types.LaunchOnCurveArgs, now int64) (p *store.Pool, curve *store.BondingCurve, err error) {
	defer func() { observeCommand("launch_on_curve", err) }()

	mu := e.store.PoolMutex(args.Mint)
	mu.Lock()
	defer mu.Unlock()

	if e.store.GetPool(args.Mint) != nil {
		return nil, nil, types.ErrPoolAlreadyLive
	}
	if err = e.acquire(args.Mint); err != nil {
		return nil, nil, err
	}

	p, curve, err = launch.OnCurve(args, e.cfg)
	if err != nil {
		return nil, nil, err
	}
	e.store.PutPool(args.Mint, p)
	e.store.PutBondingCurve(args.Mint, curve)
	e.audit(args.Mint, "launch_on_curve", now, "bonding curve launched")
	slopeM, _ := bondingcurve.SlopeM(curve.TargetBase, curve.TargetTokens)
	e.sink.Emit(events.BondingCurveLaunched{Mint: args.Mint, TargetBase: curve.TargetBase, TargetTokens: curve.TargetTokens, SlopeM: slopeM})
	return p, curve, nil
}

// CurveSwapResult reports the outcome of a bonding-curve trade, including
// whether it triggered graduation.
type CurveSwapResult struct {
	AmountOut uint64
	Refund    uint64
	Graduated bool
}

// SwapOnCurve implements spec §6's swap_on_curve, detecting graduation
// and promoting the pool in the same locked section (the non-callback
// design recorded in DESIGN.md: bondingcurve.Buy only flags graduation,
// the engine performs it).
func (e *Engine) SwapOnCurve(args types.SwapOnCurveArgs, now int64) (res *CurveSwapResult, err error) {
	defer func() { observeCommand("swap_on_curve", err) }()

	mu := e.store.PoolMutex(args.Mint)
	mu.Lock()
	defer mu.Unlock()

	if err = e.acquire(args.Mint); err != nil {
		return nil, err
	}

	curveRecord := e.store.GetBondingCurve(args.Mint)
	if curveRecord == nil {
		return nil, types.ErrBondingCurveNotFound
	}
	curveCopy := *curveRecord

	if args.InputIsBase {
		buyRes, buyErr := bondingcurve.Buy(&curveCopy, args.AmountIn)
		if buyErr != nil {
			return nil, buyErr
		}
		res = &CurveSwapResult{AmountOut: buyRes.TokensOut, Refund: buyRes.Refund, Graduated: buyRes.Graduated}
	} else {
		sellRes, sellErr := bondingcurve.Sell(&curveCopy, args.AmountIn)
		if sellErr != nil {
			return nil, sellErr
		}
		res = &CurveSwapResult{AmountOut: sellRes.BaseOut}
	}

	e.store.PutBondingCurve(args.Mint, &curveCopy)
	e.audit(args.Mint, "swap_on_curve", now, "curve trade executed")
	e.sink.Emit(events.BondingCurveSwapped{
		Mint: args.Mint, IsBuy: args.InputIsBase, In: args.AmountIn, Out: res.AmountOut,
		TokensSoldAfter: curveCopy.TokensSold, BaseRaisedAfter: curveCopy.BaseRaised,
	})

	if res.Graduated {
		poolRecord := e.store.GetPool(args.Mint)
		if poolRecord == nil {
			return nil, types.ErrPoolNotFound
		}
		poolCopy := *poolRecord
		if err = launch.Graduate(&poolCopy, &curveCopy, now); err != nil {
			return nil, err
		}
		e.store.PutPool(args.Mint, &poolCopy)
		e.store.PutBondingCurve(args.Mint, &curveCopy)
		e.store.DeleteBondingCurve(args.Mint)
		e.audit(args.Mint, "graduate", now, "curve graduated to live pool")
		e.sink.Emit(events.BondingCurveGraduated{
			Mint: args.Mint, BaseRaisedFinal: curveCopy.BaseRaised, LPTokens: poolCopy.EffectiveTokenReserve,
		})
	}
	return res, nil
}

// Swap implements the live-pool spot trade.
func (e *Engine) Swap(args types.SwapArgs) (amountOut uint64, err error) {
	defer func() { observeCommand("swap", err) }()

	if err = e.acquire(args.Mint); err != nil {
		return 0, err
	}
	p, err := e.withPool(args.Mint, func(working *store.Pool) error {
		var innerErr error
		amountOut, innerErr = position.Swap(working, args)
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	e.audit(args.Mint, "swap", args.Now, "spot swap executed")
	observePoolGauges(args.Mint.String(), p)
	e.sink.Emit(events.Swapped{Mint: args.Mint, In: args.AmountIn, Out: amountOut, InputIsBase: args.InputIsBase})
	return amountOut, nil
}

// LeverageSwap implements leverage_swap (open a leveraged position). The
// duplicate-nonce check and the store.PutPosition write both happen inside
// withPool's locked section, alongside the pool mutation, so a command
// against a given pool is atomic end-to-end (spec §5) rather than only
// serialized at the pool-mutation step.
func (e *Engine) LeverageSwap(args types.LeverageSwapArgs) (pos *store.Position, err error) {
	defer func() { observeCommand("leverage_swap", err) }()

	if err = e.acquire(args.Mint); err != nil {
		return nil, err
	}
	key := types.PositionKey{Pool: args.Mint, Owner: args.Caller, Nonce: args.Nonce}

	p, err := e.withPool(args.Mint, func(working *store.Pool) error {
		if e.store.GetPosition(key) != nil {
			return types.ErrDuplicateNonce
		}
		var innerErr error
		pos, innerErr = position.Open(working, args.Caller, args)
		if innerErr != nil {
			return innerErr
		}
		if _, innerErr = e.store.PutPosition(pos); innerErr != nil {
			pos = nil
			return innerErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(args.Mint, "leverage_swap", args.Now, "position opened")
	observePoolGauges(args.Mint.String(), p)
	e.sink.Emit(events.PositionOpened{PositionID: positionPDA(pos), IsLong: pos.IsLong, Collateral: pos.Collateral, Size: pos.Size, DeltaK: pos.DeltaK})
	return pos, nil
}

// ClosePosition implements close_position. The position lookup and the
// store.DeletePosition write both happen inside withPool's locked section,
// so two concurrent closes of the same (mint, owner, nonce) cannot both
// observe a live position and both deduct a payout (spec §5).
func (e *Engine) ClosePosition(args types.ClosePositionArgs) (payout uint64, err error) {
	defer func() { observeCommand("close_position", err) }()

	if err = e.acquire(args.Mint); err != nil {
		return 0, err
	}
	key := types.PositionKey{Pool: args.Mint, Owner: args.Owner, Nonce: args.Nonce}
	var pos *store.Position

	p, err := e.withPool(args.Mint, func(working *store.Pool) error {
		pos = e.store.GetPosition(key)
		if pos == nil {
			return types.ErrPositionNotFound
		}
		var innerErr error
		payout, innerErr = position.Close(working, pos, args.Caller, args.Now)
		if innerErr != nil {
			return innerErr
		}
		e.store.DeletePosition(key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.audit(args.Mint, "close_position", args.Now, "position closed")
	observePoolGauges(args.Mint.String(), p)
	e.sink.Emit(events.PositionClosed{PositionID: positionPDA(pos), Payout: payout})
	return payout, nil
}

// Liquidate implements liquidate. As with ClosePosition, the lookup and the
// store.DeletePosition write are both inside withPool's locked section.
func (e *Engine) Liquidate(args types.LiquidateArgs) (payout uint64, err error) {
	defer func() { observeCommand("liquidate", err) }()

	if err = e.acquire(args.Mint); err != nil {
		return 0, err
	}
	key := types.PositionKey{Pool: args.Mint, Owner: args.Owner, Nonce: args.Nonce}
	var pos *store.Position

	p, err := e.withPool(args.Mint, func(working *store.Pool) error {
		pos = e.store.GetPosition(key)
		if pos == nil {
			return types.ErrPositionNotFound
		}
		var innerErr error
		payout, innerErr = position.Liquidate(working, pos, args.Now)
		if innerErr != nil {
			return innerErr
		}
		e.store.DeletePosition(key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.audit(args.Mint, "liquidate", args.Now, "position liquidated")
	observePoolGauges(args.Mint.String(), p)
	e.sink.Emit(events.PositionLiquidated{PositionID: positionPDA(pos), Liquidator: args.Caller, Reward: payout})
	return payout, nil
}

// Store exposes the underlying store for read-only callers (CLI inspect,
// pkg/quote).
func (e *Engine) Store() *store.Store {
	return e.store
}
