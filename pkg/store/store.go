// Package store holds the in-process Pool/BondingCurve/Position keyspace
// the engine mutates. It stands in for the on-chain account store the
// specification treats as an external collaborator (spec §1): one record
// per mint, keyed the way PDAs would key them, with per-pool locking that
// realizes the "serialized against other commands on the same pool"
// guarantee of spec §5.
package store

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/ninja0404/ammcore/pkg/types"
)

// auditCapacity bounds the per-pool command history ring buffer
// (SPEC_FULL.md §6 "command audit log").
const auditCapacity = 64

// AuditEntry records one committed command against a pool.
type AuditEntry struct {
	Command       string
	Timestamp     int64
	ResultSummary string
}

type poolSlot struct {
	mu     sync.Mutex
	record *Pool
	audit  []AuditEntry
}

// Store is a concurrency-safe, in-memory keyspace for pools, bonding
// curves, and positions.
type Store struct {
	mapsMu sync.RWMutex
	pools  map[solana.PublicKey]*poolSlot
	curves map[solana.PublicKey]*BondingCurve

	posMu         sync.RWMutex
	positions     map[uuid.UUID]*Position
	positionIndex map[types.PositionKey]uuid.UUID
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		pools:         make(map[solana.PublicKey]*poolSlot),
		curves:        make(map[solana.PublicKey]*BondingCurve),
		positions:     make(map[uuid.UUID]*Position),
		positionIndex: make(map[types.PositionKey]uuid.UUID),
	}
}

// NewPositionID derives a deterministic opaque handle for a
// (pool, owner, nonce) triple, so the same logical position always maps
// to the same storage id without re-deriving a PDA.
func NewPositionID(pool, owner solana.PublicKey, nonce uint64) uuid.UUID {
	seed := make([]byte, 0, 72)
	seed = append(seed, pool.Bytes()...)
	seed = append(seed, owner.Bytes()...)
	var nonceBytes [8]byte
	for i := 0; i < 8; i++ {
		nonceBytes[i] = byte(nonce >> (8 * i))
	}
	seed = append(seed, nonceBytes[:]...)
	return uuid.NewSHA1(uuid.NameSpaceOID, seed)
}

func (s *Store) slot(mint solana.PublicKey, create bool) *poolSlot {
	s.mapsMu.RLock()
	slot, ok := s.pools[mint]
	s.mapsMu.RUnlock()
	if ok || !create {
		return slot
	}

	s.mapsMu.Lock()
	defer s.mapsMu.Unlock()
	if slot, ok = s.pools[mint]; ok {
		return slot
	}
	slot = &poolSlot{}
	s.pools[mint] = slot
	return slot
}

// PoolMutex returns the per-pool mutex used to serialize commands against
// a single mint (spec §5). The mutex is created lazily on first use.
func (s *Store) PoolMutex(mint solana.PublicKey) *sync.Mutex {
	return &s.slot(mint, true).mu
}

// GetPool returns the pool record for a mint, or nil if none exists.
func (s *Store) GetPool(mint solana.PublicKey) *Pool {
	slot := s.slot(mint, false)
	if slot == nil {
		return nil
	}
	return slot.record
}

// PutPool stores (or replaces) the pool record for a mint. Must be called
// while holding that pool's mutex.
func (s *Store) PutPool(mint solana.PublicKey, pool *Pool) {
	s.slot(mint, true).record = pool
}

// GetBondingCurve returns the bonding curve record for a mint, or nil.
func (s *Store) GetBondingCurve(mint solana.PublicKey) *BondingCurve {
	s.mapsMu.RLock()
	defer s.mapsMu.RUnlock()
	return s.curves[mint]
}

// PutBondingCurve stores (or replaces) the bonding curve record for a mint.
func (s *Store) PutBondingCurve(mint solana.PublicKey, curve *BondingCurve) {
	s.mapsMu.Lock()
	defer s.mapsMu.Unlock()
	s.curves[mint] = curve
}

// DeleteBondingCurve removes the bonding curve record for a mint,
// simulating the account-closure spec §4.E describes at graduation.
func (s *Store) DeleteBondingCurve(mint solana.PublicKey) {
	s.mapsMu.Lock()
	defer s.mapsMu.Unlock()
	delete(s.curves, mint)
}

// GetPosition looks up a position by (pool, owner, nonce).
func (s *Store) GetPosition(key types.PositionKey) *Position {
	s.posMu.RLock()
	defer s.posMu.RUnlock()
	id, ok := s.positionIndex[key]
	if !ok {
		return nil
	}
	return s.positions[id]
}

// GetPositionByID looks up a position by its opaque storage handle.
func (s *Store) GetPositionByID(id uuid.UUID) *Position {
	s.posMu.RLock()
	defer s.posMu.RUnlock()
	return s.positions[id]
}

// PutPosition inserts a new position, failing with ErrDuplicateNonce if
// (pool, owner, nonce) is already taken (spec P6).
func (s *Store) PutPosition(pos *Position) (uuid.UUID, error) {
	key := types.PositionKey{Pool: pos.Pool, Owner: pos.Owner, Nonce: pos.Nonce}

	s.posMu.Lock()
	defer s.posMu.Unlock()
	if _, exists := s.positionIndex[key]; exists {
		return uuid.UUID{}, types.ErrDuplicateNonce
	}
	id := NewPositionID(pos.Pool, pos.Owner, pos.Nonce)
	pos.ID = id
	s.positions[id] = pos
	s.positionIndex[key] = id
	return id, nil
}

// DeletePosition removes a position by key, used by close/liquidate to
// simulate the account-closure transition of spec §4.D.
func (s *Store) DeletePosition(key types.PositionKey) {
	s.posMu.Lock()
	defer s.posMu.Unlock()
	id, ok := s.positionIndex[key]
	if !ok {
		return
	}
	delete(s.positions, id)
	delete(s.positionIndex, key)
}

// PositionsByOwner lists every open position a single owner holds on a
// pool (SPEC_FULL.md §6). Nonce uniqueness is enforced separately by the
// (pool, owner, nonce) key index in PutPosition.
func (s *Store) PositionsByOwner(pool, owner solana.PublicKey) []*Position {
	s.posMu.RLock()
	defer s.posMu.RUnlock()
	var out []*Position
	for _, pos := range s.positions {
		if pos.Pool.Equals(pool) && pos.Owner.Equals(owner) {
			out = append(out, pos)
		}
	}
	return out
}

// AppendAudit records a committed command against a pool's bounded
// history ring buffer.
func (s *Store) AppendAudit(mint solana.PublicKey, entry AuditEntry) {
	slot := s.slot(mint, true)
	slot.audit = append(slot.audit, entry)
	if len(slot.audit) > auditCapacity {
		slot.audit = slot.audit[len(slot.audit)-auditCapacity:]
	}
}

// History returns the bounded command history for a pool, oldest first.
// Safe to call without holding the pool's command mutex.
func (s *Store) History(mint solana.PublicKey) []AuditEntry {
	slot := s.slot(mint, false)
	if slot == nil {
		return nil
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	out := make([]AuditEntry, len(slot.audit))
	copy(out, slot.audit)
	return out
}
