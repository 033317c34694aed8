package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/ninja0404/ammcore/pkg/types"
)

// Snapshot is a JSON-friendly dump of every record in a Store, keyed by
// base58 mint/owner strings. cmd/ammcli uses it to persist state between
// separate invocations (each cobra run is its own process, same as the
// teacher CLI, which relies on the chain itself for that; this engine has
// no chain, so the snapshot file stands in for one). Record bytes reuse
// each type's existing Marshal/Unmarshal so the file holds the same
// account-bytes representation the store would hand a real RPC client.
type Snapshot struct {
	Pools     map[string]string `json:"pools"`     // mint (base58) -> base64(Marshal())
	Curves    map[string]string `json:"curves"`    // mint (base58) -> base64(Marshal())
	Positions []string          `json:"positions"` // base64(Marshal()), one per open position
}

// Dump captures every record currently held by the store.
func (s *Store) Dump() (*Snapshot, error) {
	snap := &Snapshot{
		Pools:  make(map[string]string),
		Curves: make(map[string]string),
	}

	s.mapsMu.RLock()
	mints := make([]solana.PublicKey, 0, len(s.pools))
	for mint := range s.pools {
		mints = append(mints, mint)
	}
	curves := make(map[solana.PublicKey]*BondingCurve, len(s.curves))
	for mint, curve := range s.curves {
		curves[mint] = curve
	}
	s.mapsMu.RUnlock()

	for _, mint := range mints {
		record := s.GetPool(mint)
		if record == nil {
			continue
		}
		bz, err := record.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal pool %s: %w", mint, err)
		}
		snap.Pools[mint.String()] = base64.StdEncoding.EncodeToString(bz)
	}
	for mint, curve := range curves {
		bz, err := curve.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal curve %s: %w", mint, err)
		}
		snap.Curves[mint.String()] = base64.StdEncoding.EncodeToString(bz)
	}

	s.posMu.RLock()
	defer s.posMu.RUnlock()
	for _, pos := range s.positions {
		bz, err := pos.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal position: %w", err)
		}
		snap.Positions = append(snap.Positions, base64.StdEncoding.EncodeToString(bz))
	}

	return snap, nil
}

// Restore replaces the store's contents with the records in a snapshot.
// Positions are re-indexed by (pool, owner, nonce) exactly as PutPosition
// would, without re-checking nonce uniqueness, since the snapshot already
// reflects a valid prior state.
func (s *Store) Restore(snap *Snapshot) error {
	for mintStr, encoded := range snap.Pools {
		mint, err := solana.PublicKeyFromBase58(mintStr)
		if err != nil {
			return fmt.Errorf("pool key %q: %w", mintStr, err)
		}
		bz, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("pool %s: %w", mintStr, err)
		}
		record := &Pool{}
		if err := record.Unmarshal(bz); err != nil {
			return fmt.Errorf("pool %s: %w", mintStr, err)
		}
		s.PutPool(mint, record)
	}

	for mintStr, encoded := range snap.Curves {
		mint, err := solana.PublicKeyFromBase58(mintStr)
		if err != nil {
			return fmt.Errorf("curve key %q: %w", mintStr, err)
		}
		bz, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("curve %s: %w", mintStr, err)
		}
		curve := &BondingCurve{}
		if err := curve.Unmarshal(bz); err != nil {
			return fmt.Errorf("curve %s: %w", mintStr, err)
		}
		s.PutBondingCurve(mint, curve)
	}

	s.posMu.Lock()
	defer s.posMu.Unlock()
	for _, encoded := range snap.Positions {
		bz, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		pos := &Position{}
		if err := pos.Unmarshal(bz); err != nil {
			return fmt.Errorf("position: %w", err)
		}
		id := uuid.UUID(pos.ID)
		s.positions[id] = pos
		s.positionIndex[types.PositionKey{Pool: pos.Pool, Owner: pos.Owner, Nonce: pos.Nonce}] = id
	}
	return nil
}

// SaveFile writes the store's snapshot to path as indented JSON.
func (s *Store) SaveFile(path string) error {
	snap, err := s.Dump()
	if err != nil {
		return err
	}
	bz, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return writeFile(path, bz)
}

// LoadFile reads a snapshot previously written by SaveFile into the
// store. It is a no-op (returns nil) if path does not exist, so the CLI
// can use the same --state-file flag on a pool's first launch.
func (s *Store) LoadFile(path string) error {
	bz, ok, err := readFileIfExists(path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(bz, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s.Restore(&snap)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func readFileIfExists(path string) ([]byte, bool, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return bz, true, nil
}
