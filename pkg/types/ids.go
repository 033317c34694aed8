package types

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// EngineProgramID is the address the engine's records are namespaced
// under when deriving PDAs. The actual on-chain program layout,
// signature checks, and token-program plumbing are out of scope (spec
// §1); this identity exists only so the external-interface contract in
// §6 ("PDA derivation") has a concrete seed space to derive addresses
// from.
var EngineProgramID = solana.MustPublicKeyFromBase58("AMMCore11111111111111111111111111111111111")

// PDA seeds, mirroring the teacher's SeedXxx constants.
const (
	SeedPool         = "pool"
	SeedBondingCurve = "bonding-curve"
	SeedTokenVault   = "token-vault"
	SeedPosition     = "position"
)

// DerivePoolAddress derives the deterministic Pool PDA for a token mint.
func DerivePoolAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SeedPool), mint.Bytes()}, EngineProgramID)
}

// DeriveBondingCurveAddress derives the BondingCurve PDA for a token mint.
func DeriveBondingCurveAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SeedBondingCurve), mint.Bytes()}, EngineProgramID)
}

// DeriveTokenVaultAddress derives the token custody PDA for a token mint.
func DeriveTokenVaultAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SeedTokenVault), mint.Bytes()}, EngineProgramID)
}

// DerivePositionAddress derives a Position PDA keyed by (pool, owner,
// nonce), matching spec §3's "keyed by (pool, owner, nonce) so a single
// owner can hold many positions."
func DerivePositionAddress(pool, owner solana.PublicKey, nonce uint64) (solana.PublicKey, uint8, error) {
	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], nonce)
	return solana.FindProgramAddress(
		[][]byte{[]byte(SeedPosition), pool.Bytes(), owner.Bytes(), nonceBytes[:]},
		EngineProgramID,
	)
}

// PositionKey is the logical (pool, owner, nonce) identity of a position
// used for in-process storage lookups (see pkg/store), kept distinct from
// the on-chain PDA so the store does not need to recompute PDAs for every
// read.
type PositionKey struct {
	Pool  solana.PublicKey
	Owner solana.PublicKey
	Nonce uint64
}
