package types

import "github.com/gagliardetto/solana-go"

// Authority identifies the on-chain key entitled to act on a record:
// the launcher of a pool (informational only after launch, spec §3) or
// the owner of a position (required for close, spec §4.D). The engine
// never performs a signature check itself (§1 scopes that to the caller);
// Authority only answers "does this key match," leaving verification
// that the caller actually controls the key to the external interface.
type Authority solana.PublicKey

// NewAuthority wraps a public key as an Authority.
func NewAuthority(key solana.PublicKey) Authority {
	return Authority(key)
}

// PublicKey returns the underlying Solana public key.
func (a Authority) PublicKey() solana.PublicKey {
	return solana.PublicKey(a)
}

// Equals reports whether the authority matches the given public key.
func (a Authority) Equals(key solana.PublicKey) bool {
	return solana.PublicKey(a).Equals(key)
}

// IsZero reports whether the authority has never been set.
func (a Authority) IsZero() bool {
	return solana.PublicKey(a).IsZero()
}

// RequireAuthority fails with ErrNotPositionAuthority unless caller matches
// the stored authority.
func RequireAuthority(authority Authority, caller solana.PublicKey) error {
	if !authority.Equals(caller) {
		return ErrNotPositionAuthority
	}
	return nil
}
