package main

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// parsePubkey mirrors the teacher's parsePubkey helper used throughout
// pumpamm_cmd.go to turn a flag string into a solana.PublicKey with a
// field name in the error.
func parsePubkey(field, s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", field)
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: invalid pubkey %q: %w", field, s, err)
	}
	return pk, nil
}

// nowOrFlag resolves the --now override, defaulting to the wall clock;
// commands accept an override so scripted scenarios can advance time
// deterministically (e.g. to let funding accrue) without sleeping.
func nowOrFlag(now int64) int64 {
	if now > 0 {
		return now
	}
	return time.Now().Unix()
}
