package store

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/types"
)

// Metadata carries the descriptive fields launch_direct/launch_on_curve
// accept but that spec §3's data model never gives a storage home to
// (SPEC_FULL.md §6).
type Metadata struct {
	Name        string
	Ticker      string
	MetadataURI string
}

// Pool is the on-record representation of spec §3's Pool, serialized the
// way the teacher's generated account types are: an 8-byte discriminator
// followed by a Borsh-encoded body.
type Pool struct {
	Authority             solana.PublicKey
	TokenMint             solana.PublicKey
	TokenVault            solana.PublicKey
	SolReserve            uint64
	TokenReserve          uint64
	EffectiveSolReserve   uint64
	EffectiveTokenReserve uint64
	TotalDeltaKLongs      fixedpoint.U128
	TotalDeltaKShorts     fixedpoint.U128
	CumulativeFundingAcc  uint64
	LastUpdatedTimestamp  int64
	EmaPrice              uint64
	EmaInitialized        bool
	FundingConstantC      uint64
	LiqDivergenceThreshPct uint64
	Status                types.PoolStatus
	Meta                  Metadata
}

var poolDiscriminator = []byte{0x50, 0x4f, 0x4f, 0x4c, 0x00, 0x00, 0x00, 0x01}

// Marshal encodes the pool record to its account-bytes representation.
func (p *Pool) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(poolDiscriminator)
	if err := bin.NewBorshEncoder(buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode pool: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a pool record from its account-bytes representation.
func (p *Pool) Unmarshal(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("pool: data too short")
	}
	if !bytes.Equal(data[:8], poolDiscriminator) {
		return fmt.Errorf("pool: discriminator mismatch")
	}
	return bin.NewBorshDecoder(data[8:]).Decode(p)
}

// BondingCurve is the on-record representation of spec §3's BondingCurve.
type BondingCurve struct {
	Mint         solana.PublicKey
	SlopeM       uint64
	TokensSold   uint64
	BaseRaised   uint64
	TargetBase   uint64
	TargetTokens uint64
	Status       types.BondingCurveStatus
	Meta         Metadata
}

var bondingCurveDiscriminator = []byte{0x42, 0x43, 0x52, 0x56, 0x00, 0x00, 0x00, 0x01}

func (c *BondingCurve) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(bondingCurveDiscriminator)
	if err := bin.NewBorshEncoder(buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode bonding curve: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *BondingCurve) Unmarshal(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("bonding curve: data too short")
	}
	if !bytes.Equal(data[:8], bondingCurveDiscriminator) {
		return fmt.Errorf("bonding curve: discriminator mismatch")
	}
	return bin.NewBorshDecoder(data[8:]).Decode(c)
}

// Position is the on-record representation of spec §3's Position.
type Position struct {
	ID                      [16]byte // opaque handle, see store.NewPositionID
	Authority               solana.PublicKey
	Pool                    solana.PublicKey
	Owner                   solana.PublicKey
	Nonce                   uint64
	IsLong                  bool
	Collateral              uint64
	Size                    uint64
	DeltaK                  fixedpoint.U128
	EntryFundingAccumulator uint64
}

var positionDiscriminator = []byte{0x50, 0x4f, 0x53, 0x4e, 0x00, 0x00, 0x00, 0x01}

func (p *Position) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(positionDiscriminator)
	if err := bin.NewBorshEncoder(buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode position: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Position) Unmarshal(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("position: data too short")
	}
	if !bytes.Equal(data[:8], positionDiscriminator) {
		return fmt.Errorf("position: discriminator mismatch")
	}
	return bin.NewBorshDecoder(data[8:]).Decode(p)
}

// AuthorityID returns the position's stored authority as a types.Authority.
func (p *Position) AuthorityID() types.Authority {
	return types.NewAuthority(p.Authority)
}
