package client

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/ark-network/ark-sdk/common"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	GrpcClient = "grpc"
)

// TransportClient is the client-side view of the coordinator API.
type TransportClient interface {
	GetInfo(ctx context.Context) (*Info, error)
	ListVtxos(ctx context.Context, addr string) (spendable, spent []Vtxo, err error)
	GetRound(ctx context.Context, txid string) (*Round, error)
	Close()
}

type Info struct {
	Pubkey              string
	RoundLifetime       int64
	UnilateralExitDelay int64
	RoundInterval       int64
	Network             string
	Dust                uint64
}

type Outpoint struct {
	Txid string
	VOut uint32
}

func (o Outpoint) Equals(other Outpoint) bool {
	return o.Txid == other.Txid && o.VOut == other.VOut
}

type Vtxo struct {
	Outpoint
	Pubkey    string
	Amount    uint64
	RoundTxid string
	ExpiresAt time.Time
	CreatedAt time.Time
	RedeemTx  string
	Pending   bool
	SpentBy   string
	Spent     bool
}

// Address returns the off-chain ark address the vtxo is locked to.
func (v Vtxo) Address(server *secp256k1.PublicKey, net common.Network) (string, error) {
	pubkeyBytes, err := hex.DecodeString(v.Pubkey)
	if err != nil {
		return "", err
	}

	pubkey, err := schnorr.ParsePubKey(pubkeyBytes)
	if err != nil {
		return "", err
	}

	a := &common.Address{
		HRP:        net.Addr,
		Server:     server,
		VtxoTapKey: pubkey,
	}

	return a.Encode()
}

type RoundStage int

func (s RoundStage) String() string {
	switch s {
	case RoundStageRegistration:
		return "ROUND_STAGE_REGISTRATION"
	case RoundStageFinalization:
		return "ROUND_STAGE_FINALIZATION"
	case RoundStageFinalized:
		return "ROUND_STAGE_FINALIZED"
	case RoundStageFailed:
		return "ROUND_STAGE_FAILED"
	default:
		return "ROUND_STAGE_UNDEFINED"
	}
}

const (
	RoundStageUndefined RoundStage = iota
	RoundStageRegistration
	RoundStageFinalization
	RoundStageFinalized
	RoundStageFailed
)

type Round struct {
	ID        string
	StartedAt *time.Time
	EndedAt   *time.Time
	Tx        string
	Stage     RoundStage
}
