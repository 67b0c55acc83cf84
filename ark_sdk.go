package arksdk

import (
	"context"

	"github.com/ark-network/ark-sdk/client"
	"github.com/ark-network/ark-sdk/types"
)

type ArkClient interface {
	GetConfigData(ctx context.Context) (*types.Config, error)
	Connect(ctx context.Context) error
	Unlock(ctx context.Context, password string) error
	Lock(ctx context.Context, password string) error
	IsLocked(ctx context.Context) bool
	Dump(ctx context.Context) (seed string, err error)
	Receive(ctx context.Context) (offchainAddr, boardingAddr, onchainAddr string, err error)
	ListVtxos(ctx context.Context) (spendable, spent []client.Vtxo, err error)
	SpendableVtxos(ctx context.Context) ([]client.Vtxo, error)
	OffchainBalance(ctx context.Context) (*OffchainBalance, error)
	Balance(ctx context.Context) (*Balance, error)
	TransactionHistory(ctx context.Context) ([]types.Transaction, error)
	GetRound(ctx context.Context, roundTxid string) (*client.Round, error)
	Close()
}

// OffchainBalance partitions the spendable vtxo set on the pending flag.
// Pending vtxos await inclusion in a settlement round, confirmed ones are
// already settled. The chain confirmation state of the underlying outpoint
// plays no role in this partition.
type OffchainBalance struct {
	Pending   uint64
	Confirmed uint64
}

func (b OffchainBalance) Total() uint64 {
	return b.Pending + b.Confirmed
}

type Balance struct {
	OffchainBalance OffchainBalance
	OnchainBalance  uint64
}
