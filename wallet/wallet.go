package wallet

import (
	"context"

	"github.com/ark-network/ark-sdk/explorer"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	SingleKeyWallet = "singlekey"
)

type WalletService interface {
	GetType() string
	Create(
		ctx context.Context, password, seed string,
	) (walletSeed string, err error)
	Lock(ctx context.Context, password string) (err error)
	Unlock(ctx context.Context, password string) (alreadyUnlocked bool, err error)
	IsLocked() bool
	Dump(ctx context.Context) (seed string, err error)
	PubKey(ctx context.Context) (*secp256k1.PublicKey, error)
	GetAddresses(
		ctx context.Context,
	) (offchainAddresses, boardingAddresses, redemptionAddresses []string, err error)
	NewAddress(
		ctx context.Context, change bool,
	) (offchainAddr, boardingAddr, onchainAddr string, err error)
	NewBoardingOutput(ctx context.Context) (boardingAddr string, err error)
	SignMessage(ctx context.Context, message []byte) (signature string, err error)
	SignTransaction(
		ctx context.Context, explorerSvc explorer.Explorer, tx string,
	) (signedTx string, err error)
}
