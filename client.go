package arksdk

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/ark-network/ark-sdk/client"
	grpcclient "github.com/ark-network/ark-sdk/client/grpc"
	"github.com/ark-network/ark-sdk/common"
	"github.com/ark-network/ark-sdk/common/descriptor"
	"github.com/ark-network/ark-sdk/explorer"
	"github.com/ark-network/ark-sdk/internal/utils"
	"github.com/ark-network/ark-sdk/types"
	"github.com/ark-network/ark-sdk/wallet"
	singlekeywallet "github.com/ark-network/ark-sdk/wallet/singlekey"
	walletstore "github.com/ark-network/ark-sdk/wallet/singlekey/store"
	filestore "github.com/ark-network/ark-sdk/wallet/singlekey/store/file"
	inmemorystore "github.com/ark-network/ark-sdk/wallet/singlekey/store/inmemory"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// transport
	GrpcClient = client.GrpcClient
	// wallet
	SingleKeyWallet = wallet.SingleKeyWallet
	// store
	FileStore     = types.FileStore
	InMemoryStore = types.InMemoryStore
)

var (
	ErrAlreadyConnected = fmt.Errorf("client already connected")
	ErrNotConnected     = fmt.Errorf("client not connected")
)

var (
	supportedWallets = utils.SupportedType[struct{}]{
		wallet.SingleKeyWallet: {},
	}
	supportedClients = utils.SupportedType[clientFactory]{
		client.GrpcClient: grpcclient.NewClient,
	}
	defaultExplorers = utils.SupportedType[string]{
		common.Bitcoin.Name:        "https://blockstream.info/api",
		common.BitcoinTestNet.Name: "https://blockstream.info/testnet/api",
		common.BitcoinSigNet.Name:  "https://mempool.space/signet/api",
		common.BitcoinRegTest.Name: "http://localhost:3000",
	}
)

type clientFactory func(serverUrl string) (client.TransportClient, error)

// InitArgs carries everything needed to connect a fresh session.
type InitArgs struct {
	ClientType  string
	WalletType  string
	ServerUrl   string
	ExplorerURL string
	Password    string
	Seed        string
}

func (a InitArgs) validate() error {
	if len(a.ClientType) <= 0 {
		return fmt.Errorf("missing client type")
	}
	if !supportedClients.Supports(a.ClientType) {
		return fmt.Errorf("client type not supported, please select one of: %s", supportedClients)
	}

	if len(a.WalletType) <= 0 {
		return fmt.Errorf("missing wallet type")
	}
	if !supportedWallets.Supports(a.WalletType) {
		return fmt.Errorf("wallet type not supported, please select one of: %s", supportedWallets)
	}

	if len(a.ServerUrl) <= 0 {
		return fmt.Errorf("missing server url")
	}

	if len(a.Password) <= 0 {
		return fmt.Errorf("missing password")
	}
	return nil
}

type arkClient struct {
	*types.Config
	store    types.ConfigStore
	wallet   wallet.WalletService
	explorer explorer.Explorer
	client   client.TransportClient

	initArgs InitArgs

	// overridable in tests, defaults to time.Now
	now func() time.Time
}

func (a *arkClient) timeNow() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// New returns an unconnected client, Connect performs the handshake with the
// coordinator and persists its parameters to the given config store.
func New(args InitArgs, storeSvc types.ConfigStore) (ArkClient, error) {
	if storeSvc == nil {
		return nil, fmt.Errorf("missing config store")
	}

	data, err := storeSvc.GetData(context.Background())
	if err != nil {
		return nil, err
	}
	if data != nil {
		return nil, ErrAlreadyConnected
	}

	if err := args.validate(); err != nil {
		return nil, fmt.Errorf("invalid args: %s", err)
	}

	return &arkClient{store: storeSvc, initArgs: args}, nil
}

// Load rebuilds a connected session from a previously persisted config. The
// wallet key is read back, still encrypted, from the wallet store.
func Load(storeSvc types.ConfigStore) (ArkClient, error) {
	if storeSvc == nil {
		return nil, fmt.Errorf("missing config store")
	}

	data, err := storeSvc.GetData(context.Background())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotConnected
	}

	clientSvc, err := getClient(supportedClients, data.ClientType, data.ServerUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport client: %s", err)
	}

	explorerSvc, err := getExplorer(data.ExplorerURL, data.Network.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to setup explorer: %s", err)
	}

	walletSvc, err := getWallet(storeSvc, data, supportedWallets)
	if err != nil {
		return nil, err
	}

	return &arkClient{
		Config:   data,
		store:    storeSvc,
		wallet:   walletSvc,
		explorer: explorerSvc,
		client:   clientSvc,
	}, nil
}

func (a *arkClient) GetConfigData(_ context.Context) (*types.Config, error) {
	if a.Config == nil {
		return nil, ErrNotConnected
	}
	return a.Config, nil
}

func (a *arkClient) Connect(ctx context.Context) error {
	if a.Config != nil {
		return ErrAlreadyConnected
	}

	args := a.initArgs

	clientSvc, err := getClient(supportedClients, args.ClientType, args.ServerUrl)
	if err != nil {
		return fmt.Errorf("failed to setup transport client: %s", err)
	}

	info, err := clientSvc.GetInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %s", err)
	}

	explorerSvc, err := getExplorer(args.ExplorerURL, info.Network)
	if err != nil {
		return fmt.Errorf("failed to setup explorer: %s", err)
	}

	network := utils.NetworkFromString(info.Network)

	buf, err := hex.DecodeString(info.Pubkey)
	if err != nil {
		return fmt.Errorf("failed to parse server pubkey: %s", err)
	}
	serverPubkey, err := secp256k1.ParsePubKey(buf)
	if err != nil {
		return fmt.Errorf("failed to parse server pubkey: %s", err)
	}

	storeData := types.Config{
		ServerUrl:                  args.ServerUrl,
		ServerPubKey:               serverPubkey,
		WalletType:                 args.WalletType,
		ClientType:                 args.ClientType,
		Network:                    network,
		RoundLifetime:              utils.LocktimeFromValue(int(info.RoundLifetime)),
		RoundInterval:              info.RoundInterval,
		UnilateralExitDelay:        utils.LocktimeFromValue(int(info.UnilateralExitDelay)),
		Dust:                       info.Dust,
		// the coordinator does not advertise a boarding template, the
		// protocol default applies to every wallet
		BoardingDescriptorTemplate: descriptor.BoardingDescriptorTemplate,
		ExplorerURL:                explorerSvc.BaseUrl(),
	}

	walletSvc, err := getWallet(a.store, &storeData, supportedWallets)
	if err != nil {
		return err
	}

	if err := a.store.AddData(ctx, storeData); err != nil {
		return err
	}

	if _, err := walletSvc.Create(ctx, args.Password, args.Seed); err != nil {
		//nolint:all
		a.store.CleanData(ctx)
		return err
	}

	a.Config = &storeData
	a.wallet = walletSvc
	a.explorer = explorerSvc
	a.client = clientSvc

	return nil
}

func (a *arkClient) Unlock(ctx context.Context, password string) error {
	if a.Config == nil {
		return ErrNotConnected
	}
	_, err := a.wallet.Unlock(ctx, password)
	return err
}

func (a *arkClient) Lock(ctx context.Context, password string) error {
	if a.Config == nil {
		return ErrNotConnected
	}
	return a.wallet.Lock(ctx, password)
}

func (a *arkClient) IsLocked(_ context.Context) bool {
	if a.wallet == nil {
		return true
	}
	return a.wallet.IsLocked()
}

func (a *arkClient) Dump(ctx context.Context) (string, error) {
	if a.Config == nil {
		return "", ErrNotConnected
	}
	return a.wallet.Dump(ctx)
}

func (a *arkClient) Receive(ctx context.Context) (string, string, string, error) {
	if a.Config == nil {
		return "", "", "", ErrNotConnected
	}

	offchainAddr, boardingAddr, onchainAddr, err := a.wallet.NewAddress(ctx, false)
	if err != nil {
		return "", "", "", err
	}

	return offchainAddr, boardingAddr, onchainAddr, nil
}

func (a *arkClient) ListVtxos(
	ctx context.Context,
) (spendableVtxos, spentVtxos []client.Vtxo, err error) {
	if a.Config == nil {
		return nil, nil, ErrNotConnected
	}

	offchainAddrs, _, _, err := a.wallet.GetAddresses(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, addr := range offchainAddrs {
		spendable, spent, err := a.client.ListVtxos(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		spendableVtxos = append(spendableVtxos, a.withCreatedAt(spendable)...)
		spentVtxos = append(spentVtxos, a.withCreatedAt(spent)...)
	}

	return spendableVtxos, spentVtxos, nil
}

// SpendableVtxos reconciles the coordinator's spendable set against chain
// state. A vtxo whose outpoint is confirmed on-chain and whose exit path has
// matured is excluded, it is past the safe cooperative-spend window and must
// be claimed unilaterally instead.
func (a *arkClient) SpendableVtxos(ctx context.Context) ([]client.Vtxo, error) {
	if a.Config == nil {
		return nil, ErrNotConnected
	}

	offchainAddrs, _, redemptionAddrs, err := a.wallet.GetAddresses(ctx)
	if err != nil {
		return nil, err
	}

	now := a.timeNow()

	spendable := make([]client.Vtxo, 0)
	for i, addr := range offchainAddrs {
		vtxos, _, err := a.client.ListVtxos(ctx, addr)
		if err != nil {
			return nil, err
		}

		explorerUtxos, err := a.explorer.FindOutpoints(redemptionAddrs[i])
		if err != nil {
			return nil, err
		}

		for _, vtxo := range a.withCreatedAt(vtxos) {
			if a.canBeClaimedUnilaterally(vtxo, explorerUtxos, now) {
				continue
			}
			spendable = append(spendable, vtxo)
		}
	}

	return spendable, nil
}

// canBeClaimedUnilaterally reports whether the vtxo outpoint is confirmed
// on-chain and the relative exit delay has elapsed since its confirmation.
// Unconfirmed or chain-unknown outpoints cannot have started the timelock.
func (a *arkClient) canBeClaimedUnilaterally(
	vtxo client.Vtxo, explorerUtxos []explorer.ExplorerUtxo, now time.Time,
) bool {
	for _, utxo := range explorerUtxos {
		if utxo.Txid != vtxo.Txid || utxo.Vout != vtxo.VOut {
			continue
		}
		if !utxo.Confirmed {
			return false
		}

		exitableAt := time.Unix(utxo.Blocktime, 0).Add(a.UnilateralExitDelay.Duration())
		return !now.Before(exitableAt)
	}
	return false
}

func (a *arkClient) OffchainBalance(ctx context.Context) (*OffchainBalance, error) {
	spendable, err := a.SpendableVtxos(ctx)
	if err != nil {
		return nil, err
	}

	balance := &OffchainBalance{}
	for _, vtxo := range spendable {
		if vtxo.Pending {
			balance.Pending += vtxo.Amount
			continue
		}
		balance.Confirmed += vtxo.Amount
	}

	return balance, nil
}

type balanceRes struct {
	offchainBalance *OffchainBalance
	onchainBalance  uint64
	err             error
}

func (a *arkClient) Balance(ctx context.Context) (*Balance, error) {
	if a.Config == nil {
		return nil, ErrNotConnected
	}

	_, boardingAddrs, redemptionAddrs, err := a.wallet.GetAddresses(ctx)
	if err != nil {
		return nil, err
	}

	// without boarding addresses no worker is spawned and nothing would
	// ever land on the result channel
	if len(boardingAddrs) == 0 {
		offchainBalance, err := a.OffchainBalance(ctx)
		if err != nil {
			return nil, err
		}
		return &Balance{OffchainBalance: *offchainBalance}, nil
	}

	const nbWorkers = 3
	wg := &sync.WaitGroup{}
	wg.Add(nbWorkers * len(boardingAddrs))

	chRes := make(chan balanceRes, nbWorkers*len(boardingAddrs))
	for i := range boardingAddrs {
		boardingAddr := boardingAddrs[i]
		redemptionAddr := redemptionAddrs[i]

		go func() {
			defer wg.Done()
			balance, err := a.OffchainBalance(ctx)
			if err != nil {
				chRes <- balanceRes{err: err}
				return
			}
			chRes <- balanceRes{offchainBalance: balance}
		}()

		getOnchainBalance := func(addr string) {
			defer wg.Done()

			balance, err := a.explorer.GetBalance(addr)
			if err != nil {
				chRes <- balanceRes{err: err}
				return
			}
			chRes <- balanceRes{onchainBalance: balance}
		}

		go getOnchainBalance(boardingAddr)
		go getOnchainBalance(redemptionAddr)
	}

	wg.Wait()

	response := &Balance{}
	count := 0
	for res := range chRes {
		if res.err != nil {
			return nil, res.err
		}
		if res.offchainBalance != nil {
			response.OffchainBalance = *res.offchainBalance
		}
		response.OnchainBalance += res.onchainBalance

		count++
		if count == nbWorkers*len(boardingAddrs) {
			break
		}
	}

	return response, nil
}

func (a *arkClient) GetRound(ctx context.Context, roundTxid string) (*client.Round, error) {
	if a.Config == nil {
		return nil, ErrNotConnected
	}
	return a.client.GetRound(ctx, roundTxid)
}

func (a *arkClient) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

// withCreatedAt derives the creation time of each vtxo from its expiration,
// the coordinator reports expirations only.
func (a *arkClient) withCreatedAt(vtxos []client.Vtxo) []client.Vtxo {
	out := make([]client.Vtxo, 0, len(vtxos))
	for _, vtxo := range vtxos {
		if vtxo.CreatedAt.IsZero() && !vtxo.ExpiresAt.IsZero() {
			vtxo.CreatedAt = getCreatedAtFromExpiry(a.RoundLifetime, vtxo.ExpiresAt)
		}
		out = append(out, vtxo)
	}
	return out
}

func getCreatedAtFromExpiry(roundLifetime common.RelativeLocktime, expiry time.Time) time.Time {
	return expiry.Add(-roundLifetime.Duration())
}

func getClient(
	supportedClients utils.SupportedType[clientFactory], clientType, serverUrl string,
) (client.TransportClient, error) {
	factory, ok := supportedClients[clientType]
	if !ok {
		return nil, fmt.Errorf("unknown client type %s", clientType)
	}
	return factory(serverUrl)
}

func getExplorer(explorerURL, network string) (explorer.Explorer, error) {
	if explorerURL == "" {
		var ok bool
		if explorerURL, ok = defaultExplorers[network]; !ok {
			return nil, fmt.Errorf("invalid network")
		}
	}
	return explorer.NewExplorer(explorerURL), nil
}

func getWallet(
	storeSvc types.ConfigStore, data *types.Config,
	supportedWallets utils.SupportedType[struct{}],
) (wallet.WalletService, error) {
	switch data.WalletType {
	case wallet.SingleKeyWallet:
		return getSingleKeyWallet(storeSvc)
	default:
		return nil, fmt.Errorf(
			"unsupported wallet type '%s', please select one of: %s",
			data.WalletType, supportedWallets,
		)
	}
}

func getSingleKeyWallet(configStore types.ConfigStore) (wallet.WalletService, error) {
	walletStore, err := getWalletStore(configStore.GetType(), configStore.GetDatadir())
	if err != nil {
		return nil, err
	}
	return singlekeywallet.NewBitcoinWallet(configStore, walletStore)
}

func getWalletStore(storeType, datadir string) (walletstore.WalletStore, error) {
	switch storeType {
	case types.InMemoryStore:
		return inmemorystore.NewWalletStore()
	case types.FileStore:
		return filestore.NewWalletStore(datadir)
	default:
		return nil, fmt.Errorf("unknown wallet store type")
	}
}
