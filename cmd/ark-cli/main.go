package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	arksdk "github.com/ark-network/ark-sdk"
	filestore "github.com/ark-network/ark-sdk/store/file"
	"github.com/ark-network/ark-sdk/types"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	version = "alpha"

	cntx         = context.Background()
	arkSdkClient arksdk.ArkClient
	configStore  types.ConfigStore
	cliCfg       *cliConfig
)

var (
	initCommand = cli.Command{
		Name:  "init",
		Usage: "Initialize the wallet with an encryption password and connect it to a coordinator",
		Action: func(ctx *cli.Context) error {
			return initWallet(ctx)
		},
		Flags: []cli.Flag{&passwordFlag, &privateKeyFlag, &urlFlag, &explorerFlag},
	}

	configCommand = cli.Command{
		Name:  "config",
		Usage: "Shows the coordinator parameters stored at init time",
		Action: func(ctx *cli.Context) error {
			return showConfig(ctx)
		},
	}

	receiveCommand = cli.Command{
		Name:  "receive",
		Usage: "Shows offchain, boarding and onchain addresses",
		Action: func(ctx *cli.Context) error {
			return receive(ctx)
		},
	}

	balanceCommand = cli.Command{
		Name:  "balance",
		Usage: "Shows the onchain and offchain balance of the wallet",
		Action: func(ctx *cli.Context) error {
			return balance(ctx)
		},
	}

	vtxosCommand = cli.Command{
		Name:  "vtxos",
		Usage: "Lists the spendable and spent vtxos of the wallet",
		Action: func(ctx *cli.Context) error {
			return vtxos(ctx)
		},
	}

	historyCommand = cli.Command{
		Name:  "history",
		Usage: "Shows the transaction history of the wallet",
		Action: func(ctx *cli.Context) error {
			return history(ctx)
		},
	}

	roundCommand = cli.Command{
		Name:  "round",
		Usage: "Shows the details of a round",
		Action: func(ctx *cli.Context) error {
			return round(ctx)
		},
		Flags: []cli.Flag{&roundTxidFlag},
	}

	dumpCommand = cli.Command{
		Name:  "dump-privkey",
		Usage: "Dumps the private key of the wallet",
		Action: func(ctx *cli.Context) error {
			return dumpPrivKey(ctx)
		},
		Flags: []cli.Flag{&passwordFlag},
	}
)

var (
	passwordFlag = cli.StringFlag{
		Name:     "password",
		Usage:    "password to unlock the wallet",
		Required: false,
		Hidden:   true,
	}
	privateKeyFlag = cli.StringFlag{
		Name:  "prvkey",
		Usage: "optional, private key to encrypt",
	}
	urlFlag = cli.StringFlag{
		Name:     "server-url",
		Usage:    "the url of the coordinator to connect to",
		Required: true,
	}
	explorerFlag = cli.StringFlag{
		Name:  "explorer",
		Usage: "the url of the explorer to use",
	}
	roundTxidFlag = cli.StringFlag{
		Name:     "txid",
		Usage:    "the txid of the round to fetch",
		Required: true,
	}
)

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "Ark CLI"
	app.Usage = "ark wallet command line interface"
	app.Commands = append(
		app.Commands,
		&balanceCommand,
		&configCommand,
		&dumpCommand,
		&historyCommand,
		&initCommand,
		&receiveCommand,
		&roundCommand,
		&vtxosCommand,
	)

	app.Before = func(ctx *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cliCfg = cfg
		log.SetLevel(log.Level(cfg.LogLevel))
		log.Debugf("using datadir %s", cfg.Datadir)

		store, err := filestore.NewConfigStore(cfg.Datadir)
		if err != nil {
			return err
		}
		configStore = store

		sdk, err := arksdk.Load(configStore)
		if err != nil {
			if errors.Is(err, arksdk.ErrNotConnected) {
				return nil
			}
			return err
		}
		arkSdkClient = sdk

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func initWallet(ctx *cli.Context) error {
	if arkSdkClient != nil {
		return fmt.Errorf("wallet already initialized")
	}

	password, err := readPassword(ctx)
	if err != nil {
		return err
	}

	sdk, err := arksdk.New(arksdk.InitArgs{
		ClientType:  arksdk.GrpcClient,
		WalletType:  arksdk.SingleKeyWallet,
		ServerUrl:   ctx.String(urlFlag.Name),
		ExplorerURL: explorerURL(ctx.String(explorerFlag.Name), cliCfg),
		Password:    string(password),
		Seed:        ctx.String(privateKeyFlag.Name),
	}, configStore)
	if err != nil {
		return err
	}

	if err := sdk.Connect(cntx); err != nil {
		return err
	}

	arkSdkClient = sdk
	fmt.Println("wallet initialized")
	return nil
}

func showConfig(_ *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	cfg, err := arkSdkClient.GetConfigData(cntx)
	if err != nil {
		return err
	}

	return printJSON(cfg)
}

func receive(_ *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	offchainAddr, boardingAddr, onchainAddr, err := arkSdkClient.Receive(cntx)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"offchain_address": offchainAddr,
		"boarding_address": boardingAddr,
		"onchain_address":  onchainAddr,
	})
}

func balance(_ *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	bal, err := arkSdkClient.Balance(cntx)
	if err != nil {
		return err
	}

	return printJSON(bal)
}

func vtxos(_ *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	spendable, err := arkSdkClient.SpendableVtxos(cntx)
	if err != nil {
		return err
	}

	_, spent, err := arkSdkClient.ListVtxos(cntx)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"spendable": spendable,
		"spent":     spent,
	})
}

func history(_ *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	txs, err := arkSdkClient.TransactionHistory(cntx)
	if err != nil {
		return err
	}

	return printJSON(txs)
}

func round(ctx *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	r, err := arkSdkClient.GetRound(cntx, ctx.String(roundTxidFlag.Name))
	if err != nil {
		return err
	}

	return printJSON(r)
}

func dumpPrivKey(ctx *cli.Context) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	password, err := readPassword(ctx)
	if err != nil {
		return err
	}
	if err := arkSdkClient.Unlock(cntx, string(password)); err != nil {
		return err
	}

	privateKey, err := arkSdkClient.Dump(cntx)
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"private_key": privateKey,
	})
}

// explorerURL resolves the explorer to use at init time, the flag takes
// precedence over ARK_CLI_EXPLORER_URL.
func explorerURL(flagValue string, cfg *cliConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil {
		return cfg.ExplorerURL
	}
	return ""
}

func requireInitialized() error {
	if arkSdkClient == nil {
		return fmt.Errorf("wallet not initialized, run 'init' first")
	}
	return nil
}

func readPassword(ctx *cli.Context) ([]byte, error) {
	password := []byte(ctx.String("password"))

	if len(password) == 0 {
		fmt.Print("unlock your wallet with password: ")
		var err error
		password, err = term.ReadPassword(syscall.Stdin)
		fmt.Println() // new line
		if err != nil {
			return nil, err
		}
	}

	return password, nil
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}
