package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type cliConfig struct {
	Datadir     string
	ExplorerURL string
	LogLevel    int
}

var (
	Datadir     = "DATADIR"
	ExplorerURL = "EXPLORER_URL"
	LogLevel    = "LOG_LEVEL"

	defaultDatadir  = btcutil.AppDataDir("ark-cli", false)
	defaultLogLevel = int(log.InfoLevel)
)

func loadConfig() (*cliConfig, error) {
	viper.SetEnvPrefix("ARK_CLI")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(LogLevel, defaultLogLevel)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	return &cliConfig{
		Datadir:     viper.GetString(Datadir),
		ExplorerURL: viper.GetString(ExplorerURL),
		LogLevel:    viper.GetInt(LogLevel),
	}, nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
