package filestore

import (
	"encoding/hex"
	"strconv"

	"github.com/ark-network/ark-sdk/internal/utils"
	"github.com/ark-network/ark-sdk/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

type storeData struct {
	ServerUrl                  string `json:"server_url"`
	ServerPubKey               string `json:"server_pubkey"`
	WalletType                 string `json:"wallet_type"`
	ClientType                 string `json:"client_type"`
	Network                    string `json:"network"`
	RoundLifetime              string `json:"round_lifetime"`
	RoundInterval              string `json:"round_interval"`
	UnilateralExitDelay        string `json:"unilateral_exit_delay"`
	Dust                       string `json:"dust"`
	BoardingDescriptorTemplate string `json:"boarding_descriptor_template"`
	ExplorerURL                string `json:"explorer_url"`
}

func (d storeData) isEmpty() bool {
	return d.ServerUrl == "" && d.ServerPubKey == ""
}

func (d storeData) decode() types.Config {
	network := utils.NetworkFromString(d.Network)
	roundLifetime, _ := strconv.Atoi(d.RoundLifetime)
	roundInterval, _ := strconv.Atoi(d.RoundInterval)
	unilateralExitDelay, _ := strconv.Atoi(d.UnilateralExitDelay)
	dust, _ := strconv.Atoi(d.Dust)
	buf, _ := hex.DecodeString(d.ServerPubKey)
	serverPubkey, _ := secp256k1.ParsePubKey(buf)

	return types.Config{
		ServerUrl:                  d.ServerUrl,
		ServerPubKey:               serverPubkey,
		WalletType:                 d.WalletType,
		ClientType:                 d.ClientType,
		Network:                    network,
		RoundLifetime:              utils.LocktimeFromValue(roundLifetime),
		UnilateralExitDelay:        utils.LocktimeFromValue(unilateralExitDelay),
		RoundInterval:              int64(roundInterval),
		Dust:                       uint64(dust),
		BoardingDescriptorTemplate: d.BoardingDescriptorTemplate,
		ExplorerURL:                d.ExplorerURL,
	}
}

func (d storeData) asMap() map[string]string {
	return map[string]string{
		"server_url":                   d.ServerUrl,
		"server_pubkey":                d.ServerPubKey,
		"wallet_type":                  d.WalletType,
		"client_type":                  d.ClientType,
		"network":                      d.Network,
		"round_lifetime":               d.RoundLifetime,
		"round_interval":               d.RoundInterval,
		"unilateral_exit_delay":        d.UnilateralExitDelay,
		"dust":                         d.Dust,
		"boarding_descriptor_template": d.BoardingDescriptorTemplate,
		"explorer_url":                 d.ExplorerURL,
	}
}
