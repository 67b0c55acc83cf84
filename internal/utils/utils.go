package utils

import (
	"github.com/ark-network/ark-sdk/common"
	"github.com/btcsuite/btcd/chaincfg"
)

func NetworkFromString(net string) common.Network {
	switch net {
	case common.BitcoinTestNet.Name:
		return common.BitcoinTestNet
	case common.BitcoinSigNet.Name:
		return common.BitcoinSigNet
	case common.BitcoinRegTest.Name:
		return common.BitcoinRegTest
	case common.Bitcoin.Name:
		fallthrough
	default:
		return common.Bitcoin
	}
}

func ToBitcoinNetwork(net common.Network) chaincfg.Params {
	switch net.Name {
	case common.Bitcoin.Name:
		return chaincfg.MainNetParams
	case common.BitcoinTestNet.Name:
		return chaincfg.TestNet3Params
	case common.BitcoinSigNet.Name:
		return chaincfg.SigNetParams
	case common.BitcoinRegTest.Name:
		return chaincfg.RegressionNetParams
	default:
		return chaincfg.MainNetParams
	}
}

// LocktimeFromValue infers the locktime type from the raw delay value, values
// below the BIP68 granularity can only be block based.
func LocktimeFromValue(value int) common.RelativeLocktime {
	locktimeType := common.LocktimeTypeBlock
	if value >= common.SECONDS_MOD {
		locktimeType = common.LocktimeTypeSecond
	}
	return common.RelativeLocktime{Type: locktimeType, Value: uint32(value)}
}
