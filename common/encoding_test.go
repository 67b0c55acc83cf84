package common_test

import (
	"encoding/hex"
	"testing"

	common "github.com/ark-network/ark-sdk/common"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestAddressEncoding(t *testing.T) {
	serverKey := secp256k1.PrivKeyFromBytes([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
		0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20,
	}).PubKey()
	vtxoKey := secp256k1.PrivKeyFromBytes([]byte{
		0x20, 0x1f, 0x1e, 0x1d, 0x1c, 0x1b, 0x1a, 0x19,
		0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11,
		0x10, 0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}).PubKey()

	t.Run("valid", func(t *testing.T) {
		for _, hrp := range []string{common.Bitcoin.Addr, common.BitcoinTestNet.Addr} {
			addr := &common.Address{
				HRP:        hrp,
				Server:     serverKey,
				VtxoTapKey: vtxoKey,
			}
			encoded, err := addr.Encode()
			require.NoError(t, err)
			require.NotEmpty(t, encoded)

			decoded, err := common.DecodeAddress(encoded)
			require.NoError(t, err)
			require.Equal(t, hrp, decoded.HRP)
			require.Equal(
				t,
				hex.EncodeToString(serverKey.SerializeCompressed()[1:]),
				hex.EncodeToString(decoded.Server.SerializeCompressed()[1:]),
			)
			require.Equal(
				t,
				hex.EncodeToString(vtxoKey.SerializeCompressed()[1:]),
				hex.EncodeToString(decoded.VtxoTapKey.SerializeCompressed()[1:]),
			)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			addr *common.Address
			err  string
		}{
			{
				name: "missing server key",
				addr: &common.Address{
					HRP:        common.Bitcoin.Addr,
					VtxoTapKey: vtxoKey,
				},
				err: "missing server public key",
			},
			{
				name: "missing vtxo taproot key",
				addr: &common.Address{
					HRP:    common.Bitcoin.Addr,
					Server: serverKey,
				},
				err: "missing vtxo taproot public key",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				encoded, err := tt.addr.Encode()
				require.EqualError(t, err, tt.err)
				require.Empty(t, encoded)
			})
		}

		decoded, err := common.DecodeAddress("")
		require.EqualError(t, err, "address is empty")
		require.Nil(t, decoded)

		decoded, err = common.DecodeAddress("not an address")
		require.Error(t, err)
		require.Nil(t, decoded)
	})
}
