package bitcointree_test

import (
	"testing"
	"time"

	"github.com/ark-network/ark-sdk/common"
	"github.com/ark-network/ark-sdk/common/bitcointree"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestRoundTripCSV(t *testing.T) {
	seckey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	csvSig := &bitcointree.CSVSigClosure{
		Pubkey:   seckey.PubKey(),
		Locktime: common.RelativeLocktime{Type: common.LocktimeTypeSecond, Value: 1024},
	}

	leaf, err := csvSig.Leaf()
	require.NoError(t, err)

	var cl bitcointree.CSVSigClosure

	valid, err := cl.Decode(leaf.Script)
	require.NoError(t, err)
	require.True(t, valid)

	require.Equal(t, csvSig.Locktime, cl.Locktime)
}

func TestRoundTripMultisig(t *testing.T) {
	ownerKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	serverKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	multisig := &bitcointree.MultisigClosure{
		Pubkey:       ownerKey.PubKey(),
		ServerPubkey: serverKey.PubKey(),
	}

	leaf, err := multisig.Leaf()
	require.NoError(t, err)

	var cl bitcointree.MultisigClosure

	valid, err := cl.Decode(leaf.Script)
	require.NoError(t, err)
	require.True(t, valid)

	rebuilt, err := cl.Leaf()
	require.NoError(t, err)
	require.Equal(t, leaf.Script, rebuilt.Script)
}

func TestDefaultVtxoScript(t *testing.T) {
	ownerKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	serverKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	vtxoScript := &bitcointree.DefaultVtxoScript{
		Owner:     ownerKey.PubKey(),
		Server:    serverKey.PubKey(),
		ExitDelay: common.RelativeLocktime{Type: common.LocktimeTypeSecond, Value: 1024},
	}

	taprootKey, tapTree, err := vtxoScript.TapTree()
	require.NoError(t, err)
	require.NotNil(t, taprootKey)
	require.Len(t, tapTree.GetLeaves(), 2)

	for _, leafHash := range tapTree.GetLeaves() {
		proof, err := tapTree.GetTaprootMerkleProof(leafHash)
		require.NoError(t, err)
		require.NotEmpty(t, proof.ControlBlock)
		require.NotEmpty(t, proof.Script)
	}

	desc := vtxoScript.ToDescriptor()
	require.NotEmpty(t, desc)

	parsed, err := bitcointree.ParseVtxoScript(desc)
	require.NoError(t, err)

	parsedKey, _, err := parsed.TapTree()
	require.NoError(t, err)
	require.Equal(t, taprootKey.SerializeCompressed(), parsedKey.SerializeCompressed())

	addr, err := vtxoScript.Address(common.Bitcoin.Addr)
	require.NoError(t, err)

	decoded, err := common.DecodeAddress(addr)
	require.NoError(t, err)
	require.Equal(
		t,
		taprootKey.SerializeCompressed()[1:],
		decoded.VtxoTapKey.SerializeCompressed()[1:],
	)

	confirmedAt := time.Unix(1726054000, 0)
	require.Equal(
		t, confirmedAt.Add(1024*time.Second), vtxoScript.ExitableAt(confirmedAt),
	)
}
