package bitcointree

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ark-network/ark-sdk/common"
	"github.com/ark-network/ark-sdk/common/descriptor"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

type VtxoScript common.VtxoScript[bitcoinTapTree]

func ParseVtxoScript(desc string) (VtxoScript, error) {
	v := &DefaultVtxoScript{}
	if err := v.FromDescriptor(desc); err != nil {
		return nil, fmt.Errorf("invalid vtxo descriptor: %s", desc)
	}

	return v, nil
}

/*
* DefaultVtxoScript is the default implementation of VTXO with 2 closures
* - Owner and Server (forfeit)
* - Owner after t (unilateral exit)
 */
type DefaultVtxoScript struct {
	Owner     *secp256k1.PublicKey
	Server    *secp256k1.PublicKey
	ExitDelay common.RelativeLocktime
}

func (v *DefaultVtxoScript) ToDescriptor() string {
	owner := hex.EncodeToString(schnorr.SerializePubKey(v.Owner))

	return fmt.Sprintf(
		descriptor.DefaultVtxoDescriptorTemplate,
		hex.EncodeToString(UnspendableKey().SerializeCompressed()),
		hex.EncodeToString(schnorr.SerializePubKey(v.Server)),
		owner,
		v.ExitDelay.Value,
		owner,
	)
}

func (v *DefaultVtxoScript) FromDescriptor(desc string) error {
	parsed, err := descriptor.ParseTaprootDescriptor(desc)
	if err != nil {
		return err
	}

	owner, server, exitDelay, err := descriptor.ParseDefaultVtxoDescriptor(*parsed)
	if err != nil {
		return err
	}

	v.Owner = owner
	v.Server = server
	v.ExitDelay = *exitDelay
	return nil
}

// ExitableAt returns the first instant the owner can spend through the exit
// closure, given the confirmation time of the funding outpoint.
func (v *DefaultVtxoScript) ExitableAt(confirmedAt time.Time) time.Time {
	return confirmedAt.Add(v.ExitDelay.Duration())
}

func (v *DefaultVtxoScript) TapTree() (*secp256k1.PublicKey, bitcoinTapTree, error) {
	redeemClosure := &CSVSigClosure{
		Pubkey:   v.Owner,
		Locktime: v.ExitDelay,
	}

	redeemLeaf, err := redeemClosure.Leaf()
	if err != nil {
		return nil, bitcoinTapTree{}, err
	}

	forfeitClosure := &MultisigClosure{
		Pubkey:       v.Owner,
		ServerPubkey: v.Server,
	}

	forfeitLeaf, err := forfeitClosure.Leaf()
	if err != nil {
		return nil, bitcoinTapTree{}, err
	}

	tapTree := txscript.AssembleTaprootScriptTree(
		*redeemLeaf, *forfeitLeaf,
	)

	root := tapTree.RootNode.TapHash()
	taprootKey := txscript.ComputeTaprootOutputKey(
		UnspendableKey(),
		root[:],
	)

	return taprootKey, bitcoinTapTree{tapTree}, nil
}

// Address returns the off-chain ark address of the vtxo script.
func (v *DefaultVtxoScript) Address(hrp string) (string, error) {
	taprootKey, _, err := v.TapTree()
	if err != nil {
		return "", err
	}

	addr := &common.Address{
		HRP:        hrp,
		Server:     v.Server,
		VtxoTapKey: taprootKey,
	}

	return addr.Encode()
}

// OnchainScript returns the P2TR output script the vtxo locks once broadcast.
func (v *DefaultVtxoScript) OnchainScript() ([]byte, error) {
	taprootKey, _, err := v.TapTree()
	if err != nil {
		return nil, err
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_1).
		AddData(schnorr.SerializePubKey(taprootKey)).
		Script()
}

// bitcoinTapTree is a wrapper around txscript.IndexedTapScriptTree to implement the common.TaprootTree interface
type bitcoinTapTree struct {
	*txscript.IndexedTapScriptTree
}

func (b bitcoinTapTree) GetRoot() chainhash.Hash {
	return b.RootNode.TapHash()
}

func (b bitcoinTapTree) GetTaprootMerkleProof(leafhash chainhash.Hash) (*common.TaprootMerkleProof, error) {
	index, ok := b.LeafProofIndex[leafhash]
	if !ok {
		return nil, fmt.Errorf("leaf %s not found in tree", leafhash.String())
	}
	proof := b.LeafMerkleProofs[index]

	controlBlock := proof.ToControlBlock(UnspendableKey())
	controlBlockBytes, err := controlBlock.ToBytes()
	if err != nil {
		return nil, err
	}

	return &common.TaprootMerkleProof{
		ControlBlock: controlBlockBytes,
		Script:       proof.Script,
	}, nil
}

func (b bitcoinTapTree) GetLeaves() []chainhash.Hash {
	leafHashes := make([]chainhash.Hash, 0)
	for hash := range b.LeafProofIndex {
		leafHashes = append(leafHashes, hash)
	}
	return leafHashes
}
