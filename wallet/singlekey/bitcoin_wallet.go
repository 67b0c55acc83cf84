package singlekeywallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ark-network/ark-sdk/common"
	"github.com/ark-network/ark-sdk/common/bitcointree"
	"github.com/ark-network/ark-sdk/common/descriptor"
	"github.com/ark-network/ark-sdk/explorer"
	"github.com/ark-network/ark-sdk/internal/utils"
	"github.com/ark-network/ark-sdk/types"
	"github.com/ark-network/ark-sdk/wallet"
	walletstore "github.com/ark-network/ark-sdk/wallet/singlekey/store"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

type bitcoinWallet struct {
	*singlekeyWallet
}

func NewBitcoinWallet(
	configStore types.ConfigStore, walletStore walletstore.WalletStore,
) (wallet.WalletService, error) {
	walletData, err := walletStore.GetWallet()
	if err != nil {
		return nil, err
	}
	return &bitcoinWallet{
		&singlekeyWallet{
			configStore: configStore,
			walletStore: walletStore,
			walletData:  walletData,
		},
	}, nil
}

func (w *bitcoinWallet) GetAddresses(
	ctx context.Context,
) ([]string, []string, []string, error) {
	offchainAddr, vtxoTapKey, err := w.getArkAddress(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	boardingAddr, err := w.getBoardingAddress(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	data, err := w.configStore.GetData(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	netParams := utils.ToBitcoinNetwork(data.Network)

	redemptionAddr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(vtxoTapKey), &netParams,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	offchainAddrs := []string{offchainAddr}
	boardingAddrs := []string{boardingAddr}
	redemptionAddrs := []string{redemptionAddr.EncodeAddress()}

	return offchainAddrs, boardingAddrs, redemptionAddrs, nil
}

func (w *bitcoinWallet) NewAddress(
	ctx context.Context, _ bool,
) (string, string, string, error) {
	offchainAddr, _, err := w.getArkAddress(ctx)
	if err != nil {
		return "", "", "", err
	}

	boardingAddr, err := w.getBoardingAddress(ctx)
	if err != nil {
		return "", "", "", err
	}

	onchainAddr, err := w.getP2TRAddress(ctx)
	if err != nil {
		return "", "", "", err
	}

	return offchainAddr, boardingAddr, onchainAddr.EncodeAddress(), nil
}

func (w *bitcoinWallet) NewBoardingOutput(ctx context.Context) (string, error) {
	return w.getBoardingAddress(ctx)
}

func (w *bitcoinWallet) SignMessage(
	_ context.Context, message []byte,
) (string, error) {
	if w.IsLocked() {
		return "", fmt.Errorf("wallet is locked")
	}

	sig, err := schnorr.Sign(w.privateKey, message)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(sig.Serialize()), nil
}

func (w *bitcoinWallet) SignTransaction(
	_ context.Context, explorerSvc explorer.Explorer, tx string,
) (string, error) {
	if w.IsLocked() {
		return "", fmt.Errorf("wallet is locked")
	}

	ptx, err := psbt.NewFromRawBytes(strings.NewReader(tx), true)
	if err != nil {
		return "", err
	}

	updater, err := psbt.NewUpdater(ptx)
	if err != nil {
		return "", err
	}

	for i, input := range updater.Upsbt.UnsignedTx.TxIn {
		if updater.Upsbt.Inputs[i].WitnessUtxo != nil {
			continue
		}

		prevoutTxHex, err := explorerSvc.GetTxHex(input.PreviousOutPoint.Hash.String())
		if err != nil {
			return "", err
		}

		var prevoutTx wire.MsgTx
		if err := prevoutTx.Deserialize(hex.NewDecoder(strings.NewReader(prevoutTxHex))); err != nil {
			return "", err
		}

		utxo := prevoutTx.TxOut[input.PreviousOutPoint.Index]
		if utxo == nil {
			return "", fmt.Errorf("witness utxo not found")
		}

		if err := updater.AddInWitnessUtxo(utxo, i); err != nil {
			return "", err
		}

		if err := updater.AddInSighashType(txscript.SigHashDefault, i); err != nil {
			return "", err
		}
	}

	prevouts := make(map[wire.OutPoint]*wire.TxOut)
	for i, input := range updater.Upsbt.Inputs {
		outpoint := updater.Upsbt.UnsignedTx.TxIn[i].PreviousOutPoint
		prevouts[outpoint] = input.WitnessUtxo
	}

	prevoutFetcher := txscript.NewMultiPrevOutFetcher(prevouts)
	txsighashes := txscript.NewTxSigHashes(updater.Upsbt.UnsignedTx, prevoutFetcher)

	onchainPkScript, err := common.P2TRScript(
		txscript.ComputeTaprootKeyNoScript(w.walletData.PubKey),
	)
	if err != nil {
		return "", err
	}

	for i, input := range ptx.Inputs {
		if len(input.TaprootLeafScript) > 0 {
			if err := w.signTapscriptSpend(updater, input, i, txsighashes, prevoutFetcher); err != nil {
				return "", err
			}
			continue
		}

		if input.WitnessUtxo != nil {
			// onchain P2TR
			if bytes.Equal(input.WitnessUtxo.PkScript, onchainPkScript) {
				updater.Upsbt.Inputs[i].TaprootInternalKey = schnorr.SerializePubKey(
					txscript.ComputeTaprootKeyNoScript(w.walletData.PubKey),
				)
				input = updater.Upsbt.Inputs[i]
			}
		}

		// taproot key path spend
		if len(input.TaprootInternalKey) > 0 {
			if err := w.signTaprootKeySpend(updater, input, i, txsighashes, prevoutFetcher); err != nil {
				return "", err
			}
			continue
		}
	}

	return ptx.B64Encode()
}

func (w *bitcoinWallet) signTapscriptSpend(
	updater *psbt.Updater,
	input psbt.PInput,
	inputIndex int,
	txsighashes *txscript.TxSigHashes,
	prevoutFetcher *txscript.MultiPrevOutFetcher,
) error {
	myPubkey := schnorr.SerializePubKey(w.walletData.PubKey)

	for _, leaf := range input.TaprootLeafScript {
		closure, err := bitcointree.DecodeClosure(leaf.Script)
		if err != nil {
			// skip unknown leaf
			continue
		}

		sign := false
		switch c := closure.(type) {
		case *bitcointree.CSVSigClosure:
			sign = bytes.Equal(schnorr.SerializePubKey(c.Pubkey), myPubkey)
		case *bitcointree.MultisigClosure:
			sign = bytes.Equal(schnorr.SerializePubKey(c.Pubkey), myPubkey) ||
				bytes.Equal(schnorr.SerializePubKey(c.ServerPubkey), myPubkey)
		}

		if !sign {
			continue
		}

		if err := updater.AddInSighashType(txscript.SigHashDefault, inputIndex); err != nil {
			return err
		}

		hash := txscript.NewTapLeaf(leaf.LeafVersion, leaf.Script).TapHash()

		preimage, err := txscript.CalcTapscriptSignaturehash(
			txsighashes,
			txscript.SigHashDefault,
			updater.Upsbt.UnsignedTx,
			inputIndex,
			prevoutFetcher,
			txscript.NewBaseTapLeaf(leaf.Script),
		)
		if err != nil {
			return err
		}

		sig, err := schnorr.Sign(w.privateKey, preimage)
		if err != nil {
			return err
		}

		if len(updater.Upsbt.Inputs[inputIndex].TaprootScriptSpendSig) == 0 {
			updater.Upsbt.Inputs[inputIndex].TaprootScriptSpendSig = make(
				[]*psbt.TaprootScriptSpendSig, 0,
			)
		}

		updater.Upsbt.Inputs[inputIndex].TaprootScriptSpendSig = append(
			updater.Upsbt.Inputs[inputIndex].TaprootScriptSpendSig,
			&psbt.TaprootScriptSpendSig{
				XOnlyPubKey: myPubkey,
				LeafHash:    hash.CloneBytes(),
				Signature:   sig.Serialize(),
				SigHash:     txscript.SigHashDefault,
			},
		)
	}

	return nil
}

func (w *bitcoinWallet) signTaprootKeySpend(
	updater *psbt.Updater,
	input psbt.PInput,
	inputIndex int,
	txsighashes *txscript.TxSigHashes,
	prevoutFetcher *txscript.MultiPrevOutFetcher,
) error {
	if len(input.TaprootKeySpendSig) > 0 {
		// already signed, skip
		return nil
	}

	xOnlyPubkey := schnorr.SerializePubKey(
		txscript.ComputeTaprootKeyNoScript(w.walletData.PubKey),
	)
	if !bytes.Equal(xOnlyPubkey, input.TaprootInternalKey) {
		// not the wallet's key, skip
		return nil
	}

	preimage, err := txscript.CalcTaprootSignatureHash(
		txsighashes,
		txscript.SigHashDefault,
		updater.Upsbt.UnsignedTx,
		inputIndex,
		prevoutFetcher,
	)
	if err != nil {
		return err
	}

	sig, err := schnorr.Sign(txscript.TweakTaprootPrivKey(*w.privateKey, nil), preimage)
	if err != nil {
		return err
	}

	updater.Upsbt.Inputs[inputIndex].TaprootKeySpendSig = sig.Serialize()

	return nil
}

func (w *bitcoinWallet) getP2TRAddress(
	ctx context.Context,
) (*btcutil.AddressTaproot, error) {
	if w.walletData == nil {
		return nil, fmt.Errorf("wallet not initialized")
	}

	data, err := w.configStore.GetData(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("config not set, cannot derive addresses")
	}

	netParams := utils.ToBitcoinNetwork(data.Network)

	tapKey := txscript.ComputeTaprootKeyNoScript(w.walletData.PubKey)
	return btcutil.NewAddressTaproot(schnorr.SerializePubKey(tapKey), &netParams)
}

func (w *bitcoinWallet) getArkAddress(
	ctx context.Context,
) (string, *secp256k1.PublicKey, error) {
	if w.walletData == nil {
		return "", nil, fmt.Errorf("wallet not initialized")
	}

	data, err := w.configStore.GetData(ctx)
	if err != nil {
		return "", nil, err
	}
	if data == nil {
		return "", nil, fmt.Errorf("config not set, cannot derive addresses")
	}

	vtxoScript := &bitcointree.DefaultVtxoScript{
		Owner:     w.walletData.PubKey,
		Server:    data.ServerPubKey,
		ExitDelay: data.UnilateralExitDelay,
	}

	vtxoTapKey, _, err := vtxoScript.TapTree()
	if err != nil {
		return "", nil, err
	}

	addr := &common.Address{
		HRP:        data.Network.Addr,
		Server:     data.ServerPubKey,
		VtxoTapKey: vtxoTapKey,
	}

	encoded, err := addr.Encode()
	if err != nil {
		return "", nil, err
	}

	return encoded, vtxoTapKey, nil
}

// getBoardingAddress fills the coordinator's boarding descriptor template
// with the wallet key and derives the P2TR address of the resulting script.
func (w *bitcoinWallet) getBoardingAddress(ctx context.Context) (string, error) {
	if w.walletData == nil {
		return "", fmt.Errorf("wallet not initialized")
	}

	data, err := w.configStore.GetData(ctx)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("config not set, cannot derive addresses")
	}

	template := data.BoardingDescriptorTemplate
	if len(template) == 0 {
		template = descriptor.BoardingDescriptorTemplate
	}

	userKey := hex.EncodeToString(schnorr.SerializePubKey(w.walletData.PubKey))
	serverKey := hex.EncodeToString(schnorr.SerializePubKey(data.ServerPubKey))

	desc := fmt.Sprintf(
		template,
		hex.EncodeToString(bitcointree.UnspendableKey().SerializeCompressed()),
		serverKey,
		userKey,
		data.UnilateralExitDelay.Value,
		userKey,
	)

	boardingScript, err := bitcointree.ParseVtxoScript(desc)
	if err != nil {
		return "", err
	}

	boardingTapKey, _, err := boardingScript.TapTree()
	if err != nil {
		return "", err
	}

	netParams := utils.ToBitcoinNetwork(data.Network)
	addr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(boardingTapKey), &netParams,
	)
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}
