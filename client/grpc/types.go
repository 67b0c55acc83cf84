package grpcclient

import (
	"encoding/hex"
	"time"

	"github.com/ark-network/ark-sdk/client"
	"github.com/ark-network/ark-sdk/common"
	arkv1 "github.com/ark-network/ark/api-spec/protobuf/gen/ark/v1"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

type vtxo struct {
	*arkv1.Vtxo
}

func (v vtxo) toVtxo() client.Vtxo {
	var expiresAt time.Time
	if v.GetExpireAt() > 0 {
		expiresAt = time.Unix(v.GetExpireAt(), 0)
	}
	// the receiver address embeds the taproot key the vtxo is locked to
	var pubkey string
	if addr, err := common.DecodeAddress(v.GetReceiver().GetAddress()); err == nil {
		pubkey = hex.EncodeToString(schnorr.SerializePubKey(addr.VtxoTapKey))
	}
	return client.Vtxo{
		Outpoint: client.Outpoint{
			Txid: v.GetOutpoint().GetTxid(),
			VOut: v.GetOutpoint().GetVout(),
		},
		Pubkey:    pubkey,
		Amount:    v.GetReceiver().GetAmount(),
		RoundTxid: v.GetPoolTxid(),
		ExpiresAt: expiresAt,
		RedeemTx:  v.GetPendingData().GetRedeemTx(),
		Pending:   v.GetPending(),
		SpentBy:   v.GetSpentBy(),
		Spent:     v.GetSpent(),
	}
}

type vtxos []*arkv1.Vtxo

func (v vtxos) toVtxos() []client.Vtxo {
	list := make([]client.Vtxo, 0, len(v))
	for _, vv := range v {
		list = append(list, vtxo{vv}.toVtxo())
	}
	return list
}
