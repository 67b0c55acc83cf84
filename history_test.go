package arksdk

import (
	"context"
	"testing"
	"time"

	"github.com/ark-network/ark-sdk/client"
	"github.com/ark-network/ark-sdk/explorer"
	"github.com/ark-network/ark-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestTransactionHistoryBoardingOnly(t *testing.T) {
	ctx := context.Background()

	boardingTxid := "b1" + txidPad
	confirmedAt := int64(1726054000)

	a := newTestClient(
		&fakeTransport{},
		&fakeExplorer{
			utxosByAddr: map[string][]explorer.ExplorerUtxo{
				boardingAddr: {
					{
						Txid: boardingTxid, Vout: 0, Amount: 100_000_000,
						Confirmed: true, Blocktime: confirmedAt,
					},
				},
			},
		},
	)

	history, err := a.TransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	tx := history[0]
	require.Equal(t, boardingTxid, tx.BoardingTxid)
	require.True(t, tx.IsBoarding())
	require.Equal(t, types.TxReceived, tx.Type)
	require.Equal(t, uint64(100_000_000), tx.Amount)
	require.Equal(t, time.Unix(confirmedAt, 0), tx.CreatedAt)
	require.False(t, tx.Settled)
}

func TestTransactionHistoryUnconfirmedBoarding(t *testing.T) {
	ctx := context.Background()

	a := newTestClient(
		&fakeTransport{},
		&fakeExplorer{
			utxosByAddr: map[string][]explorer.ExplorerUtxo{
				boardingAddr: {
					{Txid: "b1" + txidPad, Vout: 0, Amount: 50000, Confirmed: false},
				},
			},
		},
	)

	history, err := a.TransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.True(t, history[0].CreatedAt.IsZero())
}

func TestTransactionHistoryBoardingTransitionAndSend(t *testing.T) {
	ctx := context.Background()

	boardingTxid := "b1" + txidPad
	roundTxid := "cc" + txidPad
	redeemTxid := "dd" + txidPad
	vtxoTxid := "aa" + txidPad

	boardedAt := int64(1726054000)
	settledAt := time.Unix(1726054600, 0)
	sentAt := time.Unix(1726055000, 0)

	// the deposit was absorbed into round R, its vtxo was later spent by the
	// redeem tx leaving a smaller change vtxo
	spent := []client.Vtxo{
		{
			Outpoint:  client.Outpoint{Txid: vtxoTxid, VOut: 0},
			Amount:    100_000,
			RoundTxid: roundTxid,
			SpentBy:   redeemTxid,
			CreatedAt: settledAt,
		},
	}
	spendable := []client.Vtxo{
		{
			Outpoint:  client.Outpoint{Txid: redeemTxid, VOut: 1},
			Amount:    90_000,
			Pending:   true,
			CreatedAt: sentAt,
		},
	}

	a := newTestClient(
		&fakeTransport{spendable: spendable, spent: spent},
		&fakeExplorer{
			utxosByAddr: map[string][]explorer.ExplorerUtxo{
				boardingAddr: {
					{
						Txid: boardingTxid, Vout: 0, Amount: 100_000,
						Confirmed: true, Blocktime: boardedAt,
						Spent: true, SpentBy: roundTxid,
					},
				},
			},
			statusByOutpoint: map[string]*explorer.SpentStatus{
				boardingTxid + ":0": {Spent: true, SpentBy: roundTxid},
			},
		},
	)

	history, err := a.TransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// the boarding deposit appears exactly once, its settlement round is not
	// re-classified as an incoming transfer
	boarding := history[0]
	require.True(t, boarding.IsBoarding())
	require.Equal(t, boardingTxid, boarding.BoardingTxid)
	require.True(t, boarding.Settled)
	require.Equal(t, time.Unix(boardedAt, 0), boarding.CreatedAt)

	outgoing := history[1]
	require.Equal(t, types.TxSent, outgoing.Type)
	require.Equal(t, redeemTxid, outgoing.RedeemTxid)
	require.Equal(t, uint64(10_000), outgoing.Amount)
	require.Equal(t, sentAt, outgoing.CreatedAt)
}

func TestTransactionHistoryIncoming(t *testing.T) {
	ctx := context.Background()

	roundTxid := "cc" + txidPad
	redeemTxid := "dd" + txidPad

	settled := client.Vtxo{
		Outpoint:  client.Outpoint{Txid: "aa" + txidPad, VOut: 0},
		Amount:    20_000,
		RoundTxid: roundTxid,
		CreatedAt: time.Unix(1726054898, 0),
	}
	pending := client.Vtxo{
		Outpoint:  client.Outpoint{Txid: redeemTxid, VOut: 0},
		Amount:    1000,
		Pending:   true,
		CreatedAt: time.Unix(1726055898, 0),
	}

	a := newTestClient(
		&fakeTransport{spendable: []client.Vtxo{settled, pending}},
		&fakeExplorer{},
	)

	history, err := a.TransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)

	require.Equal(t, types.TxReceived, history[0].Type)
	require.Equal(t, roundTxid, history[0].RoundTxid)
	require.True(t, history[0].Settled)

	require.Equal(t, types.TxReceived, history[1].Type)
	require.Equal(t, redeemTxid, history[1].RedeemTxid)
	require.False(t, history[1].Settled)
}

func TestTransactionHistoryOrdering(t *testing.T) {
	ctx := context.Background()

	at := time.Unix(1726054000, 0)

	incoming := client.Vtxo{
		Outpoint:  client.Outpoint{Txid: "aa" + txidPad, VOut: 0},
		Amount:    5000,
		RoundTxid: "cc" + txidPad,
		CreatedAt: at,
	}
	// spent with no resulting vtxo, the full amount left the wallet
	outgoing := client.Vtxo{
		Outpoint:  client.Outpoint{Txid: "bb" + txidPad, VOut: 0},
		Amount:    4000,
		RoundTxid: "ee" + txidPad,
		SpentBy:   "ff" + txidPad,
		CreatedAt: at,
	}

	a := newTestClient(
		&fakeTransport{
			spendable: []client.Vtxo{incoming},
			spent:     []client.Vtxo{outgoing},
		},
		&fakeExplorer{
			utxosByAddr: map[string][]explorer.ExplorerUtxo{
				boardingAddr: {
					{Txid: "b1" + txidPad, Vout: 0, Amount: 9000, Confirmed: true, Blocktime: at.Unix()},
				},
			},
		},
	)

	history, err := a.TransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)

	// equal timestamps keep the boarding, incoming, outgoing insertion order
	require.True(t, history[0].IsBoarding())
	require.Equal(t, types.TxReceived, history[1].Type)
	require.Equal(t, incoming.RoundTxid, history[1].RoundTxid)
	require.Equal(t, types.TxReceived, history[2].Type)
	require.Equal(t, outgoing.RoundTxid, history[2].RoundTxid)
	require.Equal(t, types.TxSent, history[3].Type)

	// identical collaborator responses yield an identical history
	again, err := a.TransactionHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, history, again)
}

func TestVtxosToOutgoingTxs(t *testing.T) {
	redeemTxid := "dd" + txidPad

	spent := []client.Vtxo{
		{
			Outpoint:  client.Outpoint{Txid: "aa" + txidPad, VOut: 0},
			Amount:    3000,
			SpentBy:   redeemTxid,
			CreatedAt: time.Unix(1726054000, 0),
		},
		{
			Outpoint:  client.Outpoint{Txid: "bb" + txidPad, VOut: 0},
			Amount:    2000,
			SpentBy:   redeemTxid,
			CreatedAt: time.Unix(1726054000, 0),
		},
	}
	spendable := []client.Vtxo{
		{
			Outpoint:  client.Outpoint{Txid: redeemTxid, VOut: 1},
			Amount:    1000,
			Pending:   true,
			CreatedAt: time.Unix(1726054500, 0),
		},
	}

	txs, err := vtxosToOutgoingTxs(spendable, spent)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, types.TxSent, txs[0].Type)
	require.Equal(t, uint64(4000), txs[0].Amount)
	require.Equal(t, redeemTxid, txs[0].RedeemTxid)
}

func TestVtxosToIncomingTxsSkipsSettlementChange(t *testing.T) {
	roundTxid := "cc" + txidPad

	// a refresh: the old vtxo was consumed by round R which minted a new one
	// of the same amount, no incoming record should be produced for it
	spent := []client.Vtxo{
		{
			Outpoint:  client.Outpoint{Txid: "aa" + txidPad, VOut: 0},
			Amount:    5000,
			RoundTxid: "ee" + txidPad,
			SpentBy:   roundTxid,
			CreatedAt: time.Unix(1726054000, 0),
		},
	}
	spendable := []client.Vtxo{
		{
			Outpoint:  client.Outpoint{Txid: "bb" + txidPad, VOut: 0},
			Amount:    5000,
			RoundTxid: roundTxid,
			CreatedAt: time.Unix(1726055000, 0),
		},
	}

	txs, err := vtxosToIncomingTxs(spendable, spent, map[string]struct{}{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	// only the original receival remains
	require.Equal(t, "ee"+txidPad, txs[0].RoundTxid)
}
