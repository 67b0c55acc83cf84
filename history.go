package arksdk

import (
	"context"
	"sort"
	"time"

	"github.com/ark-network/ark-sdk/client"
	"github.com/ark-network/ark-sdk/types"
)

// TransactionHistory merges three event sources into one chronological view:
// on-chain boarding deposits, incoming off-chain transfers and outgoing
// off-chain transfers. Records are sorted ascending by creation time, records
// sharing a timestamp keep the boarding, incoming, outgoing insertion order.
func (a *arkClient) TransactionHistory(
	ctx context.Context,
) ([]types.Transaction, error) {
	if a.Config == nil {
		return nil, ErrNotConnected
	}

	spendableVtxos, spentVtxos, err := a.ListVtxos(ctx)
	if err != nil {
		return nil, err
	}

	boardingTxs, roundsToIgnore, err := a.getBoardingTxs(ctx)
	if err != nil {
		return nil, err
	}

	incomingTxs, err := vtxosToIncomingTxs(spendableVtxos, spentVtxos, roundsToIgnore)
	if err != nil {
		return nil, err
	}

	outgoingTxs, err := vtxosToOutgoingTxs(spendableVtxos, spentVtxos)
	if err != nil {
		return nil, err
	}

	txs := make([]types.Transaction, 0, len(boardingTxs)+len(incomingTxs)+len(outgoingTxs))
	txs = append(txs, boardingTxs...)
	txs = append(txs, incomingTxs...)
	txs = append(txs, outgoingTxs...)

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})

	return txs, nil
}

// getBoardingTxs returns one record per on-chain deposit to a boarding
// address, plus the set of round txids that absorbed those deposits. The
// round set lets the incoming generator skip vtxos that merely represent a
// boarding transition, otherwise every deposit would be counted twice.
func (a *arkClient) getBoardingTxs(
	ctx context.Context,
) ([]types.Transaction, map[string]struct{}, error) {
	_, boardingAddrs, _, err := a.wallet.GetAddresses(ctx)
	if err != nil {
		return nil, nil, err
	}

	txs := make([]types.Transaction, 0)
	roundsToIgnore := make(map[string]struct{})
	for _, addr := range boardingAddrs {
		boardingUtxos, err := a.explorer.FindOutpoints(addr)
		if err != nil {
			return nil, nil, err
		}

		for _, utxo := range boardingUtxos {
			createdAt := time.Time{}
			if utxo.Confirmed {
				createdAt = time.Unix(utxo.Blocktime, 0)
			}

			txs = append(txs, types.Transaction{
				TransactionKey: types.TransactionKey{
					BoardingTxid: utxo.Txid,
				},
				Amount:    utxo.Amount,
				Type:      types.TxReceived,
				Settled:   utxo.Spent,
				CreatedAt: createdAt,
			})

			status, err := a.explorer.GetOutputStatus(utxo.Txid, utxo.Vout)
			if err != nil {
				return nil, nil, err
			}
			if status.Spent {
				roundsToIgnore[status.SpentBy] = struct{}{}
			}
		}
	}

	return txs, roundsToIgnore, nil
}

// All vtxos are receivals unless:
// - they resulted from a boarding transition
// - they resulted from a settlement (refresh)
// - they are the change of a spend tx
func vtxosToIncomingTxs(
	spendable, spent []client.Vtxo, boardingRounds map[string]struct{},
) ([]types.Transaction, error) {
	txs := make([]types.Transaction, 0)

	vtxosLeftToCheck := append([]client.Vtxo{}, spent...)
	for _, vtxo := range append(spendable, spent...) {
		if _, ok := boardingRounds[vtxo.RoundTxid]; !vtxo.Pending && ok {
			continue
		}

		settleVtxos := findVtxosSpentInSettlement(vtxosLeftToCheck, vtxo)
		settleAmount := reduceVtxosAmount(settleVtxos)
		if vtxo.Amount <= settleAmount {
			continue // settlement or change, ignore
		}

		spentVtxos := findVtxosSpentInPayment(vtxosLeftToCheck, vtxo)
		spentAmount := reduceVtxosAmount(spentVtxos)
		if vtxo.Amount <= spentAmount {
			continue // settlement or change, ignore
		}

		txKey := types.TransactionKey{
			RoundTxid: vtxo.RoundTxid,
		}
		settled := !vtxo.Pending
		if vtxo.Pending {
			txKey = types.TransactionKey{
				RedeemTxid: vtxo.Txid,
			}
			settled = vtxo.SpentBy != ""
		}

		txs = append(txs, types.Transaction{
			TransactionKey: txKey,
			Amount:         vtxo.Amount - settleAmount - spentAmount,
			Type:           types.TxReceived,
			CreatedAt:      vtxo.CreatedAt,
			Settled:        settled,
		})
	}

	return txs, nil
}

// All spent vtxos sharing a spender are a payment unless the spender is a
// settlement that gave the full amount back.
func vtxosToOutgoingTxs(
	spendable, spent []client.Vtxo,
) ([]types.Transaction, error) {
	txs := make([]types.Transaction, 0)

	// aggregate spent vtxos by spender txid, keeping the discovery order so
	// repeated runs produce the same record order
	vtxosBySpentBy := make(map[string][]client.Vtxo)
	spenders := make([]string, 0)
	for _, v := range spent {
		if len(v.SpentBy) <= 0 {
			continue
		}

		if _, ok := vtxosBySpentBy[v.SpentBy]; !ok {
			spenders = append(spenders, v.SpentBy)
		}
		vtxosBySpentBy[v.SpentBy] = append(vtxosBySpentBy[v.SpentBy], v)
	}

	for _, sb := range spenders {
		resultedVtxos := findVtxosResultedFromSpentBy(append(spendable, spent...), sb)
		resultedAmount := reduceVtxosAmount(resultedVtxos)
		spentAmount := reduceVtxosAmount(vtxosBySpentBy[sb])
		if spentAmount <= resultedAmount {
			continue // settlement or change, ignore
		}

		vtxo := getVtxo(resultedVtxos, vtxosBySpentBy[sb])

		txKey := types.TransactionKey{
			RoundTxid: vtxo.RoundTxid,
		}
		if vtxo.Pending {
			txKey = types.TransactionKey{
				RedeemTxid: vtxo.Txid,
			}
		}

		txs = append(txs, types.Transaction{
			TransactionKey: txKey,
			Amount:         spentAmount - resultedAmount,
			Type:           types.TxSent,
			CreatedAt:      vtxo.CreatedAt,
			Settled:        true,
		})
	}

	return txs, nil
}

func findVtxosSpent(vtxos []client.Vtxo, id string) []client.Vtxo {
	var result []client.Vtxo
	leftVtxos := make([]client.Vtxo, 0)
	for _, v := range vtxos {
		if v.SpentBy == id {
			result = append(result, v)
		} else {
			leftVtxos = append(leftVtxos, v)
		}
	}
	// Update the given list with only the left vtxos.
	copy(vtxos, leftVtxos)
	return result
}

func findVtxosSpentInSettlement(vtxos []client.Vtxo, vtxo client.Vtxo) []client.Vtxo {
	if vtxo.Pending {
		return nil
	}
	return findVtxosSpent(vtxos, vtxo.RoundTxid)
}

func findVtxosSpentInPayment(vtxos []client.Vtxo, vtxo client.Vtxo) []client.Vtxo {
	return findVtxosSpent(vtxos, vtxo.Txid)
}

func findVtxosResultedFromSpentBy(vtxos []client.Vtxo, spentByTxid string) []client.Vtxo {
	var result []client.Vtxo
	for _, v := range vtxos {
		if !v.Pending && v.RoundTxid == spentByTxid {
			result = append(result, v)
			break
		}
		if v.Txid == spentByTxid {
			result = append(result, v)
		}
	}
	return result
}

func reduceVtxosAmount(vtxos []client.Vtxo) uint64 {
	var total uint64
	for _, v := range vtxos {
		total += v.Amount
	}
	return total
}

func getVtxo(usedVtxos, spentByVtxos []client.Vtxo) client.Vtxo {
	if len(usedVtxos) > 0 {
		return usedVtxos[0]
	} else if len(spentByVtxos) > 0 {
		return spentByVtxos[0]
	}
	return client.Vtxo{}
}
