package explorer

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

type Explorer interface {
	GetTxHex(txid string) (string, error)
	Broadcast(txHex string) (string, error)
	GetTxs(addr string) ([]Tx, error)
	GetUtxos(addr string) ([]Utxo, error)
	GetTxOutspends(txid string) ([]SpentStatus, error)
	GetOutputStatus(txid string, vout uint32) (*SpentStatus, error)
	FindOutpoints(addr string) ([]ExplorerUtxo, error)
	GetTxBlockTime(txid string) (confirmed bool, blocktime int64, err error)
	GetBalance(addr string) (uint64, error)
	BaseUrl() string
}

type esploraExplorer struct {
	cache   map[string]string
	baseUrl string
}

func NewExplorer(baseUrl string) Explorer {
	return &esploraExplorer{
		cache:   make(map[string]string),
		baseUrl: baseUrl,
	}
}

func (e *esploraExplorer) BaseUrl() string {
	return e.baseUrl
}

func (e *esploraExplorer) GetTxHex(txid string) (string, error) {
	if hex, ok := e.cache[txid]; ok {
		return hex, nil
	}

	txHex, err := e.getTxHex(txid)
	if err != nil {
		return "", err
	}

	e.cache[txid] = txHex

	return txHex, nil
}

func (e *esploraExplorer) Broadcast(txStr string) (string, error) {
	txHex := txStr
	tx := &wire.MsgTx{}
	if err := tx.Deserialize(hex.NewDecoder(strings.NewReader(txStr))); err != nil {
		ptx, err := psbt.NewFromRawBytes(strings.NewReader(txStr), true)
		if err != nil {
			return "", err
		}

		extracted, err := psbt.Extract(ptx)
		if err != nil {
			return "", err
		}

		tx = extracted
		var buf bytes.Buffer
		if err := tx.Serialize(&buf); err != nil {
			return "", err
		}
		txHex = hex.EncodeToString(buf.Bytes())
	}
	txid := tx.TxHash().String()
	e.cache[txid] = txHex

	txid, err := e.broadcast(txHex)
	if err != nil {
		if strings.Contains(
			strings.ToLower(err.Error()), "transaction already in block chain",
		) {
			return txid, nil
		}

		return "", err
	}

	return txid, nil
}

func (e *esploraExplorer) GetTxs(addr string) ([]Tx, error) {
	resp, err := http.Get(fmt.Sprintf("%s/address/%s/txs", e.baseUrl, addr))
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(string(body))
	}
	payload := []Tx{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func (e *esploraExplorer) GetUtxos(addr string) ([]Utxo, error) {
	resp, err := http.Get(fmt.Sprintf("%s/address/%s/utxo", e.baseUrl, addr))
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(string(body))
	}
	payload := []Utxo{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func (e *esploraExplorer) GetTxOutspends(txid string) ([]SpentStatus, error) {
	resp, err := http.Get(fmt.Sprintf("%s/tx/%s/outspends", e.baseUrl, txid))
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(string(body))
	}

	spentStatuses := []SpentStatus{}
	if err := json.Unmarshal(body, &spentStatuses); err != nil {
		return nil, err
	}

	return spentStatuses, nil
}

func (e *esploraExplorer) GetOutputStatus(txid string, vout uint32) (*SpentStatus, error) {
	spentStatuses, err := e.GetTxOutspends(txid)
	if err != nil {
		return nil, err
	}

	if int(vout) >= len(spentStatuses) {
		return nil, fmt.Errorf("output %s:%d not found", txid, vout)
	}

	status := spentStatuses[vout]
	return &status, nil
}

// FindOutpoints scans the transactions of an address and returns every output
// paying to it, spent ones included.
func (e *esploraExplorer) FindOutpoints(addr string) ([]ExplorerUtxo, error) {
	txs, err := e.GetTxs(addr)
	if err != nil {
		return nil, err
	}

	utxos := make([]ExplorerUtxo, 0)
	for _, tx := range txs {
		for i, vout := range tx.Vout {
			if vout.Address != addr {
				continue
			}

			utxos = append(utxos, ExplorerUtxo{
				Txid:      tx.Txid,
				Vout:      uint32(i),
				Amount:    vout.Amount,
				Confirmed: tx.Status.Confirmed,
				Blocktime: tx.Status.Blocktime,
			})
		}
	}

	for i, utxo := range utxos {
		spentStatuses, err := e.GetTxOutspends(utxo.Txid)
		if err != nil {
			return nil, err
		}

		if int(utxo.Vout) < len(spentStatuses) {
			utxos[i].Spent = spentStatuses[utxo.Vout].Spent
			utxos[i].SpentBy = spentStatuses[utxo.Vout].SpentBy
		}
	}

	return utxos, nil
}

func (e *esploraExplorer) GetTxBlockTime(
	txid string,
) (confirmed bool, blocktime int64, err error) {
	resp, err := http.Get(fmt.Sprintf("%s/tx/%s", e.baseUrl, txid))
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		return false, 0, fmt.Errorf(string(body))
	}

	var tx Tx
	if err := json.Unmarshal(body, &tx); err != nil {
		return false, 0, err
	}

	if !tx.Status.Confirmed {
		return false, -1, nil
	}

	return true, tx.Status.Blocktime, nil
}

func (e *esploraExplorer) GetBalance(addr string) (uint64, error) {
	payload, err := e.GetUtxos(addr)
	if err != nil {
		return 0, err
	}

	balance := uint64(0)
	for _, p := range payload {
		balance += p.Amount
	}
	return balance, nil
}

func (e *esploraExplorer) getTxHex(txid string) (string, error) {
	resp, err := http.Get(fmt.Sprintf("%s/tx/%s/hex", e.baseUrl, txid))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(string(body))
	}

	hex := string(body)
	e.cache[txid] = hex
	return hex, nil
}

func (e *esploraExplorer) broadcast(txHex string) (string, error) {
	body := bytes.NewBuffer([]byte(txHex))

	resp, err := http.Post(fmt.Sprintf("%s/tx", e.baseUrl), "text/plain", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	bodyResponse, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(string(bodyResponse))
	}

	return string(bodyResponse), nil
}
