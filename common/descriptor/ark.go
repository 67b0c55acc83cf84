package descriptor

import (
	"encoding/hex"
	"errors"

	"github.com/ark-network/ark-sdk/common"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	BoardingDescriptorTemplate    = "tr(%s,{ and(pk(%s), pk(%s)), and(older(%d), pk(%s)) })"
	DefaultVtxoDescriptorTemplate = "tr(%s,{ and(pk(%s), pk(%s)), and(older(%d), pk(%s)) })"
)

// ParseBoardingDescriptor extracts the owner public key and the exit timeout
// from a boarding output descriptor.
func ParseBoardingDescriptor(desc TaprootDescriptor) (
	user *secp256k1.PublicKey, timeout *common.RelativeLocktime, err error,
) {
	for _, leaf := range desc.ScriptTree {
		if andLeaf, ok := leaf.(*And); ok {
			if first, ok := andLeaf.First.(*Older); ok {
				timeout = &first.Locktime
			}

			if second, ok := andLeaf.Second.(*PK); ok {
				keyBytes, err := hex.DecodeString(second.Key.Hex)
				if err != nil {
					return nil, nil, err
				}

				user, err = schnorr.ParsePubKey(keyBytes)
				if err != nil {
					return nil, nil, err
				}
			}
		}
	}

	if user == nil {
		return nil, nil, errors.New("boarding descriptor is invalid")
	}

	if timeout == nil {
		return nil, nil, errors.New("boarding descriptor is invalid")
	}

	return
}

// ParseDefaultVtxoDescriptor extracts the owner and server public keys and the
// exit timeout from a default vtxo descriptor.
func ParseDefaultVtxoDescriptor(desc TaprootDescriptor) (
	owner, server *secp256k1.PublicKey, exitDelay *common.RelativeLocktime, err error,
) {
	for _, leaf := range desc.ScriptTree {
		andLeaf, ok := leaf.(*And)
		if !ok {
			continue
		}

		switch first := andLeaf.First.(type) {
		case *Older:
			exitDelay = &first.Locktime

			if second, ok := andLeaf.Second.(*PK); ok {
				owner, err = parsePubkey(second.Key.Hex)
				if err != nil {
					return nil, nil, nil, err
				}
			}
		case *PK:
			server, err = parsePubkey(first.Key.Hex)
			if err != nil {
				return nil, nil, nil, err
			}
		}
	}

	if owner == nil || server == nil || exitDelay == nil {
		return nil, nil, nil, errors.New("vtxo descriptor is invalid")
	}

	return
}

func parsePubkey(keyHex string) (*secp256k1.PublicKey, error) {
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, err
	}

	return schnorr.ParsePubKey(keyBytes)
}
