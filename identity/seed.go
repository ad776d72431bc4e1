package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// Seed is an identity whose key is derived from a BIP-39 mnemonic.
type Seed struct {
	key *btcec.PrivateKey
}

func NewSeedIdentity(mnemonic string) (*Seed, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	key, err := DeriveP2PK(master)
	if err != nil {
		return nil, err
	}

	return &Seed{key: key}, nil
}

func (s *Seed) CurrentPubkey() (string, bool) {
	return hex.EncodeToString(schnorr.SerializePubKey(s.key.PubKey())), true
}

func (s *Seed) PrivateKey() *btcec.PrivateKey {
	return s.key
}

// Derive key that wallet will use to receive locked ecash
func DeriveP2PK(key *hdkeychain.ExtendedKey) (*btcec.PrivateKey, error) {
	// m/129372'
	purpose, err := key.Derive(hdkeychain.HardenedKeyStart + 129372)
	if err != nil {
		return nil, err
	}

	// m/129372'/0'
	coinType, err := purpose.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, err
	}

	// m/129372'/0'/1'
	first, err := coinType.Derive(hdkeychain.HardenedKeyStart + 1)
	if err != nil {
		return nil, err
	}

	// m/129372'/0'/1'/0
	extKey, err := first.Derive(0)
	if err != nil {
		return nil, err
	}

	return extKey.ECPrivKey()
}
