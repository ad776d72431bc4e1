package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const maxOrder = 64

// MintKeyset holds private keys for each amount. It is only
// used to sign outputs in tests and local fixtures.
type MintKeyset struct {
	Id          string
	Unit        string
	Active      bool
	InputFeePpk uint
	Keys        map[uint64]KeyPair
}

type KeyPair struct {
	PrivateKey *secp256k1.PrivateKey
	PublicKey  *secp256k1.PublicKey
}

// GenerateKeyset derives a keyset with keys for amounts 2^0..2^63
// from the seed and derivation path.
func GenerateKeyset(seed, derivationPath string, inputFeePpk uint) *MintKeyset {
	keys := make(map[uint64]KeyPair, maxOrder)

	for i := 0; i < maxOrder; i++ {
		amount := uint64(1) << i
		hash := sha256.Sum256([]byte(seed + derivationPath + strconv.FormatUint(amount, 10)))
		privKey := secp256k1.PrivKeyFromBytes(hash[:])
		keys[amount] = KeyPair{PrivateKey: privKey, PublicKey: privKey.PubKey()}
	}

	publicKeys := make(map[uint64]*secp256k1.PublicKey, len(keys))
	for amount, kp := range keys {
		publicKeys[amount] = kp.PublicKey
	}

	return &MintKeyset{
		Id:          DeriveKeysetId(publicKeys),
		Unit:        "sat",
		Active:      true,
		InputFeePpk: inputFeePpk,
		Keys:        keys,
	}
}

func (ks *MintKeyset) PublicKeys() map[uint64]*secp256k1.PublicKey {
	pubkeys := make(map[uint64]*secp256k1.PublicKey, len(ks.Keys))
	for amount, kp := range ks.Keys {
		pubkeys[amount] = kp.PublicKey
	}
	return pubkeys
}

// DerivePublic returns the public keys hex encoded by amount.
func (ks *MintKeyset) DerivePublic() map[uint64]string {
	pubkeys := make(map[uint64]string, len(ks.Keys))
	for amount, kp := range ks.Keys {
		pubkeys[amount] = hex.EncodeToString(kp.PublicKey.SerializeCompressed())
	}
	return pubkeys
}

// DeriveKeysetId computes the version 00 keyset id:
// "00" + first 14 hex chars of SHA256(pubkeys sorted by amount).
func DeriveKeysetId(keys map[uint64]*secp256k1.PublicKey) string {
	amounts := make([]uint64, 0, len(keys))
	for amount := range keys {
		amounts = append(amounts, amount)
	}
	slices.Sort(amounts)

	hash := sha256.New()
	for _, amount := range amounts {
		hash.Write(keys[amount].SerializeCompressed())
	}

	return "00" + hex.EncodeToString(hash.Sum(nil))[:14]
}

// WalletKeyset is the public view of a mint keyset as seen by a wallet.
type WalletKeyset struct {
	Id          string
	MintURL     string
	Unit        string
	Active      bool
	PublicKeys  map[uint64]*secp256k1.PublicKey
	InputFeePpk uint
}

type walletKeysetJSON struct {
	Id          string            `json:"id"`
	MintURL     string            `json:"mint_url"`
	Unit        string            `json:"unit"`
	Active      bool              `json:"active"`
	PublicKeys  map[uint64]string `json:"public_keys,omitempty"`
	InputFeePpk uint              `json:"input_fee_ppk"`
}

func (ks WalletKeyset) MarshalJSON() ([]byte, error) {
	keyset := walletKeysetJSON{
		Id:          ks.Id,
		MintURL:     ks.MintURL,
		Unit:        ks.Unit,
		Active:      ks.Active,
		InputFeePpk: ks.InputFeePpk,
	}
	if len(ks.PublicKeys) > 0 {
		keyset.PublicKeys = make(map[uint64]string, len(ks.PublicKeys))
		for amount, pubkey := range ks.PublicKeys {
			keyset.PublicKeys[amount] = hex.EncodeToString(pubkey.SerializeCompressed())
		}
	}
	return json.Marshal(keyset)
}

func (ks *WalletKeyset) UnmarshalJSON(data []byte) error {
	var keyset walletKeysetJSON
	if err := json.Unmarshal(data, &keyset); err != nil {
		return err
	}

	ks.Id = keyset.Id
	ks.MintURL = keyset.MintURL
	ks.Unit = keyset.Unit
	ks.Active = keyset.Active
	ks.InputFeePpk = keyset.InputFeePpk
	ks.PublicKeys = nil
	if len(keyset.PublicKeys) > 0 {
		keys, err := MapPubKeys(keyset.PublicKeys)
		if err != nil {
			return err
		}
		ks.PublicKeys = keys
	}
	return nil
}

// MapPubKeys parses hex encoded public keys by amount.
func MapPubKeys(keys map[uint64]string) (map[uint64]*secp256k1.PublicKey, error) {
	publicKeys := make(map[uint64]*secp256k1.PublicKey, len(keys))
	for amount, key := range keys {
		pkbytes, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("invalid public key for amount %v: %v", amount, err)
		}
		pubkey, err := secp256k1.ParsePubKey(pkbytes)
		if err != nil {
			return nil, fmt.Errorf("invalid public key for amount %v: %v", amount, err)
		}
		publicKeys[amount] = pubkey
	}
	return publicKeys, nil
}
