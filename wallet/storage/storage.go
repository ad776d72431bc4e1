// Package storage persists the keysets a wallet has fetched from mints
// so keys do not need to be requested again on every run.
package storage

import "github.com/nutlock/nutlock/crypto"

// KeysetsMap maps mint url to the mint's keysets by id.
type KeysetsMap map[string]map[string]crypto.WalletKeyset

type KeysetStore interface {
	SaveKeyset(*crypto.WalletKeyset) error
	GetKeyset(mintURL, id string) *crypto.WalletKeyset
	GetKeysets() KeysetsMap
	Close() error
}
