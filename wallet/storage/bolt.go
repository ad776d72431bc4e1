package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nutlock/nutlock/crypto"
	bolt "go.etcd.io/bbolt"
)

const keysetsBucket = "keysets"

type BoltDB struct {
	bolt *bolt.DB
}

func InitBolt(path string) (*BoltDB, error) {
	db, err := bolt.Open(filepath.Join(path, "wallet.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("error setting bolt db: %v", err)
	}

	boltdb := &BoltDB{bolt: db}
	if err := boltdb.initWalletBuckets(); err != nil {
		return nil, fmt.Errorf("error setting bolt db: %v", err)
	}

	return boltdb, nil
}

func (db *BoltDB) initWalletBuckets() error {
	return db.bolt.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(keysetsBucket))
		return err
	})
}

func (db *BoltDB) Close() error {
	return db.bolt.Close()
}

// SaveKeyset stores the keyset under its mint url. Saving a keyset
// with an id already stored replaces it.
func (db *BoltDB) SaveKeyset(keyset *crypto.WalletKeyset) error {
	if keyset == nil || len(keyset.Id) == 0 {
		return errors.New("keyset id cannot be empty")
	}

	jsonKeyset, err := json.Marshal(keyset)
	if err != nil {
		return fmt.Errorf("invalid keyset format: %v", err)
	}

	return db.bolt.Update(func(tx *bolt.Tx) error {
		keysetsb := tx.Bucket([]byte(keysetsBucket))
		mintBucket, err := keysetsb.CreateBucketIfNotExists([]byte(keyset.MintURL))
		if err != nil {
			return err
		}
		return mintBucket.Put([]byte(keyset.Id), jsonKeyset)
	})
}

func (db *BoltDB) GetKeyset(mintURL, id string) *crypto.WalletKeyset {
	var keyset *crypto.WalletKeyset

	if err := db.bolt.View(func(tx *bolt.Tx) error {
		mintBucket := tx.Bucket([]byte(keysetsBucket)).Bucket([]byte(mintURL))
		if mintBucket == nil {
			return nil
		}

		keysetBytes := mintBucket.Get([]byte(id))
		if keysetBytes == nil {
			return nil
		}

		var walletKeyset crypto.WalletKeyset
		if err := json.Unmarshal(keysetBytes, &walletKeyset); err != nil {
			return err
		}
		keyset = &walletKeyset
		return nil
	}); err != nil {
		return nil
	}

	return keyset
}

func (db *BoltDB) GetKeysets() KeysetsMap {
	keysets := make(KeysetsMap)

	if err := db.bolt.View(func(tx *bolt.Tx) error {
		keysetsb := tx.Bucket([]byte(keysetsBucket))

		return keysetsb.ForEach(func(mintURL, v []byte) error {
			mintBucket := keysetsb.Bucket(mintURL)
			if mintBucket == nil {
				return nil
			}

			mintKeysets := make(map[string]crypto.WalletKeyset)
			c := mintBucket.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var keyset crypto.WalletKeyset
				if err := json.Unmarshal(v, &keyset); err != nil {
					return fmt.Errorf("error getting keysets: %v", err)
				}
				mintKeysets[string(k)] = keyset
			}
			keysets[string(mintURL)] = mintKeysets
			return nil
		})
	}); err != nil {
		return KeysetsMap{}
	}

	return keysets
}
