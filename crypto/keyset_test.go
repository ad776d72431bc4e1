package crypto

import (
	"encoding/json"
	"testing"
)

func TestGenerateKeyset(t *testing.T) {
	keyset := GenerateKeyset("mysecretkey", "0/0/0", 100)
	if len(keyset.Keys) != 64 {
		t.Fatalf("expected '%v' keys but got '%v' instead", 64, len(keyset.Keys))
	}
	if len(keyset.Id) != 16 || keyset.Id[:2] != "00" {
		t.Fatalf("invalid keyset id '%v'", keyset.Id)
	}

	again := GenerateKeyset("mysecretkey", "0/0/0", 100)
	if again.Id != keyset.Id {
		t.Fatalf("expected '%v' but got '%v' instead", keyset.Id, again.Id)
	}

	other := GenerateKeyset("mysecretkey", "0/0/1", 100)
	if other.Id == keyset.Id {
		t.Fatal("different derivation paths produced the same keyset id")
	}
}

func TestDeriveKeysetIdFromPublic(t *testing.T) {
	keyset := GenerateKeyset("seed", "path", 0)

	keys, err := MapPubKeys(keyset.DerivePublic())
	if err != nil {
		t.Fatalf("MapPubKeys: %v", err)
	}

	id := DeriveKeysetId(keys)
	if id != keyset.Id {
		t.Fatalf("expected '%v' but got '%v' instead", keyset.Id, id)
	}

	if _, err := MapPubKeys(map[uint64]string{1: "notakey"}); err == nil {
		t.Fatal("expected error parsing invalid public key")
	}
}

func TestWalletKeysetJSON(t *testing.T) {
	keyset := GenerateKeyset("seed", "path", 10)
	walletKeyset := WalletKeyset{
		Id:          keyset.Id,
		MintURL:     "http://127.0.0.1:3338",
		Unit:        "sat",
		Active:      true,
		PublicKeys:  keyset.PublicKeys(),
		InputFeePpk: 10,
	}

	data, err := json.Marshal(walletKeyset)
	if err != nil {
		t.Fatal(err)
	}

	var decoded WalletKeyset
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Id != walletKeyset.Id || decoded.InputFeePpk != 10 || !decoded.Active {
		t.Fatalf("expected '%+v' but got '%+v' instead", walletKeyset, decoded)
	}
	for amount, pubkey := range walletKeyset.PublicKeys {
		if !decoded.PublicKeys[amount].IsEqual(pubkey) {
			t.Fatalf("public key for amount %v does not match", amount)
		}
	}
}
