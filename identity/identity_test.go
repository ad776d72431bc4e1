package identity

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/nutlock/nutlock/relock"
	"github.com/tyler-smith/go-bip39"
)

func TestNostrIdentity(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	expectedPubkey, err := nostr.GetPublicKey(sk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nsec, err := nip19.EncodePrivateKey(sk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{sk, nsec, " " + nsec + "\n"} {
		identity, err := NewNostrIdentity(key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pubkey, ok := identity.CurrentPubkey()
		if !ok {
			t.Fatal("expected identity to have a pubkey")
		}
		if pubkey != expectedPubkey {
			t.Fatalf("expected '%v' but got '%v' instead", expectedPubkey, pubkey)
		}
		if !identity.HasSecretKey() {
			t.Fatal("expected identity to have secret key")
		}
	}

	if _, err := relock.DeriveLockPoint(expectedPubkey); err != nil {
		t.Fatalf("expected nostr pubkey to derive a lock point: %v", err)
	}
}

func TestNostrPubkey(t *testing.T) {
	pubkey := "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d"
	npub, err := nip19.EncodePublicKey(pubkey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{pubkey, strings.ToUpper(pubkey), npub} {
		identity, err := NewNostrPubkey(key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := identity.CurrentPubkey()
		if got != pubkey {
			t.Fatalf("expected '%v' but got '%v' instead", pubkey, got)
		}
		if identity.HasSecretKey() {
			t.Fatal("expected identity without secret key")
		}
		gotNpub, err := identity.Npub()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotNpub != npub {
			t.Fatalf("expected '%v' but got '%v' instead", npub, gotNpub)
		}
	}
}

func TestNostrInvalid(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	nsec, _ := nip19.EncodePrivateKey(sk)
	pubkey, _ := nostr.GetPublicKey(sk)
	npub, _ := nip19.EncodePublicKey(pubkey)

	secretKeys := []string{"", "abcd", npub, "nsec1invalid", strings.Repeat("zz", 32)}
	for _, key := range secretKeys {
		if _, err := NewNostrIdentity(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected error '%v' for '%v' but got '%v' instead", ErrInvalidKey, key, err)
		}
	}

	pubkeys := []string{"", "abcd", nsec, "npub1invalid", "02" + pubkey, strings.Repeat("ff", 32)}
	for _, key := range pubkeys {
		if _, err := NewNostrPubkey(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected error '%v' for '%v' but got '%v' instead", ErrInvalidKey, key, err)
		}
	}
}

func TestSeedIdentity(t *testing.T) {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	identity, err := NewSeedIdentity(mnemonic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pubkey, ok := identity.CurrentPubkey()
	if !ok || len(pubkey) != 64 {
		t.Fatalf("expected 64 hex character pubkey but got '%v'", pubkey)
	}

	seed := bip39.NewSeed(mnemonic, "")
	master, _ := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	key, err := DeriveP2PK(master)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !key.PubKey().IsEqual(identity.PrivateKey().PubKey()) {
		t.Fatal("expected key derived at m/129372'/0'/1'/0")
	}
	xonly := hex.EncodeToString(schnorr.SerializePubKey(key.PubKey()))
	if xonly != pubkey {
		t.Fatalf("expected '%v' but got '%v' instead", xonly, pubkey)
	}

	again, _ := NewSeedIdentity(mnemonic)
	againPubkey, _ := again.CurrentPubkey()
	if againPubkey != pubkey {
		t.Fatalf("expected '%v' but got '%v' instead", pubkey, againPubkey)
	}

	if _, err := relock.DeriveLockPoint(pubkey); err != nil {
		t.Fatalf("expected seed pubkey to derive a lock point: %v", err)
	}

	if _, err := NewSeedIdentity("abandon abandon abandon"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected error '%v' but got '%v' instead", ErrInvalidKey, err)
	}
}

func TestNone(t *testing.T) {
	if _, ok := (None{}).CurrentPubkey(); ok {
		t.Fatal("expected no pubkey")
	}
}
