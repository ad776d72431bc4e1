// Package identity provides the public key ecash gets locked to.
//
// Keys are 32-byte x-only hex strings as used by nostr. Identities are
// built from a nostr key (nsec, npub or hex) or derived from a BIP-39
// mnemonic.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/nutlock/nutlock/relock"
)

var ErrInvalidKey = errors.New("invalid key")

var (
	_ relock.IdentityProvider = (*Nostr)(nil)
	_ relock.IdentityProvider = (*Seed)(nil)
	_ relock.IdentityProvider = None{}
)

// Nostr is an identity backed by a nostr key. It has a secret key only
// when built with NewNostrIdentity.
type Nostr struct {
	pubkey    string
	secretKey string
}

// NewNostrIdentity takes an nsec or a hex secret key.
func NewNostrIdentity(secretKey string) (*Nostr, error) {
	secretKey = strings.TrimSpace(secretKey)
	if strings.HasPrefix(secretKey, "nsec") {
		prefix, value, err := nip19.Decode(secretKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		sk, ok := value.(string)
		if prefix != "nsec" || !ok {
			return nil, fmt.Errorf("%w: expected nsec but got '%v'", ErrInvalidKey, prefix)
		}
		secretKey = sk
	}

	if len(secretKey) != 64 {
		return nil, fmt.Errorf("%w: secret key should be 64 hex characters", ErrInvalidKey)
	}
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Nostr{pubkey: pubkey, secretKey: secretKey}, nil
}

// NewNostrPubkey takes an npub or a hex public key. The identity can
// be checked against but not spend.
func NewNostrPubkey(pubkey string) (*Nostr, error) {
	pubkey = strings.TrimSpace(pubkey)
	if strings.HasPrefix(pubkey, "npub") {
		prefix, value, err := nip19.Decode(pubkey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		pk, ok := value.(string)
		if prefix != "npub" || !ok {
			return nil, fmt.Errorf("%w: expected npub but got '%v'", ErrInvalidKey, prefix)
		}
		pubkey = pk
	}

	pubkey = strings.ToLower(pubkey)
	if _, err := relock.NormalizePubkey(pubkey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Nostr{pubkey: pubkey}, nil
}

func (n *Nostr) CurrentPubkey() (string, bool) {
	return n.pubkey, len(n.pubkey) > 0
}

func (n *Nostr) Npub() (string, error) {
	return nip19.EncodePublicKey(n.pubkey)
}

func (n *Nostr) HasSecretKey() bool {
	return len(n.secretKey) > 0
}

// None is the identity when no key is configured.
type None struct{}

func (None) CurrentPubkey() (string, bool) {
	return "", false
}
