// Package nut10 implements well-known secrets that carry spending conditions.
// See https://github.com/cashubtc/nuts/blob/main/10.md
package nut10

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nutlock/nutlock/cashu"
)

type SecretKind int

const (
	AnyoneCanSpend SecretKind = iota
	P2PK
	HTLC
)

var (
	ErrInvalidSecret     = errors.New("invalid well-known secret")
	ErrInvalidSecretKind = errors.New("invalid kind for secret")
)

func (kind SecretKind) String() string {
	switch kind {
	case P2PK:
		return "P2PK"
	case HTLC:
		return "HTLC"
	default:
		return "anyonecanspend"
	}
}

func kindFromString(kind string) SecretKind {
	switch kind {
	case "P2PK":
		return P2PK
	case "HTLC":
		return HTLC
	}
	return AnyoneCanSpend
}

type WellKnownSecret struct {
	Kind SecretKind
	Data SecretData
}

type SecretData struct {
	Nonce string     `json:"nonce"`
	Data  string     `json:"data"`
	Tags  [][]string `json:"tags,omitempty"`
}

// SecretType returns the kind of the proof's secret. Secrets that
// are not well-known are treated as AnyoneCanSpend.
func SecretType(proof cashu.Proof) SecretKind {
	secret, err := DeserializeSecret(proof.Secret)
	if err != nil {
		return AnyoneCanSpend
	}
	return secret.Kind
}

// SerializeSecret returns the json string to be put in the secret field of a proof
func SerializeSecret(secret WellKnownSecret) (string, error) {
	if secret.Kind != P2PK && secret.Kind != HTLC {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidSecretKind, secret.Kind)
	}

	jsonSecret, err := json.Marshal(secret.Data)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("[\"%s\", %v]", secret.Kind, string(jsonSecret)), nil
}

// DeserializeSecret returns the well-known secret.
// It returns error if it's not valid according to NUT-10
func DeserializeSecret(secret string) (WellKnownSecret, error) {
	var rawJsonSecret []json.RawMessage
	if err := json.Unmarshal([]byte(secret), &rawJsonSecret); err != nil {
		return WellKnownSecret{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	// Well-known secret should have a length of at least 2
	if len(rawJsonSecret) < 2 {
		return WellKnownSecret{}, fmt.Errorf("%w: length < 2", ErrInvalidSecret)
	}

	var kind string
	if err := json.Unmarshal(rawJsonSecret[0], &kind); err != nil {
		return WellKnownSecret{}, ErrInvalidSecretKind
	}

	var secretData SecretData
	if err := json.Unmarshal(rawJsonSecret[1], &secretData); err != nil {
		return WellKnownSecret{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	return WellKnownSecret{Kind: kindFromString(kind), Data: secretData}, nil
}

type SpendingCondition struct {
	Kind SecretKind
	Data string
	Tags [][]string
}

// NewSecretFromSpendingCondition creates a secret with a random
// nonce for the spending condition.
func NewSecretFromSpendingCondition(spendingCondition SpendingCondition) (string, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", err
	}

	return SerializeSecret(WellKnownSecret{
		Kind: spendingCondition.Kind,
		Data: SecretData{
			Nonce: hex.EncodeToString(nonceBytes),
			Data:  spendingCondition.Data,
			Tags:  spendingCondition.Tags,
		},
	})
}
