// Package nut11 implements Pay-to-Pubkey spending conditions.
// See https://github.com/cashubtc/nuts/blob/main/11.md
package nut11

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut10"
)

const (
	// supported tags
	SIGFLAG  = "sigflag"
	NSIGS    = "n_sigs"
	PUBKEYS  = "pubkeys"
	LOCKTIME = "locktime"
	REFUND   = "refund"

	// SIGFLAG types
	SIGINPUTS = "SIG_INPUTS"
	SIGALL    = "SIG_ALL"

	// Error code
	NUT11ErrCode cashu.CashuErrCode = 30001
)

// errors
var (
	InvalidTagErr          = cashu.Error{Detail: "invalid tag", Code: NUT11ErrCode}
	NSigsMustBePositiveErr = cashu.Error{Detail: "n_sigs must be a positive integer", Code: NUT11ErrCode}
	EmptyPubkeyErr         = cashu.Error{Detail: "pubkey cannot be empty", Code: NUT11ErrCode}
)

// P2PKTags are the typed constraints of a P2PK secret.
// Locktime is nil when the secret has no locktime tag. If the tag
// is repeated, the first occurrence is the one that counts.
type P2PKTags struct {
	Sigflag  string
	NSigs    int
	Pubkeys  []*btcec.PublicKey
	Locktime *int64
	Refund   []*btcec.PublicKey
}

func ParseP2PKTags(tags [][]string) (*P2PKTags, error) {
	p2pkTags := P2PKTags{}

	for _, tag := range tags {
		if len(tag) < 2 {
			return nil, InvalidTagErr
		}
		tagType := tag[0]
		switch tagType {
		case SIGFLAG:
			sigflagType := tag[1]
			if sigflagType != SIGINPUTS && sigflagType != SIGALL {
				errmsg := fmt.Sprintf("invalid sigflag: %v", sigflagType)
				return nil, cashu.BuildCashuError(errmsg, NUT11ErrCode)
			}
			p2pkTags.Sigflag = sigflagType
		case NSIGS:
			nsig, err := strconv.ParseInt(tag[1], 10, 8)
			if err != nil {
				errmsg := fmt.Sprintf("invalid n_sigs value: %v", err)
				return nil, cashu.BuildCashuError(errmsg, NUT11ErrCode)
			}
			if nsig < 0 {
				return nil, NSigsMustBePositiveErr
			}
			p2pkTags.NSigs = int(nsig)
		case PUBKEYS:
			pubkeys, err := parsePublicKeys(tag[1:])
			if err != nil {
				return nil, err
			}
			p2pkTags.Pubkeys = pubkeys
		case LOCKTIME:
			if p2pkTags.Locktime != nil {
				continue
			}
			locktime, err := strconv.ParseInt(tag[1], 10, 64)
			if err != nil {
				errmsg := fmt.Sprintf("invalid locktime: %v", err)
				return nil, cashu.BuildCashuError(errmsg, NUT11ErrCode)
			}
			p2pkTags.Locktime = &locktime
		case REFUND:
			refundKeys, err := parsePublicKeys(tag[1:])
			if err != nil {
				return nil, err
			}
			p2pkTags.Refund = refundKeys
		}
	}

	return &p2pkTags, nil
}

func parsePublicKeys(keys []string) ([]*btcec.PublicKey, error) {
	pubkeys := make([]*btcec.PublicKey, len(keys))
	for i, key := range keys {
		pubkey, err := ParsePublicKey(key)
		if err != nil {
			return nil, err
		}
		pubkeys[i] = pubkey
	}
	return pubkeys, nil
}

// SpendingCondition locks ecash to Pubkey. After Locktime (unix seconds)
// the RefundKeys can also spend it. A zero Locktime means no locktime.
type SpendingCondition struct {
	Pubkey     string
	Locktime   int64
	RefundKeys []string
	Pubkeys    []string
	NSigs      int
	SigFlag    string
}

func (sc SpendingCondition) Tags() [][]string {
	tags := make([][]string, 0)
	if len(sc.SigFlag) > 0 {
		tags = append(tags, []string{SIGFLAG, sc.SigFlag})
	}
	if sc.NSigs > 0 {
		tags = append(tags, []string{NSIGS, strconv.Itoa(sc.NSigs)})
	}
	if len(sc.Pubkeys) > 0 {
		tags = append(tags, append([]string{PUBKEYS}, sc.Pubkeys...))
	}
	if sc.Locktime > 0 {
		tags = append(tags, []string{LOCKTIME, strconv.FormatInt(sc.Locktime, 10)})
	}
	if len(sc.RefundKeys) > 0 {
		tags = append(tags, append([]string{REFUND}, sc.RefundKeys...))
	}
	return tags
}

// P2PKSecret returns a secret with a spending condition
// that will lock ecash to a public key
func P2PKSecret(condition SpendingCondition) (string, error) {
	if len(condition.Pubkey) == 0 {
		return "", EmptyPubkeyErr
	}
	return nut10.NewSecretFromSpendingCondition(nut10.SpendingCondition{
		Kind: nut10.P2PK,
		Data: condition.Pubkey,
		Tags: condition.Tags(),
	})
}

func IsSecretP2PK(proof cashu.Proof) bool {
	return nut10.SecretType(proof) == nut10.P2PK
}

func ParsePublicKey(key string) (*btcec.PublicKey, error) {
	hexPubkey, err := hex.DecodeString(key)
	if err != nil {
		errmsg := fmt.Sprintf("invalid public key: %v", err)
		return nil, cashu.BuildCashuError(errmsg, NUT11ErrCode)
	}
	pubkey, err := btcec.ParsePubKey(hexPubkey)
	if err != nil {
		errmsg := fmt.Sprintf("invalid public key: %v", err)
		return nil, cashu.BuildCashuError(errmsg, NUT11ErrCode)
	}
	return pubkey, nil
}
