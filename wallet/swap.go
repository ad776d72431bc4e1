package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut03"
	"github.com/nutlock/nutlock/cashu/nuts/nut11"
	"github.com/nutlock/nutlock/cashu/nuts/nut12"
	"github.com/nutlock/nutlock/crypto"
	"github.com/nutlock/nutlock/relock"
)

var _ relock.MintClient = (*Mint)(nil)

// Swap spends the inputs at the mint. The returned Send proofs add up to
// amount and are locked under the condition. Whatever is left after
// amount and fees comes back as Keep proofs with random secrets.
func (m *Mint) Swap(
	ctx context.Context,
	amount uint64,
	inputs cashu.Proofs,
	condition nut11.SpendingCondition,
) (*relock.SwapResult, error) {
	if amount == 0 {
		return nil, errors.New("swap amount cannot be zero")
	}

	keyset, err := m.activeKeyset(ctx)
	if err != nil {
		return nil, err
	}

	inputsAmount := inputs.Amount()
	fees := m.FeesFor(inputs)
	if inputsAmount < amount+fees {
		return nil, cashu.InsufficientProofsAmount
	}
	change := inputsAmount - amount - fees

	sendMessages, sendSecrets, sendRs, err := blindedMessagesFromSpendingCondition(
		cashu.AmountSplit(amount), keyset.Id, condition)
	if err != nil {
		return nil, fmt.Errorf("error creating blinded messages: %v", err)
	}

	keepMessages, keepSecrets, keepRs, err := createBlindedMessages(cashu.AmountSplit(change), keyset.Id)
	if err != nil {
		return nil, fmt.Errorf("error creating blinded messages: %v", err)
	}

	send := make(map[string]bool, len(sendSecrets))
	for _, secret := range sendSecrets {
		send[secret] = true
	}

	outputs := append(sendMessages, keepMessages...)
	secrets := append(sendSecrets, keepSecrets...)
	rs := append(sendRs, keepRs...)
	cashu.SortBlindedMessages(outputs, secrets, rs)

	swapResponse, err := m.PostSwap(ctx, nut03.PostSwapRequest{Inputs: inputs, Outputs: outputs})
	if err != nil {
		return nil, err
	}

	proofs, err := constructProofs(swapResponse.Signatures, outputs, secrets, rs, keyset)
	if err != nil {
		return nil, err
	}

	result := &relock.SwapResult{Keep: cashu.Proofs{}, Send: cashu.Proofs{}}
	for _, proof := range proofs {
		if send[proof.Secret] {
			result.Send = append(result.Send, proof)
		} else {
			result.Keep = append(result.Keep, proof)
		}
	}

	m.logger.Debug("swapped proofs",
		"inputs", inputsAmount,
		"fees", fees,
		"send", result.Send.Amount(),
		"keep", result.Keep.Amount(),
	)

	return result, nil
}

func blindedMessagesFromSpendingCondition(
	splitAmounts []uint64,
	keysetId string,
	condition nut11.SpendingCondition,
) (
	cashu.BlindedMessages,
	[]string,
	[]*secp256k1.PrivateKey,
	error,
) {
	splitLen := len(splitAmounts)
	blindedMessages := make(cashu.BlindedMessages, splitLen)
	secrets := make([]string, splitLen)
	rs := make([]*secp256k1.PrivateKey, splitLen)
	for i, amt := range splitAmounts {
		r, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, nil, nil, err
		}

		secret, err := nut11.P2PKSecret(condition)
		if err != nil {
			return nil, nil, nil, err
		}

		B_, r, err := crypto.BlindMessage(secret, r)
		if err != nil {
			return nil, nil, nil, err
		}

		blindedMessages[i] = cashu.NewBlindedMessage(keysetId, amt, B_)
		secrets[i] = secret
		rs[i] = r
	}

	return blindedMessages, secrets, rs, nil
}

func createBlindedMessages(splitAmounts []uint64, keysetId string) (
	cashu.BlindedMessages,
	[]string,
	[]*secp256k1.PrivateKey,
	error,
) {
	splitLen := len(splitAmounts)
	blindedMessages := make(cashu.BlindedMessages, splitLen)
	secrets := make([]string, splitLen)
	rs := make([]*secp256k1.PrivateKey, splitLen)

	for i, amt := range splitAmounts {
		r, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, nil, nil, err
		}

		var B_ *secp256k1.PublicKey
		var secret string
		// generate random secret until it finds valid point
		for {
			secretBytes := make([]byte, 32)
			if _, err = rand.Read(secretBytes); err != nil {
				return nil, nil, nil, err
			}
			secret = hex.EncodeToString(secretBytes)
			B_, r, err = crypto.BlindMessage(secret, r)
			if err == nil {
				break
			}
		}

		blindedMessages[i] = cashu.NewBlindedMessage(keysetId, amt, B_)
		secrets[i] = secret
		rs[i] = r
	}

	return blindedMessages, secrets, rs, nil
}

// constructProofs unblinds the signatures after checking their DLEQ
// proofs. The DLEQ (with r) is kept in each proof so it can be
// verified by whoever receives it.
func constructProofs(
	blindedSignatures cashu.BlindedSignatures,
	blindedMessages cashu.BlindedMessages,
	secrets []string,
	rs []*secp256k1.PrivateKey,
	keyset *crypto.WalletKeyset,
) (cashu.Proofs, error) {
	if len(blindedSignatures) != len(secrets) || len(blindedSignatures) != len(rs) {
		return nil, errors.New("lengths do not match")
	}

	proofs := make(cashu.Proofs, len(blindedSignatures))
	for i, blindedSignature := range blindedSignatures {
		if blindedSignature.Amount != blindedMessages[i].Amount {
			return nil, errors.New("blinded signature amount does not match blinded message")
		}
		pubkey, ok := keyset.PublicKeys[blindedSignature.Amount]
		if !ok {
			return nil, errors.New("key not found")
		}

		if blindedSignature.DLEQ == nil {
			return nil, errors.New("mint did not return DLEQ proof for blinded signature")
		}
		if !nut12.VerifyBlindSignatureDLEQ(*blindedSignature.DLEQ, pubkey,
			blindedMessages[i].B_, blindedSignature.C_) {
			return nil, errors.New("got blinded signature with invalid DLEQ proof")
		}

		C_bytes, err := hex.DecodeString(blindedSignature.C_)
		if err != nil {
			return nil, err
		}
		C_, err := secp256k1.ParsePubKey(C_bytes)
		if err != nil {
			return nil, err
		}

		C := crypto.UnblindSignature(C_, rs[i], pubkey)
		proofs[i] = cashu.Proof{
			Amount: blindedSignature.Amount,
			Secret: secrets[i],
			C:      hex.EncodeToString(C.SerializeCompressed()),
			Id:     blindedSignature.Id,
			DLEQ: &cashu.DLEQProof{
				E: blindedSignature.DLEQ.E,
				S: blindedSignature.DLEQ.S,
				R: hex.EncodeToString(rs[i].Serialize()),
			},
		}
	}

	return proofs, nil
}
