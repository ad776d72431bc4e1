package cashu

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

const (
	TokenV3Prefix = "cashuA"
	TokenV4Prefix = "cashuB"
)

// Cashu token. See https://github.com/cashubtc/nuts/blob/main/00.md#token-format
type Token interface {
	Proofs() Proofs
	Mint() string
	Amount() uint64
	Serialize() (string, error)
}

// DecodeToken decodes a V4 token and falls back to V3.
func DecodeToken(tokenstr string) (Token, error) {
	tokenstr = strings.TrimSpace(tokenstr)
	tokenstr = strings.TrimPrefix(tokenstr, "cashu:")

	token, err := DecodeTokenV4(tokenstr)
	if err != nil {
		tokenV3, err := DecodeTokenV3(tokenstr)
		if err != nil {
			return nil, fmt.Errorf("invalid token: %v", err)
		}
		return tokenV3, nil
	}
	return token, nil
}

func decodeBase64(token string) ([]byte, error) {
	tokenBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		tokenBytes, err = base64.RawURLEncoding.DecodeString(token)
		if err != nil {
			return nil, fmt.Errorf("error decoding token: %v", err)
		}
	}
	return tokenBytes, nil
}

type TokenV3 struct {
	Token []TokenV3Proof `json:"token"`
	Unit  string         `json:"unit"`
	Memo  string         `json:"memo,omitempty"`
}

type TokenV3Proof struct {
	Mint   string `json:"mint"`
	Proofs Proofs `json:"proofs"`
}

func NewTokenV3(proofs Proofs, mint string, unit Unit, includeDLEQ bool) (TokenV3, error) {
	if unit != Sat {
		return TokenV3{}, ErrInvalidUnit
	}

	tokenProofs := make(Proofs, len(proofs))
	copy(tokenProofs, proofs)
	if !includeDLEQ {
		for i := range tokenProofs {
			tokenProofs[i].DLEQ = nil
		}
	}

	tokenProof := TokenV3Proof{Mint: mint, Proofs: tokenProofs}
	return TokenV3{Token: []TokenV3Proof{tokenProof}, Unit: unit.String()}, nil
}

func DecodeTokenV3(tokenstr string) (*TokenV3, error) {
	base64Token, ok := strings.CutPrefix(tokenstr, TokenV3Prefix)
	if !ok {
		return nil, ErrInvalidTokenV3
	}

	tokenBytes, err := decodeBase64(base64Token)
	if err != nil {
		return nil, err
	}

	var token TokenV3
	if err := json.Unmarshal(tokenBytes, &token); err != nil {
		return nil, fmt.Errorf("error unmarshaling token: %v", err)
	}
	if len(token.Token) == 0 {
		return nil, ErrEmptyToken
	}

	return &token, nil
}

func (t TokenV3) Proofs() Proofs {
	proofs := make(Proofs, 0)
	for _, tokenProof := range t.Token {
		proofs = append(proofs, tokenProof.Proofs...)
	}
	return proofs
}

func (t TokenV3) Mint() string {
	if len(t.Token) == 0 {
		return ""
	}
	return t.Token[0].Mint
}

func (t TokenV3) Amount() uint64 {
	return t.Proofs().Amount()
}

func (t TokenV3) Serialize() (string, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	return TokenV3Prefix + base64.URLEncoding.EncodeToString(jsonBytes), nil
}

type TokenV4 struct {
	TokenProofs []TokenV4Proof `json:"t"`
	Memo        string         `json:"d,omitempty"`
	MintURL     string         `json:"m"`
	Unit        string         `json:"u"`
}

type TokenV4Proof struct {
	Id     []byte    `json:"i"`
	Proofs []ProofV4 `json:"p"`
}

type ProofV4 struct {
	Amount  uint64  `json:"a"`
	Secret  string  `json:"s"`
	C       []byte  `json:"c"`
	Witness string  `json:"w,omitempty"`
	DLEQ    *DLEQV4 `json:"d,omitempty"`
}

type DLEQV4 struct {
	E []byte `json:"e"`
	S []byte `json:"s"`
	R []byte `json:"r"`
}

// NewTokenV4 groups the proofs by keyset id. Groups keep the order in which
// their keyset id first appears and proofs keep their relative order.
func NewTokenV4(proofs Proofs, mint string, unit Unit, includeDLEQ bool) (TokenV4, error) {
	if unit != Sat {
		return TokenV4{}, ErrInvalidUnit
	}

	groups := make(map[string]int)
	tokenProofs := make([]TokenV4Proof, 0)
	for _, proof := range proofs {
		proofV4, err := toProofV4(proof, includeDLEQ)
		if err != nil {
			return TokenV4{}, err
		}

		idx, ok := groups[proof.Id]
		if !ok {
			keysetIdBytes, err := hex.DecodeString(proof.Id)
			if err != nil {
				return TokenV4{}, fmt.Errorf("invalid keyset id: %v", err)
			}
			idx = len(tokenProofs)
			groups[proof.Id] = idx
			tokenProofs = append(tokenProofs, TokenV4Proof{Id: keysetIdBytes})
		}
		tokenProofs[idx].Proofs = append(tokenProofs[idx].Proofs, proofV4)
	}

	return TokenV4{MintURL: mint, Unit: unit.String(), TokenProofs: tokenProofs}, nil
}

func toProofV4(proof Proof, includeDLEQ bool) (ProofV4, error) {
	C, err := hex.DecodeString(proof.C)
	if err != nil {
		return ProofV4{}, fmt.Errorf("invalid C: %v", err)
	}
	proofV4 := ProofV4{
		Amount:  proof.Amount,
		Secret:  proof.Secret,
		C:       C,
		Witness: proof.Witness,
	}

	if includeDLEQ && proof.DLEQ != nil {
		e, err := hex.DecodeString(proof.DLEQ.E)
		if err != nil {
			return ProofV4{}, fmt.Errorf("invalid e in DLEQ proof: %v", err)
		}
		s, err := hex.DecodeString(proof.DLEQ.S)
		if err != nil {
			return ProofV4{}, fmt.Errorf("invalid s in DLEQ proof: %v", err)
		}
		if len(proof.DLEQ.R) == 0 {
			return ProofV4{}, errors.New("r in DLEQ proof cannot be empty")
		}
		r, err := hex.DecodeString(proof.DLEQ.R)
		if err != nil {
			return ProofV4{}, fmt.Errorf("invalid r in DLEQ proof: %v", err)
		}
		proofV4.DLEQ = &DLEQV4{E: e, S: s, R: r}
	}
	return proofV4, nil
}

func DecodeTokenV4(tokenstr string) (*TokenV4, error) {
	base64Token, ok := strings.CutPrefix(tokenstr, TokenV4Prefix)
	if !ok {
		return nil, ErrInvalidTokenV4
	}

	tokenBytes, err := decodeBase64(base64Token)
	if err != nil {
		return nil, err
	}

	var tokenV4 TokenV4
	if err := cbor.Unmarshal(tokenBytes, &tokenV4); err != nil {
		return nil, fmt.Errorf("cbor.Unmarshal: %v", err)
	}
	if len(tokenV4.TokenProofs) == 0 {
		return nil, ErrEmptyToken
	}

	return &tokenV4, nil
}

func (t TokenV4) Proofs() Proofs {
	proofs := make(Proofs, 0)
	for _, tokenV4Proof := range t.TokenProofs {
		keysetId := hex.EncodeToString(tokenV4Proof.Id)
		for _, proofV4 := range tokenV4Proof.Proofs {
			proof := Proof{
				Amount:  proofV4.Amount,
				Id:      keysetId,
				Secret:  proofV4.Secret,
				C:       hex.EncodeToString(proofV4.C),
				Witness: proofV4.Witness,
			}
			if proofV4.DLEQ != nil {
				proof.DLEQ = &DLEQProof{
					E: hex.EncodeToString(proofV4.DLEQ.E),
					S: hex.EncodeToString(proofV4.DLEQ.S),
					R: hex.EncodeToString(proofV4.DLEQ.R),
				}
			}
			proofs = append(proofs, proof)
		}
	}
	return proofs
}

func (t TokenV4) Mint() string {
	return t.MintURL
}

func (t TokenV4) Amount() uint64 {
	return t.Proofs().Amount()
}

func (t TokenV4) Serialize() (string, error) {
	cborData, err := cbor.Marshal(t)
	if err != nil {
		return "", err
	}

	return TokenV4Prefix + base64.RawURLEncoding.EncodeToString(cborData), nil
}
