package testutils

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/gorilla/mux"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut01"
	"github.com/nutlock/nutlock/cashu/nuts/nut02"
	"github.com/nutlock/nutlock/cashu/nuts/nut03"
	"github.com/nutlock/nutlock/cashu/nuts/nut06"
	"github.com/nutlock/nutlock/cashu/nuts/nut07"
	"github.com/nutlock/nutlock/crypto"
)

// Mint is an in-process mint serving the keys, keysets, swap and
// checkstate endpoints over an httptest server. It does not enforce
// spending conditions on inputs.
type Mint struct {
	mu      sync.Mutex
	keysets map[string]*crypto.MintKeyset
	active  *crypto.MintKeyset
	states  map[string]nut07.State
	nuts    nut06.Nuts

	requests map[string]int

	server *httptest.Server
	logger *slog.Logger
}

func NewMint(seed string, inputFeePpk uint) *Mint {
	keyset := crypto.GenerateKeyset(seed, "0/0/0", inputFeePpk)
	nuts := nut06.Nuts{}
	for _, nut := range []int{7, 10, 11, 12} {
		nuts.Set(nut, true)
	}
	m := &Mint{
		keysets:  map[string]*crypto.MintKeyset{keyset.Id: keyset},
		active:   keyset,
		states:   make(map[string]nut07.State),
		nuts:     nuts,
		requests: make(map[string]int),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	m.server = httptest.NewServer(m.router())
	return m
}

func (m *Mint) URL() string {
	return m.server.URL
}

func (m *Mint) Close() {
	m.server.Close()
}

func (m *Mint) ActiveKeyset() *crypto.MintKeyset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Requests returns how many times the route (e.g "/v1/swap") was called.
func (m *Mint) Requests(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

// SetState overrides the state the mint reports for the proof.
func (m *Mint) SetState(proof cashu.Proof, state nut07.State) error {
	Y, err := proofY(proof.Secret)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[Y] = state
	m.mu.Unlock()
	return nil
}

// SetSupported changes whether the mint advertises support for the nut.
func (m *Mint) SetSupported(nut int, supported bool) {
	m.mu.Lock()
	m.nuts.Set(nut, supported)
	m.mu.Unlock()
}

func (m *Mint) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/info", m.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/v1/keys", m.handleActiveKeys).Methods(http.MethodGet)
	r.HandleFunc("/v1/keys/{id}", m.handleKeysById).Methods(http.MethodGet)
	r.HandleFunc("/v1/keysets", m.handleKeysets).Methods(http.MethodGet)
	r.HandleFunc("/v1/swap", m.handleSwap).Methods(http.MethodPost)
	r.HandleFunc("/v1/checkstate", m.handleCheckState).Methods(http.MethodPost)
	r.Use(m.countRequests)
	return r
}

func (m *Mint) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		m.mu.Lock()
		m.requests[req.URL.Path]++
		m.mu.Unlock()
		m.logger.Debug("request", slog.String("method", req.Method), slog.String("path", req.URL.Path))
		next.ServeHTTP(rw, req)
	})
}

func (m *Mint) handleInfo(rw http.ResponseWriter, req *http.Request) {
	m.mu.Lock()
	nuts := make(nut06.Nuts, len(m.nuts))
	for nut, setting := range m.nuts {
		nuts[nut] = setting
	}
	m.mu.Unlock()

	writeResponse(rw, nut06.MintInfo{
		Name:        "test mint",
		Version:     "nutlock/testutils",
		Description: "in-process mint",
		Nuts:        nuts,
	})
}

func (m *Mint) handleActiveKeys(rw http.ResponseWriter, req *http.Request) {
	keyset := m.ActiveKeyset()
	writeResponse(rw, nut01.GetKeysResponse{Keysets: []nut01.Keyset{publicKeyset(keyset)}})
}

func (m *Mint) handleKeysById(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	m.mu.Lock()
	keyset, ok := m.keysets[id]
	m.mu.Unlock()
	if !ok {
		writeErr(rw, cashu.UnknownKeysetErr)
		return
	}

	writeResponse(rw, nut01.GetKeysResponse{Keysets: []nut01.Keyset{publicKeyset(keyset)}})
}

func (m *Mint) handleKeysets(rw http.ResponseWriter, req *http.Request) {
	m.mu.Lock()
	keysets := make([]nut02.Keyset, 0, len(m.keysets))
	for _, keyset := range m.keysets {
		keysets = append(keysets, nut02.Keyset{
			Id:          keyset.Id,
			Unit:        keyset.Unit,
			Active:      keyset.Active,
			InputFeePpk: keyset.InputFeePpk,
		})
	}
	m.mu.Unlock()

	writeResponse(rw, nut02.GetKeysetsResponse{Keysets: keysets})
}

func (m *Mint) handleSwap(rw http.ResponseWriter, req *http.Request) {
	var swapRequest nut03.PostSwapRequest
	if err := json.NewDecoder(req.Body).Decode(&swapRequest); err != nil {
		writeErr(rw, cashu.EmptyBodyErr)
		return
	}

	signatures, err := m.Swap(swapRequest.Inputs, swapRequest.Outputs)
	if err != nil {
		writeErr(rw, err)
		return
	}

	writeResponse(rw, nut03.PostSwapResponse{Signatures: signatures})
}

func (m *Mint) handleCheckState(rw http.ResponseWriter, req *http.Request) {
	var stateRequest nut07.PostCheckStateRequest
	if err := json.NewDecoder(req.Body).Decode(&stateRequest); err != nil {
		writeErr(rw, cashu.EmptyBodyErr)
		return
	}

	m.mu.Lock()
	states := make([]nut07.ProofState, len(stateRequest.Ys))
	for i, Y := range stateRequest.Ys {
		states[i] = nut07.ProofState{Y: Y, State: m.states[Y]}
	}
	m.mu.Unlock()

	writeResponse(rw, nut07.PostCheckStateResponse{States: states})
}

// Swap verifies the inputs, signs the outputs and marks the inputs
// as spent. Outputs must add up to the inputs minus the fees.
func (m *Mint) Swap(proofs cashu.Proofs, blindedMessages cashu.BlindedMessages) (cashu.BlindedSignatures, error) {
	if len(proofs) == 0 {
		return nil, cashu.NoProofsProvided
	}
	if cashu.CheckDuplicateProofs(proofs) {
		return nil, cashu.DuplicateProofs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	Ys := make([]string, len(proofs))
	feePpk := make(map[string]uint, len(m.keysets))
	for id, keyset := range m.keysets {
		feePpk[id] = keyset.InputFeePpk
	}

	for i, proof := range proofs {
		keyset, ok := m.keysets[proof.Id]
		if !ok {
			return nil, cashu.UnknownKeysetErr
		}
		keypair, ok := keyset.Keys[proof.Amount]
		if !ok {
			return nil, cashu.InvalidProofErr
		}

		Cbytes, err := hex.DecodeString(proof.C)
		if err != nil {
			return nil, cashu.InvalidProofErr
		}
		C, err := secp256k1.ParsePubKey(Cbytes)
		if err != nil {
			return nil, cashu.InvalidProofErr
		}
		if !crypto.Verify(proof.Secret, keypair.PrivateKey, C) {
			return nil, cashu.InvalidProofErr
		}

		Y, err := proofY(proof.Secret)
		if err != nil {
			return nil, cashu.InvalidProofErr
		}
		switch m.states[Y] {
		case nut07.Spent:
			return nil, cashu.ProofAlreadyUsedErr
		case nut07.Pending:
			return nil, cashu.ProofPendingErr
		}
		Ys[i] = Y
	}

	fees := nut02.FeesForProofs(proofs, feePpk)
	if proofs.Amount() < fees || blindedMessages.Amount() != proofs.Amount()-fees {
		return nil, cashu.InsufficientProofsAmount
	}

	signatures := make(cashu.BlindedSignatures, len(blindedMessages))
	for i, msg := range blindedMessages {
		if msg.Id != m.active.Id {
			return nil, cashu.InactiveKeysetSignatureRequest
		}
		signature, err := signBlindedMessage(m.active, msg)
		if err != nil {
			return nil, err
		}
		signatures[i] = *signature
	}

	for _, Y := range Ys {
		m.states[Y] = nut07.Spent
	}

	return signatures, nil
}

func signBlindedMessage(keyset *crypto.MintKeyset, msg cashu.BlindedMessage) (*cashu.BlindedSignature, error) {
	keypair, ok := keyset.Keys[msg.Amount]
	if !ok {
		return nil, cashu.InvalidBlindedMessageAmount
	}

	B_bytes, err := hex.DecodeString(msg.B_)
	if err != nil {
		return nil, cashu.BuildCashuError(err.Error(), cashu.StandardErrCode)
	}
	B_, err := secp256k1.ParsePubKey(B_bytes)
	if err != nil {
		return nil, cashu.BuildCashuError(err.Error(), cashu.StandardErrCode)
	}

	C_ := crypto.SignBlindedMessage(B_, keypair.PrivateKey)
	e, s, err := crypto.GenerateDLEQ(keypair.PrivateKey, B_, C_)
	if err != nil {
		return nil, cashu.BuildCashuError(err.Error(), cashu.StandardErrCode)
	}

	return &cashu.BlindedSignature{
		Amount: msg.Amount,
		C_:     hex.EncodeToString(C_.SerializeCompressed()),
		Id:     keyset.Id,
		DLEQ: &cashu.DLEQProof{
			E: hex.EncodeToString(e.Serialize()),
			S: hex.EncodeToString(s.Serialize()),
		},
	}, nil
}

func publicKeyset(keyset *crypto.MintKeyset) nut01.Keyset {
	return nut01.Keyset{
		Id:   keyset.Id,
		Unit: keyset.Unit,
		Keys: keyset.DerivePublic(),
	}
}

func proofY(secret string) (string, error) {
	Y, err := crypto.HashToCurve([]byte(secret))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(Y.SerializeCompressed()), nil
}

func writeResponse(rw http.ResponseWriter, response any) {
	rw.Header().Set("Content-Type", "application/json")
	jsonRes, err := json.Marshal(response)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		rw.Write([]byte(fmt.Sprintf("error encoding response: %v", err)))
		return
	}
	rw.Write(jsonRes)
}

func writeErr(rw http.ResponseWriter, err error) {
	var cashuErr cashu.Error
	var cashuErrPtr *cashu.Error
	switch {
	case errors.As(err, &cashuErrPtr):
		cashuErr = *cashuErrPtr
	case errors.As(err, &cashuErr):
	default:
		cashuErr = cashu.Error{Detail: err.Error(), Code: cashu.StandardErrCode}
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(rw).Encode(cashuErr)
}
