// Package wallet talks to a Cashu mint over HTTP: it fetches and caches
// keysets, computes input fees, swaps proofs into new ones under a
// spending condition and checks proof states.
package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut02"
	"github.com/nutlock/nutlock/cashu/nuts/nut07"
	"github.com/nutlock/nutlock/crypto"
	"github.com/nutlock/nutlock/wallet/storage"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultCacheSize = 64
)

var (
	ErrNoActiveKeyset = errors.New("could not find an active keyset for the unit")
	ErrUnsupportedNut = errors.New("mint does not support nut")
)

type Config struct {
	MintURL string
	// Timeout for each request to the mint. Defaults to 30 seconds.
	Timeout   time.Duration
	CacheSize int
	// Storage is optional. If set, fetched keysets are persisted
	// and read back before asking the mint.
	Storage storage.KeysetStore
	Logger  *slog.Logger
}

// Mint is a client for a single mint. It is safe for concurrent use.
type Mint struct {
	url    string
	client *http.Client
	logger *slog.Logger
	db     storage.KeysetStore
	cache  *lru.Cache[string, *crypto.WalletKeyset]

	mu             sync.RWMutex
	feePpk         map[string]uint
	activeKeysetId string
}

func NewMint(config Config) (*Mint, error) {
	mintURL := strings.TrimSuffix(config.MintURL, "/")
	if len(mintURL) == 0 {
		return nil, errors.New("mint url cannot be empty")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *crypto.WalletKeyset](cacheSize)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mint := &Mint{
		url:    mintURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		db:     config.Storage,
		cache:  cache,
		feePpk: make(map[string]uint),
	}

	if mint.db != nil {
		for id, keyset := range mint.db.GetKeysets()[mintURL] {
			keyset := keyset
			mint.feePpk[id] = keyset.InputFeePpk
			if len(keyset.PublicKeys) > 0 {
				mint.cache.Add(id, &keyset)
			}
		}
	}

	return mint, nil
}

func (m *Mint) URL() string {
	return m.url
}

// GetKeysets refreshes the fees and the active sat keyset from the mint.
func (m *Mint) GetKeysets(ctx context.Context) error {
	keysetsRes, err := m.GetAllKeysets(ctx)
	if err != nil {
		return fmt.Errorf("error getting keysets from mint: %w", err)
	}

	feePpk := make(map[string]uint, len(keysetsRes.Keysets))
	var activeKeysetId string
	for _, keyset := range keysetsRes.Keysets {
		feePpk[keyset.Id] = keyset.InputFeePpk
		_, err := hex.DecodeString(keyset.Id)
		if keyset.Active && keyset.Unit == cashu.Sat.String() && err == nil {
			activeKeysetId = keyset.Id
		}
	}

	m.mu.Lock()
	m.feePpk = feePpk
	m.activeKeysetId = activeKeysetId
	m.mu.Unlock()

	if m.db != nil {
		for _, keyset := range keysetsRes.Keysets {
			stored := m.db.GetKeyset(m.url, keyset.Id)
			if stored == nil || stored.Active == keyset.Active && stored.InputFeePpk == keyset.InputFeePpk {
				continue
			}
			stored.Active = keyset.Active
			stored.InputFeePpk = keyset.InputFeePpk
			if err := m.db.SaveKeyset(stored); err != nil {
				return err
			}
			m.cache.Add(stored.Id, stored)
		}
	}

	m.logger.Debug("refreshed keysets",
		slog.String("mint", m.url),
		slog.Int("keysets", len(keysetsRes.Keysets)),
		slog.String("active", activeKeysetId),
	)

	if activeKeysetId == "" {
		return ErrNoActiveKeyset
	}
	return nil
}

// GetKeys returns the keyset with its public keys. It returns nil if
// the mint does not know the keyset.
func (m *Mint) GetKeys(ctx context.Context, keysetId string) (*crypto.WalletKeyset, error) {
	if keyset, ok := m.cache.Get(keysetId); ok {
		return keyset, nil
	}

	if m.db != nil {
		if keyset := m.db.GetKeyset(m.url, keysetId); keyset != nil && len(keyset.PublicKeys) > 0 {
			m.cache.Add(keysetId, keyset)
			return keyset, nil
		}
	}

	keysetsRes, err := m.GetKeysetById(ctx, keysetId)
	if err != nil {
		var cashuErr cashu.Error
		if errors.As(err, &cashuErr) && cashuErr.Code == cashu.UnknownKeysetErrCode {
			return nil, nil
		}
		var httpErr *httpError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting keyset from mint: %w", err)
	}

	for _, keysetRes := range keysetsRes.Keysets {
		if keysetRes.Id != keysetId {
			continue
		}

		keys, err := crypto.MapPubKeys(keysetRes.Keys)
		if err != nil {
			return nil, err
		}

		// only version 00 ids can be derived from the keys
		if strings.HasPrefix(keysetId, "00") {
			id := crypto.DeriveKeysetId(keys)
			if id != keysetId {
				return nil, fmt.Errorf("Got invalid keyset. Derived id: '%v' but got '%v' from mint", id, keysetId)
			}
		}

		m.mu.RLock()
		inputFeePpk := m.feePpk[keysetId]
		active := m.activeKeysetId == keysetId
		m.mu.RUnlock()

		keyset := &crypto.WalletKeyset{
			Id:          keysetId,
			MintURL:     m.url,
			Unit:        keysetRes.Unit,
			Active:      active,
			PublicKeys:  keys,
			InputFeePpk: inputFeePpk,
		}
		if m.db != nil {
			if err := m.db.SaveKeyset(keyset); err != nil {
				return nil, err
			}
		}
		m.cache.Add(keysetId, keyset)
		return keyset, nil
	}

	return nil, nil
}

// FeesFor returns the fees for spending the proofs using the input
// fees last fetched with GetKeysets.
func (m *Mint) FeesFor(proofs cashu.Proofs) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return nut02.FeesForProofs(proofs, m.feePpk)
}

// CheckProofStates returns the state of each proof in the same order
// as the proofs.
func (m *Mint) CheckProofStates(ctx context.Context, proofs cashu.Proofs) ([]nut07.ProofState, error) {
	Ys := make([]string, len(proofs))
	for i, proof := range proofs {
		Y, err := crypto.HashToCurve([]byte(proof.Secret))
		if err != nil {
			return nil, err
		}
		Ys[i] = hex.EncodeToString(Y.SerializeCompressed())
	}

	stateResponse, err := m.PostCheckProofState(ctx, nut07.PostCheckStateRequest{Ys: Ys})
	if err != nil {
		return nil, fmt.Errorf("error checking proof states: %w", err)
	}

	statesByY := make(map[string]nut07.ProofState, len(stateResponse.States))
	for _, state := range stateResponse.States {
		statesByY[state.Y] = state
	}

	states := make([]nut07.ProofState, len(Ys))
	for i, Y := range Ys {
		state, ok := statesByY[Y]
		if !ok {
			return nil, fmt.Errorf("mint did not return state for Y '%v'", Y)
		}
		states[i] = state
	}
	return states, nil
}

func (m *Mint) activeKeyset(ctx context.Context) (*crypto.WalletKeyset, error) {
	m.mu.RLock()
	activeKeysetId := m.activeKeysetId
	m.mu.RUnlock()

	if activeKeysetId == "" {
		if err := m.GetKeysets(ctx); err != nil {
			return nil, err
		}
		m.mu.RLock()
		activeKeysetId = m.activeKeysetId
		m.mu.RUnlock()
	}

	keyset, err := m.GetKeys(ctx, activeKeysetId)
	if err != nil {
		return nil, err
	}
	if keyset == nil {
		return nil, ErrNoActiveKeyset
	}
	return keyset, nil
}

// CheckSupport returns ErrUnsupportedNut if the mint does not
// advertise support for any of the nuts.
func (m *Mint) CheckSupport(ctx context.Context, nuts ...int) error {
	mintInfo, err := m.GetMintInfo(ctx)
	if err != nil {
		return fmt.Errorf("error getting mint info: %w", err)
	}
	for _, nut := range nuts {
		if !mintInfo.Nuts.Supports(nut) {
			return fmt.Errorf("%w %02d", ErrUnsupportedNut, nut)
		}
	}
	return nil
}
