package nutzap

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut11"
	"github.com/nutlock/nutlock/relock"
	"github.com/nutlock/nutlock/testutils"
	"github.com/nutlock/nutlock/wallet"
)

func nutzapEvent(t *testing.T, proofs cashu.Proofs, mintURL, recipient string) *nostr.Event {
	t.Helper()

	tags := nostr.Tags{}
	for _, proof := range proofs {
		jsonProof, err := json.Marshal(proof)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tags = append(tags, nostr.Tag{"proof", string(jsonProof)})
	}
	tags = append(tags, nostr.Tag{"u", mintURL}, nostr.Tag{"p", recipient})

	evt := &nostr.Event{
		Kind:      KindNutzap,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   "zap",
	}
	if err := evt.Sign(nostr.GeneratePrivateKey()); err != nil {
		t.Fatalf("unexpected error signing event: %v", err)
	}
	return evt
}

func TestAmountRedeemable(t *testing.T) {
	fakeMint := testutils.NewMint("nutzap", 0)
	defer fakeMint.Close()
	client, err := wallet.NewMint(wallet.Config{MintURL: fakeMint.URL()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recipient, _ := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	lockPoint, _ := relock.DeriveLockPoint(recipient)
	proofs, err := fakeMint.IssueProofs(21, testutils.LockedSecret(nut11.SpendingCondition{Pubkey: lockPoint}))
	if err != nil {
		t.Fatalf("unexpected error issuing proofs: %v", err)
	}

	evt := nutzapEvent(t, proofs, fakeMint.URL(), recipient)

	token, err := Token(evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Amount() != 21 || token.Mint() != fakeMint.URL() {
		t.Fatalf("expected 21 sats from '%v' but got %v from '%v'", fakeMint.URL(), token.Amount(), token.Mint())
	}

	amount, err := AmountRedeemable(context.Background(), evt, client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount != 21 {
		t.Fatalf("expected '%v' but got '%v' instead", 21, amount)
	}

	evt.Content = "tampered"
	if _, err := AmountRedeemable(context.Background(), evt, client); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected error '%v' but got '%v' instead", ErrInvalidSignature, err)
	}
}

func TestToken(t *testing.T) {
	fakeMint := testutils.NewMint("nutzap-token", 0)
	defer fakeMint.Close()
	proofs, _ := fakeMint.IssueProofs(3, testutils.RandomSecret)

	noMint := nutzapEvent(t, proofs, "", "abc")
	if _, err := Token(noMint); !errors.Is(err, ErrNoMint) {
		t.Fatalf("expected error '%v' but got '%v' instead", ErrNoMint, err)
	}

	noProofs := nutzapEvent(t, nil, fakeMint.URL(), "abc")
	if _, err := Token(noProofs); !errors.Is(err, cashu.ErrEmptyToken) {
		t.Fatalf("expected error '%v' but got '%v' instead", cashu.ErrEmptyToken, err)
	}

	note := nutzapEvent(t, proofs, fakeMint.URL(), "abc")
	note.Kind = nostr.KindTextNote
	if _, err := Token(note); !errors.Is(err, ErrNotNutzap) {
		t.Fatalf("expected error '%v' but got '%v' instead", ErrNotNutzap, err)
	}

	recipient, ok := Recipient(note)
	if !ok || recipient != "abc" {
		t.Fatalf("expected recipient '%v' but got '%v' instead", "abc", recipient)
	}
}
