package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestHashToCurve(t *testing.T) {
	tests := []struct {
		message  string
		expected string
	}{
		{message: "0000000000000000000000000000000000000000000000000000000000000000",
			expected: "024cce997d3b518f739663b757deaec95bcd9473c30a14ac2fd04023a739d1a725"},
		{message: "0000000000000000000000000000000000000000000000000000000000000001",
			expected: "022e7158e11c9506f1aa4248bf531298daa7febd6194f003edcd9b93ade6253acf"},
		{message: "0000000000000000000000000000000000000000000000000000000000000002",
			expected: "026cdbe15362df59cd1dd3c9c11de8aedac2106eca69236ecd9fbe117af897be4f"},
	}

	for _, test := range tests {
		msgBytes, err := hex.DecodeString(test.message)
		if err != nil {
			t.Fatalf("error decoding msg: %v", err)
		}

		pk, err := HashToCurve(msgBytes)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		hexStr := hex.EncodeToString(pk.SerializeCompressed())
		if hexStr != test.expected {
			t.Errorf("expected '%v' but got '%v' instead\n", test.expected, hexStr)
		}
	}
}

func TestBlindSignUnblind(t *testing.T) {
	secrets := []string{
		"test_message",
		"407915bc212be61a77e3e6d2aeb4c727980bda51cd06a6afc29e2861768a7837",
		`["P2PK",{"nonce":"ab","data":"02b8","tags":[["locktime","1"]]}]`,
	}

	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	K := k.PubKey()

	for _, secret := range secrets {
		r, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			t.Fatal(err)
		}

		B_, _, err := BlindMessage(secret, r)
		if err != nil {
			t.Fatalf("BlindMessage: %v", err)
		}
		C_ := SignBlindedMessage(B_, k)
		C := UnblindSignature(C_, r, K)

		if !Verify(secret, k, C) {
			t.Errorf("unblinded signature for '%v' did not verify", secret)
		}
		if Verify(secret+"x", k, C) {
			t.Errorf("signature for '%v' verified against a different secret", secret)
		}
	}
}

func TestDLEQ(t *testing.T) {
	a, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	r, _ := secp256k1.GeneratePrivateKey()
	B_, _, err := BlindMessage("some secret", r)
	if err != nil {
		t.Fatal(err)
	}
	C_ := SignBlindedMessage(B_, a)

	e, s, err := GenerateDLEQ(a, B_, C_)
	if err != nil {
		t.Fatalf("GenerateDLEQ: %v", err)
	}

	if !VerifyDLEQ(e, s, a.PubKey(), B_, C_) {
		t.Fatal("expected valid DLEQ proof")
	}

	other, _ := secp256k1.GeneratePrivateKey()
	if VerifyDLEQ(e, s, other.PubKey(), B_, C_) {
		t.Fatal("DLEQ proof verified against the wrong mint key")
	}

	forged := SignBlindedMessage(B_, other)
	if VerifyDLEQ(e, s, a.PubKey(), B_, forged) {
		t.Fatal("DLEQ proof verified for a signature made with another key")
	}
}
