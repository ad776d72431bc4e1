package cashu

import (
	"encoding/hex"
	"testing"
)

func TestDecodeTokenV4(t *testing.T) {
	tokenString := "cashuBpGF0gaJhaUgArSaMTR9YJmFwgaNhYQFhc3hAOWE2ZGJiODQ3YmQyMzJiYTc2ZGIwZGYxOTcyMTZiMjlkM2I4Y2MxNDU1M2NkMjc4MjdmYzFjYzk0MmZlZGI0ZWFjWCEDhhhUP_trhpXfStS6vN6So0qWvc2X3O4NfM-Y1HISZ5JhZGlUaGFuayB5b3VhbXVodHRwOi8vbG9jYWxob3N0OjMzMzhhdWNzYXQ="

	token, err := DecodeTokenV4(tokenString)
	if err != nil {
		t.Fatalf("unexpected error decoding token: %v", err)
	}

	if token.Unit != "sat" {
		t.Errorf("expected '%v' but got '%v' instead", "sat", token.Unit)
	}
	if token.Memo != "Thank you" {
		t.Errorf("expected '%v' but got '%v' instead", "Thank you", token.Memo)
	}
	if token.Mint() != "http://localhost:3338" {
		t.Errorf("expected '%v' but got '%v' instead", "http://localhost:3338", token.Mint())
	}

	proofs := token.Proofs()
	if len(proofs) != 1 {
		t.Fatalf("expected '%v' proofs but got '%v' instead", 1, len(proofs))
	}
	proof := proofs[0]
	if proof.Id != "00ad268c4d1f5826" {
		t.Errorf("expected '%v' but got '%v' instead", "00ad268c4d1f5826", proof.Id)
	}
	if proof.Amount != 1 {
		t.Errorf("expected '%v' but got '%v' instead", 1, proof.Amount)
	}
	if proof.Secret != "9a6dbb847bd232ba76db0df197216b29d3b8cc14553cd27827fc1cc942fedb4e" {
		t.Errorf("unexpected secret '%v'", proof.Secret)
	}
	if proof.C != "038618543ffb6b8695df4ad4babcde92a34a96bdcd97dcee0d7ccf98d472126792" {
		t.Errorf("unexpected C '%v'", proof.C)
	}
}

func TestDecodeTokenInvalid(t *testing.T) {
	tokens := []string{
		"",
		"cash",
		"cashuB",
		"cashuA",
		"cashuCeyJ0b2tlbiI6W119",
		"cashuA!!!notbase64",
	}

	for _, tokenstr := range tokens {
		if _, err := DecodeToken(tokenstr); err == nil {
			t.Errorf("expected error decoding '%v'", tokenstr)
		}
	}
}

func testProofs() Proofs {
	return Proofs{
		{
			Amount: 2,
			Id:     "00ffd48b8f5ecf80",
			Secret: "acc12435e7b8484c3cf1850149218af90f716a52bf4a5ed347e48ecc13f77388",
			C:      "0244538319de485d55bed3b29a642bee5879375ab9e7a620e11e48ba482421f3cf",
			DLEQ: &DLEQProof{
				E: "b31e58ac6527f34975ffab13e70a48b6d2b0d35abc4b03f0151f09ee1a9763d4",
				S: "8fbae004c59e754d71df67e392b6ae4e29293113ddc2ec86592a0431d16306d8",
				R: "a6d13fcd7a18442e6076f5e1e7c887ad5de40a019824bdfa9fe740d302e8d861",
			},
		},
		{
			Amount: 1,
			Id:     "00ad268c4d1f5826",
			Secret: "1323d3d4707a58ad2e23ada4e9f1f49f5a5b4ac7b708eb0d61f738f48307e8ee",
			C:      "023456aa110d84b4ac747aebd82c3b005aca50bf457ebd5737a4414fac3ae7d94d",
		},
		{
			Amount: 8,
			Id:     "00ffd48b8f5ecf80",
			Secret: "56bcbcbb7cc6406b3fa5d57d2174f4eff8b4402b176926d3a57d3c3dcbb59d57",
			C:      "0273129c5719e599379a974a626363c333c56cafc0e6d01abe46d5808280789c63",
		},
	}
}

func TestNewTokenV4(t *testing.T) {
	proofs := testProofs()

	token, err := NewTokenV4(proofs, "http://localhost:3338", Sat, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(token.TokenProofs) != 2 {
		t.Fatalf("expected '%v' keyset groups but got '%v' instead", 2, len(token.TokenProofs))
	}
	if hex.EncodeToString(token.TokenProofs[0].Id) != "00ffd48b8f5ecf80" {
		t.Fatalf("expected first group to be keyset of first proof but got '%x'", token.TokenProofs[0].Id)
	}

	serialized, err := token.Serialize()
	if err != nil {
		t.Fatalf("unexpected error serializing: %v", err)
	}

	decoded, err := DecodeToken(serialized)
	if err != nil {
		t.Fatalf("unexpected error decoding: %v", err)
	}
	if decoded.Amount() != 11 {
		t.Fatalf("expected '%v' but got '%v' instead", 11, decoded.Amount())
	}

	decodedProofs := decoded.Proofs()
	if decodedProofs[0].DLEQ == nil || *decodedProofs[0].DLEQ != *proofs[0].DLEQ {
		t.Fatalf("expected DLEQ '%v' but got '%v' instead", proofs[0].DLEQ, decodedProofs[0].DLEQ)
	}

	// without DLEQ
	token, err = NewTokenV4(proofs, "http://localhost:3338", Sat, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, proof := range token.Proofs() {
		if proof.DLEQ != nil {
			t.Fatal("expected no DLEQ in token proofs")
		}
	}

	if _, err := NewTokenV4(Proofs{{Id: "nothex", C: "02"}}, "mint", Sat, false); err == nil {
		t.Fatal("expected error for invalid keyset id")
	}
}

func TestTokenV3(t *testing.T) {
	proofs := testProofs()

	token, err := NewTokenV3(proofs, "http://localhost:3338", Sat, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proofs[0].DLEQ == nil {
		t.Fatal("NewTokenV3 should not modify the input proofs")
	}

	serialized, err := token.Serialize()
	if err != nil {
		t.Fatalf("unexpected error serializing: %v", err)
	}

	decoded, err := DecodeToken(serialized)
	if err != nil {
		t.Fatalf("unexpected error decoding: %v", err)
	}
	if _, ok := decoded.(*TokenV3); !ok {
		t.Fatalf("expected V3 token but got '%T'", decoded)
	}
	if decoded.Mint() != "http://localhost:3338" {
		t.Fatalf("expected '%v' but got '%v' instead", "http://localhost:3338", decoded.Mint())
	}
	if decoded.Amount() != proofs.Amount() {
		t.Fatalf("expected '%v' but got '%v' instead", proofs.Amount(), decoded.Amount())
	}
}
