package nut07

import (
	"encoding/json"
	"testing"
)

func TestProofStateJSON(t *testing.T) {
	body := `{"states":[` +
		`{"Y":"02aa","state":"SPENT","witness":"{\"signatures\":[]}"},` +
		`{"Y":"02bb","state":"PENDING"},` +
		`{"Y":"02cc","state":"UNSPENT"}]}`

	var response PostCheckStateResponse
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []State{Spent, Pending, Unspent}
	for i, state := range response.States {
		if state.State != expected[i] {
			t.Errorf("expected '%v' but got '%v' instead", expected[i], state.State)
		}
	}

	data, err := json.Marshal(response.States[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"Y":"02bb","state":"PENDING"}` {
		t.Fatalf("unexpected encoding '%s'", data)
	}

	var state ProofState
	if err := json.Unmarshal([]byte(`{"Y":"02aa","state":"BURNT"}`), &state); err == nil {
		t.Fatal("expected error for unknown state")
	}
}
