// Package nut01 contains the types to get the public keys of a mint.
// See https://github.com/cashubtc/nuts/blob/main/01.md
package nut01

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

type GetKeysResponse struct {
	Keysets []Keyset `json:"keysets"`
}

type Keyset struct {
	Id   string  `json:"id"`
	Unit string  `json:"unit"`
	Keys KeysMap `json:"keys"`
}

type KeysMap map[uint64]string

// custom marshaller to display sorted keys
func (km KeysMap) MarshalJSON() ([]byte, error) {
	amounts := make([]uint64, 0, len(km))
	for amount := range km {
		amounts = append(amounts, amount)
	}
	slices.Sort(amounts)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, amount := range amounts {
		if i != 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.FormatUint(amount, 10)))
		buf.WriteByte(':')

		val, err := json.Marshal(km[amount])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
