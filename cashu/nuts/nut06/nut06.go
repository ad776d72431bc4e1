// Package nut06 contains structs as defined in [NUT-06]
//
// [NUT-06]: https://github.com/cashubtc/nuts/blob/main/06.md
package nut06

import (
	"encoding/json"
	"strconv"
)

type MintInfo struct {
	Name        string        `json:"name"`
	Pubkey      string        `json:"pubkey,omitempty"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Contact     []ContactInfo `json:"contact,omitempty"`
	Motd        string        `json:"motd,omitempty"`
	Nuts        Nuts          `json:"nuts"`
}

type ContactInfo struct {
	Method string `json:"method"`
	Info   string `json:"info"`
}

// custom unmarshal to ignore contact field if on old format
func (mi *MintInfo) UnmarshalJSON(data []byte) error {
	var tempInfo struct {
		Name        string          `json:"name"`
		Pubkey      string          `json:"pubkey"`
		Version     string          `json:"version"`
		Description string          `json:"description"`
		Contact     json.RawMessage `json:"contact,omitempty"`
		Motd        string          `json:"motd,omitempty"`
		Nuts        Nuts            `json:"nuts"`
	}

	if err := json.Unmarshal(data, &tempInfo); err != nil {
		return err
	}

	mi.Name = tempInfo.Name
	mi.Pubkey = tempInfo.Pubkey
	mi.Version = tempInfo.Version
	mi.Description = tempInfo.Description
	mi.Motd = tempInfo.Motd
	mi.Nuts = tempInfo.Nuts
	json.Unmarshal(tempInfo.Contact, &mi.Contact)

	return nil
}

type Supported struct {
	Supported bool `json:"supported"`
}

// Nuts maps nut number to its settings as advertised by the mint.
// Settings are kept raw since their shape differs between nuts.
type Nuts map[string]json.RawMessage

// Supports reports whether the mint advertises support for the nut.
// Nuts 0 to 6 are mandatory and always supported.
func (nuts Nuts) Supports(nut int) bool {
	if nut >= 0 && nut <= 6 {
		return true
	}
	raw, ok := nuts[strconv.Itoa(nut)]
	if !ok {
		return false
	}

	var setting struct {
		Supported *bool `json:"supported"`
		Disabled  *bool `json:"disabled"`
	}
	if err := json.Unmarshal(raw, &setting); err != nil {
		return false
	}
	if setting.Supported != nil {
		return *setting.Supported
	}
	if setting.Disabled != nil {
		return !*setting.Disabled
	}
	return false
}

// Set marks the nut as supported.
func (nuts Nuts) Set(nut int, supported bool) {
	setting, _ := json.Marshal(Supported{Supported: supported})
	nuts[strconv.Itoa(nut)] = setting
}
