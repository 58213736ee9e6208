package model

import (
	"fmt"
	"strings"
)

// Socket is a bitmask of plug types. A vehicle or post carrying several bits
// accepts any of them; compatibility is a bitwise AND, not equality.
type Socket uint32

const (
	SocketType1 Socket = 1 << iota
	SocketType2
	SocketThreePinSquare
	SocketDCComboType2
	SocketChademo
	SocketCCS
)

// AllSockets lists the individual socket bits in declaration order.
var AllSockets = []Socket{
	SocketType1,
	SocketType2,
	SocketThreePinSquare,
	SocketDCComboType2,
	SocketChademo,
	SocketCCS,
}

var socketNames = map[Socket]string{
	SocketType1:          "TYPE1",
	SocketType2:          "TYPE2",
	SocketThreePinSquare: "THREE_PIN_SQUARE",
	SocketDCComboType2:   "DC_COMBO_TYPE2",
	SocketChademo:        "CHADEMO",
	SocketCCS:            "CCS",
}

func (s Socket) String() string { return flagString(uint32(s), socketBit) }

func socketBit(bit uint32) (string, bool) {
	name, ok := socketNames[Socket(bit)]
	return name, ok
}

// ParseSocket parses a socket name or a |-separated combination of names.
func ParseSocket(text string) (Socket, error) {
	v, err := parseFlags(text, socketNames)
	if err != nil {
		return 0, fmt.Errorf("incorrect socket name %q", text)
	}
	return Socket(v), nil
}

// Charger is a bitmask of charging power classes.
type Charger uint32

const (
	ChargerSlow Charger = 1 << iota
	ChargerFast
	ChargerRapid
)

// AllChargers lists the individual charger bits in declaration order.
var AllChargers = []Charger{ChargerSlow, ChargerFast, ChargerRapid}

var chargerNames = map[Charger]string{
	ChargerSlow:  "SLOW",
	ChargerFast:  "FAST",
	ChargerRapid: "RAPID",
}

func (c Charger) String() string { return flagString(uint32(c), chargerBit) }

func chargerBit(bit uint32) (string, bool) {
	name, ok := chargerNames[Charger(bit)]
	return name, ok
}

// ParseCharger parses a charger name or a |-separated combination of names.
func ParseCharger(text string) (Charger, error) {
	v, err := parseFlags(text, chargerNames)
	if err != nil {
		return 0, fmt.Errorf("incorrect charger name %q", text)
	}
	return Charger(v), nil
}

func flagString(v uint32, name func(uint32) (string, bool)) string {
	if v == 0 {
		return "NONE"
	}
	var parts []string
	for bit := uint32(1); bit != 0 && bit <= v; bit <<= 1 {
		if v&bit == 0 {
			continue
		}
		if n, ok := name(bit); ok {
			parts = append(parts, n)
		} else {
			parts = append(parts, fmt.Sprintf("0x%x", bit))
		}
	}
	return strings.Join(parts, "|")
}

func parseFlags[T ~uint32](text string, names map[T]string) (uint32, error) {
	lookup := make(map[string]T, len(names))
	for flag, name := range names {
		lookup[name] = flag
	}
	var v uint32
	for _, part := range strings.Split(text, "|") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" || part == "NONE" {
			continue
		}
		flag, ok := lookup[part]
		if !ok {
			return 0, fmt.Errorf("unknown flag %q", part)
		}
		v |= uint32(flag)
	}
	return v, nil
}
