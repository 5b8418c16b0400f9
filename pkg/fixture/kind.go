package fixture

import (
	"fmt"
	"strings"
)

// Kind classifies what a snap point carries.
type Kind uint8

// Snap point kinds.
const (
	KindUnknown Kind = iota
	KindPower
	KindMechanical
	KindData
	KindTrack
	KindMounting
	KindAccessory
)

var kindNames = [...]string{
	KindUnknown:    "unknown",
	KindPower:      "power",
	KindMechanical: "mechanical",
	KindData:       "data",
	KindTrack:      "track",
	KindMounting:   "mounting",
	KindAccessory:  "accessory",
}

// Kinds lists every known kind in declaration order.
var Kinds = []Kind{KindPower, KindMechanical, KindData, KindTrack, KindMounting, KindAccessory}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown snap point kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// TypeTag identifies the family a component belongs to.
type TypeTag uint8

// Component type tags.
const (
	TypeUnknown TypeTag = iota
	TypeTrack
	TypeProfile
	TypeConnector
	TypeSpotlight
	TypePendant
	TypePowerSupply
	TypeEndCap
	TypeAccessory
)

var typeNames = [...]string{
	TypeUnknown:     "unknown",
	TypeTrack:       "track",
	TypeProfile:     "profile",
	TypeConnector:   "connector",
	TypeSpotlight:   "spotlight",
	TypePendant:     "pendant",
	TypePowerSupply: "power_supply",
	TypeEndCap:      "end_cap",
	TypeAccessory:   "accessory",
}

// TypeTags lists every known type tag in declaration order.
var TypeTags = []TypeTag{
	TypeTrack, TypeProfile, TypeConnector, TypeSpotlight,
	TypePendant, TypePowerSupply, TypeEndCap, TypeAccessory,
}

func (t TypeTag) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// ParseTypeTag parses a type name. Hyphens and spaces are accepted in place of
// underscores. Unrecognised names return TypeUnknown with an error.
func ParseTypeTag(s string) (TypeTag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	for _, t := range TypeTags {
		if typeNames[t] == s {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown component type %q", s)
}

// IsTrackLike reports whether t is an elongated rail (track or profile).
func (t TypeTag) IsTrackLike() bool { return t == TypeTrack || t == TypeProfile }

// MarshalText implements encoding.TextMarshaler.
func (t TypeTag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeTag) UnmarshalText(b []byte) error {
	v, err := ParseTypeTag(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
