package tree

import (
	"strings"

	"treemerge/internal/errors"
)

// HashApproach decides how much of a group's content feeds its fingerprint.
// The zero value is ExactCount.
type HashApproach uint8

const (
	// ExactCount hashes every member fingerprint, so member counts matter.
	ExactCount HashApproach = iota
	// NoneOneMultiple keeps each distinct member fingerprint at most twice:
	// one and many are distinguished, many and more are not.
	NoneOneMultiple
	// GroupExistence hashes the distinct member fingerprints only.
	GroupExistence
	// PredicateOnly hashes the classifier alone.
	PredicateOnly
)

var approachNames = map[HashApproach]string{
	ExactCount:      "exact-count",
	NoneOneMultiple: "none-one-multiple",
	GroupExistence:  "group-existence",
	PredicateOnly:   "predicate-only",
}

func (a HashApproach) String() string {
	if name, ok := approachNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseHashApproach maps a configuration name to its approach. The empty
// string selects ExactCount.
func ParseHashApproach(s string) (HashApproach, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ExactCount, nil
	}
	for approach, name := range approachNames {
		if name == s {
			return approach, nil
		}
	}
	return 0, errors.Invalidf("unknown hash approach %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a HashApproach) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *HashApproach) UnmarshalText(text []byte) error {
	parsed, err := ParseHashApproach(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
