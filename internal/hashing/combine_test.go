package hashing

import (
	"math"
	"slices"
	"testing"

	"treemerge/internal/tree"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		values []Fingerprint
		want   Fingerprint
	}{
		{"empty", nil, EmptySeed},
		{"single", []Fingerprint{0}, 31},
		{"pair", []Fingerprint{1, 2}, 994},
		{"order matters", []Fingerprint{2, 1}, 1024},
		{"wraps", []Fingerprint{math.MaxInt32}, -2147483618},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.values...); got != tt.want {
				t.Errorf("Combine(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}

func TestClassifierHash(t *testing.T) {
	a1 := tree.NewClassifier("a", tree.MatcherFunc(func(tree.Node) bool { return true }))
	a2 := tree.NewClassifier("a", tree.MatcherFunc(func(tree.Node) bool { return false }))
	b := tree.NewClassifier("b", tree.MatcherFunc(func(tree.Node) bool { return true }))

	if got := ClassifierHash(a1); got != Fingerprint(-468965076) {
		t.Errorf("ClassifierHash(a) = %d, want FNV-1a value -468965076", got)
	}
	if ClassifierHash(a1) != ClassifierHash(a2) {
		t.Error("ClassifierHash() should depend on the name only")
	}
	if ClassifierHash(a1) == ClassifierHash(b) {
		t.Error("ClassifierHash() should differ for different names")
	}
}

func TestReduceDuplicates(t *testing.T) {
	tests := []struct {
		name   string
		sorted []Fingerprint
		limit  int
		want   []Fingerprint
	}{
		{"single kept", []Fingerprint{77}, 2, []Fingerprint{77}},
		{"pair within limit", []Fingerprint{77, 77}, 2, []Fingerprint{77, 77}},
		{"pair cut", []Fingerprint{77, 77}, 1, []Fingerprint{77}},
		{"distinct", []Fingerprint{77, 88, 88}, 1, []Fingerprint{77, 88}},
		{"runs cut to two", []Fingerprint{-5, -5, -5, 1, 2, 2, 2, 2}, 2, []Fingerprint{-5, -5, 1, 2, 2}},
		{"max int first", []Fingerprint{math.MaxInt32, math.MaxInt32}, 1, []Fingerprint{math.MaxInt32}},
		{"empty", []Fingerprint{}, 2, []Fingerprint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := slices.Clone(tt.sorted)
			got := ReduceDuplicates(tt.sorted, tt.limit)

			if !slices.Equal(got, tt.want) {
				t.Errorf("ReduceDuplicates(%v, %d) = %v, want %v", tt.sorted, tt.limit, got, tt.want)
			}
			if !slices.Equal(tt.sorted, input) {
				t.Errorf("ReduceDuplicates() modified its input: %v", tt.sorted)
			}
			if again := ReduceDuplicates(got, tt.limit); !slices.Equal(again, got) {
				t.Errorf("ReduceDuplicates() is not idempotent: %v then %v", got, again)
			}
		})
	}
}
