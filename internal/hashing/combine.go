// Package hashing computes structural fingerprints of tree nodes.
//
// A fingerprint summarizes how a node's children are classified, and
// recursively how theirs are. Two nodes with equal fingerprints are treated
// as equivalent by the merger. Fingerprints are 32 bits wide, so unrelated
// structures can collide; a collision merges them.
package hashing

import (
	"hash/fnv"

	"treemerge/internal/errors"
	"treemerge/internal/tree"
)

// Fingerprint is a 32-bit structural hash.
type Fingerprint int32

// EmptySeed is the fingerprint of a leaf and of a parent whose children form
// no groups. It equals Combine().
const EmptySeed Fingerprint = 1

// Combine folds values with the 31-multiplier polynomial hash, seed 1. The
// result depends on the order of values. Arithmetic wraps at 32 bits.
func Combine(values ...Fingerprint) Fingerprint {
	h := EmptySeed
	for _, v := range values {
		h = 31*h + v
	}
	return h
}

// ClassifierHash returns the stable contribution of c: FNV-1a over its name.
func ClassifierHash(c *tree.Classifier) Fingerprint {
	h := fnv.New32a()
	_, _ = h.Write([]byte(c.Name()))
	return Fingerprint(int32(h.Sum32()))
}

// ReduceDuplicates returns the sorted values with every run of equal values
// cut down to at most limit entries. Order is preserved and the input is not
// modified.
func ReduceDuplicates(sorted []Fingerprint, limit int) []Fingerprint {
	length := 0
	run := 0
	for i, v := range sorted {
		if i > 0 && sorted[i-1] == v {
			run++
		} else {
			run = 1
		}
		if run <= limit {
			length++
		}
	}

	out := make([]Fingerprint, 0, length)
	run = 0
	for i, v := range sorted {
		if i > 0 && sorted[i-1] == v {
			run++
		} else {
			run = 1
		}
		if run <= limit {
			out = append(out, v)
		}
	}

	if len(out) != length {
		panic(errors.Internalf("reduce duplicates: filled %d of %d entries", len(out), length))
	}
	return out
}
