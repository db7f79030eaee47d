// Package params resolves LMS/LMOTS algorithm parameter sets.
//
// The numeric identifiers follow RFC 8554 section 5.1 and 4.1 plus the
// SHA-256/192 additional parameter sets, and match the enums used by the
// target verifier's driver.
package params

import "fmt"

// LmsAlgorithmType identifies an LMS parameter set (hash size + tree height).
type LmsAlgorithmType uint32

// LmotsAlgorithmType identifies an LMOTS parameter set (hash size + Winternitz width).
type LmotsAlgorithmType uint32

// LMS parameter set identifiers.
const (
	LMS_SHA256_M32_H5  LmsAlgorithmType = 5
	LMS_SHA256_M32_H10 LmsAlgorithmType = 6
	LMS_SHA256_M32_H15 LmsAlgorithmType = 7
	LMS_SHA256_M32_H20 LmsAlgorithmType = 8
	LMS_SHA256_M24_H5  LmsAlgorithmType = 10
	LMS_SHA256_M24_H10 LmsAlgorithmType = 11
	LMS_SHA256_M24_H15 LmsAlgorithmType = 12
	LMS_SHA256_M24_H20 LmsAlgorithmType = 13
)

// LMOTS parameter set identifiers.
const (
	LMOTS_SHA256_N32_W1 LmotsAlgorithmType = 1
	LMOTS_SHA256_N32_W2 LmotsAlgorithmType = 2
	LMOTS_SHA256_N32_W4 LmotsAlgorithmType = 3
	LMOTS_SHA256_N32_W8 LmotsAlgorithmType = 4
	LMOTS_SHA256_N24_W1 LmotsAlgorithmType = 5
	LMOTS_SHA256_N24_W2 LmotsAlgorithmType = 6
	LMOTS_SHA256_N24_W4 LmotsAlgorithmType = 7
	LMOTS_SHA256_N24_W8 LmotsAlgorithmType = 8
)

// InvalidParameterError reports a knob outside its allowed value set.
type InvalidParameterError struct {
	Field string
	Value int
}

func (e *InvalidParameterError) Error() string {
	var allowed string
	switch e.Field {
	case "n":
		allowed = "24, 32"
	case "w":
		allowed = "1, 2, 4, 8"
	case "tree_height":
		allowed = "5, 10, 15, 20"
	}
	return fmt.Sprintf("invalid %s: %d expected one of %s", e.Field, e.Value, allowed)
}

type lmsKey struct {
	n int
	h int
}

type lmotsKey struct {
	n int
	w int
}

// The two resolution tables are total over the 8+8 recognized combinations.
// A recognized-but-unhandled pair is a lookup miss, never a stale default.
var lmsTypes = map[lmsKey]LmsAlgorithmType{
	{32, 5}:  LMS_SHA256_M32_H5,
	{32, 10}: LMS_SHA256_M32_H10,
	{32, 15}: LMS_SHA256_M32_H15,
	{32, 20}: LMS_SHA256_M32_H20,
	{24, 5}:  LMS_SHA256_M24_H5,
	{24, 10}: LMS_SHA256_M24_H10,
	{24, 15}: LMS_SHA256_M24_H15,
	{24, 20}: LMS_SHA256_M24_H20,
}

var lmotsTypes = map[lmotsKey]LmotsAlgorithmType{
	{32, 1}: LMOTS_SHA256_N32_W1,
	{32, 2}: LMOTS_SHA256_N32_W2,
	{32, 4}: LMOTS_SHA256_N32_W4,
	{32, 8}: LMOTS_SHA256_N32_W8,
	{24, 1}: LMOTS_SHA256_N24_W1,
	{24, 2}: LMOTS_SHA256_N24_W2,
	{24, 4}: LMOTS_SHA256_N24_W4,
	{24, 8}: LMOTS_SHA256_N24_W8,
}

// Resolve maps the raw knobs (n, w, height) to the matching pair of
// algorithm identifiers. Each field is validated independently so the
// caller can report exactly which knob is out of range.
func Resolve(n, w, height int) (LmsAlgorithmType, LmotsAlgorithmType, error) {
	if n != 24 && n != 32 {
		return 0, 0, &InvalidParameterError{Field: "n", Value: n}
	}
	if w != 1 && w != 2 && w != 4 && w != 8 {
		return 0, 0, &InvalidParameterError{Field: "w", Value: w}
	}
	lmsType, ok := lmsTypes[lmsKey{n, height}]
	if !ok {
		return 0, 0, &InvalidParameterError{Field: "tree_height", Value: height}
	}
	lmotsType, ok := lmotsTypes[lmotsKey{n, w}]
	if !ok {
		return 0, 0, &InvalidParameterError{Field: "w", Value: w}
	}
	return lmsType, lmotsType, nil
}

// LmotsParameters describes one LMOTS parameter set as defined in
// RFC 8554 table 1: hash length N, Winternitz width W, chain count P
// and checksum left-shift LS.
type LmotsParameters struct {
	N  int
	W  int
	P  uint16
	LS uint
}

var lmotsParameters = map[LmotsAlgorithmType]LmotsParameters{
	LMOTS_SHA256_N32_W1: {N: 32, W: 1, P: 265, LS: 7},
	LMOTS_SHA256_N32_W2: {N: 32, W: 2, P: 133, LS: 6},
	LMOTS_SHA256_N32_W4: {N: 32, W: 4, P: 67, LS: 4},
	LMOTS_SHA256_N32_W8: {N: 32, W: 8, P: 34, LS: 0},
	LMOTS_SHA256_N24_W1: {N: 24, W: 1, P: 200, LS: 8},
	LMOTS_SHA256_N24_W2: {N: 24, W: 2, P: 101, LS: 6},
	LMOTS_SHA256_N24_W4: {N: 24, W: 4, P: 51, LS: 4},
	LMOTS_SHA256_N24_W8: {N: 24, W: 8, P: 26, LS: 0},
}

// GetLmotsParameters returns the parameter set for an LMOTS type identifier.
func GetLmotsParameters(t LmotsAlgorithmType) (LmotsParameters, error) {
	p, ok := lmotsParameters[t]
	if !ok {
		return LmotsParameters{}, fmt.Errorf("unknown LMOTS type: %d", t)
	}
	return p, nil
}

// Height returns the tree height encoded by an LMS type identifier.
func Height(t LmsAlgorithmType) (int, error) {
	for k, v := range lmsTypes {
		if v == t {
			return k.h, nil
		}
	}
	return 0, fmt.Errorf("unknown LMS type: %d", t)
}

// HashLen returns the hash output length in bytes for an LMS type identifier.
func HashLen(t LmsAlgorithmType) (int, error) {
	for k, v := range lmsTypes {
		if v == t {
			return k.n, nil
		}
	}
	return 0, fmt.Errorf("unknown LMS type: %d", t)
}
