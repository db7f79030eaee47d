// Package encode serializes LMS public keys and signatures into the
// exact byte layout the target verifier reinterprets in place.
//
// The layout is the RFC 8554 wire format, which is also the field order
// of the consumer's repr(C) LmsPublicKey<N/4> and LmsSignature<N/4, P, H>
// structures: every multi-byte scalar is a big-endian u32 and every hash
// value is N raw bytes, so there is no padding anywhere. Any change to
// the consumer's structures must be mirrored here field by field.
package encode

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"

	"github.com/verifiable-state-chains/lms-testgen/lms"
	"github.com/verifiable-state-chains/lms-testgen/params"
)

// PublicKeyLen returns the serialized public key length for hash size n:
// u32 lms_type + u32 ots_type + 16-byte I + n-byte root.
func PublicKeyLen(n int) int {
	return 4 + 4 + 16 + n
}

// SignatureLen returns the serialized signature length for hash size n,
// chain count p and tree height h:
// u32 q + u32 ots_type + n-byte C + p n-byte chains + u32 lms_type +
// h n-byte path nodes.
func SignatureLen(n int, p uint16, h int) int {
	return 4 + 4 + n + int(p)*n + 4 + h*n
}

// PublicKey serializes an LMS public key.
func PublicKey(pub *lms.PublicKey) ([]byte, error) {
	n, err := params.HashLen(pub.LmsType)
	if err != nil {
		return nil, err
	}
	if len(pub.Root) != n {
		return nil, fmt.Errorf("public key root has %d bytes, expected %d", len(pub.Root), n)
	}

	var b cryptobyte.Builder
	b.AddUint32(uint32(pub.LmsType))
	b.AddUint32(uint32(pub.OtsType))
	b.AddBytes(pub.I[:])
	b.AddBytes(pub.Root)

	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize public key: %v", err)
	}
	if len(out) != PublicKeyLen(n) {
		return nil, fmt.Errorf("serialized public key is %d bytes, expected %d", len(out), PublicKeyLen(n))
	}
	return out, nil
}

// Signature serializes an LMS signature.
func Signature(sig *lms.Signature) ([]byte, error) {
	n, err := params.HashLen(sig.LmsType)
	if err != nil {
		return nil, err
	}
	h, err := params.Height(sig.LmsType)
	if err != nil {
		return nil, err
	}
	ots, err := params.GetLmotsParameters(sig.OtsType)
	if err != nil {
		return nil, err
	}
	if len(sig.C) != n {
		return nil, fmt.Errorf("randomizer has %d bytes, expected %d", len(sig.C), n)
	}
	if len(sig.Y) != int(ots.P) {
		return nil, fmt.Errorf("signature has %d chains, expected %d", len(sig.Y), ots.P)
	}
	if len(sig.Path) != h {
		return nil, fmt.Errorf("authentication path has %d nodes, expected %d", len(sig.Path), h)
	}

	var b cryptobyte.Builder
	b.AddUint32(sig.Q)
	b.AddUint32(uint32(sig.OtsType))
	b.AddBytes(sig.C)
	for i, y := range sig.Y {
		if len(y) != n {
			return nil, fmt.Errorf("chain %d has %d bytes, expected %d", i, len(y), n)
		}
		b.AddBytes(y)
	}
	b.AddUint32(uint32(sig.LmsType))
	for i, node := range sig.Path {
		if len(node) != n {
			return nil, fmt.Errorf("path node %d has %d bytes, expected %d", i, len(node), n)
		}
		b.AddBytes(node)
	}

	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize signature: %v", err)
	}
	if len(out) != SignatureLen(n, ots.P, h) {
		return nil, fmt.Errorf("serialized signature is %d bytes, expected %d", len(out), SignatureLen(n, ots.P, h))
	}
	return out, nil
}
