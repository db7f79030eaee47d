// Package lms implements single-tree Leighton-Micali signatures
// (RFC 8554) over SHA-256 and SHA-256/192. It covers exactly what the
// fixture generator needs: building a key tree, signing one message per
// leaf and verifying the result. HSS chaining is not supported.
package lms

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/verifiable-state-chains/lms-testgen/params"
)

// PublicKey is an LMS public key: the type identifiers, the 16-byte key
// identifier I and the Merkle root T[1].
type PublicKey struct {
	LmsType params.LmsAlgorithmType
	OtsType params.LmotsAlgorithmType
	I       [16]byte
	Root    []byte
}

// Signature is an LMS signature over one leaf: the leaf index q, the
// LMOTS signature (randomizer C plus P chain values) and the
// authentication path of H sibling nodes.
type Signature struct {
	Q       uint32
	OtsType params.LmotsAlgorithmType
	C       []byte
	Y       [][]byte
	LmsType params.LmsAlgorithmType
	Path    [][]byte
}

// LeafKey holds the private Winternitz chain values for a single leaf.
type LeafKey struct {
	Q      uint32
	Chains [][]byte
}

// KeyTree is a fully built LMS key tree. Leaf private keys are derived
// on demand from the tree seed; the node array holds leaf and interior
// hashes at indices [1, 2^(h+1)). The tree is read-only after BuildTree.
type KeyTree struct {
	LmsType params.LmsAlgorithmType
	OtsType params.LmotsAlgorithmType
	I       [16]byte

	// Base is the index of the tree's first leaf. Always zero for a
	// freshly built tree; callers add it when picking absolute indices.
	Base uint32

	n      int
	height int
	ots    params.LmotsParameters
	seed   []byte
	nodes  [][]byte
}

// Leaves returns the total leaf count 2^H.
func (t *KeyTree) Leaves() uint32 {
	return 1 << t.height
}

// PrivateKey derives the private chain values for absolute leaf index q.
func (t *KeyTree) PrivateKey(q uint32) (*LeafKey, error) {
	if q < t.Base || q-t.Base >= t.Leaves() {
		return nil, fmt.Errorf("leaf index %d out of range [%d, %d)", q, t.Base, t.Base+t.Leaves())
	}
	chains := make([][]byte, t.ots.P)
	for i := range chains {
		chains[i] = deriveChain(t.n, t.I[:], q, uint16(i), t.seed)
	}
	return &LeafKey{Q: q, Chains: chains}, nil
}

// Signer is the concrete signing and verification service.
type Signer struct{}

// NewSigner returns a ready-to-use Signer.
func NewSigner() *Signer {
	return &Signer{}
}

// BuildTree generates fresh key material and computes the full Merkle
// tree for the given parameter sets. Each call draws a new identifier
// and seed, so two trees for the same parameters are unrelated.
func (s *Signer) BuildTree(lmsType params.LmsAlgorithmType, otsType params.LmotsAlgorithmType) (*PublicKey, *KeyTree, error) {
	n, err := params.HashLen(lmsType)
	if err != nil {
		return nil, nil, err
	}
	height, err := params.Height(lmsType)
	if err != nil {
		return nil, nil, err
	}
	ots, err := params.GetLmotsParameters(otsType)
	if err != nil {
		return nil, nil, err
	}
	if ots.N != n {
		return nil, nil, fmt.Errorf("hash length mismatch: LMS type %d uses n=%d, LMOTS type %d uses n=%d",
			lmsType, n, otsType, ots.N)
	}

	tree := &KeyTree{
		LmsType: lmsType,
		OtsType: otsType,
		n:       n,
		height:  height,
		ots:     ots,
		seed:    make([]byte, n),
	}
	if _, err := rand.Read(tree.I[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to generate key identifier: %v", err)
	}
	if _, err := rand.Read(tree.seed); err != nil {
		return nil, nil, fmt.Errorf("failed to generate seed: %v", err)
	}

	leaves := uint32(1) << height
	tree.nodes = make([][]byte, 2*leaves)

	// Leaf nodes T[2^h + q] = H(I || u32(2^h+q) || D_LEAF || K_q)
	for q := uint32(0); q < leaves; q++ {
		key, err := tree.PrivateKey(q)
		if err != nil {
			return nil, nil, err
		}
		otsPub := otsPublicKey(n, tree.I[:], q, key.Chains, ots)
		tree.nodes[leaves+q] = hashN(n, tree.I[:], u32str(leaves+q), u16str(dLEAF), otsPub)
	}

	// Interior nodes T[i] = H(I || u32(i) || D_INTR || T[2i] || T[2i+1])
	for i := leaves - 1; i >= 1; i-- {
		tree.nodes[i] = hashN(n, tree.I[:], u32str(i), u16str(dINTR), tree.nodes[2*i], tree.nodes[2*i+1])
	}

	pub := &PublicKey{
		LmsType: lmsType,
		OtsType: otsType,
		I:       tree.I,
		Root:    tree.nodes[1],
	}
	return pub, tree, nil
}

// Sign produces an LMS signature over message using the one-time key at
// leaf index q. The key must come from tree.PrivateKey(q); signing the
// same leaf twice breaks the one-time property, so callers are expected
// to pick each q at most once per tree.
func (s *Signer) Sign(message []byte, key *LeafKey, q uint32, tree *KeyTree) (*Signature, error) {
	if q < tree.Base || q-tree.Base >= tree.Leaves() {
		return nil, fmt.Errorf("leaf index %d out of range [%d, %d)", q, tree.Base, tree.Base+tree.Leaves())
	}
	if key == nil || key.Q != q {
		return nil, fmt.Errorf("leaf key does not match index %d", q)
	}
	if len(key.Chains) != int(tree.ots.P) {
		return nil, fmt.Errorf("leaf key has %d chains, expected %d", len(key.Chains), tree.ots.P)
	}

	c := make([]byte, tree.n)
	if _, err := rand.Read(c); err != nil {
		return nil, fmt.Errorf("failed to generate randomizer: %v", err)
	}

	digest := hashN(tree.n, tree.I[:], u32str(q), u16str(dMESG), c, message)
	v := append(append([]byte{}, digest...), u16str(otsChecksum(digest, tree.ots))...)

	y := make([][]byte, tree.ots.P)
	for i := range y {
		a := int(coef(v, i, tree.ots.W))
		y[i] = chainIterate(tree.n, tree.I[:], q, uint16(i), key.Chains[i], 0, a)
	}

	rel := q - tree.Base
	node := tree.Leaves() + rel
	path := make([][]byte, tree.height)
	for i := range path {
		path[i] = tree.nodes[node^1]
		node >>= 1
	}

	return &Signature{
		Q:       q,
		OtsType: tree.OtsType,
		C:       c,
		Y:       y,
		LmsType: tree.LmsType,
		Path:    path,
	}, nil
}

// Verify checks an LMS signature against a public key. A structurally
// invalid signature is an error; a well-formed signature that simply
// does not match yields (false, nil).
func (s *Signer) Verify(message []byte, pub *PublicKey, sig *Signature) (bool, error) {
	if sig.LmsType != pub.LmsType || sig.OtsType != pub.OtsType {
		return false, fmt.Errorf("signature type (%d, %d) does not match key type (%d, %d)",
			sig.LmsType, sig.OtsType, pub.LmsType, pub.OtsType)
	}
	n, err := params.HashLen(pub.LmsType)
	if err != nil {
		return false, err
	}
	height, err := params.Height(pub.LmsType)
	if err != nil {
		return false, err
	}
	ots, err := params.GetLmotsParameters(pub.OtsType)
	if err != nil {
		return false, err
	}
	leaves := uint32(1) << height
	if sig.Q >= leaves {
		return false, fmt.Errorf("leaf index %d out of range for height %d", sig.Q, height)
	}
	if len(sig.C) != n || len(sig.Y) != int(ots.P) || len(sig.Path) != height {
		return false, fmt.Errorf("malformed signature: c=%d y=%d path=%d", len(sig.C), len(sig.Y), len(sig.Path))
	}

	// Recover the candidate LMOTS public key (RFC 8554 section 4.6).
	digest := hashN(n, pub.I[:], u32str(sig.Q), u16str(dMESG), sig.C, message)
	v := append(append([]byte{}, digest...), u16str(otsChecksum(digest, ots))...)

	parts := make([][]byte, 0, int(ots.P)+3)
	parts = append(parts, pub.I[:], u32str(sig.Q), u16str(dPBLC))
	for i, y := range sig.Y {
		if len(y) != n {
			return false, fmt.Errorf("malformed signature: y[%d] has length %d", i, len(y))
		}
		a := int(coef(v, i, ots.W))
		z := chainIterate(n, pub.I[:], sig.Q, uint16(i), y, a, 1<<ots.W-1-a)
		parts = append(parts, z)
	}
	candidate := hashN(n, parts...)

	// Fold the authentication path up to a candidate root.
	node := leaves + sig.Q
	tmp := hashN(n, pub.I[:], u32str(node), u16str(dLEAF), candidate)
	for _, sibling := range sig.Path {
		if len(sibling) != n {
			return false, fmt.Errorf("malformed signature: path node has length %d", len(sibling))
		}
		if node%2 == 1 {
			tmp = hashN(n, pub.I[:], u32str(node/2), u16str(dINTR), sibling, tmp)
		} else {
			tmp = hashN(n, pub.I[:], u32str(node/2), u16str(dINTR), tmp, sibling)
		}
		node /= 2
	}

	return bytes.Equal(tmp, pub.Root), nil
}
