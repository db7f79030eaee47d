package lms

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/verifiable-state-chains/lms-testgen/params"
)

// Domain separation tags from RFC 8554 section 7.1.
const (
	dPBLC = 0x8080
	dMESG = 0x8181
	dLEAF = 0x8282
	dINTR = 0x8383
)

// hashN computes SHA-256 over the concatenated parts and truncates the
// digest to n bytes (SHA-256/192 for n=24, plain SHA-256 for n=32).
func hashN(n int, parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)[:n]
}

func u32str(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func u16str(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

// coef extracts the i-th base-2^w digit of s (RFC 8554 section 3.1.3).
func coef(s []byte, i int, w int) uint8 {
	mask := byte(1<<w - 1)
	shift := 8 - w - (i*w)%8
	return (s[i*w/8] >> shift) & mask
}

// otsChecksum computes the Winternitz checksum of digest q under the
// given parameter set (RFC 8554 section 4.4).
func otsChecksum(q []byte, ots params.LmotsParameters) uint16 {
	var sum uint16
	max := uint16(1<<ots.W - 1)
	for i := 0; i < len(q)*8/ots.W; i++ {
		sum += max - uint16(coef(q, i, ots.W))
	}
	return sum << ots.LS
}

// deriveChain derives the q-th leaf's i-th private chain value from the
// tree seed (RFC 8554 appendix A).
func deriveChain(n int, id []byte, q uint32, i uint16, seed []byte) []byte {
	return hashN(n, id, u32str(q), u16str(i), []byte{0xff}, seed)
}

// chainIterate advances a Winternitz chain value from iteration start
// (exclusive of the value already held in x) for count steps.
func chainIterate(n int, id []byte, q uint32, i uint16, x []byte, start, count int) []byte {
	tmp := x
	for j := start; j < start+count; j++ {
		tmp = hashN(n, id, u32str(q), u16str(i), []byte{byte(j)}, tmp)
	}
	return tmp
}

// otsPublicKey computes K, the compressed LMOTS public key for leaf q,
// from the leaf's private chain values (RFC 8554 section 4.3).
func otsPublicKey(n int, id []byte, q uint32, chains [][]byte, ots params.LmotsParameters) []byte {
	parts := make([][]byte, 0, int(ots.P)+3)
	parts = append(parts, id, u32str(q), u16str(dPBLC))
	for i, x := range chains {
		y := chainIterate(n, id, q, uint16(i), x, 0, 1<<ots.W-1)
		parts = append(parts, y)
	}
	return hashN(n, parts...)
}
