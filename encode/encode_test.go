package encode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/verifiable-state-chains/lms-testgen/lms"
	"github.com/verifiable-state-chains/lms-testgen/params"
)

func TestLengths(t *testing.T) {
	if got := PublicKeyLen(32); got != 56 {
		t.Errorf("PublicKeyLen(32) = %d, expected 56", got)
	}
	if got := PublicKeyLen(24); got != 48 {
		t.Errorf("PublicKeyLen(24) = %d, expected 48", got)
	}
	// n=32, w=8: p=34, h=5 -> 12 + 32*(1+34+5)
	if got := SignatureLen(32, 34, 5); got != 1292 {
		t.Errorf("SignatureLen(32, 34, 5) = %d, expected 1292", got)
	}
	// n=24, w=1: p=200, h=10 -> 12 + 24*(1+200+10)
	if got := SignatureLen(24, 200, 10); got != 5076 {
		t.Errorf("SignatureLen(24, 200, 10) = %d, expected 5076", got)
	}
}

func TestPublicKeyLayout(t *testing.T) {
	signer := lms.NewSigner()
	pub, _, err := signer.BuildTree(params.LMS_SHA256_M32_H5, params.LMOTS_SHA256_N32_W8)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	raw, err := PublicKey(pub)
	if err != nil {
		t.Fatalf("PublicKey failed: %v", err)
	}
	if len(raw) != PublicKeyLen(32) {
		t.Fatalf("Serialized public key is %d bytes, expected %d", len(raw), PublicKeyLen(32))
	}

	if binary.BigEndian.Uint32(raw[0:4]) != uint32(params.LMS_SHA256_M32_H5) {
		t.Errorf("lms_type field = %d, expected %d", binary.BigEndian.Uint32(raw[0:4]), params.LMS_SHA256_M32_H5)
	}
	if binary.BigEndian.Uint32(raw[4:8]) != uint32(params.LMOTS_SHA256_N32_W8) {
		t.Errorf("ots_type field = %d, expected %d", binary.BigEndian.Uint32(raw[4:8]), params.LMOTS_SHA256_N32_W8)
	}
	if !bytes.Equal(raw[8:24], pub.I[:]) {
		t.Error("Key identifier not at offset 8")
	}
	if !bytes.Equal(raw[24:56], pub.Root) {
		t.Error("Root not at offset 24")
	}
}

func TestSignatureLayout(t *testing.T) {
	signer := lms.NewSigner()
	_, tree, err := signer.BuildTree(params.LMS_SHA256_M24_H5, params.LMOTS_SHA256_N24_W8)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	const q = 11
	key, err := tree.PrivateKey(q)
	if err != nil {
		t.Fatalf("PrivateKey failed: %v", err)
	}
	sig, err := signer.Sign([]byte("layout test"), key, q, tree)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	raw, err := Signature(sig)
	if err != nil {
		t.Fatalf("Signature failed: %v", err)
	}

	// n=24, w=8: p=26, h=5
	n, p, h := 24, uint16(26), 5
	if len(raw) != SignatureLen(n, p, h) {
		t.Fatalf("Serialized signature is %d bytes, expected %d", len(raw), SignatureLen(n, p, h))
	}

	if binary.BigEndian.Uint32(raw[0:4]) != q {
		t.Errorf("q field = %d, expected %d", binary.BigEndian.Uint32(raw[0:4]), q)
	}
	if binary.BigEndian.Uint32(raw[4:8]) != uint32(params.LMOTS_SHA256_N24_W8) {
		t.Errorf("ots_type field = %d, expected %d", binary.BigEndian.Uint32(raw[4:8]), params.LMOTS_SHA256_N24_W8)
	}
	if !bytes.Equal(raw[8:8+n], sig.C) {
		t.Error("Randomizer not at offset 8")
	}

	lmsTypeOffset := 8 + n + int(p)*n
	if binary.BigEndian.Uint32(raw[lmsTypeOffset:lmsTypeOffset+4]) != uint32(params.LMS_SHA256_M24_H5) {
		t.Errorf("lms_type field not at offset %d", lmsTypeOffset)
	}
	if !bytes.Equal(raw[len(raw)-n:], sig.Path[h-1]) {
		t.Error("Last authentication path node not at tail")
	}
}

func TestSignatureLengthInvariantAcrossLeaves(t *testing.T) {
	signer := lms.NewSigner()
	_, tree, err := signer.BuildTree(params.LMS_SHA256_M32_H5, params.LMOTS_SHA256_N32_W1)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	var want int
	for _, q := range []uint32{0, 1, 31} {
		key, err := tree.PrivateKey(q)
		if err != nil {
			t.Fatalf("PrivateKey failed: %v", err)
		}
		sig, err := signer.Sign([]byte("invariant"), key, q, tree)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		raw, err := Signature(sig)
		if err != nil {
			t.Fatalf("Signature failed: %v", err)
		}
		if want == 0 {
			want = len(raw)
		} else if len(raw) != want {
			t.Errorf("Signature for leaf %d is %d bytes, previous leaves were %d", q, len(raw), want)
		}
	}
	if want != SignatureLen(32, 265, 5) {
		t.Errorf("Signature length %d does not match SignatureLen(32, 265, 5) = %d", want, SignatureLen(32, 265, 5))
	}
}

func TestSignatureRejectsMalformed(t *testing.T) {
	signer := lms.NewSigner()
	_, tree, err := signer.BuildTree(params.LMS_SHA256_M32_H5, params.LMOTS_SHA256_N32_W8)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	key, err := tree.PrivateKey(0)
	if err != nil {
		t.Fatalf("PrivateKey failed: %v", err)
	}
	sig, err := signer.Sign([]byte("x"), key, 0, tree)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	sig.Y = sig.Y[:len(sig.Y)-1]
	if _, err := Signature(sig); err == nil {
		t.Error("Expected error for signature with missing chain")
	}
}
