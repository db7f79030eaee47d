package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verifiable-state-chains/lms-testgen/lms"
	"github.com/verifiable-state-chains/lms-testgen/sampler"
	"github.com/verifiable-state-chains/lms-testgen/testgen"
)

func generateFixture(t *testing.T, cfg testgen.Config) *testgen.Fixture {
	t.Helper()
	gen := testgen.New(lms.NewSigner(), sampler.NewSeeded(1))
	fx, err := gen.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return fx
}

func TestRenderStructure(t *testing.T) {
	fx := generateFixture(t, testgen.Config{N: 32, W: 8, Height: 5, Tests: 2})
	out := Render(fx)

	// Scaffolding, data and assertions in order.
	wantInOrder := []string{
		"Licensed under the Apache-2.0 license.",
		"fn test_lms_random_suite()",
		fmt.Sprintf("const MESSAGE :[u8; %d]", len(fx.Message)),
		fmt.Sprintf("const PUBLIC_KEY_BYTES: [u8; %d]", len(fx.PublicKey)),
		"PUBLIC_KEY_BYTES.align_to::<LmsPublicKey<8>>()",
		"const TESTS: [LmsTest; 2]",
		"t.signature.align_to::<LmsSignature<8, 34, 5>>()",
		"assert_eq!(result, LmsResult::Success)",
		"assert_eq!(result, LmsResult::SigVerifyFailed)",
		"test_suite! {",
	}
	pos := 0
	for _, want := range wantInOrder {
		idx := strings.Index(out[pos:], want)
		if idx < 0 {
			t.Fatalf("Rendered output missing or out of order: %q", want)
		}
		pos += idx
	}

	if got := strings.Count(out, "LmsTest{ test_passed: true, signature: &["); got != 2 {
		t.Errorf("Expected 2 test vector records, found %d", got)
	}
}

func TestRenderTypeParameters(t *testing.T) {
	// n=24, w=1, h=10: words=6, p=200
	fx := generateFixture(t, testgen.Config{N: 24, W: 1, Height: 10, Tests: 1})
	out := Render(fx)

	if !strings.Contains(out, "LmsPublicKey<6>") {
		t.Error("Expected public key reinterpretation with 6 words")
	}
	if !strings.Contains(out, "LmsSignature<6, 200, 10>") {
		t.Error("Expected signature reinterpretation with (6, 200, 10)")
	}
}

func TestByteArrayFormat(t *testing.T) {
	if got := byteArray([]byte{1, 2, 3}); got != "[1, 2, 3]" {
		t.Errorf("byteArray([1 2 3]) = %q", got)
	}
	if got := byteArray(nil); got != "[]" {
		t.Errorf("byteArray(nil) = %q", got)
	}
	if got := byteArray([]byte{255}); got != "[255]" {
		t.Errorf("byteArray([255]) = %q", got)
	}
}

func TestWriteCreatesFile(t *testing.T) {
	fx := generateFixture(t, testgen.Config{N: 32, W: 8, Height: 5, Tests: 1})

	path := filepath.Join(t.TempDir(), "lms_tests_n32_w8.rs")
	if err := Write(path, fx); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read emitted file: %v", err)
	}
	if string(data) != Render(fx) {
		t.Error("File contents do not match rendered output")
	}
}

func TestWriteFailsOnBadPath(t *testing.T) {
	fx := generateFixture(t, testgen.Config{N: 32, W: 8, Height: 5, Tests: 1})

	err := Write(filepath.Join(t.TempDir(), "no-such-dir", "out.rs"), fx)
	if err == nil {
		t.Fatal("Expected error writing into a missing directory")
	}
}
