// Package fixture renders an assembled test batch into a self-contained
// test program for the target verifier.
package fixture

import (
	"fmt"
	"os"
	"strings"

	"github.com/verifiable-state-chains/lms-testgen/testgen"
)

// The emitted program targets the device's no_std test environment. The
// scaffolding text is fixed; only the constants between the two halves
// vary per batch.
const header = `/*++

Licensed under the Apache-2.0 license.

Abstract:

    File contains test cases for LMS signature verification. This file is machine generated.

--*/

#![no_std]
#![no_main]

use caliptra_drivers::{Lms, LmsResult, Sha256};
use caliptra_lms_types::{LmsPublicKey, LmsSignature};
use caliptra_registers::sha256::Sha256Reg;
use caliptra_test_harness::test_suite;

struct LmsTest<'a> {
    test_passed: bool,
    signature: &'a [u8],
}

fn test_lms_random_suite() {
    let mut sha256 = unsafe { Sha256::new(Sha256Reg::new()) };
    `

const footer = `
        assert!(head.is_empty());
        let lms_sig = thing2[0];
        let verify_result = Lms::default().verify_lms_signature_generic(
            &mut sha256,
            &MESSAGE,
            &lms_public_key,
            &lms_sig,
        );
        if t.test_passed {
            // if the test is supposed to pass then we better have no errors and a successful verification
            let result = verify_result.unwrap();
            assert_eq!(result, LmsResult::Success)
        } else {
            // if the test is supposed to fail it could be for a number of reasons that could raise a variety of errors
            // if the verification didn't error, then extract the LMS result and ensure it is a failed verification
            if verify_result.is_ok() {
                let result = verify_result.unwrap();
                assert_eq!(result, LmsResult::SigVerifyFailed)
            }
        }
    }
}

test_suite! {
    test_lms_random_suite,
}
`

// byteArray renders a byte slice as a target-language array literal.
func byteArray(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Render produces the full program text for a batch.
func Render(fx *testgen.Fixture) string {
	words := fx.N / 4

	var sb strings.Builder
	sb.WriteString(header)

	fmt.Fprintf(&sb, "\tconst MESSAGE :[u8; %d] = %s;\n", len(fx.Message), byteArray(fx.Message))
	fmt.Fprintf(&sb, "\tconst PUBLIC_KEY_BYTES: [u8; %d] = %s;\n", len(fx.PublicKey), byteArray(fx.PublicKey))

	// Zero-copy view of the public key bytes as the typed structure.
	fmt.Fprintf(&sb, "\tlet (head, thing1, _tail): (&[u8], &[LmsPublicKey<%d>], &[u8]) = unsafe { PUBLIC_KEY_BYTES.align_to::<LmsPublicKey<%d>>() };\n", words, words)
	sb.WriteString("    \tassert!(head.is_empty());\n    \tlet lms_public_key = thing1[0];\n")

	fmt.Fprintf(&sb, "\tconst TESTS: [LmsTest; %d] = [\n", len(fx.Vectors))
	for _, v := range fx.Vectors {
		fmt.Fprintf(&sb, "\t\tLmsTest{ test_passed: %t, signature: &%s},\n", v.ExpectSuccess, byteArray(v.Signature))
	}
	sb.WriteString("\t];\n")

	// Per-vector zero-copy view and verification, closed by the footer.
	fmt.Fprintf(&sb, "\tfor t in TESTS {\n        let (head, thing2, _tail): (&[u8], &[LmsSignature<%d, %d, %d>], &[u8]) =\n            unsafe { t.signature.align_to::<LmsSignature<%d, %d, %d>>() };\n",
		words, fx.P, fx.Height, words, fx.P, fx.Height)

	sb.WriteString(footer)
	return sb.String()
}

// Write renders the batch and creates (or overwrites) the output file.
// The fixture is fully assembled before this point, so a failure here
// never leaves a partial artifact from an aborted batch.
func Write(filename string, fx *testgen.Fixture) error {
	if err := os.WriteFile(filename, []byte(Render(fx)), 0644); err != nil {
		return fmt.Errorf("failed to write test file %s: %v", filename, err)
	}
	return nil
}
