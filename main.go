// Command lms-testgen generates self-contained LMS verification test
// programs for the target device.
//
// Sample run:
//
//	lms-testgen --n 32 --w 8 --tree-height 5 --tests 1 --filename lms_tests_n32_w8.rs
//
// Exit codes:
//
//	0 - success
//	2 - invalid algorithm parameter (--n, --w or --tree-height)
//	3 - invalid test count (--tests outside [1,16] or more tests than tree leaves)
//	4 - signing service failure (tree build, signing or self-verification)
//	5 - output or registry I/O failure
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/verifiable-state-chains/lms-testgen/fixture"
	"github.com/verifiable-state-chains/lms-testgen/lms"
	"github.com/verifiable-state-chains/lms-testgen/params"
	"github.com/verifiable-state-chains/lms-testgen/registry"
	"github.com/verifiable-state-chains/lms-testgen/sampler"
	"github.com/verifiable-state-chains/lms-testgen/testgen"
)

const (
	exitInvalidParameter = 2
	exitInvalidTestCount = 3
	exitServiceFailure   = 4
	exitIOFailure        = 5
)

// exitCodeFor maps a generation failure onto its documented exit code.
func exitCodeFor(err error) int {
	var invalidParam *params.InvalidParameterError
	if errors.As(err, &invalidParam) {
		return exitInvalidParameter
	}
	var invalidCount *testgen.InvalidTestCountError
	if errors.As(err, &invalidCount) {
		return exitInvalidTestCount
	}
	var tooMany *sampler.TooManyTestsError
	if errors.As(err, &tooMany) {
		return exitInvalidTestCount
	}
	return exitServiceFailure
}

func main() {
	n := flag.Int("n", 0, "Hash output size in bytes (24 or 32)")
	w := flag.Int("w", 0, "Winternitz width (1, 2, 4 or 8)")
	height := flag.Int("tree-height", 0, "Tree height (5, 10, 15 or 20)")
	tests := flag.Int("tests", 0, "Number of test vectors to generate (1-16)")
	filename := flag.String("filename", "", "Output file for the generated test program")
	message := flag.String("message", testgen.DefaultMessage, "Message to sign")
	registryPath := flag.String("registry", "", "Optional path to a batch registry database")
	flag.Parse()

	if *filename == "" {
		log.Printf("Missing required flag: --filename")
		os.Exit(exitIOFailure)
	}

	cfg := testgen.Config{
		N:       *n,
		W:       *w,
		Height:  *height,
		Tests:   *tests,
		Message: []byte(*message),
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		os.Exit(exitCodeFor(err))
	}

	log.Printf("Going to create tests for N: %d, W: %d, tree_height: %d", cfg.N, cfg.W, cfg.Height)

	gen := testgen.New(lms.NewSigner(), sampler.New())
	fx, err := gen.Generate(cfg)
	if err != nil {
		log.Printf("Failed to generate fixture batch: %v", err)
		os.Exit(exitCodeFor(err))
	}
	log.Printf("going to use the following keys: %v", fx.LeafIndices())

	if err := fixture.Write(*filename, fx); err != nil {
		log.Printf("%v", err)
		os.Exit(exitIOFailure)
	}

	if *registryPath != "" {
		if err := recordBatch(*registryPath, cfg, fx, *filename); err != nil {
			log.Printf("Failed to record batch: %v", err)
			os.Exit(exitIOFailure)
		}
	}

	log.Printf("Wrote %d test vectors to %s", len(fx.Vectors), *filename)
}

func recordBatch(path string, cfg testgen.Config, fx *testgen.Fixture, artifact string) error {
	reg, err := registry.Open(path)
	if err != nil {
		return err
	}
	defer reg.Close()
	return reg.Record(cfg, fx, artifact)
}
