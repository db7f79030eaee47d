// Package testgen assembles batches of LMS signature test vectors.
package testgen

import (
	"fmt"

	"github.com/verifiable-state-chains/lms-testgen/encode"
	"github.com/verifiable-state-chains/lms-testgen/lms"
	"github.com/verifiable-state-chains/lms-testgen/params"
	"github.com/verifiable-state-chains/lms-testgen/sampler"
)

// DefaultMessage is the fixed message embedded in every generated
// fixture unless the caller overrides it.
const DefaultMessage = "this is the message I want signed"

// MaxTests bounds the number of vectors per batch.
const MaxTests = 16

// Service is the signing and verification collaborator the generator
// drives. lms.Signer is the in-repo implementation; tests substitute
// fakes.
type Service interface {
	BuildTree(lmsType params.LmsAlgorithmType, otsType params.LmotsAlgorithmType) (*lms.PublicKey, *lms.KeyTree, error)
	Sign(message []byte, key *lms.LeafKey, q uint32, tree *lms.KeyTree) (*lms.Signature, error)
	Verify(message []byte, pub *lms.PublicKey, sig *lms.Signature) (bool, error)
}

// InvalidTestCountError reports a test count outside [1, MaxTests].
type InvalidTestCountError struct {
	Count int
}

func (e *InvalidTestCountError) Error() string {
	return fmt.Sprintf("invalid number of tests: %d expected a number between 1 and %d", e.Count, MaxTests)
}

// Config holds one batch request.
type Config struct {
	N       int
	W       int
	Height  int
	Tests   int
	Message []byte
}

// Validate checks the knobs before any service call. The per-field
// range checks live in params.Resolve; the count bound is enforced
// here, and count vs tree capacity is the sampler's job.
func (c *Config) Validate() error {
	if _, _, err := params.Resolve(c.N, c.W, c.Height); err != nil {
		return err
	}
	if c.Tests < 1 || c.Tests > MaxTests {
		return &InvalidTestCountError{Count: c.Tests}
	}
	return nil
}

// TestVector is one signed message with its expected verification
// outcome and its target-layout signature bytes.
type TestVector struct {
	LeafIndex     uint32
	ExpectSuccess bool
	Signature     []byte
}

// Fixture is a fully assembled batch, ready for emission.
type Fixture struct {
	Message   []byte
	PublicKey []byte

	N       int
	Height  int
	P       uint16
	LmsType params.LmsAlgorithmType
	OtsType params.LmotsAlgorithmType

	Vectors []TestVector
}

// Generator drives a Service to produce fixture batches.
type Generator struct {
	svc     Service
	sampler *sampler.Sampler
}

// New creates a Generator over the given service and leaf sampler.
func New(svc Service, s *sampler.Sampler) *Generator {
	return &Generator{svc: svc, sampler: s}
}

// Generate builds one key tree, signs the message under cfg.Tests
// randomly chosen leaves and returns the serialized batch. Every
// signature is re-verified against the fresh public key before it is
// accepted; any service failure aborts the whole batch.
func (g *Generator) Generate(cfg Config) (*Fixture, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lmsType, otsType, err := params.Resolve(cfg.N, cfg.W, cfg.Height)
	if err != nil {
		return nil, err
	}
	ots, err := params.GetLmotsParameters(otsType)
	if err != nil {
		return nil, err
	}

	message := cfg.Message
	if message == nil {
		message = []byte(DefaultMessage)
	}

	offsets, err := g.sampler.Pick(cfg.Tests, cfg.Height)
	if err != nil {
		return nil, err
	}

	pub, tree, err := g.svc.BuildTree(lmsType, otsType)
	if err != nil {
		return nil, fmt.Errorf("failed to build key tree: %v", err)
	}

	publicKey, err := encode.PublicKey(pub)
	if err != nil {
		return nil, err
	}

	vectors := make([]TestVector, 0, len(offsets))
	for _, offset := range offsets {
		q := tree.Base + offset
		key, err := tree.PrivateKey(q)
		if err != nil {
			return nil, err
		}
		sig, err := g.svc.Sign(message, key, q, tree)
		if err != nil {
			return nil, fmt.Errorf("failed to sign with leaf %d: %v", q, err)
		}
		ok, err := g.svc.Verify(message, pub, sig)
		if err != nil {
			return nil, fmt.Errorf("failed to verify signature for leaf %d: %v", q, err)
		}
		if !ok {
			return nil, fmt.Errorf("self-verification failed for leaf %d", q)
		}
		raw, err := encode.Signature(sig)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, TestVector{
			LeafIndex:     q,
			ExpectSuccess: true,
			Signature:     raw,
		})
	}

	return &Fixture{
		Message:   message,
		PublicKey: publicKey,
		N:         cfg.N,
		Height:    cfg.Height,
		P:         ots.P,
		LmsType:   lmsType,
		OtsType:   otsType,
		Vectors:   vectors,
	}, nil
}

// LeafIndices returns the leaf index of every vector, in batch order.
func (f *Fixture) LeafIndices() []uint32 {
	indices := make([]uint32, len(f.Vectors))
	for i, v := range f.Vectors {
		indices[i] = v.LeafIndex
	}
	return indices
}
