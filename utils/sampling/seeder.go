package sampling

import (
	"fmt"
	"io"

	"github.com/gtank/merlin"
)

// Seeder is a provider of seeds for [Source].
type Seeder interface {
	Seed() [SeedSize]byte
}

// OSSeeder is a [Seeder] drawing its seeds from the OS entropy source.
type OSSeeder struct{}

// Seed returns a new random seed.
func (OSSeeder) Seed() [SeedSize]byte {
	return NewSeed()
}

// PRNGSeeder is a [Seeder] reading its seeds from a [PRNG].
// Keyed with a [KeyedPRNG], it yields a reproducible sequence of seeds.
type PRNGSeeder struct {
	PRNG
}

// NewDeterministicSeeder returns a [PRNGSeeder] over a [KeyedPRNG] keyed with key.
func NewDeterministicSeeder(key []byte) (*PRNGSeeder, error) {
	prng, err := NewKeyedPRNG(key)
	if err != nil {
		return nil, fmt.Errorf("NewKeyedPRNG: %w", err)
	}
	return &PRNGSeeder{PRNG: prng}, nil
}

// Seed reads a new seed from the underlying [PRNG].
func (s *PRNGSeeder) Seed() (seed [SeedSize]byte) {
	if _, err := io.ReadFull(s.PRNG, seed[:]); err != nil {
		panic(fmt.Errorf("PRNG.Read: %w", err))
	}
	return
}

// TranscriptSeeder is a [Seeder] deriving its seeds from a merlin transcript.
// The seeds are bound to the protocol name and to every message absorbed
// before their extraction.
type TranscriptSeeder struct {
	*merlin.Transcript
	count uint64
}

// NewTranscriptSeeder returns a new [TranscriptSeeder] for the given protocol name.
func NewTranscriptSeeder(protocol string) *TranscriptSeeder {
	return &TranscriptSeeder{Transcript: merlin.NewTranscript(protocol)}
}

// Append absorbs a labeled message into the transcript.
func (s *TranscriptSeeder) Append(label string, message []byte) {
	s.AppendMessage([]byte(label), message)
}

// Seed extracts a new seed from the transcript.
func (s *TranscriptSeeder) Seed() (seed [SeedSize]byte) {
	s.count++
	copy(seed[:], s.ExtractBytes([]byte(fmt.Sprintf("seed-%d", s.count)), SeedSize))
	return
}
