package sampling

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
)

// ErrForkBudget is returned when a fork requests more bytes
// than a bounded [Source] has left.
var ErrForkBudget = errors.New("fork exceeds the remaining budget of the source")

// Generator identifies the extendable output function backing a [Source].
type Generator int

const (
	// Blake3 is the keyed BLAKE3 XOF, seekable to any offset.
	Blake3 = Generator(iota)
	// ChaCha20 is the ChaCha20 keystream, seekable by block counter.
	ChaCha20
)

func (g Generator) String() string {
	switch g {
	case Blake3:
		return "blake3"
	case ChaCha20:
		return "chacha20"
	default:
		return fmt.Sprintf("Generator(%d)", int(g))
	}
}

// ParseGenerator returns the [Generator] of the given name.
func ParseGenerator(name string) (Generator, error) {
	switch strings.ToLower(name) {
	case "", "blake3":
		return Blake3, nil
	case "chacha20":
		return ChaCha20, nil
	default:
		return 0, fmt.Errorf("invalid generator: %q is not one of [blake3, chacha20]", name)
	}
}

// Source is a deterministic stream of pseudo-random bytes indexed by a
// seed and an offset. A Source can be forked into children that read
// disjoint ranges of the parent stream: the bytes produced by the
// children do not depend on the order in which they are consumed, which
// makes parallel generation reproducible.
//
// A forked child is bounded: reading past its budget is an invariant
// violation and panics.
//
// A Source is not safe for concurrent use.
type Source struct {
	generator Generator
	seed      [SeedSize]byte
	offset    uint64
	end       uint64
	bounded   bool
	stream    io.Reader
	buf       [8]byte
}

// NewSource returns a new unbounded [Source] over the [Blake3] generator.
func NewSource(seed [SeedSize]byte) *Source {
	return NewSourceWithGenerator(Blake3, seed)
}

// NewSourceWithGenerator returns a new unbounded [Source] over the given [Generator].
func NewSourceWithGenerator(generator Generator, seed [SeedSize]byte) (s *Source) {
	s = &Source{generator: generator, seed: seed}
	s.stream = openStream(generator, seed, 0)
	return
}

// Generator returns the [Generator] backing the source.
func (s *Source) Generator() Generator {
	return s.generator
}

// Offset returns the absolute position of the next byte in the stream.
func (s *Source) Offset() uint64 {
	return s.offset
}

// RemainingBytes returns the number of bytes that can still
// be read from the source, or [math.MaxUint64] if it is unbounded.
func (s *Source) RemainingBytes() uint64 {
	if !s.bounded {
		return math.MaxUint64
	}
	return s.end - s.offset
}

// Read fills p with the next len(p) bytes of the stream.
// Panics if the source is bounded and p exceeds its remaining budget.
func (s *Source) Read(p []byte) (n int, err error) {

	if s.bounded && uint64(len(p)) > s.end-s.offset {
		panic(fmt.Errorf("invalid read: %d bytes requested but only %d remaining", len(p), s.end-s.offset))
	}

	if n, err = io.ReadFull(s.stream, p); err != nil {
		return n, fmt.Errorf("io.ReadFull: %w", err)
	}

	s.offset += uint64(n)

	return
}

// Uint64 returns the next 8 bytes of the stream as a uint64.
// This method makes [Source] a [math/rand/v2.Source].
func (s *Source) Uint64() uint64 {
	if _, err := s.Read(s.buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// NewSeed reads a new seed from the stream.
func (s *Source) NewSeed() (seed [SeedSize]byte) {
	if _, err := s.Read(seed[:]); err != nil {
		panic(err)
	}
	return
}

// TryFork returns n children of the source, each reading its own
// range of bytesPerChild bytes of the stream, and advances the source
// past the n ranges. Child i reads the range
// [offset + i*bytesPerChild, offset + (i+1)*bytesPerChild).
//
// Returns [ErrForkBudget] if the source is bounded and
// n*bytesPerChild exceeds its remaining budget. The source
// is left unchanged in this case.
func (s *Source) TryFork(n int, bytesPerChild uint64) (children []*Source, err error) {

	if n < 0 {
		return nil, fmt.Errorf("invalid number of children: %d", n)
	}

	if bytesPerChild != 0 && uint64(n) > math.MaxUint64/bytesPerChild {
		return nil, fmt.Errorf("%w: %d children of %d bytes overflows", ErrForkBudget, n, bytesPerChild)
	}

	total := uint64(n) * bytesPerChild

	if total > s.RemainingBytes() {
		return nil, fmt.Errorf("%w: %d bytes requested but only %d remaining", ErrForkBudget, total, s.RemainingBytes())
	}

	children = make([]*Source, n)
	for i := range children {
		start := s.offset + uint64(i)*bytesPerChild
		children[i] = &Source{
			generator: s.generator,
			seed:      s.seed,
			offset:    start,
			end:       start + bytesPerChild,
			bounded:   true,
			stream:    openStream(s.generator, s.seed, start),
		}
	}

	s.offset += total
	s.stream = openStream(s.generator, s.seed, s.offset)

	return
}

func openStream(generator Generator, seed [SeedSize]byte, offset uint64) io.Reader {
	switch generator {
	case Blake3:

		h, err := blake3.NewKeyed(seed[:])
		if err != nil {
			panic(fmt.Errorf("blake3.NewKeyed: %w", err))
		}

		if offset > math.MaxInt64 {
			panic(fmt.Errorf("invalid offset: %d exceeds the seekable range", offset))
		}

		d := h.Digest()
		if _, err = d.Seek(int64(offset), io.SeekStart); err != nil {
			panic(fmt.Errorf("blake3.Digest.Seek: %w", err))
		}

		return d

	case ChaCha20:

		c, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
		if err != nil {
			panic(fmt.Errorf("chacha20.NewUnauthenticatedCipher: %w", err))
		}

		if offset/64 > math.MaxUint32 {
			panic(fmt.Errorf("invalid offset: %d exceeds the keystream length", offset))
		}

		c.SetCounter(uint32(offset / 64))

		r := &keystream{Cipher: c}

		var skip [64]byte
		if _, err = r.Read(skip[:offset%64]); err != nil {
			panic(err)
		}

		return r

	default:
		panic(fmt.Errorf("invalid generator: %v", generator))
	}
}

// keystream exposes the raw ChaCha20 keystream as an [io.Reader].
type keystream struct {
	*chacha20.Cipher
}

func (k *keystream) Read(p []byte) (n int, err error) {
	clear(p)
	k.XORKeyStream(p, p)
	return len(p), nil
}
