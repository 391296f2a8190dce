package torus

import (
	"fmt"

	"github.com/Pro7ech/tfhe/utils/sampling"
)

// EncryptionGenerator is the pair of sources of randomness of an encryption:
// the mask source, sampled uniformly, and the noise source, sampled from a
// Gaussian. Both sources advance in lock step when forked, so that the
// randomness of each ciphertext of a batch only depends on its position.
type EncryptionGenerator[T Torus] struct {
	Mask  *UniformSampler[T]
	Noise *GaussianSampler[T]
}

// NewEncryptionGenerator returns a new [EncryptionGenerator] whose mask and noise
// sources are instantiated with the given generator and seeds.
func NewEncryptionGenerator[T Torus](generator sampling.Generator, maskSeed, noiseSeed [sampling.SeedSize]byte) *EncryptionGenerator[T] {
	return &EncryptionGenerator[T]{
		Mask:  NewUniformSampler[T](sampling.NewSourceWithGenerator(generator, maskSeed)),
		Noise: NewGaussianSampler[T](sampling.NewSourceWithGenerator(generator, noiseSeed)),
	}
}

// FillMask fills p with uniform elements.
func (g *EncryptionGenerator[T]) FillMask(p []T) {
	g.Mask.Read(p)
}

// AddNoise adds Gaussian errors of standard deviation std on p.
func (g *EncryptionGenerator[T]) AddNoise(p []T, std float64) {
	g.Noise.ReadAndAdd(p, std)
}

// TryFork returns n children of the generator, each with a mask budget of
// maskBytes and a noise budget of noiseBytes, and advances the generator
// past them. Returns [sampling.ErrForkBudget] if the generator is bounded
// and cannot provide the requested budget.
func (g *EncryptionGenerator[T]) TryFork(n int, maskBytes, noiseBytes uint64) (children []*EncryptionGenerator[T], err error) {

	if maskBytes > g.Mask.RemainingBytes()/max(uint64(n), 1) || noiseBytes > g.Noise.RemainingBytes()/max(uint64(n), 1) {
		return nil, fmt.Errorf("%w: cannot fork %d children of (%d, %d) bytes from (%d, %d) bytes", sampling.ErrForkBudget, n, maskBytes, noiseBytes, g.Mask.RemainingBytes(), g.Noise.RemainingBytes())
	}

	var masks, noises []*sampling.Source

	if masks, err = g.Mask.TryFork(n, maskBytes); err != nil {
		return
	}

	if noises, err = g.Noise.TryFork(n, noiseBytes); err != nil {
		return
	}

	children = make([]*EncryptionGenerator[T], n)
	for i := range children {
		children[i] = &EncryptionGenerator[T]{
			Mask:  NewUniformSampler[T](masks[i]),
			Noise: NewGaussianSampler[T](noises[i]),
		}
	}

	return
}

// ForkBudget is the randomness consumed by the encryption of an entity.
type ForkBudget struct {
	Mask  uint64
	Noise uint64
}

// Times returns the budget of n entities.
func (b ForkBudget) Times(n int) ForkBudget {
	return ForkBudget{Mask: b.Mask * uint64(n), Noise: b.Noise * uint64(n)}
}

// LWEBudget returns the budget of the encryption of an LWE ciphertext of dimension n.
func LWEBudget[T Torus](n int) ForkBudget {
	return ForkBudget{
		Mask:  uint64(n * MaskBytesPerCoefficient[T]()),
		Noise: NoiseBytesPerCoefficient,
	}
}

// GLWEBudget returns the budget of the encryption of a GLWE ciphertext
// of dimension k and polynomial size N.
func GLWEBudget[T Torus](k, N int) ForkBudget {
	return ForkBudget{
		Mask:  uint64(k * N * MaskBytesPerCoefficient[T]()),
		Noise: uint64(N * NoiseBytesPerCoefficient),
	}
}

// GGSWLevelBudget returns the budget of the encryption of one level matrix
// of a GGSW ciphertext of dimension k and polynomial size N.
func GGSWLevelBudget[T Torus](k, N int) ForkBudget {
	return GLWEBudget[T](k, N).Times(k + 1)
}

// GGSWBudget returns the budget of the encryption of a GGSW ciphertext
// of dimension k, polynomial size N and level count level.
func GGSWBudget[T Torus](k, N, level int) ForkBudget {
	return GGSWLevelBudget[T](k, N).Times(level)
}

// TryForkBudget is [EncryptionGenerator.TryFork] with the budget of each child given as a [ForkBudget].
func (g *EncryptionGenerator[T]) TryForkBudget(n int, b ForkBudget) ([]*EncryptionGenerator[T], error) {
	return g.TryFork(n, b.Mask, b.Noise)
}

// MaskSeed identifies the uniform stream from which the mask of a seeded
// ciphertext is drawn.
type MaskSeed struct {
	Generator sampling.Generator
	Seed      [sampling.SeedSize]byte
}

// NewMaskSeed draws a new [MaskSeed] from the mask source of the generator.
// It consumes [sampling.SeedSize] bytes of the mask source.
func (g *EncryptionGenerator[T]) NewMaskSeed() MaskSeed {
	return MaskSeed{Generator: g.Mask.Generator(), Seed: g.Mask.NewSeed()}
}

// NewMaskSampler returns a [UniformSampler] over the stream identified by s.
func NewMaskSampler[T Torus](s MaskSeed) *UniformSampler[T] {
	return NewUniformSampler[T](sampling.NewSourceWithGenerator(s.Generator, s.Seed))
}

// SeededLWEBudget returns the budget of the seeded encryption of an LWE ciphertext.
func SeededLWEBudget() ForkBudget {
	return ForkBudget{Mask: sampling.SeedSize, Noise: NoiseBytesPerCoefficient}
}

// SeededGLWEBudget returns the budget of the seeded encryption of a GLWE ciphertext
// of polynomial size N.
func SeededGLWEBudget(N int) ForkBudget {
	return ForkBudget{Mask: sampling.SeedSize, Noise: uint64(N * NoiseBytesPerCoefficient)}
}
