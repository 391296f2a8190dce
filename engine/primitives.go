package engine

import (
	"github.com/Pro7ech/tfhe/bootstrap"
	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/device"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
)

// LWESecretKeyGenerationEngine generates LWE secret keys.
type LWESecretKeyGenerationEngine[T torus.Torus] interface {
	GenerateLWESecretKey(n int, d torus.KeyDistribution) (*lwe.SecretKey[T], error)
	GenerateLWESecretKeyUnchecked(n int, d torus.KeyDistribution) *lwe.SecretKey[T]
}

// GLWESecretKeyGenerationEngine generates GLWE secret keys.
type GLWESecretKeyGenerationEngine[T torus.Torus] interface {
	GenerateGLWESecretKey(K, N int, d torus.KeyDistribution) (*glwe.SecretKey[T], error)
	GenerateGLWESecretKeyUnchecked(K, N int, d torus.KeyDistribution) *glwe.SecretKey[T]
}

// LWEEncryptionEngine encrypts LWE ciphertexts in place.
type LWEEncryptionEngine[T torus.Torus] interface {
	DiscardEncryptLWECiphertext(sk *lwe.SecretKey[T], out *lwe.Ciphertext[T], pt T, std float64) error
	DiscardEncryptLWECiphertextUnchecked(sk *lwe.SecretKey[T], out *lwe.Ciphertext[T], pt T, std float64)
}

// LWEDecryptionEngine decrypts LWE ciphertexts.
type LWEDecryptionEngine[T torus.Torus] interface {
	DecryptLWECiphertext(sk *lwe.SecretKey[T], ct *lwe.Ciphertext[T]) (T, error)
	DecryptLWECiphertextUnchecked(sk *lwe.SecretKey[T], ct *lwe.Ciphertext[T]) T
}

// LWETrivialEncryptionEngine creates noiseless LWE ciphertexts.
type LWETrivialEncryptionEngine[T torus.Torus] interface {
	TrivialEncryptLWECiphertext(n int, pt T) (*lwe.Ciphertext[T], error)
	TrivialEncryptLWECiphertextUnchecked(n int, pt T) *lwe.Ciphertext[T]
}

// SeededLWEEncryptionEngine encrypts LWE ciphertexts with a seeded mask and expands them.
type SeededLWEEncryptionEngine[T torus.Torus] interface {
	DiscardEncryptSeededLWECiphertext(sk *lwe.SecretKey[T], out *lwe.SeededCiphertext[T], pt T, std float64) error
	DiscardEncryptSeededLWECiphertextUnchecked(sk *lwe.SecretKey[T], out *lwe.SeededCiphertext[T], pt T, std float64)
	DiscardExpandSeededLWECiphertext(out *lwe.Ciphertext[T], in *lwe.SeededCiphertext[T]) error
	DiscardExpandSeededLWECiphertextUnchecked(out *lwe.Ciphertext[T], in *lwe.SeededCiphertext[T])
}

// GLWEEncryptionEngine encrypts GLWE ciphertexts in place.
type GLWEEncryptionEngine[T torus.Torus] interface {
	DiscardEncryptGLWECiphertext(sk *glwe.SecretKey[T], out *glwe.Ciphertext[T], pt []T, std float64) error
	DiscardEncryptGLWECiphertextUnchecked(sk *glwe.SecretKey[T], out *glwe.Ciphertext[T], pt []T, std float64)
}

// GLWEDecryptionEngine decrypts GLWE ciphertexts in place.
type GLWEDecryptionEngine[T torus.Torus] interface {
	DiscardDecryptGLWECiphertext(sk *glwe.SecretKey[T], ct *glwe.Ciphertext[T], pt []T) error
	DiscardDecryptGLWECiphertextUnchecked(sk *glwe.SecretKey[T], ct *glwe.Ciphertext[T], pt []T)
}

// GLWETrivialEncryptionEngine creates noiseless GLWE ciphertexts.
type GLWETrivialEncryptionEngine[T torus.Torus] interface {
	TrivialEncryptGLWECiphertext(K int, pt []T) (*glwe.Ciphertext[T], error)
	TrivialEncryptGLWECiphertextUnchecked(K int, pt []T) *glwe.Ciphertext[T]
}

// SeededGLWEEncryptionEngine encrypts GLWE ciphertexts with a seeded mask and expands them.
type SeededGLWEEncryptionEngine[T torus.Torus] interface {
	DiscardEncryptSeededGLWECiphertext(sk *glwe.SecretKey[T], out *glwe.SeededCiphertext[T], pt []T, std float64) error
	DiscardEncryptSeededGLWECiphertextUnchecked(sk *glwe.SecretKey[T], out *glwe.SeededCiphertext[T], pt []T, std float64)
	DiscardExpandSeededGLWECiphertext(out *glwe.Ciphertext[T], in *glwe.SeededCiphertext[T]) error
	DiscardExpandSeededGLWECiphertextUnchecked(out *glwe.Ciphertext[T], in *glwe.SeededCiphertext[T])
}

// GGSWEncryptionEngine encrypts scalars as GGSW ciphertexts.
type GGSWEncryptionEngine[T torus.Torus] interface {
	EncryptScalarGGSWCiphertext(sk *glwe.SecretKey[T], m T, std float64, dd decomposition.Parameters) (*ggsw.Ciphertext[T], error)
	EncryptScalarGGSWCiphertextUnchecked(sk *glwe.SecretKey[T], m T, std float64, dd decomposition.Parameters) *ggsw.Ciphertext[T]
}

// GGSWConversionEngine maps GGSW ciphertexts to the transform domain.
type GGSWConversionEngine[T torus.Torus] interface {
	ConvertGGSWCiphertext(ct *ggsw.Ciphertext[T]) (*TransformedGGSWCiphertext[T], error)
	ConvertGGSWCiphertextUnchecked(ct *ggsw.Ciphertext[T]) *TransformedGGSWCiphertext[T]
}

// ExternalProductEngine evaluates discarding external products.
type ExternalProductEngine[T torus.Torus] interface {
	DiscardExternalProduct(out *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T], in *glwe.Ciphertext[T]) error
	DiscardExternalProductUnchecked(out *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T], in *glwe.Ciphertext[T])
}

// CMUXEngine evaluates fusing CMUX gates.
type CMUXEngine[T torus.Torus] interface {
	FuseCMUX(ct0, ct1 *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T]) error
	FuseCMUXUnchecked(ct0, ct1 *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T])
}

// BootstrapKeyGenerationEngine generates bootstrap keys.
type BootstrapKeyGenerationEngine[T torus.Torus] interface {
	GenerateBootstrapKey(lweKey *lwe.SecretKey[T], glweKey *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (*bootstrap.Key[T], error)
	GenerateBootstrapKeyUnchecked(lweKey *lwe.SecretKey[T], glweKey *glwe.SecretKey[T], dd decomposition.Parameters, std float64) *bootstrap.Key[T]
}

// BootstrapKeyConversionEngine maps bootstrap keys to the transform domain.
type BootstrapKeyConversionEngine[T torus.Torus] interface {
	ConvertBootstrapKey(bsk *bootstrap.Key[T]) (*TransformedBootstrapKey[T], error)
	ConvertBootstrapKeyUnchecked(bsk *bootstrap.Key[T]) *TransformedBootstrapKey[T]
}

// BootstrapEngine evaluates discarding bootstraps.
type BootstrapEngine[T torus.Torus] interface {
	DiscardBootstrapLWECiphertext(out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) error
	DiscardBootstrapLWECiphertextUnchecked(out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T])
}

// BootstrapVectorEngine evaluates discarding bootstraps of vectors of LWE ciphertexts.
type BootstrapVectorEngine[T torus.Torus] interface {
	DiscardBootstrapLWECiphertextVector(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) ([]device.Shard, error)
	DiscardBootstrapLWECiphertextVectorUnchecked(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) []device.Shard
}

// ManyLUTBootstrapEngine evaluates several look-up tables with one blind rotation.
type ManyLUTBootstrapEngine[T torus.Torus] interface {
	DiscardBootstrapManyLUT(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int, bsk *TransformedBootstrapKey[T]) error
	DiscardBootstrapManyLUTUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int, bsk *TransformedBootstrapKey[T])
}

// MultiValueBootstrapEngine evaluates multi-value bootstraps.
type MultiValueBootstrapEngine[T torus.Torus] interface {
	DiscardMultiValueBootstrap(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T, bsk *TransformedBootstrapKey[T]) error
	DiscardMultiValueBootstrapUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T, bsk *TransformedBootstrapKey[T])
}

// KeyswitchKeyGenerationEngine generates LWE keyswitch keys.
type KeyswitchKeyGenerationEngine[T torus.Torus] interface {
	GenerateLWEKeyswitchKey(skIn, skOut *lwe.SecretKey[T], dd decomposition.Parameters, std float64) (*lwe.KeyswitchKey[T], error)
	GenerateLWEKeyswitchKeyUnchecked(skIn, skOut *lwe.SecretKey[T], dd decomposition.Parameters, std float64) *lwe.KeyswitchKey[T]
}

// KeyswitchEngine evaluates discarding LWE keyswitches.
type KeyswitchEngine[T torus.Torus] interface {
	DiscardKeyswitchLWECiphertext(out, in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) error
	DiscardKeyswitchLWECiphertextUnchecked(out, in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T])
}

// KeyswitchVectorEngine evaluates discarding LWE keyswitches of vectors of ciphertexts.
type KeyswitchVectorEngine[T torus.Torus] interface {
	DiscardKeyswitchLWECiphertextVector(outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) ([]device.Shard, error)
	DiscardKeyswitchLWECiphertextVectorUnchecked(outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) []device.Shard
}

// PackingKeyswitchKeyGenerationEngine generates private functional packing keyswitch keys.
type PackingKeyswitchKeyGenerationEngine[T torus.Torus] interface {
	GeneratePrivateFunctionalPackingKeyswitchKey(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64, f func(T) T, P []T) (*glwe.PrivateFunctionalPackingKeyswitchKey[T], error)
	GeneratePrivateFunctionalPackingKeyswitchKeyUnchecked(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64, f func(T) T, P []T) *glwe.PrivateFunctionalPackingKeyswitchKey[T]
}

// PackingKeyswitchEngine packs vectors of LWE ciphertexts into GLWE ciphertexts.
type PackingKeyswitchEngine[T torus.Torus] interface {
	DiscardPackingKeyswitchLWECiphertextVector(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], pfk *glwe.PrivateFunctionalPackingKeyswitchKey[T]) error
	DiscardPackingKeyswitchLWECiphertextVectorUnchecked(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], pfk *glwe.PrivateFunctionalPackingKeyswitchKey[T])
}

// PublicPackingKeyswitchKeyGenerationEngine generates public functional packing keyswitch keys.
type PublicPackingKeyswitchKeyGenerationEngine[T torus.Torus] interface {
	GeneratePackingKeyswitchKey(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (*glwe.PackingKeyswitchKey[T], error)
	GeneratePackingKeyswitchKeyUnchecked(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64) *glwe.PackingKeyswitchKey[T]
}

// PublicPackingKeyswitchEngine packs vectors of LWE ciphertexts into GLWE ciphertexts
// through public linear functions.
type PublicPackingKeyswitchEngine[T torus.Torus] interface {
	DiscardPublicFunctionalPackingKeyswitchLWECiphertextVector(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], f func(x, poly []T), pk *glwe.PackingKeyswitchKey[T]) error
	DiscardPublicFunctionalPackingKeyswitchLWECiphertextVectorUnchecked(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], f func(x, poly []T), pk *glwe.PackingKeyswitchKey[T])
}

// RelinearizationKeyGenerationEngine generates relinearization keys.
type RelinearizationKeyGenerationEngine[T torus.Torus] interface {
	GenerateRelinearizationKey(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (*glwe.RelinearizationKey[T], error)
	GenerateRelinearizationKeyUnchecked(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) *glwe.RelinearizationKey[T]
}

// LeveledMultiplicationEngine multiplies GLWE ciphertexts.
type LeveledMultiplicationEngine[T torus.Torus] interface {
	DiscardMultiplyGLWECiphertext(out, a, b *glwe.Ciphertext[T], deltaLog int, rlk *glwe.RelinearizationKey[T]) error
	DiscardMultiplyGLWECiphertextUnchecked(out, a, b *glwe.Ciphertext[T], deltaLog int, rlk *glwe.RelinearizationKey[T])
}

// CircuitBootstrapKeyGenerationEngine generates circuit bootstrap keys.
type CircuitBootstrapKeyGenerationEngine[T torus.Torus] interface {
	GenerateCircuitBootstrapKeys(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (bootstrap.CircuitBootstrapKeys[T], error)
	GenerateCircuitBootstrapKeysUnchecked(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) bootstrap.CircuitBootstrapKeys[T]
}

// CircuitBootstrapEngine evaluates circuit bootstraps of boolean LWE ciphertexts.
type CircuitBootstrapEngine[T torus.Torus] interface {
	DiscardCircuitBootstrapBoolean(out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T]) error
	DiscardCircuitBootstrapBooleanUnchecked(out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T])
}

// BitExtractionEngine extracts the bits of LWE ciphertexts.
type BitExtractionEngine[T torus.Torus] interface {
	DiscardExtractBits(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T]) error
	DiscardExtractBitsUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T])
}

// CMUXTreeEngine selects look-up tables with GGSW encryptions of the bits of an index.
type CMUXTreeEngine[T torus.Torus] interface {
	DiscardCMUXTree(out *glwe.Ciphertext[T], luts [][]T, ggsws []*TransformedGGSWCiphertext[T]) error
	DiscardCMUXTreeUnchecked(out *glwe.Ciphertext[T], luts [][]T, ggsws []*TransformedGGSWCiphertext[T])
}

// VerticalPackingEngine evaluates look-up tables on GGSW encryptions of bits.
type VerticalPackingEngine[T torus.Torus] interface {
	DiscardVerticalPacking(out *lwe.Ciphertext[T], lut [][]T, ggsws []*TransformedGGSWCiphertext[T]) error
	DiscardVerticalPackingUnchecked(out *lwe.Ciphertext[T], lut [][]T, ggsws []*TransformedGGSWCiphertext[T])
}

// WoPBootstrapEngine evaluates look-up tables on LWE ciphertexts without padding bit.
type WoPBootstrapEngine[T torus.Torus] interface {
	DiscardWoPBootstrap(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, dd decomposition.Parameters, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T]) error
	DiscardWoPBootstrapUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, dd decomposition.Parameters, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T])
}

// SampleExtractionEngine extracts LWE ciphertexts from GLWE ciphertexts.
type SampleExtractionEngine[T torus.Torus] interface {
	DiscardExtractLWESample(out *lwe.Ciphertext[T], in *glwe.Ciphertext[T], j int) error
	DiscardExtractLWESampleUnchecked(out *lwe.Ciphertext[T], in *glwe.Ciphertext[T], j int)
}

// RawStorageEngine creates entities over caller storage.
type RawStorageEngine[T torus.Torus] interface {
	CreateLWECiphertextFrom(raw []T, n int) (*lwe.Ciphertext[T], error)
	CreateLWECiphertextFromUnchecked(raw []T, n int) *lwe.Ciphertext[T]
	CreateGLWECiphertextFrom(raw []T, K, N int) (*glwe.Ciphertext[T], error)
	CreateGLWECiphertextFromUnchecked(raw []T, K, N int) *glwe.Ciphertext[T]
	CreateGGSWCiphertextFrom(raw []T, K, N int, dd decomposition.Parameters) (*ggsw.Ciphertext[T], error)
	CreateGGSWCiphertextFromUnchecked(raw []T, K, N int, dd decomposition.Parameters) *ggsw.Ciphertext[T]
}

// ConsumptionEngine returns the storage of entities. It cannot fail.
type ConsumptionEngine[T torus.Torus] interface {
	ConsumeLWECiphertext(ct *lwe.Ciphertext[T]) []T
	ConsumeGLWECiphertext(ct *glwe.Ciphertext[T]) []T
	ConsumeGGSWCiphertext(ct *ggsw.Ciphertext[T]) []T
}

// DestructionEngine releases entities. It cannot fail.
type DestructionEngine[T torus.Torus] interface {
	DestroyLWESecretKey(sk *lwe.SecretKey[T])
	DestroyGLWESecretKey(sk *glwe.SecretKey[T])
	DestroyTransformedGGSWCiphertext(g *TransformedGGSWCiphertext[T])
	DestroyTransformedBootstrapKey(bsk *TransformedBootstrapKey[T])
	DestroyLWEKeyswitchKey(ksk *lwe.KeyswitchKey[T])
}

var (
	_ LWESecretKeyGenerationEngine[uint32]              = (*Engine[uint32])(nil)
	_ GLWESecretKeyGenerationEngine[uint32]             = (*Engine[uint32])(nil)
	_ LWEEncryptionEngine[uint32]                       = (*Engine[uint32])(nil)
	_ LWEDecryptionEngine[uint32]                       = (*Engine[uint32])(nil)
	_ LWETrivialEncryptionEngine[uint32]                = (*Engine[uint32])(nil)
	_ GLWEEncryptionEngine[uint32]                      = (*Engine[uint32])(nil)
	_ GLWEDecryptionEngine[uint32]                      = (*Engine[uint32])(nil)
	_ GLWETrivialEncryptionEngine[uint32]               = (*Engine[uint32])(nil)
	_ SeededLWEEncryptionEngine[uint32]                 = (*Engine[uint32])(nil)
	_ SeededGLWEEncryptionEngine[uint32]                = (*Engine[uint32])(nil)
	_ GGSWEncryptionEngine[uint32]                      = (*Engine[uint32])(nil)
	_ GGSWConversionEngine[uint32]                      = (*Engine[uint32])(nil)
	_ ExternalProductEngine[uint32]                     = (*Engine[uint32])(nil)
	_ CMUXEngine[uint32]                                = (*Engine[uint32])(nil)
	_ BootstrapKeyGenerationEngine[uint32]              = (*Engine[uint32])(nil)
	_ BootstrapKeyConversionEngine[uint32]              = (*Engine[uint32])(nil)
	_ BootstrapEngine[uint32]                           = (*Engine[uint32])(nil)
	_ BootstrapVectorEngine[uint32]                     = (*Engine[uint32])(nil)
	_ ManyLUTBootstrapEngine[uint32]                    = (*Engine[uint32])(nil)
	_ MultiValueBootstrapEngine[uint32]                 = (*Engine[uint32])(nil)
	_ KeyswitchKeyGenerationEngine[uint32]              = (*Engine[uint32])(nil)
	_ KeyswitchEngine[uint32]                           = (*Engine[uint32])(nil)
	_ KeyswitchVectorEngine[uint32]                     = (*Engine[uint32])(nil)
	_ PackingKeyswitchKeyGenerationEngine[uint32]       = (*Engine[uint32])(nil)
	_ PackingKeyswitchEngine[uint32]                    = (*Engine[uint32])(nil)
	_ PublicPackingKeyswitchKeyGenerationEngine[uint32] = (*Engine[uint32])(nil)
	_ PublicPackingKeyswitchEngine[uint32]              = (*Engine[uint32])(nil)
	_ RelinearizationKeyGenerationEngine[uint32]        = (*Engine[uint32])(nil)
	_ LeveledMultiplicationEngine[uint32]               = (*Engine[uint32])(nil)
	_ CircuitBootstrapKeyGenerationEngine[uint32]       = (*Engine[uint32])(nil)
	_ CircuitBootstrapEngine[uint32]                    = (*Engine[uint32])(nil)
	_ BitExtractionEngine[uint32]                       = (*Engine[uint32])(nil)
	_ CMUXTreeEngine[uint32]                            = (*Engine[uint32])(nil)
	_ VerticalPackingEngine[uint32]                     = (*Engine[uint32])(nil)
	_ WoPBootstrapEngine[uint32]                        = (*Engine[uint32])(nil)
	_ SampleExtractionEngine[uint32]                    = (*Engine[uint32])(nil)
	_ RawStorageEngine[uint32]                          = (*Engine[uint32])(nil)
	_ ConsumptionEngine[uint32]                         = (*Engine[uint32])(nil)
	_ DestructionEngine[uint32]                         = (*Engine[uint32])(nil)

	_ LWESecretKeyGenerationEngine[uint64]              = (*Engine[uint64])(nil)
	_ GLWESecretKeyGenerationEngine[uint64]             = (*Engine[uint64])(nil)
	_ LWEEncryptionEngine[uint64]                       = (*Engine[uint64])(nil)
	_ LWEDecryptionEngine[uint64]                       = (*Engine[uint64])(nil)
	_ LWETrivialEncryptionEngine[uint64]                = (*Engine[uint64])(nil)
	_ GLWEEncryptionEngine[uint64]                      = (*Engine[uint64])(nil)
	_ GLWEDecryptionEngine[uint64]                      = (*Engine[uint64])(nil)
	_ GLWETrivialEncryptionEngine[uint64]               = (*Engine[uint64])(nil)
	_ SeededLWEEncryptionEngine[uint64]                 = (*Engine[uint64])(nil)
	_ SeededGLWEEncryptionEngine[uint64]                = (*Engine[uint64])(nil)
	_ GGSWEncryptionEngine[uint64]                      = (*Engine[uint64])(nil)
	_ GGSWConversionEngine[uint64]                      = (*Engine[uint64])(nil)
	_ ExternalProductEngine[uint64]                     = (*Engine[uint64])(nil)
	_ CMUXEngine[uint64]                                = (*Engine[uint64])(nil)
	_ BootstrapKeyGenerationEngine[uint64]              = (*Engine[uint64])(nil)
	_ BootstrapKeyConversionEngine[uint64]              = (*Engine[uint64])(nil)
	_ BootstrapEngine[uint64]                           = (*Engine[uint64])(nil)
	_ BootstrapVectorEngine[uint64]                     = (*Engine[uint64])(nil)
	_ ManyLUTBootstrapEngine[uint64]                    = (*Engine[uint64])(nil)
	_ MultiValueBootstrapEngine[uint64]                 = (*Engine[uint64])(nil)
	_ KeyswitchKeyGenerationEngine[uint64]              = (*Engine[uint64])(nil)
	_ KeyswitchEngine[uint64]                           = (*Engine[uint64])(nil)
	_ KeyswitchVectorEngine[uint64]                     = (*Engine[uint64])(nil)
	_ PackingKeyswitchKeyGenerationEngine[uint64]       = (*Engine[uint64])(nil)
	_ PackingKeyswitchEngine[uint64]                    = (*Engine[uint64])(nil)
	_ PublicPackingKeyswitchKeyGenerationEngine[uint64] = (*Engine[uint64])(nil)
	_ PublicPackingKeyswitchEngine[uint64]              = (*Engine[uint64])(nil)
	_ RelinearizationKeyGenerationEngine[uint64]        = (*Engine[uint64])(nil)
	_ LeveledMultiplicationEngine[uint64]               = (*Engine[uint64])(nil)
	_ CircuitBootstrapKeyGenerationEngine[uint64]       = (*Engine[uint64])(nil)
	_ CircuitBootstrapEngine[uint64]                    = (*Engine[uint64])(nil)
	_ BitExtractionEngine[uint64]                       = (*Engine[uint64])(nil)
	_ CMUXTreeEngine[uint64]                            = (*Engine[uint64])(nil)
	_ VerticalPackingEngine[uint64]                     = (*Engine[uint64])(nil)
	_ WoPBootstrapEngine[uint64]                        = (*Engine[uint64])(nil)
	_ SampleExtractionEngine[uint64]                    = (*Engine[uint64])(nil)
	_ RawStorageEngine[uint64]                          = (*Engine[uint64])(nil)
	_ ConsumptionEngine[uint64]                         = (*Engine[uint64])(nil)
	_ DestructionEngine[uint64]                         = (*Engine[uint64])(nil)
)
