package sampling

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testString(opname string, g Generator) string {
	return opname + "/" + g.String()
}

func TestPRNG(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07, 0xa1, 0xd7, 0xe9, 0x7b, 0x3b, 0xce, 0xa1, 0xdb,
		0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c, 0xee, 0x09, 0x7c, 0x98}

	Ha, err := NewKeyedPRNG(key)
	require.NoError(t, err)
	Hb, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	sum0 := make([]byte, 512)
	sum1 := make([]byte, 512)

	for i := 0; i < 128; i++ {
		Hb.Read(sum1)
	}

	Hb.Reset()

	Ha.Read(sum0)
	Hb.Read(sum1)

	require.Equal(t, sum0, sum1)
	require.Equal(t, key, Ha.Key())
}

func TestSeeders(t *testing.T) {

	t.Run("Deterministic", func(t *testing.T) {
		a, err := NewDeterministicSeeder([]byte("key"))
		require.NoError(t, err)
		b, err := NewDeterministicSeeder([]byte("key"))
		require.NoError(t, err)
		require.Equal(t, a.Seed(), b.Seed())
		require.NotEqual(t, a.Seed(), a.Seed())
	})

	t.Run("Transcript", func(t *testing.T) {
		a := NewTranscriptSeeder("test")
		b := NewTranscriptSeeder("test")
		a.Append("label", []byte{1})
		b.Append("label", []byte{1})
		sa, sb := a.Seed(), b.Seed()
		require.Equal(t, sa, sb)
		require.NotEqual(t, sa, a.Seed())

		c := NewTranscriptSeeder("test")
		c.Append("label", []byte{2})
		require.NotEqual(t, sa, c.Seed())
	})

	t.Run("OS", func(t *testing.T) {
		require.NotEqual(t, OSSeeder{}.Seed(), OSSeeder{}.Seed())
	})
}

func TestSource(t *testing.T) {

	seed := [SeedSize]byte{1, 2, 3}

	for _, g := range []Generator{Blake3, ChaCha20} {

		t.Run(testString("Deterministic", g), func(t *testing.T) {
			a := NewSourceWithGenerator(g, seed)
			b := NewSourceWithGenerator(g, seed)
			require.Equal(t, a.Uint64(), b.Uint64())
			require.Equal(t, uint64(8), a.Offset())
		})

		t.Run(testString("ForkMatchesParentStream", g), func(t *testing.T) {

			const n, size = 4, 100

			ref := make([]byte, n*size+16)
			_, err := NewSourceWithGenerator(g, seed).Read(ref)
			require.NoError(t, err)

			parent := NewSourceWithGenerator(g, seed)
			children, err := parent.TryFork(n, size)
			require.NoError(t, err)
			require.Len(t, children, n)

			// consumed in reverse order
			for i := n - 1; i >= 0; i-- {
				buf := make([]byte, size)
				_, err := children[i].Read(buf)
				require.NoError(t, err)
				require.Equal(t, ref[i*size:(i+1)*size], buf)
				require.Zero(t, children[i].RemainingBytes())
			}

			tail := make([]byte, 16)
			_, err = parent.Read(tail)
			require.NoError(t, err)
			require.Equal(t, ref[n*size:], tail)
		})

		t.Run(testString("NestedFork", g), func(t *testing.T) {
			parent := NewSourceWithGenerator(g, seed)
			children, err := parent.TryFork(2, 64)
			require.NoError(t, err)

			grandChildren, err := children[1].TryFork(2, 32)
			require.NoError(t, err)

			_, err = children[1].TryFork(1, 1)
			require.ErrorIs(t, err, ErrForkBudget)

			ref := make([]byte, 128)
			_, err = NewSourceWithGenerator(g, seed).Read(ref)
			require.NoError(t, err)

			buf := make([]byte, 32)
			_, err = grandChildren[1].Read(buf)
			require.NoError(t, err)
			require.Equal(t, ref[96:128], buf)
		})

		t.Run(testString("OverBudget", g), func(t *testing.T) {
			children, err := NewSourceWithGenerator(g, seed).TryFork(1, 8)
			require.NoError(t, err)
			_, err = children[0].TryFork(2, 8)
			require.ErrorIs(t, err, ErrForkBudget)
			children[0].Uint64()
			require.Panics(t, func() { children[0].Uint64() })
		})
	}

	t.Run("GeneratorsDiffer", func(t *testing.T) {
		require.NotEqual(t, NewSourceWithGenerator(Blake3, seed).Uint64(), NewSourceWithGenerator(ChaCha20, seed).Uint64())
	})

	t.Run("ParseGenerator", func(t *testing.T) {
		g, err := ParseGenerator("ChaCha20")
		require.NoError(t, err)
		require.Equal(t, ChaCha20, g)
		_, err = ParseGenerator("md5")
		require.Error(t, err)
	})
}
