package base62_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/serroba/slugly/internal/base62"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Run("zero is a single character", func(t *testing.T) {
		assert.Equal(t, "0", base62.Encode(0))
	})

	t.Run("follows alphabet order", func(t *testing.T) {
		cases := map[uint64]string{
			1:    "1",
			9:    "9",
			10:   "A",
			35:   "Z",
			36:   "a",
			61:   "z",
			62:   "10",
			63:   "11",
			3843: "zz",
			3844: "100",
		}

		for n, want := range cases {
			assert.Equal(t, want, base62.Encode(n), "encode(%d)", n)
		}
	})

	t.Run("never emits leading zero symbols", func(t *testing.T) {
		for n := uint64(1); n < 10000; n++ {
			assert.NotEqual(t, byte('0'), base62.Encode(n)[0])
		}
	})

	t.Run("encodes max uint64", func(t *testing.T) {
		s := base62.Encode(math.MaxUint64)

		assert.Len(t, s, 11)

		n, err := base62.Decode(s)
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), n)
	})
}

func TestDecode(t *testing.T) {
	t.Run("decodes known values", func(t *testing.T) {
		n, err := base62.Decode("zz")

		require.NoError(t, err)
		assert.Equal(t, uint64(3843), n)
	})

	t.Run("rejects characters outside the alphabet", func(t *testing.T) {
		for _, s := range []string{"ab-c", "a_b", "héllo", "a b", "abc!"} {
			_, err := base62.Decode(s)

			assert.ErrorIs(t, err, base62.ErrInvalidCharacter, s)
		}
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := base62.Decode("")

		assert.ErrorIs(t, err, base62.ErrEmpty)
	})

	t.Run("rejects overflow", func(t *testing.T) {
		_, err := base62.Decode("zzzzzzzzzzzz")

		assert.ErrorIs(t, err, base62.ErrOverflow)
	})
}

func TestRoundTrip(t *testing.T) {
	t.Run("small values", func(t *testing.T) {
		for n := range uint64(100000) {
			got, err := base62.Decode(base62.Encode(n))

			require.NoError(t, err)
			require.Equal(t, n, got)
		}
	})

	t.Run("random values below 2^31", func(t *testing.T) {
		r := rand.New(rand.NewPCG(1, 2))

		for range 100000 {
			n := r.Uint64N(1 << 31)

			got, err := base62.Decode(base62.Encode(n))

			require.NoError(t, err)
			require.Equal(t, n, got)
		}
	})

	t.Run("boundaries", func(t *testing.T) {
		for _, n := range []uint64{1<<31 - 1, 1 << 31, 1<<32 - 1, 1<<53 + 1, math.MaxInt64, math.MaxUint64 - 1} {
			got, err := base62.Decode(base62.Encode(n))

			require.NoError(t, err)
			assert.Equal(t, n, got)
		}
	})
}
