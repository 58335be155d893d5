package matrix

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestMul(t *testing.T) {
	t.Run("known product", func(t *testing.T) {
		a := Dense{{1, 2, 3}, {4, 5, 6}}
		b := Dense{{7, 8}, {9, 10}, {11, 12}}

		got, err := Mul(a, b)
		require.NoError(t, err)
		assert.Equal(t, Dense{{58, 64}, {139, 154}}, got)
	})

	t.Run("identity is neutral", func(t *testing.T) {
		a := Dense{{1.5, -2}, {0.25, 3}}
		got, err := Mul(a, Identity(2))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := Mul(Dense{{1, 2}}, Dense{{1, 2}})
		assert.ErrorIs(t, err, ErrShape)
	})
}

func TestMulVec(t *testing.T) {
	a := Dense{{1, 2, 3}, {4, 5, 6}}

	got, err := MulVec(a, []float64{1, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -2}, got)

	_, err = MulVec(a, []float64{1, 2})
	assert.ErrorIs(t, err, ErrShape)
}

func TestTranspose(t *testing.T) {
	a := Dense{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, Dense{{1, 4}, {2, 5}, {3, 6}}, Transpose(a))
}

// The normal matrix XᵗX must be symmetric for any rectangular X.
func TestMul_NormalMatrixIsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	x := New(20, 6)
	for i := range x {
		for j := range x[i] {
			x[i][j] = rng.Float64()*10 - 5
		}
	}

	xtx, err := Mul(Transpose(x), x)
	require.NoError(t, err)

	require.Equal(t, 6, xtx.Rows())
	require.Equal(t, 6, xtx.Cols())
	for i := range xtx {
		for j := range xtx[i] {
			assert.InDelta(t, xtx[j][i], xtx[i][j], epsilon, "entry (%d,%d)", i, j)
		}
	}
}

func TestInverse(t *testing.T) {
	t.Run("known inverse", func(t *testing.T) {
		m := Dense{{4, 7}, {2, 6}}
		inv, err := Inverse(m)
		require.NoError(t, err)

		want := Dense{{0.6, -0.7}, {-0.2, 0.4}}
		for i := range want {
			for j := range want[i] {
				assert.InDelta(t, want[i][j], inv[i][j], epsilon)
			}
		}
	})

	t.Run("product with inverse is identity", func(t *testing.T) {
		m := Dense{{2, -1, 0}, {-1, 2, -1}, {0, -1, 2}}
		inv, err := Inverse(m)
		require.NoError(t, err)

		prod, err := Mul(m, inv)
		require.NoError(t, err)

		id := Identity(3)
		for i := range id {
			for j := range id[i] {
				assert.InDelta(t, id[i][j], prod[i][j], epsilon)
			}
		}
	})

	t.Run("double inverse restores original", func(t *testing.T) {
		m := Dense{{3, 0.5, -1}, {0.5, 4, 2}, {-1, 2, 5}}
		inv, err := Inverse(m)
		require.NoError(t, err)
		back, err := Inverse(inv)
		require.NoError(t, err)

		for i := range m {
			for j := range m[i] {
				assert.InDelta(t, m[i][j], back[i][j], epsilon)
			}
		}
	})

	t.Run("pivoting handles zero on the diagonal", func(t *testing.T) {
		m := Dense{{0, 1}, {1, 0}}
		inv, err := Inverse(m)
		require.NoError(t, err)
		assert.InDelta(t, 0, inv[0][0], epsilon)
		assert.InDelta(t, 1, inv[0][1], epsilon)
	})

	t.Run("singular matrix fails explicitly", func(t *testing.T) {
		// Second row is a multiple of the first.
		m := Dense{{1, 2}, {2, 4}}
		_, err := Inverse(m)
		assert.ErrorIs(t, err, ErrSingular)
	})

	t.Run("zero column fails explicitly", func(t *testing.T) {
		m := Dense{{1, 0, 2}, {3, 0, 4}, {5, 0, 6}}
		_, err := Inverse(m)
		assert.ErrorIs(t, err, ErrSingular)
	})

	t.Run("near-singular below tolerance fails", func(t *testing.T) {
		m := Dense{{1, 1}, {1, 1 + 1e-14}}
		_, err := Inverse(m)
		assert.ErrorIs(t, err, ErrSingular)
	})

	t.Run("non-square fails", func(t *testing.T) {
		_, err := Inverse(Dense{{1, 2, 3}, {4, 5, 6}})
		assert.ErrorIs(t, err, ErrShape)
	})

	t.Run("empty fails", func(t *testing.T) {
		_, err := Inverse(Dense{})
		assert.ErrorIs(t, err, ErrShape)
	})
}

func TestDims(t *testing.T) {
	m := New(3, 4)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.Equal(t, 0, Dense{}.Cols())
}
