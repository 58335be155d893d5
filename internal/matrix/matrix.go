// Package matrix implements the small dense linear-algebra kernel used by
// the regression engine: multiply, transpose, and Gauss-Jordan inversion
// with partial pivoting. Matrices here are tiny (the normal matrix is
// 10x10), so clarity and an explicit singularity contract win over
// performance.
package matrix

import (
	"errors"
	"math"
)

// pivotEpsilon is the singularity threshold: a pivot whose absolute value
// falls below it aborts the inversion with ErrSingular instead of dividing
// through and returning garbage.
const pivotEpsilon = 1e-10

var (
	// ErrShape indicates operand dimensions that do not agree.
	ErrShape = errors.New("matrix: dimension mismatch")

	// ErrSingular indicates a matrix whose best pivot fell below the
	// tolerance during Gauss-Jordan elimination.
	ErrSingular = errors.New("matrix: singular within pivot tolerance")
)

// Dense is a row-major float64 matrix. All rows must have equal length.
type Dense [][]float64

// New returns a zero-filled rows x cols matrix.
func New(rows, cols int) Dense {
	m := make(Dense, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) Dense {
	m := New(n, n)
	for i := range m {
		m[i][i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m Dense) Rows() int { return len(m) }

// Cols returns the number of columns, 0 for an empty matrix.
func (m Dense) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Mul returns the product a*b, or ErrShape if the inner dimensions disagree.
func Mul(a, b Dense) (Dense, error) {
	if a.Cols() != b.Rows() {
		return nil, ErrShape
	}

	out := New(a.Rows(), b.Cols())
	for i := range a {
		for k, aik := range a[i] {
			if aik == 0 {
				continue
			}
			for j, bkj := range b[k] {
				out[i][j] += aik * bkj
			}
		}
	}
	return out, nil
}

// MulVec returns the matrix-vector product a*v, or ErrShape if the
// dimensions disagree.
func MulVec(a Dense, v []float64) ([]float64, error) {
	if a.Cols() != len(v) {
		return nil, ErrShape
	}

	out := make([]float64, a.Rows())
	for i := range a {
		var sum float64
		for j, aij := range a[i] {
			sum += aij * v[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Transpose returns a new matrix with rows and columns swapped.
func Transpose(a Dense) Dense {
	out := New(a.Cols(), a.Rows())
	for i := range a {
		for j, v := range a[i] {
			out[j][i] = v
		}
	}
	return out
}

// Inverse inverts a square matrix by Gauss-Jordan elimination on the
// augmented [m | I] matrix, selecting the largest-magnitude pivot in each
// column. If the chosen pivot's absolute value is below pivotEpsilon the
// matrix is treated as singular and ErrSingular is returned; there is no
// silent skip path. Returns ErrShape for non-square input.
func Inverse(m Dense) (Dense, error) {
	n := m.Rows()
	if n == 0 || m.Cols() != n {
		return nil, ErrShape
	}

	// Build the augmented [m | I] working matrix.
	aug := New(n, 2*n)
	for i := range m {
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		// Partial pivoting: bring the largest-magnitude entry in this
		// column (at or below the diagonal) onto the diagonal.
		pivotRow := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivotRow][col]) {
				pivotRow = row
			}
		}
		if math.Abs(aug[pivotRow][col]) < pivotEpsilon {
			return nil, ErrSingular
		}
		aug[col], aug[pivotRow] = aug[pivotRow], aug[col]

		// Normalize the pivot row.
		pivot := aug[col][col]
		for j := range aug[col] {
			aug[col][j] /= pivot
		}

		// Eliminate the column from every other row.
		for row := 0; row < n; row++ {
			if row == col || aug[row][col] == 0 {
				continue
			}
			factor := aug[row][col]
			for j := range aug[row] {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	// Extract the right half.
	inv := New(n, n)
	for i := range inv {
		copy(inv[i], aug[i][n:])
	}
	return inv, nil
}
