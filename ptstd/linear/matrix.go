package linear

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmpty  = errors.New("linear: empty matrix")
	ErrRagged = errors.New("linear: rows have different lengths")
	ErrShape  = errors.New("linear: dimension mismatch")
)

// Matrix builds a dense matrix from row literals:
//
//	m, err := linear.Matrix(
//		[]float64{1, 2},
//		[]float64{3, 4},
//	)
func Matrix(rows ...[]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRagged, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// MustMatrix is Matrix that panics on error. Meant for literals in code and tests.
func MustMatrix(rows ...[]float64) *mat.Dense {
	m, err := Matrix(rows...)
	if err != nil {
		panic(err)
	}
	return m
}

// MatMul returns a·rest[0]·rest[1]·… evaluated left to right. The operands
// are never modified; with no rest the result is a copy of a.
func MatMul(a mat.Matrix, rest ...mat.Matrix) (*mat.Dense, error) {
	if a == nil {
		return nil, ErrEmpty
	}
	acc := mat.DenseCopyOf(a)
	for i, b := range rest {
		if b == nil {
			return nil, fmt.Errorf("%w: operand %d is nil", ErrEmpty, i+1)
		}
		_, ac := acc.Dims()
		br, bc := b.Dims()
		if ac != br {
			ar, _ := acc.Dims()
			return nil, fmt.Errorf("%w: (%dx%d) x (%dx%d) at operand %d", ErrShape, ar, ac, br, bc, i+1)
		}
		var next mat.Dense
		next.Mul(acc, b)
		acc = &next
	}
	return acc, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m, nil
}

// Format renders m with aligned columns, one row per line.
func Format(m mat.Matrix) string {
	return fmt.Sprintf("%v", mat.Formatted(m, mat.Squeeze()))
}
