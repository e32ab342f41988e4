package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	var unstable []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// CheckVector checks every element of a gonum vector.
func CheckVector(operation string, v mat.Vector, iteration int) error {
	values := make([]float64, v.Len())
	for i := range values {
		values[i] = v.AtVec(i)
	}
	return CheckNumericalStability(operation, values, iteration)
}

// CheckMatrix checks all values in a matrix for numerical instability.
func CheckMatrix(operation string, m mat.Matrix, iteration int) error {
	rows, cols := m.Dims()
	var unstable []float64
	for i := 0; i < rows && len(unstable) < 10; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				unstable = append(unstable, v)
				if len(unstable) >= 10 {
					break
				}
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}
