// SPDX-License-Identifier: MIT

package band

import "math"

// VaspToTHz converts eigenvalues in eV/(Å²·AMU) to THz:
// √(eV/AMU)/Å/(2π)/10¹².
const VaspToTHz = 15.633302

// Frequency returns sign(e)·√|e|·factor. Negative eigenvalues (unstable
// modes) give negative frequencies; zero stays zero.
func Frequency(e, factor float64) float64 {
	if e == 0 {
		return 0
	}

	return math.Copysign(math.Sqrt(math.Abs(e)), e) * factor
}

// Frequencies applies Frequency element-wise into a new slice.
func Frequencies(eigenvalues []float64, factor float64) []float64 {
	out := make([]float64, len(eigenvalues))
	for i, e := range eigenvalues {
		out[i] = Frequency(e, factor)
	}

	return out
}
