// eldist: a tool for estimating evolutionary distances between unaligned sequences.
// Copyright (c) 2019-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/eldist/blob/master/LICENSE.txt>.

package model

import (
	"github.com/exascience/eldist/sequence"
)

// NewJTT returns the Jones-Taylor-Thornton 1992 amino-acid model.
func NewJTT() *SubstitutionModel {
	return newAminoAcidModel("JTT", jttExchangeabilities[:], jttFrequencies[:])
}

// NewLG returns the Le-Gascuel 2008 amino-acid model.
func NewLG() *SubstitutionModel {
	return newAminoAcidModel("LG", lgExchangeabilities[:], lgFrequencies[:])
}

// NewWAG returns the Whelan-Goldman 2001 amino-acid model.
func NewWAG() *SubstitutionModel {
	return newAminoAcidModel("WAG", wagExchangeabilities[:], wagFrequencies[:])
}

func newAminoAcidModel(name string, lower, freqs []float64) *SubstitutionModel {
	table := expandLowerTriangle(20, lower)
	return newSubstitutionModel(name, sequence.Amino, freqs, nil,
		func(params []float64, k int) []float64 {
			return table
		})
}

// expandLowerTriangle turns the row-wise lower triangle of a symmetric
// k×k matrix with zero diagonal into the full matrix.
func expandLowerTriangle(k int, lower []float64) []float64 {
	table := make([]float64, k*k)
	next := 0
	for i := 1; i < k; i++ {
		for j := 0; j < i; j++ {
			table[i*k+j] = lower[next]
			table[j*k+i] = lower[next]
			next++
		}
	}
	return table
}
