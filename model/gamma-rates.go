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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// discreteGammaRates returns the medians of the R equal-probability
// slices of a Gamma(alpha, alpha) distribution, normalized so that
// their mean is 1. For R=1 the single rate is 1.
func discreteGammaRates(alpha float64, categories int) []float64 {
	if categories == 1 {
		return []float64{1}
	}
	gamma := distuv.Gamma{Alpha: alpha, Beta: alpha}
	rates := make([]float64, categories)
	for i := range rates {
		rates[i] = gamma.Quantile((2*float64(i) + 1) / (2 * float64(categories)))
	}
	floats.Scale(float64(categories)/floats.Sum(rates), rates)
	return rates
}
