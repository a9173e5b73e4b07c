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
	"math"
	"testing"
)

func TestDiscreteGammaRates(t *testing.T) {
	single := discreteGammaRates(0.5, 1)
	if len(single) != 1 || single[0] != 1 {
		t.Error("DiscreteGammaRates 1 failed")
	}
	rates := discreteGammaRates(0.5, 4)
	if len(rates) != 4 {
		t.Error("DiscreteGammaRates 2 failed")
	}
	var mean float64
	for _, r := range rates {
		mean += r
	}
	mean /= 4
	if math.Abs(mean-1) > 1e-9 {
		t.Error("DiscreteGammaRates 3 failed")
	}
	for i := 1; i < len(rates); i++ {
		if rates[i] <= rates[i-1] {
			t.Error("DiscreteGammaRates 4 failed")
		}
	}
	// a larger shape concentrates the rates around 1
	tight := discreteGammaRates(20, 4)
	if tight[3]-tight[0] >= rates[3]-rates[0] {
		t.Error("DiscreteGammaRates 5 failed")
	}
}
