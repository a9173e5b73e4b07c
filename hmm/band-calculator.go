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

package hmm

import "math"

// Bracket carries the divergence time search interval for one sequence
// pair, the accuracy the scalar optimizer should reach, and the
// starting point, all derived from the rough distance estimate.
type Bracket struct {
	Lo, Hi   float64
	Accuracy float64
	Seed     float64
}

// CalculateBand derives the per-row column ranges for a pair of
// sequences of lengths m and n with rough distance estimate d. Rows
// follow the expected alignment diagonal j = i*n/m with a half-width
// that grows with the square root of the longer sequence and with d.
// The insertion band trails the match band by one column and the
// deletion band leads it by one, so that in-band cells find their
// predecessors in band. All ranges are clamped to [0, n].
func CalculateBand(m, n int, distance float64) (*Band, Bracket) {
	longer := m
	if n > longer {
		longer = n
	}
	slope := 0.0
	if m > 0 {
		slope = float64(n) / float64(m)
	}
	width := int(math.Ceil(math.Sqrt(float64(longer))*(1+2*math.Min(distance, 3)))) +
		int(math.Ceil(slope)) + 2

	band := newBand(m + 1)
	for i := 0; i <= m; i++ {
		center := int(math.Round(float64(i) * slope))
		band.match[i] = clampRange(center-width, center+width, n)
		band.insertion[i] = clampRange(center-width-1, center+width-1, n)
		band.deletion[i] = clampRange(center-width+1, center+width+1, n)
	}

	bracket := Bracket{
		Lo:       math.Max(1e-5, distance/5),
		Hi:       3*distance + 0.5,
		Accuracy: math.Max(1e-6, distance*1e-4),
	}
	bracket.Seed = math.Min(math.Max(distance, bracket.Lo), bracket.Hi)
	return band, bracket
}

func clampRange(lo, hi, max int) [2]int {
	if lo < 0 {
		lo = 0
	}
	if hi > max {
		hi = max
	}
	if lo > hi {
		return [2]int{0, -1}
	}
	return [2]int{lo, hi}
}
