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

	"github.com/exascience/eldist/internal"
)

// NegativeBinomialGapModel describes insertions and deletions: gaps
// open at rate lambda per site, and gap lengths follow a negative
// binomial with success probability p, so a gap continues with
// probability 1-p.
type NegativeBinomialGapModel struct {
	p    float64
	rate float64
}

// NewNegativeBinomialGapModel validates and wraps the two indel
// parameters.
func NewNegativeBinomialGapModel(p, rate float64) *NegativeBinomialGapModel {
	if p < 0 || p >= 1 {
		internal.RaiseConfig("negative binomial probability %v outside [0,1)", p)
	}
	if rate <= 0 {
		internal.RaiseConfig("indel rate %v must be positive", rate)
	}
	return &NegativeBinomialGapModel{p: p, rate: rate}
}

// Parameters returns the negative binomial probability and the indel
// rate.
func (m *NegativeBinomialGapModel) Parameters() (p, rate float64) {
	return m.p, m.rate
}

// DivergenceBound returns the largest divergence time for which the
// match state keeps positive probability mass, capped at 10.
func (m *NegativeBinomialGapModel) DivergenceBound() float64 {
	return math.Min(math.Ln2/m.rate, 10)
}

// Transitions holds the state transition probabilities of the pair
// HMM at one divergence time, in log space. Transitions between the
// two gap states have probability zero.
type Transitions struct {
	MM, MX, MY float64
	XM, XX     float64
	YM, YY     float64
}

// TransitionMatrix returns the row-stochastic (M,X,Y) transition
// matrix at divergence time t.
func (m *NegativeBinomialGapModel) TransitionMatrix(t float64) [3][3]float64 {
	g := -math.Expm1(-m.rate * t)
	mm := 1 - 2*g
	if mm < 0 {
		mm = 0
	}
	e := 1 - m.p
	return [3][3]float64{
		{mm, g, g},
		{1 - e, e, 0},
		{1 - e, 0, e},
	}
}

// LogTransitions returns the transition matrix at divergence time t
// in log space.
func (m *NegativeBinomialGapModel) LogTransitions(t float64) Transitions {
	rows := m.TransitionMatrix(t)
	if internal.PedanticMode {
		for i, row := range rows {
			if sum := row[0] + row[1] + row[2]; math.Abs(sum-1) > 1e-9 {
				internal.RaiseInternal("transition row %v sums to %v", i, sum)
			}
		}
	}
	return Transitions{
		MM: math.Log(rows[0][0]), MX: math.Log(rows[0][1]), MY: math.Log(rows[0][2]),
		XM: math.Log(rows[1][0]), XX: math.Log(rows[1][1]),
		YM: math.Log(rows[2][0]), YY: math.Log(rows[2][2]),
	}
}
