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
	"github.com/exascience/eldist/sequence"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultAlpha is the gamma shape used when no value is set or
	// estimated.
	DefaultAlpha = 0.5

	// DefaultCategories is the default number of discrete gamma rate
	// categories.
	DefaultCategories = 4

	minFrequency = 1e-6
)

// SubstitutionModel computes the transition probability matrices of a
// time-reversible substitution process, mixed over discrete gamma
// rate categories. The eigendecomposition of the scaled, symmetrized
// generator is cached; any parameter change invalidates it and the
// next use recomputes.
type SubstitutionModel struct {
	name              string
	alphabet          *sequence.Alphabet
	freqs             []float64
	logFreqs          []float64
	paramCount        int
	params            []float64
	exchangeabilities func(params []float64, k int) []float64
	alpha             float64
	categories        int

	valid       bool
	rates       []float64
	eigenValues []float64
	u           *mat.Dense
	uInverse    *mat.Dense
}

func newSubstitutionModel(name string, alphabet *sequence.Alphabet, freqs, params []float64,
	exchangeabilities func(params []float64, k int) []float64) *SubstitutionModel {
	k := alphabet.Size()
	if len(freqs) != k {
		internal.RaiseInternal("%v model needs %v frequencies, got %v", name, k, len(freqs))
	}
	floored := make([]float64, k)
	var sum float64
	for i, f := range freqs {
		if f < minFrequency {
			f = minFrequency
		}
		floored[i] = f
		sum += f
	}
	logFreqs := make([]float64, k)
	for i := range floored {
		floored[i] /= sum
		logFreqs[i] = math.Log(floored[i])
	}
	return &SubstitutionModel{
		name:              name,
		alphabet:          alphabet,
		freqs:             floored,
		logFreqs:          logFreqs,
		paramCount:        len(params),
		params:            params,
		exchangeabilities: exchangeabilities,
		alpha:             DefaultAlpha,
		categories:        DefaultCategories,
	}
}

// NewGTR returns a general time-reversible nucleotide model over the
// given observed frequencies, with all five free rates set to 1.
func NewGTR(freqs []float64) *SubstitutionModel {
	return newSubstitutionModel("GTR", sequence.Nucleotide, freqs, []float64{1, 1, 1, 1, 1},
		func(params []float64, k int) []float64 {
			// pair order (T,C) (T,A) (T,G) (C,A) (C,G); (A,G) is fixed to 1
			exch := make([]float64, k*k)
			next := 0
			for i := 0; i < k; i++ {
				for j := i + 1; j < k; j++ {
					rate := 1.0
					if next < len(params) {
						rate = params[next]
					}
					next++
					exch[i*k+j] = rate
					exch[j*k+i] = rate
				}
			}
			return exch
		})
}

// NewHKY85 returns an HKY85 nucleotide model over the given observed
// frequencies, with the transition/transversion ratio set to 1.
func NewHKY85(freqs []float64) *SubstitutionModel {
	return newSubstitutionModel("HKY85", sequence.Nucleotide, freqs, []float64{1},
		func(params []float64, k int) []float64 {
			kappa := params[0]
			exch := make([]float64, k*k)
			for i := 0; i < k; i++ {
				for j := 0; j < k; j++ {
					if i != j {
						exch[i*k+j] = 1
					}
				}
			}
			// transitions T<->C and A<->G
			exch[0*k+1], exch[1*k+0] = kappa, kappa
			exch[2*k+3], exch[3*k+2] = kappa, kappa
			return exch
		})
}

// Name returns the model name: GTR, HKY85, JTT, LG or WAG.
func (m *SubstitutionModel) Name() string {
	return m.name
}

// Alphabet returns the alphabet the model operates on.
func (m *SubstitutionModel) Alphabet() *sequence.Alphabet {
	return m.alphabet
}

// Equilibrium returns the equilibrium frequencies.
func (m *SubstitutionModel) Equilibrium() []float64 {
	return m.freqs
}

// ParameterCount returns the number of free rate parameters: 5 for
// GTR, 1 for HKY85, 0 for the amino-acid models.
func (m *SubstitutionModel) ParameterCount() int {
	return m.paramCount
}

// Parameters returns the current rate parameters.
func (m *SubstitutionModel) Parameters() []float64 {
	return m.params
}

// SetParameters replaces the free rate parameters. For the amino-acid
// models this is a no-op.
func (m *SubstitutionModel) SetParameters(params ...float64) {
	count := m.ParameterCount()
	if count == 0 {
		return
	}
	if len(params) != count {
		internal.RaiseConfig("%v model needs %v rate parameters, got %v", m.name, count, len(params))
	}
	for _, p := range params {
		if p <= 0 || math.IsNaN(p) {
			internal.RaiseConfig("%v rate parameter %v must be positive", m.name, p)
		}
	}
	m.params = append(m.params[:0:0], params...)
	m.valid = false
}

// Alpha returns the gamma shape parameter.
func (m *SubstitutionModel) Alpha() float64 {
	return m.alpha
}

// SetAlpha replaces the gamma shape parameter.
func (m *SubstitutionModel) SetAlpha(alpha float64) {
	if alpha <= 0 || math.IsNaN(alpha) {
		internal.RaiseConfig("gamma shape %v must be positive", alpha)
	}
	m.alpha = alpha
	m.valid = false
}

// Categories returns the number of discrete gamma rate categories.
func (m *SubstitutionModel) Categories() int {
	return m.categories
}

// SetCategories replaces the number of discrete gamma rate categories.
func (m *SubstitutionModel) SetCategories(categories int) {
	if categories < 1 {
		internal.RaiseConfig("gamma rate categories %v must be at least 1", categories)
	}
	m.categories = categories
	m.valid = false
}

// Rates returns the discrete gamma category rates.
func (m *SubstitutionModel) Rates() []float64 {
	m.Calculate()
	return m.rates
}

// Calculate builds the scaled generator from the current parameters,
// symmetrizes it with the equilibrium frequencies, and caches its
// eigendecomposition. It is idempotent until a parameter changes.
func (m *SubstitutionModel) Calculate() {
	if m.valid {
		return
	}
	k := m.alphabet.Size()
	m.rates = discreteGammaRates(m.alpha, m.categories)
	exch := m.exchangeabilities(m.params, k)

	// scale so that the expected substitution rate at equilibrium is 1
	var scale float64
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if i != j {
				scale += m.freqs[i] * exch[i*k+j] * m.freqs[j]
			}
		}
	}
	if scale <= 0 || math.IsNaN(scale) {
		internal.RaiseNumeric("degenerate %v rate matrix, scale %v", m.name, scale)
	}

	sqrtFreqs := make([]float64, k)
	for i, f := range m.freqs {
		sqrtFreqs[i] = math.Sqrt(f)
	}
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		var diagonal float64
		for j := 0; j < k; j++ {
			if j != i {
				diagonal += exch[i*k+j] * m.freqs[j]
			}
		}
		sym.SetSym(i, i, -diagonal/scale)
		for j := i + 1; j < k; j++ {
			sym.SetSym(i, j, exch[i*k+j]*sqrtFreqs[i]*sqrtFreqs[j]/scale)
		}
	}

	var eigen mat.EigenSym
	if !eigen.Factorize(sym, true) {
		internal.RaiseNumeric("eigendecomposition of the %v rate matrix failed", m.name)
	}
	m.eigenValues = eigen.Values(nil)
	var vectors mat.Dense
	eigen.VectorsTo(&vectors)
	m.u = mat.NewDense(k, k, nil)
	m.uInverse = mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			m.u.Set(i, j, vectors.At(i, j)/sqrtFreqs[i])
			m.uInverse.Set(i, j, vectors.At(j, i)*sqrtFreqs[j])
		}
	}
	m.valid = true
}

// ProbabilityMatrix returns P(t·r) for gamma rate category r. Row a
// holds the probabilities of symbol a turning into each symbol.
func (m *SubstitutionModel) ProbabilityMatrix(t float64, category int) *mat.Dense {
	m.Calculate()
	return m.expQ(t * m.rates[category])
}

func (m *SubstitutionModel) expQ(rt float64) *mat.Dense {
	k := m.alphabet.Size()
	scaled := mat.NewDense(k, k, nil)
	for j := 0; j < k; j++ {
		e := math.Exp(m.eigenValues[j] * rt)
		for i := 0; i < k; i++ {
			scaled.Set(i, j, m.u.At(i, j)*e)
		}
	}
	var p mat.Dense
	p.Mul(scaled, m.uInverse)
	for i := 0; i < k; i++ {
		row := p.RawRowView(i)
		var sum float64
		for j, v := range row {
			if v < 0 {
				// round-off from the eigendecomposition
				row[j] = 0
				v = 0
			}
			sum += v
		}
		if internal.PedanticMode && math.Abs(sum-1) > 1e-9 {
			internal.RaiseInternal("%v probability row %v sums to %v at time %v", m.name, i, sum, rt)
		}
	}
	return &p
}

// Emissions holds, for one divergence time, the log probabilities the
// pair HMM emits symbols with: jointly from the equilibrium ancestor
// in the match state, from the equilibrium alone in the gap states.
type Emissions struct {
	alphabet *sequence.Alphabet
	k        int
	match    []float64
	logMatch []float64
	freqs    []float64
	logFreqs []float64
}

// EmissionsAt computes the emission probabilities at divergence time
// t, mixed over the gamma rate categories with equal weights.
func (m *SubstitutionModel) EmissionsAt(t float64) *Emissions {
	m.Calculate()
	k := m.alphabet.Size()
	match := make([]float64, k*k)
	weight := 1 / float64(len(m.rates))
	for _, rate := range m.rates {
		p := m.expQ(t * rate)
		for anc := 0; anc < k; anc++ {
			row := p.RawRowView(anc)
			ancWeight := weight * m.freqs[anc]
			for a := 0; a < k; a++ {
				wa := ancWeight * row[a]
				if wa == 0 {
					continue
				}
				target := match[a*k : a*k+k]
				for b, pb := range row {
					target[b] += wa * pb
				}
			}
		}
	}
	logMatch := make([]float64, k*k)
	for i, v := range match {
		logMatch[i] = math.Log(v)
	}
	return &Emissions{
		alphabet: m.alphabet,
		k:        k,
		match:    match,
		logMatch: logMatch,
		freqs:    m.freqs,
		logFreqs: m.logFreqs,
	}
}

// LogMatch returns the log probability of jointly emitting the two
// symbols in the match state. Ambiguity codes average uniformly over
// their class members.
func (e *Emissions) LogMatch(a, b uint8) float64 {
	ma := e.alphabet.Members(a)
	mb := e.alphabet.Members(b)
	if len(ma) == 1 && len(mb) == 1 {
		return e.logMatch[int(ma[0])*e.k+int(mb[0])]
	}
	if len(ma) == 0 || len(mb) == 0 {
		internal.RaiseInternal("gap symbol in match emission")
	}
	var sum float64
	for _, x := range ma {
		for _, y := range mb {
			sum += e.match[int(x)*e.k+int(y)]
		}
	}
	return math.Log(sum / float64(len(ma)*len(mb)))
}

// LogGap returns the log probability of emitting the symbol against a
// gap. Ambiguity codes average uniformly over their class members.
func (e *Emissions) LogGap(a uint8) float64 {
	ma := e.alphabet.Members(a)
	if len(ma) == 1 {
		return e.logFreqs[ma[0]]
	}
	if len(ma) == 0 {
		internal.RaiseInternal("gap symbol in gap emission")
	}
	var sum float64
	for _, x := range ma {
		sum += e.freqs[x]
	}
	return math.Log(sum / float64(len(ma)))
}
