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

	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/sequence"
)

var testFreqs = []float64{0.22, 0.26, 0.31, 0.21}

func TestProbabilityMatrix(t *testing.T) {
	gtr := NewGTR(testFreqs)
	gtr.SetParameters(0.5, 1.2, 0.9, 2, 1.1)
	for category := 0; category < gtr.Categories(); category++ {
		identity := gtr.ProbabilityMatrix(0, category)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				expected := 0.0
				if i == j {
					expected = 1
				}
				if math.Abs(identity.At(i, j)-expected) > 1e-9 {
					t.Error("ProbabilityMatrix 1 failed")
				}
			}
		}
		for _, time := range []float64{0.01, 0.3, 1.5} {
			p := gtr.ProbabilityMatrix(time, category)
			for i := 0; i < 4; i++ {
				var sum float64
				for j := 0; j < 4; j++ {
					if p.At(i, j) < 0 {
						t.Error("ProbabilityMatrix 2 failed")
					}
					sum += p.At(i, j)
				}
				if math.Abs(sum-1) > 1e-9 {
					t.Error("ProbabilityMatrix 3 failed")
				}
			}
			// detailed balance of the time-reversible process
			pi := gtr.Equilibrium()
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					if math.Abs(pi[i]*p.At(i, j)-pi[j]*p.At(j, i)) > 1e-9 {
						t.Error("ProbabilityMatrix 4 failed")
					}
				}
			}
		}
	}
}

func TestParameterInvalidation(t *testing.T) {
	gtr := NewGTR(testFreqs)
	before := gtr.ProbabilityMatrix(0.2, 0).At(0, 1)
	gtr.SetParameters(10, 1, 1, 1, 1)
	after := gtr.ProbabilityMatrix(0.2, 0).At(0, 1)
	if after <= before {
		t.Error("ParameterInvalidation 1 failed")
	}
	err := catch(func() { gtr.SetParameters(1, 2) })
	if e, ok := err.(*internal.Error); !ok || e.Kind != internal.Config {
		t.Error("ParameterInvalidation 2 failed")
	}
	if err := catch(func() { gtr.SetParameters(1, -1, 1, 1, 1) }); err == nil {
		t.Error("ParameterInvalidation 3 failed")
	}
	if err := catch(func() { gtr.SetAlpha(0) }); err == nil {
		t.Error("ParameterInvalidation 4 failed")
	}
	if err := catch(func() { gtr.SetCategories(0) }); err == nil {
		t.Error("ParameterInvalidation 5 failed")
	}
}

func TestHKY85Transitions(t *testing.T) {
	hky := NewHKY85([]float64{0.25, 0.25, 0.25, 0.25})
	hky.SetAlpha(1)
	hky.SetCategories(1)
	hky.SetParameters(4)
	p := hky.ProbabilityMatrix(0.2, 0)
	// transitions T<->C and A<->G outweigh transversions under kappa>1
	if p.At(0, 1) <= p.At(0, 2) || p.At(0, 1) <= p.At(0, 3) {
		t.Error("HKY85Transitions 1 failed")
	}
	if p.At(2, 3) <= p.At(2, 0) || p.At(2, 3) <= p.At(2, 1) {
		t.Error("HKY85Transitions 2 failed")
	}
}

func TestAminoAcidModels(t *testing.T) {
	for _, data := range []struct {
		name  string
		exch  []float64
		freqs []float64
	}{
		{"JTT", jttExchangeabilities[:], jttFrequencies[:]},
		{"LG", lgExchangeabilities[:], lgFrequencies[:]},
		{"WAG", wagExchangeabilities[:], wagFrequencies[:]},
	} {
		if len(data.exch) != 190 || len(data.freqs) != 20 {
			t.Error("AminoAcidModels 1 failed for", data.name)
		}
		var sum float64
		for _, f := range data.freqs {
			if f <= 0 {
				t.Error("AminoAcidModels 2 failed for", data.name)
			}
			sum += f
		}
		if math.Abs(sum-1) > 1e-3 {
			t.Error("AminoAcidModels 3 failed for", data.name)
		}
		for _, e := range data.exch {
			if e <= 0 {
				t.Error("AminoAcidModels 4 failed for", data.name)
			}
		}
	}
	// spot checks against the published tables: the I<->V rate
	// dominates JTT and LG, D<->E dominates the JTT acidic block
	if jttExchangeabilities[189] != 16 || jttExchangeabilities[171+9] != 961 {
		t.Error("AminoAcidModels 5 failed")
	}
	if jttExchangeabilities[15+3] != 767 {
		t.Error("AminoAcidModels 6 failed")
	}
	if lgExchangeabilities[171+9] != 10.649107 {
		t.Error("AminoAcidModels 7 failed")
	}
	if wagExchangeabilities[0] != 0.551571 {
		t.Error("AminoAcidModels 8 failed")
	}

	jtt := NewJTT()
	if jtt.Alphabet() != sequence.Amino || jtt.ParameterCount() != 0 {
		t.Error("AminoAcidModels 9 failed")
	}
	// setting parameters on an amino-acid model is a no-op
	jtt.SetParameters(1, 2, 3)
	p := jtt.ProbabilityMatrix(0.5, 0)
	var sum float64
	for j := 0; j < 20; j++ {
		sum += p.At(7, j)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Error("AminoAcidModels 10 failed")
	}
}

func TestEmissions(t *testing.T) {
	gtr := NewGTR(testFreqs)
	gtr.SetParameters(0.5, 1.2, 0.9, 2, 1.1)
	emissions := gtr.EmissionsAt(0.3)

	var sum float64
	for a := uint8(0); a < 4; a++ {
		for b := uint8(0); b < 4; b++ {
			if emissions.LogMatch(a, b) != emissions.LogMatch(b, a) {
				t.Error("Emissions 1 failed")
			}
			sum += math.Exp(emissions.LogMatch(a, b))
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Error("Emissions 2 failed")
	}
	for a := uint8(0); a < 4; a++ {
		if math.Abs(math.Exp(emissions.LogGap(a))-gtr.Equilibrium()[a]) > 1e-12 {
			t.Error("Emissions 3 failed")
		}
	}
	// N averages its four members
	n := sequence.Nucleotide.SymbolIndex('N')
	var average float64
	for a := uint8(0); a < 4; a++ {
		average += math.Exp(emissions.LogMatch(a, 1))
	}
	average /= 4
	if math.Abs(math.Exp(emissions.LogMatch(n, 1))-average) > 1e-12 {
		t.Error("Emissions 4 failed")
	}
}

func TestAmbiguousAminoEmissions(t *testing.T) {
	jtt := NewJTT()
	emissions := jtt.EmissionsAt(0.4)
	b := sequence.Amino.SymbolIndex('B')
	d := sequence.Amino.SymbolIndex('D')
	n := sequence.Amino.SymbolIndex('N')
	for _, other := range []uint8{0, 7, 19} {
		average := (math.Exp(emissions.LogMatch(d, other)) + math.Exp(emissions.LogMatch(n, other))) / 2
		if math.Abs(math.Exp(emissions.LogMatch(b, other))-average) > 1e-12 {
			t.Error("AmbiguousAminoEmissions 1 failed")
		}
	}
	average := (math.Exp(emissions.LogGap(d)) + math.Exp(emissions.LogGap(n))) / 2
	if math.Abs(math.Exp(emissions.LogGap(b))-average) > 1e-12 {
		t.Error("AmbiguousAminoEmissions 2 failed")
	}
}
