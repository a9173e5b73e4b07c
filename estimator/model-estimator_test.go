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

package estimator

import (
	"strconv"
	"testing"

	"github.com/exascience/eldist/fasta"
	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
	"github.com/exascience/eldist/sequence"
)

func makeUniformSet(count int) *sequence.Set {
	records := make([]fasta.Record, count)
	for i := range records {
		records[i] = fasta.Record{Name: "S" + strconv.Itoa(i), Data: "ACGTACGTACGT"}
	}
	return sequence.NewSet(sequence.Nucleotide, records)
}

func TestSampleTriplets(t *testing.T) {
	set := makeUniformSet(6)
	guide := make([]float64, set.PairCount())
	for i := range guide {
		guide[i] = 1
	}
	guide[set.PairIndex(0, 1)] = 0.1
	guide[set.PairIndex(0, 2)] = 0.2
	guide[set.PairIndex(1, 2)] = 0.2
	guide[set.PairIndex(3, 4)] = 0.3
	guide[set.PairIndex(3, 5)] = 0.4
	guide[set.PairIndex(4, 5)] = 0.4
	triplets := sampleTriplets(set, guide)
	if len(triplets) != 2 {
		t.Fatal("sampleTriplets 1 failed")
	}
	if triplets[0] != [3]int{0, 2, 1} {
		t.Error("sampleTriplets 2 failed")
	}
	if triplets[1] != [3]int{3, 5, 4} {
		t.Error("sampleTriplets 3 failed")
	}
}

func TestSampleTripletsTieBreaks(t *testing.T) {
	set := makeUniformSet(11)
	guide := make([]float64, set.PairCount())
	triplets := sampleTriplets(set, guide)
	if len(triplets) != maxTriplets {
		t.Fatal("sampleTriplets tie break 1 failed")
	}
	expected := [][3]int{{0, 2, 1}, {3, 5, 4}, {6, 8, 7}}
	for i, triplet := range triplets {
		if triplet != expected[i] {
			t.Error("sampleTriplets tie break 2 failed")
		}
	}
	repeated := sampleTriplets(set, guide)
	for i, triplet := range repeated {
		if triplet != triplets[i] {
			t.Error("sampleTriplets tie break 3 failed")
		}
	}
}

func TestSampleTripletsConsumesSequences(t *testing.T) {
	// each triplet burns three sequences, leftovers yield none
	for count, expected := range map[int]int{3: 1, 4: 1, 5: 1, 6: 2, 8: 2, 9: 3} {
		set := makeUniformSet(count)
		if len(sampleTriplets(set, guideDistances(set))) != expected {
			t.Errorf("sampleTriplets with %v sequences failed", count)
		}
	}
}

func TestEstimateParametersFixed(t *testing.T) {
	set := makeUniformSet(3)
	estimates := EstimateParameters(set, model.NewHKY85, Options{
		SubstitutionParameters: []float64{2},
		IndelProbability:       0.25,
		IndelRate:              0.05,
		Alpha:                  0.5,
		Categories:             1,
	})
	if len(estimates.SubstitutionParameters) != 1 || estimates.SubstitutionParameters[0] != 2 {
		t.Error("fixed EstimateParameters 1 failed")
	}
	if estimates.IndelProbability != 0.25 || estimates.IndelRate != 0.05 {
		t.Error("fixed EstimateParameters 2 failed")
	}
	if estimates.Alpha != 0.5 {
		t.Error("fixed EstimateParameters 3 failed")
	}
	if len(estimates.GuideDistances) != set.PairCount() {
		t.Error("fixed EstimateParameters 4 failed")
	}
}

func TestEstimateParametersValidatesFixedIndel(t *testing.T) {
	// inadmissible fixed indel parameters fail even when nothing is fitted
	set := makeUniformSet(3)
	for _, bad := range [][2]float64{{1.5, 0.05}, {0.25, -1}} {
		err := catch(func() {
			EstimateParameters(set, model.NewHKY85, Options{
				SubstitutionParameters: []float64{2},
				IndelProbability:       bad[0],
				IndelRate:              bad[1],
				Alpha:                  0.5,
				Categories:             1,
			})
		})
		if e, ok := err.(*internal.Error); !ok || e.Kind != internal.Config {
			t.Error("fixed indel validation failed for", bad)
		}
	}
}

func TestEstimateParametersAlphaGate(t *testing.T) {
	// a single rate category leaves no alpha to estimate
	set := makeUniformSet(3)
	estimates := EstimateParameters(set, model.NewHKY85, Options{
		EstimateAlpha:          true,
		SubstitutionParameters: []float64{2},
		IndelProbability:       0.25,
		IndelRate:              0.05,
		Alpha:                  0.5,
		Categories:             1,
	})
	if estimates.Alpha != 0.5 {
		t.Error("alpha gate failed")
	}
}

func TestEstimateParametersIndel(t *testing.T) {
	set := sequence.NewSet(sequence.Nucleotide, []fasta.Record{
		{Name: "A", Data: "ACGTACGTACGTACGTACGT"},
		{Name: "B", Data: "ACGTACTTACGTACGTACGT"},
		{Name: "C", Data: "ACGTACGTACGTTCGTACGT"},
	})
	estimates := EstimateParameters(set, model.NewHKY85, Options{
		EstimateIndel:          true,
		SubstitutionParameters: []float64{2},
		Alpha:                  0.5,
		Categories:             1,
	})
	if estimates.IndelProbability <= 0 || estimates.IndelProbability > maxIndelProbability {
		t.Error("indel EstimateParameters 1 failed")
	}
	if estimates.IndelRate < minIndelRate || estimates.IndelRate > maxIndelRate {
		t.Error("indel EstimateParameters 2 failed")
	}
	if len(estimates.SubstitutionParameters) != 1 || estimates.SubstitutionParameters[0] != 2 {
		t.Error("indel EstimateParameters 3 failed")
	}
	if estimates.Alpha != 0.5 {
		t.Error("indel EstimateParameters 4 failed")
	}
}

func TestEstimateParametersFull(t *testing.T) {
	set := sequence.NewSet(sequence.Nucleotide, []fasta.Record{
		{Name: "A", Data: "ACGTACGTACGTACGTACGTACGTACGTAC"},
		{Name: "B", Data: "ACGTACTTACGTACGTACGAACGTACGTAC"},
		{Name: "C", Data: "ACGTACGTACCTTCGTACGTACGTAGGTAC"},
	})
	estimates := EstimateParameters(set, model.NewGTR, Options{
		EstimateSubstitution: true,
		EstimateIndel:        true,
		EstimateAlpha:        true,
		Alpha:                0.5,
		Categories:           4,
	})
	if len(estimates.SubstitutionParameters) != 5 {
		t.Fatal("full EstimateParameters 1 failed")
	}
	for _, p := range estimates.SubstitutionParameters {
		if p <= 0 {
			t.Error("full EstimateParameters 2 failed")
		}
	}
	if estimates.IndelProbability <= 0 || estimates.IndelProbability > maxIndelProbability {
		t.Error("full EstimateParameters 3 failed")
	}
	if estimates.IndelRate < minIndelRate || estimates.IndelRate > maxIndelRate {
		t.Error("full EstimateParameters 4 failed")
	}
	if estimates.Alpha <= 0 {
		t.Error("full EstimateParameters 5 failed")
	}
}
