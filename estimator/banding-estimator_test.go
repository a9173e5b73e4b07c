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
	"math"
	"testing"

	"github.com/exascience/eldist/fasta"
	"github.com/exascience/eldist/hmm"
	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
	"github.com/exascience/eldist/sequence"
)

func catch(f func()) (err error) {
	defer internal.RecoverTo(&err)
	f()
	return nil
}

func makePairwiseEstimator(records []fasta.Record, algorithm hmm.Algorithm) *PairwiseEstimator {
	set := sequence.NewSet(sequence.Nucleotide, records)
	subst := model.NewHKY85(set.ObservedFrequencies())
	subst.SetParameters(2)
	indel := model.NewNegativeBinomialGapModel(0.25, 0.05)
	return NewPairwiseEstimator(set, subst, indel, algorithm, guideDistances(set))
}

var identicalRecords = []fasta.Record{
	{Name: "A", Data: "ACGGTGCATTAGCCAATCGATCGGGCATTACGGAATCGGACTAGGCATCA"},
	{Name: "B", Data: "ACGGTGCATTAGCCAATCGATCGGGCATTACGGAATCGGACTAGGCATCA"},
	{Name: "C", Data: "ACGGTGCATTAGCCAATCGATCGGGCATTACGGAATCGGACTAGGCATCA"},
}

var divergedRecords = []fasta.Record{
	{Name: "A", Data: "ACGGTGCATTAGCCAATCGATCGGGCATTACGGAATCGGACTAGGCATCA"},
	{Name: "B", Data: "ACGGTCCATTAGCCAGTCGATCGGGCATTACGGATTCGGACTAGGCTTCA"},
	{Name: "C", Data: "AGGGTGCATAAGCCAATCGGTCGGGCATTACCGAATCGGACTCGGCATCA"},
}

func TestIdenticalSequencesDistance(t *testing.T) {
	estimator := makePairwiseEstimator(identicalRecords, hmm.Forward)
	for i := 0; i < 3; i++ {
		if estimator.Distance(i, i) != 0 {
			t.Error("identical distance 1 failed")
		}
		for j := i + 1; j < 3; j++ {
			if estimator.Distance(i, j) >= 1e-4 {
				t.Error("identical distance 2 failed")
			}
		}
	}
}

func TestDistanceCaching(t *testing.T) {
	estimator := makePairwiseEstimator(divergedRecords, hmm.Forward)
	first := estimator.Distance(0, 1)
	if estimator.Optimizations() != 1 {
		t.Error("distance caching 1 failed")
	}
	if estimator.Distance(1, 0) != first {
		t.Error("distance caching 2 failed")
	}
	if estimator.Distance(0, 1) != first {
		t.Error("distance caching 3 failed")
	}
	if estimator.Optimizations() != 1 {
		t.Error("distance caching 4 failed")
	}
}

func TestQueryOrderIndependence(t *testing.T) {
	forward := makePairwiseEstimator(divergedRecords, hmm.Forward)
	reversed := makePairwiseEstimator(divergedRecords, hmm.Forward)
	forward.Distance(0, 1)
	forward.Distance(0, 2)
	forward.Distance(1, 2)
	reversed.Distance(1, 2)
	reversed.Distance(0, 2)
	reversed.Distance(0, 1)
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			d := forward.Distance(i, j)
			if d != reversed.Distance(i, j) {
				t.Error("query order independence 1 failed")
			}
			if d <= 0 || math.IsNaN(d) {
				t.Error("query order independence 2 failed")
			}
		}
	}
}

func TestViterbiDistances(t *testing.T) {
	estimator := makePairwiseEstimator(divergedRecords, hmm.Viterbi)
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			d := estimator.Distance(i, j)
			if d <= 0 || math.IsNaN(d) || d > estimator.indel.DivergenceBound() {
				t.Error("Viterbi distance failed")
			}
		}
	}
}

func TestEstimateAll(t *testing.T) {
	estimator := makePairwiseEstimator(divergedRecords, hmm.Forward)
	estimator.EstimateAll()
	if estimator.Optimizations() != estimator.Set().PairCount() {
		t.Error("EstimateAll 1 failed")
	}
	estimator.EstimateAll()
	if estimator.Optimizations() != estimator.Set().PairCount() {
		t.Error("EstimateAll 2 failed")
	}
}

func TestPairwiseEstimatorValidation(t *testing.T) {
	set := sequence.NewSet(sequence.Nucleotide, identicalRecords)
	subst := model.NewHKY85(set.ObservedFrequencies())
	indel := model.NewNegativeBinomialGapModel(0.25, 0.05)
	err := catch(func() {
		NewPairwiseEstimator(set, subst, indel, hmm.Forward, []float64{1, 2})
	})
	if e, ok := err.(*internal.Error); !ok || e.Kind != internal.Internal {
		t.Error("estimator validation 1 failed")
	}
	estimator := makePairwiseEstimator(identicalRecords, hmm.Forward)
	err = catch(func() { estimator.Distance(0, 7) })
	if e, ok := err.(*internal.Error); !ok || e.Kind != internal.NotFound {
		t.Error("estimator validation 2 failed")
	}
	err = catch(func() { estimator.Distance(-1, 1) })
	if e, ok := err.(*internal.Error); !ok || e.Kind != internal.NotFound {
		t.Error("estimator validation 3 failed")
	}
}
