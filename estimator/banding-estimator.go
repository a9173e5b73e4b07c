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
	"log"
	"math"

	"github.com/exascience/eldist/hmm"
	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
	"github.com/exascience/eldist/sequence"
)

// PairwiseEstimator optimizes divergence times pair by pair: for each
// pair it derives a band and search bracket from the guide distance,
// then minimizes the banded negative log likelihood over the time with
// Brent's method. Optimized times are cached, so every pair is
// evaluated at most once.
type PairwiseEstimator struct {
	set           *sequence.Set
	subst         *model.SubstitutionModel
	indel         *model.NegativeBinomialGapModel
	algorithm     hmm.Algorithm
	guide         []float64
	times         []float64
	optimizations int
}

// NewPairwiseEstimator wires a fully calculated substitution model, an
// indel model, and the guide distances of the pre-pass to a sequence
// set. The guide slice must hold one distance per sequence pair.
func NewPairwiseEstimator(set *sequence.Set, subst *model.SubstitutionModel,
	indel *model.NegativeBinomialGapModel, algorithm hmm.Algorithm, guide []float64) *PairwiseEstimator {
	if len(guide) != set.PairCount() {
		internal.RaiseInternal("%v guide distances for %v sequence pairs", len(guide), set.PairCount())
	}
	times := make([]float64, set.PairCount())
	for i := range times {
		times[i] = math.NaN()
	}
	return &PairwiseEstimator{
		set:       set,
		subst:     subst,
		indel:     indel,
		algorithm: algorithm,
		guide:     guide,
		times:     times,
	}
}

// Set returns the sequence set the estimator operates on.
func (e *PairwiseEstimator) Set() *sequence.Set {
	return e.set
}

// Optimizations returns how many pairs have been optimized so far. The
// cache keeps this at one per distinct pair, however often distances
// are queried.
func (e *PairwiseEstimator) Optimizations() int {
	return e.optimizations
}

// Distance returns the optimized divergence time between two
// sequences, computing and caching it on first use. The distance is
// symmetric, and zero between a sequence and itself. Unknown ids panic
// with a not-found error.
func (e *PairwiseEstimator) Distance(id1, id2 int) float64 {
	e.set.Name(id1)
	e.set.Name(id2)
	if id1 == id2 {
		return 0
	}
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	index := e.set.PairIndex(id1, id2)
	if !math.IsNaN(e.times[index]) {
		return e.times[index]
	}

	first, second := e.set.Encoded(id1), e.set.Encoded(id2)
	band, bracket := hmm.CalculateBand(len(first), len(second), e.guide[index])
	pairHMM := hmm.New(first, second, e.subst, e.indel, e.algorithm, band)
	defer pairHMM.Release()

	hi := math.Min(bracket.Hi, e.indel.DivergenceBound())
	lo := bracket.Lo
	if lo >= hi {
		lo = hi / 5
	}
	seed := math.Min(math.Max(bracket.Seed, lo), hi)
	t, negative := minimizeScalar(func(t float64) float64 {
		return -pairHMM.Run(t)
	}, lo, hi, seed, bracket.Accuracy)
	if -negative <= internal.MinLikelihood/2 {
		log.Printf("no alignment path inside the band for %v and %v, keeping divergence time %v",
			e.set.Name(id1), e.set.Name(id2), t)
	}
	e.times[index] = t
	e.optimizations++
	return t
}

// EstimateAll optimizes every pair, in pair index order.
func (e *PairwiseEstimator) EstimateAll() {
	for i := 0; i < e.set.Count(); i++ {
		for j := i + 1; j < e.set.Count(); j++ {
			e.Distance(i, j)
		}
	}
}
