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
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/eldist/hmm"
	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
	"github.com/exascience/eldist/sequence"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	maxTriplets = 3

	initialIndelProbability = 0.5
	initialIndelRate        = 0.02
	initialLegTime          = 0.05

	maxIndelProbability = 0.999999
	maxIndelRate        = 100.0
	minIndelRate        = 1e-6
)

// Options selects which global parameters the pre-pass estimates, and
// supplies the values for those it leaves alone.
type Options struct {
	EstimateSubstitution   bool
	EstimateIndel          bool
	EstimateAlpha          bool
	SubstitutionParameters []float64
	IndelProbability       float64
	IndelRate              float64
	Alpha                  float64
	Categories             int
}

// Estimates holds the outcome of the pre-pass: global model parameter
// values, and the guide distances that seed the per-pair banding.
// Parameters the options fixed are passed through unchanged.
type Estimates struct {
	SubstitutionParameters []float64
	IndelProbability       float64
	IndelRate              float64
	Alpha                  float64
	GuideDistances         []float64
}

// EstimateParameters runs the pre-pass over the sequence set: guide
// distances for all pairs, then a BFGS fit of the free parameters on
// up to three sampled triplets, scored by full-matrix Viterbi
// likelihoods of the two legs through each triplet's center sequence.
// The fit operates on a throwaway model built by newModel over the
// unambiguous symbol frequencies of the sampled triplets; callers
// apply the returned estimates to a model of their own. When the fit
// fails the initial heuristic values are kept.
func EstimateParameters(set *sequence.Set, newModel func(freqs []float64) *model.SubstitutionModel,
	options Options) *Estimates {
	guide := guideDistances(set)
	triplets := sampleTriplets(set, guide)

	freqs := make([]float64, set.Alphabet().Size())
	for _, triplet := range triplets {
		floats.Add(freqs, set.TripletFrequencies(triplet[0], triplet[1], triplet[2]))
	}
	floats.Scale(1/float64(len(triplets)), freqs)

	subst := newModel(freqs)
	subst.SetAlpha(options.Alpha)
	subst.SetCategories(options.Categories)
	if !options.EstimateSubstitution && len(options.SubstitutionParameters) > 0 {
		subst.SetParameters(options.SubstitutionParameters...)
	}
	// fixed indel parameters are validated here, whether or not a fit runs
	var fixedIndel *model.NegativeBinomialGapModel
	if !options.EstimateIndel {
		fixedIndel = model.NewNegativeBinomialGapModel(options.IndelProbability, options.IndelRate)
	}

	estimates := &Estimates{
		SubstitutionParameters: append([]float64(nil), subst.Parameters()...),
		IndelProbability:       options.IndelProbability,
		IndelRate:              options.IndelRate,
		Alpha:                  options.Alpha,
		GuideDistances:         guide,
	}
	if options.EstimateIndel {
		estimates.IndelProbability = initialIndelProbability
		estimates.IndelRate = initialIndelRate
	}

	// with a single rate category the gamma shape has no effect
	estimateAlpha := options.EstimateAlpha && options.Categories > 1
	free := options.EstimateIndel || estimateAlpha ||
		(options.EstimateSubstitution && subst.ParameterCount() > 0)
	if !free {
		return estimates
	}

	var legs [][2]int
	for _, triplet := range triplets {
		legs = append(legs, [2]int{triplet[0], triplet[1]}, [2]int{triplet[1], triplet[2]})
	}

	objective := &tripletObjective{
		set:         set,
		subst:       subst,
		indel:       fixedIndel,
		options:     options,
		legs:        legs,
		substOffset: -1,
		indelOffset: -1,
		alphaOffset: -1,
	}
	dims := 0
	if options.EstimateSubstitution && subst.ParameterCount() > 0 {
		objective.substOffset = dims
		dims += subst.ParameterCount()
	}
	if options.EstimateIndel {
		objective.indelOffset = dims
		dims += 2
	}
	if estimateAlpha {
		objective.alphaOffset = dims
		dims++
	}
	objective.timeOffset = dims
	dims += len(legs)

	x0 := make([]float64, dims)
	if objective.substOffset >= 0 {
		for i, p := range subst.Parameters() {
			x0[objective.substOffset+i] = math.Log(p)
		}
	}
	if options.EstimateIndel {
		x0[objective.indelOffset] = 0
		x0[objective.indelOffset+1] = math.Log(initialIndelRate)
	}
	if estimateAlpha {
		x0[objective.alphaOffset] = math.Log(options.Alpha)
	}
	for i, leg := range legs {
		x0[objective.timeOffset+i] = math.Log(math.Max(pairGuide(set, guide, leg[0], leg[1]), initialLegTime))
	}

	problem := optimize.Problem{
		Func: objective.value,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, objective.value, x, nil)
		},
	}
	settings := &optimize.Settings{MajorIterations: 150}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if err != nil {
		log.Printf("parameter estimation did not converge (%v), keeping heuristic values", err)
		return estimates
	}

	x := result.X
	if objective.substOffset >= 0 {
		params := make([]float64, subst.ParameterCount())
		for i := range params {
			params[i] = math.Exp(x[objective.substOffset+i])
		}
		estimates.SubstitutionParameters = params
	}
	if options.EstimateIndel {
		estimates.IndelProbability = math.Min(1/(1+math.Exp(-x[objective.indelOffset])), maxIndelProbability)
		estimates.IndelRate = math.Min(math.Max(math.Exp(x[objective.indelOffset+1]), minIndelRate), maxIndelRate)
	}
	if estimateAlpha {
		estimates.Alpha = math.Exp(x[objective.alphaOffset])
	}
	return estimates
}

// sampleTriplets picks up to maxTriplets triplets (a, center, b) of
// distinct sequences: pairs are visited from most to least similar,
// and an unused pair adopts the unused third sequence closest to both.
// Every chosen sequence is consumed, so the triplets never overlap.
func sampleTriplets(set *sequence.Set, guide []float64) [][3]int {
	type pairEntry struct {
		distance float64
		index    int
		i, j     int
	}
	entries := make([]pairEntry, 0, set.PairCount())
	for i := 0; i < set.Count(); i++ {
		for j := i + 1; j < set.Count(); j++ {
			index := set.PairIndex(i, j)
			entries = append(entries, pairEntry{guide[index], index, i, j})
		}
	}
	sort.Slice(entries, func(x, y int) bool {
		if entries[x].distance != entries[y].distance {
			return entries[x].distance < entries[y].distance
		}
		return entries[x].index < entries[y].index
	})

	used := bitset.New(uint(set.Count()))
	var triplets [][3]int
	for _, entry := range entries {
		if len(triplets) == maxTriplets {
			break
		}
		if used.Test(uint(entry.i)) || used.Test(uint(entry.j)) {
			continue
		}
		center := -1
		centerSum := math.Inf(1)
		for candidate := 0; candidate < set.Count(); candidate++ {
			if candidate == entry.i || candidate == entry.j || used.Test(uint(candidate)) {
				continue
			}
			sum := pairGuide(set, guide, entry.i, candidate) + pairGuide(set, guide, candidate, entry.j)
			if sum < centerSum {
				center = candidate
				centerSum = sum
			}
		}
		if center < 0 {
			continue
		}
		used.Set(uint(entry.i))
		used.Set(uint(entry.j))
		used.Set(uint(center))
		triplets = append(triplets, [3]int{entry.i, center, entry.j})
	}
	return triplets
}

type tripletObjective struct {
	set     *sequence.Set
	subst   *model.SubstitutionModel
	indel   *model.NegativeBinomialGapModel
	options Options
	legs    [][2]int

	substOffset, indelOffset, alphaOffset, timeOffset int
}

// value computes the negative summed leg likelihood for a transformed
// parameter vector: rates and times live on a log scale, the negative
// binomial probability on a logit scale. Parameter combinations the
// models reject score as hopeless rather than aborting the fit.
func (o *tripletObjective) value(x []float64) (value float64) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*internal.Error); ok {
				value = -internal.MinLikelihood
				return
			}
			panic(r)
		}
	}()

	subst := o.subst
	if o.substOffset >= 0 {
		params := make([]float64, subst.ParameterCount())
		for i := range params {
			params[i] = math.Exp(x[o.substOffset+i])
		}
		subst.SetParameters(params...)
	}
	if o.alphaOffset >= 0 {
		subst.SetAlpha(math.Exp(x[o.alphaOffset]))
	}
	indel := o.indel
	if o.options.EstimateIndel {
		probability := 1 / (1 + math.Exp(-x[o.indelOffset]))
		rate := math.Exp(x[o.indelOffset+1])
		indel = model.NewNegativeBinomialGapModel(probability, rate)
	}
	bound := indel.DivergenceBound()

	var total float64
	for legIndex, leg := range o.legs {
		t := math.Min(math.Exp(x[o.timeOffset+legIndex]), bound)
		pairHMM := hmm.New(o.set.Encoded(leg[0]), o.set.Encoded(leg[1]), subst, indel, hmm.Viterbi, nil)
		total += pairHMM.Run(t)
		pairHMM.Release()
	}
	if math.IsNaN(total) {
		return -internal.MinLikelihood
	}
	return -total
}
