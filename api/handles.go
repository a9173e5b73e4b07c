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

// Package api is a handle-based facade over the eldist packages for
// embedding in other programs. Operations never panic: failures leave
// a message in the handle's last-error slot and return nil, an empty
// string, or NaN, and every successful operation clears the slot.
package api

import (
	"fmt"
	"math"
	"strings"

	"github.com/exascience/eldist/estimator"
	"github.com/exascience/eldist/fasta"
	"github.com/exascience/eldist/hmm"
	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
	"github.com/exascience/eldist/sequence"
)

// BandingEstimator collects input sequences and model configuration
// for one distance estimation run. Parameters left unset are estimated
// from the input when a model is executed.
type BandingEstimator struct {
	records          []fasta.Record
	indelProbability float64
	indelRate        float64
	estimateIndel    bool
	alpha            float64
	estimateAlpha    bool
	categories       int
	lastError        error
}

// NewBandingEstimator returns a fresh handle with default
// configuration: indel parameters and gamma shape are estimated, with
// the default number of gamma rate categories.
func NewBandingEstimator() *BandingEstimator {
	return &BandingEstimator{
		estimateIndel: true,
		alpha:         model.DefaultAlpha,
		estimateAlpha: true,
		categories:    model.DefaultCategories,
	}
}

// LastError returns the message of the most recent failed operation,
// or the empty string when the last operation succeeded.
func (e *BandingEstimator) LastError() string {
	if e.lastError == nil {
		return ""
	}
	return e.lastError.Error()
}

// capture runs f, moves a raised error into the last-error slot, and
// reports whether f succeeded.
func (e *BandingEstimator) capture(f func()) bool {
	var err error
	func() {
		defer internal.RecoverTo(&err)
		f()
	}()
	e.lastError = err
	return err == nil
}

// SetInput takes FASTA input from a string. It reports whether the
// input parsed.
func (e *BandingEstimator) SetInput(text string) bool {
	return e.capture(func() {
		e.records = fasta.ReadString(text)
	})
}

// SetInputFile takes FASTA input from a file, which may be
// gzip-compressed. It reports whether the input parsed.
func (e *BandingEstimator) SetInputFile(path string) bool {
	return e.capture(func() {
		e.records = fasta.ReadFile(path)
	})
}

// SetIndelParameters fixes the negative binomial probability and the
// indel rate instead of estimating them.
func (e *BandingEstimator) SetIndelParameters(probability, rate float64) {
	e.indelProbability = probability
	e.indelRate = rate
	e.estimateIndel = false
	e.lastError = nil
}

// UnsetIndelParameters reverts to estimating the indel parameters.
func (e *BandingEstimator) UnsetIndelParameters() {
	e.indelProbability = 0
	e.indelRate = 0
	e.estimateIndel = true
	e.lastError = nil
}

// SetAlpha fixes the gamma shape parameter instead of estimating it.
func (e *BandingEstimator) SetAlpha(alpha float64) {
	e.alpha = alpha
	e.estimateAlpha = false
	e.lastError = nil
}

// UnsetAlpha reverts to estimating the gamma shape parameter.
func (e *BandingEstimator) UnsetAlpha() {
	e.alpha = model.DefaultAlpha
	e.estimateAlpha = true
	e.lastError = nil
}

// SetCategories sets the number of discrete gamma rate categories.
func (e *BandingEstimator) SetCategories(categories int) {
	e.categories = categories
	e.lastError = nil
}

// UnsetCategories reverts to the default number of discrete gamma
// rate categories.
func (e *BandingEstimator) UnsetCategories() {
	e.categories = model.DefaultCategories
	e.lastError = nil
}

// ExecuteGTRModel estimates pairwise distances under the GTR model
// with the five given exchangeability rates.
func (e *BandingEstimator) ExecuteGTRModel(a, b, c, d, g float64) *Sequences {
	return e.execute(sequence.Nucleotide, model.NewGTR, false, []float64{a, b, c, d, g})
}

// ExecuteGTRModelEstimated estimates pairwise distances under the GTR
// model with its exchangeability rates estimated from the input.
func (e *BandingEstimator) ExecuteGTRModelEstimated() *Sequences {
	return e.execute(sequence.Nucleotide, model.NewGTR, true, nil)
}

// ExecuteHKY85Model estimates pairwise distances under the HKY85
// model with the given transition/transversion ratio.
func (e *BandingEstimator) ExecuteHKY85Model(kappa float64) *Sequences {
	return e.execute(sequence.Nucleotide, model.NewHKY85, false, []float64{kappa})
}

// ExecuteHKY85ModelEstimated estimates pairwise distances under the
// HKY85 model with its transition/transversion ratio estimated from
// the input.
func (e *BandingEstimator) ExecuteHKY85ModelEstimated() *Sequences {
	return e.execute(sequence.Nucleotide, model.NewHKY85, true, nil)
}

// ExecuteJTTModel estimates pairwise distances under the JTT
// amino-acid model.
func (e *BandingEstimator) ExecuteJTTModel() *Sequences {
	return e.execute(sequence.Amino, aminoModel(model.NewJTT), true, nil)
}

// ExecuteLGModel estimates pairwise distances under the LG amino-acid
// model.
func (e *BandingEstimator) ExecuteLGModel() *Sequences {
	return e.execute(sequence.Amino, aminoModel(model.NewLG), true, nil)
}

// ExecuteWAGModel estimates pairwise distances under the WAG
// amino-acid model.
func (e *BandingEstimator) ExecuteWAGModel() *Sequences {
	return e.execute(sequence.Amino, aminoModel(model.NewWAG), true, nil)
}

// ExecuteModel estimates pairwise distances under the named model,
// one of GTR, HKY85, JTT, LG, or WAG, with all model parameters
// estimated from the input.
func (e *BandingEstimator) ExecuteModel(name string) *Sequences {
	switch strings.ToUpper(name) {
	case "GTR":
		return e.ExecuteGTRModelEstimated()
	case "HKY85":
		return e.ExecuteHKY85ModelEstimated()
	case "JTT":
		return e.ExecuteJTTModel()
	case "LG":
		return e.ExecuteLGModel()
	case "WAG":
		return e.ExecuteWAGModel()
	}
	e.lastError = &internal.Error{
		Kind:    internal.Config,
		Message: fmt.Sprintf("unknown substitution model %v", name),
	}
	return nil
}

// aminoModel adapts the parameterless amino-acid model constructors,
// which carry their own equilibrium frequencies.
func aminoModel(construct func() *model.SubstitutionModel) func([]float64) *model.SubstitutionModel {
	return func([]float64) *model.SubstitutionModel {
		return construct()
	}
}

func (e *BandingEstimator) execute(alphabet *sequence.Alphabet,
	newModel func([]float64) *model.SubstitutionModel,
	estimateSubstitution bool, params []float64) *Sequences {
	var result *Sequences
	if !e.capture(func() {
		if len(e.records) == 0 {
			internal.RaiseInput("no input sequences, call SetInput or SetInputFile first")
		}
		set := sequence.NewSet(alphabet, e.records)
		estimates := estimator.EstimateParameters(set, newModel, estimator.Options{
			EstimateSubstitution:   estimateSubstitution,
			EstimateIndel:          e.estimateIndel,
			EstimateAlpha:          e.estimateAlpha,
			SubstitutionParameters: params,
			IndelProbability:       e.indelProbability,
			IndelRate:              e.indelRate,
			Alpha:                  e.alpha,
			Categories:             e.categories,
		})
		subst := newModel(set.ObservedFrequencies())
		if len(estimates.SubstitutionParameters) > 0 {
			subst.SetParameters(estimates.SubstitutionParameters...)
		}
		subst.SetAlpha(estimates.Alpha)
		subst.SetCategories(e.categories)
		subst.Calculate()
		indel := model.NewNegativeBinomialGapModel(estimates.IndelProbability, estimates.IndelRate)
		pairwise := estimator.NewPairwiseEstimator(set, subst, indel, hmm.Forward, estimates.GuideDistances)
		result = &Sequences{estimator: e, pairwise: pairwise}
	}) {
		return nil
	}
	return result
}

// Sequences gives access to the sequences and pairwise distances of
// one executed model. It shares the last-error slot of the handle it
// was created from.
type Sequences struct {
	estimator *BandingEstimator
	pairwise  *estimator.PairwiseEstimator
}

// Count returns the number of sequences.
func (s *Sequences) Count() int {
	s.estimator.lastError = nil
	return s.pairwise.Set().Count()
}

// Name returns the name of a sequence, or the empty string for an
// unknown identifier.
func (s *Sequences) Name(id int) string {
	var name string
	if !s.estimator.capture(func() {
		name = s.pairwise.Set().Name(id)
	}) {
		return ""
	}
	return name
}

// Sequence returns the raw string of a sequence, or the empty string
// for an unknown identifier.
func (s *Sequences) Sequence(id int) string {
	var raw string
	if !s.estimator.capture(func() {
		raw = s.pairwise.Set().Raw(id)
	}) {
		return ""
	}
	return raw
}

// SequenceByName returns the raw string of a named sequence, or the
// empty string for an unknown name.
func (s *Sequences) SequenceByName(name string) string {
	var raw string
	if !s.estimator.capture(func() {
		set := s.pairwise.Set()
		raw = set.Raw(set.ID(name))
	}) {
		return ""
	}
	return raw
}

// Distance returns the estimated evolutionary distance between two
// sequences, or NaN for unknown identifiers.
func (s *Sequences) Distance(id1, id2 int) float64 {
	var distance float64
	if !s.estimator.capture(func() {
		distance = s.pairwise.Distance(id1, id2)
	}) {
		return math.NaN()
	}
	return distance
}

// DistanceByNames returns the estimated evolutionary distance between
// two named sequences, or NaN for unknown names.
func (s *Sequences) DistanceByNames(name1, name2 string) float64 {
	var distance float64
	if !s.estimator.capture(func() {
		set := s.pairwise.Set()
		distance = s.pairwise.Distance(set.ID(name1), set.ID(name2))
	}) {
		return math.NaN()
	}
	return distance
}
