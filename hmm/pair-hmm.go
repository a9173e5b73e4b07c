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

import (
	"math"

	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
)

// Algorithm selects how scores of competing alignments combine: total
// probability over all alignments for Forward, the single best
// alignment for Viterbi.
type Algorithm int

const (
	Forward Algorithm = iota
	Viterbi
)

// PairHMM evaluates the log likelihood of a pair of encoded sequences
// under a substitution model and an indel model, as a function of the
// divergence time. The three dynamic programming matrices are pooled;
// a nil band evaluates them in full.
type PairHMM struct {
	first, second []uint8
	subst         *model.SubstitutionModel
	indel         *model.NegativeBinomialGapModel
	algorithm     Algorithm
	band          *Band
	matrices      *dpMatrices
}

// New acquires dynamic programming matrices for the given pair of
// encoded sequences. Call Release when done with the pair.
func New(first, second []uint8, subst *model.SubstitutionModel, indel *model.NegativeBinomialGapModel,
	algorithm Algorithm, band *Band) *PairHMM {
	if band != nil && band.Rows() != len(first)+1 {
		internal.RaiseInternal("band with %v rows for a sequence of length %v", band.Rows(), len(first))
	}
	hmm := &PairHMM{
		first:     first,
		second:    second,
		subst:     subst,
		indel:     indel,
		algorithm: algorithm,
		band:      band,
		matrices:  getDPMatrices(),
	}
	hmm.matrices.ensureSize(len(first)+1, len(second)+1)
	return hmm
}

// Release returns the dynamic programming matrices to the pool.
func (hmm *PairHMM) Release() {
	putDPMatrices(hmm.matrices)
	hmm.matrices = nil
}

func (hmm *PairHMM) ranges(row int) (match, insertion, deletion [2]int) {
	if hmm.band == nil {
		full := [2]int{0, len(hmm.second)}
		return full, full, full
	}
	return hmm.band.match[row], hmm.band.insertion[row], hmm.band.deletion[row]
}

// Run computes the log likelihood at divergence time t. Only cells
// inside the band are evaluated; repeated runs with different times
// reuse the matrices, since the band does not change.
func (hmm *PairHMM) Run(t float64) float64 {
	combine2 := internal.LogSum
	combine3 := internal.LogSum3
	if hmm.algorithm == Viterbi {
		combine2 = math.Max
		combine3 = internal.Max3
	}
	tr := hmm.indel.LogTransitions(t)
	emissions := hmm.subst.EmissionsAt(t)
	m, n := len(hmm.first), len(hmm.second)

	// row 0: the corner holds the initial state distribution, and only
	// the deletion state proceeds along the row
	matchRow := hmm.matrices.match.rowView(0)
	insertionRow := hmm.matrices.insertion.rowView(0)
	deletionRow := hmm.matrices.deletion.rowView(0)
	matchRow[0] = tr.MM
	insertionRow[0] = tr.MX
	deletionRow[0] = tr.MY
	_, _, deletionRange := hmm.ranges(0)
	for j := maxInt(deletionRange[0], 1); j <= deletionRange[1]; j++ {
		deletionRow[j] = emissions.LogGap(hmm.second[j-1]) +
			combine2(tr.MY+matchRow[j-1], tr.YY+deletionRow[j-1])
	}

	for i := 1; i <= m; i++ {
		matchPrev, insertionPrev, deletionPrev := matchRow, insertionRow, deletionRow
		// note: it's important to get the row views for performance
		matchRow = hmm.matrices.match.rowView(i)
		insertionRow = hmm.matrices.insertion.rowView(i)
		deletionRow = hmm.matrices.deletion.rowView(i)
		matchRange, insertionRange, deletionRange := hmm.ranges(i)

		x := hmm.first[i-1]
		logGap := emissions.LogGap(x)
		for j := insertionRange[0]; j <= insertionRange[1]; j++ {
			insertionRow[j] = logGap +
				combine2(tr.MX+matchPrev[j], tr.XX+insertionPrev[j])
		}
		for j := maxInt(matchRange[0], 1); j <= matchRange[1]; j++ {
			matchRow[j] = emissions.LogMatch(x, hmm.second[j-1]) +
				combine3(tr.MM+matchPrev[j-1], tr.XM+insertionPrev[j-1], tr.YM+deletionPrev[j-1])
		}
		for j := maxInt(deletionRange[0], 1); j <= deletionRange[1]; j++ {
			deletionRow[j] = emissions.LogGap(hmm.second[j-1]) +
				combine2(tr.MY+matchRow[j-1], tr.YY+deletionRow[j-1])
		}
	}

	return combine3(matchRow[n], insertionRow[n], deletionRow[n])
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}
