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
	"sync"

	"github.com/exascience/eldist/internal"
	"github.com/exascience/pargo/parallel"
)

type float64Matrix struct {
	cols  int
	array []float64
}

// ensureSize resizes the matrix and seeds every cell with the minimum
// likelihood, so that cells outside the band read as (near) zero
// probability.
func (m *float64Matrix) ensureSize(rows, cols int) {
	m.cols = cols
	totalSize := rows * cols
	if totalSize <= cap(m.array) {
		m.array = m.array[:totalSize]
	} else {
		m.array = make([]float64, totalSize)
	}
	for i := range m.array {
		m.array[i] = internal.MinLikelihood
	}
}

func (m *float64Matrix) rowView(row int) []float64 {
	offset := row * m.cols
	return m.array[offset : offset+m.cols]
}

type dpMatrices struct {
	match, insertion, deletion float64Matrix
}

var dpMatricesPool = sync.Pool{New: func() interface{} { return new(dpMatrices) }}

func getDPMatrices() *dpMatrices {
	return dpMatricesPool.Get().(*dpMatrices)
}

func putDPMatrices(p *dpMatrices) {
	dpMatricesPool.Put(p)
}

func (p *dpMatrices) ensureSize(rows, cols int) {
	parallel.Do(
		func() { p.match.ensureSize(rows, cols) },
		func() { p.insertion.ensureSize(rows, cols) },
		func() { p.deletion.ensureSize(rows, cols) },
	)
}
