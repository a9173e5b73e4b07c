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

// Band restricts the dynamic programming to per-row inclusive column
// ranges, one range per matrix. A range with lo > hi marks an empty
// row. Cells outside the ranges are never written and read as the
// minimum likelihood.
type Band struct {
	match, insertion, deletion [][2]int
}

func newBand(rows int) *Band {
	band := &Band{
		match:     make([][2]int, rows),
		insertion: make([][2]int, rows),
		deletion:  make([][2]int, rows),
	}
	for i := 0; i < rows; i++ {
		band.match[i] = [2]int{0, -1}
		band.insertion[i] = [2]int{0, -1}
		band.deletion[i] = [2]int{0, -1}
	}
	return band
}

// Rows returns the number of rows the band covers.
func (band *Band) Rows() int {
	return len(band.match)
}

// MatchRange returns the inclusive column range of the match matrix at
// the given row.
func (band *Band) MatchRange(row int) (lo, hi int) {
	r := band.match[row]
	return r[0], r[1]
}

// InsertionRange returns the inclusive column range of the insertion
// matrix at the given row.
func (band *Band) InsertionRange(row int) (lo, hi int) {
	r := band.insertion[row]
	return r[0], r[1]
}

// DeletionRange returns the inclusive column range of the deletion
// matrix at the given row.
func (band *Band) DeletionRange(row int) (lo, hi int) {
	r := band.deletion[row]
	return r[0], r[1]
}
