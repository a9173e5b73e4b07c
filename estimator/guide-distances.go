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

	"github.com/exascience/eldist/sequence"
)

// guideDistances computes a rough distance for every sequence pair
// from shared k-mer counts: with F the shared fraction of the shorter
// sequence's k-mers, the distance is -ln(0.05 + 0.95*F), so identical
// sequences score 0 and unrelated ones about 3. These distances only
// steer banding and triplet sampling; the pair HMM refines them.
func guideDistances(set *sequence.Set) []float64 {
	k := 6
	if set.Alphabet().Size() > 4 {
		k = 3
	}
	for id := 0; id < set.Count(); id++ {
		if l := len(set.Encoded(id)); l > 0 && l < k {
			k = l
		}
	}

	counts := make([]map[uint32]int, set.Count())
	for id := range counts {
		counts[id] = kmerCounts(set.Encoded(id), k)
	}

	distances := make([]float64, set.PairCount())
	for i := 0; i < set.Count(); i++ {
		for j := i + 1; j < set.Count(); j++ {
			var shared int
			for key, count := range counts[i] {
				if other := counts[j][key]; other < count {
					shared += other
				} else {
					shared += count
				}
			}
			minLen := len(set.Encoded(i))
			if l := len(set.Encoded(j)); l < minLen {
				minLen = l
			}
			fraction := 0.0
			if total := minLen - k + 1; total > 0 {
				fraction = float64(shared) / float64(total)
			}
			distances[set.PairIndex(i, j)] = -math.Log(0.05 + 0.95*fraction)
		}
	}
	return distances
}

// kmerCounts packs every k-mer of the encoded sequence into an integer
// key, 5 bits per symbol id.
func kmerCounts(encoded []uint8, k int) map[uint32]int {
	counts := make(map[uint32]int)
	for i := 0; i+k <= len(encoded); i++ {
		var key uint32
		for _, id := range encoded[i : i+k] {
			key = key<<5 | uint32(id)
		}
		counts[key]++
	}
	return counts
}

func pairGuide(set *sequence.Set, guide []float64, a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	return guide[set.PairIndex(a, b)]
}
