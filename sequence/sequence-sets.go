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

package sequence

import (
	"github.com/exascience/eldist/fasta"
	"github.com/exascience/eldist/internal"
)

// Set is an ordered collection of named, encoded sequences over one
// alphabet. It owns the raw strings and their translations; all other
// components borrow from it.
type Set struct {
	alphabet *Alphabet
	names    []string
	raw      []string
	encoded  [][]uint8
	byName   map[string]int
	freqs    []float64
}

// NewSet translates the given records. Distance estimation needs at
// least 3 sequences.
func NewSet(alphabet *Alphabet, records []fasta.Record) *Set {
	if len(records) < 3 {
		internal.RaiseInput("set has to contain at least 3 sequences, got %v", len(records))
	}
	set := &Set{
		alphabet: alphabet,
		names:    make([]string, len(records)),
		raw:      make([]string, len(records)),
		encoded:  make([][]uint8, len(records)),
		byName:   make(map[string]int, len(records)),
	}
	for id, record := range records {
		set.names[id] = record.Name
		set.raw[id] = record.Data
		set.encoded[id] = alphabet.Translate(record.Data, true)
		set.byName[record.Name] = id
	}
	return set
}

// Alphabet returns the alphabet the set was translated with.
func (s *Set) Alphabet() *Alphabet {
	return s.alphabet
}

// Count returns the number of sequences in the set.
func (s *Set) Count() int {
	return len(s.names)
}

func (s *Set) checkID(id int) {
	if id < 0 || id >= len(s.names) {
		internal.RaiseNotFound("unknown sequence identifier %v", id)
	}
}

// Name returns the name of a sequence.
func (s *Set) Name(id int) string {
	s.checkID(id)
	return s.names[id]
}

// Raw returns the raw string of a sequence.
func (s *Set) Raw(id int) string {
	s.checkID(id)
	return s.raw[id]
}

// Encoded returns the gap-free translation of a sequence.
func (s *Set) Encoded(id int) []uint8 {
	s.checkID(id)
	return s.encoded[id]
}

// ID returns the identifier of a named sequence.
func (s *Set) ID(name string) int {
	id, ok := s.byName[name]
	if !ok {
		internal.RaiseNotFound("unknown sequence name %v", name)
	}
	return id
}

// PairCount returns the number of unordered sequence pairs.
func (s *Set) PairCount() int {
	n := len(s.names)
	return n * (n - 1) / 2
}

// PairIndex maps a pair i<j to its position in the row-major upper
// triangle, covering 0..PairCount()-1 exactly once.
func (s *Set) PairIndex(i, j int) int {
	if i >= j {
		internal.RaiseInternal("pair index requires i<j, got (%v,%v)", i, j)
	}
	n := len(s.names)
	return ((2*n-3)*i-i*i)/2 + j - 1
}

// ObservedFrequencies returns the relative frequencies of the concrete
// symbols across all sequences. An ambiguity code contributes 1/k to
// each of its k members; gaps do not count. The result is memoized.
func (s *Set) ObservedFrequencies() []float64 {
	if s.freqs == nil {
		s.freqs = s.countFrequencies(s.encoded, false)
	}
	return s.freqs
}

// TripletFrequencies returns the relative frequencies of the concrete
// symbols in three chosen sequences, counting only unambiguous
// positions.
func (s *Set) TripletFrequencies(a, b, c int) []float64 {
	s.checkID(a)
	s.checkID(b)
	s.checkID(c)
	return s.countFrequencies([][]uint8{s.encoded[a], s.encoded[b], s.encoded[c]}, true)
}

func (s *Set) countFrequencies(encoded [][]uint8, skipAmbiguous bool) []float64 {
	freqs := make([]float64, s.alphabet.Size())
	var total float64
	for _, seq := range encoded {
		for _, id := range seq {
			members := s.alphabet.Members(id)
			if len(members) == 0 {
				continue
			}
			if skipAmbiguous && len(members) > 1 {
				continue
			}
			weight := 1 / float64(len(members))
			for _, m := range members {
				freqs[m] += weight
			}
			total++
		}
	}
	if total == 0 {
		internal.RaiseInput("no countable symbols in sequence input")
	}
	for i := range freqs {
		freqs[i] /= total
	}
	return freqs
}
