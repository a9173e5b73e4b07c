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
	"github.com/exascience/eldist/internal"
)

const unknownID = 255

// Alphabet maps sequence characters to compact symbol identifiers.
// Identifiers below Size are concrete symbols, followed by the gap
// symbol and the ambiguity codes. Alphabets are immutable after
// package initialization.
type Alphabet struct {
	name    string
	letters string
	size    uint8
	gap     uint8
	index   [256]uint8
	members [][]uint8
}

type ambiguityClass struct {
	letter  byte
	members []uint8
}

// Nucleotide is the DNA alphabet in T, C, A, G order with the IUPAC
// ambiguity codes. U translates to T.
var Nucleotide = newAlphabet("nucleotide", "TCAG-", []ambiguityClass{
	{'R', []uint8{2, 3}},       // A, G
	{'Y', []uint8{1, 0}},       // C, T
	{'K', []uint8{3, 0}},       // G, T
	{'M', []uint8{2, 1}},       // A, C
	{'S', []uint8{1, 3}},       // C, G
	{'W', []uint8{2, 0}},       // A, T
	{'B', []uint8{1, 3, 0}},    // C, G, T
	{'D', []uint8{2, 3, 0}},    // A, G, T
	{'H', []uint8{2, 1, 0}},    // A, C, T
	{'V', []uint8{2, 1, 3}},    // A, C, G
	{'N', []uint8{2, 1, 3, 0}}, // A, C, G, T
}, map[byte]byte{'U': 'T'})

// Amino is the amino-acid alphabet with the IUPAC ambiguity codes.
var Amino = newAlphabet("aminoacid", "ARNDCQEGHILKMFPSTWYV-", []ambiguityClass{
	{'B', []uint8{3, 2}},  // D, N
	{'J', []uint8{10, 9}}, // L, I
	{'Z', []uint8{6, 5}},  // E, Q
	{'X', []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}},
}, nil)

func newAlphabet(name, letters string, classes []ambiguityClass, aliases map[byte]byte) *Alphabet {
	a := &Alphabet{
		name:    name,
		letters: letters,
		size:    uint8(len(letters) - 1),
		gap:     uint8(len(letters) - 1),
	}
	for i := range a.index {
		a.index[i] = unknownID
	}
	for id := 0; id < len(letters); id++ {
		a.setIndex(letters[id], uint8(id))
		if uint8(id) == a.gap {
			a.members = append(a.members, nil)
		} else {
			a.members = append(a.members, []uint8{uint8(id)})
		}
	}
	for _, class := range classes {
		id := uint8(len(a.letters))
		a.letters += string(class.letter)
		a.setIndex(class.letter, id)
		a.members = append(a.members, class.members)
	}
	for alias, target := range aliases {
		a.setIndex(alias, a.index[target])
	}
	return a
}

func (a *Alphabet) setIndex(letter byte, id uint8) {
	a.index[letter] = id
	if letter >= 'A' && letter <= 'Z' {
		a.index[letter+'a'-'A'] = id
	}
}

// Name returns "nucleotide" or "aminoacid".
func (a *Alphabet) Name() string {
	return a.name
}

// Size returns the number of concrete symbols, excluding the gap and
// the ambiguity codes.
func (a *Alphabet) Size() int {
	return int(a.size)
}

// GapID returns the identifier of the gap symbol.
func (a *Alphabet) GapID() uint8 {
	return a.gap
}

// SymbolCount returns the total number of symbols, including the gap
// and the ambiguity codes.
func (a *Alphabet) SymbolCount() int {
	return len(a.letters)
}

// SymbolIndex returns the identifier for a character. Translation is
// case-insensitive. Unknown characters are an input error.
func (a *Alphabet) SymbolIndex(c byte) uint8 {
	id := a.index[c]
	if id == unknownID {
		internal.RaiseInput("unknown %v character %q", a.name, string(c))
	}
	return id
}

// Letter returns the printable character for a symbol identifier.
func (a *Alphabet) Letter(id uint8) byte {
	return a.letters[id]
}

// Members returns the concrete symbol identifiers a symbol stands
// for: the identifier itself for concrete symbols, the class members
// for ambiguity codes, nil for the gap.
func (a *Alphabet) Members(id uint8) []uint8 {
	return a.members[id]
}

// Translate encodes a raw sequence string into symbol identifiers.
// If dropGaps is set, gap characters are skipped.
func (a *Alphabet) Translate(raw string, dropGaps bool) []uint8 {
	encoded := make([]uint8, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		id := a.index[raw[i]]
		if id == unknownID {
			internal.RaiseInput("unknown %v character %q at position %v", a.name, string(raw[i]), i)
		}
		if dropGaps && id == a.gap {
			continue
		}
		encoded = append(encoded, id)
	}
	return encoded
}
