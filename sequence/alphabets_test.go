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
	"testing"

	"github.com/exascience/eldist/internal"
)

func idsEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func catch(f func()) (err error) {
	defer internal.RecoverTo(&err)
	f()
	return nil
}

func TestNucleotideAlphabet(t *testing.T) {
	if Nucleotide.Size() != 4 || Nucleotide.GapID() != 4 {
		t.Error("NucleotideAlphabet 1 failed")
	}
	if !idsEqual(Nucleotide.Translate("TCAG", false), []uint8{0, 1, 2, 3}) {
		t.Error("NucleotideAlphabet 2 failed")
	}
	if !idsEqual(Nucleotide.Translate("tcag", false), []uint8{0, 1, 2, 3}) {
		t.Error("NucleotideAlphabet 3 failed")
	}
	if !idsEqual(Nucleotide.Translate("UuT", false), []uint8{0, 0, 0}) {
		t.Error("NucleotideAlphabet 4 failed")
	}
	if !idsEqual(Nucleotide.Translate("A-G", true), []uint8{2, 3}) {
		t.Error("NucleotideAlphabet 5 failed")
	}
	if !idsEqual(Nucleotide.Translate("A-G", false), []uint8{2, 4, 3}) {
		t.Error("NucleotideAlphabet 6 failed")
	}
	if !idsEqual(Nucleotide.Members(Nucleotide.SymbolIndex('R')), []uint8{2, 3}) {
		t.Error("NucleotideAlphabet 7 failed")
	}
	if !idsEqual(Nucleotide.Members(Nucleotide.SymbolIndex('n')), []uint8{2, 1, 3, 0}) {
		t.Error("NucleotideAlphabet 8 failed")
	}
	if !idsEqual(Nucleotide.Members(0), []uint8{0}) {
		t.Error("NucleotideAlphabet 9 failed")
	}
	if Nucleotide.Members(Nucleotide.GapID()) != nil {
		t.Error("NucleotideAlphabet 10 failed")
	}
	err := catch(func() { Nucleotide.Translate("ACQT", false) })
	if e, ok := err.(*internal.Error); !ok || e.Kind != internal.Input {
		t.Error("NucleotideAlphabet 11 failed")
	}
}

func TestAminoAlphabet(t *testing.T) {
	if Amino.Size() != 20 || Amino.GapID() != 20 {
		t.Error("AminoAlphabet 1 failed")
	}
	if !idsEqual(Amino.Translate("ARV", false), []uint8{0, 1, 19}) {
		t.Error("AminoAlphabet 2 failed")
	}
	if !idsEqual(Amino.Members(Amino.SymbolIndex('B')), []uint8{3, 2}) {
		t.Error("AminoAlphabet 3 failed")
	}
	if !idsEqual(Amino.Members(Amino.SymbolIndex('Z')), []uint8{6, 5}) {
		t.Error("AminoAlphabet 4 failed")
	}
	if len(Amino.Members(Amino.SymbolIndex('X'))) != 20 {
		t.Error("AminoAlphabet 5 failed")
	}
	if Amino.Letter(10) != 'L' {
		t.Error("AminoAlphabet 6 failed")
	}
	if err := catch(func() { Amino.SymbolIndex('O') }); err == nil {
		t.Error("AminoAlphabet 7 failed")
	}
}
