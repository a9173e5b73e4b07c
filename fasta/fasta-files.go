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

package fasta

import (
	"bufio"
	"compress/gzip"
	"io"
	"sort"
	"strings"

	"github.com/exascience/eldist/internal"
)

// Record is one named sequence from a FASTA input.
type Record struct {
	Name string
	Data string
}

func cleanName(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '>', '\r', '\t', ' ', '\n':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func cleanData(line string, b *strings.Builder) {
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '\r', '\t', ' ', '\n', '*':
		default:
			b.WriteByte(c)
		}
	}
}

// Read sequentially parses FASTA records from the given reader.
//
// A line containing '>' starts a new record; its name is the line with
// '>' and whitespace removed. Sequence lines are concatenated with
// whitespace and stop codons ('*') removed. Records sharing a name
// collapse to the last occurrence. The result is ordered by name.
func Read(r io.Reader) []Record {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	data := make(map[string]string)
	var name string
	var seq strings.Builder
	inRecord := false

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if strings.ContainsRune(line, '>') {
			if inRecord {
				data[name] = seq.String()
				seq.Reset()
			}
			name = cleanName(line)
			inRecord = true
		} else {
			if !inRecord {
				internal.RaiseInput("invalid fasta input - missing first header")
			}
			cleanData(line, &seq)
		}
	}
	if err := scanner.Err(); err != nil {
		internal.RaiseInput("%v while reading fasta input", err)
	}
	if !inRecord {
		internal.RaiseInput("empty fasta input")
	}
	data[name] = seq.String()

	names := make([]string, 0, len(data))
	for n := range data {
		names = append(names, n)
	}
	sort.Strings(names)

	records := make([]Record, len(names))
	for i, n := range names {
		records[i] = Record{Name: n, Data: data[n]}
	}
	return records
}

// ReadString parses FASTA records from a string.
func ReadString(s string) []Record {
	return Read(strings.NewReader(s))
}

// ReadFile parses FASTA records from a file. Gzip-compressed files are
// decompressed transparently.
func ReadFile(filename string) []Record {
	f := internal.FileOpen(filename)
	defer internal.Close(f)
	return Read(handleGzip(filename, bufio.NewReader(f)))
}

// handleGzip checks if the given reader produces a gzip stream by
// looking at the initial byte. It then either returns a gzip.Reader,
// or returns the given reader unchanged.
func handleGzip(filename string, buf *bufio.Reader) io.Reader {
	b, err := buf.ReadByte()
	if err != nil {
		return buf
	}
	if err := buf.UnreadByte(); err != nil {
		internal.RaiseInput("%v while reading %v", err, filename)
	}
	if b != 0x1f {
		return buf
	}
	gz, err := gzip.NewReader(buf)
	if err != nil {
		internal.RaiseInput("%v is not a valid gzip file - %v", filename, err)
	}
	return gz
}
