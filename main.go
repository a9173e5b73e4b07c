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

// eldist estimates pairwise evolutionary distances between unaligned
// biological sequences with a banded pair hidden Markov model.
//
// Please see https://github.com/exascience/eldist for a documentation
// of the tool, and below (and/or
// https://godoc.org/github.com/ExaScience/eldist) for the API
// documentation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/eldist/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: distmat")
	fmt.Fprint(os.Stderr, "\n", cmd.DistmatHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "distmat":
		err = cmd.Distmat()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

}
