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

package cmd

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exascience/eldist/estimator"
	"github.com/exascience/eldist/fasta"
	"github.com/exascience/eldist/hmm"
	"github.com/exascience/eldist/internal"
	"github.com/exascience/eldist/model"
	"github.com/exascience/eldist/sequence"
	"github.com/google/uuid"
)

// DistmatExt is the default extension appended to the input filename
// for the distance matrix output.
const DistmatExt = ".eldist"

// DistmatHelp is the help string for this command.
const DistmatHelp = "distmat parameters:\n" +
	"eldist distmat --in fasta-file\n" +
	"[--model (GTR | HKY85 | JTT | LG | WAG)]\n" +
	"[--gtr-params a,b,c,d,e]\n" +
	"[--hky-kappa ratio]\n" +
	"[--indel probability,rate]\n" +
	"[--alpha shape]\n" +
	"[--categories number]\n" +
	"[--viterbi]\n" +
	"[--out file]\n" +
	"[--timed]\n" +
	"[--profile name]\n" +
	"[--log-path path]\n"

// Distmat implements the eldist distmat command.
func Distmat() (err error) {
	var (
		input, output    string
		modelName        string
		gtrParams        string
		hkyKappa         float64
		indelParams      string
		alpha            float64
		categories       int
		viterbi          bool
		timed            bool
		profile, logPath string
	)

	var flags flag.FlagSet

	flags.StringVar(&input, "in", "", "fasta input file")
	flags.StringVar(&modelName, "model", "GTR", "substitution model, one of GTR, HKY85, JTT, LG, or WAG")
	flags.StringVar(&gtrParams, "gtr-params", "", "five comma-separated GTR exchangeability rates, estimated when omitted")
	flags.Float64Var(&hkyKappa, "hky-kappa", 0, "HKY85 transition/transversion ratio, estimated when omitted")
	flags.StringVar(&indelParams, "indel", "", "comma-separated negative binomial probability and indel rate, estimated when omitted")
	flags.Float64Var(&alpha, "alpha", 0, "gamma shape parameter, estimated when omitted")
	flags.IntVar(&categories, "categories", model.DefaultCategories, "number of discrete gamma rate categories")
	flags.BoolVar(&viterbi, "viterbi", false, "score alignments with Viterbi instead of Forward")
	flags.StringVar(&output, "out", "", "output file, defaults to the input file with "+DistmatExt+" appended")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 2, DistmatHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("--in", input) {
		sanityChecksFailed = true
	}
	if output == "" {
		output = input + DistmatExt
	}
	if !checkCreate("--out", output) {
		sanityChecksFailed = true
	}

	modelName = strings.ToUpper(modelName)
	nucleotide := false
	switch modelName {
	case "GTR", "HKY85":
		nucleotide = true
	case "JTT", "LG", "WAG":
	default:
		sanityChecksFailed = true
		log.Printf("Error: Invalid model: %v.\n", modelName)
	}

	substParams, ok := parseFloatList("--gtr-params", gtrParams, 5)
	if !ok {
		sanityChecksFailed = true
	}
	if substParams != nil && modelName != "GTR" {
		sanityChecksFailed = true
		log.Println("Error: Cannot use --gtr-params without --model GTR.")
	}
	if hkyKappa != 0 {
		if modelName != "HKY85" {
			sanityChecksFailed = true
			log.Println("Error: Cannot use --hky-kappa without --model HKY85.")
		}
		substParams = []float64{hkyKappa}
	}

	indelValues, ok := parseFloatList("--indel", indelParams, 2)
	if !ok {
		sanityChecksFailed = true
	}

	if alpha < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid alpha: ", alpha)
	}
	if categories < 1 {
		sanityChecksFailed = true
		log.Println("Error: Invalid categories: ", categories)
	}

	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, DistmatHelp)
		os.Exit(1)
	}

	// building options and output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " distmat --in ", input)
	fmt.Fprint(&command, " --model ", modelName)

	options := estimator.Options{
		EstimateSubstitution: substParams == nil,
		EstimateIndel:        indelValues == nil,
		EstimateAlpha:        alpha == 0,
		Alpha:                model.DefaultAlpha,
		Categories:           categories,
	}
	if substParams != nil {
		options.SubstitutionParameters = substParams
		if modelName == "GTR" {
			fmt.Fprint(&command, " --gtr-params ", gtrParams)
		} else {
			fmt.Fprint(&command, " --hky-kappa ", hkyKappa)
		}
	}
	if indelValues != nil {
		options.IndelProbability = indelValues[0]
		options.IndelRate = indelValues[1]
		fmt.Fprint(&command, " --indel ", indelParams)
	}
	if alpha > 0 {
		options.Alpha = alpha
		fmt.Fprint(&command, " --alpha ", alpha)
	}
	fmt.Fprint(&command, " --categories ", categories)
	if viterbi {
		fmt.Fprint(&command, " --viterbi")
	}
	fmt.Fprint(&command, " --out ", output)
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	defer internal.RecoverTo(&err)

	alphabet := sequence.Amino
	if nucleotide {
		alphabet = sequence.Nucleotide
	}
	newModel := modelFactory(modelName)

	var pairwise *estimator.PairwiseEstimator
	phase := int64(1)
	timedRun(timed, profile, "Estimating model parameters.", phase, func() {
		set := sequence.NewSet(alphabet, fasta.ReadFile(input))
		estimates := estimator.EstimateParameters(set, newModel, options)
		subst := newModel(set.ObservedFrequencies())
		if len(estimates.SubstitutionParameters) > 0 {
			subst.SetParameters(estimates.SubstitutionParameters...)
		}
		subst.SetAlpha(estimates.Alpha)
		subst.SetCategories(categories)
		subst.Calculate()
		indel := model.NewNegativeBinomialGapModel(estimates.IndelProbability, estimates.IndelRate)
		algorithm := hmm.Forward
		if viterbi {
			algorithm = hmm.Viterbi
		}
		pairwise = estimator.NewPairwiseEstimator(set, subst, indel, algorithm, estimates.GuideDistances)
	})

	phase++
	timedRun(timed, profile, "Estimating pairwise distances.", phase, func() {
		pairwise.EstimateAll()
		writeDistances(output, pairwise)
	})

	return nil
}

func modelFactory(name string) func([]float64) *model.SubstitutionModel {
	switch name {
	case "GTR":
		return model.NewGTR
	case "HKY85":
		return model.NewHKY85
	case "JTT":
		return func([]float64) *model.SubstitutionModel { return model.NewJTT() }
	case "LG":
		return func([]float64) *model.SubstitutionModel { return model.NewLG() }
	default:
		return func([]float64) *model.SubstitutionModel { return model.NewWAG() }
	}
}

func parseFloatList(parameter, list string, expected int) ([]float64, bool) {
	if list == "" {
		return nil, true
	}
	parts := strings.Split(list, ",")
	if len(parts) != expected {
		log.Printf("Error: %v needs %v comma-separated values, got %v.\n", parameter, expected, len(parts))
		return nil, false
	}
	values := make([]float64, len(parts))
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Printf("Error: Invalid value %v for %v.\n", part, parameter)
			return nil, false
		}
		values[i] = value
	}
	return values, true
}

// writeDistances writes the lower-triangular distance matrix: the
// sequence count on the first line, then one line per sequence with
// its name and the distances to all earlier sequences. The matrix
// goes to a temporary file first and is renamed into place when
// complete.
func writeDistances(filename string, pairwise *estimator.PairwiseEstimator) {
	internal.MkdirAll(filepath.Dir(filename), 0700)
	tmp := filepath.Join(filepath.Dir(filename), fmt.Sprint(filepath.Base(filename), "-", uuid.New()))
	f := internal.FileCreate(tmp)
	w := bufio.NewWriter(f)
	set := pairwise.Set()
	fmt.Fprintln(w, set.Count())
	for i := 0; i < set.Count(); i++ {
		fmt.Fprint(w, set.Name(i), "        ")
		for j := 0; j < i; j++ {
			fmt.Fprintf(w, " %.6g", pairwise.Distance(j, i))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		log.Panic(err)
	}
	internal.Close(f)
	if err := os.Rename(tmp, filename); err != nil {
		log.Panic(err)
	}
}
