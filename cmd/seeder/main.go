// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/studybot"
)

// notes is a small biology primer used when no source file is given.
var notes = []string{
	"The cell is the basic structural and functional unit of all living organisms.",
	"Prokaryotic cells lack a nucleus, while eukaryotic cells keep their DNA inside a nuclear envelope.",
	"The plasma membrane is a phospholipid bilayer that controls what enters and leaves the cell.",
	"Mitochondria produce most of the cell's ATP through cellular respiration.",
	"Mitochondria have their own circular DNA, which supports the endosymbiotic theory.",
	"Chloroplasts capture light energy and convert it into chemical energy during photosynthesis.",
	"Photosynthesis takes in carbon dioxide and water and releases glucose and oxygen.",
	"The light-dependent reactions happen in the thylakoid membranes.",
	"The Calvin cycle fixes carbon in the stroma of the chloroplast.",
	"Ribosomes translate messenger RNA into chains of amino acids.",
	"The rough endoplasmic reticulum is studded with ribosomes and folds new proteins.",
	"The smooth endoplasmic reticulum makes lipids and detoxifies drugs.",
	"The Golgi apparatus modifies, sorts and packages proteins for transport.",
	"Lysosomes contain digestive enzymes that break down worn-out organelles.",
	"The cytoskeleton gives the cell its shape and moves organelles around.",
	"Diffusion moves molecules from high to low concentration without energy.",
	"Osmosis is the diffusion of water across a selectively permeable membrane.",
	"Active transport uses ATP to move substances against their concentration gradient.",
	"Enzymes are proteins that speed up reactions by lowering activation energy.",
	"Each enzyme has an active site that binds a specific substrate.",
	"Temperature and pH change the shape of an enzyme and therefore its activity.",
	"Glycolysis splits glucose into two pyruvate molecules in the cytoplasm.",
	"The Krebs cycle releases carbon dioxide and loads electron carriers.",
	"The electron transport chain uses oxygen as the final electron acceptor.",
	"Fermentation regenerates NAD+ when oxygen is not available.",
	"DNA is a double helix of nucleotides joined by complementary base pairs.",
	"Adenine pairs with thymine and guanine pairs with cytosine.",
	"DNA replication is semi-conservative: each new helix keeps one old strand.",
	"Transcription copies a gene from DNA into messenger RNA in the nucleus.",
	"Translation reads mRNA codons three bases at a time.",
	"Mitosis produces two genetically identical daughter cells.",
	"The stages of mitosis are prophase, metaphase, anaphase and telophase.",
	"Meiosis produces four haploid gametes with half the chromosome number.",
	"Crossing over during meiosis increases genetic variation.",
	"A gene is a section of DNA that codes for a protein.",
	"Alleles are different versions of the same gene.",
	"Dominant alleles mask the effect of recessive alleles in heterozygotes.",
	"Natural selection favors individuals whose traits suit their environment.",
	"Mutations are the original source of new genetic variation.",
	"Homeostasis keeps the internal environment stable despite outside changes.",
}

var (
	seedFileName = flag.String("src", "", "text file of study notes, one sentence per line")
	dataDir      = flag.String("data-dir", "./studybot-data", "study store directory")
	name         = flag.String("name", "sample-notes", "material name")
	questions    = flag.Bool("questions", false, "ask a few sample questions to seed progress")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// document joins non-blank lines and estimates a page count at 40 lines a page.
func document(source iter.Seq[string]) (string, int) {
	var b strings.Builder
	lines := 0
	for line := range source {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
		lines++
	}
	return b.String(), lines/40 + 1
}

func main() {
	a, err := studybot.NewAssistant(*dataDir)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(notes)
	}

	text, pages := document(source)
	loaded, err := a.BuildFromText(ctx, *name, text, pages)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded material", "name", loaded.Material.Name, "chunks", len(loaded.Chunks))

	if *questions {
		for _, q := range []string{"What do mitochondria do?", "How does osmosis work?"} {
			if _, err := a.RAGAnswer(ctx, q, 0); err != nil {
				panic(err)
			}
		}
		slog.Info("seeded questions", "student", a.StudentID())
	}
}
