//go:build ignore

// generate_testdata.go creates curriculum datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.json   (10 semesters x 10 subjects)
//	testdata/benchmark/medium.json  (10 semesters x 50 subjects)
//	testdata/benchmark/large.json   (12 semesters x 200 subjects)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pensum/pkg/testutil"
)

type datasetSpec struct {
	name        string
	semesters   int
	perSemester int
	density     float64
}

var datasets = []datasetSpec{
	{"small", 10, 10, 0.1},
	{"medium", 10, 50, 0.03},
	{"large", 12, 200, 0.01},
}

func main() {
	outputDir := "testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		size := ds.semesters * ds.perSemester
		fmt.Printf("Generating %s dataset (%d subjects)...\n", ds.name, size)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:       int64(size),
			IDPrefix:   "BENCH",
			CareerName: fmt.Sprintf("Benchmark %s", ds.name),
		})
		gf := gen.Wide(ds.semesters, ds.perSemester, ds.density)
		c := gen.ToCurriculum(gf)

		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d prerequisites)\n", outputPath, len(data), c.EdgeCount())
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}
