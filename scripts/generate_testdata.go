// +build ignore

// generate_testdata.go creates sample feed files for manual runs and benchmarks.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   testdata/feeds/steps.log        (demo recipe cycled 20 times, step mode)
//   testdata/feeds/small.jsonl      (50 structured tasks)
//   testdata/feeds/medium.jsonl     (500 structured tasks)
//   testdata/feeds/large.jsonl      (5000 structured tasks)
//
// Replay one with: jg snapshot --from testdata/feeds/small.jsonl --feed-mode structured
// or follow it live: jg --file testdata/feeds/small.jsonl --feed-mode structured
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 50},
	{"medium", 500},
	{"large", 5000},
}

func main() {
	outputDir := "testdata/feeds"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	steps := 20 * int(ingest.DemoRecipe().Len())
	write(filepath.Join(outputDir, "steps.log"), testutil.StepLines(steps))

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d tasks)...\n", ds.name, ds.size)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:       int64(ds.size), // Reproducible per-size
			NamePrefix: "Job",
			MinWidth:   5,
			MinLength:  10,
		})
		write(filepath.Join(outputDir, ds.name+".jsonl"), testutil.ToFeedLines(gen.Tasks(ds.size)))
	}

	fmt.Println("\nDone! Feed files created in", outputDir)
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("  Written %s (%d bytes)\n", path, len(content))
}
