// Command schemagen writes the JSON schema for the gitprof configuration.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/yaml"
)

var (
	outFile = flag.String("o", "schema.json", "Output file for the generated schema")
	root    = flag.String("root", ".", "Module root, used to read doc comments")
)

func main() {
	flag.Parse()

	out, err := filepath.Abs(*outFile)
	if err != nil {
		log.Fatalf("resolve output path: %v", err)
	}

	// Comment lookup keys are built from paths relative to the module root.
	err = os.Chdir(*root)
	if err != nil {
		log.Fatalf("change to module root: %v", err)
	}

	gen := yaml.NewSchemaGenerator(config.New(),
		"github.com/macropower/gitprof",
		"./api/v1beta1",
		"./pkg/config",
		"./pkg/profile",
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(out, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
