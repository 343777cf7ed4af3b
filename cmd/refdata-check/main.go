// Command refdata-check validates a province/district/commune reference
// document before it ships with the app: codes must be unique per level,
// names must be non-empty, and every district needs at least one ward.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"cartcore/pkg/refdata"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("refdata-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var path string
	fs.StringVar(&path, "refdata", "data/provinces.json", "path to reference data json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(path); err != nil {
		fmt.Fprintf(stderr, "Reference data validation failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Reference data validation passed.")
	return 0
}

func run(path string) error {
	tree, err := refdata.LoadFile(path)
	if err != nil {
		return err
	}
	return validate(tree)
}

func validate(tree *refdata.Tree) error {
	if len(tree.Provinces) == 0 {
		return fmt.Errorf("document contains no provinces")
	}
	provinceCodes := map[string]struct{}{}
	for pi, p := range tree.Provinces {
		if p.Code == "" || p.Name == "" {
			return fmt.Errorf("provinces[%d]: code and name required", pi)
		}
		if _, dup := provinceCodes[p.Code]; dup {
			return fmt.Errorf("provinces[%d]: duplicate code %s", pi, p.Code)
		}
		provinceCodes[p.Code] = struct{}{}

		if len(p.Districts) == 0 {
			return fmt.Errorf("provinces[%d] (%s): no districts", pi, p.Name)
		}
		districtCodes := map[string]struct{}{}
		for di, d := range p.Districts {
			if d.Code == "" || d.Name == "" {
				return fmt.Errorf("provinces[%d].districts[%d]: code and name required", pi, di)
			}
			if _, dup := districtCodes[d.Code]; dup {
				return fmt.Errorf("provinces[%d].districts[%d]: duplicate code %s", pi, di, d.Code)
			}
			districtCodes[d.Code] = struct{}{}

			if len(d.Wards) == 0 {
				return fmt.Errorf("provinces[%d].districts[%d] (%s): no wards", pi, di, d.Name)
			}
			wardCodes := map[string]struct{}{}
			for wi, w := range d.Wards {
				if w.Code == "" || w.Name == "" {
					return fmt.Errorf("provinces[%d].districts[%d].wards[%d]: code and name required", pi, di, wi)
				}
				if _, dup := wardCodes[w.Code]; dup {
					return fmt.Errorf("provinces[%d].districts[%d].wards[%d]: duplicate code %s", pi, di, wi, w.Code)
				}
				wardCodes[w.Code] = struct{}{}
			}
		}
	}
	return nil
}
