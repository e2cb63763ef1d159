package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/beetlebugorg/sosicon/pkg/sosicon"
)

type infoOptions struct {
	dump   bool
	asYAML bool
}

func newInfoCmd(root *rootOptions) *cobra.Command {
	opts := &infoOptions{}

	cmd := &cobra.Command{
		Use:   "info [files...]",
		Short: "Describe SOSI files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the element tree")
	cmd.Flags().BoolVar(&opts.asYAML, "yaml", false, "print the summary as YAML")
	return cmd
}

func runInfo(cmd *cobra.Command, root *rootOptions, opts *infoOptions, args []string) error {
	out := cmd.OutOrStdout()

	var summaries []sosicon.Summary
	for _, path := range args {
		doc, err := sosicon.Open(path, sosicon.DefaultParseOptions())
		if err != nil {
			return err
		}
		root.log.Debug().Str("path", path).Int("features", doc.FeatureCount()).Msg("Parsed")
		if opts.dump {
			if err := doc.Dump(out); err != nil {
				return err
			}
			continue
		}
		summaries = append(summaries, doc.Summarize())
	}

	if opts.asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		for _, s := range summaries {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return enc.Close()
	}
	for _, s := range summaries {
		printSummary(out, s)
	}
	return nil
}

func printSummary(w io.Writer, s sosicon.Summary) {
	fmt.Fprintf(w, "=== %s ===\n", s.Path)
	fmt.Fprintf(w, "Elements: %d\n", s.Elements)
	if s.Head.CoordSys != "" {
		fmt.Fprintf(w, "KOORDSYS: %s\n", s.Head.CoordSys)
	}
	if s.Head.Charset != "" {
		fmt.Fprintf(w, "TEGNSETT: %s\n", s.Head.Charset)
	}
	fmt.Fprintf(w, "Origin: %d %d  Unit: %g\n", s.Head.Origin[0], s.Head.Origin[1], s.Head.Unit)
	if s.Bounds != nil {
		fmt.Fprintf(w, "Bounds: %s\n", s.Bounds)
	}

	fmt.Fprintf(w, "Features:\n")
	for _, name := range sortedKeys(s.Features) {
		fmt.Fprintf(w, "  %-10s %d\n", name, s.Features[name])
	}
	if len(s.ObjTypes) > 0 {
		fmt.Fprintf(w, "OBJTYPE:\n")
		for _, name := range sortedKeys(s.ObjTypes) {
			fmt.Fprintf(w, "  %-20s %d\n", name, s.ObjTypes[name])
		}
	}
	for _, p := range s.Problems {
		fmt.Fprintf(w, "Warning: %s\n", p)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
