package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/section"
)

var headingsCmd = &cobra.Command{
	Use:   "headings [file]",
	Short: "List the top-level headings of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runHeadings,
}

var (
	showTree bool
	showTOC  bool
)

func init() {
	headingsCmd.Flags().BoolVar(&showTree, "tree", false, "Print the full heading hierarchy")
	headingsCmd.Flags().BoolVar(&showTOC, "toc", false, "Print the table of contents entries")
	rootCmd.AddCommand(headingsCmd)
}

func runHeadings(cmd *cobra.Command, args []string) error {
	ex, err := readExtraction(args[0], config.Load())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch {
	case showTree:
		tree := doctree.Structure(ex, docID(args[0]))
		if jsonOutput {
			return encodeJSON(cmd, tree)
		}
		var walk func(nodes []*doctree.DocNode, depth int)
		walk = func(nodes []*doctree.DocNode, depth int) {
			for _, n := range nodes {
				fmt.Fprintf(out, "%*s%s\n", depth*2, "", n.Title)
				walk(n.Children, depth+1)
			}
		}
		walk(tree.Children, 0)
		return nil

	case showTOC:
		toc := doctree.TableOfContents(ex)
		if jsonOutput {
			return encodeJSON(cmd, toc)
		}
		for _, line := range toc {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	headings := section.HeadingsOf(ex)
	if jsonOutput {
		return encodeJSON(cmd, headings)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NORMALIZED\tTEXT\tPATH")
	for _, h := range headings {
		normalized := h.Normalized
		if !h.Matchable() {
			normalized = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", normalized, h.Text, h.Path)
	}
	return tw.Flush()
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
