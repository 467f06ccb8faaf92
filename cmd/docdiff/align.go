package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/pipeline"
	"github.com/dgallion1/docdiff/internal/section"
)

var alignCmd = &cobra.Command{
	Use:   "align [new-file] [old-file]",
	Short: "Show how two document versions align by section",
	Args:  cobra.ExactArgs(2),
	RunE:  runAlign,
}

var showText bool

func init() {
	alignCmd.Flags().BoolVar(&showText, "text", false, "Include the section texts")
	rootCmd.AddCommand(alignCmd)
}

// alignFiles reads and aligns two document files. An alignment failure is
// reported on stderr and the whole documents are paired instead.
func alignFiles(cmd *cobra.Command, cfg config.Config, newPath, oldPath string) ([]section.SegmentPair, []string, error) {
	newEx, err := readExtraction(newPath, cfg)
	if err != nil {
		return nil, nil, err
	}
	oldEx, err := readExtraction(oldPath, cfg)
	if err != nil {
		return nil, nil, err
	}

	pairs, alignErr := pipeline.AlignExtractions(newEx, oldEx)
	var warnings []string
	if alignErr != nil {
		w := fmt.Sprintf("alignment: %s; compared entire documents", alignErr)
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		warnings = append(warnings, w)
	}
	return pairs, warnings, nil
}

func runAlign(cmd *cobra.Command, args []string) error {
	pairs, _, err := alignFiles(cmd, config.Load(), args[0], args[1])
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(cmd, pairs)
	}

	out := cmd.OutOrStdout()
	for i, p := range pairs {
		fmt.Fprintf(out, "%d. %s -> %s\n", i+1, p.Label, p.NextLabel)
		fmt.Fprintf(out, "   new [%d,%d) %d bytes, old [%d,%d) %d bytes\n",
			p.NewSpan.Start, p.NewSpan.End, p.NewSpan.Len(),
			p.OldSpan.Start, p.OldSpan.End, p.OldSpan.Len())
		if len(p.InsertedHeadings) > 0 {
			fmt.Fprintf(out, "   only in new: %s\n", strings.Join(p.InsertedHeadings, ", "))
		}
		if len(p.AbsorbedOldHeadings) > 0 {
			fmt.Fprintf(out, "   only in old: %s\n", strings.Join(p.AbsorbedOldHeadings, ", "))
		}
		if showText {
			fmt.Fprintf(out, "   --- new\n%s\n   --- old\n%s\n", p.NewText, p.OldText)
		}
	}
	return nil
}
