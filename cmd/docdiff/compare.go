package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdiff/internal/backend"
	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/pipeline"
	"github.com/dgallion1/docdiff/internal/store"
)

var compareCmd = &cobra.Command{
	Use:   "compare [new-file] [old-file]",
	Short: "Describe the changes between two document versions, section by section",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

var saveResult bool

func init() {
	compareCmd.Flags().BoolVar(&saveResult, "save", false, "Persist the comparison in the configured store")
	rootCmd.AddCommand(compareCmd)
}

// session holds the clients one CLI invocation compares with.
type session struct {
	cfg      config.Config
	cmp      *backend.Comparator
	segments *pipeline.SegmentComparator
}

func newSession() (*session, error) {
	cfg := config.Load()
	if err := cfg.ValidateCompare(); err != nil {
		return nil, err
	}
	cmp, err := openComparator(cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		cmp:      cmp,
		segments: pipeline.NewSegmentComparator(cmp, newLogger(cfg), cfg.MaxConcurrentCompare),
	}, nil
}

func (s *session) close() { s.cmp.Close() }

// compareFiles aligns and compares two files into a comparison record.
func (s *session) compareFiles(ctx context.Context, cmd *cobra.Command, newPath, oldPath string) (*store.Comparison, error) {
	pairs, warnings, err := alignFiles(cmd, s.cfg, newPath, oldPath)
	if err != nil {
		return nil, err
	}
	newID, oldID := docID(newPath), docID(oldPath)
	return &store.Comparison{
		Key:      store.PairKey(newID, oldID),
		NewDocID: newID,
		OldDocID: oldID,
		Model:    s.segments.Model(),
		Sections: s.segments.CompareSegments(ctx, pairs),
		Warnings: warnings,
	}, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := sess.compareFiles(ctx, cmd, args[0], args[1])
	if err != nil {
		return err
	}

	if saveResult {
		st, err := backend.OpenStore(sess.cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveComparison(ctx, c); err != nil {
			return fmt.Errorf("save comparison: %w", err)
		}
	}

	if jsonOutput {
		return encodeJSON(cmd, c)
	}
	printComparison(cmd, c)
	return nil
}

func printComparison(cmd *cobra.Command, c *store.Comparison) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n\n", c.Key, c.Model)
	for _, s := range c.Sections {
		fmt.Fprintf(out, "== %s\n", s.Label)
		if s.Failed() {
			fmt.Fprintf(out, "error: %s\n\n", s.Error)
			continue
		}
		fmt.Fprintln(out, s.ComparisonResults)
	}
}
