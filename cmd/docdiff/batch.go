package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdiff/internal/backend"
	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/pipeline"
	"github.com/dgallion1/docdiff/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch [manifest.yaml]",
	Short: "Compare every document pair listed in a manifest and store the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var (
	refreshExtractions bool
	skipExisting       bool
)

func init() {
	batchCmd.Flags().BoolVar(&refreshExtractions, "refresh", false, "Re-parse documents that already have a stored extraction")
	batchCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip pairs that already have a stored comparison")
	rootCmd.AddCommand(batchCmd)
}

// batchResult is the outcome of one manifest pair.
type batchResult struct {
	Key      string   `json:"file_pair"`
	Status   string   `json:"status"`
	Sections int      `json:"sections"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	m, err := LoadManifest(args[0])
	if err != nil {
		return err
	}
	pairs := m.Pairs()
	if len(pairs) == 0 {
		return errors.New("manifest lists no comparisons")
	}

	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.close()
	if err := sess.cfg.ValidateStore(); err != nil {
		return err
	}
	st, err := backend.OpenStore(sess.cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := newLogger(sess.cfg)

	if err := storeExtractions(ctx, cmd, sess.cfg, st, m, pairs); err != nil {
		return err
	}

	worker := pipeline.NewWorker(sess.segments, st, log)
	var results []batchResult
	failures := 0
	for _, p := range pairs {
		newID, oldID := docID(p.New), docID(p.Old)
		key := store.PairKey(newID, oldID)
		if skipExisting {
			if _, err := st.GetComparison(ctx, key); err == nil {
				results = append(results, batchResult{Key: key, Status: "skipped"})
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		job := pipeline.NewJob(newID, oldID)
		worker.Process(ctx, job)
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			failures++
		}
		results = append(results, batchResult{
			Key:      key,
			Status:   string(snap.Status),
			Sections: snap.Progress.TotalSections,
			Failed:   snap.Progress.SectionsFailed,
			Errors:   snap.Progress.Errors,
			Warnings: snap.Progress.Warnings,
		})
	}

	if jsonOutput {
		if err := encodeJSON(cmd, results); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PAIR\tSTATUS\tSECTIONS\tFAILED")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Key, r.Status, r.Sections, r.Failed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d comparisons failed", failures, len(pairs))
	}
	return nil
}

// storeExtractions parses each document named by pairs once and saves its
// extraction. Stored extractions are reused unless --refresh is set.
func storeExtractions(ctx context.Context, cmd *cobra.Command, cfg config.Config, st store.Store, m *Manifest, pairs []FilePair) error {
	seen := make(map[string]bool)
	for _, p := range pairs {
		for _, name := range []string{p.New, p.Old} {
			id := docID(name)
			if seen[id] {
				continue
			}
			seen[id] = true

			if !refreshExtractions {
				_, err := st.GetExtraction(ctx, id)
				if err == nil {
					continue
				}
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
			}

			ex, err := readExtraction(m.Path(name), cfg)
			if err != nil {
				return err
			}
			if err := st.SaveExtraction(ctx, id, ex); err != nil {
				return fmt.Errorf("save extraction %s: %w", id, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "parsed %s (%d elements)\n", name, len(ex.Elements))
		}
	}
	return nil
}
