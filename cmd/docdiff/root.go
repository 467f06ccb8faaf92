package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdiff/internal/backend"
	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/parser"
)

var rootCmd = &cobra.Command{
	Use:   "docdiff",
	Short: "Section-aligned comparison of document versions",
	Long: `docdiff splits two versions of a structured document into sections
anchored on their shared top-level headings and describes what changed in
each section.`,
	SilenceUsage: true,
}

// jsonOutput switches command output to JSON.
var jsonOutput bool

// openComparator builds the comparison client. Tests replace it.
var openComparator = backend.NewComparator

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// readExtraction parses a document file with the parser for its extension.
func readExtraction(path string, cfg config.Config) (*doctree.Extraction, error) {
	p, err := parser.ForFile(path, parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ex, err := p.Parse(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ex, nil
}

// docID names a document by its file name without extension.
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
