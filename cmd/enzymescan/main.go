// Package main provides the enzymescan command-line tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/seqlab/enzymescan/internal/annotation"
	"github.com/seqlab/enzymescan/internal/batch"
	"github.com/seqlab/enzymescan/internal/classify"
	"github.com/seqlab/enzymescan/internal/fasta"
	"github.com/seqlab/enzymescan/internal/output"
	"github.com/seqlab/enzymescan/internal/score"
	"github.com/seqlab/enzymescan/internal/stats"
	"github.com/seqlab/enzymescan/internal/store"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("enzymescan version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "stats":
		return runStats(args[1:])
	case "rank":
		return runRank(args[1:])
	case "batch":
		return runBatch(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `enzymescan - enzyme candidate scoring for microbial genomes

Usage:
  enzymescan [options] <command> [arguments]

Commands:
  stats       Compute assembly-quality statistics for a FASTA file
  rank        Classify and rank enzyme candidates for one genome
  batch       Process multiple genomes and produce a comparative report
  config      Manage enzymescan configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Assembly QC for one genome
  enzymescan stats assembly.fasta

  # Rank enzyme candidates from annotation output
  enzymescan rank --proteins genes.faa genes.tsv

  # Process a directory of genomes with result persistence
  enzymescan batch --workers 4 --db results.duckdb genomes/*/

For more information on a command, use:
  enzymescan <command> --help
`)
}

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	var (
		minLength  int
		outputFile string
	)

	fs.IntVar(&minLength, "min-length", 0, "Drop contigs shorter than this before computing statistics")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Compute assembly-quality statistics (N50, N90, GC%%) for a FASTA file.

Usage:
  enzymescan stats [options] <assembly.fasta>

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  enzymescan stats assembly.fasta
  enzymescan stats --min-length 500 assembly.fasta.gz
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: assembly file argument required\n\n")
		fs.Usage()
		return ExitUsage
	}

	path := fs.Arg(0)
	records, err := fasta.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	s, err := stats.Compute(records, stats.Options{MinLength: minLength})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	out, cleanup, err := openOutput(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cleanup()

	if err := output.WriteStats(out, genomeName(path), s); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing stats: %v\n", err)
		return ExitError
	}

	return ExitSuccess
}

func runRank(args []string) int {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)

	var (
		rulesFile   string
		proteinFile string
		fastaOut    string
		topN        int
		genomeID    string
		outputFile  string
	)

	fs.StringVar(&rulesFile, "rules", "", "Classification rule table (YAML, default: built-in)")
	fs.StringVar(&proteinFile, "proteins", "", "Translated protein FASTA to attach to gene records")
	fs.StringVar(&fastaOut, "fasta-out", "", "Export top candidates as FASTA to this file")
	fs.IntVar(&topN, "top", 0, "Limit output to the top N candidates (0 = all)")
	fs.StringVar(&genomeID, "genome", "", "Genome identifier (default: derived from input filename)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Classify annotated genes into enzyme families and rank candidates.

Usage:
  enzymescan rank [options] <genes.tsv>

Arguments:
  <genes.tsv>  Annotation-tool feature table (Prokka-style TSV)

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  enzymescan rank genes.tsv
  enzymescan rank --proteins genes.faa --top 20 --fasta-out top20.fasta genes.tsv
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: annotation table argument required\n\n")
		fs.Usage()
		return ExitUsage
	}

	tsvPath := fs.Arg(0)
	if genomeID == "" {
		genomeID = genomeName(tsvPath)
	}

	classifier, scorer, code := buildPipeline(rulesFile)
	if code != ExitSuccess {
		return code
	}

	genes, err := annotation.LoadTSV(tsvPath, genomeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if len(genes) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no gene records in %s\n", tsvPath)
		return ExitError
	}

	if proteinFile != "" {
		proteins, err := fasta.Load(proteinFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		annotation.AttachSequences(genes, proteins)
	}

	classified := classifier.ClassifyAll(genes)
	ranked := scorer.Rank(classified)
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	out, cleanup, err := openOutput(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cleanup()

	writer := output.NewCandidateWriter(out)
	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}
	for _, c := range ranked {
		if err := writer.Write(genomeID, c); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing candidate: %v\n", err)
			return ExitError
		}
	}
	if err := writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		return ExitError
	}

	if fastaOut != "" {
		f, err := os.Create(fastaOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating FASTA output: %v\n", err)
			return ExitError
		}
		defer f.Close()
		if err := output.WriteCandidateFASTA(f, ranked); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing FASTA output: %v\n", err)
			return ExitError
		}
	}

	return ExitSuccess
}

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)

	var (
		rulesFile  string
		workers    int
		dbPath     string
		topN       int
		minLength  int
		fastaOut   string
		outputFile string
		verbose    bool
	)

	fs.StringVar(&rulesFile, "rules", "", "Classification rule table (YAML, default: built-in)")
	fs.IntVar(&workers, "workers", defaultWorkers(), "Concurrent genome workers (0 = one per CPU)")
	fs.StringVar(&dbPath, "db", "", "Persist results to this DuckDB file")
	fs.IntVar(&topN, "top", 25, "Cross-genome top-N candidates to report (0 = all)")
	fs.IntVar(&minLength, "min-length", 0, "Drop contigs shorter than this before computing statistics")
	fs.StringVar(&fastaOut, "fasta-out", "", "Export cross-genome top candidates as FASTA")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Process multiple genome directories and produce a comparative report.

Each genome directory must contain an assembly FASTA (.fasta/.fa/.fna,
optionally gzipped) and an annotation table (.tsv). A translated
protein FASTA (.faa) is attached when present. The directory name is
the genome identifier.

Usage:
  enzymescan batch [options] <genome-dir>...

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  enzymescan batch genomes/*/
  enzymescan batch --workers 8 --db results.duckdb --top 50 genomes/*/
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: at least one genome directory required\n\n")
		fs.Usage()
		return ExitUsage
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	classifier, scorer, code := buildPipeline(rulesFile)
	if code != ExitSuccess {
		return code
	}

	genomes := make([]batch.Genome, 0, fs.NArg())
	for _, dir := range fs.Args() {
		g, err := loadGenomeDir(dir)
		if err != nil {
			// Record the genome with empty inputs so the aggregator
			// reports it as failed instead of dropping it.
			logger.Warn("could not load genome inputs",
				zap.String("dir", dir), zap.Error(err))
		}
		genomes = append(genomes, g)
	}

	agg := batch.NewAggregator(classifier, scorer, workers)
	agg.SetLogger(logger)
	agg.SetStatsOptions(stats.Options{MinLength: minLength})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := agg.Run(ctx, genomes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if result.Partial {
		fmt.Fprintf(os.Stderr, "Warning: batch interrupted, reporting partial results\n")
	}

	out, cleanup, err := openOutput(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cleanup()

	if err := output.WriteBatchSummary(out, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
		return ExitError
	}

	top := result.TopN(topN)
	if len(top) > 0 {
		fmt.Fprintln(out)
		writer := output.NewCandidateWriter(out)
		if err := writer.WriteHeader(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
			return ExitError
		}
		for _, c := range top {
			if err := writer.Write(c.GenomeID, c.CandidateScore); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing candidate: %v\n", err)
				return ExitError
			}
		}
		if err := writer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
			return ExitError
		}
	}

	if fastaOut != "" {
		f, err := os.Create(fastaOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating FASTA output: %v\n", err)
			return ExitError
		}
		defer f.Close()
		if err := output.WriteBatchFASTA(f, top); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing FASTA output: %v\n", err)
			return ExitError
		}
	}

	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening result store: %v\n", err)
			return ExitError
		}
		defer st.Close()
		if err := st.SaveResult(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving results: %v\n", err)
			return ExitError
		}
		logger.Info("results persisted",
			zap.String("db", dbPath), zap.String("run_id", result.RunID))
	}

	return ExitSuccess
}

// buildPipeline constructs the classifier and scorer from the rule
// table and configured weights. Configuration errors are fatal here:
// they would invalidate every downstream result.
func buildPipeline(rulesFile string) (*classify.Classifier, *score.Scorer, int) {
	table := classify.DefaultRules()
	if rulesFile == "" {
		rulesFile = configuredRulesFile()
	}
	if rulesFile != "" {
		var err error
		table, err = classify.LoadRules(rulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return nil, nil, ExitError
		}
	}

	scorer, err := score.NewScorer(configuredWeights())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, ExitError
	}

	return classify.NewClassifier(table), scorer, ExitSuccess
}

// loadGenomeDir assembles one batch input from a genome directory.
func loadGenomeDir(dir string) (batch.Genome, error) {
	g := batch.Genome{ID: filepath.Base(filepath.Clean(dir))}

	assemblyPath, err := findFile(dir, []string{".fasta", ".fa", ".fna", ".fasta.gz", ".fa.gz", ".fna.gz"})
	if err != nil {
		return g, err
	}
	g.Sequences, err = fasta.Load(assemblyPath)
	if err != nil {
		return g, err
	}

	tsvPath, err := findFile(dir, []string{".tsv", ".tsv.gz"})
	if err != nil {
		return g, err
	}
	g.Genes, err = annotation.LoadTSV(tsvPath, g.ID)
	if err != nil {
		return g, err
	}

	if faaPath, err := findFile(dir, []string{".faa", ".faa.gz"}); err == nil {
		proteins, err := fasta.Load(faaPath)
		if err != nil {
			return g, err
		}
		annotation.AttachSequences(g.Genes, proteins)
	}

	return g, nil
}

// findFile returns the first file in dir with one of the given
// suffixes, in lexical directory order.
func findFile(dir string, suffixes []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read genome directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("no %s file in %s", suffixes[0], dir)
}

// genomeName derives a genome identifier from an input path.
func genomeName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
