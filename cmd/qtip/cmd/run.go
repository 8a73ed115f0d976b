package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/mypersonaltherapeutics/qtip/internal/app"
)

var (
	runConfigPath  string
	runFasta       []string
	runScoring     string
	runNumReads    int
	runMinLen      int
	runMaxLen      int
	runMinID       float64
	runSampling    string
	runSeed        int64
	runAlignerExe  string
	runAlignerArgs string
	runMaxRefBases int64
	runSurprise    string
	runVerify      bool
	runMaxAttempts int
	runDB          string
	runProgress    bool
	runCumulative  bool
	runCPUProfile  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one evaluation against the configured aligner",
	Long: "Samples reads from the reference, mutates each by a scored edit " +
		"combination, streams them through the aligner, and prints the " +
		"recovery table on stdout.",
	RunE: runRun,
}

func init() {
	defaults := app.DefaultConfig()
	f := runCmd.Flags()
	f.StringVar(&runConfigPath, "config", "", "YAML config file (explicit flags override it)")
	f.StringArrayVar(&runFasta, "fasta", nil, "Reference FASTA file (repeatable)")
	f.StringVar(&runScoring, "scoring", defaults.Scoring, "Scoring: match,mmMin,mmMax,nPen,rdOpen,rdExt,rfOpen,rfExt")
	f.IntVar(&runNumReads, "num-reads", defaults.NumReads, "Reads to sample")
	f.IntVar(&runMinLen, "min-len", defaults.MinLength, "Minimum read length")
	f.IntVar(&runMaxLen, "max-len", defaults.MaxLength, "Maximum read length")
	f.Float64Var(&runMinID, "min-id", defaults.MinIdentity, "Identity floor for mutated reads")
	f.StringVar(&runSampling, "sampling", defaults.Sampling, "Edit sampling policy: score or nedit")
	f.Int64Var(&runSeed, "seed", 0, "Random seed (0 = time-based)")
	f.StringVar(&runAlignerExe, "aligner-exe", defaults.AlignerExe, "Aligner executable")
	f.StringVar(&runAlignerArgs, "aligner-args", "", "Extra aligner arguments, e.g. \"-x idx --local\"")
	f.Int64Var(&runMaxRefBases, "max-ref-bases", 0, "Stop loading references after N bases (0 = unbounded)")
	f.StringVar(&runSurprise, "surprise", "", "Append qualifying failures to this file")
	f.BoolVar(&runVerify, "verify", false, "Check every mutation against the alignment oracle")
	f.IntVar(&runMaxAttempts, "max-attempts", defaults.MaxAttempts, "Mutation attempts per read before failing the run")
	f.StringVar(&runDB, "db", "", "Archive the finished run in this database")
	f.BoolVar(&runProgress, "progress", false, "Render a progress bar on stderr")
	f.BoolVar(&runCumulative, "cumulative", false, "Print the cumulative table instead of the flat one")
	f.StringVar(&runCPUProfile, "cpuprofile", "", "Write a CPU profile to this file")
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	cfg := app.DefaultConfig()
	if runConfigPath != "" {
		cfg, err = app.LoadConfigFile(runConfigPath, cfg)
		if err != nil {
			return err
		}
	}
	applyRunFlags(cmd, &cfg)

	if runCPUProfile != "" {
		prof, err := os.Create(runCPUProfile)
		if err != nil {
			return fmt.Errorf("creating cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(prof); err != nil {
			prof.Close()
			return fmt.Errorf("starting cpu profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			prof.Close()
		}()
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// Logged so a run can be reproduced even when the seed was time-based.
	fmt.Fprintf(os.Stderr, "seed: %d\n", a.Seed())

	rec, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}
	return writeTable(os.Stdout, rec, cfg.Cumulative)
}

// applyRunFlags copies every flag the user set explicitly over cfg, so
// the command line wins over config-file values.
func applyRunFlags(cmd *cobra.Command, cfg *app.Config) {
	f := cmd.Flags()
	if f.Changed("fasta") {
		cfg.Fasta = runFasta
	}
	if f.Changed("scoring") {
		cfg.Scoring = runScoring
	}
	if f.Changed("num-reads") {
		cfg.NumReads = runNumReads
	}
	if f.Changed("min-len") {
		cfg.MinLength = runMinLen
	}
	if f.Changed("max-len") {
		cfg.MaxLength = runMaxLen
	}
	if f.Changed("min-id") {
		cfg.MinIdentity = runMinID
	}
	if f.Changed("sampling") {
		cfg.Sampling = runSampling
	}
	if f.Changed("seed") {
		cfg.Seed = runSeed
	}
	if f.Changed("aligner-exe") {
		cfg.AlignerExe = runAlignerExe
	}
	if f.Changed("aligner-args") {
		cfg.AlignerArgs = runAlignerArgs
	}
	if f.Changed("max-ref-bases") {
		cfg.MaxRefBases = runMaxRefBases
	}
	if f.Changed("surprise") {
		cfg.SurprisePath = runSurprise
	}
	if f.Changed("verify") {
		cfg.Verify = runVerify
	}
	if f.Changed("max-attempts") {
		cfg.MaxAttempts = runMaxAttempts
	}
	if f.Changed("db") {
		cfg.DBPath = runDB
	}
	if f.Changed("progress") {
		cfg.Progress = runProgress
	}
	if f.Changed("cumulative") {
		cfg.Cumulative = runCumulative
	}
}
