// Package app wires the adapters and domain logic into runnable
// evaluations: sample reads, mutate them, feed the aligner, and tally
// how well it recovers the expected scores.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/mypersonaltherapeutics/qtip/internal/adapters/align"
	"github.com/mypersonaltherapeutics/qtip/internal/adapters/bbolt"
	"github.com/mypersonaltherapeutics/qtip/internal/adapters/bowtie"
	"github.com/mypersonaltherapeutics/qtip/internal/adapters/fasta"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/combo"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/mutate"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/recovery"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// App is the top-level container wiring all components together.
// Construct with New; Run may be called repeatedly (watch mode reruns
// with the same seed, so read streams stay comparable across runs).
type App struct {
	cfg    Config
	seed   int64
	model  scoring.Model
	policy mutate.Policy
	index  *combo.Index
	source ports.SequenceSource
	store  ports.RunStore // nil when archiving is off
	oracle ports.Oracle   // nil unless cfg.Verify

	surprise *os.File  // nil when no surprise log requested
	errw     io.Writer // diagnostics; os.Stderr outside tests

	newAligner func() (ports.AlignerProcess, error)
}

// New creates an App with all dependencies wired. Nothing runs yet.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := scoring.Parse(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	policy, err := mutate.ParsePolicy(cfg.Sampling)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	idx, err := combo.Build(model, cfg.MinIdentity, cfg.MaxLength)
	if err != nil {
		return nil, fmt.Errorf("building combination index: %w", err)
	}

	source, err := fasta.Load(cfg.Fasta, cfg.MaxRefBases)
	if err != nil {
		return nil, fmt.Errorf("loading references: %w", err)
	}

	a := &App{
		cfg:    cfg,
		seed:   seed,
		model:  model,
		policy: policy,
		index:  idx,
		source: source,
		errw:   os.Stderr,
	}
	if cfg.Verify {
		a.oracle = align.NewOracle(model)
	}
	a.newAligner = func() (ports.AlignerProcess, error) {
		return bowtie.New(bowtie.Config{Exe: cfg.AlignerExe, Args: cfg.AlignerArgs})
	}

	if cfg.DBPath != "" {
		store, err := bbolt.NewStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening run archive: %w", err)
		}
		a.store = store
	}
	if cfg.SurprisePath != "" {
		f, err := os.OpenFile(cfg.SurprisePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			if a.store != nil {
				a.store.Close()
			}
			return nil, fmt.Errorf("opening surprise log: %w", err)
		}
		a.surprise = f
	}

	return a, nil
}

// Close releases the archive and the surprise log.
func (a *App) Close() error {
	var first error
	if a.surprise != nil {
		if err := a.surprise.Close(); err != nil {
			first = err
		}
		a.surprise = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && first == nil {
			first = err
		}
		a.store = nil
	}
	return first
}

// Seed returns the seed runs actually use (resolved when 0 was given).
func (a *App) Seed() int64 {
	return a.seed
}

// Run executes one full evaluation: drive reads through the aligner,
// collect recovery outcomes, archive the result if configured, and
// return the finished record. The context bounds aligner startup only.
func (a *App) Run(ctx context.Context) (*ports.RunRecord, error) {
	started := time.Now()
	rng := rand.New(rand.NewSource(a.seed))

	a.logf("references: %s sequences, %s bases",
		humanize.Comma(int64(a.source.Count())), humanize.Comma(a.source.TotalBases()))

	applier := &mutate.Applier{
		Model:       a.model,
		Rng:         rng,
		Oracle:      a.oracle,
		Verify:      a.cfg.Verify,
		MaxAttempts: a.cfg.MaxAttempts,
		Warnf:       a.warnf,
	}
	mut := &mutate.Mutator{
		Index:   a.index,
		Applier: applier,
		Policy:  a.policy,
		Rng:     rng,
	}

	proc, err := a.newAligner()
	if err != nil {
		return nil, err
	}
	a.logf("aligner command: %s", proc.String())
	if err := proc.Start(ctx); err != nil {
		return nil, err
	}

	collector := recovery.NewCollector(a.sink())
	collector.Start(proc.Output())

	// If collection aborts mid-stream the driver would block forever on
	// a full pipe; closing the input from here unblocks it. On a normal
	// run the input is already closed by then and this is a no-op.
	go func() {
		collector.Wait()
		proc.Input().Close()
	}()

	if err := a.drive(rng, mut, proc.Input()); err != nil {
		// A collector abort surfaces to the driver as a failed write;
		// the protocol error is the root cause, so prefer it.
		if cerr := collector.Wait(); cerr != nil {
			err = fmt.Errorf("collecting results: %w", cerr)
		}
		io.Copy(io.Discard, proc.Output())
		proc.Wait()
		return nil, err
	}

	if err := collector.Wait(); err != nil {
		// The collector stopped reading mid-stream; unblock the aligner
		// before reaping it.
		io.Copy(io.Discard, proc.Output())
		proc.Wait()
		return nil, fmt.Errorf("collecting results: %w", err)
	}
	if err := proc.Wait(); err != nil {
		return nil, err
	}

	tally := collector.Tally()
	correct, incorrect := tally.Totals()
	finished := time.Now()
	a.logf("%s reads in %s: %s recovered, %s failed",
		humanize.Comma(int64(correct+incorrect)),
		finished.Sub(started).Round(time.Millisecond),
		humanize.Comma(int64(correct)), humanize.Comma(int64(incorrect)))

	rec := &ports.RunRecord{
		ID:          fmt.Sprintf("%s-%d", started.UTC().Format("20060102-150405"), a.seed),
		StartedAt:   started,
		FinishedAt:  finished,
		Fasta:       a.cfg.Fasta,
		Scoring:     a.model.String(),
		MinIdentity: a.cfg.MinIdentity,
		NumReads:    a.cfg.NumReads,
		MinLength:   a.cfg.MinLength,
		MaxLength:   a.cfg.MaxLength,
		Policy:      string(a.policy),
		Seed:        a.seed,
		AlignerCmd:  proc.String(),
		ByScore:     tally.Rows(),
		ByScoreLen:  tally.LenRows(),
		Reads:       correct + incorrect,
		Recovered:   correct,
		Failed:      incorrect,
	}

	if a.store != nil {
		if err := a.store.SaveRun(rec); err != nil {
			return nil, fmt.Errorf("archiving run: %w", err)
		}
		a.logf("archived run %s", rec.ID)
	}
	return rec, nil
}

// drive samples, mutates, and submits every read, then closes the
// aligner's input to signal end-of-run.
func (a *App) drive(rng *rand.Rand, mut *mutate.Mutator, input io.WriteCloser) (err error) {
	var pbs *mpb.Progress
	var bar *mpb.Bar
	if a.cfg.Progress {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(a.errw))
		bar = pbs.AddBar(int64(a.cfg.NumReads),
			mpb.PrependDecorators(
				decor.Name("reads ", decor.WC{C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}
	defer func() {
		if bar != nil && err != nil {
			bar.Abort(true)
		}
		if pbs != nil {
			pbs.Wait()
		}
		if cerr := input.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing aligner input: %w", cerr)
		}
	}()

	w := bufio.NewWriter(input)
	for i := 0; i < a.cfg.NumReads; i++ {
		length := a.cfg.MinLength + rng.Intn(a.cfg.MaxLength-a.cfg.MinLength+1)
		read, err := a.source.Sample(rng, length)
		if err != nil {
			return err
		}
		mutated, penalty, err := mut.Mutate(read.Seq)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, ">%s_%d\n%s\n", read.Seq, penalty, mutated); err != nil {
			return fmt.Errorf("writing to aligner: %w", err)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing to aligner: %w", err)
	}
	return nil
}

// sink adapts the surprise log file to the collector's callback.
// Each qualifying failure gets a banner line plus the raw record.
func (a *App) sink() ports.SurpriseSink {
	if a.surprise == nil {
		return nil
	}
	return func(s ports.Surprise) {
		reported := "none"
		if s.HasReported {
			reported = strconv.Itoa(s.Reported)
		}
		fmt.Fprintf(a.surprise, "surprise: reported %s, expected %d\n%s\n",
			reported, s.Expected, s.Record)
	}
}

func (a *App) logf(format string, args ...any) {
	fmt.Fprintf(a.errw, format+"\n", args...)
}

func (a *App) warnf(format string, args ...any) {
	fmt.Fprintf(a.errw, "[warning] "+format+"\n", args...)
}
