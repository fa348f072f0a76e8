// Package pipeline drives each topic through generation, validation,
// scoring and deduplication, and renders the final accept/reject
// decision. Topics are independent; the only state shared across them
// is the append-only corpus, and the read-decide-append sequence on it
// is a single critical section per acceptance.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"geogate/internal/article"
	"geogate/internal/dedup"
	"geogate/internal/generator"
	"geogate/internal/observability"
	"geogate/internal/scorer"
	"geogate/internal/topics"
)

// Status is the terminal state of one topic.
type Status string

const (
	StatusAccepted          Status = "accepted"
	StatusRejectedDuplicate Status = "rejected_duplicate"
	StatusRejectedStructure Status = "rejected_structure"
	StatusFailed            Status = "failed"
)

// Result is the terminal record for one topic. Exactly one Result is
// produced per input topic, whatever happens.
type Result struct {
	Topic             topics.Topic
	Status            Status
	Candidate         *generator.Candidate
	Document          *article.Document
	Score             *scorer.Report
	NearestSimilarity float64
	Err               error
}

// ContextProvider supplies optional research context injected into the
// generation prompt. Implementations must degrade to "" on failure.
type ContextProvider interface {
	Context(ctx context.Context, t topics.Topic) string
}

// Options tune a pipeline run.
type Options struct {
	// Workers is the size of the topic worker pool. Values <= 1 run
	// topics sequentially.
	Workers int
	// Research, when set, enriches prompts with web context.
	Research ContextProvider
}

// Pipeline wires the four stages together.
type Pipeline struct {
	gen      *generator.Generator
	scorer   *scorer.Scorer
	dedup    *dedup.Deduplicator
	index    dedup.Index
	research ContextProvider
	workers  int
	logger   *slog.Logger

	// acceptMu serializes read-corpus, decide, append. Without it two
	// near-identical candidates racing through the check would both
	// pass against a corpus snapshot that excludes each other.
	acceptMu sync.Mutex

	fatalOnce sync.Once
	fatalErr  error
	cancelRun context.CancelFunc
}

// New constructs a Pipeline.
func New(gen *generator.Generator, sc *scorer.Scorer, dd *dedup.Deduplicator, index dedup.Index, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		gen:      gen,
		scorer:   sc,
		dedup:    dd,
		index:    index,
		research: opts.Research,
		workers:  workers,
		logger:   logger,
	}
}

// Run processes every topic and returns one Result per topic, in input
// order, plus the aggregate summary. The returned error is non-nil
// only for run-fatal conditions (corpus access failure); per-topic
// failures are carried in the results, never thrown across topics.
func (p *Pipeline) Run(ctx context.Context, list []topics.Topic) ([]Result, Summary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.cancelRun = cancel

	results := make([]Result, len(list))

	if p.workers == 1 || len(list) == 1 {
		for i, t := range list {
			results[i] = p.processTopic(runCtx, t)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < p.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = p.processTopic(runCtx, list[i])
				}
			}()
		}
		for i := range list {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	return results, Summarize(results), p.fatalErr
}

// failRun records a run-fatal error and cancels in-flight topics.
// Treating a corpus failure as "not a duplicate" would silently break
// the uniqueness guarantee, so the whole run stops instead.
func (p *Pipeline) failRun(err error) {
	p.fatalOnce.Do(func() {
		p.fatalErr = err
		if p.cancelRun != nil {
			p.cancelRun()
		}
	})
}

func (p *Pipeline) processTopic(ctx context.Context, t topics.Topic) Result {
	res := Result{Topic: t}
	log := p.logger.With(slog.String("topic", t.Title), slog.String("topic_id", t.ID))

	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	// Generating.
	researchContext := ""
	if p.research != nil {
		researchContext = p.research.Context(ctx, t)
	}

	genCtx, span := observability.StartPhaseSpan(ctx, "generate", t.ID)
	candidate, err := p.gen.Generate(genCtx, t, researchContext)
	span.End()
	if err != nil {
		log.Error("generation failed", slog.Any("error", err))
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.Candidate = candidate
	log.Info("candidate generated",
		slog.Int("attempts", candidate.AttemptCount),
		slog.Duration("elapsed", candidate.Elapsed))

	// Validating.
	_, span = observability.StartPhaseSpan(ctx, "validate", t.ID)
	doc, err := article.Validate(candidate.Text)
	span.End()
	if err != nil {
		if errors.Is(err, article.ErrUnparsable) {
			log.Warn("candidate unparsable")
			res.Status = StatusRejectedStructure
			res.Err = err
			return res
		}
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.Document = doc
	if len(doc.MissingSections) > 0 {
		log.Warn("candidate has structural gaps", slog.Int("missing_sections", len(doc.MissingSections)))
	}

	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	// Deduplicating: the embedding call runs outside the critical
	// section; only read-decide-append is serialized.
	embedCtx, span := observability.StartPhaseSpan(ctx, "embed", t.ID)
	vec, err := p.dedup.EmbedDocument(embedCtx, doc)
	span.End()
	if err != nil {
		log.Error("embedding failed", slog.Any("error", err))
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	_, span = observability.StartPhaseSpan(ctx, "dedup", t.ID)
	sim, duplicate, appendErr, err := p.checkAndAppend(ctx, t, vec)
	span.End()
	if err != nil {
		p.failRun(err)
		log.Error("corpus access failed", slog.Any("error", err))
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	res.NearestSimilarity = sim

	// Scoring. The duplication sub-score uses the similarity just
	// measured, so rejected duplicates still get a full report.
	_, span = observability.StartPhaseSpan(ctx, "score", t.ID)
	report := p.scorer.Score(doc, sim)
	span.End()
	res.Score = &report

	if duplicate {
		log.Warn("duplicate rejected",
			slog.Float64("nearest_similarity", sim),
			slog.Float64("threshold", p.dedup.Threshold()))
		res.Status = StatusRejectedDuplicate
		return res
	}
	if appendErr != nil {
		p.failRun(appendErr)
		res.Status = StatusFailed
		res.Err = appendErr
		return res
	}

	log.Info("topic accepted",
		slog.Int("score", report.Total),
		slog.Float64("nearest_similarity", sim))
	res.Status = StatusAccepted
	return res
}

// checkAndAppend runs the corpus critical section: read the nearest
// similarity, decide, and append when accepted. appendErr is separated
// from err so a failed write after a clean decision is still reported
// as run-fatal.
func (p *Pipeline) checkAndAppend(ctx context.Context, t topics.Topic, vec []float32) (sim float64, duplicate bool, appendErr, err error) {
	p.acceptMu.Lock()
	defer p.acceptMu.Unlock()

	sim, duplicate, err = p.dedup.Evaluate(ctx, vec)
	if err != nil {
		return 0, false, nil, err
	}
	if duplicate {
		return sim, true, nil, nil
	}

	appendErr = p.index.Append(ctx, dedup.Entry{
		ID:         uuid.NewString(),
		TopicID:    t.ID,
		Embedding:  vec,
		AcceptedAt: time.Now().UTC(),
	})
	return sim, false, appendErr, nil
}
