// Package processor runs the full polling cycle: fetch the current match
// list, compare it against the stored snapshot, then fan the detected changes
// out to assets, notifications, the change log and the contact sync before
// committing the new snapshot.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/assets"
	"github.com/matchscope/matchscope/pkg/detect"
	"github.com/matchscope/matchscope/pkg/match"
	"github.com/matchscope/matchscope/pkg/notify"
	"github.com/matchscope/matchscope/pkg/snapshot"
)

// Source provides the current upstream match list.
type Source interface {
	FetchMatches(ctx context.Context) ([]match.Match, error)
}

// AssetPipeline generates and uploads the asset bundle for one match.
// Satisfied by *assets.Pipeline.
type AssetPipeline interface {
	ProcessMatch(m match.Match, isNew bool) (*assets.Result, error)
}

// ChangeLog persists field-level change records.
type ChangeLog interface {
	LogChanges(ctx context.Context, changes []detect.Change) error
}

// ContactSyncer re-syncs referee contacts after assignment changes.
type ContactSyncer interface {
	SyncContacts(ctx context.Context) error
}

// Result reports what one cycle did.
type Result struct {
	Processed       bool
	Summary         detect.Summary
	AssetsGenerated int
	Notified        int
	Duration        time.Duration
	Errors          []string
}

// Processor owns the cycle sequence. RunCycle is safe to call from multiple
// goroutines; overlapping invocations are rejected rather than queued.
type Processor struct {
	source    Source
	store     *snapshot.Store
	detector  *detect.Detector
	assets    AssetPipeline
	notifier  *notify.Dispatcher
	changeLog ChangeLog
	phonebook ContactSyncer

	mu       sync.Mutex
	inFlight bool
}

// Option configures optional cycle stages.
type Option func(*Processor)

// WithAssets enables asset generation for new and updated matches.
func WithAssets(p AssetPipeline) Option {
	return func(pr *Processor) { pr.assets = p }
}

// WithNotifier enables notification dispatch.
func WithNotifier(d *notify.Dispatcher) Option {
	return func(pr *Processor) { pr.notifier = d }
}

// WithChangeLog enables durable change logging.
func WithChangeLog(cl ChangeLog) Option {
	return func(pr *Processor) { pr.changeLog = cl }
}

// WithPhonebook enables contact sync after referee-affecting changes.
func WithPhonebook(cs ContactSyncer) Option {
	return func(pr *Processor) { pr.phonebook = cs }
}

// New wires a processor over the mandatory stages. The source, snapshot store
// and detector are always required; everything else is optional.
func New(source Source, store *snapshot.Store, detector *detect.Detector, opts ...Option) *Processor {
	p := &Processor{
		source:   source,
		store:    store,
		detector: detector,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ErrCycleInFlight is returned when RunCycle is called while a previous cycle
// is still running.
var ErrCycleInFlight = fmt.Errorf("a processing cycle is already in flight")

// Busy reports whether a cycle is currently running.
func (p *Processor) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// RunCycle executes one fetch-compare-react-commit pass. The snapshot is only
// saved after the downstream stages had their chance to run, so a crash
// mid-cycle re-detects the same changes on the next pass.
func (p *Processor) RunCycle(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrCycleInFlight
	}
	p.inFlight = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	started := time.Now()
	res := &Result{}

	current, err := p.source.FetchMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match list: %w", err)
	}
	utils.Log.Infof("Fetched %d matches from upstream", len(current))

	previous := p.store.Load()
	res.Summary = p.detector.Compare(previous, current)

	if !res.Summary.HasChanges() {
		utils.Log.Debug("Cycle finished with no changes")
		res.Duration = time.Since(started)
		return res, nil
	}

	p.reactToChanges(ctx, res, current)

	if err := p.store.Save(current); err != nil {
		return res, fmt.Errorf("failed to save snapshot: %w", err)
	}
	res.Processed = true
	res.Duration = time.Since(started)
	utils.Log.Infof("Cycle complete in %s: %d total changes", res.Duration.Round(time.Millisecond), res.Summary.TotalChanges)
	return res, nil
}

// reactToChanges runs the downstream stages. Each stage failure is recorded
// on the result and logged, but never aborts the cycle: a partially delivered
// cycle still commits its snapshot.
func (p *Processor) reactToChanges(ctx context.Context, res *Result, current []match.Match) {
	summary := res.Summary

	if p.assets != nil {
		index := detect.Index(current)
		for _, m := range summary.NewMatches {
			p.runAssets(res, m, true)
		}
		for _, mc := range summary.UpdatedMatches {
			if m, ok := index[mc.MatchID]; ok {
				p.runAssets(res, m, false)
			}
		}
	}

	if p.notifier != nil && p.notifier.Enabled() {
		res.Notified = p.notifier.DispatchSummary(ctx, summary)
	}

	if p.changeLog != nil {
		if err := p.changeLog.LogChanges(ctx, summary.Changes); err != nil {
			p.recordError(res, fmt.Sprintf("change log write failed: %v", err))
		}
	}

	if p.phonebook != nil && refereesAffected(summary) {
		if err := p.phonebook.SyncContacts(ctx); err != nil {
			p.recordError(res, fmt.Sprintf("phonebook sync failed: %v", err))
		}
	}
}

func (p *Processor) runAssets(res *Result, m match.Match, isNew bool) {
	out, err := p.assets.ProcessMatch(m, isNew)
	if err != nil {
		p.recordError(res, fmt.Sprintf("asset generation for match %s failed: %v", m.ID, err))
		return
	}
	if out != nil {
		res.AssetsGenerated++
	}
}

func (p *Processor) recordError(res *Result, msg string) {
	utils.Log.Error(msg)
	res.Errors = append(res.Errors, msg)
}

// refereesAffected reports whether the cycle saw new matches or any change
// that touches referee assignments.
func refereesAffected(summary detect.Summary) bool {
	if len(summary.NewMatches) > 0 {
		return true
	}
	for _, c := range summary.Changes {
		if c.Category == detect.CategoryNewAssignment || c.Category == detect.CategoryRefereeChange {
			return true
		}
	}
	return false
}
