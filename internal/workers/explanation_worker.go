package workers

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/logging"
	gormModels "aero-rhythm/crewops/internal/models/gorm"
	"aero-rhythm/crewops/internal/providers"
)

// renderTimeout bounds a single narrative render call.
const renderTimeout = 30 * time.Second

// ExplanationWorker drains the render queue: for each explanation id it loads
// the structured record, calls the narrative provider and stores the prose.
// A failed render marks the row failed; the structured payload stays servable
// either way, so roster generation never waits on this path.
type ExplanationWorker struct {
	queue    chan string
	expls    *repositories.ExplanationRepository
	provider providers.NarrativeProvider
}

func NewExplanationWorker(queueSize int, expls *repositories.ExplanationRepository, provider providers.NarrativeProvider) *ExplanationWorker {
	return &ExplanationWorker{
		queue:    make(chan string, queueSize),
		expls:    expls,
		provider: provider,
	}
}

// Enqueue hands an explanation id to the worker without blocking the caller.
// When the queue is full the id is dropped; the row stays pending and serves
// its structured placeholder.
func (w *ExplanationWorker) Enqueue(explanationID string) {
	select {
	case w.queue <- explanationID:
	default:
		logging.Warn("Explanation render queue full, dropping", "explanation_id", explanationID)
	}
}

// Start runs the render loop until ctx is cancelled.
func (w *ExplanationWorker) Start(ctx context.Context) {
	logging.Info("Explanation worker started", "provider", w.provider.GetProviderType())
	for {
		select {
		case <-ctx.Done():
			logging.Info("Explanation worker stopping")
			return
		case id := <-w.queue:
			w.renderOne(ctx, id)
		}
	}
}

func (w *ExplanationWorker) renderOne(ctx context.Context, id string) {
	renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	row, err := w.expls.Get(renderCtx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Warn("Explanation vanished before render", "explanation_id", id)
		return
	}
	if err != nil {
		logging.Error("Explanation load failed", "explanation_id", id, "error", err)
		return
	}
	if row.RenderState == gormModels.RenderRendered {
		return
	}

	record, err := w.expls.Record(row)
	if err != nil {
		logging.Error("Explanation payload unreadable", "explanation_id", id, "error", err)
		w.markFailed(renderCtx, id)
		return
	}

	prose, err := w.provider.Render(renderCtx, *record)
	if err != nil {
		logging.Warn("Narrative render failed", "explanation_id", id, "error", err)
		w.markFailed(renderCtx, id)
		return
	}

	if err := w.expls.AttachProse(renderCtx, id, &prose, gormModels.RenderRendered); err != nil {
		logging.Error("Explanation prose write failed", "explanation_id", id, "error", err)
	}
}

func (w *ExplanationWorker) markFailed(ctx context.Context, id string) {
	if err := w.expls.AttachProse(ctx, id, nil, gormModels.RenderFailed); err != nil {
		logging.Error("Explanation state write failed", "explanation_id", id, "error", err)
	}
}
