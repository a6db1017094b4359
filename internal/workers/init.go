package workers

import (
	"context"

	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/providers"
)

// renderQueueSize bounds how many explanations can wait for prose rendering.
const renderQueueSize = 256

type WorkersContainer struct {
	Explanations *ExplanationWorker
}

// InitWorkers builds and starts every background worker.
func InitWorkers(
	ctx context.Context,
	expls *repositories.ExplanationRepository,
	provider providers.NarrativeProvider,
) *WorkersContainer {
	expWorker := NewExplanationWorker(renderQueueSize, expls, provider)
	go expWorker.Start(ctx)

	return &WorkersContainer{
		Explanations: expWorker,
	}
}
