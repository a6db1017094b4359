package jobs

import (
	"context"
	"time"

	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/metrics"
)

// InitializeJobs builds and starts every scheduled background job.
func InitializeJobs(
	ctx context.Context,
	certs *repositories.CertificationRepository,
	index *eligibility.Index,
	reg *metrics.MetricsRegistry,
) *CertExpiryJob {
	certJob := NewCertExpiryJob(certs, index, reg)
	go certJob.RunScheduled(ctx, 15*time.Minute)

	return certJob
}
