package jobs

import (
	"context"
	"time"

	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/logging"
	"aero-rhythm/crewops/internal/metrics"
)

// CertExpiryJob sweeps for certifications whose expiry boundary crossed since
// the previous tick and drops the affected crew from the eligibility index.
// Without the sweep a cached snapshot could keep serving a crew member whose
// type rating lapsed between builds.
type CertExpiryJob struct {
	certs    *repositories.CertificationRepository
	index    *eligibility.Index
	metrics  *metrics.MetricsRegistry
	lastTick time.Time
}

func NewCertExpiryJob(certs *repositories.CertificationRepository, index *eligibility.Index, reg *metrics.MetricsRegistry) *CertExpiryJob {
	return &CertExpiryJob{
		certs:   certs,
		index:   index,
		metrics: reg,
	}
}

// Run processes one sweep interval ending now.
func (j *CertExpiryJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	from := j.lastTick
	if from.IsZero() {
		from = now.Add(-time.Hour)
	}

	expired, err := j.certs.ExpiringBetween(ctx, from, now)
	if err != nil {
		logging.Error("Certification expiry sweep failed", "error", err)
		return err
	}
	j.lastTick = now

	if len(expired) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(expired))
	for _, cert := range expired {
		if _, dup := seen[cert.CrewID]; dup {
			continue
		}
		seen[cert.CrewID] = struct{}{}
		j.index.InvalidateCrew(cert.CrewID)
		if j.metrics != nil {
			j.metrics.EligibilityInvalidations.Inc()
		}
	}

	logging.Info("Certification expiry sweep completed",
		"expired_certifications", len(expired),
		"crew_invalidated", len(seen),
	)
	return nil
}

// RunScheduled runs the sweep on a fixed interval until ctx is cancelled.
func (j *CertExpiryJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Info("Certification expiry job scheduled", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logging.Info("Certification expiry job stopping")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
