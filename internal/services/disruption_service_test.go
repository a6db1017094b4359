package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/config"
	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/db/repositories"
	"aero-rhythm/crewops/internal/eligibility"
	"aero-rhythm/crewops/internal/engine"
	"aero-rhythm/crewops/internal/models/dtos"
	"aero-rhythm/crewops/internal/models/entities"
	gormModels "aero-rhythm/crewops/internal/models/gorm"
	"aero-rhythm/crewops/internal/rules"
)

// staticStore satisfies eligibility.Store for tests that never run a
// replacement search.
type staticStore struct{}

func (staticStore) ListCrew(ctx context.Context) ([]entities.CrewMember, error) {
	return nil, nil
}

func (staticStore) CrewState(ctx context.Context, crewID string, window entities.TimeWindow) (*rules.CrewState, error) {
	return &rules.CrewState{}, nil
}

type disruptionFixture struct {
	svc   *DisruptionService
	mock  sqlmock.Sqlmock
	cache common.CacheInterface
}

func newDisruptionFixture(t *testing.T) *disruptionFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&gormModels.DisruptionEvent{}, &gormModels.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rosters, mock := newMockRosters(t)
	cache := common.NewCacheService(60, 600)
	index := eligibility.New(staticStore{}, cache)

	svc := NewDisruptionService(config.DefaultEngineConfig(),
		nil, index, nil,
		repositories.NewDisruptionRepository(db), rosters, nil,
		repositories.NewAuditRepository(db),
		engine.NewPartitionLocks(), cache, nil)

	return &disruptionFixture{svc: svc, mock: mock, cache: cache}
}

// seedDelay stores an active event and a previewed delay recommendation the
// way a resolve call would have.
func (f *disruptionFixture) seedDelay(t *testing.T, start time.Time) dtos.Recommendation {
	t.Helper()

	event := entities.DisruptionEvent{
		ID:              "evt-1",
		Type:            entities.DisruptionWeather,
		Severity:        entities.SeverityMedium,
		AffectedFlights: []string{"flt-1"},
		DetectedAt:      start.Add(-time.Hour),
		Status:          entities.DisruptionActive,
	}
	if err := f.svc.events.Create(context.Background(), &event); err != nil {
		t.Fatal(err)
	}

	newStart := start.Add(90 * time.Minute).Format(time.RFC3339)
	newEnd := start.Add(90*time.Minute + 3*time.Hour).Format(time.RFC3339)
	rec := dtos.Recommendation{
		ID:           "rec-1",
		Action:       dtos.ActionDelayDeparture,
		AssignmentID: "a-1",
		FlightID:     "flt-1",
		Confidence:   1.0,
		NewStart:     &newStart,
		NewEnd:       &newEnd,
	}
	f.cache.Set(string(constants.CachePrefixRecommend)+rec.ID,
		cachedRecommendation{EventID: event.ID, Recommendation: rec}, time.Minute)
	return rec
}

func (f *disruptionFixture) expectAssignmentLookup(start time.Time) {
	flightID := "flt-1"
	f.mock.ExpectQuery(`SELECT \* FROM rosters`).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(assignmentColumns).
			AddRow("a-1", "cpt-1", flightID, string(entities.DutyFlight), string(entities.PositionCaptain),
				start, start.Add(3*time.Hour), string(entities.AssignmentConfirmed), 1.0, []byte("[]"),
				nil, 1, start, start))
}

func TestApplyDelayCommitsShiftAtomicallyWithExplanation(t *testing.T) {
	f := newDisruptionFixture(t)
	start := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rec := f.seedDelay(t, start)

	successorID := engine.NewAppliedAssignmentID(rec.ID)
	wantExplID := engine.NewExplanationID(successorID)

	f.expectAssignmentLookup(start)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE rosters").
		WithArgs("a-1", string(entities.AssignmentCancelled), 0.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery("INSERT INTO rosters").
		WithArgs(successorID, "cpt-1", "flt-1", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), wantExplID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(start, start))
	f.mock.ExpectCommit()

	applied, err := f.svc.ApplyRecommendation(context.Background(), "evt-1",
		dtos.ApplyRecommendationRequest{RecommendationID: rec.ID})
	if err != nil {
		t.Fatal(err)
	}

	if applied.Assignment.ExplanationID == nil || *applied.Assignment.ExplanationID != wantExplID {
		t.Fatalf("shifted successor must carry a derived explanation id, got %+v",
			applied.Assignment.ExplanationID)
	}
	if applied.Assignment.ID != successorID {
		t.Fatalf("successor id must derive from the recommendation, got %s", applied.Assignment.ID)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cancel and successor insert must share one transaction: %v", err)
	}
}

func TestApplyDelayRollsBackCancelWhenInsertFails(t *testing.T) {
	f := newDisruptionFixture(t)
	start := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rec := f.seedDelay(t, start)

	f.expectAssignmentLookup(start)
	f.mock.ExpectBegin()
	f.mock.ExpectExec("UPDATE rosters").
		WithArgs("a-1", string(entities.AssignmentCancelled), 0.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery("INSERT INTO rosters").
		WillReturnError(errors.New("connection reset"))
	f.mock.ExpectRollback()

	_, err := f.svc.ApplyRecommendation(context.Background(), "evt-1",
		dtos.ApplyRecommendationRequest{RecommendationID: rec.ID})
	if err == nil {
		t.Fatal("a failed successor insert must fail the apply")
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("the cancel must roll back with the failed insert: %v", err)
	}
}
