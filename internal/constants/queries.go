package constants

const (
	GetCrewByID = `
	SELECT * FROM crew WHERE id = $1
	`

	ListCrew = `
	SELECT * FROM crew ORDER BY id
	`

	UpdateCrewStatus = `
	UPDATE crew
	SET status = $2, version = version + 1, updated_at = NOW()
	WHERE id = $1 AND version = $3
	`

	UpdateCrewDutyTotals = `
	UPDATE crew
	SET weekly_duty_hours = $2, monthly_duty_hours = $3, last_rest_end = $4,
	    version = version + 1, updated_at = NOW()
	WHERE id = $1 AND version = $5
	`

	GetFlightByID = `
	SELECT * FROM flights WHERE id = $1
	`

	ListFlightsByWindow = `
	SELECT * FROM flights
	WHERE departure < $2 AND arrival > $1
	ORDER BY departure, id
	`

	ListLegsByFlight = `
	SELECT * FROM flight_legs WHERE flight_id = $1 ORDER BY sequence
	`

	InsertAssignment = `
	INSERT INTO rosters (
		id, crew_id, flight_id, duty_type, position,
		start, "end", status, confidence, violations, explanation_id, version
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
	RETURNING created_at, updated_at
	`

	GetAssignmentByID = `
	SELECT * FROM rosters WHERE id = $1
	`

	ListAssignmentsByWindow = `
	SELECT * FROM rosters
	WHERE start < $2 AND "end" > $1
	ORDER BY start, id
	LIMIT $3 OFFSET $4
	`

	CountAssignmentsByWindow = `
	SELECT COUNT(*) FROM rosters WHERE start < $2 AND "end" > $1
	`

	ListActiveAssignmentsByCrew = `
	SELECT * FROM rosters
	WHERE crew_id = $1 AND status <> 'cancelled' AND "end" > $2
	ORDER BY start, id
	`

	ListAssignmentHistoryByCrew = `
	SELECT * FROM rosters
	WHERE crew_id = $1 AND status <> 'cancelled' AND "end" > $2 AND start < $3
	ORDER BY start, id
	`

	UpdateAssignmentStatus = `
	UPDATE rosters
	SET status = $2, confidence = $3, version = version + 1, updated_at = NOW()
	WHERE id = $1 AND version = $4
	`

	ListApprovedLeaveByCrew = `
	SELECT * FROM leave_requests
	WHERE crew_id = $1 AND status = 'approved' AND start < $3 AND "end" > $2
	ORDER BY start, id
	`

	UpdateLeaveStatus = `
	UPDATE leave_requests SET status = $2 WHERE id = $1
	`

	ListCertificationsByCrew = `
	SELECT * FROM certifications WHERE crew_id = $1 ORDER BY expires_at DESC, id
	`

	InsertCertification = `
	INSERT INTO certifications (id, crew_id, type, aircraft_type, issued_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`

	ListCertificationsExpiringBetween = `
	SELECT * FROM certifications
	WHERE expires_at >= $1 AND expires_at < $2
	ORDER BY expires_at, id
	`

	GetStatusByApiKey = `
	SELECT * FROM api_keys WHERE key_hash = $1
	`
)
