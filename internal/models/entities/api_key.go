package entities

import "time"

// ApiKey guards the service-to-service API surface. Authentication of end
// users is an external collaborator; this is only the machine credential.
type ApiKey struct {
	ID        string    `db:"id" json:"id"`
	KeyHash   string    `db:"key_hash" json:"-"`
	Label     string    `db:"label" json:"label"`
	Status    bool      `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
