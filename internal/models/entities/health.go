package entities

import "time"

type HealthStatus struct {
	Status      string    `json:"status"`
	DBConnected bool      `json:"db_connected"`
	UpSince     time.Time `json:"up_since"`
	UptimeSec   int64     `json:"uptime_sec"`
}
