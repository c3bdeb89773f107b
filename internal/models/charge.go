package models

import "time"

// ChargeRecord is the transaction committed for one completed charging
// session. It appears both in the user's history and as a block payload.
type ChargeRecord struct {
	_         struct{}  `cbor:",toarray"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	StationID string    `json:"station_id"`
	Units     int64     `json:"units"`
	Rate      int64     `json:"rate"`
	Cost      int64     `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}
