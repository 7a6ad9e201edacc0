package model

import "time"

// ConnectionTTL caps how long a registry record may outlive its channel.
const ConnectionTTL = 24 * time.Hour

// Connection is the registry record for one live client channel. The channel
// itself is owned by the edge; a record with no matching live channel is
// stale and any delivery attempt against it is the signal to delete it.
type Connection struct {
	ID           string    `json:"connectionId"`
	UserID       *string   `json:"userId,omitempty"`
	ConnectedAt  time.Time `json:"connectedAt"`
	LastActivity time.Time `json:"lastActivity"`
}
