package model

// PlayerID identifies a player across every tracker.
// It is either a request fingerprint or an identifier previously issued to the client.
type PlayerID string
