// Package randid generates the opaque, high-entropy identifiers used as
// authorization codes, access tokens, refresh handles and JWT ids. A UUIDv4
// carries 122 bits of randomness, meeting spec's minimum-entropy requirement
// for every opaque identifier in the system.
package randid

import "github.com/google/uuid"

// New returns a fresh cryptographically random opaque identifier.
func New() string {
	return uuid.New().String()
}
