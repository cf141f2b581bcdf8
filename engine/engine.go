// Package engine defines the boundary to the notarization engine: the
// external collaborator that runs the MPC-TLS handshake with the notary,
// produces signed transcript commitments, derives selective disclosures and
// verifies them. Everything cryptographic lives behind this interface; the
// orchestration layer only sequences it.
package engine

import (
	"context"
	"errors"

	"tlsn-prover/providers"
	"tlsn-prover/shared"
)

// ErrCheckFailed is returned by Check when the presentation is well-formed
// but does not verify against the notary trust root.
var ErrCheckFailed = errors.New("presentation verification failed")

// NotarizedSession is the engine's output for one notarized exchange: the
// signed attestation, the prover secrets needed to open commitments later,
// and the plaintext transcripts used to resolve disclosure markers. The
// Attestation and Secrets byte slices are opaque to callers.
type NotarizedSession struct {
	Attestation []byte
	Secrets     []byte

	Sent     []byte
	Received []byte
}

// DisclosurePolicy names the transcript ranges a presentation reveals.
// Everything outside these ranges stays redacted.
type DisclosurePolicy struct {
	SentRanges []providers.IndexRange `json:"sent_ranges"`
	RecvRanges []providers.IndexRange `json:"recv_ranges"`
}

// Engine is the notarization engine contract. All operations block until the
// engine completes or fails; the engine's own timeouts and the configured
// byte budgets govern termination.
type Engine interface {
	// OpenSession runs a full notarized TLS session: connect to the notary,
	// establish the MPC-TLS connection to the target, exchange the request,
	// finalize the transcript commitment and obtain the signed attestation.
	OpenSession(ctx context.Context, spec *providers.RequestSpec, cfg shared.ConnectionConfig) (*NotarizedSession, error)

	// ReopenSession reconstructs a session from stored attestation and
	// secrets bytes, without any network access.
	ReopenSession(attestation, secrets []byte) (*NotarizedSession, error)

	// Disclose derives a selectively disclosed presentation from a session.
	// No network session with the target is involved.
	Disclose(ctx context.Context, session *NotarizedSession, policy DisclosurePolicy) ([]byte, error)

	// Check verifies a presentation against the server identity it claims
	// and the notary trust root. Returns ErrCheckFailed when the
	// presentation does not check out.
	Check(ctx context.Context, presentation []byte, serverHost string, trustRoot []byte) error

	// Close releases any connection the engine holds. Idempotent.
	Close() error
}
