package session

import (
	"context"
	"errors"

	"tlsn-prover/artifacts"
	"tlsn-prover/engine"
	"tlsn-prover/providers"
	"tlsn-prover/shared"
)

// Verifier checks a stored presentation against the provider identity it
// claims and the notary trust root. Verification is read-only: it never
// mutates stored artifacts.
type Verifier struct {
	engine    engine.Engine
	store     Store
	trustRoot []byte
	logger    *shared.Logger
}

func NewVerifier(eng engine.Engine, store Store, trustRoot []byte, logger *shared.Logger) *Verifier {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	return &Verifier{engine: eng, store: store, trustRoot: trustRoot, logger: logger}
}

// Verify loads the presentation for (provider, resource) and delegates the
// cryptographic check to the engine. Provider/identity mismatches are
// rejected here, before the engine is ever invoked.
func (v *Verifier) Verify(ctx context.Context, provider providers.Provider, resourceID string) ResultCode {
	if _, err := providers.ParseProvider(int32(provider)); err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}
	if resourceID == "" {
		return fail(CodeInvalidArgument, "resource identifier must not be empty")
	}

	id := artifacts.Identity{Provider: provider, ResourceID: resourceID}
	log := v.logger.WithResource(provider.String(), resourceID)

	presentation, err := v.store.Load(artifacts.KindPresentation, id)
	switch {
	case err == nil:
		// fall through to the engine check
	case errors.Is(err, artifacts.ErrIdentityMismatch):
		return fail(CodeInvalidProvider, "presentation for %s was created for a different identity", id)
	case errors.Is(err, artifacts.ErrNotFound):
		// A presentation stored under another provider for the same
		// resource is a provider mismatch, not a missing artifact.
		for _, other := range providers.Registered() {
			if other == provider {
				continue
			}
			if v.store.Exists(artifacts.KindPresentation, artifacts.Identity{Provider: other, ResourceID: resourceID}) {
				return fail(CodeInvalidProvider,
					"presentation for resource %q belongs to provider %s, not %s", resourceID, other, provider)
			}
		}
		return fail(CodeNotFound, "no presentation found for %s", id)
	case errors.Is(err, artifacts.ErrCorrupt):
		return fail(CodeCorrupt, "stored presentation for %s is corrupt: %v", id, err)
	default:
		return fail(CodeStorageFailure, "failed to load presentation for %s: %v", id, err)
	}

	host, _, err := providers.Host(provider)
	if err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}

	if err := v.engine.Check(ctx, presentation, host, v.trustRoot); err != nil {
		if errors.Is(err, engine.ErrCheckFailed) {
			return fail(CodeVerificationFailed, "presentation for %s failed verification", id)
		}
		return fail(CodeNetworkOrProtocolFailure, "verification could not complete: %v", err)
	}

	log.Info("presentation verified")
	return Ok
}
