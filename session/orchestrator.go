package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tlsn-prover/artifacts"
	"tlsn-prover/engine"
	"tlsn-prover/providers"
	"tlsn-prover/shared"
)

// Params carries the per-call inputs for a prove/present operation. Cookie
// and AccessToken are sensitive: they are handed to the provider registry
// and the engine for the duration of the call and never logged, persisted or
// embedded in error messages.
type Params struct {
	ResourceID  string
	ProfileID   string
	Cookie      string
	AccessToken string
	Config      shared.ConnectionConfig
}

// Store is the artifact persistence contract the orchestrators need.
// *artifacts.Store satisfies it; tests substitute counting or failing stubs.
type Store interface {
	Save(kind artifacts.Kind, id artifacts.Identity, payload []byte) error
	Load(kind artifacts.Kind, id artifacts.Identity) ([]byte, error)
	Exists(kind artifacts.Kind, id artifacts.Identity) bool
}

// Orchestrator drives the notarization engine through the session-proof
// lifecycle: connect, notarize, disclose, persist. Its own logic is
// synchronous per call; concurrent calls targeting different identities run
// independently, same-identity calls serialize inside the store.
type Orchestrator struct {
	engine engine.Engine
	store  Store
	logger *shared.Logger
}

func NewOrchestrator(eng engine.Engine, store Store, logger *shared.Logger) *Orchestrator {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	return &Orchestrator{engine: eng, store: store, logger: logger}
}

// Run executes one lifecycle call. All parameter validation happens before
// any engine or I/O call; on failure the error channel carries the cause and
// the filesystem holds no partial artifacts (a prove-to-present disclosure
// failure leaves the already-saved attestation valid and retrievable).
func (o *Orchestrator) Run(ctx context.Context, mode Mode, provider providers.Provider, params *Params) ResultCode {
	if _, err := ParseMode(int32(mode)); err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}
	if _, err := providers.ParseProvider(int32(provider)); err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}
	if params == nil || params.ResourceID == "" {
		return fail(CodeInvalidArgument, "resource identifier must not be empty")
	}

	reqParams := &providers.RequestParams{
		ResourceID:  params.ResourceID,
		ProfileID:   params.ProfileID,
		Cookie:      params.Cookie,
		AccessToken: params.AccessToken,
		UserAgent:   params.Config.UserAgent,
	}

	// Presentation alone needs no auth material; the proving modes are
	// validated against the provider's schema before anything else runs.
	if mode != ModePresent {
		if err := providers.ValidateParams(provider, reqParams); err != nil {
			return fail(CodeInvalidArgument, "%v", err)
		}
	}

	id := artifacts.Identity{Provider: provider, ResourceID: params.ResourceID}
	log := o.logger.WithResource(provider.String(), params.ResourceID)

	switch mode {
	case ModeProve:
		_, code := o.prove(ctx, provider, id, reqParams, params.Config, log)
		return code

	case ModePresent:
		return o.present(ctx, provider, id, nil, log)

	case ModeProveToPresent:
		ns, code := o.prove(ctx, provider, id, reqParams, params.Config, log)
		if code != Ok {
			return code
		}
		// Phase two works from the in-memory session; a failure here is
		// reported, but the attestation committed in phase one stays on
		// disk for a later present call.
		return o.present(ctx, provider, id, ns, log)
	}
	return fail(CodeInvalidArgument, "invalid mode value %d", int32(mode))
}

// prove runs the notarized session and commits attestation plus secrets.
func (o *Orchestrator) prove(ctx context.Context, provider providers.Provider, id artifacts.Identity, reqParams *providers.RequestParams, cfg shared.ConnectionConfig, log *zap.Logger) (*engine.NotarizedSession, ResultCode) {
	spec, err := providers.BuildRequest(provider, reqParams)
	if err != nil {
		return nil, fail(CodeInvalidArgument, "%v", err)
	}

	cfg = cfg.ApplyDefaults()
	log.Info("starting notarized session",
		zap.String("host", spec.Host),
		zap.String("notary", cfg.NotaryHost))

	ns, err := o.engine.OpenSession(ctx, spec, cfg)
	if err != nil {
		return nil, fail(CodeNetworkOrProtocolFailure, "notarized session failed: %v", err)
	}

	if err := o.store.Save(artifacts.KindAttestation, id, ns.Attestation); err != nil {
		return nil, fail(CodeStorageFailure, "failed to save attestation: %v", err)
	}
	if err := o.store.Save(artifacts.KindSecrets, id, ns.Secrets); err != nil {
		return nil, fail(CodeStorageFailure, "failed to save prover secrets: %v", err)
	}

	log.Info("attestation saved")
	return ns, Ok
}

// present derives and commits a presentation. With a nil session it reloads
// the stored attestation and secrets; otherwise it discloses directly from
// the in-memory session of a prove-to-present call.
func (o *Orchestrator) present(ctx context.Context, provider providers.Provider, id artifacts.Identity, ns *engine.NotarizedSession, log *zap.Logger) ResultCode {
	if ns == nil {
		attestation, code := o.loadArtifact(artifacts.KindAttestation, id)
		if code != Ok {
			return code
		}
		secrets, code := o.loadArtifact(artifacts.KindSecrets, id)
		if code != Ok {
			return code
		}

		var err error
		ns, err = o.engine.ReopenSession(attestation, secrets)
		if err != nil {
			return fail(CodeNetworkOrProtocolFailure, "failed to reopen stored session: %v", err)
		}
		log.Info("loaded stored attestation for presentation")
	}

	policy := buildDisclosurePolicy(provider, ns)
	presentation, err := o.engine.Disclose(ctx, ns, policy)
	if err != nil {
		return fail(CodeNetworkOrProtocolFailure, "selective disclosure failed: %v", err)
	}

	if err := o.store.Save(artifacts.KindPresentation, id, presentation); err != nil {
		return fail(CodeStorageFailure, "failed to save presentation: %v", err)
	}

	log.Info("presentation saved",
		zap.Int("sent_ranges", len(policy.SentRanges)),
		zap.Int("recv_ranges", len(policy.RecvRanges)))
	return Ok
}

// loadArtifact maps store errors onto the result taxonomy.
func (o *Orchestrator) loadArtifact(kind artifacts.Kind, id artifacts.Identity) ([]byte, ResultCode) {
	data, err := o.store.Load(kind, id)
	switch {
	case err == nil:
		return data, Ok
	case errors.Is(err, artifacts.ErrNotFound):
		return nil, fail(CodeNotFound, "no %s found for %s; run prove first", kind, id)
	case errors.Is(err, artifacts.ErrCorrupt), errors.Is(err, artifacts.ErrIdentityMismatch):
		return nil, fail(CodeCorrupt, "stored %s for %s is unusable: %v", kind, id, err)
	default:
		return nil, fail(CodeStorageFailure, "failed to load %s for %s: %v", kind, id, err)
	}
}

// buildDisclosurePolicy resolves the provider's markers over the session
// transcripts: the host header on the sent side, the provider's payment
// fields on the received side.
func buildDisclosurePolicy(provider providers.Provider, ns *engine.NotarizedSession) engine.DisclosurePolicy {
	var policy engine.DisclosurePolicy
	if r, ok := providers.FindHostHeaderRange(ns.Sent); ok {
		policy.SentRanges = append(policy.SentRanges, r)
	}
	policy.RecvRanges = providers.FindFieldRanges(ns.Received, provider)
	return policy
}
