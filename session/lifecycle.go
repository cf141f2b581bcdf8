package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"tlsn-prover/artifacts"
	"tlsn-prover/engine"
	"tlsn-prover/providers"
	"tlsn-prover/shared"
)

// Process-wide runtime state guarded by Initialize/Cleanup. Initialize and
// Cleanup are mutually exclusive; a second concurrent Initialize observes
// AlreadyInitialized rather than blocking (deterministic reject).
type runtime struct {
	engine       engine.Engine
	store        Store
	logger       *shared.Logger
	orchestrator *Orchestrator
	verifier     *Verifier
}

var (
	runtimeMu sync.Mutex
	rt        *runtime
)

// Initialize sets up the process-wide resources every boundary call relies
// on: logger, artifact store and the notary engine client. Safe to call
// again after Cleanup.
func Initialize() ResultCode {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if rt != nil {
		return fail(CodeAlreadyInitialized, "library already initialized")
	}

	shared.LoadDotEnv()

	logger, err := shared.NewLoggerFromEnv("tlsn-prover")
	if err != nil {
		return fail(CodeEngineInitFailed, "failed to initialize logger: %v", err)
	}
	providers.SetLogger(logger.Logger)

	store, err := artifacts.NewStore(shared.GetEnvOrDefault("TLSN_ARTIFACT_DIR", "."), logger)
	if err != nil {
		return fail(CodeEngineInitFailed, "failed to open artifact store: %v", err)
	}

	cfg := shared.ConnectionConfigFromEnv()
	eng := engine.NewNotaryClient(cfg, logger)

	trustRoot := decodeTrustRoot(logger)

	rt = &runtime{
		engine:       eng,
		store:        store,
		logger:       logger,
		orchestrator: NewOrchestrator(eng, store, logger),
		verifier:     NewVerifier(eng, store, trustRoot, logger),
	}
	logger.Info("tlsn-prover initialized",
		zap.String("notary", cfg.NotaryHost),
		zap.Int("notary_port", cfg.NotaryPort))
	return Ok
}

// initializeWith installs injected collaborators. Used by tests.
func initializeWith(eng engine.Engine, store Store, trustRoot []byte, logger *shared.Logger) ResultCode {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if rt != nil {
		return fail(CodeAlreadyInitialized, "library already initialized")
	}
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	rt = &runtime{
		engine:       eng,
		store:        store,
		logger:       logger,
		orchestrator: NewOrchestrator(eng, store, logger),
		verifier:     NewVerifier(eng, store, trustRoot, logger),
	}
	return Ok
}

// Cleanup releases the process-wide resources. Idempotent: calling it twice,
// or without a prior Initialize, is a no-op that still returns Ok.
func Cleanup() ResultCode {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()

	if rt == nil {
		clearLastError()
		return Ok
	}

	if err := rt.engine.Close(); err != nil {
		rt.logger.Warn("engine close reported an error", zap.Error(err))
	}
	rt.logger.Sync()
	rt = nil
	clearLastError()
	return Ok
}

func current() (*runtime, bool) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	return rt, rt != nil
}

// Prove is the Go-level boundary behind tlsn_prove: it converts raw boundary
// values into closed types, then runs the session-proof orchestrator. The
// call blocks until the engine completes or fails.
func Prove(modeValue, providerValue int32, resourceID, profileID, cookie, accessToken, configJSON string) ResultCode {
	st, ok := current()
	if !ok {
		return fail(CodeNotInitialized, "library not initialized; call init first")
	}

	mode, err := ParseMode(modeValue)
	if err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}
	provider, err := providers.ParseProvider(providerValue)
	if err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}

	var cfg shared.ConnectionConfig
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return fail(CodeInvalidArgument, "invalid connection config: %v", err)
		}
	}

	return st.orchestrator.Run(context.Background(), mode, provider, &Params{
		ResourceID:  resourceID,
		ProfileID:   profileID,
		Cookie:      cookie,
		AccessToken: accessToken,
		Config:      cfg,
	})
}

// Verify is the Go-level boundary behind tlsn_verify.
func Verify(providerValue int32, resourceID string) ResultCode {
	st, ok := current()
	if !ok {
		return fail(CodeNotInitialized, "library not initialized; call init first")
	}

	provider, err := providers.ParseProvider(providerValue)
	if err != nil {
		return fail(CodeInvalidArgument, "%v", err)
	}

	return st.verifier.Verify(context.Background(), provider, resourceID)
}

// decodeTrustRoot reads the notary public key from the environment. An
// absent or malformed value leaves the trust root empty, deferring to the
// engine's own configured root.
func decodeTrustRoot(logger *shared.Logger) []byte {
	encoded := shared.GetEnvOrDefault("TLSN_NOTARY_PUBKEY", "")
	if encoded == "" {
		return nil
	}
	root, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		logger.Warn("ignoring malformed TLSN_NOTARY_PUBKEY", zap.Error(err))
		return nil
	}
	return root
}
