package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tlsn-prover/providers"
	"tlsn-prover/shared"
)

// NotaryClient talks to the notarization engine service over a websocket,
// exchanging JSON frames. One frame out, one frame back per operation;
// operations are serialized on the connection.
type NotaryClient struct {
	url    string
	logger *shared.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	connOnce sync.Once
	connErr  error
	closed   bool
}

// NewNotaryClient creates a client for the notary engine endpoint described
// by the connection config. The connection is established lazily on first
// use.
func NewNotaryClient(cfg shared.ConnectionConfig, logger *shared.Logger) *NotaryClient {
	scheme := "ws"
	if cfg.NotaryTLS {
		scheme = "wss"
	}
	return &NotaryClient{
		url:    fmt.Sprintf("%s://%s:%d/session", scheme, cfg.NotaryHost, cfg.NotaryPort),
		logger: logger,
	}
}

// engineFrame is the wire format shared by requests and responses. Opaque
// byte fields travel base64-encoded.
type engineFrame struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Request *providers.RequestSpec   `json:"request,omitempty"`
	Config  *shared.ConnectionConfig `json:"config,omitempty"`
	Policy  *DisclosurePolicy        `json:"policy,omitempty"`

	Attestation  string `json:"attestation,omitempty"`
	Material     string `json:"material,omitempty"`
	Sent         string `json:"sent,omitempty"`
	Recv         string `json:"recv,omitempty"`
	Presentation string `json:"presentation,omitempty"`
	ServerHost   string `json:"server_host,omitempty"`
	TrustRoot    string `json:"trust_root,omitempty"`

	Valid bool   `json:"valid,omitempty"`
	Error string `json:"error,omitempty"`
}

// secretsEnvelope is the serialized form of the prover secrets this client
// persists: the engine's opaque commitment material plus the transcripts,
// so a later presentation pass needs no network access.
type secretsEnvelope struct {
	Material string `json:"material"`
	Sent     string `json:"sent"`
	Recv     string `json:"recv"`
}

// ensureConnected establishes the connection lazily when needed
func (nc *NotaryClient) ensureConnected() error {
	nc.connOnce.Do(func() {
		nc.logger.Info("Connecting to notary engine", zap.String("url", nc.url))
		conn, _, err := websocket.DefaultDialer.Dial(nc.url, nil)
		if err != nil {
			nc.connErr = fmt.Errorf("failed to connect to notary engine: %w", err)
			return
		}
		nc.conn = conn
		nc.logger.Info("Notary engine connection established")
	})
	return nc.connErr
}

// roundTrip sends one frame and waits for the frame answering it.
func (nc *NotaryClient) roundTrip(ctx context.Context, req *engineFrame) (*engineFrame, error) {
	if err := nc.ensureConnected(); err != nil {
		return nil, err
	}

	nc.mu.Lock()
	defer nc.mu.Unlock()
	if nc.closed {
		return nil, fmt.Errorf("notary client is closed")
	}

	req.ID = uuid.NewString()
	deadline, _ := ctx.Deadline() // zero time clears any previous deadline
	nc.conn.SetReadDeadline(deadline)
	nc.conn.SetWriteDeadline(deadline)

	if err := nc.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("failed to send %s frame: %w", req.Type, err)
	}

	for {
		var resp engineFrame
		if err := nc.conn.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", req.Type, err)
		}
		if resp.ID != req.ID {
			nc.logger.Warn("discarding frame for unknown request id",
				zap.String("expected", req.ID),
				zap.String("got", resp.ID))
			continue
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("notary engine error: %s", resp.Error)
		}
		return &resp, nil
	}
}

// OpenSession implements Engine.
func (nc *NotaryClient) OpenSession(ctx context.Context, spec *providers.RequestSpec, cfg shared.ConnectionConfig) (*NotarizedSession, error) {
	nc.logger.Info("Opening notarized session",
		zap.String("provider", spec.Provider.String()),
		zap.String("host", spec.Host),
		zap.Int("max_sent", cfg.MaxSentData),
		zap.Int("max_recv", cfg.MaxRecvData))

	resp, err := nc.roundTrip(ctx, &engineFrame{
		Type:    "open_session",
		Request: spec,
		Config:  &cfg,
	})
	if err != nil {
		return nil, err
	}

	attestation, err := base64.StdEncoding.DecodeString(resp.Attestation)
	if err != nil || len(attestation) == 0 {
		return nil, fmt.Errorf("notary engine returned an unusable attestation")
	}
	sent, err := base64.StdEncoding.DecodeString(resp.Sent)
	if err != nil {
		return nil, fmt.Errorf("notary engine returned an unusable sent transcript")
	}
	recv, err := base64.StdEncoding.DecodeString(resp.Recv)
	if err != nil {
		return nil, fmt.Errorf("notary engine returned an unusable received transcript")
	}

	secrets, err := json.Marshal(secretsEnvelope{
		Material: resp.Material,
		Sent:     resp.Sent,
		Recv:     resp.Recv,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize prover secrets: %w", err)
	}

	nc.logger.Info("Notarization completed",
		zap.Int("sent_bytes", len(sent)),
		zap.Int("recv_bytes", len(recv)))

	return &NotarizedSession{
		Attestation: attestation,
		Secrets:     secrets,
		Sent:        sent,
		Received:    recv,
	}, nil
}

// ReopenSession implements Engine. The secrets envelope carries everything
// needed to rebuild the session locally.
func (nc *NotaryClient) ReopenSession(attestation, secrets []byte) (*NotarizedSession, error) {
	var env secretsEnvelope
	if err := json.Unmarshal(secrets, &env); err != nil {
		return nil, fmt.Errorf("failed to decode prover secrets: %w", err)
	}
	sent, err := base64.StdEncoding.DecodeString(env.Sent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sent transcript: %w", err)
	}
	recv, err := base64.StdEncoding.DecodeString(env.Recv)
	if err != nil {
		return nil, fmt.Errorf("failed to decode received transcript: %w", err)
	}
	return &NotarizedSession{
		Attestation: attestation,
		Secrets:     secrets,
		Sent:        sent,
		Received:    recv,
	}, nil
}

// Disclose implements Engine.
func (nc *NotaryClient) Disclose(ctx context.Context, session *NotarizedSession, policy DisclosurePolicy) ([]byte, error) {
	var env secretsEnvelope
	if err := json.Unmarshal(session.Secrets, &env); err != nil {
		return nil, fmt.Errorf("failed to decode prover secrets: %w", err)
	}

	nc.logger.Info("Requesting selective disclosure",
		zap.Int("sent_ranges", len(policy.SentRanges)),
		zap.Int("recv_ranges", len(policy.RecvRanges)))

	resp, err := nc.roundTrip(ctx, &engineFrame{
		Type:        "disclose",
		Attestation: base64.StdEncoding.EncodeToString(session.Attestation),
		Material:    env.Material,
		Sent:        env.Sent,
		Recv:        env.Recv,
		Policy:      &policy,
	})
	if err != nil {
		return nil, err
	}

	presentation, err := base64.StdEncoding.DecodeString(resp.Presentation)
	if err != nil || len(presentation) == 0 {
		return nil, fmt.Errorf("notary engine returned an unusable presentation")
	}
	return presentation, nil
}

// Check implements Engine.
func (nc *NotaryClient) Check(ctx context.Context, presentation []byte, serverHost string, trustRoot []byte) error {
	resp, err := nc.roundTrip(ctx, &engineFrame{
		Type:         "verify",
		Presentation: base64.StdEncoding.EncodeToString(presentation),
		ServerHost:   serverHost,
		TrustRoot:    base64.StdEncoding.EncodeToString(trustRoot),
	})
	if err != nil {
		return err
	}
	if !resp.Valid {
		return ErrCheckFailed
	}
	return nil
}

// Close implements Engine. Safe to call more than once.
func (nc *NotaryClient) Close() error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if nc.closed {
		return nil
	}
	nc.closed = true
	if nc.conn != nil {
		err := nc.conn.Close()
		nc.conn = nil
		return err
	}
	return nil
}
