package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"tlsn-prover/providers"
	"tlsn-prover/shared"
)

// Kind enumerates the artifact kinds the store persists.
type Kind byte

const (
	KindAttestation Kind = iota + 1
	KindSecrets
	KindPresentation
)

func (k Kind) String() string {
	switch k {
	case KindAttestation:
		return "attestation"
	case KindSecrets:
		return "secrets"
	case KindPresentation:
		return "presentation"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// Identity addresses one artifact set: every persisted artifact belongs to
// exactly one (provider, resource) pair.
type Identity struct {
	Provider   providers.Provider
	ResourceID string
}

func (id Identity) String() string {
	return id.Provider.String() + "/" + id.ResourceID
}

var (
	ErrNotFound         = errors.New("artifact not found")
	ErrCorrupt          = errors.New("artifact corrupt")
	ErrIdentityMismatch = errors.New("artifact identity mismatch")
)

// Store persists attestation, secrets and presentation artifacts under a
// per-identity path. Writes are atomic (temp file + rename) so a reader
// never observes a partially written artifact, and save/load for the same
// identity are serialized within the process.
type Store struct {
	dir    string
	locks  *identityLocks
	logger *shared.Logger
}

// NewStore opens (and creates if needed) an artifact directory.
func NewStore(dir string, logger *shared.Logger) (*Store, error) {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &Store{
		dir:    dir,
		locks:  newIdentityLocks(),
		logger: logger,
	}, nil
}

// Path returns the deterministic location for an artifact. Repeated calls
// for the same transaction always resolve to the same file.
func (s *Store) Path(kind Kind, id Identity) string {
	name := fmt.Sprintf("%s.%s.%s.tlsn", id.Provider, sanitizeResource(id.ResourceID), kind)
	return filepath.Join(s.dir, name)
}

// Save writes an artifact under its identity path. The payload is framed
// with an integrity header, written to a temp file in the same directory and
// atomically renamed into place.
func (s *Store) Save(kind Kind, id Identity, payload []byte) error {
	unlock := s.locks.lock(id)
	defer unlock()

	path := s.Path(kind, id)
	framed := encodeFrame(kind, id, payload)

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(framed); err != nil {
		cleanup()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}

	s.logger.Debug("artifact saved",
		zap.String("kind", kind.String()),
		zap.String("identity", id.String()),
		zap.Int("payload_bytes", len(payload)))
	return nil
}

// Load reads an artifact and validates its frame. A missing file returns
// ErrNotFound; structural damage returns ErrCorrupt before any bytes are
// handed to the cryptographic layer.
func (s *Store) Load(kind Kind, id Identity) ([]byte, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	data, err := os.ReadFile(s.Path(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return decodeFrame(kind, id, data)
}

// Exists reports whether an artifact is present for the identity. It does
// not validate the frame.
func (s *Store) Exists(kind Kind, id Identity) bool {
	unlock := s.locks.lock(id)
	defer unlock()

	_, err := os.Stat(s.Path(kind, id))
	return err == nil
}

// sanitizeResource maps a resource identifier onto a safe filename chunk.
// The frame's identity tag still binds the artifact to the exact original
// identifier, so two identifiers colliding after sanitization cannot be
// confused for one another.
func sanitizeResource(resourceID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, resourceID)
}
