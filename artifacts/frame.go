package artifacts

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// On-disk artifact framing. The engine's payload is opaque; the frame exists
// so storage-level damage and identity mixups are caught here, before any
// bytes reach the cryptographic layer.
//
//	magic "TLSN" | version | kind | identity tag (8) | digest (32) | length (4) | payload
const (
	frameMagic   = "TLSN"
	frameVersion = 1

	identityTagLen = 8
	digestLen      = blake2b.Size256
	headerLen      = len(frameMagic) + 2 + identityTagLen + digestLen + 4
)

// identityTag derives a short, deterministic tag binding a frame to its
// (provider, resource) identity.
func identityTag(id Identity) []byte {
	sum := blake2b.Sum256([]byte(id.Provider.String() + "\x00" + id.ResourceID))
	return sum[:identityTagLen]
}

func encodeFrame(kind Kind, id Identity, payload []byte) []byte {
	digest := blake2b.Sum256(payload)

	buf := make([]byte, 0, headerLen+len(payload))
	buf = append(buf, frameMagic...)
	buf = append(buf, frameVersion, byte(kind))
	buf = append(buf, identityTag(id)...)
	buf = append(buf, digest[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return buf
}

// decodeFrame validates a stored frame against the requested kind and
// identity and returns the opaque payload. Structural damage returns
// ErrCorrupt; a well-formed frame written for a different identity returns
// ErrIdentityMismatch.
func decodeFrame(kind Kind, id Identity, data []byte) ([]byte, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: frame truncated (%d bytes)", ErrCorrupt, len(data))
	}
	if string(data[:len(frameMagic)]) != frameMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	off := len(frameMagic)
	if data[off] != frameVersion {
		return nil, fmt.Errorf("%w: unsupported frame version %d", ErrCorrupt, data[off])
	}
	if data[off+1] != byte(kind) {
		return nil, fmt.Errorf("%w: artifact kind mismatch", ErrIdentityMismatch)
	}
	off += 2

	tag := data[off : off+identityTagLen]
	off += identityTagLen
	digest := data[off : off+digestLen]
	off += digestLen
	length := binary.BigEndian.Uint32(data[off : off+4])
	off += 4

	payload := data[off:]
	if uint32(len(payload)) != length {
		return nil, fmt.Errorf("%w: payload length mismatch (header %d, actual %d)",
			ErrCorrupt, length, len(payload))
	}
	sum := blake2b.Sum256(payload)
	if !bytes.Equal(sum[:], digest) {
		return nil, fmt.Errorf("%w: payload digest mismatch", ErrCorrupt)
	}
	if !bytes.Equal(tag, identityTag(id)) {
		return nil, fmt.Errorf("%w: artifact belongs to a different identity", ErrIdentityMismatch)
	}
	return payload, nil
}
