package session

// ResultCode is the stable integer taxonomy returned across the library
// boundary. Zero means the requested artifacts now exist (prove modes) or
// the check passed (verify); every non-zero value is a documented failure
// class and is accompanied by a message on the error channel.
type ResultCode int32

const (
	Ok ResultCode = 0

	// CodeInvalidArgument: bad mode/provider/missing required field, caught
	// before any engine or I/O call.
	CodeInvalidArgument ResultCode = -1
	// CodeNotInitialized: call before Initialize or after Cleanup.
	CodeNotInitialized ResultCode = -2
	// CodeAlreadyInitialized: Initialize called while initialized.
	CodeAlreadyInitialized ResultCode = -3
	// CodeNotFound: an expected artifact is absent.
	CodeNotFound ResultCode = -4
	// CodeCorrupt: a stored artifact failed its integrity check.
	CodeCorrupt ResultCode = -5
	// CodeNetworkOrProtocolFailure: engine-level handshake, notarization or
	// disclosure failure, including timeouts and byte-budget overruns.
	CodeNetworkOrProtocolFailure ResultCode = -6
	// CodeStorageFailure: I/O error writing or reading artifacts.
	CodeStorageFailure ResultCode = -7
	// CodeVerificationFailed: the engine reports the presentation does not
	// check out.
	CodeVerificationFailed ResultCode = -8
	// CodeInvalidProvider: presentation/provider mismatch at verify time.
	CodeInvalidProvider ResultCode = -9
	// CodeEngineInitFailed: Initialize could not set up the engine or its
	// supporting resources.
	CodeEngineInitFailed ResultCode = -10
)

func (c ResultCode) String() string {
	switch c {
	case Ok:
		return "ok"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeNotInitialized:
		return "not_initialized"
	case CodeAlreadyInitialized:
		return "already_initialized"
	case CodeNotFound:
		return "not_found"
	case CodeCorrupt:
		return "corrupt"
	case CodeNetworkOrProtocolFailure:
		return "network_or_protocol_failure"
	case CodeStorageFailure:
		return "storage_failure"
	case CodeVerificationFailed:
		return "verification_failed"
	case CodeInvalidProvider:
		return "invalid_provider"
	case CodeEngineInitFailed:
		return "engine_init_failed"
	default:
		return "unknown"
	}
}
