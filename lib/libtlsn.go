package main

// #cgo CFLAGS: -I.
/*
#include <stdint.h>
#include <stdlib.h>

// Result codes, mirrored from session.ResultCode:
//   0 success
//  -1 invalid argument        -2 not initialized
//  -3 already initialized     -4 artifact not found
//  -5 artifact corrupt        -6 network or protocol failure
//  -7 storage failure         -8 verification failed
//  -9 invalid provider       -10 engine init failed
*/
import "C"
import (
	"unsafe"

	"go.uber.org/zap"

	"tlsn-prover/session"
	"tlsn-prover/shared"
)

// Logger instance for the shared library
var logger *shared.Logger

func init() {
	var err error
	logger, err = shared.NewLoggerFromEnv("libtlsn")
	if err != nil {
		logger = shared.NewNopLogger()
	}
}

// goStringOrEmpty converts an optional C string; NULL maps to "".
func goStringOrEmpty(ptr *C.char) string {
	if ptr == nil {
		return ""
	}
	return C.GoString(ptr)
}

// tlsn_init acquires the process-wide resources the library needs. Returns 0
// on success, -3 if already initialized.
//
//export tlsn_init
func tlsn_init() (ret C.int32_t) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in tlsn_init", zap.Any("panic", r), zap.Stack("stack"))
			ret = C.int32_t(session.CodeEngineInitFailed)
		}
	}()

	return C.int32_t(session.Initialize())
}

// tlsn_prove runs one session-proof lifecycle call.
//
// mode: 0=prove, 1=present, 2=prove_to_present
// provider: 0=wise, 1=paypal
// resource_id: transaction/resource identifier (required)
// profile_id: provider profile id (wise only; NULL otherwise)
// cookie, access_token: auth material; required for prove and
// prove_to_present, ignored for present (NULL allowed)
// config_json: optional JSON connection config override (NULL for defaults)
//
//export tlsn_prove
func tlsn_prove(mode, provider C.int32_t, resource_id, profile_id, cookie, access_token, config_json *C.char) (ret C.int32_t) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in tlsn_prove", zap.Any("panic", r), zap.Stack("stack"))
			ret = C.int32_t(session.CodeNetworkOrProtocolFailure)
		}
	}()

	if resource_id == nil {
		return C.int32_t(session.CodeInvalidArgument)
	}

	return C.int32_t(session.Prove(
		int32(mode),
		int32(provider),
		C.GoString(resource_id),
		goStringOrEmpty(profile_id),
		goStringOrEmpty(cookie),
		goStringOrEmpty(access_token),
		goStringOrEmpty(config_json),
	))
}

// tlsn_verify checks the stored presentation for (provider, resource_id)
// against the notary trust root.
//
//export tlsn_verify
func tlsn_verify(provider C.int32_t, resource_id *C.char) (ret C.int32_t) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in tlsn_verify", zap.Any("panic", r), zap.Stack("stack"))
			ret = C.int32_t(session.CodeVerificationFailed)
		}
	}()

	if resource_id == nil {
		return C.int32_t(session.CodeInvalidArgument)
	}

	return C.int32_t(session.Verify(int32(provider), C.GoString(resource_id)))
}

// tlsn_cleanup releases the process-wide resources. Idempotent: calling it
// twice, or without a prior tlsn_init, returns 0 both times.
//
//export tlsn_cleanup
func tlsn_cleanup() (ret C.int32_t) {
	defer func() {
		if recover() != nil {
			ret = C.int32_t(session.Ok)
		}
	}()

	return C.int32_t(session.Cleanup())
}

// tlsn_get_last_error returns the message for the most recent failing call,
// or NULL when none is recorded. The caller owns the returned string and
// must release it exactly once with tlsn_free_error_string; freeing it twice
// is undefined behavior and is forbidden.
//
//export tlsn_get_last_error
func tlsn_get_last_error() (msg *C.char) {
	defer func() {
		if recover() != nil {
			msg = nil
		}
	}()

	text, ok := session.LastError()
	if !ok {
		return nil
	}
	return C.CString(text)
}

// tlsn_free_error_string releases a string obtained from
// tlsn_get_last_error. NULL is ignored.
//
//export tlsn_free_error_string
func tlsn_free_error_string(str *C.char) {
	defer func() {
		if recover() != nil {
			return
		}
	}()

	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {
	// Required for CGO shared library
}
