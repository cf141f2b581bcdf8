package session

import (
	"sync"
	"testing"

	"tlsn-prover/providers"
)

func resetRuntime(t *testing.T) {
	t.Helper()
	Cleanup()
	t.Cleanup(func() { Cleanup() })
}

func TestCallsBeforeInitAreRejected(t *testing.T) {
	resetRuntime(t)

	if code := Prove(int32(ModeProve), int32(providers.Wise), "txn-1", "p", "c", "t", ""); code != CodeNotInitialized {
		t.Fatalf("expected not_initialized, got %v", code)
	}
	if code := Verify(int32(providers.Wise), "txn-1"); code != CodeNotInitialized {
		t.Fatalf("expected not_initialized, got %v", code)
	}
	if msg, ok := LastError(); !ok || msg == "" {
		t.Error("expected a last-error message")
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	resetRuntime(t)

	// cleanup without init is a no-op, not an error
	if code := Cleanup(); code != Ok {
		t.Fatalf("cleanup without init: %v", code)
	}

	if code := initializeWith(&stubEngine{}, newTestStore(t), nil, nil); code != Ok {
		t.Fatalf("init: %v", code)
	}
	if code := Cleanup(); code != Ok {
		t.Fatalf("first cleanup: %v", code)
	}
	if code := Cleanup(); code != Ok {
		t.Fatalf("second cleanup: %v", code)
	}
	if _, ok := current(); ok {
		t.Error("runtime still allocated after cleanup")
	}
}

func TestDoubleInitIsRejected(t *testing.T) {
	resetRuntime(t)

	if code := initializeWith(&stubEngine{}, newTestStore(t), nil, nil); code != Ok {
		t.Fatalf("init: %v", code)
	}
	if code := initializeWith(&stubEngine{}, newTestStore(t), nil, nil); code != CodeAlreadyInitialized {
		t.Fatalf("expected already_initialized, got %v", code)
	}
}

func TestConcurrentInitIsDeterministic(t *testing.T) {
	resetRuntime(t)

	var wg sync.WaitGroup
	codes := make([]ResultCode, 8)
	for i := range codes {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			codes[n] = initializeWith(&stubEngine{}, newTestStore(t), nil, nil)
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, code := range codes {
		switch code {
		case Ok:
			okCount++
		case CodeAlreadyInitialized:
		default:
			t.Errorf("unexpected init result %v", code)
		}
	}
	if okCount != 1 {
		t.Errorf("expected exactly one successful init, got %d", okCount)
	}
}

func TestCleanupClearsLastError(t *testing.T) {
	resetRuntime(t)

	if code := Verify(int32(providers.Wise), "txn-1"); code != CodeNotInitialized {
		t.Fatalf("expected not_initialized, got %v", code)
	}
	if _, ok := LastError(); !ok {
		t.Fatal("expected a recorded error")
	}
	Cleanup()
	if msg, ok := LastError(); ok {
		t.Errorf("cleanup left a stale error message: %q", msg)
	}
}

func TestBoundaryProveAndVerifyFlow(t *testing.T) {
	resetRuntime(t)

	if code := initializeWith(&stubEngine{}, newTestStore(t), nil, nil); code != Ok {
		t.Fatalf("init: %v", code)
	}

	if code := Prove(int32(ModeProve), int32(providers.Wise), "txn-123", "12345678", "cookie-abc", "token-xyz", ""); code != Ok {
		t.Fatalf("prove: %v", code)
	}
	// present requires no auth material
	if code := Prove(int32(ModePresent), int32(providers.Wise), "txn-123", "", "", "", ""); code != Ok {
		t.Fatalf("present: %v", code)
	}
	if code := Verify(int32(providers.Wise), "txn-123"); code != Ok {
		t.Fatalf("verify: %v", code)
	}
}

func TestBoundaryRejectsRawIntegers(t *testing.T) {
	resetRuntime(t)

	if code := initializeWith(&stubEngine{}, newTestStore(t), nil, nil); code != Ok {
		t.Fatalf("init: %v", code)
	}

	if code := Prove(7, int32(providers.Wise), "txn-1", "p", "c", "t", ""); code != CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for bad mode, got %v", code)
	}
	if code := Prove(int32(ModeProve), 9, "txn-1", "p", "c", "t", ""); code != CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for bad provider, got %v", code)
	}
	if code := Prove(int32(ModeProve), int32(providers.Wise), "txn-1", "p", "c", "t", "{not json"); code != CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for malformed config json, got %v", code)
	}
	if code := Verify(9, "txn-1"); code != CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for bad provider, got %v", code)
	}
}
