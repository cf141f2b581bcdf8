package providers

import (
	"fmt"
	"testing"
)

const wiseBody = `{"id":12345,"state":"OUTGOING_PAYMENT_SENT","date":1714000000,"targetAmount":42.50,"targetCurrency":"EUR","targetRecipientId":987654}`

func wiseResponse() []byte {
	return []byte(fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
		len(wiseBody), wiseBody))
}

func TestFindHostHeaderRange(t *testing.T) {
	sent := []byte("GET /gateway/v3/profiles/1/transfers/txn HTTP/1.1\r\nhost: wise.com\r\ncookie: secret\r\n\r\n")
	r, ok := FindHostHeaderRange(sent)
	if !ok {
		t.Fatal("host header not found")
	}
	if got := string(sent[r.Start:r.End]); got != "host: wise.com" {
		t.Errorf("unexpected host header range content %q", got)
	}
}

func TestFindHostHeaderRangeAbsent(t *testing.T) {
	if _, ok := FindHostHeaderRange([]byte("GET / HTTP/1.1\r\n\r\n")); ok {
		t.Fatal("expected no host header range")
	}
}

func TestFindFieldRangesWise(t *testing.T) {
	response := wiseResponse()
	ranges := FindFieldRanges(response, Wise)
	if len(ranges) == 0 {
		t.Fatal("expected field ranges for wise response")
	}

	// Every range must point at the matched field inside the full response,
	// past the header section.
	seen := map[string]bool{}
	for _, r := range ranges {
		if r.Start < 0 || r.End > len(response) || r.Start >= r.End {
			t.Fatalf("invalid range [%d,%d)", r.Start, r.End)
		}
		seen[string(response[r.Start:r.End])] = true
	}
	for _, want := range []string{`"id":12345`, `"targetAmount":42.50`, `"targetCurrency":"EUR"`} {
		if !seen[want] {
			t.Errorf("expected disclosed range %q, got %v", want, seen)
		}
	}
}

func TestFindFieldRangesSkipsAbsentFields(t *testing.T) {
	body := `{"id":7}`
	response := []byte(fmt.Sprintf("HTTP/1.1 200 OK\r\n\r\n%s", body))
	ranges := FindFieldRanges(response, Wise)
	if len(ranges) != 1 {
		t.Fatalf("expected only the id range, got %d ranges", len(ranges))
	}
	if got := string(response[ranges[0].Start:ranges[0].End]); got != `"id":7` {
		t.Errorf("unexpected range content %q", got)
	}
}

func TestFindFieldRangesUnknownProvider(t *testing.T) {
	if got := FindFieldRanges(wiseResponse(), Provider(99)); got != nil {
		t.Fatalf("expected nil ranges for unknown provider, got %v", got)
	}
}

func TestJSONValueRanges(t *testing.T) {
	doc := []byte(`{"data":{"details":{"id":"9AB12345CD","status":"COMPLETED"}}}`)
	ranges, err := jsonValueRanges(doc, "$.data.details.status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected one range, got %d", len(ranges))
	}
	if got := string(doc[ranges[0].Start:ranges[0].End]); got != `"COMPLETED"` {
		t.Errorf("unexpected range content %q", got)
	}
}

func TestJSONValueRangesNotFound(t *testing.T) {
	if _, err := jsonValueRanges([]byte(`{"a":1}`), "$.missing"); err == nil {
		t.Fatal("expected error for absent jsonPath")
	}
}
