package providers

import (
	"strings"
	"testing"
)

func wiseParams() *RequestParams {
	return &RequestParams{
		ResourceID:  "txn-123",
		ProfileID:   "12345678",
		Cookie:      "session=abc",
		AccessToken: "token-xyz",
	}
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(0)
	if err != nil || p != Wise {
		t.Fatalf("expected Wise, got %v (err %v)", p, err)
	}
	p, err = ParseProvider(1)
	if err != nil || p != PayPal {
		t.Fatalf("expected PayPal, got %v (err %v)", p, err)
	}
	if _, err := ParseProvider(42); err == nil {
		t.Fatal("expected error for unknown provider value")
	}
}

func TestParseProviderName(t *testing.T) {
	p, err := ParseProviderName("WISE")
	if err != nil || p != Wise {
		t.Fatalf("expected Wise for case-insensitive name, got %v (err %v)", p, err)
	}
	if _, err := ParseProviderName("venmo"); err == nil {
		t.Fatal("expected error for unregistered provider name")
	}
}

func TestBuildRequestWise(t *testing.T) {
	spec, err := BuildRequest(Wise, wiseParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Host != "wise.com" || spec.Port != 443 {
		t.Errorf("unexpected endpoint %s:%d", spec.Host, spec.Port)
	}
	if spec.Path != "/gateway/v3/profiles/12345678/transfers/txn-123" {
		t.Errorf("unexpected path %q", spec.Path)
	}

	headers := map[string]string{}
	for _, h := range spec.Headers {
		headers[h.Name] = h.Value
	}
	if headers["Cookie"] != "session=abc" {
		t.Errorf("cookie not injected at Cookie header: %q", headers["Cookie"])
	}
	if headers["X-Access-Token"] != "token-xyz" {
		t.Errorf("token not injected at X-Access-Token header: %q", headers["X-Access-Token"])
	}
	if headers["Host"] != "wise.com" {
		t.Errorf("missing host header")
	}
	if len(spec.Markers) == 0 {
		t.Error("expected wise response markers")
	}
}

func TestBuildRequestWiseRequiresProfile(t *testing.T) {
	params := wiseParams()
	params.ProfileID = ""
	if _, err := BuildRequest(Wise, params); err == nil {
		t.Fatal("expected error when profile id is missing")
	}
}

func TestBuildRequestPayPal(t *testing.T) {
	spec, err := BuildRequest(PayPal, &RequestParams{
		ResourceID:  "9AB12345CD",
		Cookie:      "c=1",
		AccessToken: "t",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Host != "www.paypal.com" {
		t.Errorf("unexpected host %q", spec.Host)
	}
	if !strings.HasSuffix(spec.Path, "/inline/9AB12345CD") {
		t.Errorf("unexpected path %q", spec.Path)
	}
}

func TestBuildRequestUnknownProvider(t *testing.T) {
	if _, err := BuildRequest(Provider(99), wiseParams()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildRequestEmptyResource(t *testing.T) {
	params := wiseParams()
	params.ResourceID = ""
	if _, err := BuildRequest(Wise, params); err == nil {
		t.Fatal("expected error for empty resource id")
	}
}

func TestValidateParams(t *testing.T) {
	if err := ValidateParams(Wise, wiseParams()); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	missingCookie := wiseParams()
	missingCookie.Cookie = ""
	err := ValidateParams(Wise, missingCookie)
	if err == nil {
		t.Fatal("expected error for missing cookie")
	}
	if strings.Contains(err.Error(), "token-xyz") || strings.Contains(err.Error(), "session=abc") {
		t.Errorf("validation error leaks credential values: %v", err)
	}

	// paypal has no profile requirement
	if err := ValidateParams(PayPal, &RequestParams{
		ResourceID:  "r",
		Cookie:      "c",
		AccessToken: "t",
	}); err != nil {
		t.Fatalf("valid paypal params rejected: %v", err)
	}
}

func TestValidateParamsUnknownProvider(t *testing.T) {
	if err := ValidateParams(Provider(7), wiseParams()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
