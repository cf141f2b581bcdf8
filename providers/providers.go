package providers

import (
	"errors"
	"fmt"
	"strings"

	"tlsn-prover/shared"
)

// Provider identifies an external HTTPS resource family whose transactions
// can be notarized. The set is closed; raw integers crossing the library
// boundary are converted through ParseProvider and never propagate further.
type Provider int32

const (
	Wise Provider = iota
	PayPal
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func (p Provider) String() string {
	switch p {
	case Wise:
		return "wise"
	case PayPal:
		return "paypal"
	default:
		return fmt.Sprintf("provider(%d)", int32(p))
	}
}

// ParseProvider converts a boundary integer into a Provider.
// 0=Wise, 1=PayPal. Unknown values are a validation error, never a default.
func ParseProvider(v int32) (Provider, error) {
	p := Provider(v)
	if _, ok := registry[p]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedProvider, v)
	}
	return p, nil
}

// ParseProviderName converts a provider name ("wise", "paypal") into a
// Provider. Matching is case-insensitive.
func ParseProviderName(name string) (Provider, error) {
	for p := range registry {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
}

// Registered returns all registered providers.
func Registered() []Provider {
	out := make([]Provider, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	return out
}

// RequestParams carries the per-call inputs the registry needs to build a
// concrete request. Cookie and AccessToken are sensitive and must never be
// logged or embedded in error messages.
type RequestParams struct {
	ResourceID  string
	ProfileID   string
	Cookie      string
	AccessToken string
	UserAgent   string
}

// RequestSpec is the concrete request handed to the notarization engine:
// target endpoint, full header set with auth material injected at the
// provider's header names, and the response markers used later to select
// transcript ranges for disclosure.
type RequestSpec struct {
	Provider Provider `json:"provider"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Method   string   `json:"method"`
	Path     string   `json:"path"`

	// Headers preserves insertion order so the sent transcript is
	// deterministic for a given spec.
	Headers []Header `json:"headers"`

	// Markers select the received-transcript ranges to commit and reveal.
	Markers []FieldMarker `json:"markers,omitempty"`
}

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FieldMarker names one response field to disclose. Exactly one of Regex or
// JSONPath is set.
type FieldMarker struct {
	Name     string `json:"name"`
	Regex    string `json:"regex,omitempty"`
	JSONPath string `json:"jsonPath,omitempty"`
}

// template is the immutable request recipe for one provider. Adding a
// provider means adding one template here plus its schema in validation.go;
// no other component changes.
type template struct {
	host       string
	port       int
	pathFn     func(p *RequestParams) (string, error)
	authHeader func(p *RequestParams) []Header
	markers    []FieldMarker
}

var registry = map[Provider]*template{
	Wise: {
		host: "wise.com",
		port: 443,
		pathFn: func(p *RequestParams) (string, error) {
			if p.ProfileID == "" {
				return "", errors.New("profile id is required for wise transactions")
			}
			return fmt.Sprintf("/gateway/v3/profiles/%s/transfers/%s", p.ProfileID, p.ResourceID), nil
		},
		authHeader: func(p *RequestParams) []Header {
			return []Header{
				{Name: "Cookie", Value: p.Cookie},
				{Name: "X-Access-Token", Value: p.AccessToken},
			}
		},
		markers: wiseFieldMarkers,
	},
	PayPal: {
		host: "www.paypal.com",
		port: 443,
		pathFn: func(p *RequestParams) (string, error) {
			return fmt.Sprintf("/myaccount/activities/details/inline/%s", p.ResourceID), nil
		},
		authHeader: func(p *RequestParams) []Header {
			return []Header{
				{Name: "Cookie", Value: p.Cookie},
				{Name: "X-Access-Token", Value: p.AccessToken},
			}
		},
		markers: paypalFieldMarkers,
	},
}

// Host returns the production host/port for a provider.
func Host(p Provider) (string, int, error) {
	tpl, ok := registry[p]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
	}
	return tpl.host, tpl.port, nil
}

// BuildRequest resolves the provider's immutable template against the given
// parameters. Pure function of its inputs; performs no I/O and fails fast on
// unknown providers before any network or engine resource is touched.
func BuildRequest(p Provider, params *RequestParams) (*RequestSpec, error) {
	tpl, ok := registry[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p)
	}
	if params == nil || params.ResourceID == "" {
		return nil, errors.New("resource identifier must not be empty")
	}

	path, err := tpl.pathFn(params)
	if err != nil {
		return nil, err
	}

	userAgent := params.UserAgent
	if userAgent == "" {
		userAgent = shared.DefaultUserAgent
	}

	headers := []Header{
		{Name: "Host", Value: tpl.host},
		{Name: "User-Agent", Value: userAgent},
		{Name: "Accept", Value: "application/json"},
		{Name: "Accept-Encoding", Value: "identity"},
		{Name: "Connection", Value: "close"},
	}
	headers = append(headers, tpl.authHeader(params)...)

	return &RequestSpec{
		Provider: p,
		Host:     tpl.host,
		Port:     tpl.port,
		Method:   "GET",
		Path:     path,
		Headers:  headers,
		Markers:  tpl.markers,
	}, nil
}
