package shared

// Default protocol limits, matching the notary server's standard policy.
const (
	DefaultMaxSentData = 4096
	DefaultMaxRecvData = 16384

	DefaultNotaryHost = "127.0.0.1"
	DefaultNotaryPort = 7047

	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// ConnectionConfig bundles everything the notarization engine needs to reach
// the target server and the notary: user agent, optional provider host/port
// override, notary endpoint and the sent/received byte budgets the notary
// enforces on the MPC-TLS transcript.
type ConnectionConfig struct {
	UserAgent string `json:"user_agent,omitempty"`

	// Optional override of the provider template's host/port, used by tests
	// and local fixtures. Empty means "use the provider template".
	ServerHost string `json:"server_host,omitempty"`
	ServerPort int    `json:"server_port,omitempty"`

	NotaryHost string `json:"notary_host,omitempty"`
	NotaryPort int    `json:"notary_port,omitempty"`
	NotaryTLS  bool   `json:"notary_tls"`

	MaxSentData int `json:"max_sent_data,omitempty"`
	MaxRecvData int `json:"max_recv_data,omitempty"`
}

// ConnectionConfigFromEnv builds the default connection configuration from
// the environment (TLSN_* variables), falling back to the standard values.
func ConnectionConfigFromEnv() ConnectionConfig {
	return ConnectionConfig{
		UserAgent:   GetEnvOrDefault("TLSN_USER_AGENT", DefaultUserAgent),
		NotaryHost:  GetEnvOrDefault("TLSN_NOTARY_HOST", DefaultNotaryHost),
		NotaryPort:  GetEnvIntOrDefault("TLSN_NOTARY_PORT", DefaultNotaryPort),
		NotaryTLS:   GetEnvBoolOrDefault("TLSN_NOTARY_TLS", true),
		MaxSentData: GetEnvIntOrDefault("TLSN_MAX_SENT_DATA", DefaultMaxSentData),
		MaxRecvData: GetEnvIntOrDefault("TLSN_MAX_RECV_DATA", DefaultMaxRecvData),
	}
}

// ApplyDefaults fills any zero-valued field from the environment defaults.
func (c ConnectionConfig) ApplyDefaults() ConnectionConfig {
	defaults := ConnectionConfigFromEnv()
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.NotaryHost == "" {
		c.NotaryHost = defaults.NotaryHost
		c.NotaryTLS = defaults.NotaryTLS
	}
	if c.NotaryPort == 0 {
		c.NotaryPort = defaults.NotaryPort
	}
	if c.MaxSentData == 0 {
		c.MaxSentData = defaults.MaxSentData
	}
	if c.MaxRecvData == 0 {
		c.MaxRecvData = defaults.MaxRecvData
	}
	return c
}
