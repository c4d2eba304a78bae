package config

// Config holds all abistudio configuration.
type Config struct {
	RPCURLs             []string `json:"rpc_urls"`
	KeyRef              string   `json:"key_ref,omitempty"` // keychain reference of the wallet signing key
	LogLevel            string   `json:"log_level"`         // "debug" | "info" | "warn" | "error"
	LogFile             string   `json:"log_file,omitempty"`
	StrictOrdering      bool     `json:"strict_ordering"`
	ReceiptPollInterval Duration `json:"receipt_poll_interval"`
	GasLimitFallback    uint64   `json:"gas_limit_fallback"`

	// internal: config dir path used for Save()
	configDir string
}
