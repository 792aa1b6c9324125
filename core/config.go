package core

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL                  = "https://sandbox.plaid.com"
	DefaultConnectStartDays         = 30
	DefaultConnectEndDays           = 0
	DefaultTransactionCount         = 100
	DefaultLongtailCount            = 50
	DefaultLongtailOffset           = 1
	DefaultInstitutionsProductCount = 200
)

type AuthConfig struct {
	LoginOnly bool `koanf:"login_only" mapstructure:"login_only"`
}

// ConnectConfig holds the connect product defaults. StartDate and EndDate are
// day offsets subtracted from the current date when a caller omits a bound.
type ConnectConfig struct {
	StartDate        int  `koanf:"start_date" mapstructure:"start_date"`
	EndDate          int  `koanf:"end_date" mapstructure:"end_date"`
	LoginOnly        bool `koanf:"login_only" mapstructure:"login_only"`
	Pending          bool `koanf:"pending" mapstructure:"pending"`
	List             bool `koanf:"list" mapstructure:"list"`
	TransactionCount int  `koanf:"transaction_count" mapstructure:"transaction_count"`
}

type ListConfig struct {
	List bool `koanf:"list" mapstructure:"list"`
}

type InstitutionsConfig struct {
	LongtailCount      int  `koanf:"longtail_count" mapstructure:"longtail_count"`
	LongtailOffset     int  `koanf:"longtail_offset" mapstructure:"longtail_offset"`
	ProductCount       int  `koanf:"product_count" mapstructure:"product_count"`
	IncludeDisplayData bool `koanf:"include_display_data" mapstructure:"include_display_data"`
}

type LinkConfig struct {
	Webhook string `koanf:"webhook" mapstructure:"webhook"`
}

type Config struct {
	BaseURL      string             `koanf:"base_url" mapstructure:"base_url"`
	ClientID     string             `koanf:"client_id" mapstructure:"client_id"`
	Secret       string             `koanf:"secret" mapstructure:"secret"`
	PublicKey    string             `koanf:"public_key" mapstructure:"public_key"`
	Auth         AuthConfig         `koanf:"auth" mapstructure:"auth"`
	Connect      ConnectConfig      `koanf:"connect" mapstructure:"connect"`
	Income       ListConfig         `koanf:"income" mapstructure:"income"`
	Risk         ListConfig         `koanf:"risk" mapstructure:"risk"`
	Institutions InstitutionsConfig `koanf:"institutions" mapstructure:"institutions"`
	Link         LinkConfig         `koanf:"link" mapstructure:"link"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Connect: ConnectConfig{
			StartDate:        DefaultConnectStartDays,
			EndDate:          DefaultConnectEndDays,
			TransactionCount: DefaultTransactionCount,
		},
		Institutions: InstitutionsConfig{
			LongtailCount:      DefaultLongtailCount,
			LongtailOffset:     DefaultLongtailOffset,
			ProductCount:       DefaultInstitutionsProductCount,
			IncludeDisplayData: true,
		},
	}
}

func (c Config) Validate() error {
	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("core: base_url is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: base_url scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: base_url host is required")
	}
	if c.Connect.StartDate < 0 || c.Connect.EndDate < 0 {
		return fmt.Errorf("core: connect date windows must be >= 0 days")
	}
	if c.Connect.TransactionCount < 0 {
		return fmt.Errorf("core: connect transaction_count must be >= 0")
	}
	if c.Institutions.LongtailCount < 0 || c.Institutions.LongtailOffset < 0 || c.Institutions.ProductCount < 0 {
		return fmt.Errorf("core: institutions counts must be >= 0")
	}
	return nil
}

// credentialsFor reports whether the configuration can satisfy an auth mode.
func (c Config) credentialsFor(mode AuthMode) bool {
	switch mode {
	case AuthClientSecret:
		return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.Secret) != ""
	case AuthPublicKey:
		return strings.TrimSpace(c.PublicKey) != ""
	default:
		return true
	}
}
