package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/restoration-tracker"
	ConfigFileName    = "restoration.yml"
)

// ValidLogLevels is the list of accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all restoration tracker API settings
type Config struct {
	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// BindAddress and Port are where the API listens
	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        string `yaml:"port" json:"port"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// KeycloakIssuer is the expected iss claim of bearer tokens
	KeycloakIssuer string `yaml:"keycloak_issuer" json:"keycloak_issuer"`

	// KeycloakJWKSURI is where the realm signing keys are published
	KeycloakJWKSURI string `yaml:"keycloak_jwks_uri" json:"keycloak_jwks_uri"`

	// KeycloakAudience is the expected aud claim (optional)
	KeycloakAudience string `yaml:"keycloak_audience" json:"keycloak_audience"`

	// KeycloakServiceClients are client ids allowed to act as service clients
	KeycloakServiceClients []string `yaml:"keycloak_service_clients" json:"keycloak_service_clients"`

	// ObjectStorePath is the root directory for attachment objects
	ObjectStorePath string `yaml:"object_store_path" json:"object_store_path"`

	// AttachmentMaxBytes bounds a single attachment upload
	AttachmentMaxBytes int64 `yaml:"attachment_max_bytes" json:"attachment_max_bytes"`

	// SignedURLSecret signs attachment download links
	SignedURLSecret string `yaml:"signed_url_secret" json:"-"`

	// SignedURLTTLSeconds is how long a download link stays valid
	SignedURLTTLSeconds int `yaml:"signed_url_ttl_seconds" json:"signed_url_ttl_seconds"`

	// APIListLimitMax caps list and search results
	APIListLimitMax int `yaml:"api_list_limit_max" json:"api_list_limit_max"`

	// GCNotify settings; notifications are disabled when the URL or key is empty
	GCNotifyAPIURL                 string `yaml:"gcnotify_api_url" json:"gcnotify_api_url"`
	GCNotifyAPIKey                 string `yaml:"gcnotify_api_key" json:"-"`
	GCNotifyRequestAccessTemplate  string `yaml:"gcnotify_request_access_template" json:"gcnotify_request_access_template"`
	GCNotifyAccessApprovedTemplate string `yaml:"gcnotify_access_approved_template" json:"gcnotify_access_approved_template"`

	// AdminEmail receives access request notifications
	AdminEmail string `yaml:"admin_email" json:"admin_email"`

	// AppHost is the public URL of the web application, used in emails and signed URLs
	AppHost string `yaml:"app_host" json:"app_host"`

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For is honoured
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	sources        map[string]string
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *Config {
	return &Config{
		BindAddress:            "0.0.0.0",
		Port:                   "6100",
		LogLevel:               "info",
		KeycloakServiceClients: []string{},
		ObjectStorePath:        "/var/lib/restoration-tracker/objects",
		AttachmentMaxBytes:     50 << 20,
		SignedURLTTLSeconds:    300,
		APIListLimitMax:        1000,
		TrustedProxies:         []string{},
		sources:                make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("RESTORATION_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "bind_address", "port", "log_level",
		"keycloak_issuer", "keycloak_jwks_uri", "keycloak_audience", "keycloak_service_clients",
		"object_store_path", "attachment_max_bytes", "signed_url_secret", "signed_url_ttl_seconds",
		"api_list_limit_max", "gcnotify_api_url", "gcnotify_api_key",
		"gcnotify_request_access_template", "gcnotify_access_approved_template",
		"admin_email", "app_host", "trusted_proxies",
	}
}

func (c *Config) setString(name string, dst *string, value, source string) {
	if value == "" {
		return
	}
	*dst = value
	c.sources[name] = source
}

func (c *Config) setList(name string, dst *[]string, value []string, source string) {
	if len(value) == 0 {
		return
	}
	*dst = value
	c.sources[name] = source
}

func (c *Config) applyFileConfig(file *Config) {
	c.setString("database_url", &c.DatabaseURL, file.DatabaseURL, "file")
	c.setString("bind_address", &c.BindAddress, file.BindAddress, "file")
	c.setString("port", &c.Port, file.Port, "file")
	c.setString("log_level", &c.LogLevel, file.LogLevel, "file")
	c.setString("keycloak_issuer", &c.KeycloakIssuer, file.KeycloakIssuer, "file")
	c.setString("keycloak_jwks_uri", &c.KeycloakJWKSURI, file.KeycloakJWKSURI, "file")
	c.setString("keycloak_audience", &c.KeycloakAudience, file.KeycloakAudience, "file")
	c.setList("keycloak_service_clients", &c.KeycloakServiceClients, file.KeycloakServiceClients, "file")
	c.setString("object_store_path", &c.ObjectStorePath, file.ObjectStorePath, "file")
	if file.AttachmentMaxBytes != 0 {
		c.AttachmentMaxBytes = file.AttachmentMaxBytes
		c.sources["attachment_max_bytes"] = "file"
	}
	c.setString("signed_url_secret", &c.SignedURLSecret, file.SignedURLSecret, "file")
	if file.SignedURLTTLSeconds != 0 {
		c.SignedURLTTLSeconds = file.SignedURLTTLSeconds
		c.sources["signed_url_ttl_seconds"] = "file"
	}
	if file.APIListLimitMax != 0 {
		c.APIListLimitMax = file.APIListLimitMax
		c.sources["api_list_limit_max"] = "file"
	}
	c.setString("gcnotify_api_url", &c.GCNotifyAPIURL, file.GCNotifyAPIURL, "file")
	c.setString("gcnotify_api_key", &c.GCNotifyAPIKey, file.GCNotifyAPIKey, "file")
	c.setString("gcnotify_request_access_template", &c.GCNotifyRequestAccessTemplate, file.GCNotifyRequestAccessTemplate, "file")
	c.setString("gcnotify_access_approved_template", &c.GCNotifyAccessApprovedTemplate, file.GCNotifyAccessApprovedTemplate, "file")
	c.setString("admin_email", &c.AdminEmail, file.AdminEmail, "file")
	c.setString("app_host", &c.AppHost, file.AppHost, "file")
	c.setList("trusted_proxies", &c.TrustedProxies, file.TrustedProxies, "file")
}

func (c *Config) applyEnvConfig() {
	c.setString("database_url", &c.DatabaseURL, os.Getenv("DATABASE_URL"), "environment")
	c.setString("bind_address", &c.BindAddress, os.Getenv("BIND_ADDRESS"), "environment")
	c.setString("port", &c.Port, os.Getenv("PORT"), "environment")
	c.setString("log_level", &c.LogLevel, strings.ToLower(os.Getenv("LOG_LEVEL")), "environment")
	c.setString("keycloak_issuer", &c.KeycloakIssuer, os.Getenv("KEYCLOAK_ISSUER"), "environment")
	c.setString("keycloak_jwks_uri", &c.KeycloakJWKSURI, os.Getenv("KEYCLOAK_JWKS_URI"), "environment")
	c.setString("keycloak_audience", &c.KeycloakAudience, os.Getenv("KEYCLOAK_AUDIENCE"), "environment")
	if val := os.Getenv("KEYCLOAK_SERVICE_CLIENTS"); val != "" {
		c.setList("keycloak_service_clients", &c.KeycloakServiceClients, splitAndTrim(val), "environment")
	}
	c.setString("object_store_path", &c.ObjectStorePath, os.Getenv("OBJECT_STORE_PATH"), "environment")
	if val := os.Getenv("MAX_UPLOAD_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.AttachmentMaxBytes = i
			c.sources["attachment_max_bytes"] = "environment"
		}
	}
	c.setString("signed_url_secret", &c.SignedURLSecret, os.Getenv("SIGNED_URL_SECRET"), "environment")
	if val := os.Getenv("SIGNED_URL_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SignedURLTTLSeconds = i
			c.sources["signed_url_ttl_seconds"] = "environment"
		}
	}
	if val := os.Getenv("API_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIListLimitMax = i
			c.sources["api_list_limit_max"] = "environment"
		}
	}
	c.setString("gcnotify_api_url", &c.GCNotifyAPIURL, os.Getenv("GCNOTIFY_API_URL"), "environment")
	c.setString("gcnotify_api_key", &c.GCNotifyAPIKey, os.Getenv("GCNOTIFY_API_KEY"), "environment")
	c.setString("gcnotify_request_access_template", &c.GCNotifyRequestAccessTemplate, os.Getenv("GCNOTIFY_REQUEST_ACCESS_TEMPLATE"), "environment")
	c.setString("gcnotify_access_approved_template", &c.GCNotifyAccessApprovedTemplate, os.Getenv("GCNOTIFY_ACCESS_APPROVED_TEMPLATE"), "environment")
	c.setString("admin_email", &c.AdminEmail, os.Getenv("GCNOTIFY_ADMIN_EMAIL"), "environment")
	c.setString("app_host", &c.AppHost, os.Getenv("APP_HOST"), "environment")
	if val := os.Getenv("TRUSTED_PROXIES"); val != "" {
		c.setList("trusted_proxies", &c.TrustedProxies, splitAndTrim(val), "environment")
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddress, c.Port)
}

// SignedURLTTL returns the download link lifetime as a duration
func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.SignedURLTTLSeconds) * time.Second
}

// NotificationsEnabled reports whether GC Notify is configured
func (c *Config) NotificationsEnabled() bool {
	return c.GCNotifyAPIURL != "" && c.GCNotifyAPIKey != ""
}

// IsServiceClient reports whether clientID is a configured service client
func (c *Config) IsServiceClient(clientID string) bool {
	if clientID == "" {
		return false
	}
	for _, id := range c.KeycloakServiceClients {
		if id == clientID {
			return true
		}
	}
	return false
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.LogLevel == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	for name, raw := range map[string]string{
		"keycloak_jwks_uri": c.KeycloakJWKSURI,
		"gcnotify_api_url":  c.GCNotifyAPIURL,
		"app_host":          c.AppHost,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %s", name, raw)
		}
	}

	if c.AttachmentMaxBytes <= 0 {
		return fmt.Errorf("attachment_max_bytes must be positive")
	}
	if c.SignedURLTTLSeconds <= 0 {
		return fmt.Errorf("signed_url_ttl_seconds must be positive")
	}
	if c.APIListLimitMax <= 0 {
		return fmt.Errorf("api_list_limit_max must be positive")
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: maskURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: c.Port, Source: c.Source("port")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "keycloak_issuer", Value: c.KeycloakIssuer, Source: c.Source("keycloak_issuer")},
		{Name: "keycloak_jwks_uri", Value: c.KeycloakJWKSURI, Source: c.Source("keycloak_jwks_uri")},
		{Name: "keycloak_audience", Value: c.KeycloakAudience, Source: c.Source("keycloak_audience")},
		{Name: "keycloak_service_clients", Value: strings.Join(c.KeycloakServiceClients, ","), Source: c.Source("keycloak_service_clients")},
		{Name: "object_store_path", Value: c.ObjectStorePath, Source: c.Source("object_store_path")},
		{Name: "attachment_max_bytes", Value: strconv.FormatInt(c.AttachmentMaxBytes, 10), Source: c.Source("attachment_max_bytes")},
		{Name: "signed_url_secret", Value: mask(c.SignedURLSecret), Source: c.Source("signed_url_secret")},
		{Name: "signed_url_ttl_seconds", Value: strconv.Itoa(c.SignedURLTTLSeconds), Source: c.Source("signed_url_ttl_seconds")},
		{Name: "api_list_limit_max", Value: strconv.Itoa(c.APIListLimitMax), Source: c.Source("api_list_limit_max")},
		{Name: "gcnotify_api_url", Value: c.GCNotifyAPIURL, Source: c.Source("gcnotify_api_url")},
		{Name: "gcnotify_api_key", Value: mask(c.GCNotifyAPIKey), Source: c.Source("gcnotify_api_key")},
		{Name: "gcnotify_request_access_template", Value: c.GCNotifyRequestAccessTemplate, Source: c.Source("gcnotify_request_access_template")},
		{Name: "gcnotify_access_approved_template", Value: c.GCNotifyAccessApprovedTemplate, Source: c.Source("gcnotify_access_approved_template")},
		{Name: "admin_email", Value: c.AdminEmail, Source: c.Source("admin_email")},
		{Name: "app_host", Value: c.AppHost, Source: c.Source("app_host")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-36s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-36s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-36s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
