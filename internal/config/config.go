// Package config handles input from etc/main.toml, the JSON override env and ZYMPTEK_* env vars.
package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the main config file.
	EnvConfigJSON = "ZYMPTEK_CONFIG_JSON"

	// EnvPrefix is the prefix for single value env overrides, e.g. ZYMPTEK_IDENTITY_SERVICEROLEKEY.
	EnvPrefix = "ZYMPTEK"

	// DefaultCORSOrigin is the only allowed origin when none is configured.
	DefaultCORSOrigin = "http://localhost:3000"

	redacted = "********"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var c Config

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	if JSONConfigEnv := os.Getenv(EnvConfigJSON); JSONConfigEnv != "" {
		v.SetConfigType("json")

		if err := v.MergeConfig(strings.NewReader(JSONConfigEnv)); err != nil {
			return Config{}, errors.Wrap(err, "failed to merge json config from env")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	return c, validate(&c)
}

// setDefaults registers defaults; registered keys can also be overridden from env.
func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "Zymptek API")
	v.SetDefault("webserver.apiprefix", "api/v1")
	v.SetDefault("webserver.shutdowntime", 5)
	v.SetDefault("webserver.helmetenabled", true)
	v.SetDefault("webserver.compressionenabled", true)
	v.SetDefault("webserver.corsorigins", []string{DefaultCORSOrigin})
	v.SetDefault("identity.url", "")
	v.SetDefault("identity.anonkey", "")
	v.SetDefault("identity.servicerolekey", "")
	v.SetDefault("identity.timeout", 10*time.Second)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.principallookupscope", LookupScopeServiceRole)
	v.SetDefault("revocation.backend", "memory")
	v.SetDefault("revocation.table", "revoked_tokens")
	v.SetDefault("revocation.sslmode", "disable")
	v.SetDefault("revocation.gcinterval", 10*time.Minute)
	v.SetDefault("revocation.maxentries", 10000)
	v.SetDefault("revocation.defaultttl", time.Hour)
	v.SetDefault("seed.adminemail", "")
	v.SetDefault("seed.adminpassword", "")
}

// DumpConfigJSON config as JSON String with secrets redacted.
func DumpConfigJSON(c *Config) (string, error) {
	out := *c

	for _, secret := range []*string{
		&out.DB.Password,
		&out.Identity.AnonKey,
		&out.Identity.ServiceRoleKey,
		&out.Seed.AdminPassword,
	} {
		if *secret != "" {
			*secret = redacted
		}
	}

	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(out); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill defaults left empty by the config file.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Identity.URL == "" {
		return errors.Wrap(ErrEmptyIdentityURL, invalidErrMessage)
	}

	if c.Identity.AnonKey == "" {
		return errors.Wrap(ErrEmptyAnonKey, invalidErrMessage)
	}

	switch c.DB.PrincipalLookupScope {
	case "":
		c.DB.PrincipalLookupScope = LookupScopeServiceRole
	case LookupScopeServiceRole, LookupScopeAuthenticated:
	default:
		return errors.Wrap(ErrUnknownLookupScope, invalidErrMessage)
	}

	switch c.Revocation.Backend {
	case "":
		c.Revocation.Backend = "memory"
	case "memory", "postgres":
	default:
		return errors.Wrap(ErrUnknownRevocationBackend, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	c.Webserver.CORSOrigins = CORSOrigins(c.Webserver.CORSOrigins)

	if c.Webserver.APIPrefix == "" {
		c.Webserver.APIPrefix = "api/v1"
	}

	c.Webserver.APIPrefix = strings.Trim(c.Webserver.APIPrefix, "/")

	if c.Identity.Timeout == 0 {
		c.Identity.Timeout = 10 * time.Second //nolint: mnd
	}

	if c.Revocation.DefaultTTL == 0 {
		c.Revocation.DefaultTTL = time.Hour
	}

	if c.Revocation.MaxEntries == 0 {
		c.Revocation.MaxEntries = 10000 //nolint: mnd
	}

	if c.Revocation.Table == "" {
		c.Revocation.Table = "revoked_tokens"
	}

	return nil
}

// CORSOrigins drops blank entries from origins and falls back to DefaultCORSOrigin,
// so an unset list never opens CORS to every origin.
func CORSOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))

	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}

	if len(out) == 0 {
		return []string{DefaultCORSOrigin}
	}

	return out
}
