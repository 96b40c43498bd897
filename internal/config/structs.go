package config

import (
	"time"

	"github.com/zymptek/zymptek-api/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode    bool // enable dev mode for development
	Title      string
	DB         DB
	Log        logger.Log
	Webserver  Webserver
	Identity   Identity
	Revocation Revocation
	Seed       Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	Port               int      // listening port for the webserver
	URL                string   // base url for the webserver
	APIPrefix          string   // global route prefix, e.g. api/v1
	ShutDownTime       int      // wait time for shutdown in seconds
	CORSOrigins        []string // allowed CORS origins
	DisableRecover     bool     // disable recover middleware
	HelmetEnabled      bool     // security headers
	CompressionEnabled bool     // response compression
}

// Identity holds the identity provider (GoTrue) settings.
type Identity struct {
	URL            string        // project url, e.g. https://xyz.supabase.co
	AnonKey        string        // public key used for user scoped calls
	ServiceRoleKey string        // privileged key used for admin calls
	Timeout        time.Duration // per request timeout
}

// Revocation configures the local list of access tokens revoked by sign out.
type Revocation struct {
	Backend    string        // memory or postgres
	Table      string        // postgres table name
	SSLMode    string        // postgres sslmode
	GCInterval time.Duration // postgres expired entry cleanup
	MaxEntries int           // memory backend capacity
	DefaultTTL time.Duration // used when a token carries no exp claim
}

// Seed holds the bootstrap admin account.
type Seed struct {
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
	AdminCompany   string
	AdminCountry   string
}
