package config

import "time"

const (
	// LookupScopeServiceRole resolves principals with the service role claim.
	LookupScopeServiceRole = "service_role"
	// LookupScopeAuthenticated resolves principals as the authenticated user itself.
	LookupScopeAuthenticated = "authenticated"
)

// DB holds the database configuration settings.
type DB struct {
	Extras               string // appended DSN options, e.g. sslmode=require
	Host                 string
	Port                 int
	User                 string
	Password             string
	Name                 string
	MaxOpenConns         int
	MaxIdleConns         int
	ConnMaxLifetime      time.Duration
	AutoMigrate          bool
	PrincipalLookupScope string // service_role or authenticated
}
