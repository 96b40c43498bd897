// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/zymptek/zymptek-api/internal/config"
)

// Create builds the postgres keyword/value DSN from the configuration.
// DB.Extras is appended verbatim, e.g. "sslmode=disable TimeZone=UTC".
func Create(cfg *config.Config) string {
	parts := []string{
		fmt.Sprintf("host=%s", cfg.DB.Host),
		fmt.Sprintf("port=%d", cfg.DB.Port),
	}

	if cfg.DB.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", quote(cfg.DB.User)))
	}

	if cfg.DB.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quote(cfg.DB.Password)))
	}

	if cfg.DB.Name != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", quote(cfg.DB.Name)))
	}

	if extras := strings.TrimSpace(cfg.DB.Extras); extras != "" {
		parts = append(parts, extras)
	}

	return strings.Join(parts, " ")
}

// quote escapes a value for the keyword/value format.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}

	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}
