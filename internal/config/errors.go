package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrEmptyIdentityURL error if the identity provider url is missing.
	ErrEmptyIdentityURL = errors.New("config identity.url can not be empty")

	// ErrEmptyAnonKey error if the identity provider anon key is missing.
	ErrEmptyAnonKey = errors.New("config identity.anonkey can not be empty")

	// ErrUnknownLookupScope error if db.principallookupscope is not supported.
	ErrUnknownLookupScope = errors.New("config db.principallookupscope must be service_role or authenticated")

	// ErrUnknownRevocationBackend error if revocation.backend is not supported.
	ErrUnknownRevocationBackend = errors.New("config revocation.backend must be memory or postgres")
)
