package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zymptek/zymptek-api/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "full",
			db: config.DB{
				Host: "db", Port: 5432, User: "zymptek", Password: "secret", Name: "zymptek",
				Extras: "sslmode=disable",
			},
			want: "host=db port=5432 user=zymptek password=secret dbname=zymptek sslmode=disable",
		},
		{
			name: "password with spaces and quotes",
			db:   config.DB{Host: "localhost", Port: 5433, User: "app", Password: `it's a pass`},
			want: `host=localhost port=5433 user=app password='it\'s a pass'`,
		},
		{
			name: "only host and port",
			db:   config.DB{Host: "localhost", Port: 5432},
			want: "host=localhost port=5432",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DB: tt.db}
			assert.Equal(t, tt.want, Create(cfg))
		})
	}
}
