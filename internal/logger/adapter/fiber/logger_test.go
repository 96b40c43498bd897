package fiber_test

import (
	"bytes"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/zymptek/zymptek-api/internal/logger/adapter/fiber"

	"github.com/zymptek/zymptek-api/internal/logger"
)

// accessLine implements the access log json format.
type accessLine struct {
	IP        net.IP `json:"IP"`
	Status    int    `json:"status"`
	URI       string `json:"URI"`
	Method    string `json:"method"`
	Host      string `json:"host"`
	Principal string `json:"principal"`
	Error     string `json:"error"`
}

func consoleConfig() adapter.Config {
	return adapter.Config{
		Config: logger.Log{
			EnableAccessLogToConsole: true,
			Console:                  logger.Console{Enabled: true},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *accessLine
	}{
		{
			name:       "console disabled no output at all",
			targetPath: "/",
		},
		{
			name:       "get / log to console json",
			config:     consoleConfig(),
			targetPath: "/",
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com",
			},
		},
		{
			name:       "multiple slashes are logged as requested",
			config:     consoleConfig(),
			targetPath: "//test",
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 404, URI: "//test", Method: fiber.MethodGet, Host: "example.com",
				Error: "Cannot GET //test",
			},
		},
		{
			name:       "query string is kept",
			config:     consoleConfig(),
			targetPath: "/?test=123",
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 200, URI: "/?test=123", Method: fiber.MethodGet, Host: "example.com",
			},
		},
		{
			name:       "handler error is rendered and logged",
			config:     consoleConfig(),
			targetPath: "/fail",
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 401, URI: "/fail", Method: fiber.MethodGet, Host: "example.com",
				Error: "denied",
			},
		},
		{
			name: "principal local is logged",
			config: func() adapter.Config {
				c := consoleConfig()
				c.PrincipalLocal = "principal"

				return c
			}(),
			targetPath: "/me",
			want: &accessLine{
				IP: net.ParseIP("0.0.0.0"), Status: 200, URI: "/me", Method: fiber.MethodGet, Host: "example.com",
				Principal: "user-1",
			},
		},
		{
			name: "check alive path is skipped",
			config: func() adapter.Config {
				c := consoleConfig()
				c.Config.DisableCheckAlive = true
				c.CheckAlivePaths = []string{"/"}

				return c
			}(),
			targetPath: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := testMiddlewareHelper(t, tt.targetPath, tt.config)

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			require.NotEmpty(t, output)

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &got))

			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.IP, got.IP)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.Principal, got.Principal)
			assert.Equal(t, tt.want.Error, got.Error)
		})
	}
}

func TestNewSetsPerformanceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(adapter.New())
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Header.Get("X-Performance"))
}

func testMiddlewareHelper(t *testing.T, targetPath string, adapterConfig adapter.Config) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	os.Stderr = w

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(adapterConfig))

	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello test")
	})
	app.Get("/fail", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "denied")
	})
	app.Get("/me", func(ctx *fiber.Ctx) error {
		ctx.Locals("principal", "user-1")
		return ctx.SendString("me")
	})

	_, testErr := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), 100000)

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// back to normal state
	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr
	out := <-outC

	require.NoError(t, testErr)

	return out
}
