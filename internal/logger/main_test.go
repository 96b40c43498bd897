package logger_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zymptek/zymptek-api/internal/logger"
)

// captured holds what one Init plus a fixed set of log calls wrote.
type captured struct {
	stdout string
	stderr string
}

// capture redirects stdout and stderr while cfg is initialised and three events are logged.
func capture(t *testing.T, cfg logger.Log) captured {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	outR, outW, err := os.Pipe()
	require.NoError(t, err)

	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = outW, errW

	t.Cleanup(func() {
		os.Stdout, os.Stderr = stdout, stderr
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	initErr := logger.Init(cfg)

	log.Info().Str("user_id", "u-1").Msg("admin signed in")
	log.Error().Err(errors.New("provider unreachable")).Msg("sign in failed") //nolint:goerr113
	log.Trace().Msg("claims set")

	read := func(r *os.File) <-chan string {
		ch := make(chan string, 1)

		go func() {
			var buf bytes.Buffer
			_, _ = io.Copy(&buf, r)
			ch <- buf.String()
		}()

		return ch
	}

	outC, errC := read(outR), read(errR)

	_ = outW.Close()
	_ = errW.Close()

	os.Stdout, os.Stderr = stdout, stderr

	require.NoError(t, initErr)

	return captured{stdout: <-outC, stderr: <-errC}
}

// jsonLines decodes every non empty line of out.
func jsonLines(t *testing.T, out string) []map[string]any {
	t.Helper()

	var lines []map[string]any

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}

		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())

		lines = append(lines, m)
	}

	return lines
}

func consoleLog(level string) logger.Log {
	return logger.Log{
		LogLevel:    level,
		ServiceName: "zymptek-api",
		AppName:     "zymptek-test",
		Console:     logger.Console{Enabled: true},
	}
}

func TestInitConsoleDisabledWritesNothing(t *testing.T) {
	cfg := consoleLog("info")
	cfg.Console.Enabled = false

	got := capture(t, cfg)

	assert.Empty(t, got.stdout)
	assert.Empty(t, got.stderr)
}

func TestInitSplitsConsoleByLevel(t *testing.T) {
	got := capture(t, consoleLog("info"))

	out := jsonLines(t, got.stdout)
	require.Len(t, out, 1)
	assert.Equal(t, "info", out[0]["level"])
	assert.Equal(t, "admin signed in", out[0]["message"])
	assert.Equal(t, "u-1", out[0]["user_id"])

	errs := jsonLines(t, got.stderr)
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0]["level"])
	assert.Equal(t, "provider unreachable", errs[0]["error"])
}

func TestInitTagsEventsWithAppName(t *testing.T) {
	got := capture(t, consoleLog("info"))

	for _, l := range append(jsonLines(t, got.stdout), jsonLines(t, got.stderr)...) {
		assert.Equal(t, "zymptek-test", l["app"])
		assert.NotEmpty(t, l["time"])
	}
}

func TestInitTraceLevel(t *testing.T) {
	got := capture(t, consoleLog("trace"))

	errs := jsonLines(t, got.stderr)
	require.Len(t, errs, 2)
	assert.Equal(t, "error", errs[0]["level"])
	assert.Equal(t, "trace", errs[1]["level"])
	assert.Equal(t, "claims set", errs[1]["message"])
}

func TestInitReportCaller(t *testing.T) {
	cfg := consoleLog("info")
	cfg.ReportCaller = true

	got := capture(t, cfg)

	out := jsonLines(t, got.stdout)
	require.Len(t, out, 1)
	assert.Contains(t, out[0]["caller"], "main_test.go")
}

func TestInitConsoleWriter(t *testing.T) {
	cfg := consoleLog("info")
	cfg.Console.UseConsoleWriter = true

	got := capture(t, cfg)

	assert.Contains(t, got.stdout, "admin signed in")
	assert.Contains(t, got.stderr, "sign in failed")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(got.stdout))), "console writer output should not be JSON")
}

func TestInitRejectsMissingNames(t *testing.T) {
	err := logger.Init(logger.Log{LogLevel: "info", AppName: "test"})
	if !errors.Is(err, logger.ErrServiceNameIsEmpty) {
		t.Errorf("expected ErrServiceNameIsEmpty, got %v", err)
	}

	err = logger.Init(logger.Log{LogLevel: "info", ServiceName: "test"})
	if !errors.Is(err, logger.ErrAppNameIsEmpty) {
		t.Errorf("expected ErrAppNameIsEmpty, got %v", err)
	}

	if err = logger.Init(logger.Log{LogLevel: "loud", ServiceName: "test", AppName: "test"}); err == nil {
		t.Error("expected unsupported log level to fail")
	}
}

func TestInitWritesLevelFiles(t *testing.T) {
	dir := t.TempDir()

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled:  true,
			Path:     dir,
			ErrorLog: "error.log",
			InfoLog:  "info.log",
			TraceLog: "trace.log",
			WarnLog:  "warn.log",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	log.Info().Msg("to info file")
	log.Error().Msg("to error file")

	info, err := os.ReadFile(dir + "/info.log")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(info), "to info file") || strings.Contains(string(info), "to error file") {
		t.Errorf("unexpected info log content: %s", info)
	}

	errLog, err := os.ReadFile(dir + "/error.log")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(errLog), "to error file") {
		t.Errorf("unexpected error log content: %s", errLog)
	}
}
