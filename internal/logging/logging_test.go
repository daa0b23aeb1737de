package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/config"
	"blogsphere/internal/logging"
)

func TestParseLevel(t *testing.T) {
	c := qt.New(t)
	c.Assert(logging.ParseLevel(" DEBUG "), qt.Equals, slog.LevelDebug)
	c.Assert(logging.ParseLevel("warning"), qt.Equals, slog.LevelWarn)
	c.Assert(logging.ParseLevel("error"), qt.Equals, slog.LevelError)
	c.Assert(logging.ParseLevel("verbose"), qt.Equals, slog.LevelInfo)
}

func TestNewJSON(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", "post_id", 7)
	c.Assert(buf.String(), qt.Not(qt.Contains), "dropped")
	c.Assert(buf.String(), qt.Contains, `"msg":"kept"`)
	c.Assert(buf.String(), qt.Contains, `"post_id":7`)
}
