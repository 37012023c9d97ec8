package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/stash/internal/adapters/logger"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelDebug)

	log.Debug("debug msg", "k", "v")
	log.Info("info msg")
	log.Warn("warn msg")

	out := buf.String()
	assert.Contains(t, out, "debug msg")
	assert.Contains(t, out, "k=v")
	assert.Contains(t, out, "info msg")
	assert.Contains(t, out, "warn msg")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("visible")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "visible")
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo)

	log.Error(errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "operation failed")
	assert.Contains(t, out, "disk full")
}
