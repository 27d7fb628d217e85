package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttrHelpers(t *testing.T) {
	assert.Equal(t, slog.String(KeyOperation, "fetch"), Operation("fetch"))
	assert.Equal(t, slog.String(KeyAccount, "work"), Account("work"))
	assert.Equal(t, slog.String(KeyStatus, StatusSuccess), Status(StatusSuccess))
	assert.Equal(t, slog.String(KeyDuration, "1.5s"), Duration(1500*time.Millisecond))
	assert.Equal(t, slog.String(KeyError, "boom"), Err(errors.New("boom")))
}

func TestErrNilIsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("done", Err(nil))

	assert.NotContains(t, buf.String(), KeyError+"=")
}

func TestWithAccount(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithAccount(logger, "work").Info("hello")

	assert.Contains(t, buf.String(), "account=work")
}
