package sl_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"storeroom/pkg/sl"
)

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	opts := sl.PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With(slog.String("op", "test"))

	log.Info("transaction recorded", slog.Int("balance", 5), sl.Err(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "transaction recorded")
	assert.Contains(t, out, `"balance": 5`)
	assert.Contains(t, out, `"op": "test"`)
	assert.Contains(t, out, `"error": "boom"`)
}

func TestDiscard(t *testing.T) {
	log := sl.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("dropped")
}
