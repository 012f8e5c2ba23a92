package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplace(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Replace(zap.New(core).Sugar())
	t.Cleanup(func() { Replace(zap.NewNop().Sugar()) })

	Get().Infow("budget saved", "year", 2024)

	entries := logs.FilterMessage("budget saved").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["year"]; got != int64(2024) {
		t.Errorf("expected year field 2024, got %v", got)
	}
}
