package lift

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithLoggerRecordsHoists(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, res := liftSource(t, `(module $m
  (func $f (result int)
    (var $x int 5)
    (call $g)
    (func $g (set $x (* $x 2)))
    (return $x)))`, WithLogger(zap.New(core)))

	if got := logs.FilterMessage("capture analysis converged").Len(); got != 1 {
		t.Errorf("analysis entries = %d, want 1", got)
	}
	hoists := logs.FilterMessage("hoisted function").All()
	if len(hoists) != res.Stats.Hoisted {
		t.Fatalf("hoist entries = %d, want %d", len(hoists), res.Stats.Hoisted)
	}
	fields := hoists[0].ContextMap()
	if fields["func"] != "f.g" || fields["as"] != "f.g" {
		t.Errorf("hoist fields = %v", fields)
	}
	if got := logs.FilterMessage("backpatched forward calls").Len(); got != 1 {
		t.Errorf("backpatch entries = %d, want 1", got)
	}
}
