package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const counterSource = `(module $m
  (func $main (param $n int) (result int)
    (var $sum int 0)
    (func $add (param $k int)
      (set $sum (+ $sum $k)))
    (call $add $n)
    (call $add 2)
    (print $sum)
    (return $sum)))`

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.lift")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDumpsLiftedProgram(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := options{in: writeSource(t, counterSource), dump: true, backend: "interp"}
	if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(stdout.String(), "(func $main.add (param $k int) (ref $sum int)") {
		t.Errorf("lifted program missing hoisted function:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "hoisted") {
		t.Errorf("stats missing:\n%s", stderr.String())
	}
}

func TestRunBackendsWithCheck(t *testing.T) {
	for _, backend := range []string{"interp", "wasm"} {
		t.Run(backend, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			opts := options{
				in:      writeSource(t, counterSource),
				entry:   "main",
				args:    "5",
				backend: backend,
				check:   true,
			}
			if err := run(context.Background(), opts, &stdout, &stderr); err != nil {
				t.Fatalf("run() error: %v", err)
			}
			if got := stdout.String(); got != "7\n" {
				t.Errorf("stdout = %q, want 7", got)
			}
			if !strings.Contains(stderr.String(), "behavior preserved") {
				t.Errorf("missing check line:\n%s", stderr.String())
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	got, err := parseArgs(" 1, -2 ,3")
	if err != nil {
		t.Fatalf("parseArgs() error: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != -2 || got[2] != 3 {
		t.Errorf("parseArgs() = %v", got)
	}
	if _, err := parseArgs("1,x"); err == nil {
		t.Error("expected an error for a non-integer argument")
	}
}

func TestRunUnknownBackend(t *testing.T) {
	opts := options{in: writeSource(t, counterSource), entry: "main", args: "1", backend: "jvm"}
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), opts, &stdout, &stderr); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
