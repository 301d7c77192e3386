package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	cerrors "github.com/cockroachdb/errors"
)

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	err := cerrors.New("fit failed")
	logger.Error("training aborted", ErrAttr(err))

	var entry map[string]any
	if jsonErr := json.Unmarshal(buf.Bytes(), &entry); jsonErr != nil {
		t.Fatalf("log output is not JSON: %v\n%s", jsonErr, buf.String())
	}

	stack, ok := entry[StacktraceAttrKey].(string)
	if !ok || stack == "" {
		t.Errorf("expected %q attribute with stack trace, got %v", StacktraceAttrKey, entry)
	}
	if !strings.Contains(stack, "handler_test.go") {
		t.Errorf("stack trace should reference the calling file, got:\n%s", stack)
	}
}

func TestErrFmtHandlerPassthrough(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	logger.Info("plain message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if _, present := entry[StacktraceAttrKey]; present {
		t.Error("stacktrace attribute should be absent without an error attr")
	}
	if entry["key"] != "value" {
		t.Errorf("attribute lost: %v", entry)
	}
}

func TestToLogLevelMapping(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		if got := ToLogLevel(name); got != want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
