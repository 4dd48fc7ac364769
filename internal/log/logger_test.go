package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(&buf),
	})
	return logger, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected no output for debug/info at warn level, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected output for warn message")
	}

	buf.Reset()
	logger.Error("error message")
	if buf.Len() == 0 {
		t.Error("expected output for error message")
	}
}

func TestJSONFormatOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("test message", "key1", "value1", "key2", 42)

	entry := decodeEntry(t, buf)
	if entry["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected level 'INFO', got %v", entry["level"])
	}
	if entry["key2"] != float64(42) {
		t.Errorf("expected key2 42, got %v", entry["key2"])
	}
}

func TestTextFormatOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)

	logger.Info("test message", "key1", "value1")

	output := buf.String()
	if !strings.Contains(output, "test message") || !strings.Contains(output, "key1=value1") {
		t.Errorf("unexpected text output: %s", output)
	}
}

func TestServiceNameAttached(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: LevelInfo, Format: FormatJSON, Output: NewOutput(&buf), ServiceName: "mock-api"}).Info("hello")

	entry := decodeEntry(t, &buf)
	if entry["service"] != "mock-api" {
		t.Errorf("expected service mock-api, got %v", entry["service"])
	}
}

func TestWith(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.With("request_id", "123").Info("test", "user_id", "u-1")

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "123" || entry["user_id"] != "u-1" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestCredentialsRedacted(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.With("Authorization", "Bearer abc").Info("login",
		"email", "employee@example.com",
		"password", "password123",
		"token", "eyJhbGciOi.payload.sig",
	)

	out := buf.String()
	for _, secret := range []string{"password123", "eyJhbGciOi", "Bearer abc"} {
		if strings.Contains(out, secret) {
			t.Errorf("secret %q leaked: %s", secret, out)
		}
	}
	entry := decodeEntry(t, buf)
	if entry["password"] != redacted || entry["Authorization"] != redacted {
		t.Errorf("expected redacted values, got %v", entry)
	}
	if entry["email"] != "employee@example.com" {
		t.Errorf("email should be kept, got %v", entry["email"])
	}
}

func TestCustomRedactKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: NewOutput(&buf), RedactKeys: []string{"email"}})

	logger.Info("login", "email", "employee@example.com", "token", "t")
	out := buf.String()
	if strings.Contains(out, "employee@example.com") {
		t.Errorf("email should be redacted: %s", out)
	}
	if !strings.Contains(out, "token=t") {
		t.Errorf("token is not in the custom key list: %s", out)
	}
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantCause bool
	}{
		{name: "nil error"},
		{name: "plain error", err: fmt.Errorf("boom")},
		{name: "coded error", err: errors.New(errors.ErrCodeMalformedToken, "bad token"), wantCode: "AUTH-003"},
		{name: "coded with cause", err: errors.NewNetworkError(fmt.Errorf("refused")), wantCode: "API-001", wantCause: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelInfo, FormatJSON)
			logger.WithError(tt.err).Info("test")

			entry := decodeEntry(t, buf)
			if tt.err == nil {
				if _, ok := entry["error"]; ok {
					t.Error("expected no error field for nil error")
				}
				return
			}
			if tt.wantCode != "" && entry["error_code"] != tt.wantCode {
				t.Errorf("expected error_code %s, got %v", tt.wantCode, entry["error_code"])
			}
			if _, ok := entry["cause"]; ok != tt.wantCause {
				t.Errorf("cause present = %v, want %v", ok, tt.wantCause)
			}
		})
	}
}

func TestWithError_WrappedCodedError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	wrapped := fmt.Errorf("settle: %w", errors.NewNotAuthenticatedError())
	logger.WithError(wrapped).Warn("test")

	entry := decodeEntry(t, buf)
	if entry["error_code"] != "AUTH-001" {
		t.Errorf("expected AUTH-001 through the wrap, got %v", entry["error_code"])
	}
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	logger.Error("nothing to see")
	if logger.Slog() == nil {
		t.Fatal("expected slog logger")
	}
}
