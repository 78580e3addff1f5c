package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid JSON config",
			config: Config{
				Level:  "info",
				Format: "json",
			},
			wantErr: false,
		},
		{
			name: "valid text config",
			config: Config{
				Level:  "debug",
				Format: "text",
			},
			wantErr: false,
		},
		{
			name:    "empty config uses defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "invalid log level",
			config: Config{
				Level:  "verbose",
				Format: "json",
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			config: Config{
				Level:  "info",
				Format: "xml",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Writer = buf

			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logMethod func(*Logger, string)
		wantLog   bool
	}{
		{
			name:      "debug level logs debug",
			logLevel:  "debug",
			logMethod: func(l *Logger, msg string) { l.Debug(msg) },
			wantLog:   true,
		},
		{
			name:      "info level filters debug",
			logLevel:  "info",
			logMethod: func(l *Logger, msg string) { l.Debug(msg) },
			wantLog:   false,
		},
		{
			name:      "info level logs info",
			logLevel:  "info",
			logMethod: func(l *Logger, msg string) { l.Info(msg) },
			wantLog:   true,
		},
		{
			name:      "warn level filters info",
			logLevel:  "warn",
			logMethod: func(l *Logger, msg string) { l.Info(msg) },
			wantLog:   false,
		},
		{
			name:      "error level filters warn",
			logLevel:  "error",
			logMethod: func(l *Logger, msg string) { l.Warn(msg) },
			wantLog:   false,
		},
		{
			name:      "error level logs error",
			logLevel:  "error",
			logMethod: func(l *Logger, msg string) { l.Error(msg) },
			wantLog:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{
				Level:  tt.logLevel,
				Format: "json",
				Writer: buf,
			})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			testMsg := "test message"
			tt.logMethod(logger, testMsg)

			hasLog := strings.Contains(buf.String(), testMsg)
			if hasLog != tt.wantLog {
				t.Errorf("level filtering: got log=%v, want log=%v, output=%s",
					hasLog, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_StructuredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("allocation decided",
		"rule_id", "dfars-compliance",
		"control_count", 110,
		"fast_tracked", false,
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if entry["msg"] != "allocation decided" {
		t.Errorf("msg = %v, want allocation decided", entry["msg"])
	}
	if entry["rule_id"] != "dfars-compliance" {
		t.Errorf("rule_id = %v, want dfars-compliance", entry["rule_id"])
	}
	if entry["control_count"] != float64(110) {
		t.Errorf("control_count = %v, want 110", entry["control_count"])
	}
	if entry["fast_tracked"] != false {
		t.Errorf("fast_tracked = %v, want false", entry["fast_tracked"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "text",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("starting", "listen_address", "127.0.0.1:8080")

	output := buf.String()
	if !strings.Contains(output, "msg=starting") {
		t.Errorf("text output missing message: %s", output)
	}
	if !strings.Contains(output, "listen_address=127.0.0.1:8080") {
		t.Errorf("text output missing field: %s", output)
	}
}

func TestLogger_RedactsSensitiveArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("auth configured", "token", "ghp_supersecretvalue")

	output := buf.String()
	if strings.Contains(output, "supersecretvalue") {
		t.Errorf("token value leaked into log output: %s", output)
	}
}

func TestLogger_RedactsConfiguredFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:        "info",
		Format:       "json",
		RedactFields: []string{"system-owner"},
		Writer:       buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("submission received", "system-owner", "Jordan Example")

	output := buf.String()
	if strings.Contains(output, "Jordan Example") {
		t.Errorf("configured field value leaked into log output: %s", output)
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	child := logger.With("component", "gate")
	child.Info("template installed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["component"] != "gate" {
		t.Errorf("component = %v, want gate", entry["component"])
	}
}

func TestLogger_InfoContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithProgram(ctx, "orion")

	logger.InfoContext(ctx, "allocation requested")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
	if entry["program"] != "orion" {
		t.Errorf("program = %v, want orion", entry["program"])
	}
}

func TestLogger_WithContextEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// A context with no known fields returns the same logger
	if got := logger.WithContext(context.Background()); got != logger {
		t.Error("WithContext() with empty context should return the receiver")
	}
}

func TestLogger_Slog(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{
		Level:  "info",
		Format: "json",
		Writer: buf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if logger.Slog() == nil {
		t.Fatal("Slog() returned nil")
	}

	logger.Slog().Info("direct slog write")
	if !strings.Contains(buf.String(), "direct slog write") {
		t.Error("Slog() logger did not write to the configured writer")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"ERROR", false},
		{"", false},
		{"trace", true},
	}

	for _, tt := range tests {
		_, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
