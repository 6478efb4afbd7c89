package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yatube/yatube/pkg/config"
)

func newScalyrLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:      "timestamp",
		LevelKey:     "level",
		MessageKey:   "message",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(NewScalyrEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.InfoLevel)
	return zap.New(core)
}

func TestScalyrEncoder(t *testing.T) {
	var buf bytes.Buffer
	logger := newScalyrLogger(&buf)

	logger.Info("test message",
		zap.String("key", "value"),
		zap.Int("count", 3),
		zap.Bool("ok", true),
		zap.Duration("latency", 1500*time.Millisecond),
	)

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "test message" {
		t.Errorf("Expected message 'test message', got: %v", logObj["message"])
	}
	if logObj["key"] != "value" {
		t.Errorf("Expected field 'key'='value', got: %v", logObj["key"])
	}
	if logObj["count"] != float64(3) {
		t.Errorf("Expected field 'count'=3, got: %v", logObj["count"])
	}
	if logObj["ok"] != true {
		t.Errorf("Expected field 'ok'=true, got: %v", logObj["ok"])
	}
	if logObj["latency"] != "1.5s" {
		t.Errorf("Expected field 'latency'='1.5s', got: %v", logObj["latency"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}

func TestScalyrEncoder_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newScalyrLogger(&buf).With(zap.String("component", "feed"), zap.Int64("user_id", 7))

	logger.Info("listed")

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if logObj["component"] != "feed" {
		t.Errorf("Expected context field 'component'='feed', got: %v", logObj["component"])
	}
	if logObj["user_id"] != float64(7) {
		t.Errorf("Expected context field 'user_id'=7, got: %v", logObj["user_id"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "DEBUG", Format: "text"})
	if err != nil {
		t.Fatalf("Failed to build text logger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level to be enabled")
	}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) {
		c.Set(UsernameKey, "leo")
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "req-1" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}
	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one request log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["username"] != "leo" || fields["status"] != int64(200) {
		t.Errorf("Unexpected log fields: %v", fields)
	}
}
