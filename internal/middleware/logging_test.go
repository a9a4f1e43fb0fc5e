package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithRequestLogging(t *testing.T) {
	// Capture logs in a buffer using a custom zap core
	var logBuf bytes.Buffer
	encoderCfg := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	writer := zapcore.AddSync(&logBuf)
	core := zapcore.NewCore(encoder, writer, zapcore.InfoLevel)
	logger := zap.New(core)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("I'm a teapot"))
	})

	loggedHandler := WithRequestLogging(logger)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	loggedHandler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Fatal("handler was not called")
	}

	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", resp.StatusCode)
	}
	if string(body) != "I'm a teapot" {
		t.Errorf("unexpected body: %s", body)
	}

	logged := logBuf.String()
	for _, want := range []string{`"method":"GET"`, `"url":"/test"`, `"status":418`} {
		if !strings.Contains(logged, want) {
			t.Errorf("log line missing %s: %s", want, logged)
		}
	}
}
