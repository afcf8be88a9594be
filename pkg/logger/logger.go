package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
)

// Init builds the global logger. Production mode emits JSON, anything
// else uses the development console encoder.
func Init(environment string) {
	var cfg zap.Config
	switch strings.ToLower(environment) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl = zap.NewNop()
	}

	mu.Lock()
	sugar = zl.Sugar()
	mu.Unlock()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if sugar == nil {
		return zap.NewNop().Sugar()
	}
	return sugar
}

func Sync() {
	_ = get().Sync()
}

func Debug(msg string, keysAndValues ...any) {
	get().Debugw(msg, redactKVs(keysAndValues)...)
}

func Info(msg string, keysAndValues ...any) {
	get().Infow(msg, redactKVs(keysAndValues)...)
}

func Warn(msg string, keysAndValues ...any) {
	get().Warnw(msg, redactKVs(keysAndValues)...)
}

func Error(msg string, keysAndValues ...any) {
	get().Errorw(msg, redactKVs(keysAndValues)...)
}

func Fatal(msg string, keysAndValues ...any) {
	get().Fatalw(msg, redactKVs(keysAndValues)...)
}

// ---- PII redaction ----

// Keys whose values must never reach a log sink.
var redactedKeys = map[string]struct{}{
	"email":         {},
	"phone":         {},
	"address":       {},
	"password":      {},
	"token":         {},
	"authorization": {},
}

// Keys hashed so records stay correlatable without exposing identity.
var hashedKeys = map[string]struct{}{
	"customer_id": {},
	"user_id":     {},
}

func redactKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}

	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}

		key, ok := kv[i].(string)
		if !ok {
			out = append(out, kv[i], kv[i+1])
			continue
		}

		lower := strings.ToLower(strings.TrimSpace(key))
		if _, hit := redactedKeys[lower]; hit {
			out = append(out, key, "[REDACTED]")
			continue
		}
		if _, hit := hashedKeys[lower]; hit {
			out = append(out, key, hashValue(kv[i+1]))
			continue
		}
		out = append(out, key, kv[i+1])
	}
	return out
}

func hashValue(v any) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v", v)))
	return hex.EncodeToString(sum[:8])
}
