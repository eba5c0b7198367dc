package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	coreconfig "github.com/m3rciful/intakebot/core/config"
)

var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status", "rid", "rid_full",
	"update_id", "user_id", "chat_id", "chat_type", "handler", "cb_key",
	"outcome", "duration_ms", "messages", "kb", "payload", "username",
	"order_id", "stage", "action", "domains", "keywords", "driver", "path",
	"mode", "listen", "public_url", "http_code",
	"err", "error", "error_kind", "attempts",
}

type settings struct {
	level     slog.Level
	json      bool
	keyOrder  []string
	profile   string
	sampleNum int
	sampleDen int
	dir       string
	file      string
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{
		level:     slog.LevelInfo,
		json:      true,
		keyOrder:  defaultKeyOrder,
		profile:   "prod",
		sampleNum: 1,
		sampleDen: 50,
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.json = false
	case "json":
	default:
		s.json = s.profile != "debug" && s.profile != "dev"
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}

	if keys := splitKeys(lc.KeysOrder); len(keys) > 0 {
		s.keyOrder = keys
	}
	if ratio := strings.TrimSpace(lc.DebugSample); ratio != "" {
		s.sampleNum, s.sampleDen = parseRatio(ratio)
	}
	if isTruthy(os.Getenv("LOG_TRACE")) || isTruthy(os.Getenv("TRACE")) {
		s.sampleNum, s.sampleDen = 0, 0
	}
	s.dir = strings.TrimSpace(lc.Dir)
	s.file = strings.TrimSpace(lc.BotFile)
	return s
}

// outputs opens stdout and, when configured, the bot log file. A file that
// cannot be opened is reported and skipped.
func (s settings) outputs() ([]io.Writer, []io.Closer, error) {
	writers := []io.Writer{os.Stdout}
	if s.dir == "" || s.file == "" {
		return writers, nil, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("logger: create log dir %s: %v", s.dir, err)
		return writers, nil, nil
	}
	path := filepath.Join(s.dir, s.file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file %s: %v", path, err)
		return writers, nil, nil
	}
	return append(writers, f), []io.Closer{f}, nil
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// parseRatio reads "n/d" or "d" (meaning 1/d). "0" or garbage disables sampling.
func parseRatio(ratio string) (int, int) {
	if n, d, ok := strings.Cut(ratio, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(n))
		den, err2 := strconv.Atoi(strings.TrimSpace(d))
		if err1 != nil || err2 != nil || num <= 0 || den <= 0 {
			return 0, 0
		}
		return num, den
	}
	den, err := strconv.Atoi(ratio)
	if err != nil || den <= 0 {
		return 0, 0
	}
	return 1, den
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
