package util

import (
	"log"
	"os"
)

// Process-wide leveled logger. Everything goes to stderr as one line-oriented
// stream with a level tag up front.
var appLog = log.New(os.Stderr, "cultureshare ", log.LstdFlags|log.Lmsgprefix)

// LogError records a failed operation together with its cause. A nil error is
// a no-op so callers can log unconditionally.
func LogError(message string, err error) {
	if err == nil {
		return
	}
	appLog.Printf("ERROR %s: %v", message, err)
}

func LogInfo(message string) {
	appLog.Printf("INFO %s", message)
}

// LogInfof is LogInfo with printf formatting.
func LogInfof(format string, args ...interface{}) {
	appLog.Printf("INFO "+format, args...)
}

func LogWarning(message string) {
	appLog.Printf("WARN %s", message)
}
