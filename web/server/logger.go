package server

import (
	"fmt"
	"log"
	"strings"
)

// RequestLogger implements core.Logger by writing render progress to the
// server log, tagged with the request it belongs to
type RequestLogger struct {
	renderID string
	logger   *log.Logger
}

// NewRequestLogger creates a logger for a specific render
func NewRequestLogger(renderID string, logger *log.Logger) *RequestLogger {
	return &RequestLogger{renderID: renderID, logger: logger}
}

// Printf implements core.Logger interface
func (rl *RequestLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	rl.logger.Printf("[%s] %s", rl.renderID, message)
}
