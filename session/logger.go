package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// Notifier writes a notification frame to the session peer.
type Notifier interface {
	Notify(ctx context.Context, notification *jsonrpc.Notification) error
}

// Logger logs locally and, once the peer raises a level via logging/setLevel,
// mirrors records to it as notifications/message.
type Logger struct {
	name     string
	local    schema.LoggingLevel
	mux      sync.RWMutex
	remote   schema.LoggingLevel
	notifier Notifier
}

func (l *Logger) log(ctx context.Context, level schema.LoggingLevel, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if l.local.Ordinal() <= level.Ordinal() {
		log.Printf("[%v] %v: %v", l.name, level, message)
	}
	l.notify(ctx, level, message)
}

func (l *Logger) remoteLevel() schema.LoggingLevel {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.remote
}

func (l *Logger) notify(ctx context.Context, level schema.LoggingLevel, message string) {
	remote := l.remoteLevel()
	if remote == "" || remote.Ordinal() > level.Ordinal() || l.notifier == nil {
		return
	}
	notification := &jsonrpc.Notification{Method: schema.MethodNotificationMessage}
	params := schema.LoggingMessageNotificationParams{
		Level:  level,
		Logger: &l.name,
		Data:   message,
	}
	data, err := json.Marshal(params)
	if err != nil {
		return
	}
	notification.Params = data
	_ = l.notifier.Notify(ctx, notification)
}

func (l *Logger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, schema.LoggingLevelDebug, format, args...)
}

func (l *Logger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, schema.Info, format, args...)
}

func (l *Logger) Warningf(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, schema.Warning, format, args...)
}

func (l *Logger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, schema.Err, format, args...)
}

// SetRemoteLevel is driven by the logging/setLevel method; it may race with
// forwarder goroutines logging concurrently, hence the lock.
func (l *Logger) SetRemoteLevel(level schema.LoggingLevel) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.remote = level
}

// NewLogger creates a logger with a local verbosity threshold; remote
// mirroring stays off until the peer sets a level.
func NewLogger(name string, local schema.LoggingLevel, notifier Notifier) *Logger {
	if local == "" {
		local = schema.Info
	}
	return &Logger{name: name, local: local, notifier: notifier}
}
