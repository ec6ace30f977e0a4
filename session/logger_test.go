package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

type recordingNotifier struct {
	mux           sync.Mutex
	notifications []*jsonrpc.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.notifications)
}

func TestLogger_RemoteMirror(t *testing.T) {
	notifier := &recordingNotifier{}
	logger := NewLogger("session", schema.Err, notifier)
	ctx := context.Background()

	// No remote level set: nothing is mirrored.
	logger.Errorf(ctx, "connect failed")
	assert.Equal(t, 0, notifier.count())

	logger.SetRemoteLevel(schema.Warning)
	logger.Errorf(ctx, "connect failed")
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, schema.MethodNotificationMessage, notifier.notifications[0].Method)

	// Records below the remote threshold stay local.
	logger.Debugf(ctx, "frame received")
	assert.Equal(t, 1, notifier.count())
}

func TestLogger_ConcurrentSetLevel(t *testing.T) {
	notifier := &recordingNotifier{}
	logger := NewLogger("session", schema.Err, notifier)
	ctx := context.Background()

	// Level changes race with in-flight log calls; must be safe under -race.
	var group sync.WaitGroup
	group.Add(2)
	go func() {
		defer group.Done()
		for i := 0; i < 100; i++ {
			logger.SetRemoteLevel(schema.Warning)
			logger.SetRemoteLevel(schema.LoggingLevelDebug)
		}
	}()
	go func() {
		defer group.Done()
		for i := 0; i < 100; i++ {
			logger.Warningf(ctx, "call %v finished", i)
		}
	}()
	group.Wait()
}
