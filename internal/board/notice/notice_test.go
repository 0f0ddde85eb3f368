package notice

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
)

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)
	n.Notify(context.Background(), Notice{Message: MoveFailed, Err: errors.New("status 500")})
	n.Notify(context.Background(), Notice{Message: TitleMissing})
	assert.Equal(t, "Failed to move task: status 500\nTitle required\n", buf.String())
}

func TestMultiSkipsNil(t *testing.T) {
	rec := &Recorder{}
	m := Multi{nil, rec, NewLogNotifier(logger.NewNop())}
	m.Notify(context.Background(), Notice{Message: DeleteFailed, TaskID: "t1"})

	got := rec.Notices()
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TaskID)
}

func TestBusNotifierPublishes(t *testing.T) {
	log := logger.NewNop()
	b := bus.NewMemoryEventBus(log)
	defer b.Close()

	received := make(chan *bus.Event, 1)
	_, err := b.Subscribe(events.AllBoardEvents, func(_ context.Context, e *bus.Event) error {
		received <- e
		return nil
	})
	require.NoError(t, err)

	NewBusNotifier(b, "board", log).Notify(context.Background(), Notice{
		Message: SaveFailed,
		TaskID:  "t9",
		Err:     errors.New("timeout"),
	})

	select {
	case e := <-received:
		assert.Equal(t, events.BoardNotice, e.Type)
		assert.Equal(t, "board", e.Source)
		assert.Equal(t, SaveFailed, e.Data["message"])
		assert.Equal(t, "t9", e.Data["task_id"])
		assert.Equal(t, "timeout", e.Data["error"])
	case <-time.After(2 * time.Second):
		t.Fatal("notice event not delivered")
	}
}
