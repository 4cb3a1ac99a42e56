package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedEvents(n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{ID: fmt.Sprintf("evt-%d", i+1), Action: ActionDossierRequested}
	}
	return events
}

func TestRingBufferOrdersAndBatches(t *testing.T) {
	buf := NewRingBuffer(8)
	for _, e := range numberedEvents(5) {
		buf.Enqueue(e)
	}
	require.Equal(t, 5, buf.Len())

	first := buf.DequeueBatch(3)
	require.Len(t, first, 3)
	assert.Equal(t, "evt-1", first[0].ID)
	assert.Equal(t, "evt-3", first[2].ID)

	rest := buf.DequeueBatch(10)
	require.Len(t, rest, 2)
	assert.Equal(t, "evt-4", rest[0].ID)
	assert.Equal(t, "evt-5", rest[1].ID)

	assert.Nil(t, buf.DequeueBatch(10))
	assert.Equal(t, 0, buf.Len())
}

func TestRingBufferEvictsOldestWhenFull(t *testing.T) {
	buf := NewRingBuffer(3)
	for _, e := range numberedEvents(5) {
		buf.Enqueue(e)
	}

	assert.Equal(t, int64(2), buf.Dropped())

	batch := buf.DequeueBatch(10)
	require.Len(t, batch, 3)
	assert.Equal(t, "evt-3", batch[0].ID)
	assert.Equal(t, "evt-4", batch[1].ID)
	assert.Equal(t, "evt-5", batch[2].ID)
}

func TestRingBufferWrapAround(t *testing.T) {
	buf := NewRingBuffer(3)
	events := numberedEvents(5)

	buf.Enqueue(events[0])
	buf.Enqueue(events[1])
	buf.Enqueue(events[2])
	require.Len(t, buf.DequeueBatch(2), 2)

	buf.Enqueue(events[3])
	buf.Enqueue(events[4])

	batch := buf.DequeueBatch(10)
	require.Len(t, batch, 3)
	assert.Equal(t, "evt-3", batch[0].ID)
	assert.Equal(t, "evt-4", batch[1].ID)
	assert.Equal(t, "evt-5", batch[2].ID)
	assert.Equal(t, int64(0), buf.Dropped())
}

func TestRingBufferDefaultsCapacity(t *testing.T) {
	buf := NewRingBuffer(0)
	buf.Enqueue(Event{ID: "evt-1"})
	assert.Equal(t, 1, buf.Len())
	assert.Equal(t, int64(0), buf.Dropped())
}

func TestRingBufferDequeueFromEmpty(t *testing.T) {
	buf := NewRingBuffer(4)
	assert.Nil(t, buf.DequeueBatch(10))
	assert.Nil(t, buf.DequeueBatch(0))
}
