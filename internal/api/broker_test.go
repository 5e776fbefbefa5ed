package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightnav/internal/model"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(TopicSolutions)
	other := b.Subscribe("other")

	evt := model.SolutionEvent{Type: model.EventSolutionCompleted, SolutionID: "s1"}
	b.Publish(TopicSolutions, evt)

	select {
	case got := <-ch:
		assert.Equal(t, evt, got)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
	select {
	case <-other:
		t.Fatal("event leaked to another topic")
	default:
	}

	b.Unsubscribe(TopicSolutions, ch)
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
	b.Unsubscribe(TopicSolutions, ch)
	b.Publish(TopicSolutions, evt)
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(TopicSolutions)
	for i := 0; i < 20; i++ {
		b.Publish(TopicSolutions, model.SolutionEvent{Length: float64(i)})
	}
	require.Len(t, ch, cap(ch))
	assert.Equal(t, 0.0, (<-ch).Length)
}

func TestRedisChannelName(t *testing.T) {
	assert.Equal(t, "weightnav:solutions", chanName(TopicSolutions))
}
