package api

import (
	"sync"

	"weightnav/internal/model"
)

// TopicSolutions carries solution.completed events.
const TopicSolutions = "solutions"

type EventBroker interface {
	Subscribe(topic string) chan model.SolutionEvent
	Unsubscribe(topic string, ch chan model.SolutionEvent)
	Publish(topic string, evt model.SolutionEvent)
}

// Broker is the in-process EventBroker. Slow subscribers miss events
// rather than block publishers.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan model.SolutionEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan model.SolutionEvent]struct{}{}}
}

func (b *Broker) Subscribe(topic string) chan model.SolutionEvent {
	ch := make(chan model.SolutionEvent, 8)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[chan model.SolutionEvent]struct{}{}
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan model.SolutionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.subs[topic]
	if _, ok := m[ch]; !ok {
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, topic)
	}
	close(ch)
}

func (b *Broker) Publish(topic string, evt model.SolutionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
}
