package intercept

import (
	"firestige.xyz/wiretap/internal/core"
	"firestige.xyz/wiretap/internal/log"
)

// Well-known event topics. Successfully decoded packets are additionally
// published under their resolved method name.
const (
	TopicPacket = "packet"
	TopicError  = "error"
)

// Event is one notification delivered to subscribers.
type Event struct {
	Topic  string
	Packet *core.InterceptedPacket // nil for TopicError events
	Err    error                   // set only for TopicError events
}

// Handler consumes events. Handlers run synchronously on the intercepting
// goroutine; a slow handler stalls interception.
type Handler func(ev Event)

// emitter is a synchronous publish/subscribe fan-out with per-handler fault
// isolation, owned by exactly one interceptor.
type emitter struct {
	subscribers map[string][]Handler
	closed      bool
}

func newEmitter() *emitter {
	return &emitter{subscribers: make(map[string][]Handler)}
}

func (e *emitter) subscribe(topic string, h Handler) {
	if e.closed {
		return
	}
	e.subscribers[topic] = append(e.subscribers[topic], h)
}

// publish delivers ev to every subscriber of its topic, in subscription
// order. A panicking handler is recovered and logged; delivery continues.
func (e *emitter) publish(ev Event) {
	if e.closed {
		return
	}
	for _, h := range e.subscribers[ev.Topic] {
		deliver(h, ev)
	}
}

func deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().WithField("topic", ev.Topic).
				Errorf("event handler panicked: %v", r)
		}
	}()
	h(ev)
}

// close detaches all subscribers. Terminal.
func (e *emitter) close() {
	e.subscribers = nil
	e.closed = true
}
