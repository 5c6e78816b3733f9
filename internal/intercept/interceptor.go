// Package intercept implements the stateful packet interception façade: it
// decodes every buffer crossing the session boundary, verifies integrity,
// keeps a bounded recent-history ring, publishes events and aggregates
// statistics.
//
// An Interceptor is single-threaded by contract: Intercept calls mutate the
// history ring and counters without internal locking, so hosts running
// concurrent traffic on one instance must serialize access externally. The
// codec underneath is stateless and freely shareable.
package intercept

import (
	"fmt"
	"time"

	"firestige.xyz/wiretap/internal/core"
	"firestige.xyz/wiretap/internal/hooks"
	"firestige.xyz/wiretap/internal/log"
	"firestige.xyz/wiretap/internal/wire"
)

// Config carries the externally provisioned interceptor settings.
type Config struct {
	// MaxPackets bounds the retained history; insertion past the cap
	// evicts the oldest entry first.
	MaxPackets int
	// Verify enables integrity verification of decoded packets.
	Verify bool
	// Secret keys the signature MAC.
	Secret string
}

// Interceptor is the packet interception engine for one session.
type Interceptor struct {
	codec    *wire.Codec
	pipeline *hooks.Pipeline
	events   *emitter

	maxPackets int
	verify     bool

	// history is a fixed-capacity FIFO ring; head indexes the oldest
	// entry once the ring is full.
	history []*core.InterceptedPacket
	head    int

	// Lifetime counters; these survive history eviction.
	totalPackets uint64
	totalBytes   uint64
	decodeErrors uint64
	tamperCount  uint64

	destroyed bool
}

// New builds an interceptor. pipeline may be nil when no transforms are
// wanted.
func New(cfg Config, pipeline *hooks.Pipeline) (*Interceptor, error) {
	if cfg.MaxPackets <= 0 {
		return nil, fmt.Errorf("%w: max packets must be positive", core.ErrConfigInvalid)
	}
	return &Interceptor{
		codec:      wire.NewCodec(cfg.Secret),
		pipeline:   pipeline,
		events:     newEmitter(),
		maxPackets: cfg.MaxPackets,
		verify:     cfg.Verify,
	}, nil
}

// Codec exposes the interceptor's codec so callers can encode frames with
// the same signing secret.
func (i *Interceptor) Codec() *wire.Codec {
	return i.codec
}

// Subscribe registers h for a topic: TopicPacket for every intercepted
// buffer, a method name for decoded packets of that method, TopicError for
// internal faults.
func (i *Interceptor) Subscribe(topic string, h Handler) error {
	if i.destroyed {
		return core.ErrInterceptorClosed
	}
	i.events.subscribe(topic, h)
	return nil
}

// Intercept processes one buffer crossing the boundary in the given
// direction. It never panics or returns an error to the caller: malformed
// input yields an entry with Parsed == nil, verification failures are flagged
// and counted but still delivered, and internal faults are converted into an
// error event. The returned entry is nil only after Destroy.
func (i *Interceptor) Intercept(buf []byte, dir core.Direction) (entry *core.InterceptedPacket) {
	if i.destroyed {
		log.GetLogger().Warn("intercept called on destroyed interceptor")
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			i.decodeErrors++
			err := fmt.Errorf("wiretap: internal intercept fault: %v", r)
			log.GetLogger().WithError(err).Error("intercept failed")
			i.events.publish(Event{Topic: TopicError, Err: err})
			entry = nil
		}
	}()

	entry = &core.InterceptedPacket{
		Direction: dir,
		Raw:       buf,
		Timestamp: time.Now(),
	}

	pkt := i.codec.Decode(buf, i.verify)
	if pkt == nil {
		// Terminal, non-escalating outcome for malformed input.
		i.decodeErrors++
		i.events.publish(Event{Topic: TopicPacket, Packet: entry})
		return entry
	}
	pkt.Direction = dir

	if i.pipeline != nil {
		pkt = i.pipeline.Trigger(pkt, dir)
	}

	if i.verify {
		// A transform that rewrote bytes without re-signing, or a packet
		// that lost its signature, fails here. The packet is still
		// delivered; verification observes, it does not enforce.
		entry.Verified = i.codec.VerifyPacketSignature(pkt, pkt.Signature)
		if !entry.Verified {
			i.tamperCount++
			log.GetLogger().WithFields(map[string]interface{}{
				"method":    pkt.Header.Method,
				"packet_id": pkt.Header.PacketID,
			}).Warn("packet failed signature verification")
		}
	}

	entry.Parsed = pkt
	i.store(entry)
	i.totalPackets++
	i.totalBytes += uint64(len(buf))

	i.events.publish(Event{Topic: TopicPacket, Packet: entry})
	i.events.publish(Event{Topic: pkt.Header.Method, Packet: entry})
	return entry
}

// store appends to the history ring, evicting the oldest entry once the cap
// is reached. O(1) per insertion.
func (i *Interceptor) store(entry *core.InterceptedPacket) {
	if len(i.history) < i.maxPackets {
		i.history = append(i.history, entry)
		return
	}
	i.history[i.head] = entry
	i.head = (i.head + 1) % i.maxPackets
}

// GetRecentPackets returns up to count most recent entries, oldest first.
func (i *Interceptor) GetRecentPackets(count int) []*core.InterceptedPacket {
	ordered := i.ordered()
	if count < 0 {
		count = 0
	}
	if count > len(ordered) {
		count = len(ordered)
	}
	out := make([]*core.InterceptedPacket, count)
	copy(out, ordered[len(ordered)-count:])
	return out
}

// GetStats derives statistics on demand: the per-direction, per-method and
// per-status breakdowns come from the retained history, while the totals and
// the error and tamper counters cover the interceptor's whole lifetime.
func (i *Interceptor) GetStats() core.Stats {
	stats := core.Stats{
		TotalPackets: i.totalPackets,
		TotalBytes:   i.totalBytes,
		DecodeErrors: i.decodeErrors,
		TamperCount:  i.tamperCount,
		ByDirection:  make(map[core.Direction]uint64),
		ByMethod:     make(map[string]uint64),
		ByStatus:     make(map[int16]uint64),
	}
	if i.totalPackets > 0 {
		stats.AvgPacketSize = float64(i.totalBytes) / float64(i.totalPackets)
	}
	for _, entry := range i.ordered() {
		stats.ByDirection[entry.Direction]++
		if entry.Parsed != nil {
			stats.ByMethod[entry.Parsed.Header.Method]++
			stats.ByStatus[entry.Parsed.Header.StatusCode]++
		}
	}
	return stats
}

// Clear empties the history and resets all counters. Subscribers stay
// attached.
func (i *Interceptor) Clear() {
	i.history = nil
	i.head = 0
	i.totalPackets = 0
	i.totalBytes = 0
	i.decodeErrors = 0
	i.tamperCount = 0
}

// Destroy clears state and detaches all event subscribers. Terminal: the
// instance must not be reused afterwards.
func (i *Interceptor) Destroy() {
	i.Clear()
	i.events.close()
	i.destroyed = true
}

// ordered returns the history oldest-first.
func (i *Interceptor) ordered() []*core.InterceptedPacket {
	if len(i.history) < i.maxPackets || i.head == 0 {
		return i.history
	}
	out := make([]*core.InterceptedPacket, 0, len(i.history))
	out = append(out, i.history[i.head:]...)
	out = append(out, i.history[:i.head]...)
	return out
}
