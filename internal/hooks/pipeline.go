// Package hooks implements the ordered, fault-isolated packet transform
// chain. Hooks observe or rewrite packets in flight; a misbehaving hook is
// contained and can never destabilize packet flow.
package hooks

import (
	"fmt"

	"firestige.xyz/wiretap/internal/core"
	"firestige.xyz/wiretap/internal/log"
)

// Result is the tagged outcome of one hook invocation: either a replacement
// packet or "no change". The zero value means unchanged.
type Result struct {
	replacement *core.Packet
}

// Unchanged leaves the current packet as-is.
func Unchanged() Result {
	return Result{}
}

// Replace substitutes p for the current packet for the rest of the chain.
func Replace(p *core.Packet) Result {
	return Result{replacement: p}
}

// Hook is one transform callback. It receives the current packet — possibly
// already replaced by an earlier hook — and must not mutate it in place.
type Hook func(pkt *core.Packet, dir core.Direction) Result

// Pipeline is the hook registry: an ordered list of global hooks plus
// per-method ordered lists. It is owned by a single engine instance and is
// not safe for concurrent mutation; see the interceptor's threading contract.
type Pipeline struct {
	global   []Hook
	byMethod map[string][]Hook
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{byMethod: make(map[string][]Hook)}
}

// RegisterGlobalHook appends h to the method-independent chain.
func (p *Pipeline) RegisterGlobalHook(h Hook) {
	p.global = append(p.global, h)
}

// RegisterMethodHook appends h to the chain for method. The key must satisfy
// the wire method charset; anything else could never match a decoded packet
// and is rejected as a caller bug.
func (p *Pipeline) RegisterMethodHook(method string, h Hook) error {
	if !core.ValidMethod(method) {
		return fmt.Errorf("%w: %q", core.ErrInvalidHookKey, method)
	}
	p.byMethod[method] = append(p.byMethod[method], h)
	return nil
}

// Trigger runs all global hooks in registration order, then the hooks
// registered for the packet's method, in registration order. Each hook sees
// the current packet and may replace it. A hook that panics is recovered,
// logged and skipped; the chain continues with the last good packet.
func (p *Pipeline) Trigger(pkt *core.Packet, dir core.Direction) *core.Packet {
	for _, h := range p.global {
		pkt = runHook(h, pkt, dir)
	}
	for _, h := range p.byMethod[pkt.Header.Method] {
		pkt = runHook(h, pkt, dir)
	}
	return pkt
}

// Clear removes all registered hooks.
func (p *Pipeline) Clear() {
	p.global = nil
	p.byMethod = make(map[string][]Hook)
}

// HookCount returns the total number of registered hooks, global included.
func (p *Pipeline) HookCount() int {
	n := len(p.global)
	for _, chain := range p.byMethod {
		n += len(chain)
	}
	return n
}

// runHook invokes one hook with panic containment.
func runHook(h Hook, pkt *core.Packet, dir core.Direction) (out *core.Packet) {
	out = pkt
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().WithField("method", pkt.Header.Method).
				Errorf("hook panicked, skipping: %v", r)
		}
	}()
	if res := h(pkt, dir); res.replacement != nil {
		out = res.replacement
	}
	return out
}
