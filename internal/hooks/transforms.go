package hooks

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/wiretap/internal/core"
	"firestige.xyz/wiretap/internal/log"
	"firestige.xyz/wiretap/internal/wire"
)

// Built-in transforms, constructed from configuration by action name. Each
// constructor takes the free-form options map from the config file and
// decodes it into its own option struct.

// Build constructs a built-in transform by action name.
func Build(codec *wire.Codec, action string, opts map[string]any) (Hook, error) {
	switch action {
	case "log":
		return NewLogHook(), nil
	case "redact":
		return NewRedactBodyHook(codec, opts)
	case "status_override":
		return NewStatusOverrideHook(codec, opts)
	default:
		return nil, fmt.Errorf("%w: unknown hook action %q", core.ErrConfigInvalid, action)
	}
}

// NewLogHook returns an observer hook that logs every packet it sees and
// never replaces it.
func NewLogHook() Hook {
	return func(pkt *core.Packet, dir core.Direction) Result {
		log.GetLogger().WithFields(map[string]interface{}{
			"direction": dir,
			"method":    pkt.Header.Method,
			"packet_id": pkt.Header.PacketID,
			"body_len":  len(pkt.Body),
		}).Debug("packet observed")
		return Unchanged()
	}
}

type redactOptions struct {
	// Fields are the structured-body keys to blank out.
	Fields []string `mapstructure:"fields"`
	// Placeholder replaces redacted values. Defaults to "***".
	Placeholder string `mapstructure:"placeholder"`
	// Resign recomputes the signature over the rewritten frame. When false
	// the replacement carries no signature, which a verifying interceptor
	// flags as tampered.
	Resign bool `mapstructure:"resign"`
}

// NewRedactBodyHook returns a transform that blanks configured keys in
// structured bodies before packets reach downstream consumers. Packets
// without a structured body pass through unchanged.
func NewRedactBodyHook(codec *wire.Codec, opts map[string]any) (Hook, error) {
	var o redactOptions
	if err := mapstructure.Decode(opts, &o); err != nil {
		return nil, fmt.Errorf("redact options: %w", err)
	}
	if len(o.Fields) == 0 {
		return nil, fmt.Errorf("%w: redact requires at least one field", core.ErrConfigInvalid)
	}
	if o.Placeholder == "" {
		o.Placeholder = "***"
	}

	return func(pkt *core.Packet, dir core.Direction) Result {
		doc, changed := redactDoc(pkt.Decoded, o.Fields, o.Placeholder)
		if !changed {
			return Unchanged()
		}
		body, err := wire.EncodeBody(doc)
		if err != nil {
			log.GetLogger().WithError(err).Warn("redact: body re-encode failed")
			return Unchanged()
		}
		next, err := rebuild(codec, pkt, pkt.Header, body, o.Resign)
		if err != nil {
			log.GetLogger().WithError(err).Warn("redact: frame rebuild failed")
			return Unchanged()
		}
		return Replace(next)
	}, nil
}

type statusOverrideOptions struct {
	Status int16 `mapstructure:"status"`
	Resign bool  `mapstructure:"resign"`
}

// NewStatusOverrideHook returns a transform that rewrites the status code of
// every packet it is attached to.
func NewStatusOverrideHook(codec *wire.Codec, opts map[string]any) (Hook, error) {
	var o statusOverrideOptions
	if err := mapstructure.Decode(opts, &o); err != nil {
		return nil, fmt.Errorf("status override options: %w", err)
	}

	return func(pkt *core.Packet, dir core.Direction) Result {
		if pkt.Header.StatusCode == o.Status {
			return Unchanged()
		}
		h := pkt.Header
		h.StatusCode = o.Status
		next, err := rebuild(codec, pkt, h, pkt.Body, o.Resign)
		if err != nil {
			log.GetLogger().WithError(err).Warn("status override: frame rebuild failed")
			return Unchanged()
		}
		return Replace(next)
	}, nil
}

// rebuild assembles a replacement packet from a rewritten header and body.
// Unless resign is set the replacement carries no signature.
func rebuild(codec *wire.Codec, prev *core.Packet, h core.Header, body []byte, resign bool) (*core.Packet, error) {
	frame, sig, err := codec.Encode(h, body, resign)
	if err != nil {
		return nil, err
	}
	next := codec.Decode(frame, false)
	if next == nil {
		return nil, fmt.Errorf("wiretap: rebuilt frame did not decode")
	}
	next.Direction = prev.Direction
	next.Timestamp = prev.Timestamp
	next.Signature = sig
	return next, nil
}

// redactDoc blanks the listed keys in a structured body. CBOR decodes maps
// as map[interface{}]interface{}; string-keyed maps appear when the document
// was produced by this process.
func redactDoc(doc any, fields []string, placeholder string) (any, bool) {
	switch m := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(m))
		changed := false
		for k, v := range m {
			if contains(fields, k) {
				out[k] = placeholder
				changed = true
			} else {
				out[k] = v
			}
		}
		return out, changed
	case map[any]any:
		out := make(map[any]any, len(m))
		changed := false
		for k, v := range m {
			if s, ok := k.(string); ok && contains(fields, s) {
				out[k] = placeholder
				changed = true
			} else {
				out[k] = v
			}
		}
		return out, changed
	default:
		return doc, false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
