// Package models re-exports core types for external use.
package models

import "firestige.xyz/wiretap/internal/core"

// Re-export core packet types for consumers outside the engine
type (
	Direction         = core.Direction
	Header            = core.Header
	Packet            = core.Packet
	InterceptedPacket = core.InterceptedPacket
	Stats             = core.Stats
)

const (
	DirectionSend = core.DirectionSend
	DirectionRecv = core.DirectionRecv

	HeaderSize  = core.HeaderSize
	MaxBodySize = core.MaxBodySize
)
