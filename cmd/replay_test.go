package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wiretap/internal/core"
)

func TestParseDumpLine(t *testing.T) {
	dir, buf, err := parseDumpLine("send deadbeef")
	require.NoError(t, err)
	assert.Equal(t, core.DirectionSend, dir)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, buf)

	dir, _, err = parseDumpLine("recv 00")
	require.NoError(t, err)
	assert.Equal(t, core.DirectionRecv, dir)
}

func TestParseDumpLineRejectsMalformedLines(t *testing.T) {
	cases := []string{
		"send",
		"send deadbeef extra",
		"sideways deadbeef",
		"send nothex",
	}
	for _, line := range cases {
		_, _, err := parseDumpLine(line)
		assert.Error(t, err, "line %q", line)
	}
}
