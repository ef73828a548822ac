package follow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeduplicatorSuppressesSecondDelivery(t *testing.T) {
	d := NewDeduplicator()
	require.False(t, d.Seen("tx1-100"))
	require.True(t, d.Seen("tx1-100"))
	require.False(t, d.Seen("tx2-100"))
}

func TestDeduplicatorCompaction(t *testing.T) {
	d := NewDeduplicator()
	for i := 0; i <= seenCap; i++ {
		d.Seen(fmt.Sprintf("id-%d", i))
	}

	require.Equal(t, seenCompact, d.Len(), "compaction keeps the most recent half")

	// The newest ids survive the compaction, the oldest do not.
	require.True(t, d.Seen(fmt.Sprintf("id-%d", seenCap)))
	require.False(t, d.Seen("id-0"))
}
