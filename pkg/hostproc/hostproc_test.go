package hostproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("drops_leading_aggregate_and_splits_tail", func(t *testing.T) {
		in := "cpu  300 0 150 600 0 0 0 0 0 0\n" +
			"cpu0 100 0 50 200 0 0 0 0 0 0\n" +
			"cpu1 200 0 100 400 0 0 0 0 0 0\n" +
			"intr 12345 0 0\n" +
			"ctxt 999\n"
		tbl, err := Parse(strings.NewReader(in), nil)
		require.NoError(t, err)
		require.Len(t, tbl.CPUs, 2)
		assert.Equal(t, 0, tbl.CPUs[0].Index)
		assert.Equal(t, 1, tbl.CPUs[1].Index)
		assert.Equal(t, "intr 12345 0 0\nctxt 999\n", tbl.Tail)
	})

	t.Run("malformed_cpu_line_is_skipped_not_fatal", func(t *testing.T) {
		in := "cpu0 1 2 3 4 5 6 7 8 9\n" +
			"cpu1 1 0 0 0 0 0 0 0 0 0\n"
		// cpu0 has 9 fields, one short: logged and skipped, cpu1 still parses.
		tbl, err := Parse(strings.NewReader(in), nil)
		require.NoError(t, err)
		require.Len(t, tbl.CPUs, 1)
		assert.Equal(t, 1, tbl.CPUs[0].Index)
	})

	t.Run("non_contiguous_cpu_indices", func(t *testing.T) {
		in := "cpu  0 0 0 0 0 0 0 0 0 0\n" +
			"cpu0 1 0 0 0 0 0 0 0 0 0\n" +
			"cpu2 1 0 0 0 0 0 0 0 0 0\n"
		tbl, err := Parse(strings.NewReader(in), nil)
		require.NoError(t, err)
		require.Len(t, tbl.CPUs, 2)
		assert.Equal(t, 0, tbl.CPUs[0].Index)
		assert.Equal(t, 2, tbl.CPUs[1].Index)
		assert.Equal(t, "", tbl.Tail)
	})
}

func TestLineBusy(t *testing.T) {
	l := Line{User: 10, Nice: 1, System: 5, Idle: 100, Iowait: 2, Irq: 1, Softirq: 1, Steal: 0, Guest: 0, GuestN: 0}
	assert.Equal(t, uint64(20), uint64(l.Busy()))
}
