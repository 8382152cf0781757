package billboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/asrun/internal/asrun"
	"github.com/stwalsh4118/asrun/internal/asrun/asruntest"
	"github.com/stwalsh4118/asrun/internal/region"
)

func decode(t *testing.T, lines ...asruntest.Line) *asrun.ParsedLogData {
	t.Helper()
	return asrun.NewDecoder(region.MustDefault()).Decode(asruntest.File(lines...), "SYD")
}

func titles(entries []*asrun.LogEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.DatabaseTitle)
	}
	return out
}

func TestAssociate_ProgramWindow(t *testing.T) {
	data := decode(t,
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP DAY 4"),
		asruntest.Interstitial("20260104 06:05:00:00", "OB UNITED CUP"),
		asruntest.Program("20260104 07:00:00:00", "NEWS"),
		asruntest.Interstitial("20260104 07:10:00:00", "CB NEWS"),
	)

	got := Associate(data, "UNITED CUP")

	assert.Equal(t, []string{"OB UNITED CUP"}, titles(got))
}

func TestAssociate_NoNextProgramRunsToEndOfDay(t *testing.T) {
	data := decode(t,
		asruntest.Interstitial("20260104 05:59:59:00", "OB EARLY"),
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP"),
		asruntest.Interstitial("20260104 06:00:00:00", "OB AT START"),
		asruntest.Interstitial("20260104 23:59:00:00", "CB LATE"),
	)

	got := Associate(data, "united cup")

	assert.Equal(t, []string{"OB AT START", "CB LATE"}, titles(got))
}

func TestAssociate_UnionsWindowsWithoutDuplicates(t *testing.T) {
	data := decode(t,
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP"),
		asruntest.Interstitial("20260104 06:10:00:00", "OB UNITED CUP"),
		asruntest.Program("20260104 06:30:00:00", "UNITED CUP"),
		asruntest.Interstitial("20260104 06:40:00:00", "MB UNITED CUP"),
		asruntest.Program("20260104 07:00:00:00", "NEWS"),
		asruntest.Program("20260104 08:00:00:00", "UNITED CUP"),
		asruntest.Interstitial("20260104 08:10:00:00", "CB UNITED CUP"),
		asruntest.Program("20260104 09:00:00:00", "MOVIE"),
	)

	got := Associate(data, "UNITED CUP")

	assert.Equal(t, []string{"OB UNITED CUP", "MB UNITED CUP", "CB UNITED CUP"}, titles(got))
}

func TestAssociate_IdenticalLinesAreDistinct(t *testing.T) {
	bb := asruntest.Interstitial("20260104 06:10:00:00", "OB UNITED CUP")
	data := decode(t,
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP"),
		bb,
		bb,
		asruntest.Program("20260104 07:00:00:00", "NEWS"),
	)

	got := Associate(data, "UNITED CUP")

	require.Len(t, got, 2)
	assert.NotSame(t, got[0], got[1])
	assert.Equal(t, 2, got[0].LineNumber)
	assert.Equal(t, 3, got[1].LineNumber)
}

func TestAssociate_SkipsUntimedEntries(t *testing.T) {
	data := decode(t,
		asruntest.Program("bad", "UNITED CUP"),
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP"),
		asruntest.Interstitial("bad", "OB UNTIMED"),
		asruntest.Program("bad", "NEWS"),
		asruntest.Interstitial("20260104 06:20:00:00", "MB TIMED"),
		asruntest.Program("20260104 06:30:00:00", "NEWS"),
		asruntest.Interstitial("20260104 06:40:00:00", "CB OUTSIDE"),
	)

	got := Associate(data, "UNITED CUP")

	assert.Equal(t, []string{"MB TIMED"}, titles(got))
}

func TestAssociate_WindowWrapsPastMidnight(t *testing.T) {
	data := decode(t,
		asruntest.Program("20260104 23:30:00:00", "LATE SHOW"),
		asruntest.Interstitial("20260104 23:45:00:00", "OB LATE SHOW"),
		asruntest.Interstitial("20260105 00:15:00:00", "CB LATE SHOW"),
		asruntest.Program("20260105 00:30:00:00", "NEWS"),
		asruntest.Interstitial("20260105 00:45:00:00", "OB NEWS"),
	)

	windows := Windows(data, "LATE SHOW")
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Wraps())

	got := Associate(data, "LATE SHOW")

	assert.Equal(t, []string{"OB LATE SHOW", "CB LATE SHOW"}, titles(got))
}

func TestAssociate_NoMatch(t *testing.T) {
	data := decode(t,
		asruntest.Program("20260104 06:00:00:00", "NEWS"),
		asruntest.Interstitial("20260104 06:05:00:00", "OB NEWS"),
	)

	assert.Empty(t, Associate(data, "UNITED CUP"))
}

func TestWindow_Contains(t *testing.T) {
	plain := Window{Start: 100, End: 200}
	assert.True(t, plain.Contains(100))
	assert.True(t, plain.Contains(199))
	assert.False(t, plain.Contains(200))
	assert.False(t, plain.Contains(99))

	wrapped := Window{Start: 86000, End: 100}
	assert.True(t, wrapped.Contains(86000))
	assert.True(t, wrapped.Contains(50))
	assert.False(t, wrapped.Contains(100))
	assert.False(t, wrapped.Contains(500))
}

func TestAssociate_OverlappingWindowsDeduplicate(t *testing.T) {
	data := decode(t,
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP"),
		asruntest.Program("20260104 05:00:00:00", "NEWS"),
		asruntest.Program("20260104 07:00:00:00", "UNITED CUP"),
		asruntest.Interstitial("20260104 07:10:00:00", "MB UNITED CUP"),
	)

	windows := Windows(data, "UNITED CUP")
	require.Len(t, windows, 2)
	assert.True(t, windows[0].Contains(7*3600+600))
	assert.True(t, windows[1].Contains(7*3600+600))

	got := Associate(data, "UNITED CUP")

	assert.Equal(t, []string{"MB UNITED CUP"}, titles(got))
}
