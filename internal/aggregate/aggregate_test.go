package aggregate

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colonia-dashboard/internal/geo"
	"colonia-dashboard/internal/reports"
)

func colonias(names ...string) []geo.Colonia {
	ring := orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	out := make([]geo.Colonia, len(names))
	for i, n := range names {
		out[i] = geo.NewColonia(n, "Gustavo A. Madero", orb.MultiPolygon{{ring}})
	}
	return out
}

func rep(colonia string, svc reports.Service, st reports.Status) reports.Report {
	return reports.Report{
		Colonia:    colonia,
		Service:    svc,
		Status:     st,
		ReportedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Location:   orb.Point{0.5, 0.5},
	}
}

func sample() []reports.Report {
	return []reports.Report{
		rep("Lindavista", reports.Fire, reports.Pending),
		rep("Aragón", reports.Fire, reports.Resolved),
		rep("Lindavista", reports.Pothole, reports.Pending),
		rep("Lindavista", reports.Fire, reports.InProgress),
		rep("Aragón", reports.Pothole, reports.Pending),
	}
}

func TestCountByColoniaSumsToTotal(t *testing.T) {
	rs := sample()
	counts := CountByColonia(rs)
	assert.Equal(t, map[string]int{"Lindavista": 3, "Aragón": 2}, counts)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, len(rs), total)
}

func TestMergeCountsFillsZero(t *testing.T) {
	cs := colonias("Lindavista", "Aragón", "Cuautepec")
	got := MergeCounts(cs, CountByColonia(sample()))
	assert.Equal(t, []ColoniaAggregate{
		{Colonia: "Lindavista", Count: 3},
		{Colonia: "Aragón", Count: 2},
		{Colonia: "Cuautepec", Count: 0},
	}, got)

	got = MergeCounts(cs, CountByColonia(nil))
	for _, a := range got {
		assert.Zero(t, a.Count)
	}
	got = MergeCounts(colonias("Aragón"), map[string]int{"Aragón": 1, "Fuera": 9})
	assert.Equal(t, []ColoniaAggregate{{Colonia: "Aragón", Count: 1}}, got)
}

func TestFilter(t *testing.T) {
	rs := sample()

	fire := Filter(rs, reports.Fire, nil)
	require.Len(t, fire, 3)
	assert.Equal(t, reports.Pending, fire[0].Status)
	assert.Equal(t, reports.Resolved, fire[1].Status)
	assert.Equal(t, reports.InProgress, fire[2].Status)

	pending := reports.Pending
	got := Filter(rs, reports.Pothole, &pending)
	assert.Len(t, got, 2)

	resolved := reports.Resolved
	got = Filter(rs, reports.Pothole, &resolved)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCountByStatus(t *testing.T) {
	rs := sample()
	got := CountByStatus(rs)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, got[reports.Pending])
	assert.Equal(t, 1, got[reports.Resolved])
	assert.Equal(t, 1, got[reports.InProgress])

	empty := CountByStatus(nil)
	assert.Equal(t, map[reports.Status]int{reports.InProgress: 0, reports.Resolved: 0, reports.Pending: 0}, empty)
}

func TestAggregatesAreIdempotent(t *testing.T) {
	rs := sample()
	assert.Equal(t, CountByColonia(rs), CountByColonia(rs))
	assert.Equal(t, CountByStatus(rs), CountByStatus(rs))
	cs := colonias("Lindavista", "Aragón")
	assert.Equal(t, StatusMatrix(cs, rs), StatusMatrix(cs, rs))
}

func TestStatusMatrix(t *testing.T) {
	cs := colonias("Lindavista", "Aragón", "Cuautepec")
	cells := StatusMatrix(cs, sample())
	require.Len(t, cells, 9)
	assert.Equal(t, HeatCell{Colonia: "Lindavista", Status: reports.InProgress, Count: 1}, cells[0])
	assert.Equal(t, HeatCell{Colonia: "Lindavista", Status: reports.Pending, Count: 2}, cells[2])
	assert.Equal(t, HeatCell{Colonia: "Cuautepec", Status: reports.Pending, Count: 0}, cells[8])
}
