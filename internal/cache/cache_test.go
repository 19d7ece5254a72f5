package cache

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/core"
	"salesdash/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)
	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	_, _ = c.Get("key1") // key2 becomes least recent
	c.Set("key4", "value4")

	_, found := c.Get("key2")
	assert.False(t, found, "key2 should have been evicted")
	for _, k := range []string{"key1", "key3", "key4"} {
		_, found := c.Get(k)
		assert.True(t, found, k)
	}
	assert.Equal(t, 3, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute)
	c.now = clock.now

	c.Set("a", "1")
	c.Set("b", "2")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", "3")
	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Size())

	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUOverwriteAndDelete(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	c.Delete("missing")
	assert.Zero(t, c.Size())

	c.Set("x", 1)
	c.Set("y", 2)
	c.Purge()
	assert.Zero(t, c.Size())
}

func TestLRUStats(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Size: 1}, c.Stats())
}

func TestDashboardCache(t *testing.T) {
	r1, err := core.NewSalesRecord("1", 2024, 1, 100, 1, "Books", "Europe", "Fiction Novels")
	require.NoError(t, err)
	r2, err := core.NewSalesRecord("2", 2023, 1, 50, 1, "Sports", "Europe", "Outdoor Gear")
	require.NoError(t, err)
	recs := []core.SalesRecord{r1, r2}
	gen := time.Unix(1700000000, 0)
	d := NewDashboardCache(8, time.Hour)

	spec := core.DefaultFilterSpec().ToggleCategory("Books").ToggleCategory("Sports")
	v, hit := d.Get(recs, gen, spec)
	assert.False(t, hit)
	assert.Equal(t, 2, v.FilteredCount)

	reordered := core.DefaultFilterSpec().ToggleCategory("Sports").ToggleCategory("Books").SetChartType(core.ChartPie)
	_, hit = d.Get(recs, gen, reordered)
	assert.True(t, hit, "same data key should hit")

	_, hit = d.Get(recs, gen.Add(time.Second), spec)
	assert.False(t, hit, "new generation must miss")

	v, hit = d.Get(recs, gen, spec.SetThreshold(60))
	assert.False(t, hit)
	assert.Equal(t, 1, v.FilteredCount)
}

func TestDashboardCacheLabelsWithSeparators(t *testing.T) {
	r, err := core.NewSalesRecord("1", 2024, 1, 100, 1, "a", "b|r=", "Widget")
	require.NoError(t, err)
	recs := []core.SalesRecord{r}
	gen := time.Unix(1700000000, 0)
	d := NewDashboardCache(8, time.Hour)

	first, err := core.NewFilterSpec(nil, []string{"a|r=b"}, nil, nil, 0, core.ChartBar)
	require.NoError(t, err)
	v, hit := d.Get(recs, gen, first)
	assert.False(t, hit)
	assert.Equal(t, 0, v.FilteredCount)

	second, err := core.NewFilterSpec(nil, []string{"a"}, []string{"b|r="}, nil, 0, core.ChartBar)
	require.NoError(t, err)
	v, hit = d.Get(recs, gen, second)
	assert.False(t, hit, "a different filter must not reuse a cached view")
	assert.Equal(t, 1, v.FilteredCount)
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[string](10, time.Millisecond)
	c.now = clock.now
	c.Set("a", "1")
	clock.t = clock.t.Add(time.Second)

	m := NewManager(log.New(log.Config{Output: io.Discard}))
	m.Register(c)
	assert.Equal(t, 1, m.CleanNow())

	m.StartCleanup(10 * time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(log.New(log.Config{Output: io.Discard}))
	m.Stop()
}
