package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/core"
)

func TestNewStartsAtDefault(t *testing.T) {
	s := New()
	spec, v := s.Current()
	assert.Equal(t, core.DefaultFilterSpec(), spec)
	assert.Zero(t, v)
}

func TestApply(t *testing.T) {
	s := New()

	spec, v, err := s.Apply(core.Action{Type: core.ActionToggleCategory, Value: "Books"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Books"}, spec.Categories)
	assert.Equal(t, uint64(1), v)

	spec, v, err = s.Apply(core.Action{Type: core.ActionQuickFilter, Value: string(core.QuickHighRevenue)})
	require.NoError(t, err)
	assert.Equal(t, float64(core.HighRevenueThreshold), spec.Threshold)
	assert.Equal(t, []string{"Books"}, spec.Categories)
	assert.Equal(t, uint64(2), v)

	cur, cv := s.Current()
	assert.Equal(t, spec, cur)
	assert.Equal(t, v, cv)
}

func TestApplyInvalidLeavesStateUnchanged(t *testing.T) {
	s := New()
	_, _, err := s.Apply(core.Action{Type: core.ActionToggleRegion, Value: "Europe"})
	require.NoError(t, err)
	before, v := s.Current()

	_, _, err = s.Apply(core.Action{Type: core.ActionSetThreshold, Threshold: -1})
	assert.True(t, errors.Is(err, core.ErrInvalidThreshold))
	_, _, err = s.Apply(core.Action{Type: "explode"})
	assert.True(t, errors.Is(err, core.ErrUnknownAction))

	after, v2 := s.Current()
	assert.Equal(t, before, after)
	assert.Equal(t, v, v2)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := New()
	spec, _ := s.Current()
	spec.Years[0] = 1999
	again, _ := s.Current()
	assert.Equal(t, core.DefaultYears(), again.Years)
}

func TestReplace(t *testing.T) {
	s := New()
	bad := core.DefaultFilterSpec()
	bad.ChartType = "radar"
	_, _, err := s.Replace(bad)
	assert.Error(t, err)
	_, v := s.Current()
	assert.Equal(t, uint64(0), v)

	good := core.DefaultFilterSpec().SetYears([]int{2024}).SetChartType(core.ChartPie)
	got, v, err := s.Replace(good)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, []int{2024}, got.Years)
	cur, _ := s.Current()
	assert.Equal(t, good, cur)
}

func TestApplyReturnsCommittedVersion(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	seen := make([]uint64, 50)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, v, err := s.Apply(core.Action{Type: core.ActionSetThreshold, Threshold: float64(i + 1)})
			assert.NoError(t, err)
			seen[i] = v
		}(i)
	}
	wg.Wait()

	unique := map[uint64]bool{}
	for _, v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, len(seen), "each commit reports its own version")
}

func TestConcurrentToggles(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	// an even number of toggles of the same value cancels out
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Apply(core.Action{Type: core.ActionToggleProduct, Value: "Laptops"})
		}()
	}
	wg.Wait()

	cur, v := s.Current()
	assert.Empty(t, cur.Products)
	assert.Equal(t, uint64(100), v)
}
