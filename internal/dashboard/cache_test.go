package dashboard

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/selection"
	"github.com/iwvelando/commodity-forecast/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const wideCSV = `ds,lokasi,komoditas,harga_aktual,harga_prediksi
2024-01-01,A,X,100,110
2024-01-02,A,X,0,90
2024-01-03,A,X,200,180
`

func writeSource(t *testing.T, contents string) dataset.Source {
	t.Helper()
	path := testutil.WriteFile(t, "harga.csv", contents)
	return dataset.Source{Shape: dataset.ShapeTaggedSingleFile, Observations: path}
}

func countingCache(calls *int32) *Cache {
	c := NewCache(zap.NewNop())
	c.load = func(logger *zap.Logger, src dataset.Source) (*dataset.Table, error) {
		atomic.AddInt32(calls, 1)
		return dataset.Load(logger, src)
	}
	return c
}

func TestCacheLoadsOnce(t *testing.T) {
	var calls int32
	c := countingCache(&calls)
	src := writeSource(t, wideCSV)

	first, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	require.NoError(t, err)
	second, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, c.Len())
	assert.InDelta(t, 10.0, *first.Metrics[0].MAPEPercent, 1e-9)
}

func TestCacheSeparatesPolicies(t *testing.T) {
	var calls int32
	c := countingCache(&calls)
	src := writeSource(t, wideCSV)

	excl, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	require.NoError(t, err)
	incl, err := c.Dataset(src, accuracy.IncludeZeroActual)
	require.NoError(t, err)

	assert.NotSame(t, excl, incl)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, c.Len())
}

func TestSourceIDIncludesSheets(t *testing.T) {
	base := dataset.Source{
		Shape:        dataset.ShapeTaggedSplitFiles,
		Observations: "semua_output.xlsx",
		Metrics:      "semua_output.xlsx",
		Sheet:        "Peramalan",
	}
	withMetricsSheet := base
	withMetricsSheet.MetricsSheet = "MAPE"
	otherSheet := base
	otherSheet.Sheet = "Harga"

	id := sourceID(base, accuracy.ExcludeZeroActual)
	assert.NotEqual(t, id, sourceID(withMetricsSheet, accuracy.ExcludeZeroActual))
	assert.NotEqual(t, id, sourceID(otherSheet, accuracy.ExcludeZeroActual))
	assert.Equal(t, id, sourceID(base, accuracy.ExcludeZeroActual))
}

func TestCacheReloadsChangedFile(t *testing.T) {
	var calls int32
	c := countingCache(&calls)
	src := writeSource(t, wideCSV)

	first, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	require.NoError(t, err)
	require.Len(t, first.Observations, 3)

	require.NoError(t, os.WriteFile(src.Observations, []byte(wideCSV+"2024-01-04,A,X,300,330\n"), 0600))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src.Observations, later, later))

	second, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	require.NoError(t, err)
	assert.Len(t, second.Observations, 4)
	assert.Len(t, first.Observations, 3, "earlier dataset must stay intact")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, c.Len())
}

func TestCacheSharesConcurrentLoads(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := NewCache(zap.NewNop())
	c.load = func(logger *zap.Logger, src dataset.Source) (*dataset.Table, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return dataset.Load(logger, src)
	}
	src := writeSource(t, wideCSV)

	const callers = 8
	results := make([]*Dataset, callers)
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			data, err := c.Dataset(src, accuracy.ExcludeZeroActual)
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCacheMissingInput(t *testing.T) {
	c := NewCache(nil)
	src := dataset.Source{Shape: dataset.ShapeTaggedSingleFile, Observations: filepath.Join(t.TempDir(), "missing.csv")}

	_, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	assert.ErrorIs(t, err, dataset.ErrInputNotFound)
	assert.Zero(t, c.Len())
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	var calls int32
	c := countingCache(&calls)
	src := writeSource(t, "ds,lokasi,komoditas,harga_aktual,harga_prediksi\nsoon,A,X,1,1\n")

	_, err := c.Dataset(src, accuracy.ExcludeZeroActual)
	assert.ErrorIs(t, err, dataset.ErrDataFormat)
	_, err = c.Dataset(src, accuracy.ExcludeZeroActual)
	assert.ErrorIs(t, err, dataset.ErrDataFormat)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPipelineView(t *testing.T) {
	src := writeSource(t, wideCSV)
	p := NewPipeline(NewCache(zap.NewNop()), src, accuracy.ExcludeZeroActual)
	assert.Equal(t, src, p.Source())

	view, err := p.View(selection.Parse("A", "X"))
	require.NoError(t, err)
	assert.Len(t, view.Observations, 3)
	assert.Len(t, view.Comparison, 3)

	view, err = p.View(selection.Parse("B", ""))
	assert.ErrorIs(t, err, selection.ErrEmptySelection)
	assert.True(t, view.Empty())
}
