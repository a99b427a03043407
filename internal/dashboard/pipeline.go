package dashboard

import (
	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/internal/selection"
)

// Pipeline binds one configured source to a Cache.
type Pipeline struct {
	cache  *Cache
	source dataset.Source
	policy accuracy.ZeroActualPolicy
}

// NewPipeline returns a Pipeline reading src through cache.
func NewPipeline(cache *Cache, src dataset.Source, policy accuracy.ZeroActualPolicy) *Pipeline {
	return &Pipeline{cache: cache, source: src, policy: policy}
}

// Source returns the configured source.
func (p *Pipeline) Source() dataset.Source {
	return p.source
}

// Dataset returns the memoized dataset of the source.
func (p *Pipeline) Dataset() (*Dataset, error) {
	return p.cache.Dataset(p.source, p.policy)
}

// View loads (or reuses) the dataset and filters it. Load errors are
// returned with a nil view; an empty selection returns the empty view and
// selection.ErrEmptySelection.
func (p *Pipeline) View(sel selection.Selection) (*View, error) {
	data, err := p.Dataset()
	if err != nil {
		return nil, err
	}
	return data.Filter(sel)
}
