// Package filters resolves declarative filter providers into an ordered
// filter schema for the dashboard's toolbar. Providers may depend on the
// selected values of other filters; resolution runs to a fixed point so that
// a provider only enters the schema once every dependency is already there.
package filters

import (
	"context"

	"github.com/msu-tj/schedule-desk-api/internal/models"
)

// Item is one backing record of a provider: the option value/label plus the
// attributes dependency predicates match against.
type Item struct {
	Value string
	Label string
	Attrs map[string]string
}

// Predicate decides whether a backing item survives the current selection of
// the provider's dependencies.
type Predicate func(item Item, values models.FilterValues) bool

// Loader fetches the backing items of a provider.
type Loader func(ctx context.Context) ([]Item, error)

// Provider describes one filterable dimension. Static providers carry their
// items inline; entity-backed providers load them through the Loader.
type Provider struct {
	Key       string
	Label     string
	DependsOn []string
	ShowWhen  *models.ShowWhen
	Predicate Predicate

	loader Loader
	items  []Item
	err    error
	loaded bool
}

// Static returns a provider with a fixed option set that never loads.
func Static(key, label string, items []Item) *Provider {
	return &Provider{Key: key, Label: label, items: items, loaded: true}
}

// EntityBacked returns a provider whose items come from a loader.
func EntityBacked(key, label string, loader Loader) *Provider {
	return &Provider{Key: key, Label: label, loader: loader}
}

// Dependent marks the provider as depending on other filter keys, filtered by
// the predicate.
func (p *Provider) Dependent(predicate Predicate, keys ...string) *Provider {
	p.DependsOn = keys
	p.Predicate = predicate
	return p
}

// VisibleWhen attaches a UI visibility condition. It does not affect
// resolution ordering.
func (p *Provider) VisibleWhen(key, value string) *Provider {
	p.ShowWhen = &models.ShowWhen{Key: key, Value: value}
	return p
}

// Load fetches the backing items. Errors fail soft: the provider simply
// contributes no schema entry, and the resolver flags the aggregate.
func (p *Provider) Load(ctx context.Context) {
	if p.loader == nil || p.loaded {
		return
	}
	p.items, p.err = p.loader(ctx)
	p.loaded = true
}

// Err returns the load error, if any.
func (p *Provider) Err() error {
	return p.err
}

// createFilter builds the schema entry for the current filter values, or nil
// when the provider has nothing to offer: data not loaded, load failed, or
// the dependency selection leaves zero matching items.
func (p *Provider) createFilter(values models.FilterValues) *models.FilterSchemaEntry {
	if !p.loaded || p.err != nil || len(p.items) == 0 {
		return nil
	}

	items := p.items
	if len(p.DependsOn) > 0 && p.Predicate != nil {
		filtered := make([]Item, 0, len(items))
		for _, item := range items {
			if p.Predicate(item, values) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if len(items) == 0 {
		return nil
	}

	options := make([]models.FilterOption, 0, len(items))
	for _, item := range items {
		options = append(options, models.FilterOption{Key: item.Value, Value: item.Value, Label: item.Label})
	}

	return &models.FilterSchemaEntry{
		Key:       p.Key,
		Label:     p.Label,
		Options:   options,
		DependsOn: p.DependsOn,
		ShowWhen:  p.ShowWhen,
	}
}

// Resolver composes a provider set into a flat, dependency-ordered schema.
type Resolver struct {
	providers []*Provider
}

// NewResolver builds a resolver over providers in their declaration order.
// That order is the tie-breaker whenever several providers become resolvable
// in the same pass.
func NewResolver(providers ...*Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Load fetches every provider's backing data eagerly. Resolution afterwards
// runs against these snapshots only, so schema ordering never depends on
// network arrival order.
func (r *Resolver) Load(ctx context.Context) {
	for _, p := range r.providers {
		p.Load(ctx)
	}
}

// HasError reports whether any provider failed to load. Failed providers are
// skipped rather than blocking siblings, so this is advisory.
func (r *Resolver) HasError() bool {
	for _, p := range r.providers {
		if p.err != nil {
			return true
		}
	}
	return false
}

// Resolve computes the schema for the current filter values. Providers are
// scanned repeatedly in declaration order; one is admitted once all of its
// DependsOn keys are already admitted. The loop stops when a full pass adds
// nothing or every provider is placed. Current values are an input, not a
// cache key: callers rerun Resolve with fresh values against the same
// provider snapshot.
func (r *Resolver) Resolve(values models.FilterValues) []models.FilterSchemaEntry {
	resolved := make([]models.FilterSchemaEntry, 0, len(r.providers))
	admitted := make(map[string]struct{}, len(r.providers))

	changed := true
	for changed && len(resolved) < len(r.providers) {
		changed = false

		for _, p := range r.providers {
			entry := p.createFilter(values)
			if entry == nil {
				continue
			}
			if _, done := admitted[entry.Key]; done {
				continue
			}

			satisfied := true
			for _, dep := range entry.DependsOn {
				if _, ok := admitted[dep]; !ok {
					satisfied = false
					break
				}
			}
			if !satisfied {
				continue
			}

			resolved = append(resolved, *entry)
			admitted[entry.Key] = struct{}{}
			changed = true
		}
	}

	return resolved
}
