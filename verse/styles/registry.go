package styles

import (
	"fmt"
	"sync"
)

// Registry holds the material styles available to one game client. All
// methods are safe for concurrent use; reads take a shared lock so view
// building on the hot path never blocks other readers.
type Registry struct {
	mu     sync.RWMutex
	styles map[string]MaterialStyle
	order  []string
	hooks  []func(styleID string)
}

// NewRegistry creates an empty style registry.
func NewRegistry() *Registry {
	return &Registry{styles: make(map[string]MaterialStyle)}
}

// Register adds a style or replaces the one sharing its id. Replacement
// keeps the original registration position. Override colors are clamped
// into [0, 1] on the way in.
func (r *Registry) Register(style MaterialStyle) error {
	style = style.normalize()
	if err := style.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.styles[style.ID]; !exists {
		r.order = append(r.order, style.ID)
	}
	r.styles[style.ID] = style
	hooks := r.hooks
	r.mu.Unlock()

	for _, hook := range hooks {
		hook(style.ID)
	}
	return nil
}

// Remove deletes a style by id and reports whether it was registered.
func (r *Registry) Remove(styleID string) bool {
	r.mu.Lock()
	_, existed := r.styles[styleID]
	if existed {
		delete(r.styles, styleID)
		for i, id := range r.order {
			if id == styleID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	hooks := r.hooks
	r.mu.Unlock()

	if existed {
		for _, hook := range hooks {
			hook(styleID)
		}
	}
	return existed
}

// Get returns a style by id.
func (r *Registry) Get(styleID string) (MaterialStyle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	style, ok := r.styles[styleID]
	return style, ok
}

// List returns every registered style in registration order.
func (r *Registry) List() []MaterialStyle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	styles := make([]MaterialStyle, 0, len(r.order))
	for _, id := range r.order {
		styles = append(styles, r.styles[id])
	}
	return styles
}

// ByTag returns the styles carrying the given tag, in registration order.
func (r *Registry) ByTag(tag string) []MaterialStyle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []MaterialStyle
	for _, id := range r.order {
		if style := r.styles[id]; style.HasTag(tag) {
			matched = append(matched, style)
		}
	}
	return matched
}

// ForGame returns the styles applicable in the given game, in registration
// order.
func (r *Registry) ForGame(gameID string) []MaterialStyle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []MaterialStyle
	for _, id := range r.order {
		if style := r.styles[id]; style.CompatibleWith(gameID) {
			matched = append(matched, style)
		}
	}
	return matched
}

// OnChange registers a hook invoked with the style id after every register,
// replace, or removal. View caches key on style ids, so this is how they
// learn to drop stale entries.
func (r *Registry) OnChange(hook func(styleID string)) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Resolve returns the style with its base chain folded in: base overrides
// apply first, the style's own last. The chain is followed through
// BaseStyle references and rejected when it loops or names a missing style.
func (r *Registry) Resolve(styleID string) (MaterialStyle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := make([]MaterialStyle, 0, 2)
	visited := make(map[string]bool)
	id := styleID
	for id != "" {
		if visited[id] {
			return MaterialStyle{}, fmt.Errorf("style %q: base chain loops through %q", styleID, id)
		}
		visited[id] = true

		style, ok := r.styles[id]
		if !ok {
			return MaterialStyle{}, fmt.Errorf("style %q: %w", id, ErrStyleNotFound)
		}
		chain = append(chain, style)
		id = style.BaseStyle
	}

	resolved := chain[len(chain)-1]
	for i := len(chain) - 2; i >= 0; i-- {
		resolved = overlayStyle(resolved, chain[i])
	}
	return resolved, nil
}

// overlayStyle layers top's overrides onto base. Map entries from top win
// per key, tags are the union with base order first, and identity fields
// always come from top.
func overlayStyle(base, top MaterialStyle) MaterialStyle {
	merged := top
	merged.TextureOverrides = mergeMaps(base.TextureOverrides, top.TextureOverrides)
	merged.ColorOverrides = mergeMaps(base.ColorOverrides, top.ColorOverrides)
	merged.NumericParameters = mergeMaps(base.NumericParameters, top.NumericParameters)
	merged.Tags = unionTags(base.Tags, top.Tags)
	if len(top.CompatibleGames) == 0 {
		merged.CompatibleGames = base.CompatibleGames
	}
	return merged
}
