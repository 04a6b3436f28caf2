package styles

import "sync"

// Mappings translates style ids between games, so an asset styled in one
// game can pick an equivalent treatment when it shows up in another.
type Mappings struct {
	mu       sync.RWMutex
	bySource map[string]map[string]map[string]string
}

// NewMappings creates an empty mapping table.
func NewMappings() *Mappings {
	return &Mappings{bySource: make(map[string]map[string]map[string]string)}
}

// Register records that sourceStyle in sourceGame corresponds to
// targetStyle in targetGame. Re-registering a pair replaces the target.
func (m *Mappings) Register(sourceGame, targetGame, sourceStyle, targetStyle string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	targets, ok := m.bySource[sourceGame]
	if !ok {
		targets = make(map[string]map[string]string)
		m.bySource[sourceGame] = targets
	}
	pairs, ok := targets[targetGame]
	if !ok {
		pairs = make(map[string]string)
		targets[targetGame] = pairs
	}
	pairs[sourceStyle] = targetStyle
}

// Resolve returns the target-game style id mapped from styleID, if any.
func (m *Mappings) Resolve(sourceGame, targetGame, styleID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets, ok := m.bySource[sourceGame]
	if !ok {
		return "", false
	}
	pairs, ok := targets[targetGame]
	if !ok {
		return "", false
	}
	mapped, ok := pairs[styleID]
	return mapped, ok
}
