// Package persona holds the ordered collection of personas derived from
// document analyses, plus the bounded selection set used to launch
// comparisons and dialogues.
package persona

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/apresai/sflstudio/internal/sfl"
)

// maxSelection bounds the comparison/dialogue selection set.
const maxSelection = 2

// Persona is one named, editable configuration bundle. The Analysis record
// is immutable apart from its PersonaConfiguration, which is replaced
// wholesale through Store.UpdateConfig.
type Persona struct {
	ID          string
	Name        string
	Description string
	Analysis    sfl.AnalysisResult
}

// Config returns the persona's current editable configuration.
func (p *Persona) Config() sfl.PersonaConfiguration {
	return p.Analysis.PersonaConfiguration
}

// Store owns every Persona exclusively. Consumers receive read references
// and submit whole-configuration replacements; all mutations are synchronous
// and immediately visible.
type Store struct {
	mu       sync.Mutex
	personas []*Persona
	selected []string
}

func NewStore() *Store {
	return &Store{}
}

// Create stores a new persona built from a completed analysis. The default
// name is positional: "Persona N" where N is the store size at call time
// plus one. Names are not renumbered on deletion, so deleting "Persona 1"
// and creating a new persona yields "Persona 2" again; that reuse is
// intended behavior.
func (s *Store) Create(analysis sfl.AnalysisResult) *Persona {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Persona{
		ID:       ulid.Make().String(),
		Name:     fmt.Sprintf("Persona %d", len(s.personas)+1),
		Analysis: analysis,
	}
	s.personas = append(s.personas, p)
	return p
}

// Get returns the persona with the given id, or nil.
func (s *Store) Get(id string) *Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// List returns the personas in display order.
func (s *Store) List() []*Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Persona, len(s.personas))
	copy(out, s.personas)
	return out
}

// Len returns the number of stored personas.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.personas)
}

// UpdateConfig replaces only the persona's editable configuration. Unknown
// ids are a silent no-op.
func (s *Store) UpdateConfig(id string, cfg sfl.PersonaConfiguration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.find(id); p != nil {
		p.Analysis.PersonaConfiguration = cfg
	}
}

// UpdateDetails replaces the persona's name and description. A blank or
// whitespace-only name is rejected and nothing changes; the return value
// reports whether the update was applied.
func (s *Store) UpdateDetails(id, name, description string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(id)
	if p == nil {
		return false
	}
	p.Name = name
	p.Description = description
	return true
}

// Delete removes the persona and drops it from the selection set. Asking the
// user to confirm is the caller's concern. Returns false for unknown ids.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.personas = append(s.personas[:idx], s.personas[idx+1:]...)
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			break
		}
	}
	return true
}

// Reorder removes the dragged persona from its position and reinserts it at
// the drop target's position, a list splice rather than a swap. No-op when either
// id is absent or both are the same.
func (s *Store) Reorder(dragID, dropID string) {
	if dragID == dropID {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOf(dragID)
	to := s.indexOf(dropID)
	if from < 0 || to < 0 {
		return
	}
	moved := s.personas[from]
	s.personas = append(s.personas[:from], s.personas[from+1:]...)
	s.personas = append(s.personas[:to], append([]*Persona{moved}, s.personas[to:]...)...)
}

// ToggleSelection adds the id to the selection set, or removes it if already
// present. A third selection while two are held is a no-op.
func (s *Store) ToggleSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
	if len(s.selected) < maxSelection && s.indexOf(id) >= 0 {
		s.selected = append(s.selected, id)
	}
}

// Selected returns the selected personas in selection order.
func (s *Store) Selected() []*Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Persona, 0, len(s.selected))
	for _, id := range s.selected {
		if p := s.find(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// IsSelected reports whether the id is in the selection set.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range s.selected {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *Store) find(id string) *Persona {
	if idx := s.indexOf(id); idx >= 0 {
		return s.personas[idx]
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.personas {
		if p.ID == id {
			return i
		}
	}
	return -1
}
