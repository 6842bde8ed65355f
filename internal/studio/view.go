// Package studio ties the persona store, the dialogue engine, and the
// document analyzer together into one interactive session with a small
// view-state layer on top.
package studio

import "sync"

// EditorState tags what, if anything, is open in a persona's editor
// panel. At most one panel per persona, and the states are mutually
// exclusive.
type EditorState int

const (
	EditorClosed EditorState = iota
	// EditingConfig is the three-metafunction slider editor. While any
	// persona has it open, script generation is held off so a half-edited
	// profile never reaches the model.
	EditingConfig
	// EditingDetails is the name/description editor. It does not block
	// generation.
	EditingDetails
)

func (s EditorState) String() string {
	switch s {
	case EditingConfig:
		return "editing-config"
	case EditingDetails:
		return "editing-details"
	default:
		return "closed"
	}
}

// ScriptMode is the presentation mode of the dialogue surface. Editor
// shows per-turn controls; Final is the clean reading view. Switching
// between them never mutates the script.
type ScriptMode int

const (
	ModeEditor ScriptMode = iota
	ModeFinal
)

func (m ScriptMode) String() string {
	if m == ModeFinal {
		return "final"
	}
	return "editor"
}

// View tracks per-persona editor state, the script edit surfaces, and
// the presentation mode for a session.
type View struct {
	mu           sync.Mutex
	editors      map[string]EditorState
	mode         ScriptMode
	refineTarget string
	addLineOpen  bool
}

func NewView() *View {
	return &View{editors: make(map[string]EditorState)}
}

// SetScriptMode switches the dialogue surface between editor and final
// view. The transition is user-triggered and reversible.
func (v *View) SetScriptMode(mode ScriptMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = mode
}

func (v *View) ScriptMode() ScriptMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// OpenConfigEditor opens the configuration editor for a persona,
// replacing whatever panel was open for it.
func (v *View) OpenConfigEditor(id string) {
	v.set(id, EditingConfig)
}

// OpenDetailsEditor opens the name/description editor for a persona.
func (v *View) OpenDetailsEditor(id string) {
	v.set(id, EditingDetails)
}

// CloseEditor closes any open panel for the persona.
func (v *View) CloseEditor(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.editors, id)
}

// Forget drops all view state for a persona. Called when the persona is
// deleted.
func (v *View) Forget(id string) {
	v.CloseEditor(id)
}

func (v *View) set(id string, state EditorState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editors[id] = state
}

// Editor returns the persona's current editor state.
func (v *View) Editor(id string) EditorState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editors[id]
}

// OpenRefineEditor marks one turn as the refine target. The refine and
// add-line surfaces are mutually exclusive; opening one closes the
// other.
func (v *View) OpenRefineEditor(turnID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refineTarget = turnID
	v.addLineOpen = false
}

// CloseRefineEditor closes the refine surface. Called on success or
// explicit cancel; a failed refine leaves the surface open for retry.
func (v *View) CloseRefineEditor() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refineTarget = ""
}

// RefineTarget returns the id of the turn whose refine editor is open,
// or "" when none is.
func (v *View) RefineTarget() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refineTarget
}

// OpenAddLineEditor opens the add-line surface, closing any refine
// target.
func (v *View) OpenAddLineEditor() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.addLineOpen = true
	v.refineTarget = ""
}

func (v *View) CloseAddLineEditor() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.addLineOpen = false
}

func (v *View) AddLineEditorOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.addLineOpen
}

// GenerationAllowed reports whether no persona currently has its
// configuration editor open. Details editing never blocks generation.
func (v *View) GenerationAllowed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, state := range v.editors {
		if state == EditingConfig {
			return false
		}
	}
	return true
}
