package studio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apresai/sflstudio/internal/analysis"
	"github.com/apresai/sflstudio/internal/dialogue"
	"github.com/apresai/sflstudio/internal/generate"
	"github.com/apresai/sflstudio/internal/ingest"
	"github.com/apresai/sflstudio/internal/persona"
)

// Session is one studio working set: a persona roster, the dialogue
// being built, and the per-persona view state. It is the single entry
// point callers (CLI, MCP server) use; the gating rules between editing
// and generation are enforced here.
type Session struct {
	Personas *persona.Store
	Dialogue *dialogue.Controller
	View     *View

	analyzer *analysis.Analyzer
	logger   *slog.Logger
}

func NewSession(gen generate.Generator, thinkingBudget int, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Personas: persona.NewStore(),
		Dialogue: dialogue.NewController(generate.NewDialogueClient(gen, thinkingBudget)),
		View:     NewView(),
		analyzer: analysis.NewAnalyzer(gen, logger),
		logger:   logger,
	}
}

// AnalyzeDocument reads a persona source document, runs the SFL
// analysis, and adds the resulting persona to the roster.
func (s *Session) AnalyzeDocument(ctx context.Context, path string) (*persona.Persona, error) {
	text, err := ingest.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	p := s.Personas.Create(*result)
	s.logger.Info("persona created", "id", p.ID, "name", p.Name, "source", path)
	return p, nil
}

// AnalyzeText runs the SFL analysis over already-loaded text. Used when
// the document arrives over a transport instead of the filesystem.
func (s *Session) AnalyzeText(ctx context.Context, text string) (*persona.Persona, error) {
	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	p := s.Personas.Create(*result)
	s.logger.Info("persona created", "id", p.ID, "name", p.Name)
	return p, nil
}

// DeletePersona removes a persona and all view state attached to it.
func (s *Session) DeletePersona(id string) bool {
	if !s.Personas.Delete(id) {
		return false
	}
	s.View.Forget(id)
	return true
}

// bindings resolves the current selection into the two speaker slots.
// The first selected persona speaks as Speaker A.
func (s *Session) bindings() (a, b dialogue.Binding, err error) {
	selected := s.Personas.Selected()
	if len(selected) != 2 {
		return a, b, &dialogue.ValidationError{
			Msg: fmt.Sprintf("exactly two personas must be selected, have %d", len(selected)),
		}
	}
	a = dialogue.Binding{Name: selected[0].Name, Config: selected[0].Config()}
	b = dialogue.Binding{Name: selected[1].Name, Config: selected[1].Config()}
	return a, b, nil
}

// GenerateScript produces a fresh dialogue from the current selection.
// It is refused while any persona-configuration editor is open.
func (s *Session) GenerateScript(ctx context.Context, topic, contextMaterial, length string) ([]dialogue.Turn, error) {
	if !s.View.GenerationAllowed() {
		return nil, dialogue.ErrEditingConfig
	}
	a, b, err := s.bindings()
	if err != nil {
		return nil, err
	}
	s.logger.Info("generating script", "topic", topic, "speakerA", a.Name, "speakerB", b.Name)
	turns, err := s.Dialogue.GenerateScript(ctx, a, b, topic, contextMaterial, length)
	if err != nil {
		s.logger.Error("script generation failed", "error", err)
		return nil, err
	}
	// The old script is gone; edit surfaces pointing into it go with it.
	s.View.CloseRefineEditor()
	s.View.CloseAddLineEditor()
	s.View.SetScriptMode(ModeEditor)
	s.logger.Info("script generated", "turns", len(turns))
	return turns, nil
}

// RefineTurn rewrites one line in place. Allowed even while an editor is
// open; the refined turn keeps its speaker's current configuration.
func (s *Session) RefineTurn(ctx context.Context, turnID, instruction string) error {
	err := s.Dialogue.RefineTurn(ctx, turnID, instruction, func(role dialogue.Speaker) (dialogue.Binding, bool) {
		a, b, berr := s.bindings()
		if berr != nil {
			return dialogue.Binding{}, false
		}
		if role == dialogue.SpeakerA {
			return a, true
		}
		return b, true
	})
	if err != nil {
		// A failed refine keeps its editor open so the user can retry.
		return err
	}
	s.View.CloseRefineEditor()
	return nil
}

// AppendNextTurn continues the dialogue by one alternating line. Like
// generation, it is refused while a configuration editor is open.
func (s *Session) AppendNextTurn(ctx context.Context, instruction string) error {
	if !s.View.GenerationAllowed() {
		return dialogue.ErrEditingConfig
	}
	a, b, err := s.bindings()
	if err != nil {
		return err
	}
	if err := s.Dialogue.AppendNextTurn(ctx, instruction, a, b); err != nil {
		return err
	}
	s.View.CloseAddLineEditor()
	return nil
}

// Transcript renders the current script in its display form.
func (s *Session) Transcript() string {
	return dialogue.Transcript(s.Dialogue.Script())
}
