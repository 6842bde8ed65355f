package studio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apresai/sflstudio/internal/dialogue"
	"github.com/apresai/sflstudio/internal/generate"
	"github.com/apresai/sflstudio/internal/sfl"
)

// scriptedGenerator returns canned text per call, in order.
type scriptedGenerator struct {
	replies []string
	calls   int
}

func (g *scriptedGenerator) Generate(context.Context, string, generate.Options) (string, error) {
	reply := g.replies[g.calls%len(g.replies)]
	g.calls++
	return reply, nil
}

func (g *scriptedGenerator) ListModels(context.Context) ([]string, error) { return nil, nil }

func saveableAnalysis() sfl.AnalysisResult {
	return sfl.AnalysisResult{
		PersonaConfiguration: sfl.PersonaConfiguration{
			Ideational: sfl.IdeationalSettings{
				MaterialProcesses: 40, MentalProcesses: 30,
				RelationalProcesses: 20, VerbalProcesses: 10,
				TechnicalityLevel: 5,
			},
			Interpersonal: sfl.InterpersonalSettings{
				Statements: 70, Questions: 20, OffersCommands: 10,
				ProbabilityModality: 5, UsualityModality: 5,
			},
		},
	}
}

func newSessionWith(replies ...string) *Session {
	return NewSession(&scriptedGenerator{replies: replies}, -1, nil)
}

// seedSelection adds two personas and selects both.
func seedSelection(t *testing.T, s *Session) (a, b string) {
	t.Helper()
	pa := s.Personas.Create(saveableAnalysis())
	pb := s.Personas.Create(saveableAnalysis())
	s.Personas.ToggleSelection(pa.ID)
	s.Personas.ToggleSelection(pb.ID)
	return pa.ID, pb.ID
}

func TestGenerateScriptUsesSelection(t *testing.T) {
	s := newSessionWith("Speaker A: Hello there.\nSpeaker B: Hello back.")
	seedSelection(t, s)

	turns, err := s.GenerateScript(context.Background(), "greetings", "", "Short (1-3 mins)")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, dialogue.SpeakerA, turns[0].Speaker)
	assert.Equal(t, "Persona 1", turns[0].PersonaName)
	assert.Equal(t, "Persona 2", turns[1].PersonaName)
}

func TestGenerateScriptRequiresTwoSelected(t *testing.T) {
	s := newSessionWith("Speaker A: hi")
	p := s.Personas.Create(saveableAnalysis())
	s.Personas.ToggleSelection(p.ID)

	_, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	var ve *dialogue.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Msg, "exactly two")
}

func TestGenerateScriptBlockedWhileEditingConfig(t *testing.T) {
	s := newSessionWith("Speaker A: hi")
	aID, _ := seedSelection(t, s)

	s.View.OpenConfigEditor(aID)
	_, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	assert.ErrorIs(t, err, dialogue.ErrEditingConfig)

	// Details editing does not block.
	s.View.OpenDetailsEditor(aID)
	_, err = s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)
}

func TestAppendBlockedWhileEditingConfig(t *testing.T) {
	s := newSessionWith("Speaker A: hi", "Speaker B: more")
	aID, _ := seedSelection(t, s)

	_, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	s.View.OpenConfigEditor(aID)
	err = s.AppendNextTurn(context.Background(), "keep going")
	assert.ErrorIs(t, err, dialogue.ErrEditingConfig)

	s.View.CloseEditor(aID)
	require.NoError(t, s.AppendNextTurn(context.Background(), "keep going"))
	assert.Len(t, s.Dialogue.Script(), 2)
}

func TestRefineAllowedWhileEditingDetails(t *testing.T) {
	s := newSessionWith("Speaker A: original line", "polished line")
	aID, _ := seedSelection(t, s)

	turns, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	s.View.OpenDetailsEditor(aID)
	require.NoError(t, s.RefineTurn(context.Background(), turns[0].ID, "polish it"))
	assert.Equal(t, "polished line", s.Dialogue.Script()[0].Text)
}

func TestRefineWithoutSelectionFails(t *testing.T) {
	s := newSessionWith("Speaker A: line", "ignored")
	aID, bID := seedSelection(t, s)

	turns, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	// Dropping the selection makes the speaker binding unresolvable.
	s.Personas.ToggleSelection(aID)
	s.Personas.ToggleSelection(bID)
	err = s.RefineTurn(context.Background(), turns[0].ID, "polish")
	require.Error(t, err)
}

func TestRefineSuccessClosesEditor(t *testing.T) {
	s := newSessionWith("Speaker A: original", "better")
	seedSelection(t, s)

	turns, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	s.View.OpenRefineEditor(turns[0].ID)
	require.NoError(t, s.RefineTurn(context.Background(), turns[0].ID, "improve"))
	assert.Empty(t, s.View.RefineTarget())
}

func TestRefineFailureKeepsEditorOpen(t *testing.T) {
	s := newSessionWith("Speaker A: original")
	aID, bID := seedSelection(t, s)

	turns, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	s.View.OpenRefineEditor(turns[0].ID)
	// Dropping the selection makes the refine fail at binding lookup.
	s.Personas.ToggleSelection(aID)
	s.Personas.ToggleSelection(bID)
	require.Error(t, s.RefineTurn(context.Background(), turns[0].ID, "improve"))
	assert.Equal(t, turns[0].ID, s.View.RefineTarget())
}

func TestGenerateResetsEditSurfaces(t *testing.T) {
	s := newSessionWith("Speaker A: line")
	seedSelection(t, s)

	turns, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	s.View.OpenRefineEditor(turns[0].ID)
	s.View.SetScriptMode(ModeFinal)

	_, err = s.GenerateScript(context.Background(), "another topic", "", "Short")
	require.NoError(t, err)
	assert.Empty(t, s.View.RefineTarget())
	assert.False(t, s.View.AddLineEditorOpen())
	assert.Equal(t, ModeEditor, s.View.ScriptMode())
}

func TestDeletePersonaClearsViewState(t *testing.T) {
	s := newSessionWith("unused")
	p := s.Personas.Create(saveableAnalysis())
	s.View.OpenConfigEditor(p.ID)

	require.True(t, s.DeletePersona(p.ID))
	assert.True(t, s.View.GenerationAllowed())
	assert.False(t, s.DeletePersona(p.ID))
}

func TestTranscript(t *testing.T) {
	s := newSessionWith("Speaker A: one\n\nSpeaker B: two")
	seedSelection(t, s)

	_, err := s.GenerateScript(context.Background(), "topic", "", "Short")
	require.NoError(t, err)

	want := "Speaker A (Persona 1): one\n\nSpeaker B (Persona 2): two"
	assert.Equal(t, want, s.Transcript())
}
