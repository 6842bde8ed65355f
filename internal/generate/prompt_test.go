package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apresai/sflstudio/internal/dialogue"
	"github.com/apresai/sflstudio/internal/sfl"
)

func testConfig(technicality int) sfl.PersonaConfiguration {
	return sfl.PersonaConfiguration{
		Ideational: sfl.IdeationalSettings{
			MaterialProcesses:   40,
			MentalProcesses:     30,
			RelationalProcesses: 20,
			VerbalProcesses:     10,
			TechnicalityLevel:   technicality,
			LogicalRelations:    "causal chains",
		},
		Interpersonal: sfl.InterpersonalSettings{
			Statements:           70,
			Questions:            20,
			OffersCommands:       10,
			ProbabilityModality:  6,
			UsualityModality:     5,
			QuestioningFrequency: "Medium",
			Appraisal:            "warm and curious",
		},
		Textual: sfl.TextualSettings{
			LexicalDensity:       7,
			GrammaticalIntricacy: 4,
			ReferenceChains:      "pronominal chains",
			ConjunctiveAdverbs:   "additive connectors",
			ThematicProgression:  "linear theme",
		},
	}
}

func TestAnalysisPromptEmbedsDocument(t *testing.T) {
	p := AnalysisPrompt("the quick brown fox")
	assert.Contains(t, p, "the quick brown fox")
	assert.Contains(t, p, `"sflAnalysis"`)
	assert.Contains(t, p, `"personaMapping"`)
	assert.Contains(t, p, `"personaConfiguration"`)
	assert.Contains(t, p, "ONLY the JSON object")
}

func TestDialoguePrompt(t *testing.T) {
	a := testConfig(9)
	b := testConfig(2)

	p := DialoguePrompt(a, b, "tidal energy", "grid report excerpt", "Short (1-3 mins)")

	assert.Contains(t, p, `"tidal energy"`)
	assert.Contains(t, p, `"grid report excerpt"`)
	assert.Contains(t, p, `"Short (1-3 mins)"`)
	assert.Contains(t, p, "SPEAKER A PERSONA PROFILE")
	assert.Contains(t, p, "SPEAKER B PERSONA PROFILE")
	assert.Contains(t, p, "Technicality Level:** 9/10")
	assert.Contains(t, p, "Technicality Level:** 2/10")
	assert.Contains(t, p, `"Speaker A:" and "Speaker B:" prefixes`)
	assert.Contains(t, p, "starting with Speaker A")
}

func TestDialoguePromptDefaultContext(t *testing.T) {
	p := DialoguePrompt(testConfig(5), testConfig(5), "topic", "", "Medium")
	assert.Contains(t, p, "No specific context provided.")
}

func TestRefinePrompt(t *testing.T) {
	p := RefinePrompt("It works fine.", testConfig(5), "make it skeptical")
	assert.Contains(t, p, `"It works fine."`)
	assert.Contains(t, p, `"make it skeptical"`)
	assert.Contains(t, p, "only the rewritten dialogue line")
	assert.Contains(t, p, `prefixes like "Speaker A:"`)
}

func TestNextLinePrompt(t *testing.T) {
	history := []dialogue.Turn{
		{Speaker: dialogue.SpeakerA, Text: "What changed?"},
		{Speaker: dialogue.SpeakerB, Text: "The baseline moved."},
	}

	p := NextLinePrompt(history, dialogue.SpeakerA, testConfig(5), "circle back to costs")

	assert.Contains(t, p, "You are Speaker A.")
	assert.Contains(t, p, "Speaker A: What changed?\nSpeaker B: The baseline moved.")
	assert.Contains(t, p, `"circle back to costs"`)
	assert.Contains(t, p, "only the new dialogue line")
}

func TestNextLinePromptHistoryOrder(t *testing.T) {
	history := []dialogue.Turn{
		{Speaker: dialogue.SpeakerB, Text: "first"},
		{Speaker: dialogue.SpeakerA, Text: "second"},
		{Speaker: dialogue.SpeakerB, Text: "third"},
	}
	p := NextLinePrompt(history, dialogue.SpeakerA, testConfig(5), "")

	iFirst := strings.Index(p, "Speaker B: first")
	iThird := strings.Index(p, "Speaker B: third")
	assert.True(t, iFirst >= 0 && iThird > iFirst, "history must appear oldest first")
}
