// Package sfl defines the Systemic Functional Linguistics persona model:
// the three-metafunction configuration a persona carries and the analysis
// record it was derived from.
package sfl

import "math"

// IdeationalSettings covers the ideational metafunction: what the speaker
// talks about. The four process shares are percentages.
type IdeationalSettings struct {
	MaterialProcesses   float64 `json:"materialProcesses"`
	MentalProcesses     float64 `json:"mentalProcesses"`
	RelationalProcesses float64 `json:"relationalProcesses"`
	VerbalProcesses     float64 `json:"verbalProcesses"`
	TechnicalityLevel   int     `json:"technicalityLevel"` // 1-10
	LogicalRelations    string  `json:"logicalRelations"`
}

// InterpersonalSettings covers the interpersonal metafunction: how the
// speaker interacts. The three speech-function shares are percentages.
type InterpersonalSettings struct {
	Statements           float64 `json:"statements"`
	Questions            float64 `json:"questions"`
	OffersCommands       float64 `json:"offersCommands"`
	ProbabilityModality  int     `json:"probabilityModality"`  // 1-10
	UsualityModality     int     `json:"usualityModality"`     // 1-10
	QuestioningFrequency string  `json:"questioningFrequency"` // Low, Medium, High
	Appraisal            string  `json:"appraisal"`
}

// TextualSettings covers the textual metafunction: how the speaker
// organizes text.
type TextualSettings struct {
	LexicalDensity       int    `json:"lexicalDensity"`       // 1-10
	GrammaticalIntricacy int    `json:"grammaticalIntricacy"` // 1-10
	ReferenceChains      string `json:"referenceChains"`
	ConjunctiveAdverbs   string `json:"conjunctiveAdverbs"`
	ThematicProgression  string `json:"thematicProgression"`
	QuestionSequences    string `json:"questionSequences"`
}

// PersonaConfiguration is the full editable three-metafunction profile.
type PersonaConfiguration struct {
	Ideational    IdeationalSettings    `json:"ideational"`
	Interpersonal InterpersonalSettings `json:"interpersonal"`
	Textual       TextualSettings       `json:"textual"`
}

// ProcessDistribution is the document-level process breakdown reported by
// the analysis model.
type ProcessDistribution struct {
	Material   float64 `json:"material"`
	Mental     float64 `json:"mental"`
	Relational float64 `json:"relational"`
	Verbal     float64 `json:"verbal"`
}

// Technicality is the document's technicality score with a short rationale.
type Technicality struct {
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// SFLAnalysis is the raw linguistic analysis of a source document.
type SFLAnalysis struct {
	ProcessDistribution ProcessDistribution `json:"processDistribution"`
	Technicality        Technicality        `json:"technicality"`
	ModalityProfile     string              `json:"modalityProfile"`
	AppraisalSummary    string              `json:"appraisalSummary"`
	CohesionSummary     string              `json:"cohesionSummary"`
}

// PersonaMapping is the analysis model's synthesis of the document's voice.
type PersonaMapping struct {
	Style        string `json:"style"`
	Confidence   string `json:"confidence"`
	Stance       string `json:"stance"`
	Organization string `json:"organization"`
}

// AnalysisResult is the complete output of one document analysis. The
// SFLAnalysis and PersonaMapping are an immutable record of where a persona
// came from; only the PersonaConfiguration is edited afterward.
type AnalysisResult struct {
	SFLAnalysis          SFLAnalysis          `json:"sflAnalysis"`
	PersonaMapping       PersonaMapping       `json:"personaMapping"`
	PersonaConfiguration PersonaConfiguration `json:"personaConfiguration"`
}

// IsSaveable reports whether a configuration satisfies both percentage
// invariants: the four ideational process shares and the three interpersonal
// speech-function shares must each sum to exactly 100 after rounding the sum
// to the nearest integer. Every other field, including slider values outside
// their advisory 1-10 range, is accepted as-is.
func IsSaveable(cfg PersonaConfiguration) bool {
	processTotal := math.Round(cfg.Ideational.MaterialProcesses +
		cfg.Ideational.MentalProcesses +
		cfg.Ideational.RelationalProcesses +
		cfg.Ideational.VerbalProcesses)
	speechTotal := math.Round(cfg.Interpersonal.Statements +
		cfg.Interpersonal.Questions +
		cfg.Interpersonal.OffersCommands)
	return processTotal == 100 && speechTotal == 100
}
