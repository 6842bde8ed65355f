package generate

import (
	"fmt"
	"strings"

	"github.com/apresai/sflstudio/internal/dialogue"
	"github.com/apresai/sflstudio/internal/sfl"
)

// AnalysisPrompt asks the model to analyze a source document along the
// three SFL metafunctions and emit a single JSON object matching the
// sfl.AnalysisResult shape.
func AnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following source document from the perspective of Systemic Functional Linguistics (SFL).
Based on your analysis, generate a single, valid JSON object with three top-level keys: "sflAnalysis", "personaMapping", and "personaConfiguration".

**Source Document:**
"""
%s
"""

**Instructions for JSON Generation:**
1.  **sflAnalysis**:
    *   "processDistribution": an object with numeric keys "material", "mental", "relational", "verbal" holding the percentage of each process type. The sum must be 100.
    *   "technicality": an object with a numeric "score" from 1-10 and a brief "description" justifying it.
    *   "modalityProfile", "appraisalSummary", "cohesionSummary": concise string summaries based on the document's language.
2.  **personaMapping**: string values for "style", "confidence", "stance", and "organization", synthesized from the SFL analysis. For example, a document high in relational processes might suggest a 'Definitional' style.
3.  **personaConfiguration**: three objects translating the analysis into a configuration profile.
    *   "ideational": numeric "materialProcesses", "mentalProcesses", "relationalProcesses", "verbalProcesses" (percentages summing to 100), numeric "technicalityLevel" (1-10), string "logicalRelations".
    *   "interpersonal": numeric "statements", "questions", "offersCommands" (percentages summing to 100), numeric "probabilityModality" and "usualityModality" (1-10), string "questioningFrequency" (Low, Medium, or High), string "appraisal".
    *   "textual": numeric "lexicalDensity" and "grammaticalIntricacy" (1-10), string "referenceChains", "conjunctiveAdverbs", "thematicProgression", "questionSequences".

The output must be ONLY the JSON object, without any surrounding text or markdown.`, text)
}

// DialoguePrompt asks the model for a full two-speaker dialogue, each
// speaker constrained by one persona configuration.
func DialoguePrompt(a, b sfl.PersonaConfiguration, topic, contextMaterial, length string) string {
	if contextMaterial == "" {
		contextMaterial = "No specific context provided."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert dialogue writer. Your task is to generate an engaging podcast-style dialogue between two speakers (Speaker A and Speaker B), each with a distinct Systemic Functional Linguistics (SFL) persona configuration.

**Core Instructions:**
1.  **Topic:** The dialogue MUST be about: %q.
2.  **Context:** The dialogue should incorporate and reference the following contextual material: %q.
3.  **Length:** The dialogue should be of a %q length.
4.  **Adherence:** Strictly adhere to the linguistic specifications for EACH speaker provided below.

`, topic, contextMaterial, length)

	sb.WriteString(speakerProfile("Speaker A", a))
	sb.WriteString(speakerProfile("Speaker B", b))

	sb.WriteString(`---

**OUTPUT INSTRUCTIONS:**
*   Generate a dialogue starting with Speaker A.
*   Format the output with "Speaker A:" and "Speaker B:" prefixes for each turn.
*   Ensure each speaker's dialogue strictly adheres to their specified linguistic profile.
*   Do NOT include any other text, explanations, or analysis. Only the dialogue itself.`)

	return sb.String()
}

func speakerProfile(label string, cfg sfl.PersonaConfiguration) string {
	return fmt.Sprintf(`---

**%s PERSONA PROFILE:**

**1. IDEATIONAL (What %s talks about):**
*   **Process Mix:** Material: %.0f%%, Mental: %.0f%%, Relational: %.0f%%, Verbal: %.0f%%.
*   **Technicality Level:** %d/10.
*   **Logical Relations:** Prefers %s.

**2. INTERPERSONAL (How %s interacts):**
*   **Speech Functions (Overall Turn Mix):** %.0f%% Statements, %.0f%% Questions, %.0f%% Offers/Commands.
*   **Modality Profile:**
    *   Probability/Certainty Score: %d/10.
    *   Usuality Score: %d/10.
*   **Appraisal:** Adopts a tone that is %s.

**3. TEXTUAL (How %s organizes text):**
*   **Linguistic Style:** Lexical density is %d/10; Grammatical intricacy is %d/10.
*   **Cohesion:** Uses %s and %s.
*   **Thematic Progression:** Follows a pattern of %s.

`,
		strings.ToUpper(label), label,
		cfg.Ideational.MaterialProcesses, cfg.Ideational.MentalProcesses,
		cfg.Ideational.RelationalProcesses, cfg.Ideational.VerbalProcesses,
		cfg.Ideational.TechnicalityLevel, cfg.Ideational.LogicalRelations,
		label,
		cfg.Interpersonal.Statements, cfg.Interpersonal.Questions, cfg.Interpersonal.OffersCommands,
		cfg.Interpersonal.ProbabilityModality, cfg.Interpersonal.UsualityModality,
		cfg.Interpersonal.Appraisal,
		label,
		cfg.Textual.LexicalDensity, cfg.Textual.GrammaticalIntricacy,
		cfg.Textual.ReferenceChains, cfg.Textual.ConjunctiveAdverbs,
		cfg.Textual.ThematicProgression)
}

// compactProfile is the condensed persona block used by the refine and
// next-line prompts.
func compactProfile(cfg sfl.PersonaConfiguration) string {
	return fmt.Sprintf(`*   **Ideational Profile:** Process Mix (Mat: %.0f%%, Men: %.0f%%, Rel: %.0f%%, Ver: %.0f%%); Technicality: %d/10.
*   **Interpersonal Profile:** Speech Mix (Stmt: %.0f%%, Qst: %.0f%%, Off/Cmd: %.0f%%); Modality (Prob: %d/10, Usu: %d/10); Appraisal: %s.
*   **Textual Profile:** Lexical Density: %d/10; Grammatical Intricacy: %d/10.`,
		cfg.Ideational.MaterialProcesses, cfg.Ideational.MentalProcesses,
		cfg.Ideational.RelationalProcesses, cfg.Ideational.VerbalProcesses,
		cfg.Ideational.TechnicalityLevel,
		cfg.Interpersonal.Statements, cfg.Interpersonal.Questions, cfg.Interpersonal.OffersCommands,
		cfg.Interpersonal.ProbabilityModality, cfg.Interpersonal.UsualityModality,
		cfg.Interpersonal.Appraisal,
		cfg.Textual.LexicalDensity, cfg.Textual.GrammaticalIntricacy)
}

// RefinePrompt asks the model to rewrite a single dialogue line per the
// user's instruction, staying in the given persona's voice.
func RefinePrompt(original string, cfg sfl.PersonaConfiguration, instruction string) string {
	return fmt.Sprintf(`You are an AI assistant helping a user refine a single line of dialogue.

**Your Persona:**
You must adopt the following SFL persona configuration for your response.
%s

**Task:**
Rewrite the following line of dialogue based *only* on the user's instruction.

**Original Dialogue Line:**
%q

**User's Instruction:**
%q

**Output Rules:**
1.  Return **only the rewritten dialogue line**.
2.  Do **not** add any prefixes like "Speaker A:" or explanations.
3.  Ensure the rewritten line maintains the core persona defined above.`,
		compactProfile(cfg), original, instruction)
}

// NextLinePrompt asks the model for a single next line from the given
// speaker, using the trailing history window.
func NextLinePrompt(history []dialogue.Turn, next dialogue.Speaker, cfg sfl.PersonaConfiguration, instruction string) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Text))
	}

	return fmt.Sprintf(`You are an AI assistant generating the next line in a dialogue.

**Your Persona (for the new line):**
You are %[1]s. You must adopt the following SFL persona configuration.
%[2]s

**Task:**
Based on the dialogue history below and the following user instruction, generate a single, logical next line for your character (%[1]s).

**Dialogue History:**
%[3]s

**User Instruction:**
%[4]q

**Output Rules:**
1.  Return **only the new dialogue line**.
2.  Do **not** add any prefixes like "Speaker A:" or explanations.
3.  Ensure the new line is a natural continuation of the conversation and strictly adheres to your persona and the user instruction.`,
		next, compactProfile(cfg), strings.Join(lines, "\n"), instruction)
}
