package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/apresai/sflstudio/internal/dialogue"
	"github.com/apresai/sflstudio/internal/persona"
	"github.com/apresai/sflstudio/internal/sfl"
)

// printPersonaProfile renders one persona in a readable block.
func printPersonaProfile(w io.Writer, p *persona.Persona) {
	cfg := p.Config()
	analysis := p.Analysis

	fmt.Fprintf(w, "\n%s  [%s]\n", p.Name, p.ID)
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", 50))
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
	fmt.Fprintf(w, "  Voice:        %s / %s / %s\n",
		orDash(analysis.PersonaMapping.Style),
		orDash(analysis.PersonaMapping.Stance),
		orDash(analysis.PersonaMapping.Organization))
	fmt.Fprintf(w, "  Processes:    material %.0f%%  mental %.0f%%  relational %.0f%%  verbal %.0f%%\n",
		cfg.Ideational.MaterialProcesses, cfg.Ideational.MentalProcesses,
		cfg.Ideational.RelationalProcesses, cfg.Ideational.VerbalProcesses)
	fmt.Fprintf(w, "  Speech:       statements %.0f%%  questions %.0f%%  offers/commands %.0f%%\n",
		cfg.Interpersonal.Statements, cfg.Interpersonal.Questions, cfg.Interpersonal.OffersCommands)
	fmt.Fprintf(w, "  Technicality: %d/10   Lexical density: %d/10\n",
		cfg.Ideational.TechnicalityLevel, cfg.Textual.LexicalDensity)
	fmt.Fprintf(w, "  Saveable:     %v\n", sfl.IsSaveable(cfg))
}

// printScript renders the script with turn ids in editor mode and as a
// clean transcript in final mode.
func printScript(w io.Writer, turns []dialogue.Turn, editor bool) {
	if len(turns) == 0 {
		fmt.Fprintln(w, "(no script yet)")
		return
	}
	for i, t := range turns {
		if editor {
			fmt.Fprintf(w, "[%d] %s (%s)  id=%s\n    %s\n", i+1, t.Speaker, t.PersonaName, t.ID, t.Text)
		} else {
			fmt.Fprintf(w, "%s (%s): %s\n\n", t.Speaker, t.PersonaName, t.Text)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
