package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apresai/sflstudio/internal/persona"
	"github.com/apresai/sflstudio/internal/studio"
)

func runStudio(cmd *cobra.Command, args []string) error {
	session, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("SFL Studio interactive session. Type 'help' for commands, 'quit' to exit.")
	repl := &repl{session: session, out: os.Stdout}
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("studio> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := repl.dispatch(cmd, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

type repl struct {
	session *studio.Session
	out     io.Writer

	contextMaterial string
	length          string
}

func (r *repl) dispatch(cmd *cobra.Command, line string) error {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	ctx := cmd.Context()

	switch verb {
	case "help":
		r.printHelp()
		return nil

	case "analyze":
		if rest == "" {
			return fmt.Errorf("usage: analyze <document path>")
		}
		p, err := r.session.AnalyzeDocument(ctx, rest)
		if err != nil {
			return err
		}
		printPersonaProfile(r.out, p)
		return nil

	case "list":
		personas := r.session.Personas.List()
		if len(personas) == 0 {
			fmt.Fprintln(r.out, "(no personas yet; use 'analyze <path>')")
			return nil
		}
		for i, p := range personas {
			marker := " "
			if r.session.Personas.IsSelected(p.ID) {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %d. %-20s %s  [%s]\n", marker, i+1, p.Name, p.ID, r.session.View.Editor(p.ID))
		}
		return nil

	case "show":
		p, err := r.resolvePersona(rest)
		if err != nil {
			return err
		}
		printPersonaProfile(r.out, p)
		return nil

	case "select":
		p, err := r.resolvePersona(rest)
		if err != nil {
			return err
		}
		r.session.Personas.ToggleSelection(p.ID)
		selected := r.session.Personas.Selected()
		names := make([]string, 0, len(selected))
		for _, sp := range selected {
			names = append(names, sp.Name)
		}
		fmt.Fprintf(r.out, "selected: %s\n", strings.Join(names, ", "))
		return nil

	case "rename":
		ref, name, _ := strings.Cut(rest, " ")
		p, err := r.resolvePersona(ref)
		if err != nil {
			return err
		}
		if !r.session.Personas.UpdateDetails(p.ID, strings.TrimSpace(name), p.Description) {
			return fmt.Errorf("rename rejected: name must not be blank")
		}
		return nil

	case "delete":
		p, err := r.resolvePersona(rest)
		if err != nil {
			return err
		}
		r.session.DeletePersona(p.ID)
		return nil

	case "move":
		dragRef, dropRef, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: move <persona> <onto persona>")
		}
		drag, err := r.resolvePersona(dragRef)
		if err != nil {
			return err
		}
		drop, err := r.resolvePersona(strings.TrimSpace(dropRef))
		if err != nil {
			return err
		}
		r.session.Personas.Reorder(drag.ID, drop.ID)
		return nil

	case "edit":
		kind, ref, ok := strings.Cut(rest, " ")
		if !ok || (kind != "config" && kind != "details") {
			return fmt.Errorf("usage: edit config|details <persona>")
		}
		p, err := r.resolvePersona(strings.TrimSpace(ref))
		if err != nil {
			return err
		}
		if kind == "config" {
			r.session.View.OpenConfigEditor(p.ID)
		} else {
			r.session.View.OpenDetailsEditor(p.ID)
		}
		fmt.Fprintf(r.out, "%s editor open for %s (generation %s)\n",
			kind, p.Name, allowedWord(r.session.View.GenerationAllowed()))
		return nil

	case "close":
		p, err := r.resolvePersona(rest)
		if err != nil {
			return err
		}
		r.session.View.CloseEditor(p.ID)
		return nil

	case "set":
		key, value, _ := strings.Cut(rest, " ")
		value = strings.TrimSpace(value)
		switch key {
		case "context":
			material, err := loadContext(ctx, value)
			if err != nil {
				return err
			}
			r.contextMaterial = material
			fmt.Fprintf(r.out, "context loaded (%d chars)\n", len(material))
			return nil
		case "length":
			r.length = value
			return nil
		default:
			return fmt.Errorf("usage: set context <source> | set length <value>")
		}

	case "generate":
		if rest == "" {
			return fmt.Errorf("usage: generate <topic>")
		}
		length := r.length
		if length == "" {
			length = "Short (1-3 mins)"
		}
		turns, err := r.session.GenerateScript(ctx, rest, r.contextMaterial, length)
		if err != nil {
			return err
		}
		printScript(r.out, turns, true)
		return nil

	case "refine":
		turnID, instruction, ok := strings.Cut(rest, " ")
		if !ok {
			return fmt.Errorf("usage: refine <turn id> <instruction>")
		}
		r.session.View.OpenRefineEditor(turnID)
		if err := r.session.RefineTurn(ctx, turnID, strings.TrimSpace(instruction)); err != nil {
			return err
		}
		printScript(r.out, r.session.Dialogue.Script(), true)
		return nil

	case "continue":
		if rest == "" {
			return fmt.Errorf("usage: continue <instruction>")
		}
		r.session.View.OpenAddLineEditor()
		if err := r.session.AppendNextTurn(ctx, rest); err != nil {
			return err
		}
		printScript(r.out, r.session.Dialogue.Script(), true)
		return nil

	case "script":
		printScript(r.out, r.session.Dialogue.Script(), r.session.View.ScriptMode() == studio.ModeEditor)
		return nil

	case "mode":
		switch rest {
		case "editor":
			r.session.View.SetScriptMode(studio.ModeEditor)
		case "final":
			r.session.View.SetScriptMode(studio.ModeFinal)
		default:
			return fmt.Errorf("usage: mode editor|final")
		}
		return nil

	case "save":
		if rest == "" {
			return fmt.Errorf("usage: save <path>")
		}
		transcript := r.session.Transcript()
		if transcript == "" {
			return fmt.Errorf("no script to save")
		}
		if err := os.WriteFile(rest, []byte(transcript+"\n"), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "saved to %s\n", rest)
		return nil

	default:
		return fmt.Errorf("unknown command %q; type 'help'", verb)
	}
}

// resolvePersona accepts a 1-based roster index or a persona id.
func (r *repl) resolvePersona(ref string) (*persona.Persona, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("persona reference required")
	}
	personas := r.session.Personas.List()
	if n, convErr := parseIndex(ref); convErr == nil {
		if n < 1 || n > len(personas) {
			return nil, fmt.Errorf("persona %d out of range (have %d)", n, len(personas))
		}
		return personas[n-1], nil
	}
	if found := r.session.Personas.Get(ref); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("no persona %q", ref)
}

func parseIndex(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func allowedWord(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "blocked"
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `commands:
  analyze <path>              analyze a .txt/.md document into a persona
  list                        list personas (* marks selected speakers)
  show <n|id>                 print a persona's profile
  select <n|id>               toggle a persona's speaker selection (max 2)
  rename <n|id> <name>        rename a persona
  delete <n|id>               delete a persona
  move <n|id> <n|id>          move a persona to another's position
  edit config|details <n|id>  open an editor panel (config blocks generation)
  close <n|id>                close a persona's editor panel
  set context <source>        load context material (file, PDF, or URL)
  set length <value>          set the target dialogue length
  generate <topic>            generate a fresh script from the selection
  refine <turn id> <instr>    rewrite one turn
  continue <instr>            append the next turn
  script                      print the script in the current mode
  mode editor|final           switch the script view
  save <path>                 write the transcript to a file
  quit                        leave the session
`)
}
