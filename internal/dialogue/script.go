// Package dialogue turns generated dialogue text into a structured script of
// speaker turns and coordinates the asynchronous operations that mutate it.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/apresai/sflstudio/internal/sfl"
)

// Speaker is one of the two fixed roles a turn is attributed to. Roles are
// interchangeable labels; a session binds each to a concrete persona.
type Speaker string

const (
	SpeakerA Speaker = "Speaker A"
	SpeakerB Speaker = "Speaker B"
)

// Next returns the alternation partner.
func (s Speaker) Next() Speaker {
	if s == SpeakerA {
		return SpeakerB
	}
	return SpeakerA
}

// Turn is one line of dialogue. ID is unique; ordering is by position in the
// script, never by id value. Speaker and PersonaName are fixed at creation;
// only Text is replaced, by a refine operation.
type Turn struct {
	ID          string
	Speaker     Speaker
	PersonaName string
	Text        string
}

// Binding ties a speaker role to the persona it voices for one session: the
// persona's display name and the configuration captured at request time.
type Binding struct {
	Name   string
	Config sfl.PersonaConfiguration
}

// ParseTranscript splits raw generated dialogue into turns. Each non-blank
// line is matched against the two literal speaker prefixes, case-sensitively;
// a matching line becomes a turn bound to that role's persona name with the
// remainder trimmed. Lines matching neither prefix are dropped; sloppy model
// output degrades the script rather than failing it, even if the drop breaks
// strict alternation. Parsing is total: any input, including the empty
// string, yields a (possibly empty) script.
func ParseTranscript(raw, personaA, personaB string) []Turn {
	var turns []Turn
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if rest, ok := matchPrefix(line, SpeakerA); ok {
			turns = append(turns, newTurn(SpeakerA, personaA, rest))
		} else if rest, ok := matchPrefix(line, SpeakerB); ok {
			turns = append(turns, newTurn(SpeakerB, personaB, rest))
		}
	}
	return turns
}

// matchPrefix matches a literal, case-sensitive role label followed by a
// colon. An optional parenthesized persona name between the label and the
// colon is also accepted, so transcripts produced by Transcript parse back
// into equivalent scripts.
func matchPrefix(line string, role Speaker) (string, bool) {
	if !strings.HasPrefix(line, string(role)) {
		return "", false
	}
	rest := line[len(role):]
	if strings.HasPrefix(rest, " (") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return "", false
		}
		rest = rest[end+1:]
	}
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

func newTurn(role Speaker, personaName, text string) Turn {
	return Turn{
		ID:          ulid.Make().String(),
		Speaker:     role,
		PersonaName: personaName,
		Text:        text,
	}
}

// Transcript renders the script as a readable two-party transcript, one turn
// per block joined by blank lines. The format round-trips through
// ParseTranscript: parsing a transcript reproduces the same turn count,
// speaker sequence, and text.
func Transcript(turns []Turn) string {
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		blocks = append(blocks, fmt.Sprintf("%s (%s): %s", t.Speaker, t.PersonaName, t.Text))
	}
	return strings.Join(blocks, "\n\n")
}
