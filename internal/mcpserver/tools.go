package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/apresai/sflstudio/internal/dialogue"
	"github.com/apresai/sflstudio/internal/persona"
	"github.com/apresai/sflstudio/internal/sfl"
	"github.com/apresai/sflstudio/internal/studio"
)

var tracer = otel.Tracer("sflstudio-mcp")

// ToolDefs returns the MCP tool definitions.
func ToolDefs() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "analyze_document",
			Description: "Run SFL analysis over a document and create a persona from the result. Provide either document_text or document_path (.txt or .md).",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"document_text": map[string]any{
						"type":        "string",
						"description": "Raw document text to analyze",
					},
					"document_path": map[string]any{
						"type":        "string",
						"description": "Path to a .txt or .md document on the server (alternative to document_text)",
					},
				},
			},
		},
		{
			Name:        "list_personas",
			Description: "List all personas in roster order, with their selection state and configuration.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "update_persona_config",
			Description: "Replace a persona's SFL configuration. The four ideational process percentages and the three interpersonal speech-function percentages must each sum to 100.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"persona_id": map[string]any{
						"type":        "string",
						"description": "The persona ID",
					},
					"config": map[string]any{
						"type":        "object",
						"description": "Full persona configuration object (ideational, interpersonal, textual)",
					},
				},
				Required: []string{"persona_id", "config"},
			},
		},
		{
			Name:        "update_persona_details",
			Description: "Rename a persona and/or change its description. The name must not be blank.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"persona_id": map[string]any{
						"type":        "string",
						"description": "The persona ID",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "New display name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "New description",
					},
				},
				Required: []string{"persona_id", "name"},
			},
		},
		{
			Name:        "delete_persona",
			Description: "Remove a persona from the roster. Also removes it from the speaker selection.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"persona_id": map[string]any{
						"type":        "string",
						"description": "The persona ID",
					},
				},
				Required: []string{"persona_id"},
			},
		},
		{
			Name:        "reorder_personas",
			Description: "Move one persona to another persona's position in the roster (drag and drop semantics).",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"drag_id": map[string]any{
						"type":        "string",
						"description": "ID of the persona being moved",
					},
					"drop_id": map[string]any{
						"type":        "string",
						"description": "ID of the persona whose position it takes",
					},
				},
				Required: []string{"drag_id", "drop_id"},
			},
		},
		{
			Name:        "toggle_selection",
			Description: "Toggle a persona in or out of the speaker selection. At most two personas can be selected; dialogue needs exactly two.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"persona_id": map[string]any{
						"type":        "string",
						"description": "The persona ID",
					},
				},
				Required: []string{"persona_id"},
			},
		},
		{
			Name:        "generate_dialogue",
			Description: "Generate a fresh dialogue script between the two selected personas. Replaces any existing script.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "What the dialogue should be about",
					},
					"context": map[string]any{
						"type":        "string",
						"description": "Optional context material to weave in",
					},
					"length": map[string]any{
						"type":        "string",
						"description": "Target length, e.g. 'Short (1-3 mins)'",
						"default":     "Short (1-3 mins)",
					},
				},
				Required: []string{"topic"},
			},
		},
		{
			Name:        "refine_turn",
			Description: "Rewrite one turn of the script per an instruction, keeping the speaker's persona voice. Only the turn's text changes.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"turn_id": map[string]any{
						"type":        "string",
						"description": "ID of the turn to rewrite",
					},
					"instruction": map[string]any{
						"type":        "string",
						"description": "How to rewrite the line",
					},
				},
				Required: []string{"turn_id", "instruction"},
			},
		},
		{
			Name:        "continue_dialogue",
			Description: "Append one more turn to the script. The speaker alternates from the last turn.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"instruction": map[string]any{
						"type":        "string",
						"description": "What the next line should do",
					},
				},
				Required: []string{"instruction"},
			},
		},
		{
			Name:        "get_script",
			Description: "Return the current script as structured turns plus a formatted transcript.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
	}
}

// Handlers contains tool handler implementations over one session.
type Handlers struct {
	session *studio.Session
	log     *slog.Logger
}

// NewHandlers creates tool handlers.
func NewHandlers(session *studio.Session, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{session: session, log: logger}
}

// HandleAnalyzeDocument creates a persona from a document.
func (h *Handlers) HandleAnalyzeDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.analyze_document")
	defer span.End()

	text := mcp.ParseString(req, "document_text", "")
	path := mcp.ParseString(req, "document_path", "")
	if text == "" && path == "" {
		span.SetStatus(codes.Error, "missing input")
		return mcp.NewToolResultError("either document_text or document_path is required"), nil
	}

	var (
		p   *persona.Persona
		err error
	)
	if text != "" {
		p, err = h.session.AnalyzeText(ctx, text)
	} else {
		span.SetAttributes(attribute.String("document_path", path))
		p, err = h.session.AnalyzeDocument(ctx, path)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	span.SetAttributes(attribute.String("persona_id", p.ID))
	h.log.InfoContext(ctx, "Persona created via MCP", "persona_id", p.ID, "name", p.Name)

	return jsonResult(personaSummary(h.session, p))
}

// HandleListPersonas returns the roster in order.
func (h *Handlers) HandleListPersonas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.list_personas")
	defer span.End()

	personas := h.session.Personas.List()
	span.SetAttributes(attribute.Int("result_count", len(personas)))

	out := make([]map[string]any, 0, len(personas))
	for _, p := range personas {
		out = append(out, personaSummary(h.session, p))
	}
	return jsonResult(map[string]any{
		"personas": out,
		"count":    len(out),
	})
}

// HandleUpdatePersonaConfig replaces a persona's configuration.
func (h *Handlers) HandleUpdatePersonaConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.update_persona_config")
	defer span.End()

	id := mcp.ParseString(req, "persona_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing persona_id")
		return mcp.NewToolResultError("persona_id is required"), nil
	}
	span.SetAttributes(attribute.String("persona_id", id))

	if h.session.Personas.Get(id) == nil {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(fmt.Sprintf("persona %s not found", id)), nil
	}

	cfg, err := parseConfigParam(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad config")
		return mcp.NewToolResultError(fmt.Sprintf("invalid config: %v", err)), nil
	}
	if !sfl.IsSaveable(cfg) {
		span.SetStatus(codes.Error, "not saveable")
		return mcp.NewToolResultError("config rejected: process and speech-function percentages must each sum to 100"), nil
	}

	h.session.Personas.UpdateConfig(id, cfg)
	h.log.InfoContext(ctx, "Persona config updated", "persona_id", id)
	return jsonResult(map[string]any{"persona_id": id, "status": "updated"})
}

// HandleUpdatePersonaDetails renames a persona.
func (h *Handlers) HandleUpdatePersonaDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.update_persona_details")
	defer span.End()

	id := mcp.ParseString(req, "persona_id", "")
	name := mcp.ParseString(req, "name", "")
	description := mcp.ParseString(req, "description", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing persona_id")
		return mcp.NewToolResultError("persona_id is required"), nil
	}
	span.SetAttributes(attribute.String("persona_id", id))

	if !h.session.Personas.UpdateDetails(id, name, description) {
		span.SetStatus(codes.Error, "rejected")
		return mcp.NewToolResultError("update rejected: unknown persona or blank name"), nil
	}

	h.log.InfoContext(ctx, "Persona details updated", "persona_id", id, "name", name)
	return jsonResult(map[string]any{"persona_id": id, "status": "updated"})
}

// HandleDeletePersona removes a persona.
func (h *Handlers) HandleDeletePersona(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.delete_persona")
	defer span.End()

	id := mcp.ParseString(req, "persona_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing persona_id")
		return mcp.NewToolResultError("persona_id is required"), nil
	}
	span.SetAttributes(attribute.String("persona_id", id))

	if !h.session.DeletePersona(id) {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(fmt.Sprintf("persona %s not found", id)), nil
	}

	h.log.InfoContext(ctx, "Persona deleted", "persona_id", id)
	return jsonResult(map[string]any{"persona_id": id, "status": "deleted"})
}

// HandleReorderPersonas moves one persona to another's position.
func (h *Handlers) HandleReorderPersonas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.reorder_personas")
	defer span.End()

	dragID := mcp.ParseString(req, "drag_id", "")
	dropID := mcp.ParseString(req, "drop_id", "")
	if dragID == "" || dropID == "" {
		span.SetStatus(codes.Error, "missing ids")
		return mcp.NewToolResultError("drag_id and drop_id are required"), nil
	}
	span.SetAttributes(
		attribute.String("drag_id", dragID),
		attribute.String("drop_id", dropID),
	)

	h.session.Personas.Reorder(dragID, dropID)

	order := make([]string, 0, h.session.Personas.Len())
	for _, p := range h.session.Personas.List() {
		order = append(order, p.ID)
	}
	return jsonResult(map[string]any{"order": order})
}

// HandleToggleSelection toggles a persona's speaker selection.
func (h *Handlers) HandleToggleSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.toggle_selection")
	defer span.End()

	id := mcp.ParseString(req, "persona_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing persona_id")
		return mcp.NewToolResultError("persona_id is required"), nil
	}
	span.SetAttributes(attribute.String("persona_id", id))

	h.session.Personas.ToggleSelection(id)

	selected := make([]string, 0, 2)
	for _, p := range h.session.Personas.Selected() {
		selected = append(selected, p.ID)
	}
	span.SetAttributes(attribute.Int("selected_count", len(selected)))
	return jsonResult(map[string]any{"selected": selected})
}

// HandleGenerateDialogue generates a fresh script.
func (h *Handlers) HandleGenerateDialogue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.generate_dialogue")
	defer span.End()

	topic := mcp.ParseString(req, "topic", "")
	contextMaterial := mcp.ParseString(req, "context", "")
	length := mcp.ParseString(req, "length", "Short (1-3 mins)")
	span.SetAttributes(
		attribute.String("topic", topic),
		attribute.String("length", length),
	)

	turns, err := h.session.GenerateScript(ctx, topic, contextMaterial, length)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	span.SetAttributes(attribute.Int("turns", len(turns)))
	h.log.InfoContext(ctx, "Dialogue generated via MCP", "turns", len(turns))
	return jsonResult(scriptPayload(turns, h.session.Transcript()))
}

// HandleRefineTurn rewrites one turn.
func (h *Handlers) HandleRefineTurn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.refine_turn")
	defer span.End()

	turnID := mcp.ParseString(req, "turn_id", "")
	instruction := mcp.ParseString(req, "instruction", "")
	span.SetAttributes(attribute.String("turn_id", turnID))

	if err := h.session.RefineTurn(ctx, turnID, instruction); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refine failed")
		return mcp.NewToolResultError(fmt.Sprintf("refine failed: %v", err)), nil
	}

	h.log.InfoContext(ctx, "Turn refined via MCP", "turn_id", turnID)
	return jsonResult(scriptPayload(h.session.Dialogue.Script(), h.session.Transcript()))
}

// HandleContinueDialogue appends one turn.
func (h *Handlers) HandleContinueDialogue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.continue_dialogue")
	defer span.End()

	instruction := mcp.ParseString(req, "instruction", "")

	if err := h.session.AppendNextTurn(ctx, instruction); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "continue failed")
		return mcp.NewToolResultError(fmt.Sprintf("continue failed: %v", err)), nil
	}

	turns := h.session.Dialogue.Script()
	span.SetAttributes(attribute.Int("turns", len(turns)))
	h.log.InfoContext(ctx, "Dialogue continued via MCP", "turns", len(turns))
	return jsonResult(scriptPayload(turns, h.session.Transcript()))
}

// HandleGetScript returns the current script.
func (h *Handlers) HandleGetScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, span := tracer.Start(ctx, "tool.get_script")
	defer span.End()

	turns := h.session.Dialogue.Script()
	span.SetAttributes(attribute.Int("turns", len(turns)))
	return jsonResult(scriptPayload(turns, h.session.Transcript()))
}

func personaSummary(s *studio.Session, p *persona.Persona) map[string]any {
	return map[string]any{
		"persona_id":  p.ID,
		"name":        p.Name,
		"description": p.Description,
		"selected":    s.Personas.IsSelected(p.ID),
		"saveable":    sfl.IsSaveable(p.Config()),
		"config":      p.Config(),
	}
}

func scriptPayload(turns []dialogue.Turn, transcript string) map[string]any {
	out := make([]map[string]any, 0, len(turns))
	for _, t := range turns {
		out = append(out, map[string]any{
			"turn_id":      t.ID,
			"speaker":      string(t.Speaker),
			"persona_name": t.PersonaName,
			"text":         t.Text,
		})
	}
	return map[string]any{
		"turns":      out,
		"count":      len(out),
		"transcript": transcript,
	}
}

func parseConfigParam(req mcp.CallToolRequest) (sfl.PersonaConfiguration, error) {
	var cfg sfl.PersonaConfiguration
	args := req.GetArguments()
	if args == nil {
		return cfg, fmt.Errorf("config is required")
	}
	raw, ok := args["config"]
	if !ok {
		return cfg, fmt.Errorf("config is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
