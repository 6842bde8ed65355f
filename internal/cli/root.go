package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/apresai/sflstudio/internal/generate"
	"github.com/apresai/sflstudio/internal/ingest"
	"github.com/apresai/sflstudio/internal/observability"
	"github.com/apresai/sflstudio/internal/progress"
	"github.com/apresai/sflstudio/internal/studio"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sflstudio",
	Short: "Build SFL speaker personas from documents and generate dialogues between them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sflstudio %s\n", Version)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a document and print its SFL persona profile",
	RunE:  runAnalyze,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dialogue between two document-derived personas",
	RunE:  runGenerate,
}

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Open an interactive studio session",
	RunE:  runStudio,
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List model identifiers available from the selected provider",
	RunE:  runListModels,
}

var (
	flagInput          string
	flagPersonaA       string
	flagPersonaB       string
	flagTopic          string
	flagContext        string
	flagLength         string
	flagOutput         string
	flagProvider       string
	flagModel          string
	flagThinkingBudget int
	flagTUI            bool
	flagJSON           bool
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(studioCmd)
	rootCmd.AddCommand(listModelsCmd)

	analyzeCmd.Flags().StringVarP(&flagInput, "input", "i", "", "Document to analyze (.txt or .md)")
	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full analysis result as JSON")

	generateCmd.Flags().StringVarP(&flagPersonaA, "persona-a", "a", "", "Document for the Speaker A persona (.txt or .md)")
	generateCmd.Flags().StringVarP(&flagPersonaB, "persona-b", "b", "", "Document for the Speaker B persona (.txt or .md)")
	generateCmd.Flags().StringVarP(&flagTopic, "topic", "p", "", "What the dialogue should be about")
	generateCmd.Flags().StringVarP(&flagContext, "context", "c", "", "Context material: a text file, PDF, or URL")
	generateCmd.Flags().StringVarP(&flagLength, "length", "l", "Short (1-3 mins)", "Target dialogue length")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the transcript to a file instead of stdout")
	generateCmd.Flags().BoolVarP(&flagTUI, "tui", "t", false, "Interactive setup wizard for generation options")

	for _, cmd := range []*cobra.Command{analyzeCmd, generateCmd, studioCmd, listModelsCmd} {
		cmd.Flags().StringVarP(&flagProvider, "provider", "P", "gemini", "Model provider: gemini, claude, nova")
		cmd.Flags().StringVarP(&flagModel, "model", "m", "", "Model alias (e.g. gemini-flash, sonnet, nova-lite) or a full model ID")
		cmd.Flags().IntVar(&flagThinkingBudget, "thinking-budget", -1, "Reasoning token cap for providers that support it (-1 = provider default)")
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// newGenerator validates the provider flag and builds the model client.
func newGenerator(ctx context.Context) (generate.Generator, error) {
	if !generate.IsValidProvider(flagProvider) {
		return nil, fmt.Errorf("invalid provider %q: must be one of %s",
			flagProvider, strings.Join(generate.ProviderNames(), ", "))
	}
	return generate.NewGenerator(ctx, flagProvider, flagModel)
}

func newSession(ctx context.Context) (*studio.Session, error) {
	gen, err := newGenerator(ctx)
	if err != nil {
		return nil, err
	}
	return studio.NewSession(gen, flagThinkingBudget, observability.InitLogger()), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if flagInput == "" {
		return fmt.Errorf("--input (-i) is required")
	}

	session, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	p, err := session.AnalyzeDocument(cmd.Context(), flagInput)
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := json.MarshalIndent(p.Analysis, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printPersonaProfile(os.Stdout, p)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if flagTUI {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("--tui requires a terminal")
		}
		if err := runInteractiveSetup(); err != nil {
			return err
		}
	}

	if flagPersonaA == "" || flagPersonaB == "" {
		return fmt.Errorf("both --persona-a (-a) and --persona-b (-b) are required")
	}
	if flagTopic == "" {
		return fmt.Errorf("--topic (-p) is required")
	}

	ctx := cmd.Context()
	session, err := newSession(ctx)
	if err != nil {
		return err
	}

	renderer := progress.NewBarRenderer(os.Stderr)
	start := time.Now()
	defer renderer.Finish()

	fail := func(stage progress.Stage, err error) error {
		e := progress.NewEvent(stage, err.Error(), 0, start)
		e.Error = err
		renderer.Handle(e)
		return err
	}

	var contextMaterial string
	if flagContext != "" {
		renderer.Handle(progress.NewEvent(progress.StageContext, "Loading context material", 0.05, start))
		contextMaterial, err = loadContext(ctx, flagContext)
		if err != nil {
			return fail(progress.StageContext, err)
		}
	}

	renderer.Handle(progress.NewEvent(progress.StageAnalysis, "Analyzing persona A document", 0.15, start))
	pa, err := session.AnalyzeDocument(ctx, flagPersonaA)
	if err != nil {
		return fail(progress.StageAnalysis, fmt.Errorf("persona A: %w", err))
	}
	renderer.Handle(progress.NewEvent(progress.StageAnalysis, "Analyzing persona B document", 0.4, start))
	pb, err := session.AnalyzeDocument(ctx, flagPersonaB)
	if err != nil {
		return fail(progress.StageAnalysis, fmt.Errorf("persona B: %w", err))
	}
	session.Personas.ToggleSelection(pa.ID)
	session.Personas.ToggleSelection(pb.ID)

	renderer.Handle(progress.NewEvent(progress.StageDialogue, "Generating dialogue", 0.65, start))
	turns, err := session.GenerateScript(ctx, flagTopic, contextMaterial, flagLength)
	if err != nil {
		return fail(progress.StageDialogue, err)
	}

	transcript := session.Transcript()
	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(transcript+"\n"), 0o644); err != nil {
			return fail(progress.StageComplete, fmt.Errorf("write transcript: %w", err))
		}
		done := progress.NewEvent(progress.StageComplete, "Dialogue ready", 1, start)
		done.OutputFile = flagOutput
		done.TurnCount = len(turns)
		renderer.Handle(done)
		return nil
	}

	renderer.Handle(progress.NewEvent(progress.StageComplete, fmt.Sprintf("Dialogue ready (%d turns)", len(turns)), 1, start))
	fmt.Println(transcript)
	return nil
}

func runListModels(cmd *cobra.Command, args []string) error {
	gen, err := newGenerator(cmd.Context())
	if err != nil {
		return err
	}

	// A listing failure is not fatal: report it and print nothing, the
	// way the UI keeps working with no model selected.
	models, err := gen.ListModels(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}
	for _, m := range models {
		fmt.Println(m)
	}
	return nil
}

// loadContext resolves the --context flag into prompt text. An empty
// source yields empty context.
func loadContext(ctx context.Context, source string) (string, error) {
	if source == "" {
		return "", nil
	}
	material, err := ingest.ForSource(source).Fetch(ctx, source)
	if err != nil {
		return "", fmt.Errorf("load context: %w", err)
	}
	return material.Text, nil
}
