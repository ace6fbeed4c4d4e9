package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/forgeflow/forgeflow/internal/archive"
	"github.com/forgeflow/forgeflow/internal/auto"
	"github.com/forgeflow/forgeflow/internal/decision"
	"github.com/forgeflow/forgeflow/internal/detect"
	"github.com/forgeflow/forgeflow/internal/engine"
	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/log"
	"github.com/forgeflow/forgeflow/internal/report"
	"github.com/forgeflow/forgeflow/internal/score"
)

var runFlags struct {
	outputDir  string
	configFile string
	repoDir    string
	archiveDB  string

	maxRetries int
	threshold  int

	autoApprove bool
	approve     bool
	noInput     bool
	verbose     bool

	skipDimensions []string
}

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Run the control loop for a build request",
	Long: `Run the full control loop for a natural-language build request:

  1. Decompose the prompt into a dependency-ordered task plan
  2. Dispatch tasks to generation backends
  3. Score the generated artifacts across quality dimensions
  4. Decide: accept, retry, ask for input, or abort

When the run pauses awaiting input, an interactive form collects additional
guidance and resumes the session (disable with --no-input).

Exit Codes:
  0  Completed successfully
  1  General error
  2  Usage error
  3  Run failed (quality gate or orchestrator fault)
  4  Paused awaiting human input
  5  No engine supports a requested task type`,
	Args: cobra.MinimumNArgs(1),
	RunE: runControlLoop,
}

func init() {
	registerRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func registerRunFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&runFlags.outputDir, "output", "o", "forgeflow-out", "directory for generated artifacts")
	fs.StringVar(&runFlags.configFile, "config", "", "YAML config file overlaying the defaults")
	fs.StringVar(&runFlags.repoDir, "repo", "", "existing project directory used to bias planning")
	fs.StringVar(&runFlags.archiveDB, "archive", "", "sqlite archive database (default <output>/archive.db)")
	fs.IntVar(&runFlags.maxRetries, "max-retries", 3, "override the retry budget")
	fs.IntVar(&runFlags.threshold, "threshold", 70, "override the quality threshold")
	fs.BoolVar(&runFlags.autoApprove, "auto-approve", false, "run unattended; never pause for input")
	fs.BoolVar(&runFlags.approve, "approve", false, "show the plan approval gate before executing")
	fs.BoolVar(&runFlags.noInput, "no-input", false, "never prompt; an awaiting-input run just exits")
	fs.BoolVarP(&runFlags.verbose, "verbose", "v", false, "log every control-loop event")
	fs.StringSliceVar(&runFlags.skipDimensions, "skip-dimension", nil, "quality dimensions to disable (tests, accessibility, performance, security, codeQuality)")
}

func runControlLoop(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))

	config, err := buildRunConfig(cmd.Flags())
	if err != nil {
		return err
	}

	logger := log.Default()
	if config.Verbose {
		logger = log.Development()
	}
	log.SetDefaultLogger(logger)

	repoCtx, err := detect.Detect(runFlags.repoDir)
	if err != nil {
		// Degrade to baseline planning, never fail the run.
		logger.Warn("repository detection failed", "error", err.Error())
		repoCtx = nil
	}

	registry := engine.NewRegistry()
	engine.RegisterBuiltins(registry)

	orchestrator := auto.NewOrchestrator(
		engine.NewExecutor(registry, logger),
		score.NewScorer(logger),
		decision.NewEngine(logger),
		logger,
		config,
	)

	request := auto.Request{
		Prompt:      prompt,
		OutputDir:   config.OutputDir,
		RepoContext: repoCtx,
	}

	session, runErr := orchestrator.Run(cmd.Context(), request)

	// Resume loop: collect guidance while the run keeps pausing.
	for runErr == nil && session.State == auto.StateAwaitingInput && !runFlags.noInput && !config.AutoApprove {
		input, formErr := collectAdditionalInput(session)
		if formErr != nil || input == "" {
			break
		}
		request.AdditionalInput = append(request.AdditionalInput, input)
		session, runErr = orchestrator.Run(cmd.Context(), request)
	}

	if session != nil {
		fmt.Fprint(cmd.OutOrStdout(), report.Render(session))
		archiveSession(cmd.Context(), orchestrator, session, config.OutputDir, logger)
	}

	if runErr != nil {
		return runErr
	}
	if session.State == auto.StateAwaitingInput {
		return forgeerrors.NewAwaitingInputError()
	}
	return nil
}

// buildRunConfig overlays the config file on the defaults, then the flags
// the user actually set on top. An untouched flag never clobbers a file
// value with its default.
func buildRunConfig(fs *pflag.FlagSet) (auto.Config, error) {
	config := auto.DefaultConfig()
	if runFlags.configFile != "" {
		loaded, err := auto.LoadConfig(runFlags.configFile)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	if fs.Changed("max-retries") {
		config.MaxRetries = runFlags.maxRetries
	}
	if fs.Changed("threshold") {
		config.QualityThreshold = runFlags.threshold
	}
	if fs.Changed("auto-approve") {
		config.AutoApprove = runFlags.autoApprove
	}
	if fs.Changed("approve") {
		config.RequireApproval = runFlags.approve
	}
	if fs.Changed("verbose") {
		config.Verbose = runFlags.verbose
	}
	if fs.Changed("output") {
		config.OutputDir = runFlags.outputDir
	}

	for _, dim := range runFlags.skipDimensions {
		switch score.Dimension(dim) {
		case score.DimensionTests:
			config.Dimensions.Tests = false
		case score.DimensionAccessibility:
			config.Dimensions.Accessibility = false
		case score.DimensionPerformance:
			config.Dimensions.Performance = false
		case score.DimensionSecurity:
			config.Dimensions.Security = false
		case score.DimensionCodeQuality:
			config.Dimensions.CodeQuality = false
		default:
			return config, forgeerrors.New(forgeerrors.ErrCodeConfigInvalid, "unknown dimension: "+dim)
		}
	}
	return config, config.Validate()
}

// collectAdditionalInput shows the resume form after an awaiting-input stop.
func collectAdditionalInput(session *auto.AutomationContext) (string, error) {
	reason := "the quality gate was not met"
	if latest := session.LatestDecision(); latest != nil {
		reason = latest.Reason
	}

	var input string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("The run paused: " + reason).
			Description("Add guidance to resume, or leave empty to stop here.").
			Placeholder("e.g. drop the search page, focus on posts and login").
			Value(&input),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("input form: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// archiveSession persists the terminal session; failures are logged, never
// fatal to the CLI.
func archiveSession(ctx context.Context, orchestrator *auto.Orchestrator, session *auto.AutomationContext, outputDir string, logger *log.Logger) {
	if !session.State.Terminal() {
		return
	}

	path := runFlags.archiveDB
	if path == "" {
		path = filepath.Join(outputDir, "archive.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		logger.Warn("create archive directory", "error", err.Error())
		return
	}

	store, err := archive.Open(path)
	if err != nil {
		logger.WithError(err).Warn("open session archive")
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Save(ctx, session, orchestrator.Events()); err != nil {
		logger.WithError(err).Warn("archive session")
	}
}
