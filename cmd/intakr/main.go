package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"intakr/internal/calendar"
	"intakr/internal/config"
	"intakr/internal/feature"
	"intakr/internal/intake"
	"intakr/internal/report"
	"intakr/internal/store"
	"intakr/internal/tui"
	"intakr/internal/watcher"
)

var rootCmd = &cobra.Command{
	Use:   "intakr",
	Short: "Feature-intake and project-conversion pipeline",
	Long:  "intakr classifies free-text feature requests into category buckets and converts accepted project requests into structured internal projects with tasks, milestones, and work logs.",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Classify a feature list and show category buckets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngest,
}

var submitCmd = &cobra.Command{
	Use:   "submit [file]",
	Short: "Submit a new project request from a feature list",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSubmit,
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List intake requests",
	RunE:  runRequests,
}

var convertCmd = &cobra.Command{
	Use:   "convert <request-id>",
	Short: "Transition a request and materialize its project",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var batchCmd = &cobra.Command{
	Use:   "batch <request-id>...",
	Short: "Transition many requests in one grouped commit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively pick pending requests to accept",
	RunE:  runReview,
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a project's milestones as an ICS calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for new pending requests and notify",
	RunE:  runWatch,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher",
	RunE:  runStop,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	submitCmd.Flags().String("name", "", "Project name (required)")
	submitCmd.Flags().String("desc", "", "Project description")
	submitCmd.Flags().String("by", "", "Requesting user id")

	convertCmd.Flags().String("to", string(intake.StatusAccepted), "Target status")
	convertCmd.Flags().String("by", "", "Acting operator (defaults to config)")
	convertCmd.Flags().String("deadline", "", `Project deadline in natural language, e.g. "in two weeks"`)

	batchCmd.Flags().String("to", string(intake.StatusAccepted), "Target status")
	batchCmd.Flags().String("by", "", "Acting operator (defaults to config)")

	exportCmd.Flags().StringP("output", "o", "", "Write ICS to a file instead of stdout")

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openService(cmd *cobra.Command) (*intake.Service, *store.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	return intake.NewService(db, newLogger(cmd)), db, cfg, nil
}

// readInput returns the contents of the file argument, or stdin when the
// argument is missing or "-".
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input file: %w", err)
	}
	return string(data), nil
}

func resolveOperator(cmd *cobra.Command, cfg *config.Config) string {
	operator, _ := cmd.Flags().GetString("by")
	if operator == "" {
		operator = cfg.Operator.Name
	}
	return operator
}

func runIngest(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	classified := feature.ClassifyAll(feature.Parse(text))
	if len(classified) == 0 {
		fmt.Println("No features found in input.")
		return nil
	}

	buckets, summary := feature.Aggregate(classified)
	fmt.Print(report.Intake("Feature Intake", buckets, summary))
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		return fmt.Errorf("--name is required")
	}
	desc, _ := cmd.Flags().GetString("desc")
	requestedBy, _ := cmd.Flags().GetString("by")

	text, err := readInput(args)
	if err != nil {
		return err
	}

	svc, db, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := svc.Submit(cmd.Context(), intake.Request{
		ProjectName: name,
		Description: desc,
		Features:    text,
		RequestedBy: requestedBy,
	})
	if err != nil {
		return fmt.Errorf("submitting request: %w", err)
	}

	fmt.Printf("Submitted request %s (%d feature lines)\n", id, len(feature.Parse(text)))
	return nil
}

func runRequests(cmd *cobra.Command, args []string) error {
	svc, db, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	requests, err := svc.Requests(cmd.Context())
	if err != nil {
		return err
	}

	if len(requests) == 0 {
		fmt.Println("No intake requests.")
		return nil
	}

	fmt.Printf("%d intake request(s):\n\n", len(requests))
	for _, r := range requests {
		fmt.Println(report.RequestLine(r))
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	svc, db, cfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	target, _ := cmd.Flags().GetString("to")

	var deadline time.Time
	if raw, _ := cmd.Flags().GetString("deadline"); raw != "" {
		deadline, err = naturaldate.Parse(raw, time.Now(), naturaldate.WithDirection(naturaldate.Future))
		if err != nil {
			return fmt.Errorf("parsing deadline %q: %w", raw, err)
		}
	}

	result, err := svc.Transition(cmd.Context(), intake.TransitionRequest{
		RequestID: args[0],
		Target:    intake.Status(target),
		Operator:  resolveOperator(cmd, cfg),
		Deadline:  deadline,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Request %s is now %s\n", result.RequestID, target)
	if result.AdminProjectID != "" {
		fmt.Printf("Project: %s\n", result.AdminProjectID)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	svc, db, cfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	target, _ := cmd.Flags().GetString("to")
	results, err := svc.TransitionBatch(cmd.Context(), args, intake.Status(target), resolveOperator(cmd, cfg))
	if err != nil {
		return err
	}

	fmt.Printf("Batch transition to %s:\n\n", target)
	fmt.Print(report.BatchResults(results))
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	svc, db, cfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := svc.Pending(cmd.Context())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No pending requests.")
		return nil
	}

	app := tui.NewReviewApp(pending)
	p := tea.NewProgram(app)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	result := app.GetResult()
	if result == nil || result.Canceled || len(result.RequestIDs) == 0 {
		fmt.Println("Nothing selected.")
		return nil
	}

	results, err := svc.TransitionBatch(cmd.Context(), result.RequestIDs, intake.StatusAccepted, resolveOperator(cmd, cfg))
	if err != nil {
		return err
	}

	fmt.Printf("Accepted %d request(s):\n\n", len(result.RequestIDs))
	fmt.Print(report.BatchResults(results))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, db, _, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	project, err := svc.Project(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(project.Milestones) == 0 {
		fmt.Println("Project has no milestones.")
		return nil
	}

	var w io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
		fmt.Printf("Writing %d milestone(s) to %s\n", len(project.Milestones), path)
	}

	return calendar.WriteMilestones(w, args[0], project)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, db, cfg, err := openService(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return watcher.New(cfg, svc, db).Run(ctx)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := watcher.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to intakr watcher (PID %d)\n", pid)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config file
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[store]
path = "%s"

[operator]
name = "%s"

[watch]
interval_minutes = %d

[notifications]
enabled = %t
`,
			cfg.Store.Path,
			cfg.Operator.Name,
			cfg.Watch.IntervalMinutes,
			cfg.Notifications.Enabled,
		)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		// If editor fails, just print the path
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
