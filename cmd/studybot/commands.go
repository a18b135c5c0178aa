package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/studybot"
	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/config"
	"github.com/poiesic/studybot/ingestion"
	"github.com/poiesic/studybot/reembed"
	"github.com/poiesic/studybot/storage/sqlite"
	"github.com/poiesic/studybot/tui"
)

// extraOptions is appended to every assistant's options. Tests use it to
// swap in mock services.
var extraOptions []studybot.Option

var errNoMaterials = errors.New("no materials built yet: run `studybot build <pdf>` first")

func openAssistant(c *cli.Context) (*studybot.Assistant, *config.AppConfig, error) {
	cfg := appConfig(c)

	aiConfig := ai.NewConfig(cfg.AIOptions()...)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	opts := []studybot.Option{
		studybot.WithAIConfig(aiConfig),
		studybot.WithStudentID(cfg.Student),
		studybot.WithPipelineOptions(pipelineOptions(cfg)...),
	}
	if cfg.Progress.Backend == config.BackendSQLite {
		repo, err := sqlite.Open(cfg.ResolvePath(cfg.Progress.SQLitePath))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open progress database: %w", err)
		}
		opts = append(opts, studybot.WithProgressRepository(repo))
	}
	opts = append(opts, extraOptions...)

	a, err := studybot.NewAssistant(cfg.DataDir, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open study store: %w", err)
	}
	return a, cfg, nil
}

func pipelineOptions(cfg *config.AppConfig) []ingestion.Option {
	opts := []ingestion.Option{
		ingestion.WithIndexDir(cfg.ResolvePath(cfg.Ingestion.IndexDir)),
		ingestion.WithBatchSize(cfg.Ingestion.BatchSize),
	}
	if cfg.Ingestion.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(cfg.Ingestion.PoolSize))
	}
	return opts
}

// selectMaterial activates the named material, or the only one when name is empty.
func selectMaterial(ctx context.Context, a *studybot.Assistant, name string) error {
	if name != "" {
		return a.Use(ctx, name)
	}
	materials, err := a.Materials(ctx)
	if err != nil {
		return err
	}
	switch len(materials) {
	case 0:
		return errNoMaterials
	case 1:
		return a.Use(ctx, materials[0].Name)
	default:
		names := make([]string, len(materials))
		for i, m := range materials {
			names[i] = m.Name
		}
		return fmt.Errorf("several materials are built (%s): choose one with --material", strings.Join(names, ", "))
	}
}

func joinedArgs(c *cli.Context, what string) (string, error) {
	s := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if s == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return s, nil
}

func buildCommand(c *cli.Context) error {
	ctx := c.Context
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one PDF path is required")
	}
	if c.String("name") != "" && len(paths) > 1 {
		return fmt.Errorf("--name can only be used with a single PDF")
	}

	a, _, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	var built []*ingestion.Loaded
	if len(paths) == 1 {
		loaded, err := a.BuildFromPDF(ctx, paths[0], c.String("name"))
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		built = append(built, loaded)
	} else {
		built, err = a.BuildAll(ctx, paths)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
	}

	for _, l := range built {
		m := l.Material
		fmt.Fprintf(c.App.Writer, "Built %s: %d pages, %d chunks (size %d, overlap %d), dimension %d\n",
			m.Name, m.Pages, m.ChunkCount, m.ChunkSize, m.Overlap, m.Dimension)
	}
	return nil
}

func materialsCommand(c *cli.Context) error {
	a, _, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	materials, err := a.Materials(c.Context)
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		fmt.Fprintln(c.App.Writer, "No materials built yet.")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPAGES\tCHUNKS\tMODEL\tUPDATED")
	for _, m := range materials {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", m.Name, m.Pages, m.ChunkCount, m.EmbeddingModel,
			m.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func deleteCommand(c *cli.Context) error {
	name, err := joinedArgs(c, "material name")
	if err != nil {
		return err
	}
	a, _, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.DeleteMaterial(c.Context, name); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Deleted %s\n", name)
	return nil
}

func askCommand(c *cli.Context) error {
	question, err := joinedArgs(c, "question")
	if err != nil {
		return err
	}
	a, cfg, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := selectMaterial(c.Context, a, c.String("material")); err != nil {
		return err
	}
	kChunks, kSentences := cfg.Search.KChunks, cfg.Search.KSentences
	if c.IsSet("k-chunks") {
		kChunks = c.Int("k-chunks")
	}
	if c.IsSet("k-sentences") {
		kSentences = c.Int("k-sentences")
	}

	out, err := a.Answer(c.Context, question, kChunks, kSentences)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tui.FormatAnswer(question, out))
	return nil
}

func answerCommand(c *cli.Context) error {
	question, err := joinedArgs(c, "question")
	if err != nil {
		return err
	}
	a, cfg, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := selectMaterial(c.Context, a, c.String("material")); err != nil {
		return err
	}
	topK := cfg.Search.RAGTopK
	if c.IsSet("top-k") {
		topK = c.Int("top-k")
	}

	out, err := a.RAGAnswer(c.Context, question, topK)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tui.FormatAnswer(question, out))
	return nil
}

func quizCommand(c *cli.Context) error {
	topic, err := joinedArgs(c, "topic")
	if err != nil {
		return err
	}
	a, cfg, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := selectMaterial(c.Context, a, c.String("material")); err != nil {
		return err
	}
	topK := cfg.Search.QuizTopK
	if c.IsSet("top-k") {
		topK = c.Int("top-k")
	}

	quiz, err := a.GenerateQuiz(c.Context, topic, topK)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tui.FormatQuiz(quiz))

	choice := c.String("answer")
	if choice == "" {
		fmt.Fprint(c.App.Writer, "\nYour answer: ")
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			// no answer given; the attempt stays ungraded
			fmt.Fprintln(c.App.Writer)
			return nil
		}
		choice = strings.TrimSpace(line)
	}

	correct, err := a.SubmitQuizAnswer(c.Context, quiz, choice)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tui.FormatGrade(quiz, correct))
	return nil
}

func progressCommand(c *cli.Context) error {
	a, _, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	progress, err := a.TrackProgress(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tui.FormatProgress(progress))

	if n := c.Int("history"); n > 0 {
		history, err := a.History(c.Context, n)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "\nRecent questions:")
		for _, r := range history {
			fmt.Fprintf(c.App.Writer, "  %s  %s\n", r.Timestamp.Format("2006-01-02 15:04"), r.Question)
		}
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	name, err := joinedArgs(c, "material name")
	if err != nil {
		return err
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Normalize:      c.Bool("normalize"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	cfg := appConfig(c)
	if model := c.String("embedding-model"); model != "" {
		cfg.AI.EmbeddingModel = model
	}
	reembedConfig.EmbeddingModel = cfg.AI.EmbeddingModel

	a, _, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(c.App.ErrWriter, "Data directory: %s\n", cfg.DataDir)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := a.Reindex(c.Context, name, reembedConfig, c.App.ErrWriter); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	a, cfg, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := selectMaterial(c.Context, a, c.String("material")); err != nil {
		return err
	}
	name := a.Active().Material.Name
	topic := c.String("topic")
	if topic == "" {
		topic = strings.TrimSuffix(name, ".pdf")
	}

	model := tui.New(c.Context, a, tui.Config{
		Title:    "Study Assistant: " + name,
		Topic:    topic,
		RAGTopK:  cfg.Search.RAGTopK,
		QuizTopK: cfg.Search.QuizTopK,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
	return err
}
