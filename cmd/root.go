package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mathquest/engine/internal/cache"
	"github.com/mathquest/engine/internal/engine"
	"github.com/mathquest/engine/internal/genai"
	"github.com/mathquest/engine/internal/llm"
	"github.com/mathquest/engine/internal/problem"
	"github.com/mathquest/engine/internal/store"
	"github.com/mathquest/engine/internal/strategy"
	"github.com/mathquest/engine/internal/template"
)

var rootCmd = &cobra.Command{
	Use:   "mathquest",
	Short: "Problem session engine for multiplication practice",
	Long:  "MathQuest generates personalized multiplication word problems, validates answers, and tracks rewards.",
}

func Execute() error {
	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHQUEST_DB env var)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHQUEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// buildEngine opens the store and wires the full session engine. The caller
// owns closing the returned store.
func buildEngine(cmd *cobra.Command) (*engine.Engine, *store.Store, error) {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	attempts := st.AttemptRepo()

	// Prefer the seeded catalog; fall back to the builtin set on an empty
	// database so a fresh install still serves problems.
	var catalog template.Catalog = st.TemplateRepo()
	if n, err := st.TemplateRepo().Count(ctx); err != nil || n == 0 {
		catalog = template.NewStaticCatalog(template.BuiltinTemplates())
	}

	tplEngine := template.NewEngine(catalog, attempts)
	templates := template.NewProvider(tplEngine, template.NewStaticSubjects())
	selector := strategy.NewSelector(tplEngine, attempts)

	var generative problem.ContentProvider
	model, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Generative problems will be unavailable.")
		generative = unavailableProvider{}
	} else {
		generative = genai.New(model, genai.DefaultConfig())
	}

	// One-shot commands close the store as soon as RunE returns, so the
	// durable upsert, completion, and attempt writes must run inline; the
	// default goroutine spawner is for long-running embedders.
	eng := engine.New(engine.DefaultConfig(), cache.New(cache.DefaultConfig()),
		st.SessionRepo(), attempts, attempts, selector, templates, generative,
		engine.WithSynchronousTasks())
	return eng, st, nil
}

// unavailableProvider stands in when no model API key is configured.
type unavailableProvider struct{}

func (unavailableProvider) Generate(_ context.Context, _ problem.GenerateInput) (*problem.Session, error) {
	return nil, fmt.Errorf("generative backend not configured: %w", problem.ErrNoContent)
}
