package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/interviewer/internal/evaluate"
	"github.com/pavelanni/interviewer/internal/handler"
	appI18n "github.com/pavelanni/interviewer/internal/i18n"
	"github.com/pavelanni/interviewer/internal/interview"
	"github.com/pavelanni/interviewer/internal/llm"
	"github.com/pavelanni/interviewer/internal/llm/prompts"
	"github.com/pavelanni/interviewer/internal/model"
	"github.com/pavelanni/interviewer/internal/question"
	"github.com/pavelanni/interviewer/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "interviewer",
		Short: "Adaptive multi-round technical interview server",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `interviewer --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP interview server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "interviewer.db", "SQLite archive path for finished interviews (empty disables archiving)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL (empty uses fallback questions and local grading only)")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.Duration("generation-timeout", 30*time.Second, "Timeout for one question generation call")
	f.Duration("judge-timeout", 120*time.Second, "Timeout for one answer judgment call")
	f.Duration("analysis-timeout", 60*time.Second, "Timeout for the narrative feedback call")
	f.Int("judge-concurrency", 4, "Maximum parallel judgment calls per round submission")
	f.String("prompt-variant", string(prompts.PromptStandard), "Grading prompt variant (strict, standard, lenient)")
	f.String("topics", "", "JSON topic catalog overriding built-in roles")
	f.Duration("session-ttl", 2*time.Hour, "Idle time after which a session is discarded")
	f.Duration("sweep-interval", 5*time.Minute, "How often idle sessions are swept")
	f.StringP("lang", "l", "en", "Default message language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived interviews as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "interviewer.db", "SQLite archive path")
	f.String("status", "", "Only export interviews with this status (failed, completed)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

// setupLogging installs the default slog logger from --log-level and --log-format.
// Unknown levels fall back to info.
func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(v.GetString("log-format"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("INTERVIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("interviewer")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/interviewer")
	v.AddConfigPath("/etc/interviewer")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	promptVariant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(promptVariant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", promptVariant)
		promptVariant = string(prompts.PromptStandard)
	}

	catalog := question.DefaultCatalog
	if path := v.GetString("topics"); path != "" {
		c, err := question.LoadCatalog(path)
		if err != nil {
			return fmt.Errorf("load topics: %w", err)
		}
		catalog = c
		slog.Info("loaded topic catalog", "path", path, "roles", len(c))
	}

	// The collaborator is optional: without it every question is a fallback
	// and grading uses local rules only.
	var (
		completer llm.Completer
		judge     evaluate.Judge
		analyst   evaluate.Analyst
	)
	if url := v.GetString("llm-url"); url != "" {
		client := llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"))
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := client.Ping(pingCtx); err != nil {
			slog.Warn("LLM health check failed, continuing with fallbacks", "url", url, "error", err)
		} else {
			slog.Info("LLM endpoint OK", "url", url, "model", v.GetString("llm-model"))
		}
		cancel()
		completer = client
		judge = llm.NewJudge(client, prompts.PromptVariant(promptVariant), v.GetDuration("judge-timeout"))
		analyst = llm.NewAnalyst(client, v.GetDuration("analysis-timeout"))
	} else {
		slog.Warn("no LLM endpoint configured, using fallback questions and local grading")
	}

	var archive interview.Archiver
	if path := v.GetString("db"); path != "" {
		db, err := store.New(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.SetArchiveInfo(model.ArchiveInfo{
			LLMModel:      v.GetString("llm-model"),
			PromptVariant: promptVariant,
			Language:      lang,
		}); err != nil {
			return fmt.Errorf("record archive info: %w", err)
		}
		archive = db
	}

	synth := question.NewSynthesizer(completer, question.DefaultBank, v.GetDuration("generation-timeout"))
	engine := interview.NewEngine(
		interview.NewMemoryRepository(),
		question.NewBuilder(synth, catalog),
		evaluate.NewEvaluator(judge, v.GetInt("judge-concurrency")),
		evaluate.NewAggregator(analyst),
		archive,
	)
	engine.StartSweeper(ctx, v.GetDuration("session-ttl"), v.GetDuration("sweep-interval"))

	h, err := handler.New(engine)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	// No write timeout: a round submission may wait on several judge calls.
	srv := &http.Server{
		Addr:        v.GetString("addr"),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	slog.Info("starting server",
		"addr", srv.Addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"prompt_variant", promptVariant,
		"session_ttl", v.GetDuration("session-ttl"),
		"archive", v.GetString("db"),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	stop()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	status := model.SessionState(strings.ToLower(v.GetString("status")))
	switch status {
	case "", model.StateFailed, model.StateCompleted:
	default:
		return fmt.Errorf("invalid status %q: want failed or completed", status)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportInterviews(cmd.Context(), status)
	if err != nil {
		return fmt.Errorf("export interviews: %w", err)
	}

	out, err := openOutput(v.GetString("output"))
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	slog.Info("exported interviews", "count", export.Count, "status", status)
	return nil
}

// openOutput opens path for writing; "" and "-" mean stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
