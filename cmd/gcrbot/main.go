package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hanen-gb/gcrbot/internal/app"
	"github.com/hanen-gb/gcrbot/internal/report"
	"github.com/hanen-gb/gcrbot/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath  string
		siteURL     string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		userAgent   string
		pageTimeout time.Duration
		pdfTimeout  time.Duration
		robots      bool
		maxPages    int
		indexPath   string
		uploadDir   string
		listenAddr  string
		question    string
		answerPDF   string
		serve       bool
		dryRun      bool
		verbose     bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("GCRBOT_CONFIG"), "Path to YAML config file")
	flag.StringVar(&siteURL, "site", "https://enig.rnu.tn", "Institutional site the crawler starts from")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.StringVar(&userAgent, "crawl.ua", "", "Custom User-Agent for page fetches")
	flag.DurationVar(&pageTimeout, "crawl.pageTimeout", 0, "HTML fetch timeout (default 20s)")
	flag.DurationVar(&pdfTimeout, "crawl.pdfTimeout", 0, "PDF fetch timeout (default 60s)")
	flag.BoolVar(&robots, "crawl.robots", true, "Respect robots.txt")
	flag.IntVar(&maxPages, "crawl.maxPages", 5, "Maximum internal pages explored per question")
	flag.StringVar(&indexPath, "docs.index", os.Getenv("GCRBOT_INDEX"), "Path to document index JSON (enables document questions)")
	flag.StringVar(&uploadDir, "docs.uploads", "", "Directory for uploaded documents (server mode)")
	flag.StringVar(&listenAddr, "listen", ":8080", "HTTP listen address (server mode)")
	flag.StringVar(&question, "q", "", "Ask one question and exit")
	flag.StringVar(&answerPDF, "answer.pdf", "", "Also write the answer to this PDF path (one-shot mode)")
	flag.BoolVar(&serve, "serve", false, "Run the HTTP API")
	flag.BoolVar(&dryRun, "dry-run", false, "Retrieve without calling the model")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		SiteURL:       siteURL,
		LLMBaseURL:    llmBaseURL,
		LLMModel:      llmModel,
		LLMAPIKey:     llmKey,
		UserAgent:     userAgent,
		PageTimeout:   pageTimeout,
		PDFTimeout:    pdfTimeout,
		RespectRobots: robots,
		MaxPages:      maxPages,
		IndexPath:     indexPath,
		ListenAddr:    listenAddr,
		DryRun:        dryRun,
		Verbose:       verbose,
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	assistant, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case serve:
		runServer(ctx, assistant, cfg, uploadDir)
	case question != "":
		runOnce(ctx, assistant, question, answerPDF)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass -q \"question\" or -serve")
		flag.Usage()
		os.Exit(2)
	}
}

func runOnce(ctx context.Context, assistant *app.App, question, answerPDF string) {
	ans, err := assistant.Ask(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("ask failed")
	}
	fmt.Println(ans.Text)
	if ans.SourceURL != "" {
		fmt.Fprintf(os.Stderr, "source: %s\n", ans.SourceURL)
	}
	if answerPDF != "" {
		if err := report.WriteAnswerPDF(ans.Text, answerPDF); err != nil {
			log.Fatal().Err(err).Str("path", answerPDF).Msg("write answer pdf")
		}
		log.Info().Str("path", answerPDF).Msg("answer pdf written")
	}
}

func runServer(ctx context.Context, assistant *app.App, cfg app.Config, uploadDir string) {
	srv := &server.Server{
		App:       assistant,
		Index:     assistant.Index(),
		UploadDir: uploadDir,
	}
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}
}
