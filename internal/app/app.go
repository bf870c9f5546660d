// Package app wires question routing, web discovery, the document
// index and the chat model into one assistant.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hanen-gb/gcrbot/internal/answer"
	"github.com/hanen-gb/gcrbot/internal/crawler"
	"github.com/hanen-gb/gcrbot/internal/docindex"
	"github.com/hanen-gb/gcrbot/internal/fetch"
	"github.com/hanen-gb/gcrbot/internal/llm"
	"github.com/hanen-gb/gcrbot/internal/pdftext"
	"github.com/hanen-gb/gcrbot/internal/report"
	"github.com/hanen-gb/gcrbot/internal/route"
)

// Answer is the assistant's reply to one question.
type Answer struct {
	Question  string             `json:"question"`
	Language  route.Language     `json:"language"`
	Type      route.QuestionType `json:"type"`
	Text      string             `json:"text"`
	SourceURL string             `json:"source_url,omitempty"`
	PDFLinks  []string           `json:"pdf_links,omitempty"`
}

// App owns the long-lived collaborators. Per-question state lives in
// the Ask call, so one App serves concurrent requests.
type App struct {
	cfg     Config
	crawler *crawler.Controller
	index   *docindex.Index
	synth   *answer.Synthesizer
}

// sufficientChars approximates the 200-word cutoff deciding whether
// the start page alone answers the question or a deep crawl is needed.
const sufficientChars = 1000

// New builds the assistant from config. The document index is optional
// and only opened when a path is configured.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	fetcher := &fetch.Client{
		UserAgent:     cfg.UserAgent,
		PageTimeout:   cfg.PageTimeout,
		PDFTimeout:    cfg.PDFTimeout,
		RespectRobots: cfg.RespectRobots,
	}
	pdf := &pdftext.Extractor{Client: fetcher}

	a := &App{
		cfg:     cfg,
		crawler: crawler.New(fetcher, pdf),
	}

	if cfg.IndexPath != "" {
		idx, err := docindex.Open(cfg.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("open document index: %w", err)
		}
		a.index = idx
	}

	if !cfg.DryRun {
		a.synth = &answer.Synthesizer{
			Client: llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey),
			Model:  cfg.LLMModel,
		}
	}
	return a, nil
}

// Index exposes the document index for uploads; nil when none is
// configured.
func (a *App) Index() *docindex.Index { return a.index }

// Ask answers one question end to end: classify, retrieve, reply.
func (a *App) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("empty question")
	}

	lang := route.DetectLanguage(question)
	var indexed []string
	if a.index != nil {
		indexed = a.index.Filenames()
	}
	qtype := route.DetectQuestionType(question, indexed)
	log.Info().Str("lang", string(lang)).Str("type", string(qtype)).Msg("question routed")

	ans := Answer{Question: question, Language: lang, Type: qtype}
	budget := NewBudget()

	switch qtype {
	case route.TypeConversation:
		text, err := a.reply(ctx, answer.Input{Question: question, Language: lang, Type: qtype}, "")
		if err != nil {
			return Answer{}, err
		}
		ans.Text = text
		return ans, nil

	case route.TypeDocument:
		if a.index == nil {
			ans.Text = "Aucun document n'est indexé pour le moment."
			return ans, nil
		}
		material := a.documentMaterial(question, budget)
		text, err := a.reply(ctx, answer.Input{
			Question: question,
			Language: lang,
			Type:     qtype,
			Material: material,
		}, material)
		if err != nil {
			return Answer{}, err
		}
		ans.Text = text
		return ans, nil

	default:
		res := a.retrieve(ctx, budget, question)
		ans.SourceURL = res.SourceURL
		ans.PDFLinks = res.PDFLinks
		material := res.Format(report.ToolBudget)
		text, err := a.reply(ctx, answer.Input{
			Question:  question,
			Language:  lang,
			Type:      qtype,
			Material:  material,
			SourceURL: res.SourceURL,
		}, material)
		if err != nil {
			return Answer{}, err
		}
		ans.Text = text
		return ans, nil
	}
}

// retrieve runs the two-step extraction policy: the start page alone
// first, then a keyword-guided deep crawl only when that was too thin.
func (a *App) retrieve(ctx context.Context, budget *Budget, question string) crawler.Result {
	plan := route.CrawlPlan(question)
	keywords := route.Keywords(question)
	log.Debug().Str("plan", plan.Label).Msg("crawl planned")

	if !budget.Allow(opExtract) {
		return crawler.Result{Kind: crawler.KindNotFound, SourceURL: a.cfg.SiteURL}
	}
	res := a.crawler.Discover(ctx, crawler.Request{
		StartURL:          a.cfg.SiteURL,
		MaxPages:          1,
		DeepCrawl:         false,
		ExtractPDFContent: plan.ExtractPDF,
	})
	if res.Kind == crawler.KindFound && len(res.Content) >= sufficientChars {
		return res
	}

	if !budget.Allow(opExtract) {
		return res
	}
	maxPages := plan.MaxPages
	if maxPages < 2 {
		maxPages = 5
	}
	if a.cfg.MaxPages > 0 && maxPages > a.cfg.MaxPages {
		maxPages = a.cfg.MaxPages
	}
	deep := a.crawler.Discover(ctx, crawler.Request{
		StartURL:          a.cfg.SiteURL,
		MaxPages:          maxPages,
		DeepCrawl:         true,
		ExtractPDFContent: true,
		Keywords:          keywords,
	})
	if deep.Kind == crawler.KindFound && deep.Score >= res.Score {
		return deep
	}
	if res.Kind == crawler.KindFound {
		return res
	}
	return deep
}

func (a *App) documentMaterial(question string, budget *Budget) string {
	if !budget.Allow(opDocSearch) {
		return ""
	}
	hits := a.index.Search(question, 5)
	if len(hits) == 0 {
		return a.index.Overview("")
	}
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "Extrait %d (%s, score %.2f) :\n%s\n\n", i+1, h.Filename, h.Score, h.Text)
	}
	return strings.TrimSpace(b.String())
}

// reply calls the model, or echoes the retrieved material when running
// dry. Dry-run keeps the whole retrieval pipeline testable without a
// model endpoint.
func (a *App) reply(ctx context.Context, in answer.Input, material string) (string, error) {
	if a.cfg.DryRun || a.synth == nil {
		if strings.TrimSpace(material) != "" {
			return material, nil
		}
		return fmt.Sprintf("[dry-run] %s", in.Question), nil
	}
	return a.synth.Reply(ctx, in)
}
