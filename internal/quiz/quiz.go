// Package quiz generates reading-comprehension questions for corpus articles.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/secrets"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrNoAPIKey is returned when the comprehension key has not been stored.
	ErrNoAPIKey = errors.New("quiz: no comprehension API key stored")
	// ErrInvalidResponse is returned when the model output cannot be used.
	ErrInvalidResponse = errors.New("quiz: invalid model response")
)

// Question is a multiple-choice question. Answer indexes Options.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// KeySource yields the stored API key.
type KeySource interface {
	Get(id secrets.KeyID) (string, bool, error)
}

// Backend sends a prompt to a model and returns its raw JSON answer.
type Backend interface {
	GenerateJSON(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// Generator builds quizzes through a Backend.
type Generator struct {
	keys    KeySource
	backend Backend
	model   string
	logger  *slog.Logger
}

// NewGenerator creates a Generator. A nil backend selects Gemini.
func NewGenerator(keys KeySource, backend Backend, model string, logger *slog.Logger) *Generator {
	if backend == nil {
		backend = GeminiBackend{}
	}
	if model == "" {
		model = DefaultModel
	}
	return &Generator{keys: keys, backend: backend, model: model, logger: logger}
}

const promptTemplate = `You write reading-comprehension questions.
Read the article below and write %d multiple-choice questions about it.
Each question has exactly four options and one correct answer.
Respond with JSON only: {"questions":[{"question":"...","options":["...","...","...","..."],"answer":0}]}
where "answer" is the zero-based index of the correct option.

Title: %s
Domain: %s

%s`

// QuestionCount is the number of questions requested per article.
const QuestionCount = 3

// Generate asks the model for questions about article.
func (g *Generator) Generate(ctx context.Context, article models.CorpusArticle) ([]Question, error) {
	key, ok, err := g.keys.Get(secrets.KeyComprehensionGemini)
	if err != nil {
		return nil, fmt.Errorf("quiz: read api key: %w", err)
	}
	if !ok {
		return nil, ErrNoAPIKey
	}

	prompt := fmt.Sprintf(promptTemplate, QuestionCount, article.Title, article.Domain, article.Text)
	raw, err := g.backend.GenerateJSON(ctx, key, g.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("quiz: generate: %w", err)
	}

	questions, err := decode(raw)
	if err != nil {
		g.logger.Warn("quiz: unusable response", slog.String("model", g.model), slog.String("error", err.Error()))
		return nil, err
	}
	g.logger.Info("quiz: generated", slog.String("title", article.Title), slog.Int("questions", len(questions)))
	return questions, nil
}

func decode(raw string) ([]Question, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(raw, "```")), "```")

	var body struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(body.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidResponse)
	}
	for i, q := range body.Questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d is incomplete", ErrInvalidResponse, i)
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d answer %d out of range", ErrInvalidResponse, i, q.Answer)
		}
	}
	return body.Questions, nil
}
