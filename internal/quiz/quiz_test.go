package quiz

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/secrets"
)

type fakeKeys struct {
	key string
	err error
}

func (f fakeKeys) Get(secrets.KeyID) (string, bool, error) {
	return f.key, f.key != "", f.err
}

type fakeBackend struct {
	reply  string
	err    error
	prompt string
	key    string
}

func (f *fakeBackend) GenerateJSON(_ context.Context, apiKey, _, prompt string) (string, error) {
	f.key, f.prompt = apiKey, prompt
	return f.reply, f.err
}

var article = models.CorpusArticle{Title: "Bees", Text: "Bees make honey.", Domain: "biology"}

func newGen(keys KeySource, b Backend) *Generator {
	return NewGenerator(keys, b, "", slog.New(slog.DiscardHandler))
}

func TestGenerate(t *testing.T) {
	b := &fakeBackend{reply: "```json\n" + `{"questions":[{"question":"What do bees make?","options":["Milk","Honey"],"answer":1}]}` + "\n```"}
	qs, err := newGen(fakeKeys{key: "k1"}, b).Generate(context.Background(), article)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(qs) != 1 || qs[0].Options[qs[0].Answer] != "Honey" {
		t.Errorf("questions = %+v", qs)
	}
	if b.key != "k1" || !strings.Contains(b.prompt, "Bees make honey.") {
		t.Errorf("backend saw key=%q prompt=%q", b.key, b.prompt)
	}
}

func TestGenerate_NoKey(t *testing.T) {
	b := &fakeBackend{}
	if _, err := newGen(fakeKeys{}, b).Generate(context.Background(), article); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v", err)
	}
	if b.prompt != "" {
		t.Error("backend called without a key")
	}
}

func TestGenerate_KeyStoreFailure(t *testing.T) {
	boom := errors.New("keyring locked")
	if _, err := newGen(fakeKeys{err: boom}, &fakeBackend{}).Generate(context.Background(), article); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestGenerate_InvalidResponses(t *testing.T) {
	for _, reply := range []string{
		"not json",
		`{"questions":[]}`,
		`{"questions":[{"question":"Q","options":["a","b"],"answer":2}]}`,
		`{"questions":[{"question":" ","options":["a","b"],"answer":0}]}`,
	} {
		_, err := newGen(fakeKeys{key: "k"}, &fakeBackend{reply: reply}).Generate(context.Background(), article)
		if !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("%s: err = %v", reply, err)
		}
	}
}
