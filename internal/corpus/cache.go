// Package corpus serves reading-comprehension articles from line-delimited
// JSON files, loading each family/tier at most once per process.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/lectern/internal/models"
)

var (
	Families = []string{"wiki", "prose"}
	Tiers    = []string{"easy", "medium", "hard"}
)

// Key returns the cache key for a family and tier.
func Key(family, tier string) string {
	return family + ":" + tier
}

// CandidateDirs returns the directories searched for corpus files, in order:
// the data directory, the bundled resource directory, extra configured
// directories and finally the development fallbacks under the working
// directory.
func CandidateDirs(dataDir, resourceDir string, extra []string) []string {
	var dirs []string
	if dataDir != "" {
		dirs = append(dirs, filepath.Join(dataDir, "corpus"))
	}
	if resourceDir != "" {
		dirs = append(dirs, filepath.Join(resourceDir, "corpus"))
	}
	for _, d := range extra {
		if strings.TrimSpace(d) != "" {
			dirs = append(dirs, d)
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs,
			filepath.Join(cwd, "scripts", "prepare-corpus"),
			filepath.Join(cwd, "..", "scripts", "prepare-corpus"),
		)
	}
	return dirs
}

// Cache memoizes parsed corpora by family and tier. A loaded key is never
// reloaded. The mutex is held only for map access, so two first requests for
// the same key may both read the file; the later insert wins.
type Cache struct {
	mu       sync.Mutex
	articles map[string][]models.CorpusArticle

	dirs   []string
	logger *slog.Logger
	now    func() time.Time
}

// NewCache creates a cache searching dirs in order.
func NewCache(dirs []string, logger *slog.Logger) *Cache {
	return &Cache{
		articles: make(map[string][]models.CorpusArticle),
		dirs:     dirs,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureLoaded loads the corpus for family and tier if needed. It reports
// false only when no corpus file could be found or read.
func (c *Cache) EnsureLoaded(family, tier string) bool {
	key := Key(family, tier)
	if _, ok := c.lookup(key); ok {
		return true
	}

	path, ok := c.find(family, tier)
	if !ok {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("corpus: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return false
	}
	articles := parse(data)
	c.logger.Debug("corpus: loaded",
		slog.String("key", key), slog.String("path", path), slog.Int("articles", len(articles)))

	c.mu.Lock()
	c.articles[key] = articles
	c.mu.Unlock()
	return true
}

// Sample returns one article of family and tier, or false when the pair is
// unknown, has no corpus file, or the file held no valid articles.
func (c *Cache) Sample(family, tier string) (models.CorpusArticle, bool) {
	if !slices.Contains(Families, family) || !slices.Contains(Tiers, tier) {
		return models.CorpusArticle{}, false
	}
	if !c.EnsureLoaded(family, tier) {
		return models.CorpusArticle{}, false
	}
	articles, ok := c.lookup(Key(family, tier))
	if !ok || len(articles) == 0 {
		return models.CorpusArticle{}, false
	}
	idx := uint64(c.now().UnixNano()) % uint64(len(articles))
	return articles[idx], true
}

// Info reports availability and article counts for every family and tier,
// loading each one on first use.
func (c *Cache) Info() map[string]map[string]models.CorpusTierInfo {
	out := make(map[string]map[string]models.CorpusTierInfo, len(Families))
	for _, family := range Families {
		tiers := make(map[string]models.CorpusTierInfo, len(Tiers))
		for _, tier := range Tiers {
			available := c.EnsureLoaded(family, tier)
			articles, _ := c.lookup(Key(family, tier))
			tiers[tier] = models.CorpusTierInfo{Available: available, TotalArticles: len(articles)}
		}
		out[family] = tiers
	}
	return out
}

func (c *Cache) lookup(key string) ([]models.CorpusArticle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	articles, ok := c.articles[key]
	return articles, ok
}

func (c *Cache) find(family, tier string) (string, bool) {
	for _, dir := range c.dirs {
		explicit := filepath.Join(dir, fmt.Sprintf("corpus-%s-%s.jsonl", family, tier))
		if exists(explicit) {
			return explicit, true
		}
		if family == "wiki" {
			legacy := filepath.Join(dir, fmt.Sprintf("corpus-%s.jsonl", tier))
			if exists(legacy) {
				return legacy, true
			}
		}
	}
	return "", false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// line mirrors CorpusArticle with pointers so absent fields can be told apart
// from zero values.
type line struct {
	Title     *string  `json:"title"`
	Text      *string  `json:"text"`
	Domain    *string  `json:"domain"`
	FKGrade   *float64 `json:"fk_grade"`
	Words     *uint64  `json:"words"`
	Sentences *uint64  `json:"sentences"`
}

func parse(data []byte) []models.CorpusArticle {
	articles := []models.CorpusArticle{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			continue
		}
		if l.Title == nil || l.Text == nil || l.Domain == nil || l.FKGrade == nil || l.Words == nil || l.Sentences == nil {
			continue
		}
		articles = append(articles, models.CorpusArticle{
			Title:     *l.Title,
			Text:      *l.Text,
			Domain:    *l.Domain,
			FKGrade:   *l.FKGrade,
			Words:     *l.Words,
			Sentences: *l.Sentences,
		})
	}
	return articles
}
