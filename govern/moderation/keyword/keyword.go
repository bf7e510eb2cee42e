// Package keyword is the in-process moderation scorer: token matching against
// configured word sets, plus the GTUBE spam test string. It is the default
// scorer when no remote scoring service is configured.
package keyword

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/quillfeed/gatekeeper/govern/moderation"
)

// https://en.wikipedia.org/wiki/GTUBE
var gtubeString = "XJS*C4JDBQADN1.NSBN3*2IDNEN*GTUBE-STANDARD-ANTI-UBE-TEST-EMAIL*C.34X"

const (
	cacheSize = 5_000
	cacheTTL  = 30 * time.Minute
)

// Scorer scores content by matching tokens against two word sets: banned
// words block the content outright, suspect words only flag it for review.
// Results are cached by content hash, so resubmissions of identical text
// don't re-tokenize.
type Scorer struct {
	// tokens which block content outright
	BannedWords map[string]bool
	// tokens which flag content for review
	SuspectWords map[string]bool

	cache *expirable.LRU[string, *moderation.Result]
}

func NewScorer() *Scorer {
	return &Scorer{
		BannedWords:  make(map[string]bool),
		SuspectWords: make(map[string]bool),
		cache:        expirable.NewLRU[string, *moderation.Result](cacheSize, nil, cacheTTL),
	}
}

// LoadFromFileJSON reads word sets from a JSON file of the form
// {"banned": [...], "suspect": [...]}. Unknown set names are ignored.
func (s *Scorer) LoadFromFileJSON(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sets map[string][]string
	if err := json.Unmarshal(raw, &sets); err != nil {
		return err
	}

	for _, w := range sets["banned"] {
		s.BannedWords[w] = true
	}
	for _, w := range sets["suspect"] {
		s.SuspectWords[w] = true
	}
	return nil
}

func (s *Scorer) Score(ctx context.Context, text string, meta map[string]string) (*moderation.Result, error) {
	key := contentHash(text)
	if res, ok := s.cache.Get(key); ok {
		cacheHitCount.Inc()
		return res, nil
	}

	res := s.score(text)
	s.cache.Add(key, res)
	return res, nil
}

func (s *Scorer) score(text string) *moderation.Result {
	// GTUBE contains '*' and '.', which tokenization strips; match raw
	if strings.Contains(text, gtubeString) {
		return &moderation.Result{
			Blocked:         true,
			Reasons:         []string{"spam test string"},
			Categories:      []string{"spam"},
			Severity:        moderation.SeverityCritical,
			Confidence:      1.0,
			SuggestedAction: moderation.ActionBlock,
		}
	}

	var banned, suspect []string
	for _, tok := range TokenizeText(text) {
		if s.BannedWords[tok] {
			banned = append(banned, tok)
		} else if s.SuspectWords[tok] {
			suspect = append(suspect, tok)
		}
	}

	if len(banned) > 0 {
		return &moderation.Result{
			Blocked:         true,
			Reasons:         []string{"banned keyword"},
			Categories:      []string{"keyword"},
			Severity:        moderation.SeverityHigh,
			Confidence:      1.0,
			SuggestedAction: moderation.ActionBlock,
		}
	}
	if len(suspect) > 0 {
		// confidence scales with distinct suspect hits, capped well below
		// certainty: suspect words alone never block
		confidence := 0.3 + 0.2*float64(len(suspect))
		if confidence > 0.9 {
			confidence = 0.9
		}
		return &moderation.Result{
			Reasons:         []string{"suspect keyword"},
			Categories:      []string{"keyword"},
			Severity:        moderation.SeverityMedium,
			Confidence:      confidence,
			SuggestedAction: moderation.ActionFlag,
		}
	}
	return &moderation.Result{
		Severity:        moderation.SeverityLow,
		Confidence:      0.0,
		SuggestedAction: moderation.ActionAllow,
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
