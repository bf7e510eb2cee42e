package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/gatekeeper/govern/moderation"
)

func testScorer() *Scorer {
	s := NewScorer()
	s.BannedWords["slur"] = true
	s.SuspectWords["sketchy"] = true
	s.SuspectWords["dubious"] = true
	return s
}

func TestScoreClean(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := testScorer()
	res, err := s.Score(ctx, "a perfectly ordinary post", nil)
	require.NoError(t, err)
	assert.False(res.Blocked)
	assert.Equal(moderation.ActionAllow, res.SuggestedAction)
	assert.Equal(0.0, res.Confidence)
}

func TestScoreBanned(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := testScorer()
	res, err := s.Score(ctx, "contains a slur in the middle", nil)
	require.NoError(t, err)
	assert.True(res.Blocked)
	assert.Equal(moderation.ActionBlock, res.SuggestedAction)

	// obfuscation via accents still matches
	res, err = s.Score(ctx, "contains a slúr right here", nil)
	require.NoError(t, err)
	assert.True(res.Blocked)
}

func TestScoreSuspect(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := testScorer()
	res, err := s.Score(ctx, "kind of sketchy content", nil)
	require.NoError(t, err)
	assert.False(res.Blocked)
	assert.Equal(moderation.ActionFlag, res.SuggestedAction)
	assert.Greater(res.Confidence, 0.4)
	assert.LessOrEqual(res.Confidence, 0.9)

	// more hits, more confidence
	res2, err := s.Score(ctx, "sketchy and dubious content", nil)
	require.NoError(t, err)
	assert.Greater(res2.Confidence, res.Confidence)
}

func TestScoreGtube(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := testScorer()
	res, err := s.Score(ctx, "buy now "+gtubeString+" limited offer", nil)
	require.NoError(t, err)
	assert.True(res.Blocked)
	assert.Equal(moderation.SeverityCritical, res.Severity)
	assert.Contains(res.Categories, "spam")
}

func TestScoreCached(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := testScorer()
	res1, err := s.Score(ctx, "identical text", nil)
	require.NoError(t, err)
	res2, err := s.Score(ctx, "identical text", nil)
	require.NoError(t, err)
	// second call returns the cached result instance
	assert.Same(res1, res2)
}

func TestLoadFromFileJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "words.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"banned": ["verboten"], "suspect": ["shady"]}`), 0644))

	s := NewScorer()
	require.NoError(t, s.LoadFromFileJSON(p))

	res, err := s.Score(ctx, "this is verboten", nil)
	require.NoError(t, err)
	assert.True(res.Blocked)

	res, err = s.Score(ctx, "this is shady", nil)
	require.NoError(t, err)
	assert.Equal(moderation.ActionFlag, res.SuggestedAction)
}

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"hello", "world"}, TokenizeText("Hello, World!"))
	assert.Equal([]string{"cafe", "creme"}, TokenizeText("Café  Crème"))
	assert.Empty(TokenizeText("!!! ... ???"))
}
