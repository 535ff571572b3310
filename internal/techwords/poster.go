package techwords

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"communitybot/internal/models"
)

const wordsPerPost = 2

var numberEmoji = []string{"1️⃣", "2️⃣", "3️⃣"}

// Sender posts to a channel
type Sender interface {
	SendChannel(ctx context.Context, channelID, content string) error
}

// Poster builds and sends the daily tech words message
type Poster struct {
	catalogPath string
	channelID   string
	sender      Sender
	videos      VideoResolver
	rng         *rand.Rand
}

// NewPoster creates a poster; videos may be nil to skip tutorial lookups
func NewPoster(catalogPath, channelID string, sender Sender, videos VideoResolver, rng *rand.Rand) *Poster {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Poster{catalogPath: catalogPath, channelID: channelID, sender: sender, videos: videos, rng: rng}
}

// Post sends today's words. The catalog is read on every post so edits are
// picked up without a restart.
func (p *Poster) Post(ctx context.Context) error {
	catalog, err := LoadCatalog(p.catalogPath)
	if err != nil {
		return err
	}

	words := catalog.Pick(p.rng, wordsPerPost)
	if len(words) < wordsPerPost {
		return errors.New("not enough categories for a daily post")
	}

	videos := make([]*Video, len(words))
	for i, w := range words {
		videos[i] = p.resolve(ctx, w)
	}

	if err := p.sender.SendChannel(ctx, p.channelID, FormatMessage(words, videos)); err != nil {
		return fmt.Errorf("failed to send tech words: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("first", words[0].Word).Str("second", words[1].Word).Msg("Posted daily tech words")
	return nil
}

func (p *Poster) resolve(ctx context.Context, w models.TechWord) *Video {
	if p.videos == nil || w.Video == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	v, err := p.videos.Resolve(ctx, w.Video)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("word", w.Word).Msg("Could not resolve tutorial video")
		return nil
	}
	return &v
}

// FormatMessage renders the announcement; videos[i] may be nil
func FormatMessage(words []models.TechWord, videos []*Video) string {
	var b strings.Builder
	b.WriteString("📘 **Daily Tech Words**\n\n")

	for i, w := range words {
		emoji := fmt.Sprintf("%d.", i+1)
		if i < len(numberEmoji) {
			emoji = numberEmoji[i]
		}
		fmt.Fprintf(&b, "%s **%s** – %s\n", emoji, w.Word, w.Definition)
		fmt.Fprintf(&b, "💡 Example: %s\n", w.Example)
		if i < len(videos) && videos[i] != nil {
			v := videos[i]
			fmt.Fprintf(&b, "🎬 Watch: %s (%s) %s\n", v.Title, v.Duration.Round(time.Second), w.Video)
		}
		b.WriteString("\n")
	}

	b.WriteString("_Keep learning, keep growing! 🚀_")
	return b.String()
}
