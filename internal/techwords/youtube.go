package techwords

import (
	"context"
	"time"

	"github.com/kkdai/youtube/v2"
)

// Video is what the post shows about a linked tutorial
type Video struct {
	Title    string
	Author   string
	Duration time.Duration
}

// VideoResolver looks up a tutorial video
type VideoResolver interface {
	Resolve(ctx context.Context, url string) (Video, error)
}

// YouTubeResolver resolves videos through the YouTube player API
type YouTubeResolver struct {
	client youtube.Client
}

func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{}
}

func (y *YouTubeResolver) Resolve(ctx context.Context, url string) (Video, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return Video{}, err
	}
	return Video{Title: video.Title, Author: video.Author, Duration: video.Duration}, nil
}
