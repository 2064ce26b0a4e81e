package gtts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://translate.google.com/translate_tts"
	maxChunkLen    = 200 // hard query limit of the endpoint
)

// Client is the free fallback synthesizer backed by the Google
// Translate TTS endpoint. Fixed language, non-slow rate.
type Client struct {
	Language string
	BaseURL  string
	httpc    *http.Client
}

func NewClient() *Client {
	return &Client{
		Language: "en",
		BaseURL:  defaultBaseURL,
		httpc:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize fetches one MP3 segment per text chunk and concatenates
// them. MP3 frames are self-delimiting, so plain concatenation plays.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("tts text is empty")
	}

	var buf bytes.Buffer
	for _, chunk := range splitChunks(text, maxChunkLen) {
		segment, err := c.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		buf.Write(segment)
	}
	return buf.Bytes(), nil
}

func (c *Client) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", c.Language)
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtts returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// splitChunks breaks text at word boundaries so no chunk exceeds max.
// A single oversized word is split mid-word as a last resort.
func splitChunks(text string, max int) []string {
	words := strings.Fields(text)
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, w := range words {
		for len(w) > max {
			flush()
			chunks = append(chunks, w[:max])
			w = w[max:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(w) > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	flush()
	return chunks
}
