package tokenizer

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter measures prompt size with a tiktoken encoding, estimating when none is available.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New resolves the encoding for model, falling back to cl100k_base. Encoding files are fetched
// lazily by tiktoken-go, so offline hosts end up with the byte estimate.
func New(model string, logger *slog.Logger) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		if logger != nil {
			logger.Warn("tokenizer unavailable, estimating token counts", "model", model, "error", err)
		}
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.enc == nil {
		return estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func estimate(text string) int {
	return (len(text) + 3) / 4
}
