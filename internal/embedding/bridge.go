package embedding

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/context-memory/internal/logging"
)

// DefaultTimeout bounds a single Bridge call.
const DefaultTimeout = 30 * time.Second

// Bridge turns texts into vectors without ever failing the caller: a missing
// key, an unreachable provider or a malformed response all yield one empty
// vector per input. Callers treat empty vectors as "skip".
type Bridge struct {
	timeout  time.Duration
	log      logrus.FieldLogger
	override map[string]Embedder
	build    func(Options) (Embedder, error)
}

// NewBridge creates a Bridge. A nil logger discards output.
func NewBridge(log logrus.FieldLogger, timeout time.Duration) *Bridge {
	if log == nil {
		log = logging.Discard()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{
		timeout:  timeout,
		log:      log.WithField("component", "embedding"),
		override: map[string]Embedder{},
		build:    New,
	}
}

// Register makes provider resolve to e instead of the built-in factory.
func (b *Bridge) Register(provider string, e Embedder) {
	b.override[provider] = e
}

// Embed returns exactly len(texts) vectors.
func (b *Bridge) Embed(ctx context.Context, texts []string, opts Options) []Vector {
	empty := make([]Vector, len(texts))
	if len(texts) == 0 {
		return empty
	}

	emb, ok := b.override[opts.Provider]
	if !ok {
		var err error
		emb, err = b.build(opts)
		if err != nil {
			b.log.WithError(err).WithField("provider", opts.Provider).Warn("embedding provider unavailable")
			return empty
		}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	vecs, err := emb.Embed(ctx, texts)
	if err != nil {
		b.log.WithError(err).WithField("provider", opts.Provider).Warn("embedding request failed")
		return empty
	}
	if len(vecs) != len(texts) {
		b.log.WithFields(logrus.Fields{
			"provider": opts.Provider,
			"want":     len(texts),
			"got":      len(vecs),
		}).Warn("embedding provider returned wrong count")
		return empty
	}
	b.log.WithFields(logrus.Fields{"provider": opts.Provider, "count": len(texts)}).Debug("embedded texts")
	return vecs
}

// EmbedOne embeds a single text, returning an empty vector on failure.
func (b *Bridge) EmbedOne(ctx context.Context, text string, opts Options) Vector {
	return b.Embed(ctx, []string{text}, opts)[0]
}
