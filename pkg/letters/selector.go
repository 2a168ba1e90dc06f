package letters

import (
	"context"
	"image"
	"io"
	"math/rand/v2"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streettype/pkg/alphabet"
)

// Resolver is the subset of *alphabet.Resolver the selector needs.
type Resolver interface {
	ListVariants(ctx context.Context, ch rune, style, location string) ([]alphabet.AssetPath, error)
	LoadImage(ctx context.Context, path alphabet.AssetPath) (image.Image, error)
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger for per-character failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed makes variant choice reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	}
}

// WithRand sets the random source used for variant choice.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) {
		if r != nil {
			s.rng = r
		}
	}
}

// Selector picks a letterform for every character of a text.
type Selector struct {
	resolver Resolver
	logger   *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector. Without WithSeed, variant choice is seeded
// from the clock.
func NewSelector(r Resolver, opts ...Option) *Selector {
	seed := uint64(time.Now().UnixNano())
	s := &Selector{
		resolver: r,
		logger:   log.New(io.Discard),
		rng:      rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectLettersForText returns one entry per character of text, in order.
//
// Characters are resolved strictly one after another. A character whose
// variants cannot be listed or whose chosen image fails to load becomes a
// Placeholder and is logged; it never aborts the rest of the text. The only
// error returned is the context's.
func (s *Selector) SelectLettersForText(ctx context.Context, text, style, location string) ([]Entry, error) {
	entries := make([]Entry, 0, len(text))

	for _, ch := range text {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch {
		case unicode.IsSpace(ch):
			entries = append(entries, Space{Value: ch})
		case !alphabet.IsAlphanumeric(ch):
			entries = append(entries, Special{Value: ch})
		default:
			entry, err := s.selectLetter(ctx, ch, style, location)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (s *Selector) selectLetter(ctx context.Context, ch rune, style, location string) (Entry, error) {
	variants, err := s.resolver.ListVariants(ctx, ch, style, location)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		s.logger.Warn("Error fetching variants", "char", string(ch), "err", err)
	}
	if len(variants) == 0 {
		return Placeholder{Value: ch}, nil
	}

	path := variants[s.pick(len(variants))]

	img, err := s.resolver.LoadImage(ctx, path)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		s.logger.Warn("Error loading image", "char", string(ch), "path", path, "err", err)
		return Placeholder{Value: ch}, nil
	}

	return Letter{Value: ch, Path: path, Image: img}, nil
}

// pick returns a uniformly random index in [0, n).
func (s *Selector) pick(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
