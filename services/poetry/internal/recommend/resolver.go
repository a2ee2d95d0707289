// Package recommend resolves a free-text prompt into either the poem it names
// or a list of AI-recommended titles.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/poetry-platform/internal/platform/metrics"
	"github.com/example/poetry-platform/services/poetry/internal/store"
)

// DefaultMaxAttempts is the number of generation attempts per Resolve call.
const DefaultMaxAttempts = 3

const preamble = `你是一位专业的中国古诗词鉴赏家。你的任务是根据用户提供的主题或意境，推荐5首主题或意境相似的古诗词的名称。请以清晰的、每行一个诗名的列表格式返回，不要包含作者或其他解释。`

// PoemFinder is the exact-title lookup the resolver consults first.
type PoemFinder interface {
	FindPoemByTitle(ctx context.Context, title string) (store.Poem, bool, error)
}

// Generator produces text for an instruction. Implementations report missing
// credentials by wrapping ErrAIUnavailable; every other error is retried.
type Generator interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Resolver is safe for concurrent use; it holds no per-request state.
type Resolver struct {
	poems       PoemFinder
	gen         Generator
	log         *zap.Logger
	maxAttempts int
	sleep       SleepFunc
}

// Option configures the Resolver.
type Option func(*Resolver)

func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(r *Resolver) { r.sleep = fn }
}

// NewResolver wires the storage and AI collaborators. gen may be nil, in which
// case every title miss fails with ErrAIUnavailable.
func NewResolver(poems PoemFinder, gen Generator, opts ...Option) *Resolver {
	r := &Resolver{
		poems:       poems,
		gen:         gen,
		log:         zap.NewNop(),
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Backoff is the wait after failed attempt n (0-based): 1s, 2s, 4s, ...
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Instruction is the full text sent to the generator for prompt.
func Instruction(prompt string) string {
	return preamble + "\n\n用户主题: " + strings.TrimSpace(prompt)
}

// Resolve returns a Detail when prompt is exactly a stored title, otherwise the
// AI's recommendations. An exact title hit never reaches the generator.
func (r *Resolver) Resolve(ctx context.Context, prompt string) (Result, error) {
	q := strings.TrimSpace(prompt)
	if q == "" {
		return Result{}, ErrInvalidInput
	}

	poem, found, err := r.poems.FindPoemByTitle(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if found {
		r.log.Info("prompt matched poem title", zap.String("title", poem.Title))
		metrics.Recommendations.WithLabelValues(string(KindDetail)).Inc()
		return detailResult(poem), nil
	}

	r.log.Info("no exact title match, asking ai", zap.String("prompt", q))
	text, err := r.generate(ctx, Instruction(q))
	switch {
	case errors.Is(err, ErrAIUnavailable):
		metrics.Recommendations.WithLabelValues("unavailable").Inc()
		return Result{}, err
	case errors.Is(err, ErrAIExhausted):
		metrics.Recommendations.WithLabelValues("exhausted").Inc()
		return Result{}, err
	case err != nil:
		return Result{}, err
	}
	metrics.Recommendations.WithLabelValues(string(KindList)).Inc()
	return listResult(ParseTitles(text)), nil
}

type state int

const (
	stateAttempt state = iota
	stateWait
	stateDone
	stateExhausted
)

// generate runs the retry machine:
//
//	attempt(n) -success-> done
//	attempt(n) -failure-> n+1 < max ? wait(backoff(n)) -> attempt(n+1) : exhausted
func (r *Resolver) generate(ctx context.Context, instruction string) (string, error) {
	if r.gen == nil {
		return "", ErrAIUnavailable
	}

	var (
		st      = stateAttempt
		attempt int
		text    string
		lastErr error
	)
	for {
		switch st {
		case stateAttempt:
			out, err := r.gen.Generate(ctx, instruction)
			if err == nil {
				metrics.AIAttempts.WithLabelValues("success").Inc()
				text, st = out, stateDone
				continue
			}
			if errors.Is(err, ErrAIUnavailable) {
				return "", err
			}
			metrics.AIAttempts.WithLabelValues("failure").Inc()
			lastErr = fmt.Errorf("%w: %w", ErrAITransient, err)
			r.log.Warn("ai generation failed",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.maxAttempts),
				zap.Error(err))
			if attempt+1 >= r.maxAttempts {
				st = stateExhausted
			} else {
				st = stateWait
			}

		case stateWait:
			if err := r.sleep(ctx, Backoff(attempt)); err != nil {
				return "", fmt.Errorf("recommend: backoff interrupted: %w", err)
			}
			attempt++
			st = stateAttempt

		case stateDone:
			return text, nil

		case stateExhausted:
			r.log.Error("ai generation exhausted", zap.Int("attempts", attempt+1), zap.Error(lastErr))
			return "", fmt.Errorf("%w after %d attempts: %w", ErrAIExhausted, attempt+1, lastErr)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
