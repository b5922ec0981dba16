// Package aitest provides in-memory providers for tests that exercise the AI
// service without reaching Gemini.
package aitest

import (
	"context"
	"iter"
	"sync"

	"google.golang.org/genai"

	"github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
)

// Call records one generation request.
type Call struct {
	APIKey   string
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Provider is a scripted ai.Provider.
type Provider struct {
	Options ai.ClientOptions

	// Reply is returned by GenerateContent.
	Reply string
	Err   error
	// Chunks are yielded by GenerateContentStream, followed by StreamErr if set.
	Chunks    []string
	StreamErr error

	Models  []ai.RemoteModel
	ListErr error
	GetErr  error

	mu    sync.Mutex
	calls []Call
}

var _ ai.Provider = (*Provider)(nil)

// TextResponse builds a single-candidate response carrying text.
func TextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{genai.NewPartFromText(text)},
			},
		}},
	}
}

func (p *Provider) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	p.record(model, contents, cfg)
	if p.Err != nil {
		return nil, p.Err
	}
	return TextResponse(p.Reply), nil
}

func (p *Provider) GenerateContentStream(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	p.record(model, contents, cfg)
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, chunk := range p.Chunks {
			if !yield(TextResponse(chunk), nil) {
				return
			}
		}
		if p.StreamErr != nil {
			yield(nil, p.StreamErr)
		}
	}
}

func (p *Provider) ListModels(context.Context) ([]ai.RemoteModel, error) {
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return p.Models, nil
}

func (p *Provider) GetModel(_ context.Context, model string) error {
	p.record(model, nil, nil)
	return p.GetErr
}

// Calls returns a snapshot of the recorded calls.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// LastCall returns the most recent call, or false when none was made.
func (p *Provider) LastCall() (Call, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return Call{}, false
	}
	return p.calls[len(p.calls)-1], true
}

func (p *Provider) record(model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{
		APIKey:   p.Options.APIKey,
		Model:    model,
		Contents: contents,
		Config:   cfg,
	})
}

// Factory hands out providers and remembers every set of options it was asked for.
type Factory struct {
	build func(ai.ClientOptions) (*Provider, error)

	mu      sync.Mutex
	options []ai.ClientOptions
	built   []*Provider
}

// NewFactory returns a factory that builds providers with build.
func NewFactory(build func(opts ai.ClientOptions) (*Provider, error)) *Factory {
	return &Factory{build: build}
}

// Static returns a factory that hands out p for every call.
func Static(p *Provider) *Factory {
	return NewFactory(func(opts ai.ClientOptions) (*Provider, error) {
		return p, nil
	})
}

// New satisfies ai.ProviderFactory.
func (f *Factory) New(_ context.Context, opts ai.ClientOptions) (ai.Provider, error) {
	p, err := f.build(opts)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.options = append(f.options, opts)
	if err != nil {
		return nil, err
	}
	if p.Options == (ai.ClientOptions{}) {
		p.Options = opts
	}
	f.built = append(f.built, p)
	return p, nil
}

// Options returns the options of every build, in order.
func (f *Factory) Options() []ai.ClientOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ai.ClientOptions, len(f.options))
	copy(out, f.options)
	return out
}

// Built returns every provider handed out, in order.
func (f *Factory) Built() []*Provider {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Provider, len(f.built))
	copy(out, f.built)
	return out
}
