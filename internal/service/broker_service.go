package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"llmbroker/internal/cache"
	"llmbroker/internal/config"
	"llmbroker/internal/document"
	"llmbroker/internal/domain"
	"llmbroker/internal/jsonsnip"
	"llmbroker/internal/llm"
	"llmbroker/internal/port"
	"llmbroker/internal/projector"
	"llmbroker/internal/prompt"
)

// AttachmentInput is a caller attachment with base64 content.
type AttachmentInput struct {
	Filename string
	Content  string
}

// GetResponseInput is the DTO for one broker request.
type GetResponseInput struct {
	Inputs       map[string]string
	Attachment   *AttachmentInput
	RefreshCache bool
}

// GetResponseOutput carries the projected rows of one broker request.
type GetResponseOutput struct {
	Rows            []domain.ResponseRow
	CacheHit        bool
	EstimatedTokens int
	Model           string
}

// Schema describes the configured input and output contract of the broker.
type Schema struct {
	InputFields  []string
	OutputFields []string
	ListMode     bool
	Model        string
	CacheEnabled bool
}

// BrokerService defines the broker contract.
type BrokerService interface {
	GetResponse(ctx context.Context, input *GetResponseInput) (*GetResponseOutput, error)
	InvalidateCache(ctx context.Context) error
	Schema() *Schema
	Ready(ctx context.Context) error
}

type brokerService struct {
	cfg        *config.BrokerConfig
	cacheOn    bool
	ttl        time.Duration
	transport  port.ChatTransport
	responses  *cache.Service
	normalizer *document.Normalizer
	projector  *projector.Projector
	prompts    *prompt.Builder
	logger     *slog.Logger
}

// NewBrokerService creates a new BrokerService implementation. The output
// schema and system prompt are compiled once here.
func NewBrokerService(
	cfg *config.BrokerConfig,
	cacheCfg *config.CacheConfig,
	transport port.ChatTransport,
	responses *cache.Service,
	normalizer *document.Normalizer,
	logger *slog.Logger,
) BrokerService {
	if logger == nil {
		logger = slog.Default()
	}
	proj := projector.New(cfg.OutputFields, cfg.ListMode)
	return &brokerService{
		cfg:        cfg,
		cacheOn:    cacheCfg.Enabled,
		ttl:        cacheCfg.TTL,
		transport:  transport,
		responses:  responses,
		normalizer: normalizer,
		projector:  proj,
		prompts:    prompt.NewBuilder(cfg.SystemPrompt, cfg.TopicConstraint, cfg.InputFields, proj.Skeleton(), cfg.ListMode),
		logger:     logger,
	}
}

func (s *brokerService) GetResponse(ctx context.Context, input *GetResponseInput) (*GetResponseOutput, error) {
	var att *prompt.Attachment
	if input.Attachment != nil {
		raw, err := s.normalizer.DecodeAttachment(input.Attachment.Filename, input.Attachment.Content)
		if err != nil {
			return nil, err
		}
		doc, err := s.normalizer.Normalize(raw.Filename, raw.Content)
		if err != nil {
			return nil, err
		}
		att = &prompt.Attachment{Filename: raw.Filename, Document: doc}
	}

	system := s.prompts.System()
	userText := s.prompts.User(input.Inputs, att)
	var images []domain.ImagePart
	if att != nil {
		images = att.Document.Images
	}

	out := &GetResponseOutput{
		EstimatedTokens: document.EstimateTokens(system+"\n"+userText, len(images)),
		Model:           s.cfg.Model,
	}

	useCache := s.cacheOn && s.responses != nil
	var key cache.Key
	if useCache {
		k, err := cache.DeriveKey(cache.KeyMaterial{
			Model:  s.cfg.Model,
			System: system,
			Prompt: userText,
			Images: images,
		})
		if err != nil {
			s.logger.Warn("brokerService.GetResponse: deriving cache key failed, bypassing cache", "error", err)
			useCache = false
		}
		key = k
	}

	if useCache && !input.RefreshCache {
		if cached, ok := s.responses.Get(ctx, key); ok {
			s.logger.Debug("brokerService.GetResponse: cache hit", "key", key)
			out.CacheHit = true
			out.Rows = s.projector.Project(cached).Rows
			return out, nil
		}
	}

	body, err := s.transport.Complete(ctx, port.ChatRequest{
		Model:    s.cfg.Model,
		System:   system,
		UserText: userText,
		Images:   images,
	})
	if err != nil {
		s.logger.Error("brokerService.GetResponse: transport call failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	content, ok := llm.AnswerContent(body)
	if !ok {
		s.logger.Warn("brokerService.GetResponse: response carries no answer content, returning raw body")
		out.Rows = s.projector.Unprojected(string(body)).Rows
		return out, nil
	}

	isolated, ok := s.isolate(content)
	if !ok {
		s.logger.Warn("brokerService.GetResponse: no JSON found in answer, returning content verbatim")
		out.Rows = s.projector.Unprojected(content).Rows
		return out, nil
	}

	if useCache {
		s.responses.Put(ctx, key, isolated, s.ttl)
	}
	out.Rows = s.projector.Project(isolated).Rows
	return out, nil
}

// isolate finds the answer's JSON value: the first object in single mode, the
// first object or array in list mode. When nothing parses and repair is
// enabled, the noise-stripped content is repaired and scanned again.
func (s *brokerService) isolate(content string) (string, bool) {
	extract := jsonsnip.ExtractFirstObject
	if s.cfg.ListMode {
		extract = jsonsnip.ExtractFirstValue
	}
	if v, ok := extract(content, true, true); ok {
		return v, true
	}
	if !s.cfg.RepairJSON {
		return "", false
	}

	repaired, err := jsonrepair.JSONRepair(jsonsnip.StripNoise(content))
	if err != nil {
		s.logger.Debug("brokerService.isolate: repair failed", "error", err)
		return "", false
	}
	return extract(repaired, false, true)
}

func (s *brokerService) InvalidateCache(ctx context.Context) error {
	if s.responses == nil {
		return nil
	}
	if err := s.responses.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidating response cache: %w", err)
	}
	return nil
}

func (s *brokerService) Schema() *Schema {
	return &Schema{
		InputFields:  s.prompts.InputFields(),
		OutputFields: s.projector.Paths(),
		ListMode:     s.projector.ListMode(),
		Model:        s.cfg.Model,
		CacheEnabled: s.cacheOn,
	}
}

// Ready reports whether the cache store is reachable. A disabled cache is always ready.
func (s *brokerService) Ready(ctx context.Context) error {
	if !s.cacheOn || s.responses == nil {
		return nil
	}
	if err := s.responses.Ping(ctx); err != nil {
		return fmt.Errorf("cache store unreachable: %w", err)
	}
	return nil
}
