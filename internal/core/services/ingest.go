package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sitechat-io/sitechat-cli/internal/chunker"
	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
	"github.com/sitechat-io/sitechat-cli/internal/normalise"
)

// Ensure IngestOrchestrator implements the driving port.
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// minPageTextLength is the noise floor for crawled pages. Providers
// return cookie banners, redirect stubs and soft-404s as near-empty
// pages; anything at or below this many characters is skipped.
const minPageTextLength = 20

// DefaultSourceTimeout bounds the crawl of a single source.
const DefaultSourceTimeout = 60 * time.Second

// defaultLanguage is assumed for content with no declared language.
const defaultLanguage = "en"

// IngestOrchestrator drives the crawl, normalise, chunk, embed and
// store pipeline across the configured sources. It also handles
// operator-supplied files, which enter the same pipeline downstream of
// extraction.
type IngestOrchestrator struct {
	sources   driven.SourceStore
	knowledge driven.KnowledgeStore
	fetcher   driven.PageFetcher
	embedder  driven.EmbeddingService
	gate      *FreshnessGate
	lock      driven.RunLock

	extractors    driven.ExtractorRegistry
	splitter      *chunker.Splitter
	sourceTimeout time.Duration
	language      string
}

// IngestOption configures the orchestrator.
type IngestOption func(*IngestOrchestrator)

// WithExtractors registers the file extractor registry, enabling
// IngestFile. Without it, only crawling works.
func WithExtractors(reg driven.ExtractorRegistry) IngestOption {
	return func(o *IngestOrchestrator) {
		o.extractors = reg
	}
}

// WithSplitter overrides the default chunk splitter.
func WithSplitter(s *chunker.Splitter) IngestOption {
	return func(o *IngestOrchestrator) {
		if s != nil {
			o.splitter = s
		}
	}
}

// WithSourceTimeout overrides the per-source crawl deadline.
func WithSourceTimeout(d time.Duration) IngestOption {
	return func(o *IngestOrchestrator) {
		if d > 0 {
			o.sourceTimeout = d
		}
	}
}

// WithLanguage sets the language code stamped on ingested content.
func WithLanguage(lang string) IngestOption {
	return func(o *IngestOrchestrator) {
		if lang != "" {
			o.language = lang
		}
	}
}

// NewIngestOrchestrator creates the ingestion service.
func NewIngestOrchestrator(
	sources driven.SourceStore,
	knowledge driven.KnowledgeStore,
	fetcher driven.PageFetcher,
	embedder driven.EmbeddingService,
	gate *FreshnessGate,
	lock driven.RunLock,
	opts ...IngestOption,
) *IngestOrchestrator {
	o := &IngestOrchestrator{
		sources:       sources,
		knowledge:     knowledge,
		fetcher:       fetcher,
		embedder:      embedder,
		gate:          gate,
		lock:          lock,
		splitter:      chunker.New(),
		sourceTimeout: DefaultSourceTimeout,
		language:      defaultLanguage,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Ingest crawls every active source and rebuilds the crawled part of
// the knowledge base. Expected failures land in the report; the error
// return carries lock contention, storage I/O and programmer errors.
func (o *IngestOrchestrator) Ingest(ctx context.Context, force bool) (*domain.IngestReport, error) {
	started := time.Now()

	// 1. Get the active sources in crawl order
	sources, err := o.sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	if len(sources) == 0 {
		logger.Info("No active sources configured, nothing to ingest")
		return &domain.IngestReport{
			Outcome:   domain.OutcomeNoSources,
			StartedAt: started,
			Duration:  time.Since(started),
		}, nil
	}

	// 2. Short-circuit inside the freshness window, unless forced
	signature := domain.SourcesSignature(sources)
	if !force && o.gate.IsValid(ctx, signature) {
		logger.Info("Knowledge base is fresh, skipping ingestion")
		return o.cacheHitReport(ctx, started), nil
	}

	// 3. Take the single-writer lock for the whole run
	if o.lock != nil {
		if err := o.lock.TryLock(); err != nil {
			return nil, fmt.Errorf("acquire ingest lock: %w", err)
		}
		defer func() {
			if err := o.lock.Unlock(); err != nil {
				logger.Warn("Failed to release ingest lock: %v", err)
			}
		}()
	}

	// 4. Drop stale crawled chunks; curated content stays
	removed, err := o.knowledge.DeleteByTag(ctx, domain.TagCrawled)
	if err != nil {
		return nil, fmt.Errorf("delete crawled chunks: %w", err)
	}
	logger.Debug("Removed %d stale crawled chunks", removed)

	// 5. Crawl sources sequentially; one bad source never stops the rest
	report := &domain.IngestReport{
		Outcome:   domain.OutcomeIngested,
		StartedAt: started,
		Sources:   make([]domain.SourceReport, 0, len(sources)),
	}
	for i := range sources {
		sourceReport, err := o.ingestSource(ctx, &sources[i])
		if err != nil {
			return nil, err
		}
		report.TotalChunksAdded += sourceReport.ChunksAdded
		report.Sources = append(report.Sources, sourceReport)
	}

	// 6. Record the run so the freshness window restarts from now
	if err := o.gate.RecordRun(ctx, signature, report.TotalChunksAdded); err != nil {
		return nil, err
	}

	report.Duration = time.Since(started)
	logger.Info("Ingestion complete: %d chunks from %d sources (%d failed)",
		report.TotalChunksAdded, len(report.Sources), report.FailedSources())
	return report, nil
}

// cacheHitReport builds the short-circuit report, echoing the chunk
// count of the run that is still fresh.
func (o *IngestOrchestrator) cacheHitReport(ctx context.Context, started time.Time) *domain.IngestReport {
	report := &domain.IngestReport{
		Outcome:   domain.OutcomeCacheHit,
		StartedAt: started,
	}
	if last, err := o.gate.Last(ctx); err == nil {
		report.TotalChunksAdded = last.ChunksAdded
	}
	report.Duration = time.Since(started)
	return report
}

// ingestSource crawls one source and stores its chunks. Crawl and
// embedding failures are captured in the returned report entry; the
// error return is reserved for storage failures, which abort the
// whole run.
func (o *IngestOrchestrator) ingestSource(ctx context.Context, source *domain.Source) (domain.SourceReport, error) {
	report := domain.SourceReport{
		SourceID:   source.ID,
		SourceName: source.DisplayName(),
		URL:        source.URL,
	}

	logger.Section(fmt.Sprintf("Ingesting %s", source.DisplayName()))

	fetchCtx := ctx
	if o.sourceTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.sourceTimeout)
		defer cancel()
	}

	pages, err := o.fetcher.FetchPages(fetchCtx, source.URL)
	if err != nil {
		report.Error = fmt.Sprintf("fetch pages: %v", err)
		logger.Warn("Source %s failed: %v", source.DisplayName(), err)
		return report, nil
	}

	for i := range pages {
		page := &pages[i]
		if utf8.RuneCountInString(page.Text) <= minPageTextLength {
			logger.Debug("Skipping %s: content below threshold", page.URL)
			continue
		}

		doc := documentFromPage(source, page, o.language)
		chunks, err := o.buildChunks(ctx, doc)
		if err != nil {
			// A rejected embedding batch fails this source, not the run.
			report.Error = err.Error()
			logger.Warn("Source %s failed: %v", source.DisplayName(), err)
			return report, nil
		}

		if len(chunks) > 0 {
			if err := o.knowledge.AppendChunks(ctx, chunks); err != nil {
				return report, fmt.Errorf("append chunks: %w", err)
			}
		}

		report.PagesFetched++
		report.ChunksAdded += len(chunks)
		logger.Debug("Indexed %s: %d chunks", page.URL, len(chunks))
	}

	if report.PagesFetched == 0 {
		report.Error = "no usable content"
		return report, nil
	}

	report.Success = true
	return report, nil
}

// IngestFile extracts one operator-supplied file and stores it as
// curated content. Curated chunks are not tagged "crawled", so crawl
// re-ingestion leaves them in place.
func (o *IngestOrchestrator) IngestFile(ctx context.Context, path string, opts domain.CuratedOptions) (*domain.IngestReport, error) {
	started := time.Now()

	if o.extractors == nil {
		return nil, fmt.Errorf("file ingestion: %w: no extractors configured", domain.ErrUnsupportedFormat)
	}

	// 1. EXTRACT raw text from the file
	name := filepath.Base(path)
	extractor, err := o.extractors.ForFile(name)
	if err != nil {
		return nil, fmt.Errorf("select extractor: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	title, text, err := extractor.Extract(ctx, name, f)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	doc := documentFromFile(name, title, text, opts, o.language)

	// 2. Writes share the single-writer lock with crawl runs
	if o.lock != nil {
		if err := o.lock.TryLock(); err != nil {
			return nil, fmt.Errorf("acquire ingest lock: %w", err)
		}
		defer func() {
			if err := o.lock.Unlock(); err != nil {
				logger.Warn("Failed to release ingest lock: %v", err)
			}
		}()
	}

	// 3. Same pipeline as crawled pages from here on
	chunks, err := o.buildChunks(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(chunks) > 0 {
		if err := o.knowledge.AppendChunks(ctx, chunks); err != nil {
			return nil, fmt.Errorf("append chunks: %w", err)
		}
	}

	logger.Info("Ingested %s: %d chunks", name, len(chunks))
	return &domain.IngestReport{
		Outcome:          domain.OutcomeIngested,
		StartedAt:        started,
		Duration:         time.Since(started),
		TotalChunksAdded: len(chunks),
		Sources: []domain.SourceReport{{
			SourceName:   doc.Title,
			URL:          path,
			Success:      true,
			PagesFetched: 1,
			ChunksAdded:  len(chunks),
		}},
	}, nil
}

// buildChunks runs one document through the text pipeline and returns
// its embedded chunks, ready for the store.
func (o *IngestOrchestrator) buildChunks(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	// 1. NORMALISE the raw text
	text := normalise.Clean(doc.Content)
	if text == "" {
		return nil, nil
	}

	// 2. CHUNK into overlapping passages
	passages := o.splitter.Split(text)
	if len(passages) == 0 {
		return nil, nil
	}

	// 3. EMBED the whole document as one batch
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", doc.Title, err)
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("embed %q: got %d vectors for %d passages", doc.Title, len(vectors), len(passages))
	}

	// 4. ASSEMBLE chunks, zipping passages with vectors by position
	chunks := make([]domain.Chunk, len(passages))
	for i, p := range passages {
		chunks[i] = domain.Chunk{
			ID:            fmt.Sprintf("%s:%d", doc.ID, p.Index),
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			Slug:          doc.Slug,
			ChunkIndex:    p.Index,
			Content:       p.Content,
			Embedding:     vectors[i],
			Priority:      doc.Priority,
			Origin:        doc.Origin,
			Language:      doc.Language,
			Tags:          doc.Tags,
		}
	}
	return chunks, nil
}

// documentFromPage synthesises a crawled document from a provider page.
func documentFromPage(source *domain.Source, page *domain.CrawledPage, language string) *domain.Document {
	title := page.Title
	if title == "" {
		title = page.URL
	}

	return &domain.Document{
		ID:        uuid.New().String(),
		Title:     fmt.Sprintf("%s: %s", source.DisplayName(), title),
		Slug:      domain.Slugify(page.URL),
		Content:   page.Text,
		Tags:      []string{domain.TagCrawled, domain.TagWeb},
		Language:  language,
		Priority:  domain.PriorityStandard,
		Origin:    domain.OriginCrawled,
		UpdatedAt: time.Now(),
	}
}

// documentFromFile synthesises a curated document from an extracted file.
func documentFromFile(name, title, text string, opts domain.CuratedOptions, language string) *domain.Document {
	if opts.Title != "" {
		title = opts.Title
	}
	if title == "" {
		title = name
	}

	priority := opts.Priority
	if !priority.IsValid() {
		priority = domain.PriorityStandard
	}
	if opts.Language != "" {
		language = opts.Language
	}

	tags := []string{domain.TagCurated}
	for _, t := range opts.Tags {
		if t != "" && t != domain.TagCurated {
			tags = append(tags, t)
		}
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	return &domain.Document{
		ID:        uuid.New().String(),
		Title:     title,
		Slug:      domain.Slugify(base),
		Content:   text,
		Tags:      tags,
		Language:  language,
		Priority:  priority,
		Origin:    domain.OriginCurated,
		UpdatedAt: time.Now(),
	}
}
