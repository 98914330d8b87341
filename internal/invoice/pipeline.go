package invoice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/luandatrans/backoffice/internal/domain"
)

// BlobStore fetches invoice file bytes from object storage.
type BlobStore interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Extractor sends an invoice image or PDF to the vision model and returns
// the raw text response.
type Extractor interface {
	ExtractInvoice(ctx context.Context, blob []byte, mimeType string) (string, error)
}

// RunRecorder persists the lifecycle of one extraction run so every invoice
// ingestion leaves an auditable trail.
type RunRecorder interface {
	StartRun(ctx context.Context, sourceURI string) (string, error)
	MarkRunFailed(ctx context.Context, runID string, runErr error)
	MarkRunSucceeded(ctx context.Context, runID string) error
}

// CustomPartsSource supplies the dynamic custom-parts name list. A missing
// backing table yields an empty list, not an error.
type CustomPartsSource interface {
	CustomPartNames(ctx context.Context) ([]string, error)
}

// ItemSink persists the mapped inventory records.
type ItemSink interface {
	InsertInventoryItems(ctx context.Context, runID string, items []domain.InventoryMappedItem) error
}

// PipelineState holds the shared state across all ingestion steps.
type PipelineState struct {
	SourceURI  string
	MIMEType   string
	RunID      string
	Blob       []byte
	RawOutput  string
	Extraction *domain.InvoiceExtraction
	Items      []domain.InventoryMappedItem
}

// PipelineStep is a single step in the invoice ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("invoice pipeline step %d: %w", i+1, err)
		}
	}
	return nil
}

// StartRunStep records a new extraction run.
type StartRunStep struct {
	Runs RunRecorder
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	runID, err := s.Runs.StartRun(ctx, state.SourceURI)
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// FetchBlobStep fetches the invoice bytes from object storage.
type FetchBlobStep struct {
	Blobs BlobStore
	Runs  RunRecorder
}

func (s *FetchBlobStep) Execute(ctx context.Context, state *PipelineState) error {
	blob, err := s.Blobs.Fetch(ctx, state.SourceURI)
	if err != nil {
		s.Runs.MarkRunFailed(ctx, state.RunID, err)
		return err
	}
	state.Blob = blob
	return nil
}

// ExtractStep runs the vision model over the invoice.
type ExtractStep struct {
	Extractor Extractor
	Runs      RunRecorder
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	raw, err := s.Extractor.ExtractInvoice(ctx, state.Blob, state.MIMEType)
	if err != nil {
		s.Runs.MarkRunFailed(ctx, state.RunID, err)
		return err
	}
	state.RawOutput = raw
	return nil
}

// AdaptStep parses and coerces the untrusted model response.
type AdaptStep struct {
	Runs RunRecorder
}

func (s *AdaptStep) Execute(ctx context.Context, state *PipelineState) error {
	extraction, err := ParseExtraction(state.RawOutput)
	if err != nil {
		s.Runs.MarkRunFailed(ctx, state.RunID, err)
		return err
	}
	state.Extraction = extraction
	return nil
}

// MatchStep resolves item names against the catalog (static plus dynamic
// custom parts) and builds the inventory records.
type MatchStep struct {
	Parts CustomPartsSource
	Runs  RunRecorder
}

func (s *MatchStep) Execute(ctx context.Context, state *PipelineState) error {
	customParts, err := s.Parts.CustomPartNames(ctx)
	if err != nil {
		s.Runs.MarkRunFailed(ctx, state.RunID, err)
		return err
	}
	mapper := NewLineItemMapper(NewCatalogMatcher(CandidateNames(customParts)))
	state.Items = mapper.MapAll(state.Extraction)
	return nil
}

// InsertItemsStep persists the mapped inventory records.
type InsertItemsStep struct {
	Sink ItemSink
	Runs RunRecorder
}

func (s *InsertItemsStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Sink.InsertInventoryItems(ctx, state.RunID, state.Items); err != nil {
		s.Runs.MarkRunFailed(ctx, state.RunID, err)
		return err
	}
	return nil
}

// MarkSuccessStep closes the extraction run.
type MarkSuccessStep struct {
	Runs RunRecorder
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	return s.Runs.MarkRunSucceeded(ctx, state.RunID)
}

// Ingestion wires the standard invoice ingestion pipeline.
type Ingestion struct {
	runs      RunRecorder
	blobs     BlobStore
	extractor Extractor
	parts     CustomPartsSource
	sink      ItemSink
	log       zerolog.Logger
}

func NewIngestion(runs RunRecorder, blobs BlobStore, extractor Extractor, parts CustomPartsSource, sink ItemSink, log zerolog.Logger) *Ingestion {
	return &Ingestion{
		runs:      runs,
		blobs:     blobs,
		extractor: extractor,
		parts:     parts,
		sink:      sink,
		log:       log,
	}
}

// IngestInvoice processes a single invoice file stored in object storage and
// returns the mapped inventory records.
func (ing *Ingestion) IngestInvoice(ctx context.Context, sourceURI, mimeType string) ([]domain.InventoryMappedItem, error) {
	state := &PipelineState{SourceURI: sourceURI, MIMEType: mimeType}

	pipeline := NewPipeline(
		&StartRunStep{Runs: ing.runs},
		&FetchBlobStep{Blobs: ing.blobs, Runs: ing.runs},
		&ExtractStep{Extractor: ing.extractor, Runs: ing.runs},
		&AdaptStep{Runs: ing.runs},
		&MatchStep{Parts: ing.parts, Runs: ing.runs},
		&InsertItemsStep{Sink: ing.sink, Runs: ing.runs},
		&MarkSuccessStep{Runs: ing.runs},
	)

	if err := pipeline.Execute(ctx, state); err != nil {
		return nil, err
	}

	ing.log.Info().
		Str("run_id", state.RunID).
		Str("source_uri", sourceURI).
		Int("items", len(state.Items)).
		Msg("Invoice ingested")

	return state.Items, nil
}
