package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/textlens/textlens/internal/logger"
	"github.com/textlens/textlens/internal/media"
	"github.com/textlens/textlens/internal/ocr"
	"github.com/textlens/textlens/internal/overlay"
	"github.com/textlens/textlens/internal/sentiment"
	"github.com/textlens/textlens/internal/textproc"
)

// Recognizer extracts text geometry from an image payload.
type Recognizer interface {
	RecognizeText(ctx context.Context, data []byte) (*ocr.RecognitionResult, error)
}

// Analyzer classifies a document's sentiment.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (*sentiment.Record, error)
}

// Analysis is the complete outcome of one image analysis request.
type Analysis struct {
	// ID uniquely identifies the request across logs, events, and the
	// response.
	ID string

	// ImageWidth and ImageHeight are the decoded source dimensions.
	ImageWidth  int
	ImageHeight int

	// Recognition holds the text geometry returned by the vision service.
	Recognition *ocr.RecognitionResult

	// Annotated is the rendered copy with outlines, plus draw counters.
	// Present even when no text was found; the image then carries zero
	// outlines.
	Annotated *overlay.Result

	// Document is the aggregated plain text, "" when no text was found.
	Document string

	// Sentiment is the document classification, or nil when sentiment
	// analysis was skipped because the image contained no text.
	Sentiment *sentiment.Record
}

// Config wires a Pipeline's collaborators. Recognizer, Analyzer, and
// Renderer are required; Log defaults to a silent logger and Events may be
// nil when nothing observes progress.
type Config struct {
	Recognizer Recognizer
	Analyzer   Analyzer
	Renderer   *overlay.Renderer
	Log        *logger.Logger
	Events     EventSink
}

// Pipeline runs the image analysis flow: validate, recognize, render,
// aggregate, classify. Each request is independent; the pipeline keeps no
// state between calls and is safe for concurrent use.
type Pipeline struct {
	recognizer Recognizer
	analyzer   Analyzer
	renderer   *overlay.Renderer
	log        *logger.Logger
	events     EventSink
}

// New creates a Pipeline from its collaborators.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Recognizer == nil {
		return nil, errors.New("pipeline requires a Recognizer")
	}
	if cfg.Analyzer == nil {
		return nil, errors.New("pipeline requires an Analyzer")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("pipeline requires a Renderer")
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	return &Pipeline{
		recognizer: cfg.Recognizer,
		analyzer:   cfg.Analyzer,
		renderer:   cfg.Renderer,
		log:        cfg.Log,
		events:     cfg.Events,
	}, nil
}

// WithRenderer returns a copy of the pipeline that renders annotations with
// r instead of the configured renderer. The clients, logger, and event sink
// are shared with the original, which is left unchanged.
func (p *Pipeline) WithRenderer(r *overlay.Renderer) *Pipeline {
	q := *p
	q.renderer = r
	return &q
}

// Analyze processes one image payload end to end.
//
// The stages run strictly in order and a failing stage stops the flow: a
// payload that fails validation is never sent to the vision service, and a
// failed recognition call reaches neither the renderer nor the language
// service. An image with no recognizable text is not a failure; the
// annotated copy is still produced and only sentiment analysis is skipped,
// leaving Analysis.Sentiment nil.
//
// Errors pass through unchanged where callers need to distinguish them:
// media.ErrEmptyImage and media.ErrImageTooLarge for validation, and the
// adapters' *ServiceError types for remote failures.
func (p *Pipeline) Analyze(ctx context.Context, data []byte) (*Analysis, error) {
	id := uuid.NewString()

	if err := media.Validate(data); err != nil {
		p.log.Warning("request %s rejected: %v", id, err)
		p.publish(id, StageFailed, err.Error())
		return nil, err
	}
	p.publish(id, StageValidate, fmt.Sprintf("%d bytes", len(data)))
	p.log.Debug("request %s validated (%d bytes)", id, len(data))

	recognition, err := p.recognizer.RecognizeText(ctx, data)
	if err != nil {
		p.log.Error("request %s recognition failed: %v", id, err)
		p.publish(id, StageFailed, err.Error())
		return nil, err
	}
	p.publish(id, StageRecognize, fmt.Sprintf("%d lines", recognition.LineCount()))
	p.log.Info("request %s recognized %d lines", id, recognition.LineCount())

	src, err := media.Decode(data)
	if err != nil {
		// The service accepted the payload but the local decoder cannot
		// read it, so there is no image to annotate.
		err = fmt.Errorf("cannot annotate payload: %w", err)
		p.log.Error("request %s: %v", id, err)
		p.publish(id, StageFailed, err.Error())
		return nil, err
	}

	annotated := p.renderer.Render(src, annotationLines(recognition))
	p.publish(id, StageRender, fmt.Sprintf("%d drawn, %d skipped", annotated.LinesDrawn, annotated.LinesSkipped))

	document := textproc.Aggregate(recognition)
	p.publish(id, StageAggregate, fmt.Sprintf("%d chars", len(document)))

	analysis := &Analysis{
		ID:          id,
		ImageWidth:  src.Bounds().Dx(),
		ImageHeight: src.Bounds().Dy(),
		Recognition: recognition,
		Annotated:   annotated,
		Document:    document,
	}

	if document == "" {
		p.log.Info("request %s has no text, skipping sentiment", id)
		p.publish(id, StageComplete, "no text found")
		return analysis, nil
	}

	record, err := p.analyzer.AnalyzeSentiment(ctx, document)
	if err != nil {
		p.log.Error("request %s sentiment failed: %v", id, err)
		p.publish(id, StageFailed, err.Error())
		return nil, err
	}
	analysis.Sentiment = record
	p.publish(id, StageSentiment, string(record.Sentiment))
	p.log.Info("request %s sentiment: %s", id, record.Sentiment)

	p.publish(id, StageComplete, "")
	return analysis, nil
}

// annotationLines converts recognized lines into overlay inputs, preserving
// the service's order: blocks first, then lines within each block.
func annotationLines(recognition *ocr.RecognitionResult) []overlay.Line {
	lines := recognition.Lines()
	out := make([]overlay.Line, 0, len(lines))
	for _, l := range lines {
		points := make([]image.Point, len(l.Polygon))
		for i, pt := range l.Polygon {
			points[i] = image.Point{X: pt.X, Y: pt.Y}
		}
		out = append(out, overlay.Line{Text: l.Text, Polygon: points})
	}
	return out
}
