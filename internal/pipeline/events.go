package pipeline

// Pipeline stages, in execution order. Failed and Complete are terminal.
const (
	StageValidate  = "validate"
	StageRecognize = "recognize"
	StageRender    = "render"
	StageAggregate = "aggregate"
	StageSentiment = "sentiment"
	StageComplete  = "complete"
	StageFailed    = "failed"
)

// Event describes one stage transition of a running analysis. Events exist
// for observers (the live activity feed); the pipeline's behavior never
// depends on them.
type Event struct {
	RequestID string `json:"request_id"`
	Stage     string `json:"stage"`
	Detail    string `json:"detail,omitempty"`
}

// EventSink receives pipeline events. Publish is called synchronously from
// the request goroutine, so implementations must not block.
type EventSink interface {
	Publish(Event)
}

// publish sends an event when a sink is configured.
func (p *Pipeline) publish(id, stage, detail string) {
	if p.events == nil {
		return
	}
	p.events.Publish(Event{RequestID: id, Stage: stage, Detail: detail})
}
