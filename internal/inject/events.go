package inject

// Status captures progress state for one request.
type Status string

const (
	// StatusQueued indicates the request is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the request is being processed.
	StatusWorking Status = "working"
	// StatusInserted indicates the trace was spliced and written.
	StatusInserted Status = "inserted"
	// StatusPresent indicates the trace was already in the file.
	StatusPresent Status = "present"
	// StatusWarning indicates a locate failure; the file was left unchanged.
	StatusWarning Status = "warning"
)

// Event reports progress for a single request. Index is the request's position
// in the batch; Line is set only for StatusInserted.
type Event struct {
	Index   int
	Label   string
	Key     string
	Path    string
	Mode    Mode
	Status  Status
	Outcome Outcome
	Line    uint32
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
