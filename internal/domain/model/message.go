package model

// MessageType tags every realtime event pushed to a client channel.
type MessageType string

const (
	// MessageQueued is sent once after admission with position and ETA.
	MessageQueued MessageType = "queued"
	// MessageProcessing is sent when a worker claims the job.
	MessageProcessing MessageType = "processing"
	// MessageJobProgress carries node-level progress during execution.
	MessageJobProgress MessageType = "job_progress"
	// MessageRetrying precedes a re-enqueue so clients do not treat a
	// transient failure as terminal.
	MessageRetrying MessageType = "retrying"
	// MessageCompleted is the success terminal message.
	MessageCompleted MessageType = "completed"
	// MessageFailed is the failure/timeout terminal message.
	MessageFailed MessageType = "failed"
)

// RealtimeMessage is the wire shape pushed over the job's live channel.
// Exactly one terminal message (completed or failed) is emitted per job.
type RealtimeMessage struct {
	Type                MessageType `json:"type"`
	JobID               string      `json:"jobId"`
	Status              JobStatus   `json:"status,omitempty"`
	QueuePosition       int         `json:"queuePosition,omitempty"`
	EstimatedWaitMillis int64       `json:"estimatedWaitMillis,omitempty"`
	NodeID              string      `json:"nodeId,omitempty"`
	DisplayNodeID       string      `json:"displayNodeId,omitempty"`
	ProgressValue       int         `json:"progressValue,omitempty"`
	ProgressMax         int         `json:"progressMax,omitempty"`
	Percentage          int         `json:"percentage,omitempty"`
	StatusLine          string      `json:"message,omitempty"`
	RetryCount          int         `json:"retryCount,omitempty"`
	RetryDelayMillis    int64       `json:"retryDelayMillis,omitempty"`
	ResultRefs          []string    `json:"resultReference,omitempty"`
	ErrorType           string      `json:"errorType,omitempty"`
	ErrorMessage        string      `json:"errorMessage,omitempty"`
}
