package domain

type ItemStatus string

const (
	StatusRunning   ItemStatus = "running"
	StatusScheduled ItemStatus = "scheduled"
	StatusStopped   ItemStatus = "stopped"
)

type BlockKind string

const (
	BlockParagraph  BlockKind = "paragraph"
	BlockBanner     BlockKind = "banner"
	BlockSchedule   BlockKind = "schedule"
	BlockExecutions BlockKind = "executions"
)

// BodyBlock is one structured piece of a dashboard item body. Content is not
// escaped here; frontends own markup generation.
type BodyBlock struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text,omitempty"`

	// Banner blocks carry the numbers behind the text.
	Waiting   int64 `json:"waiting,omitempty"`
	Threshold int64 `json:"threshold,omitempty"`

	Executions []ExecutionView `json:"executions,omitempty"`
}

type CommandStyle string

const CommandStyleLink CommandStyle = "link"

// CommandRef points at a triggerable run command attached to an item.
type CommandRef struct {
	CommandID string       `json:"command_id"`
	Title     string       `json:"title"`
	Style     CommandStyle `json:"style"`
}

// DashboardItem is one queue+processor row of the board. The ID joins queue
// id and task type with "-" and is not escaped, so ids containing hyphens can
// collide; existing consumers depend on the scheme.
type DashboardItem struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Status   ItemStatus   `json:"status"`
	Body     []BodyBlock  `json:"body"`
	Commands []CommandRef `json:"commands"`
}

// ItemID composes the identity a queue+processor pair is displayed and
// command-keyed under.
func ItemID(queueID, taskType string) string {
	return queueID + "-" + taskType
}
