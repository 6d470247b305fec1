package toodledo

import (
	"time"

	"github.com/teemow/toodledo/internal/codec"
)

// MaxTitleLength is the longest task title the API accepts.
const MaxTitleLength = 255

// Task is a Toodledo task. Zero dates, clocks and list ids inside a present
// field mean "unset" on the server.
type Task struct {
	ID              Opt[int64]           `json:"id,omitzero"`
	Title           Opt[string]          `json:"title,omitzero"`
	Tags            Opt[[]string]        `json:"tags,omitzero"`
	StartDate       Opt[codec.Date]      `json:"start_date,omitzero"`
	StartTime       Opt[codec.Clock]     `json:"start_time,omitzero"`
	DueDate         Opt[codec.Date]      `json:"due_date,omitzero"`
	DueTime         Opt[codec.Clock]     `json:"due_time,omitzero"`
	Modified        Opt[time.Time]       `json:"modified,omitzero"`
	CompletedDate   Opt[codec.Date]      `json:"completed_date,omitzero"`
	Star            Opt[bool]            `json:"star,omitzero"`
	Priority        Opt[Priority]        `json:"priority,omitzero"`
	DueDateModifier Opt[DueDateModifier] `json:"due_date_modifier,omitzero"`
	Status          Opt[Status]          `json:"status,omitzero"`
	Length          Opt[int64]           `json:"length,omitzero"`
	Note            Opt[string]          `json:"note,omitzero"`
	FolderID        Opt[int64]           `json:"folder_id,omitzero"`
	ContextID       Opt[int64]           `json:"context_id,omitzero"`
}

// TaskSchema binds Task to the tasks endpoints.
var TaskSchema = newSchema("task", "id",
	bind("ID", "id", codec.Int, func(t *Task) *Opt[int64] { return &t.ID }),
	bind("Title", "title", codec.BoundedString(MaxTitleLength), func(t *Task) *Opt[string] { return &t.Title }),
	bind("Tags", "tag", codec.Tags, func(t *Task) *Opt[[]string] { return &t.Tags }),
	bind("StartDate", "startdate", codec.DateOnly, func(t *Task) *Opt[codec.Date] { return &t.StartDate }),
	bind("StartTime", "starttime", codec.TimeOfDay, func(t *Task) *Opt[codec.Clock] { return &t.StartTime }),
	bind("DueDate", "duedate", codec.DateOnly, func(t *Task) *Opt[codec.Date] { return &t.DueDate }),
	bind("DueTime", "duetime", codec.TimeOfDay, func(t *Task) *Opt[codec.Clock] { return &t.DueTime }),
	bind("Modified", "modified", codec.Datetime, func(t *Task) *Opt[time.Time] { return &t.Modified }),
	bind("CompletedDate", "completed", codec.DateOnly, func(t *Task) *Opt[codec.Date] { return &t.CompletedDate }),
	bind("Star", "star", codec.Bool, func(t *Task) *Opt[bool] { return &t.Star }),
	bind[Task, Priority]("Priority", "priority", PriorityCodec, func(t *Task) *Opt[Priority] { return &t.Priority }),
	bind[Task, DueDateModifier]("DueDateModifier", "duedatemod", DueDateModifierCodec, func(t *Task) *Opt[DueDateModifier] { return &t.DueDateModifier }),
	bind[Task, Status]("Status", "status", StatusCodec, func(t *Task) *Opt[Status] { return &t.Status }),
	bind("Length", "length", codec.Int, func(t *Task) *Opt[int64] { return &t.Length }),
	bind("Note", "note", codec.String, func(t *Task) *Opt[string] { return &t.Note }),
	bind("FolderID", "folder", codec.ListID, func(t *Task) *Opt[int64] { return &t.FolderID }),
	bind("ContextID", "context", codec.ListID, func(t *Task) *Opt[int64] { return &t.ContextID }),
)

// IsComplete reports whether the task has a completion date.
func (t Task) IsComplete() bool {
	d, ok := t.CompletedDate.Get()
	return ok && !d.IsZero()
}

// SameRecord reports whether a and b refer to the same server record.
func SameRecord(a, b Task) bool {
	idA, okA := a.ID.Get()
	idB, okB := b.ID.Get()
	return okA && okB && idA == idB
}

// Optional task fields that tasks/get.php only returns when asked for. id,
// title, modified and completed are always returned.
var OptionalTaskFields = []string{
	"folder", "context", "tag", "startdate", "duedate", "duedatemod",
	"starttime", "duetime", "status", "star", "priority", "length", "note",
}

// Completion filters tasks by completion state.
type Completion int

const (
	CompletionAny Completion = iota
	CompletionIncomplete
	CompletionComplete
)

func (c Completion) wire() string {
	switch c {
	case CompletionIncomplete:
		return "0"
	case CompletionComplete:
		return "1"
	default:
		return "-1"
	}
}

// TaskQuery selects tasks for GetTasks. The zero value returns every task
// with the default field set.
type TaskQuery struct {
	// Fields lists optional wire fields to include, see OptionalTaskFields.
	Fields         []string
	ModifiedAfter  time.Time
	ModifiedBefore time.Time
	Completion     Completion
	// ID restricts the result to a single task when non-zero.
	ID int64
}

// DeletedTask is one entry of the deleted tasks log.
type DeletedTask struct {
	ID      Opt[int64]     `json:"id,omitzero"`
	Deleted Opt[time.Time] `json:"deleted,omitzero"`
}

// DeletedTaskSchema binds DeletedTask to tasks/deleted.php.
var DeletedTaskSchema = newSchema("deleted task", "id",
	bind("ID", "id", codec.Int, func(d *DeletedTask) *Opt[int64] { return &d.ID }),
	bind("Deleted", "stamp", codec.Datetime, func(d *DeletedTask) *Opt[time.Time] { return &d.Deleted }),
)
