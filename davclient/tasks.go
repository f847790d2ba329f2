package davclient

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tmaehler/davbox/internal/davxml"
	"github.com/tmaehler/davbox/vobject"
)

// Task is the typed view of one VTODO.
type Task struct {
	UID             string
	Summary         string
	Description     string
	Due             time.Time
	Completed       time.Time
	Priority        int
	Status          string
	PercentComplete int
	Href            string
	ETag            string
}

// TaskDraft carries the caller input for a new task. Summary is
// required; Priority follows the iCalendar 0-9 scale where 0 means
// undefined.
type TaskDraft struct {
	Calendar    string
	Summary     string
	Description string
	Due         time.Time
	Priority    int
}

// TaskChanges names the fields an edit may rewrite.
type TaskChanges struct {
	Summary     mo.Option[string]
	Description mo.Option[string]
	Due         mo.Option[time.Time]
	Priority    mo.Option[int]
}

// ListTasksOptions narrows a task listing.
type ListTasksOptions struct {
	Calendar         string
	IncludeCompleted bool
}

// ListTasks returns the tasks of one calendar. Unless IncludeCompleted
// is set the server is asked to exclude completed tasks, and the result
// is filtered again locally for servers that apply the status filter
// loosely.
func (c *Client) ListTasks(ctx context.Context, opts ListTasksOptions) ([]Task, error) {
	ref, err := c.ResolveCollection(ctx, CapTasks, opts.Calendar)
	if err != nil {
		return nil, err
	}
	objects, err := c.queryCalendarObjects(ctx, ref.Href, davxml.TodoQuery(!opts.IncludeCompleted))
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, obj := range objects {
		for _, child := range obj.cal.Children {
			if child.Name != ical.CompToDo {
				continue
			}
			task := taskView(child, obj)
			if !opts.IncludeCompleted && strings.EqualFold(task.Status, "COMPLETED") {
				continue
			}
			tasks = append(tasks, task)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Due.IsZero() != tasks[j].Due.IsZero() {
			return !tasks[i].Due.IsZero()
		}
		return tasks[i].Due.Before(tasks[j].Due)
	})
	return tasks, nil
}

// AddTask stores a new task with STATUS:NEEDS-ACTION and returns its
// view.
func (c *Client) AddTask(ctx context.Context, draft TaskDraft) (Task, error) {
	if draft.Summary == "" {
		return Task{}, fmt.Errorf("%w: task summary is required", ErrInvalidInput)
	}
	if draft.Priority < 0 || draft.Priority > 9 {
		return Task{}, fmt.Errorf("%w: priority %d outside 0-9", ErrInvalidInput, draft.Priority)
	}
	ref, err := c.ResolveCollection(ctx, CapTasks, draft.Calendar)
	if err != nil {
		return Task{}, err
	}

	rec, comp := vobject.NewCalendarObject("VTODO")
	uid := uuid.New().String()
	comp.Append("UID", uid)
	comp.Append("DTSTAMP", formatUTC(time.Now()))
	comp.Append("SUMMARY", vobject.Escape(draft.Summary))
	if draft.Description != "" {
		comp.Append("DESCRIPTION", vobject.Escape(draft.Description))
	}
	if !draft.Due.IsZero() {
		comp.Append("DUE", formatUTC(draft.Due))
	}
	if draft.Priority > 0 {
		comp.Append("PRIORITY", strconv.Itoa(draft.Priority))
	}
	comp.Append("STATUS", "NEEDS-ACTION")

	href, etag, err := c.CreateResource(ctx, ref, uid+".ics", ContentTypeCalendar, []byte(rec.String()))
	if err != nil {
		return Task{}, err
	}
	return Task{
		UID:         uid,
		Summary:     draft.Summary,
		Description: draft.Description,
		Due:         draft.Due,
		Priority:    draft.Priority,
		Status:      "NEEDS-ACTION",
		Href:        href,
		ETag:        etag,
	}, nil
}

// CompleteTask marks the task done: STATUS:COMPLETED, a full
// PERCENT-COMPLETE and a COMPLETED stamp. Every other field keeps its
// stored bytes. Returns the new etag.
func (c *Client) CompleteTask(ctx context.Context, calendar, uid string) (string, error) {
	located, failures, err := c.LocateByUID(ctx, CapTasks, calendar, uid)
	if err != nil {
		return "", err
	}
	c.reportScanFailures(failures)
	if located == nil {
		return "", notFoundWithFailures(fmt.Sprintf("no task with UID %q", uid), failures)
	}

	mut, err := c.NewMutation(*located, ContentTypeCalendar)
	if err != nil {
		return "", err
	}
	err = mut.Apply(
		vobject.FieldEdit{Name: "STATUS", Value: "COMPLETED", Set: true},
		vobject.FieldEdit{Name: "PERCENT-COMPLETE", Value: "100", Set: true},
		vobject.FieldEdit{Name: "COMPLETED", Value: formatUTC(time.Now()), Set: true},
	)
	if err != nil {
		return "", err
	}
	return mut.Commit(ctx)
}

// EditTask rewrites the named fields of the task carrying the UID and
// returns the new etag.
func (c *Client) EditTask(ctx context.Context, calendar, uid string, ch TaskChanges) (string, error) {
	if v, ok := ch.Priority.Get(); ok && (v < 0 || v > 9) {
		return "", fmt.Errorf("%w: priority %d outside 0-9", ErrInvalidInput, v)
	}

	located, failures, err := c.LocateByUID(ctx, CapTasks, calendar, uid)
	if err != nil {
		return "", err
	}
	c.reportScanFailures(failures)
	if located == nil {
		return "", notFoundWithFailures(fmt.Sprintf("no task with UID %q", uid), failures)
	}

	mut, err := c.NewMutation(*located, ContentTypeCalendar)
	if err != nil {
		return "", err
	}
	var edits []vobject.FieldEdit
	if v, ok := ch.Summary.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "SUMMARY", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Description.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "DESCRIPTION", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Due.Get(); ok {
		current, _ := mut.Component().Get("DUE")
		edits = append(edits, vobject.FieldEdit{Name: "DUE", Value: formatLike(current, v), Set: true})
	}
	if v, ok := ch.Priority.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "PRIORITY", Value: strconv.Itoa(v), Set: true})
	}
	if len(edits) == 0 {
		return "", fmt.Errorf("%w: no changes given", ErrInvalidInput)
	}
	if err := mut.Apply(edits...); err != nil {
		return "", err
	}
	return mut.Commit(ctx)
}

// DeleteTask removes the task carrying the UID.
func (c *Client) DeleteTask(ctx context.Context, calendar, uid string) error {
	return c.deleteByUID(ctx, CapTasks, calendar, uid, "task")
}

func taskView(comp *ical.Component, obj calendarObject) Task {
	task := Task{
		UID:         propText(comp.Props, ical.PropUID),
		Summary:     propText(comp.Props, ical.PropSummary),
		Description: propText(comp.Props, ical.PropDescription),
		Status:      strings.ToUpper(propText(comp.Props, ical.PropStatus)),
		Href:        obj.href,
		ETag:        obj.etag.OrElse(""),
	}
	if prop := comp.Props.Get(ical.PropDue); prop != nil {
		if due, _, err := parseCalTime(prop.Value); err == nil {
			task.Due = due
		}
	}
	if prop := comp.Props.Get(ical.PropCompleted); prop != nil {
		if done, _, err := parseCalTime(prop.Value); err == nil {
			task.Completed = done
		}
	}
	if v, err := strconv.Atoi(propText(comp.Props, ical.PropPriority)); err == nil {
		task.Priority = v
	}
	if v, err := strconv.Atoi(propText(comp.Props, ical.PropPercentComplete)); err == nil {
		task.PercentComplete = v
	}
	return task
}
