package notification

import (
	"context"
	"strings"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/user"
)

const dispatchTimeout = 30 * time.Second

// Message is one push payload addressed to a set of device tokens.
type Message struct {
	Title  string
	Body   string
	Data   map[string]string
	Tokens []string
}

// Gateway delivers push messages to devices.
type Gateway interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans content events out to registered devices. Delivery is
// best-effort: failures are logged and never surfaced to the caller.
type Dispatcher struct {
	gateway Gateway
	devices device.Repository
	logger  core.Logger
}

var (
	_ assignment.Notifier = (*Dispatcher)(nil)
	_ notice.Notifier     = (*Dispatcher)(nil)
)

func NewDispatcher(gateway Gateway, devices device.Repository, logger core.Logger) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		devices: devices,
		logger:  logger,
	}
}

func (d *Dispatcher) AssignmentCreated(asg assignment.Assignment) {
	go d.dispatch(assignmentMessage(asg), []user.Faculty{asg.Faculty})
}

func (d *Dispatcher) NoticeCreated(n notice.Notice) {
	go d.dispatch(noticeMessage(n), n.TargetAudience)
}

// routes the mobile clients navigate to when a notification is tapped
const (
	assignmentRoute = "/getAssignment"
	noticeRoute     = "/getNotice"
)

func assignmentMessage(asg assignment.Assignment) Message {
	return Message{
		Title: "New Assignment: " + asg.Title,
		Body:  asg.SubjectName + " - due " + asg.Deadline.Format("Jan 2, 2006"),
		Data: map[string]string{
			"id":      asg.ID,
			"faculty": string(asg.Faculty),
			"route":   assignmentRoute,
		},
	}
}

func noticeMessage(n notice.Notice) Message {
	return Message{
		Title: "Notice: " + n.Title,
		Body:  n.Content,
		Data: map[string]string{
			"id":       n.ID,
			"audience": joinFaculties(n.TargetAudience),
			"route":    noticeRoute,
		},
	}
}

func joinFaculties(faculties []user.Faculty) string {
	tags := make([]string, len(faculties))
	for i, f := range faculties {
		tags[i] = string(f)
	}
	return strings.Join(tags, ",")
}

// dispatch resolves the audience to active device tokens and hands the
// message to the gateway. An empty audience, or one containing the
// all-faculties marker, broadcasts to every active device.
func (d *Dispatcher) dispatch(msg Message, audience []user.Faculty) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	tokens, err := d.resolveTokens(ctx, audience)
	if err != nil {
		d.logger.Error("notification: resolving device tokens", "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	msg.Tokens = tokens
	if err := d.gateway.Send(ctx, msg); err != nil {
		d.logger.Error("notification: sending push message", "error", err, "title", msg.Title)
	}
}

func (d *Dispatcher) resolveTokens(ctx context.Context, audience []user.Faculty) ([]string, error) {
	if isBroadcast(audience) {
		return d.devices.QueryActiveTokens(ctx)
	}
	return d.devices.QueryActiveTokensByFaculty(ctx, audience)
}

func isBroadcast(audience []user.Faculty) bool {
	if len(audience) == 0 {
		return true
	}
	for _, f := range audience {
		if f == user.FacultyAll {
			return true
		}
	}
	return false
}
