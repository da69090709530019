package notification

import (
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/user"
)

// DispatcherMock dispatches synchronously so tests can assert on delivered
// messages without sleeping.
type DispatcherMock struct {
	Dispatcher
}

var (
	_ assignment.Notifier = (*DispatcherMock)(nil)
	_ notice.Notifier     = (*DispatcherMock)(nil)
)

func NewDispatcherMock(gateway Gateway, devices device.Repository, logger core.Logger) *DispatcherMock {
	return &DispatcherMock{
		Dispatcher: Dispatcher{
			gateway: gateway,
			devices: devices,
			logger:  logger,
		},
	}
}

func (d *DispatcherMock) AssignmentCreated(asg assignment.Assignment) {
	d.dispatch(assignmentMessage(asg), []user.Faculty{asg.Faculty})
}

func (d *DispatcherMock) NoticeCreated(n notice.Notice) {
	d.dispatch(noticeMessage(n), n.TargetAudience)
}
