package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		// QueryAssignments returns assignments ordered newest-updated-first,
		// with subject and teacher names expanded.
		QueryAssignments(ctx context.Context, page core.Pagination) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids ...string) error
	}

	// Notifier receives fan-out events for created assignments.
	Notifier interface {
		AssignmentCreated(asg Assignment)
	}

	Service interface {
		Create(ctx context.Context, na NewAssignment, teacher user.User) (Assignment, error)
		Query(ctx context.Context, page core.Pagination) ([]Assignment, error)
		GetByID(ctx context.Context, id string) (Assignment, error)
		Update(ctx context.Context, orig Assignment, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		subjects subject.Service
		notifier Notifier
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, subjects subject.Service, notifier Notifier) Service {
	return &service{repo: repo, subjects: subjects, notifier: notifier}
}

// Create resolves the subject reference before any write so an unresolved
// subject never leaves a dangling row behind.
func (svc *service) Create(ctx context.Context, na NewAssignment, teacher user.User) (Assignment, error) {
	sub, err := svc.subjects.Resolve(ctx, na.Subject)
	if err != nil {
		return Assignment{}, err
	}

	now := time.Now().UTC()
	deadline := na.Deadline
	if deadline.IsZero() {
		deadline = now.Add(DeadlineDelta)
	}
	asg := Assignment{
		Title:       na.Title,
		Description: na.Description,
		SubjectID:   sub.ID,
		SubjectName: sub.Name,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Deadline:    deadline.UTC(),
		Semester:    na.Semester,
		Faculty:     na.Faculty,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	asg, err = svc.repo.CreateAssignment(ctx, asg)
	if err != nil {
		return Assignment{}, err
	}
	svc.notifier.AssignmentCreated(asg)
	return asg, nil
}

func (svc *service) Query(ctx context.Context, page core.Pagination) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, page)
}

func (svc *service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, orig Assignment, ua UpdateAssignment) (Assignment, error) {
	asg := orig
	if ua.Title != "" {
		asg.Title = ua.Title
	}
	if ua.Description != "" {
		asg.Description = ua.Description
	}
	if ua.Subject != "" {
		sub, err := svc.subjects.Resolve(ctx, ua.Subject)
		if err != nil {
			return Assignment{}, err
		}
		asg.SubjectID = sub.ID
		asg.SubjectName = sub.Name
	}
	if !ua.Deadline.IsZero() {
		asg.Deadline = ua.Deadline.UTC()
	}
	if ua.Semester != "" {
		asg.Semester = ua.Semester
	}
	if ua.Faculty != "" {
		asg.Faculty = ua.Faculty
	}
	asg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAssignmentsByID(ctx, ids...)
}
