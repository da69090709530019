// Package testutil provides shared fixtures for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role user.Role,
	faculty user.Faculty,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		Faculty:   faculty,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSubject(t *testing.T, repo subject.Repository, name, code string, creator user.User, createdAt ...time.Time) subject.Subject {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:        name,
		Code:        code,
		Credits:     3,
		CreatedBy:   creator.ID,
		CreatorName: creator.Name,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	title string,
	sub subject.Subject,
	teacher user.User,
	faculty user.Faculty,
	createdAt ...time.Time,
) assignment.Assignment {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	asg, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		Title:       title,
		Description: "do the thing",
		SubjectID:   sub.ID,
		SubjectName: sub.Name,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Deadline:    tstamp.Add(assignment.DeadlineDelta),
		Faculty:     faculty,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateNotice(
	t *testing.T,
	repo notice.Repository,
	title string,
	issuer user.User,
	audience []user.Faculty,
	createdAt ...time.Time,
) notice.Notice {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	n, err := repo.CreateNotice(context.Background(), notice.Notice{
		Title:          title,
		Content:        "content of " + title,
		IssuedBy:       issuer.ID,
		IssuerName:     issuer.Name,
		Priority:       notice.PriorityMedium,
		Category:       notice.CategoryGeneral,
		TargetAudience: audience,
		CreatedAt:      tstamp,
		UpdatedAt:      tstamp,
	})
	if err != nil {
		t.Fatalf("CreateNotice() failed: %v", err)
	}
	return n
}

func CreateDevice(t *testing.T, repo device.Repository, token string, owner user.User, active bool) device.Device {
	t.Helper()

	dev, err := repo.CreateDevice(context.Background(), device.Device{
		Token:     token,
		UserID:    owner.ID,
		Active:    active,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateDevice() failed: %v", err)
	}
	return dev
}

func CreateFile(t *testing.T, repo file.Repository, typ file.Type, owner user.User) file.File {
	t.Helper()

	tstamp := time.Now().UTC()
	f, err := repo.CreateFile(context.Background(), file.File{
		URL:       "https://files.local/" + string(typ) + "/test.pdf",
		PublicID:  "test-" + string(typ),
		Type:      typ,
		MetaType:  "pdf",
		UserID:    owner.ID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateFile() failed: %v", err)
	}
	return f
}
