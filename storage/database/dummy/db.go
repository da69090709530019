// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		subject    *subjectTable
		assignment *assignmentTable
		notice     *noticeTable
		file       *fileTable
		device     *deviceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*subject.Subject
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	noticeTable struct {
		sync.RWMutex
		table map[string]*notice.Notice
	}

	fileTable struct {
		sync.RWMutex
		table map[string]*file.File
	}

	deviceTable struct {
		sync.RWMutex
		table map[string]*device.Device
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		subject:    &subjectTable{table: make(map[string]*subject.Subject)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		notice:     &noticeTable{table: make(map[string]*notice.Notice)},
		file:       &fileTable{table: make(map[string]*file.File)},
		device:     &deviceTable{table: make(map[string]*device.Device)},
	}
	return db, nil
}
