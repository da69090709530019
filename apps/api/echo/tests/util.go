package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/filestore"
	logsvc "github.com/trezcool/darasa/services/logger"
	pushsvc "github.com/trezcool/darasa/services/push"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

var (
	conf *core.Config
	app  echoapi.Server

	usrRepo    user.Repository
	subjRepo   subject.Repository
	asgRepo    assignment.Repository
	noticeRepo notice.Repository
	fileRepo   file.Repository
	deviceRepo device.Repository

	storage *filestore.DummyStorage
	gateway *pushsvc.DummyGateway
)

// setup rebuilds a server on a fresh in-memory DB.
func setup(t *testing.T) echoapi.Server {
	t.Helper()

	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	subjRepo = dummydb.NewSubjectRepository(db)
	asgRepo = dummydb.NewAssignmentRepository(db)
	noticeRepo = dummydb.NewNoticeRepository(db)
	fileRepo = dummydb.NewFileRepository(db)
	deviceRepo = dummydb.NewDeviceRepository(db)

	// set up services; side effects run synchronously
	logger := logsvc.NewConsoleLogger(nil)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()
	storage = filestore.NewDummyStorage()
	gateway = pushsvc.NewDummyGateway()
	dispatcher := notification.NewDispatcherMock(gateway, deviceRepo, logger)

	usrSvc := user.NewService(usrRepo, mailSvc)
	subjSvc := subject.NewService(subjRepo)
	fileSvc := file.NewService(fileRepo, storage)
	asgSvc := assignment.NewService(asgRepo, subjSvc, dispatcher)
	noticeSvc := notice.NewService(noticeRepo, fileSvc, dispatcher)
	deviceSvc := device.NewService(deviceRepo)

	app = echoapi.NewServer(
		&echoapi.Options{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			SubjectSvc:     subjSvc,
			AssignmentSvc:  asgSvc,
			NoticeSvc:      noticeSvc,
			FileSvc:        fileSvc,
			DeviceSvc:      deviceSvc,
		},
	)
	return app
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func successBody(t *testing.T, message string, data interface{}) []byte {
	return marshallObj(t, echoapi.Response{Success: true, Message: message, Data: data})
}

func errorBody(t *testing.T, message string, err interface{}) []byte {
	return marshallObj(t, echoapi.Response{Success: false, Message: message, Error: err})
}

func errMissingToken(t *testing.T) []byte {
	return errorBody(t, "user not authenticated", nil)
}

func errForbidden(t *testing.T) []byte {
	return errorBody(t, "permission denied", nil)
}

func errNotFound(t *testing.T) []byte {
	return errorBody(t, "not found", nil)
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

// checkCodeAndData compares the status code and, when wantData is set,
// the response body.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// parseData unmarshals the envelope's data field into dst.
func parseData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parseData() failed: %v", err)
	}
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("parseData() failed: %v", err)
	}
}
