package tests

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/wingscc/rollcall/apps/api/echo"
	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/user"
	logsvc "github.com/wingscc/rollcall/services/logger"
	"github.com/wingscc/rollcall/tests"
)

const adminPassword = "wings-2024!"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*testutil.Env
	server *Server
	admin  user.User
	token  string
}

func setup(t *testing.T, opts ...attendance.Options) *testApp {
	env := testutil.Setup(t, opts...)

	conf := *core.Conf
	conf.Debug = false
	conf.TestMode = true

	server := NewServer(ServerDeps{
		Conf:          &conf,
		Logger:        logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), &conf),
		Validate:      env.Validate,
		Translator:    env.Translator,
		UserSvc:       env.UserSvc,
		StudentSvc:    env.StudentSvc,
		AttendanceSvc: env.AttendanceSvc,
	})

	admin := testutil.CreateUser(t, env.UserRepo, "admin", adminPassword, true)
	return &testApp{Env: env, server: server, admin: admin, token: getToken(t, admin)}
}

type httpErr struct {
	Error string `json:"error"`
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

func newUploadRequest(t *testing.T, path, token, field, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

// do serves the request and returns the recorder.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err, "getToken()")
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err, "marshallObj()")
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
