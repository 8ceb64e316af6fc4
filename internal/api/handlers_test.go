// internal/api/handlers_test.go
package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"mentoloop-waitlist/internal/common/database"
	"mentoloop-waitlist/internal/common/logger"
	"mentoloop-waitlist/internal/mailer"
	"mentoloop-waitlist/internal/notification"
	"mentoloop-waitlist/internal/waitlist"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.failFor != nil {
		if err, ok := m.failFor[msg.To]; ok {
			return err
		}
	}
	return nil
}

func (m *recordingMailer) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type serverFixture struct {
	server *Server
	mock   sqlmock.Sqlmock
	mailer *recordingMailer
}

func newTestServer(t *testing.T) *serverFixture {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	store := waitlist.NewStore(&database.PostgresClient{DB: db}, nil, log)
	rm := &recordingMailer{}
	dispatcher := notification.NewDispatcher(notification.Options{
		Mailer:          rm,
		OperatorAddress: "admin@mentoloop.com",
		Logger:          log,
	})

	return &serverFixture{
		server: NewServer(store, dispatcher, nil, log),
		mock:   mock,
		mailer: rm,
	}
}

// newUnconfiguredServer has no database and no email provider wired in.
func newUnconfiguredServer(t *testing.T) (*Server, *recordingMailer) {
	log := logger.NewTestLogger(t)
	store := waitlist.NewStore(&database.PostgresClient{}, nil, log)
	rm := &recordingMailer{}
	dispatcher := notification.NewDispatcher(notification.Options{
		Mailer:          nil,
		OperatorAddress: "admin@mentoloop.com",
		Logger:          log,
	})
	return NewServer(store, dispatcher, nil, log), rm
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"fullName":" jane DOE ","email":"Jane@Example.COM","role":"student"}`

// ==========================
// Waitlist Endpoint Tests
// ==========================

func TestWaitlistSubmit_Success(t *testing.T) {
	f := newTestServer(t)
	f.mock.ExpectExec(`INSERT INTO waitlist`).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "jane@example.com", "student", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/waitlist", validBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), "Welcome to MentoLoop, Jane Doe!")
	assert.Equal(t, 2, f.mailer.sendCount(), "welcome and operator alert sent")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestWaitlistSubmit_DuplicateEmail(t *testing.T) {
	f := newTestServer(t)
	f.mock.ExpectExec(`INSERT INTO waitlist`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "waitlist_email_unique"})

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/waitlist", validBody)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "This email is already registered for our waitlist.")
	assert.Equal(t, 0, f.mailer.sendCount(), "duplicates must not notify")
}

func TestWaitlistSubmit_ValidationErrors(t *testing.T) {
	f := newTestServer(t)

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/waitlist",
		`{"fullName":"John123","email":"not-an-email","role":"student"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name contains invalid characters")
	assert.Contains(t, rec.Body.String(), "Please enter a valid email address")
	assert.Equal(t, 0, f.mailer.sendCount())
}

func TestWaitlistSubmit_StoreUnavailable(t *testing.T) {
	f := newTestServer(t)
	f.mock.ExpectExec(`INSERT INTO waitlist`).
		WillReturnError(errors.New("pq: connection refused"))

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/waitlist", validBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to join waitlist. Please try again.")
	assert.NotContains(t, rec.Body.String(), "pq:", "internal detail must not leak")
}

func TestWaitlistSubmit_UnconfiguredStore(t *testing.T) {
	s, _ := newUnconfiguredServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/waitlist", validBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to join waitlist. Please try again.")
}

func TestWaitlistSubmit_MethodNotAllowed(t *testing.T) {
	f := newTestServer(t)

	rec := doJSON(t, f.server.Handler(), http.MethodPut, "/api/waitlist", validBody)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method not allowed")
}

func TestWaitlistSubmit_CORSPreflight(t *testing.T) {
	f := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/waitlist", nil)
	req.Header.Set("Origin", "https://mentoloop.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// ==========================
// Email Exists Tests
// ==========================

func TestEmailExists_Found(t *testing.T) {
	f := newTestServer(t)
	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	f.mock.ExpectQuery(`SELECT EXISTS`).WithArgs("jane@example.com").WillReturnRows(rows)

	rec := doJSON(t, f.server.Handler(), http.MethodGet, "/api/waitlist/exists?email=jane@example.com", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exists":true`)
}

func TestEmailExists_UnconfiguredIsFalse(t *testing.T) {
	s, _ := newUnconfiguredServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/waitlist/exists?email=jane@example.com", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exists":false`)
}

// ==========================
// Send Email Endpoint Tests
// ==========================

func TestSendEmail_EmptyBody(t *testing.T) {
	f := newTestServer(t)

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/send-email", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body is required")
}

func TestSendEmail_MissingFields(t *testing.T) {
	f := newTestServer(t)

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/send-email",
		`{"fullName":"Jane Doe"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields")
	assert.Equal(t, 0, f.mailer.sendCount())
}

func TestSendEmail_UnconfiguredProviderAdvisorySuccess(t *testing.T) {
	s, rm := newUnconfiguredServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/send-email", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), "Email service not configured")
	assert.Equal(t, 0, rm.sendCount(), "no outbound calls without a provider")
}

func TestSendEmail_UnconfiguredShortCircuitsBeforeBodyChecks(t *testing.T) {
	s, rm := newUnconfiguredServer(t)

	// the advisory wins even over a missing body
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/send-email", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email service not configured")
	assert.Equal(t, 0, rm.sendCount())
}

func TestSendEmail_DoesNotValidateFieldContent(t *testing.T) {
	f := newTestServer(t)

	// presence-only checks: a name the signup pipeline would reject is sent
	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/send-email",
		`{"fullName":"John123","email":"john@example.com","role":"director"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Equal(t, 2, f.mailer.sendCount())
}

func TestSendEmail_Success(t *testing.T) {
	f := newTestServer(t)

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/send-email", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Equal(t, 2, f.mailer.sendCount())
}

func TestSendEmail_WelcomeFailureIs500(t *testing.T) {
	f := newTestServer(t)
	f.mailer.failFor = map[string]error{"jane@example.com": errors.New("sendgrid API error: 500")}

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/send-email", validBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to send welcome email")
}

func TestSendEmail_OperatorFailureStill200(t *testing.T) {
	f := newTestServer(t)
	f.mailer.failFor = map[string]error{"admin@mentoloop.com": errors.New("sendgrid API error: 500")}

	rec := doJSON(t, f.server.Handler(), http.MethodPost, "/api/send-email", validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

// ==========================
// Health Tests
// ==========================

func TestHealth_ReportsComponentState(t *testing.T) {
	s, _ := newUnconfiguredServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":false`)
	assert.Contains(t, rec.Body.String(), `"email":false`)
}
