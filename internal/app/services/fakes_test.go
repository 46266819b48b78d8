package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/events"
)

var fixedNow = time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeTx runs the function inline and counts calls
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	f.calls++
	return fn(ctx)
}

type auditEntry struct {
	Action   string
	Entity   string
	EntityID int64
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) Record(ctx context.Context, action, entity string, entityID int64, details interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{Action: action, Entity: entity, EntityID: entityID})
}

func (f *fakeAudit) List(ctx context.Context, filter repositories.AuditLogFilter) (*dto.PaginatedResponse, error) {
	return nil, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, evs ...events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evs...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

type pushed struct {
	UserID    int64
	EventType string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
}

func (f *fakePusher) SendToUser(userID int64, eventType string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, pushed{UserID: userID, EventType: eventType})
}

type sentMail struct {
	Kind string
	To   string
	Body string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeEmail) record(kind, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{Kind: kind, To: to, Body: body})
	return nil
}

func (f *fakeEmail) SendOTPEmail(ctx context.Context, toEmail, toName, otp string, ttl time.Duration) error {
	return f.record("otp", toEmail, otp)
}

func (f *fakeEmail) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	return f.record("welcome", toEmail, toName)
}

func (f *fakeEmail) SendPasswordChangedEmail(ctx context.Context, toEmail, toName string) error {
	return f.record("password_changed", toEmail, toName)
}

func (f *fakeEmail) SendAttendanceShortageEmail(ctx context.Context, toEmail, toName, course string, percentage float64) error {
	return f.record("shortage", toEmail, course)
}

func (f *fakeEmail) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Kind)
	}
	return out
}

func newTestMailer(svc *fakeEmail) *Mailer {
	return NewMailer(svc, time.Second, zerolog.Nop())
}

func adminCtx() context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{UserID: 1, Email: "admin@unicampus.app", Roles: []string{models.RoleAdmin}})
}

func facultyCtx(userID int64) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{UserID: userID, Roles: []string{models.RoleFaculty}})
}

func studentCtx(userID int64) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{UserID: userID, Roles: []string{models.RoleStudent}})
}

func int64Ptr(v int64) *int64 { return &v }

func mustDate(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
