package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/gym-platform/internal/api/http"
	"github.com/spec-kit/gym-platform/internal/api/http/handlers"
	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/observability"
	"github.com/spec-kit/gym-platform/internal/service"
	apperrors "github.com/spec-kit/gym-platform/pkg/util"
)

type stubMembers struct{}

func (stubMembers) Create(_ context.Context, _ *domain.Member) error { return nil }

func (stubMembers) GetByID(_ context.Context, id string) (*domain.Member, error) {
	if id == "u1" {
		return &domain.Member{ID: "u1", Name: "Alice", Email: "alice@example.com"}, nil
	}
	return nil, pgx.ErrNoRows
}

func (stubMembers) GetByEmail(_ context.Context, _ string) (*domain.Member, error) {
	return nil, pgx.ErrNoRows
}

type stubOperators struct{}

func (stubOperators) Create(_ context.Context, _ *domain.Operator) error { return nil }

func (stubOperators) GetByID(_ context.Context, id string) (*domain.Operator, error) {
	if id == "op1" {
		return &domain.Operator{ID: "op1", Name: "Bob", Active: true}, nil
	}
	return nil, pgx.ErrNoRows
}

func (stubOperators) GetByEmail(_ context.Context, _ string) (*domain.Operator, error) {
	return nil, pgx.ErrNoRows
}

type stubNotifications struct {
	created []domain.Recipient
	deleted []string
	listCtx context.Context
}

func (s *stubNotifications) Create(_ context.Context, recipient domain.Recipient, input service.CreateNotificationInput) (*domain.Notification, error) {
	s.created = append(s.created, recipient)
	return &domain.Notification{
		ID:        "n1",
		Recipient: recipient,
		Title:     input.Title,
		Message:   input.Message,
		Category:  domain.CategoryNeutral,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *stubNotifications) List(ctx context.Context, recipient domain.Recipient, _ int) ([]*domain.Notification, int64, error) {
	s.listCtx = ctx
	return []*domain.Notification{{
		ID:        "n1",
		Recipient: recipient,
		Title:     "Payment received",
		Category:  domain.CategorySuccess,
		CreatedAt: time.Now().UTC(),
	}}, 1, nil
}

func (s *stubNotifications) MarkRead(_ context.Context, id string, requester domain.Recipient) (*domain.Notification, error) {
	return &domain.Notification{ID: id, Recipient: requester, Title: "x", IsRead: true, CreatedAt: time.Now().UTC()}, nil
}

func (s *stubNotifications) MarkAllRead(_ context.Context, _ domain.Recipient) (int64, error) {
	return 2, nil
}

func (s *stubNotifications) Delete(_ context.Context, id string, _ domain.Recipient) error {
	for _, prior := range s.deleted {
		if prior == id {
			return apperrors.NewNotFound("notification", nil)
		}
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *auth.TokenManager, *stubNotifications) {
	t.Helper()
	return newTestAppWithTimeout(t, 0)
}

func newTestAppWithTimeout(t *testing.T, timeout time.Duration) (*fiber.App, *auth.TokenManager, *stubNotifications) {
	t.Helper()

	tm := auth.NewTokenManager("test-secret", time.Hour)
	resolver := auth.NewResolver(tm, stubMembers{}, stubOperators{}, auth.CookieNames{
		Member:   "member_session",
		Operator: "operator_session",
	})
	notifications := &stubNotifications{}

	app := fiber.New()
	logger := zap.NewNop()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), timeout)

	middleware := auth.NewMiddleware(resolver)
	handler := handlers.NewNotificationsHandler(notifications)

	member := app.Group("/member/notifications", middleware.RequireMember())
	member.Get("/", handler.List)
	member.Put("/read-all", handler.ReadAll)
	member.Put("/:id/read", handler.Read)
	member.Delete("/:id", handler.Delete)

	operator := app.Group("/operator/notifications", middleware.RequireOperator())
	operator.Post("/", handler.Create)

	return app, tm, notifications
}

func memberCookie(t *testing.T, tm *auth.TokenManager, subject string) *http.Cookie {
	t.Helper()
	token, _, err := tm.GenerateToken(subject, domain.RoleMember)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return &http.Cookie{Name: "member_session", Value: token}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}

func TestListRequiresSession(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/member/notifications/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	errObj := body["error"].(map[string]any)
	if errObj["code"] != "AUTH_NO_TOKEN" {
		t.Errorf("code = %v, want AUTH_NO_TOKEN", errObj["code"])
	}
}

func TestListRejectsWrongNamespaceCookie(t *testing.T) {
	app, tm, _ := newTestApp(t)

	// An operator token on a member-scoped route fails closed.
	token, _, err := tm.GenerateToken("op1", domain.RoleOperator)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/member/notifications/", nil)
	req.AddCookie(&http.Cookie{Name: "operator_session", Value: token})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	errObj := decodeBody(t, resp)["error"].(map[string]any)
	if errObj["code"] != "AUTH_NO_TOKEN" {
		t.Errorf("code = %v, want AUTH_NO_TOKEN", errObj["code"])
	}
}

func TestListExpiredSession(t *testing.T) {
	app, _, _ := newTestApp(t)

	// Throwaway manager sharing the secret issues an immediately-stale token.
	shortTM := auth.NewTokenManager("test-secret", time.Nanosecond)
	token, _, err := shortTM.GenerateToken("u1", domain.RoleMember)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/member/notifications/", nil)
	req.AddCookie(&http.Cookie{Name: "member_session", Value: token})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	errObj := decodeBody(t, resp)["error"].(map[string]any)
	if errObj["code"] != "AUTH_EXPIRED" {
		t.Errorf("code = %v, want AUTH_EXPIRED", errObj["code"])
	}
}

func TestListReturnsNotificationsAndUnread(t *testing.T) {
	app, tm, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/member/notifications/", nil)
	req.AddCookie(memberCookie(t, tm, "u1"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Error("success != true")
	}
	if body["unreadCount"].(float64) != 1 {
		t.Errorf("unreadCount = %v, want 1", body["unreadCount"])
	}
	notifications := body["notifications"].([]any)
	if len(notifications) != 1 {
		t.Fatalf("notifications len = %d, want 1", len(notifications))
	}
	first := notifications[0].(map[string]any)
	if first["title"] != "Payment received" {
		t.Errorf("title = %v", first["title"])
	}
	if first["recipientRole"] != "member" || first["recipientId"] != "u1" {
		t.Errorf("recipient = %v/%v, want member/u1", first["recipientRole"], first["recipientId"])
	}
}

func TestRequestTimeoutReachesService(t *testing.T) {
	app, tm, notifications := newTestAppWithTimeout(t, 2*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/member/notifications/", nil)
	req.AddCookie(memberCookie(t, tm, "u1"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if notifications.listCtx == nil {
		t.Fatal("service never saw a context")
	}
	deadline, ok := notifications.listCtx.Deadline()
	if !ok {
		t.Fatal("service context carries no deadline")
	}
	if remaining := time.Until(deadline); remaining > 2*time.Second {
		t.Errorf("deadline %v away, want at most the configured timeout", remaining)
	}
}

func TestReadAllReportsModifiedCount(t *testing.T) {
	app, tm, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPut, "/member/notifications/read-all", nil)
	req.AddCookie(memberCookie(t, tm, "u1"))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["modifiedCount"].(float64) != 2 {
		t.Errorf("modifiedCount = %v, want 2", body["modifiedCount"])
	}
}

func TestDeleteTwice(t *testing.T) {
	app, tm, _ := newTestApp(t)

	for attempt, want := range []int{http.StatusOK, http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/member/notifications/n1", nil)
		req.AddCookie(memberCookie(t, tm, "u1"))

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != want {
			t.Fatalf("attempt %d status = %d, want %d", attempt+1, resp.StatusCode, want)
		}
	}
}

func TestOperatorCreate(t *testing.T) {
	app, tm, notifications := newTestApp(t)

	token, _, err := tm.GenerateToken("op1", domain.RoleOperator)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	payload := `{"recipientId":"u1","recipientRole":"member","title":"Maintenance","message":"Pool closed Friday","category":"NEUTRAL"}`
	req := httptest.NewRequest(http.MethodPost, "/operator/notifications/", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "operator_session", Value: token})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(notifications.created) != 1 {
		t.Fatalf("create calls = %d, want 1", len(notifications.created))
	}
	if got := notifications.created[0]; got.Role != domain.RoleMember || got.ID != "u1" {
		t.Errorf("created recipient = %+v, want member/u1", got)
	}
}
