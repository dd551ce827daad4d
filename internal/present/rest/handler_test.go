package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/retracehq/retrace"
	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/infra/repository"
	"github.com/retracehq/retrace/internal/present/rest/middleware"
	"github.com/retracehq/retrace/internal/service"
	"github.com/retracehq/retrace/internal/usecase"
)

// --- mocks ---

type mockWorkspaceRepo struct {
	workspaces map[string]domain.Workspace
}

func (m *mockWorkspaceRepo) Create(ctx context.Context, ws domain.Workspace) error {
	m.workspaces[ws.ID] = ws
	return nil
}
func (m *mockWorkspaceRepo) Get(ctx context.Context, id string) (domain.Workspace, error) {
	ws, ok := m.workspaces[id]
	if !ok {
		return domain.Workspace{}, domain.ErrWorkspaceNotFound
	}
	return ws, nil
}
func (m *mockWorkspaceRepo) GetByName(ctx context.Context, name string) (domain.Workspace, error) {
	for _, ws := range m.workspaces {
		if ws.Name == name {
			return ws, nil
		}
	}
	return domain.Workspace{}, domain.ErrWorkspaceNotFound
}
func (m *mockWorkspaceRepo) List(ctx context.Context) ([]domain.Workspace, error) {
	var result []domain.Workspace
	for _, ws := range m.workspaces {
		result = append(result, ws)
	}
	return result, nil
}
func (m *mockWorkspaceRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.workspaces[id]
	return ok, nil
}
func (m *mockWorkspaceRepo) Update(ctx context.Context, ws domain.Workspace) error {
	m.workspaces[ws.ID] = ws
	return nil
}
func (m *mockWorkspaceRepo) Delete(ctx context.Context, id string) error {
	delete(m.workspaces, id)
	return nil
}

type mockRecordRepo struct {
	signatures map[string][]retrace.SignatureEntry
}

func (m *mockRecordRepo) InsertBatch(ctx context.Context, workspaceID string, entries []retrace.OriginRecord) ([]repository.StoredRecord, error) {
	var stored []repository.StoredRecord
	for _, entry := range entries {
		for _, cor := range entry.Cors {
			m.signatures[workspaceID] = append(m.signatures[workspaceID], retrace.SignatureEntry{
				Signature: cor.Signature,
				Order:     cor.Order,
				Path:      entry.Path,
			})
		}
		stored = append(stored, repository.StoredRecord{ID: "rec", Path: entry.Path, Lines: len(entry.Cors)})
	}
	return stored, nil
}
func (m *mockRecordRepo) ListSignatures(ctx context.Context, workspaceID string) ([]retrace.SignatureEntry, error) {
	return m.signatures[workspaceID], nil
}

type mockTokenRepo struct{}

func (m *mockTokenRepo) Create(ctx context.Context, token domain.AccessToken, tokenHash string) error {
	return nil
}
func (m *mockTokenRepo) List(ctx context.Context, workspaceID string) ([]domain.AccessToken, error) {
	return nil, nil
}
func (m *mockTokenRepo) Revoke(ctx context.Context, workspaceID, tokenID string) (string, error) {
	return "", domain.ErrTokenNotFound
}

type mockTokenStore struct {
	tokens map[string]domain.AccessToken
}

func (m *mockTokenStore) GetByHash(ctx context.Context, tokenHash string) (domain.AccessToken, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return domain.AccessToken{}, domain.ErrTokenNotFound
	}
	return token, nil
}
func (m *mockTokenStore) TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error {
	return nil
}

// --- fixture ---

type fixture struct {
	e       *echo.Echo
	records *mockRecordRepo
	authMw  *middleware.AuthMiddleware
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	workspaces := &mockWorkspaceRepo{workspaces: map[string]domain.Workspace{
		"wsA": {ID: "wsA", Name: "alpha", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		"wsB": {ID: "wsB", Name: "beta", CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}}
	records := &mockRecordRepo{signatures: map[string][]retrace.SignatureEntry{}}

	tokenStore := &mockTokenStore{tokens: map[string]domain.AccessToken{
		domain.HashToken("rt_tokenA"): {ID: "tokA", WorkspaceID: "wsA"},
		domain.HashToken("rt_revoked"): {ID: "tokR", WorkspaceID: "wsA", IsRevoked: true},
	}}

	auth := service.NewAuthService(tokenStore, nil)
	authMw := middleware.NewAuthMiddleware(auth, "")

	h := NewHandler(
		usecase.NewWorkspaceUsecase(workspaces),
		usecase.NewTokenUsecase(&mockTokenRepo{}, workspaces, nil),
		usecase.NewRecordUsecase(records, workspaces, nil),
		nil,
		nil,
	)

	e := echo.New()
	h.RegisterRoutes(e, authMw)

	return &fixture{e: e, records: records, authMw: authMw}
}

func (f *fixture) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	f.e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestRecordEndpoint(t *testing.T) {
	f := newFixture(t)

	body := retrace.RecordRequest{Entries: []retrace.OriginRecord{{
		Path: "a.ts",
		Cors: []retrace.Cor{
			{Signature: retrace.CodeSignature("x"), Order: 0},
			{Signature: retrace.CodeSignature("y"), Order: 1},
		},
	}}}

	res := f.do(http.MethodPost, "/api/v1/workspaces/wsA/records", "rt_tokenA", body)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var resp retrace.RecordResponse
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.OK {
		t.Fatalf("expected ok response, got %+v", resp)
	}
	if len(f.records.signatures["wsA"]) != 2 {
		t.Fatalf("expected 2 stored signatures, got %d", len(f.records.signatures["wsA"]))
	}
}

func TestRecordRejectsMissingToken(t *testing.T) {
	f := newFixture(t)

	res := f.do(http.MethodPost, "/api/v1/workspaces/wsA/records", "", retrace.RecordRequest{})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
}

func TestCrossTenantIsolation(t *testing.T) {
	f := newFixture(t)

	// a token scoped to wsA must get a 403 on wsB, not empty data
	res := f.do(http.MethodGet, "/api/v1/workspaces/wsB/signatures", "rt_tokenA", nil)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d: %s", res.Code, res.Body.String())
	}
}

func TestRevokedTokenRejected(t *testing.T) {
	f := newFixture(t)

	res := f.do(http.MethodGet, "/api/v1/workspaces/wsA/signatures", "rt_revoked", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
}

func TestRecordRejectsMalformedEntry(t *testing.T) {
	f := newFixture(t)

	body := retrace.RecordRequest{Entries: []retrace.OriginRecord{{
		Path: "a.ts",
		Cors: []retrace.Cor{{Signature: "not-a-signature", Order: 0}},
	}}}
	res := f.do(http.MethodPost, "/api/v1/workspaces/wsA/records", "rt_tokenA", body)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestSignaturesEmptyWorkspace(t *testing.T) {
	f := newFixture(t)

	res := f.do(http.MethodGet, "/api/v1/workspaces/wsA/signatures", "rt_tokenA", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var entries []retrace.SignatureEntry
	if err := json.Unmarshal(res.Body.Bytes(), &entries); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %v", entries)
	}
}

func TestAuthMiddlewareExposesToken(t *testing.T) {
	f := newFixture(t)

	f.e.GET("/api/v1/workspaces/:id/whoami", func(c echo.Context) error {
		token, ok := middleware.TokenFromContext(c.Request().Context())
		if !ok {
			t.Fatal("authenticated request carries no token in context")
		}
		return c.JSON(http.StatusOK, echo.Map{"tokenId": token.ID})
	}, f.authMw.RequireWorkspaceToken)

	res := f.do(http.MethodGet, "/api/v1/workspaces/wsA/whoami", "rt_tokenA", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body["tokenId"] != "tokA" {
		t.Fatalf("tokenId = %q, want tokA", body["tokenId"])
	}
}

func TestWorkspaceCreate(t *testing.T) {
	f := newFixture(t)

	res := f.do(http.MethodPost, "/api/v1/workspaces", "", map[string]string{"name": "proj"})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}
}
