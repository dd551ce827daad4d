package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/retracehq/retrace"
	"github.com/retracehq/retrace/internal/domain"
	"github.com/retracehq/retrace/internal/present/rest/middleware"
	"github.com/retracehq/retrace/internal/present/rest/presenter"
	"github.com/retracehq/retrace/internal/service"
	"github.com/retracehq/retrace/internal/usecase"
)

type Handler struct {
	workspace *usecase.WorkspaceUsecase
	token     *usecase.TokenUsecase
	record    *usecase.RecordUsecase
	signal    *service.SignalService
	ping      func(ctx context.Context) error
}

func NewHandler(
	workspace *usecase.WorkspaceUsecase,
	token *usecase.TokenUsecase,
	record *usecase.RecordUsecase,
	signal *service.SignalService,
	ping func(ctx context.Context) error,
) *Handler {
	return &Handler{
		workspace: workspace,
		token:     token,
		record:    record,
		signal:    signal,
		ping:      ping,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, auth *middleware.AuthMiddleware) {
	e.GET("/health", h.handleHealth)

	admin := e.Group("/api/v1", auth.RequireAdminKey)
	admin.POST("/workspaces", h.handleWorkspaceCreate)
	admin.GET("/workspaces", h.handleWorkspaceList)
	admin.GET("/workspaces/:id", h.handleWorkspaceGet)
	admin.PATCH("/workspaces/:id", h.handleWorkspaceUpdate)
	admin.DELETE("/workspaces/:id", h.handleWorkspaceDelete)
	admin.POST("/workspaces/:id/tokens", h.handleTokenCreate)
	admin.GET("/workspaces/:id/tokens", h.handleTokenList)
	admin.DELETE("/workspaces/:id/tokens/:tokenId", h.handleTokenRevoke)

	scoped := e.Group("/api/v1", auth.RequireWorkspaceToken)
	scoped.POST("/workspaces/:id/records", h.handleRecord)
	scoped.GET("/workspaces/:id/signatures", h.handleSignatures)

	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	if h.ping != nil {
		if err := h.ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": err.Error()})
		}
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type workspaceRequest struct {
	Name       string `json:"name"`
	IsArchived *bool  `json:"isArchived,omitempty"`
}

func (h *Handler) handleWorkspaceCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req workspaceRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	ws, err := h.workspace.Create(ctx, req.Name)
	if err != nil {
		return presentDomainError(c, err)
	}
	return presenter.Created(c, toWireWorkspace(ws))
}

func (h *Handler) handleWorkspaceList(c echo.Context) error {
	ctx := c.Request().Context()

	// name= acts as an exact-match filter so clients can resolve an id.
	if name := c.QueryParam("name"); name != "" {
		ws, err := h.workspace.GetByName(ctx, name)
		if err != nil {
			return presentDomainError(c, err)
		}
		return presenter.OK(c, []retrace.Workspace{toWireWorkspace(ws)})
	}

	list, err := h.workspace.List(ctx)
	if err != nil {
		return presentDomainError(c, err)
	}
	result := make([]retrace.Workspace, 0, len(list))
	for _, ws := range list {
		result = append(result, toWireWorkspace(ws))
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleWorkspaceGet(c echo.Context) error {
	ws, err := h.workspace.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presentDomainError(c, err)
	}
	return presenter.OK(c, toWireWorkspace(ws))
}

func (h *Handler) handleWorkspaceUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req workspaceRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	id := c.Param("id")
	var (
		ws  domain.Workspace
		err error
	)
	switch {
	case req.Name != "":
		ws, err = h.workspace.Rename(ctx, id, req.Name)
	case req.IsArchived != nil:
		ws, err = h.workspace.SetArchived(ctx, id, *req.IsArchived)
	default:
		return presenter.BadRequestMessage(c, "nothing to update")
	}
	if err != nil {
		return presentDomainError(c, err)
	}
	return presenter.OK(c, toWireWorkspace(ws))
}

func (h *Handler) handleWorkspaceDelete(c echo.Context) error {
	if err := h.workspace.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return presentDomainError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "deleted"})
}

type tokenCreateRequest struct {
	Description string `json:"description"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"` // epoch milliseconds
}

func (h *Handler) handleTokenCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req tokenCreateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := time.UnixMilli(*req.ExpiresAt)
		expiresAt = &t
	}

	issued, err := h.token.Issue(ctx, c.Param("id"), req.Description, expiresAt)
	if err != nil {
		return presentDomainError(c, err)
	}

	wire := toWireToken(issued.Token)
	wire.Token = issued.RawValue // only returned here, never again
	return presenter.Created(c, wire)
}

func (h *Handler) handleTokenList(c echo.Context) error {
	tokens, err := h.token.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presentDomainError(c, err)
	}
	result := make([]retrace.AccessToken, 0, len(tokens))
	for _, token := range tokens {
		result = append(result, toWireToken(token))
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleTokenRevoke(c echo.Context) error {
	err := h.token.Revoke(c.Request().Context(), c.Param("id"), c.Param("tokenId"))
	if err != nil {
		return presentDomainError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "revoked"})
}

func (h *Handler) handleRecord(c echo.Context) error {
	ctx := c.Request().Context()

	var req retrace.RecordRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	for _, entry := range req.Entries {
		if entry.Path == "" {
			return presenter.BadRequestMessage(c, "entry path must not be empty")
		}
		for _, cor := range entry.Cors {
			if len(cor.Signature) != 64 {
				return presenter.BadRequestMessage(c, "entry "+entry.Path+" carries a malformed signature")
			}
		}
	}

	resp, err := h.record.Record(ctx, c.Param("id"), req.Entries)
	if err != nil {
		return presentDomainError(c, err)
	}

	// Audit trail: which token shipped this batch.
	if token, ok := middleware.TokenFromContext(ctx); ok {
		slog.DebugContext(ctx, "record batch accepted",
			slog.String("workspaceId", c.Param("id")),
			slog.String("tokenId", token.ID),
			slog.Int("entries", len(req.Entries)),
			slog.String("module", "record"),
		)
	}
	return presenter.OK(c, resp)
}

func (h *Handler) handleSignatures(c echo.Context) error {
	entries, err := h.record.ListSignatures(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presentDomainError(c, err)
	}
	if entries == nil {
		entries = []retrace.SignatureEntry{}
	}
	return presenter.OK(c, entries)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime stream not enabled")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	workspaceID := c.QueryParam("workspace")

	output := make(chan retrace.RecordEvent)
	go func() {
		h.signal.Listen(ctx, workspaceID, output)
		close(output)
	}()

	// Drain the read side to notice the peer going away; heartbeats are
	// any text message.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok && (wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
					return
				}
				slog.DebugContext(
					ctx, "WebSocket closed",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return
			}
		}
	}()

	for event := range output {
		if err := ws.WriteJSON(event); err != nil {
			slog.ErrorContext(
				ctx, "Error writing message",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
			return nil
		}
	}
	return nil
}

func presentDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		return presenter.NotFound(c, "workspace not found")
	case errors.Is(err, domain.ErrTokenNotFound):
		return presenter.NotFound(c, "token not found")
	case errors.Is(err, domain.ErrWorkspaceAlreadyExists):
		return presenter.Conflict(c, "workspace name already taken")
	case errors.Is(err, domain.ErrValidation):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func toWireWorkspace(ws domain.Workspace) retrace.Workspace {
	return retrace.Workspace{
		ID:         ws.ID,
		Name:       ws.Name,
		IsArchived: ws.IsArchived,
		CreatedAt:  ws.CreatedAt.UnixMilli(),
		UpdatedAt:  ws.UpdatedAt.UnixMilli(),
	}
}

func toWireToken(token domain.AccessToken) retrace.AccessToken {
	wire := retrace.AccessToken{
		ID:          token.ID,
		WorkspaceID: token.WorkspaceID,
		Prefix:      token.Prefix,
		Description: token.Description,
		CreatedAt:   token.CreatedAt.UnixMilli(),
		IsRevoked:   token.IsRevoked,
	}
	if token.LastUsedAt != nil {
		ms := token.LastUsedAt.UnixMilli()
		wire.LastUsedAt = &ms
	}
	if token.ExpiresAt != nil {
		ms := token.ExpiresAt.UnixMilli()
		wire.ExpiresAt = &ms
	}
	return wire
}
