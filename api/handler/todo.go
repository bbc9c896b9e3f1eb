package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tickdone/backend/api/transport"
	"github.com/tickdone/backend/domain"
	"github.com/tickdone/backend/pkg/httpcontext"
	"github.com/tickdone/backend/repository"
	todoUC "github.com/tickdone/backend/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos
// @Tags todos
// @Router /api/v1/todos [get]
func (h *TodoHandler) GetTodos(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	filter := repository.TodoFilter{
		UserID: userID,
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.ListTodos(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todos)
}

// @Summary Create todo
// @Tags todos
// @Router /api/v1/todos [post]
func (h *TodoHandler) CreateTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TodoCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	remindAt, err := transport.ParseRemindAt(req.RemindAt)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	todo := &domain.Todo{
		UserID:    userID,
		Title:     req.Title,
		Completed: req.Completed,
		RemindAt:  remindAt,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTodo(stdCtx, todo)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update todo
// @Tags todos
// @Router /api/v1/todos/{id} [put]
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id", nil))
		return
	}

	var req transport.TodoUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.PatchTodo(stdCtx, userID, id, req.Patch())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete todo
// @Tags todos
// @Router /api/v1/todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTodo(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *TodoHandler) userID(ctx *fasthttp.RequestCtx) string {
	userID := string(ctx.Request.Header.Peek("X-User-ID"))
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
	}
	return userID
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
