package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskstore/api/transport"
	"github.com/fastygo/taskstore/domain"
	"github.com/fastygo/taskstore/pkg/httpcontext"
)

// TaskQueries covers the routes served outside the dispatcher.
type TaskQueries interface {
	List(ctx context.Context) ([]domain.TaskRead, error)
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.TaskRead, error)
	DeleteByKey(ctx context.Context, id string, deadline time.Time) error
}

// TaskHandler adapts fasthttp requests onto the dispatcher.
type TaskHandler struct {
	baseHandler
	dispatcher *Dispatcher
	queries    TaskQueries
}

func NewTaskHandler(dispatcher *Dispatcher, queries TaskQueries, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
		queries:     queries,
	}
}

// Dispatch serves POST /tasks, GET /tasks/{taskId}/{deadline}, PUT and DELETE
// /tasks/{taskId}.
func (h *TaskHandler) Dispatch(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.write(ctx, h.dispatcher.Dispatch(stdCtx, toRequest(ctx)))
}

// @Summary List or search tasks
// @Tags tasks
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	criteria, filtered, err := parseCriteria(ctx.QueryArgs())
	if err != nil {
		h.fail(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var tasks []domain.TaskRead
	if filtered {
		tasks, err = h.queries.Search(stdCtx, criteria)
	} else {
		tasks, err = h.queries.List(stdCtx)
	}
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.respond(ctx, http.StatusOK, "", tasks)
}

// @Summary Delete one task row by composite key
// @Tags tasks
// @Router /tasks/{taskId}/{deadline} [delete]
func (h *TaskHandler) DeleteTaskRow(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue(transport.ParamTaskID).(string)
	raw, _ := ctx.UserValue(transport.ParamDeadline).(string)
	if strings.TrimSpace(id) == "" || strings.TrimSpace(raw) == "" {
		h.fail(ctx, domain.NewError(domain.ErrCodeInvalid, msgKeyRequired))
		return
	}
	deadline, err := domain.ParseDeadline(raw)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.queries.DeleteByKey(stdCtx, id, deadline); err != nil {
		h.fail(ctx, err)
		return
	}
	h.respond(ctx, http.StatusNoContent, "", nil)
}

// MethodNotAllowed answers a verb the matched task path does not serve.
func (h *TaskHandler) MethodNotAllowed(ctx *fasthttp.RequestCtx) {
	h.write(ctx, transport.NewResponse(http.StatusMethodNotAllowed, domain.ErrMethodNotAllowed.Message, nil))
}

func (h *TaskHandler) fail(ctx *fasthttp.RequestCtx, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("task query failed", zap.Error(err))
	}
	h.respond(ctx, status, message, nil)
}

func toRequest(ctx *fasthttp.RequestCtx) transport.Request {
	req := transport.Request{
		Verb:       string(ctx.Method()),
		PathParams: map[string]string{},
	}
	for _, name := range []string{transport.ParamTaskID, transport.ParamDeadline} {
		if value, ok := ctx.UserValue(name).(string); ok {
			req.PathParams[name] = value
		}
	}
	if body := ctx.PostBody(); len(body) > 0 {
		s := string(body)
		req.Body = &s
	}
	return req
}

// parseCriteria reads search filters from the query string. filtered is false
// when no filter argument is present.
func parseCriteria(args *fasthttp.Args) (domain.SearchCriteria, bool, error) {
	var criteria domain.SearchCriteria
	filtered := false

	for _, raw := range splitArgs(args, "status") {
		status := domain.TaskStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return criteria, false, domain.NewError(domain.ErrCodeInvalid, "Unknown status ["+raw+"]")
		}
		criteria.Statuses = append(criteria.Statuses, status)
		filtered = true
	}
	for _, raw := range splitArgs(args, "priority") {
		priority := domain.Priority(strings.ToUpper(raw))
		if !priority.Valid() {
			return criteria, false, domain.NewError(domain.ErrCodeInvalid, "Unknown priority ["+raw+"]")
		}
		criteria.Priorities = append(criteria.Priorities, priority)
		filtered = true
	}
	if labels := splitArgs(args, "label"); len(labels) > 0 {
		criteria.Labels = labels
		filtered = true
	}
	if assignee := strings.TrimSpace(string(args.Peek("assignee"))); assignee != "" {
		criteria.Assignee = assignee
		filtered = true
	}

	var dateRange domain.DateRange
	for name, dst := range map[string]*time.Time{"from": &dateRange.From, "to": &dateRange.To} {
		raw := strings.TrimSpace(string(args.Peek(name)))
		if raw == "" {
			continue
		}
		parsed, err := domain.ParseDeadline(raw)
		if err != nil {
			return criteria, false, domain.WrapError(domain.ErrCodeInvalid, "Invalid "+name+" date ["+raw+"]", err)
		}
		*dst = parsed
	}
	if !dateRange.From.IsZero() || !dateRange.To.IsZero() {
		criteria.DateRange = &dateRange
		filtered = true
	}

	if raw := string(args.Peek("includeCompleted")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return criteria, false, domain.WrapError(domain.ErrCodeInvalid, "Invalid includeCompleted ["+raw+"]", err)
		}
		criteria.IncludeCompleted = include
		filtered = true
	}

	return criteria, filtered, nil
}

// splitArgs collects repeated and comma-separated values of a query argument.
func splitArgs(args *fasthttp.Args, name string) []string {
	var out []string
	for _, value := range args.PeekMulti(name) {
		for _, part := range strings.Split(string(value), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
