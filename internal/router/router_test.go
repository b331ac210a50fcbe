package router

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskstore/api/handler"
	"github.com/fastygo/taskstore/domain"
	boltInfra "github.com/fastygo/taskstore/internal/infrastructure/bolt"
	"github.com/fastygo/taskstore/internal/infrastructure/monitor"
	"github.com/fastygo/taskstore/internal/middleware"
	"github.com/fastygo/taskstore/mapper"
	"github.com/fastygo/taskstore/pkg/httpcontext"
	"github.com/fastygo/taskstore/pkg/validation"
	boltRepo "github.com/fastygo/taskstore/repository/bolt"
	taskUC "github.com/fastygo/taskstore/usecase/task"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "tasks.db"), "task_management")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := boltRepo.NewTaskRepository(db, "task_management")
	ids := mapper.UUIDGenerator{}
	uc := taskUC.New(repo, mapper.New(ids), ids, nil)
	adapter := httpcontext.NewAdapter(context.Background(), time.Second)

	mon := monitor.New(repo, "bolt", time.Hour, nil)
	mon.Refresh()

	r := New(Handlers{
		Task:   apiHandler.NewTaskHandler(apiHandler.NewDispatcher(uc, validation.New(), nil), uc, adapter, nil),
		Health: apiHandler.NewHealthHandler(mon, adapter, nil),
	}, middleware.JWTAuth("", "", nil))
	return r.Handler
}

func do(t *testing.T, h fasthttp.RequestHandler, method, uri, body string) (int, envelope, *fasthttp.RequestCtx) {
	t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	h(ctx)

	var env envelope
	if len(ctx.Response.Body()) > 0 {
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	}
	return ctx.Response.StatusCode(), env, ctx
}

func TestTaskLifecycle(t *testing.T) {
	h := newServer(t)
	deadline := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	deadlineStr := domain.FormatDeadline(deadline)

	status, env, ctx := do(t, h, http.MethodPost, "/tasks",
		`{"title":"Ship release","priority":"HIGH","deadline":"`+deadlineStr+`","labels":["work"],"subTasks":[{"title":"tag"},{"title":"notes","completed":true}]}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.NotEmpty(t, ctx.Response.Header.Peek(httpcontext.HeaderRequestID))

	var created domain.TaskRead
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, 50.0, created.Progress.ProgressPercentage)
	assert.Equal(t, int64(1), created.Metadata.Version)
	for _, st := range created.SubTasks {
		assert.Contains(t, st.ID, mapper.SubTaskIDPrefix)
	}

	status, env, _ = do(t, h, http.MethodGet, "/tasks/"+created.ID+"/"+deadlineStr, "")
	require.Equal(t, http.StatusOK, status)

	status, _, _ = do(t, h, http.MethodPut, "/tasks/"+created.ID,
		`{"id":"`+created.ID+`","title":"Ship release 2","priority":"LOW","status":"COMPLETED"}`)
	require.Equal(t, http.StatusOK, status)

	status, env, _ = do(t, h, http.MethodGet, "/tasks?priority=LOW", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env, _ = do(t, h, http.MethodGet, "/tasks?priority=LOW&includeCompleted=true", "")
	require.Equal(t, http.StatusOK, status)
	var found []domain.TaskRead
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Ship release 2", found[0].Title)
	assert.Equal(t, int64(2), found[0].Metadata.Version)

	status, _, ctx = do(t, h, http.MethodDelete, "/tasks/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, ctx.Response.Body())

	status, env, _ = do(t, h, http.MethodGet, "/tasks/"+created.ID+"/"+deadlineStr, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, env.Message, created.ID)
}

func TestRoutes_Errors(t *testing.T) {
	h := newServer(t)

	status, env, _ := do(t, h, http.MethodPatch, "/tasks/abc", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", env.Message)

	status, env, _ = do(t, h, http.MethodGet, "/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Task_ID and Deadline is required", env.Message)

	status, env, _ = do(t, h, http.MethodPost, "/tasks", "{broken")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", env.Message)

	status, env, _ = do(t, h, http.MethodGet, "/tasks?status=DONE", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Unknown status [DONE]", env.Message)

	status, _, _ = do(t, h, http.MethodDelete, "/tasks/abc/2030-01-01T00:00:00Z", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRoutes_UnservedVerbsWriteNothing(t *testing.T) {
	h := newServer(t)

	cases := []struct {
		method string
		uri    string
	}{
		{http.MethodPost, "/tasks/abc"},
		{http.MethodPut, "/tasks/abc/2030-01-01T00:00:00Z"},
		{http.MethodPatch, "/tasks"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.uri, func(t *testing.T) {
			status, env, _ := do(t, h, tc.method, tc.uri, `{"title":"stray","priority":"LOW"}`)
			assert.Equal(t, http.StatusMethodNotAllowed, status)
			assert.Equal(t, "Method not allowed", env.Message)
		})
	}

	status, env, _ := do(t, h, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRoutes_OptionsCarriesCORS(t *testing.T) {
	h := newServer(t)

	status, env, ctx := do(t, h, http.MethodOptions, "/tasks", "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", env.Message)
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Allow")), http.MethodGet)
}
