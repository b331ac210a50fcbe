package handler

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskstore/api/transport"
	"github.com/fastygo/taskstore/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// write copies a transport response onto the fasthttp response.
func (h baseHandler) write(ctx *fasthttp.RequestCtx, resp transport.Response) {
	for name, value := range resp.Headers {
		ctx.Response.Header.Set(name, value)
	}
	ctx.SetStatusCode(resp.StatusCode)
	if resp.Body != "" {
		ctx.SetBodyString(resp.Body)
	}
}

func (h baseHandler) respond(ctx *fasthttp.RequestCtx, status int, message string, data interface{}) {
	h.write(ctx, transport.NewResponse(status, message, data))
}
