package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskstore/api/transport"
	"github.com/fastygo/taskstore/domain"
	appLogger "github.com/fastygo/taskstore/pkg/logger"
)

const (
	msgKeyRequired   = "Task_ID and Deadline is required"
	msgIDMismatch    = "ID in URL does not match ID in the payload"
	msgInternalError = "Internal server error"
)

var (
	errMissingVerb = errors.New("request has no verb")
	errMissingBody = errors.New("request has no body")
)

// TaskService is the subset of the task use case the dispatcher routes to.
type TaskService interface {
	Create(ctx context.Context, create domain.TaskCreate) (*domain.TaskRead, error)
	GetByKey(ctx context.Context, id string, deadline time.Time) (*domain.TaskRead, error)
	Update(ctx context.Context, update domain.TaskUpdate) (*domain.TaskRead, error)
	Delete(ctx context.Context, id string) error
}

// Validator reports constraint violations of an inbound record.
type Validator interface {
	Validate(record interface{}) []string
}

// Dispatcher routes a request envelope by verb and classifies every failure
// into a status code. It is the only place errors become statuses.
type Dispatcher struct {
	tasks     TaskService
	validator Validator
	logger    *zap.Logger
}

func NewDispatcher(tasks TaskService, validator Validator, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{tasks: tasks, validator: validator, logger: logger}
}

// Dispatch never fails: every outcome is a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req transport.Request) transport.Response {
	log := appLogger.WithRequestID(ctx, d.logger).With(zap.String("verb", req.Verb))
	log.Info("processing task request")

	var (
		resp transport.Response
		err  error
	)
	switch req.Verb {
	case "":
		err = errMissingVerb
	case http.MethodPost:
		resp, err = d.create(ctx, req)
	case http.MethodGet:
		resp, err = d.get(ctx, req)
	case http.MethodPut:
		resp, err = d.update(ctx, req)
	case http.MethodDelete:
		resp, err = d.delete(ctx, req)
	default:
		err = domain.ErrMethodNotAllowed
	}

	if err != nil {
		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("task request failed", zap.Error(err))
		} else {
			log.Warn("task request rejected", zap.Int("status", status), zap.Error(err))
		}
		return transport.NewResponse(status, message, nil)
	}
	return resp
}

func (d *Dispatcher) create(ctx context.Context, req transport.Request) (transport.Response, error) {
	var create domain.TaskCreate
	if err := decodeBody(req, &create); err != nil {
		return transport.Response{}, err
	}
	if err := d.validate(create); err != nil {
		return transport.Response{}, err
	}

	created, err := d.tasks.Create(ctx, create)
	if err != nil {
		return transport.Response{}, err
	}
	return transport.NewResponse(http.StatusCreated, "", created), nil
}

func (d *Dispatcher) get(ctx context.Context, req transport.Request) (transport.Response, error) {
	id, okID := req.PathParam(transport.ParamTaskID)
	raw, okDeadline := req.PathParam(transport.ParamDeadline)
	if !okID || !okDeadline {
		return transport.Response{}, domain.NewError(domain.ErrCodeInvalid, msgKeyRequired)
	}

	deadline, err := domain.ParseDeadline(raw)
	if err != nil {
		return transport.Response{}, err
	}

	read, err := d.tasks.GetByKey(ctx, id, deadline)
	if err != nil {
		return transport.Response{}, err
	}
	return transport.NewResponse(http.StatusOK, "", read), nil
}

func (d *Dispatcher) update(ctx context.Context, req transport.Request) (transport.Response, error) {
	id, ok := req.PathParam(transport.ParamTaskID)
	if !ok {
		return transport.Response{}, domain.NewError(domain.ErrCodeInvalid, msgKeyRequired)
	}

	var update domain.TaskUpdate
	if err := decodeBody(req, &update); err != nil {
		return transport.Response{}, err
	}
	if err := d.validate(update); err != nil {
		return transport.Response{}, err
	}
	if id != update.ID {
		return transport.Response{}, domain.NewError(domain.ErrCodeInvalid, msgIDMismatch)
	}

	updated, err := d.tasks.Update(ctx, update)
	if err != nil {
		return transport.Response{}, err
	}
	return transport.NewResponse(http.StatusOK, "", updated), nil
}

func (d *Dispatcher) delete(ctx context.Context, req transport.Request) (transport.Response, error) {
	id, ok := req.PathParam(transport.ParamTaskID)
	if !ok {
		return transport.Response{}, domain.NewError(domain.ErrCodeInvalid, msgKeyRequired)
	}
	if err := d.tasks.Delete(ctx, id); err != nil {
		return transport.Response{}, err
	}
	return transport.NewResponse(http.StatusNoContent, "", nil), nil
}

func (d *Dispatcher) validate(record interface{}) error {
	if d.validator == nil {
		return nil
	}
	if violations := d.validator.Validate(record); len(violations) > 0 {
		return domain.ValidationFailure(violations)
	}
	return nil
}

func decodeBody(req transport.Request, dst interface{}) error {
	if req.Body == nil {
		return errMissingBody
	}
	return json.Unmarshal([]byte(*req.Body), dst)
}

// classify maps a failure to its status and client-facing message.
func classify(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeRepository):
		return http.StatusBadRequest, domain.MessageOf(err)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, domain.MessageOf(err)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, domain.MessageOf(err)
	case domain.IsDomainError(err, domain.ErrCodeMethodNotAllowed):
		return http.StatusMethodNotAllowed, domain.MessageOf(err)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, domain.MessageOf(err)
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}
