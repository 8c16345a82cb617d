package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chain-registry/internal/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messenger delivers a string message to a named method of a runtime object.
type Messenger interface {
	SendMessage(target, method, message string)
}

// StatusModel is the envelope of every callback.
type StatusModel struct {
	Status bool        `json:"status"`
	Data   interface{} `json:"data"`
}

// ResponseError is the data of a failed callback.
type ResponseError struct {
	Code    *int    `json:"code"`
	Message string  `json:"message"`
	Data    *string `json:"data"`
}

// CallError is an error carrying a vendor error code.
type CallError struct {
	Code    int
	Message string
	Data    string
}

func (e *CallError) Error() string {
	return e.Message
}

func responseFromError(err error) ResponseError {
	var callErr *CallError
	if errors.As(err, &callErr) {
		code := callErr.Code
		resp := ResponseError{Code: &code, Message: callErr.Message}
		if callErr.Data != "" {
			data := callErr.Data
			resp.Data = &data
		}
		return resp
	}
	return ResponseError{Message: err.Error()}
}

// CallbackMethod names the runtime method that receives the result of method,
// e.g. "signMessage" -> "SignMessageCallBack".
func CallbackMethod(method string) string {
	if method == "" {
		return "CallBack"
	}
	return strings.ToUpper(method[:1]) + method[1:] + "CallBack"
}

// Dispatcher turns asynchronous calls into exactly one callback message each.
type Dispatcher struct {
	messenger Messenger
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(messenger Messenger, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		logger:    logger.Named("BridgeDispatcher"),
	}
}

// Dispatch runs call in its own goroutine and posts its outcome to
// target.CallbackMethod(method). A panic in call is reported as a failure.
func (d *Dispatcher) Dispatch(ctx context.Context, target, method string, call func(context.Context) (interface{}, error)) {
	callID := uuid.NewString()
	logger := d.logger.With(zap.String("callId", callID), zap.String("method", method))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		result, err := d.run(ctx, call)
		status := StatusModel{Status: err == nil, Data: result}
		if err != nil {
			logger.Debug("Call failed", zap.Error(err))
			status.Data = responseFromError(err)
		}

		message, encErr := json.Marshal(status)
		if encErr != nil {
			logger.Error("Failed to encode callback", zap.Error(encErr))
			message, _ = json.Marshal(StatusModel{Data: ResponseError{Message: encErr.Error()}})
		}
		d.messenger.SendMessage(target, CallbackMethod(method), string(message))
		logger.Debug("Callback sent", zap.String("target", target))
	}()
}

func (d *Dispatcher) run(ctx context.Context, call func(context.Context) (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: call panicked: %v", apperrors.ErrInternal, r)
			d.logger.Error("Call panicked", zap.Any("panic", r))
		}
	}()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return call(ctx)
}

// Wait blocks until every dispatched call has posted its callback.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
