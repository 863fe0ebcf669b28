package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	validateErr error
}

func (c stubCommand) Validate() error { return c.validateErr }

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.errors = append(l.errors, msg)
}

func TestCommandBus_Send_DispatchesToHandler(t *testing.T) {
	b := NewCommandBus()

	var got Command
	err := b.Register(stubCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		got = cmd
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, b.Send(context.Background(), stubCommand{}))
	assert.Equal(t, stubCommand{}, got)
}

func TestCommandBus_Send_UnregisteredCommand(t *testing.T) {
	b := NewCommandBus()

	err := b.Send(context.Background(), stubCommand{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHandlerNotFound))
}

func TestCommandBus_Register_DuplicateHandler(t *testing.T) {
	b := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(stubCommand{}, handler))

	err := b.Register(stubCommand{}, handler)
	require.Error(t, err)
}

func TestValidationMiddleware_RejectsInvalidCommand(t *testing.T) {
	b := NewCommandBus()
	pipeline := NewPipeline(ValidationMiddleware())

	called := false
	handler := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		called = true
		return nil
	}))
	require.NoError(t, b.Register(stubCommand{}, handler))

	err := b.Send(context.Background(), stubCommand{validateErr: errors.New("missing field")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Contains(t, err.Error(), "missing field")
	assert.False(t, called)
}

func TestValidationMiddleware_PassesValidCommand(t *testing.T) {
	pipeline := NewPipeline(ValidationMiddleware())

	called := false
	handler := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		called = true
		return nil
	}))

	require.NoError(t, handler.Handle(context.Background(), stubCommand{}))
	assert.True(t, called)
}

func TestLoggingMiddleware_LogsOutcome(t *testing.T) {
	logger := &recordingLogger{}
	pipeline := NewPipeline(LoggingMiddleware(logger))

	ok := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return nil
	}))
	require.NoError(t, ok.Handle(context.Background(), stubCommand{}))
	assert.Contains(t, logger.infos, "Command succeeded")

	boom := errors.New("boom")
	failing := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return boom
	}))
	err := failing.Handle(context.Background(), stubCommand{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, logger.errors, "Command failed")
}

func TestPipeline_Execute_OuterMiddlewareRunsFirst(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	pipeline := NewPipeline(tag("outer"), tag("inner"))
	handler := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	}))

	require.NoError(t, handler.Handle(context.Background(), stubCommand{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
