package publisher

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/pico-bridge/internal/session"
)

// Status codes for a publish attempt.
const (
	StatusSuccess      = 0
	StatusFailure      = 1
	StatusNoConnection = 4
)

// Status lines recorded in session state.
const (
	SuccessTemplate = "Sent the message: %s to topic %s"
	FailureMessage  = "FAILED to send Slider TO the Pico:"
)

// Publisher is the part of the broker connection used for publishing.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// ConnFunc returns the shared connection, dialing on first use.
type ConnFunc func(ctx context.Context) (Publisher, error)

// Recorder receives publish outcomes, for telemetry.
type Recorder interface {
	RecordPublish(topic string, payload []byte, status int)
}

// Logger defines the logging interface used by the Command.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Result describes one publish attempt.
type Result struct {
	Topic   string
	Message string
	Status  int
	Err     error
}

// Command publishes slider changes to one topic.
type Command struct {
	topic    string
	qos      byte
	conn     ConnFunc
	recorder Recorder
	logger   Logger
}

// New creates a Command publishing to topic at qos over the connection
// returned by conn.
func New(topic string, qos byte, conn ConnFunc) *Command {
	return &Command{
		topic:  topic,
		qos:    qos,
		conn:   conn,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the command.
func (c *Command) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRecorder sets an optional telemetry sink.
func (c *Command) SetRecorder(r Recorder) {
	c.recorder = r
}

// Topic returns the outbound topic.
func (c *Command) Topic() string {
	return c.topic
}

// OnChange publishes the slider value held in state and records the status
// line under session.KeyPrintStatus.
func (c *Command) OnChange(ctx context.Context, state *session.State) Result {
	res := Result{Topic: c.topic}

	value, err := state.Int(session.KeySlider)
	if err != nil {
		res.Status = StatusFailure
		res.Err = fmt.Errorf("reading slider value: %w", err)
		c.finish(state, res)
		return res
	}
	res.Message = strconv.Itoa(value)

	conn, err := c.conn(ctx)
	if err == nil {
		err = conn.Publish(c.topic, []byte(res.Message), c.qos, false)
	}
	res.Status = StatusCode(err)
	res.Err = err

	c.finish(state, res)
	return res
}

func (c *Command) finish(state *session.State, res Result) {
	state.Set(session.KeyPrintStatus, StatusMessage(res.Status, res.Message, res.Topic))

	if res.Status == StatusSuccess {
		c.logger.Info("slider value published", "topic", res.Topic, "message", res.Message)
	} else {
		c.logger.Warn("slider publish failed",
			"topic", res.Topic,
			"message", res.Message,
			"status", res.Status,
			"error", res.Err,
		)
	}

	if c.recorder != nil {
		c.recorder.RecordPublish(res.Topic, []byte(res.Message), res.Status)
	}
}

// StatusCode maps a publish error to a status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, mqtt.ErrNotConnected), errors.Is(err, mqtt.ErrConnectionFailed):
		return StatusNoConnection
	default:
		return StatusFailure
	}
}

// StatusMessage renders the status line for a publish outcome.
func StatusMessage(status int, message, topic string) string {
	if status == StatusSuccess {
		return fmt.Sprintf(SuccessTemplate, message, topic)
	}
	return FailureMessage
}
