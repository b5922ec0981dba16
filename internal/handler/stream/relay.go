package stream

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/ai-interviewer/backend/pkg/utils"
)

// StreamErrorMessage is sent to the client when the upstream stream fails.
const StreamErrorMessage = "AI 回复生成失败，请稍后重试"

// Event is one frame of a relayed stream: a text chunk or a terminal error.
type Event struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Sink delivers events to one client.
type Sink interface {
	Send(Event) error
}

// Relay forwards chunks from sr to sink in arrival order. It stops after EOF,
// after a single error event, or as soon as ctx is done. The reader is always
// closed on return, which also stops the upstream producer.
func Relay(ctx context.Context, sr *schema.StreamReader[*schema.Message], sink Sink) error {
	defer sr.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if sendErr := sink.Send(Event{Error: StreamErrorMessage}); sendErr != nil {
				return errors.Join(err, sendErr)
			}
			return err
		}
		if msg == nil || msg.Content == "" {
			continue
		}

		// 客户端可能在等待上游时已断开。
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Send(Event{Text: msg.Content}); err != nil {
			return err
		}
	}
}

// SSESink writes events as Server-Sent Events.
type SSESink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSESink sets the SSE headers and returns a sink for w. It fails when w
// cannot flush.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming unsupported")
	}
	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &SSESink{w: w, flusher: flusher}, nil
}

func (s *SSESink) Send(ev Event) error {
	return utils.WriteSSEData(s.w, s.flusher, ev)
}
