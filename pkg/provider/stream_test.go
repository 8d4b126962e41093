package provider

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/zen-systems/agentgate/pkg/chat"
	"go.uber.org/goleak"
)

// scriptedStream replays deltas and then either ends cleanly or with
// an error, standing in for a provider-specific stream.
type scriptedStream struct {
	deltas   []string
	finalErr error
	next     int
	closed   bool
}

func (s *scriptedStream) Recv() (chat.Chunk, error) {
	if s.next >= len(s.deltas) {
		if s.finalErr != nil {
			return chat.Chunk{}, s.finalErr
		}
		return chat.Chunk{}, io.EOF
	}
	chunk := chat.Chunk{Content: s.deltas[s.next]}
	s.next++
	return chunk, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

func TestNormalize_SentinelAfterCleanEnd(t *testing.T) {
	// Property: two deltas and a clean end normalize to exactly two
	// content frames plus one terminal frame.
	stream := Normalize(&scriptedStream{deltas: []string{"Hola", " mundo"}})

	var contents []string
	var terminals int
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chunk.FinishReason != "" {
			terminals++
			continue
		}
		contents = append(contents, chunk.Content)
	}

	if len(contents) != 2 || contents[0] != "Hola" || contents[1] != " mundo" {
		t.Errorf("content frames = %v, want [Hola,  mundo]", contents)
	}
	if terminals != 1 {
		t.Errorf("terminal frames = %d, want exactly 1", terminals)
	}
}

func TestNormalize_KeepsProviderSentinel(t *testing.T) {
	inner := &mockStream{deltas: []string{"hola"}}
	stream := Normalize(&providerSentinelStream{inner: inner})

	var terminals int
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chunk.FinishReason != "" {
			terminals++
		}
	}
	if terminals != 1 {
		t.Errorf("terminal frames = %d, want exactly 1 (no synthesized duplicate)", terminals)
	}
}

// providerSentinelStream emits its own finish chunk before EOF, like
// providers that report a stop reason.
type providerSentinelStream struct {
	inner    Stream
	finished bool
}

func (s *providerSentinelStream) Recv() (chat.Chunk, error) {
	chunk, err := s.inner.Recv()
	if err == io.EOF && !s.finished {
		s.finished = true
		return chat.Chunk{FinishReason: "end_turn"}, nil
	}
	return chunk, err
}

func (s *providerSentinelStream) Close() error { return s.inner.Close() }

func TestNormalize_MidStreamError(t *testing.T) {
	transportErr := errors.New("connection reset")
	stream := Normalize(&scriptedStream{deltas: []string{"Hola"}, finalErr: transportErr})

	chunk, err := stream.Recv()
	if err != nil || chunk.Content != "Hola" {
		t.Fatalf("first chunk = %+v, %v", chunk, err)
	}

	// The error closes the sequence instead of silently truncating.
	if _, err := stream.Recv(); !errors.Is(err, transportErr) {
		t.Fatalf("mid-stream error = %v, want %v", err, transportErr)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("after error, Recv = %v, want io.EOF", err)
	}
}

func TestStreamMatchesBufferedResponse(t *testing.T) {
	p := NewMockProvider("mock", "model-a")
	p.Responses["hola"] = "Hola mundo desde el asistente"
	m := NewManager([]Provider{p})

	req := testRequest("model-a")

	buffered, _, err := m.ExecuteWithFallback(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("buffered: %v", err)
	}

	streamed, _, err := m.ExecuteStreamWithFallback(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	content, err := Collect(streamed.Stream)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if content != buffered.Content {
		t.Errorf("streamed %q != buffered %q", content, buffered.Content)
	}
}

func TestStreamCloseReleasesConsumer(t *testing.T) {
	// opencensus (a transitive dependency of the Google SDK) starts a
	// background worker in init that goleak would otherwise flag.
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	inner := &scriptedStream{deltas: []string{"a", "b", "c", "d"}}
	stream := Normalize(inner)

	// Consumer reads one chunk and disconnects.
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !inner.closed {
		t.Error("Close did not reach the underlying stream")
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("Recv after Close = %v, want io.EOF", err)
	}
}
