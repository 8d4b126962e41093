package provider

import (
	"io"

	"github.com/zen-systems/agentgate/pkg/chat"
)

// Stream is a finite, non-restartable sequence of normalized chunks.
// Recv returns io.EOF after the terminal chunk has been delivered.
// Close releases the underlying provider connection and is safe to
// call at any point; a consumer abandoning the stream early must call
// it so the provider read loop stops.
type Stream interface {
	Recv() (chat.Chunk, error)
	Close() error
}

// normalizedStream wraps a provider-specific stream and guarantees the
// terminal contract: exactly one chunk with a finish reason is
// delivered before io.EOF, even if the underlying stream ends without
// one. A mid-stream error closes the sequence as an error rather than
// silently truncating it.
type normalizedStream struct {
	inner Stream
	done  bool
}

// Normalize enforces the terminal-sentinel contract on a raw provider
// stream.
func Normalize(inner Stream) Stream {
	return &normalizedStream{inner: inner}
}

func (s *normalizedStream) Recv() (chat.Chunk, error) {
	if s.done {
		return chat.Chunk{}, io.EOF
	}

	chunk, err := s.inner.Recv()
	if err == io.EOF {
		s.done = true
		return chat.Chunk{FinishReason: chat.FinishStop}, nil
	}
	if err != nil {
		s.done = true
		return chat.Chunk{}, err
	}
	if chunk.FinishReason != "" {
		s.done = true
	}
	return chunk, nil
}

func (s *normalizedStream) Close() error {
	s.done = true
	return s.inner.Close()
}

// Collect drains a stream, concatenating content deltas. It is the
// buffered view of a streamed response; tests use it to check that
// streaming and buffered execution agree.
func Collect(s Stream) (string, error) {
	defer s.Close()

	var sb []byte
	for {
		chunk, err := s.Recv()
		if err == io.EOF {
			return string(sb), nil
		}
		if err != nil {
			return string(sb), err
		}
		sb = append(sb, chunk.Content...)
	}
}
