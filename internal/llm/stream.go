package llm

import (
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// Stream is a lazy, finite, non-restartable sequence of completion text
// fragments. The consumer controls pacing by pull rate; fragments are never
// buffered or reordered.
//
// Usage mirrors the SDK stream:
//
//	stream, err := engine.GenerateStream(ctx, prompt, opts)
//	if err != nil { ... }
//	defer stream.Close()
//	for stream.Next() {
//		fmt.Print(stream.Text())
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Close is safe to call at any point and releases the underlying connection,
// including on early abandonment.
type Stream struct {
	inner  *ssestream.Stream[openai.ChatCompletionChunk]
	text   string
	start  time.Time
	onDone func(start time.Time, err error)
	done   bool
}

// Next advances to the next non-empty text fragment. It returns false when
// the provider signals completion or an error occurs; check Err afterwards.
func (s *Stream) Next() bool {
	for s.inner.Next() {
		chunk := s.inner.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			s.text = delta
			return true
		}
	}
	s.finish(s.inner.Err())
	return false
}

// Text returns the fragment accepted by the last successful Next.
func (s *Stream) Text() string {
	return s.text
}

// Err returns the terminal error, if any, once Next has returned false.
func (s *Stream) Err() error {
	return s.inner.Err()
}

// Close releases the underlying connection. Safe on every exit path.
func (s *Stream) Close() error {
	err := s.inner.Close()
	s.finish(s.inner.Err())
	return err
}

func (s *Stream) finish(err error) {
	if s.done || s.onDone == nil {
		return
	}
	s.done = true
	s.onDone(s.start, err)
}
