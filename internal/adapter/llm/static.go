package llm

import "io"

// StaticStream yields a fixed text as a single token then EOF. Used for
// cached answers and fallback messages on the streaming path.
type StaticStream struct {
	text string
	sent bool
}

func NewStaticStream(text string) *StaticStream {
	return &StaticStream{text: text}
}

func (s *StaticStream) Next() (string, error) {
	if s.sent {
		return "", io.EOF
	}
	s.sent = true
	return s.text, nil
}

func (s *StaticStream) Close() error {
	s.sent = true
	return nil
}
