package port

// AnswerCache stores generated answers keyed by query identity. It must be
// safe for concurrent use; a lost write only costs a redundant generation.
type AnswerCache interface {
	GetAnswer(key string) (string, bool)
	SetAnswer(key, answer string)
}
