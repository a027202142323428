package compound

type tokenKey struct {
	text string
	pos  int
}

// tokenSet keeps tokens in insertion order and ignores duplicates.
type tokenSet struct {
	tokens []Token
	seen   map[tokenKey]struct{}
}

func (s *tokenSet) add(text string, pos int) {
	if s.seen == nil {
		s.seen = make(map[tokenKey]struct{})
	}
	key := tokenKey{text: text, pos: pos}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.tokens = append(s.tokens, Token{Text: text, Position: pos})
}
