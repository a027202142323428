// Package analysis defines the pull-based token stream that text flows
// through before indexing, together with the basic stages of a pipeline.
package analysis

// Token is the mutable token shared along a stream. A stage may rewrite
// it in place; consumers must copy it to keep it past the next call to
// Next.
type Token struct {
	Term string
	// Start and End are byte offsets into the original text.
	Start int
	End   int
	// PositionIncrement is the distance from the previous token's
	// position. Zero stacks the token on the previous one.
	PositionIncrement int
	PositionLength    int
}

// TokenStream is a pull iterator over tokens.
//
// Next advances the stream and reports whether a token is available.
// Token returns the current token; it is only valid until the next call
// to Next.
type TokenStream interface {
	Next() (bool, error)
	Token() *Token
}

// Collect drains a stream into a slice of copies.
func Collect(ts TokenStream) ([]Token, error) {
	var out []Token
	for {
		ok, err := ts.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, *ts.Token())
	}
}

// Terms returns the distinct terms of tokens in first-seen order.
func Terms(tokens []Token) []string {
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok.Term]; ok {
			continue
		}
		seen[tok.Term] = struct{}{}
		terms = append(terms, tok.Term)
	}
	return terms
}
