package paginator

import "dashcache/internal/models"

// NextQueries builds the follow-up targets for a page: every target whose
// frames carry a continuation token, with that token attached. It returns nil
// when the page has no continuation.
func NextQueries(request models.Request, page models.Response) []models.Query {
	tokens := page.NextTokens()
	if len(tokens) == 0 {
		return nil
	}

	var next []models.Query
	for _, q := range request.Targets {
		token, ok := tokens[q.RefID]
		if !ok {
			continue
		}
		q.NextToken = token
		next = append(next, q)
	}

	return next
}
