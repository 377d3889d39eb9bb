package icd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mindlog/mindlog/internal/model"
)

var markupPattern = regexp.MustCompile(`<[^>]+>`)

// StripMarkup removes every <...> tag from s.
func StripMarkup(s string) string {
	return markupPattern.ReplaceAllString(s, "")
}

// SearchConditions runs a free-text search against the configured release.
// The query must be at least MinQueryLength characters after trimming.
func (c *Client) SearchConditions(ctx context.Context, query string) ([]model.ConditionMatch, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"q":              {query},
		"useFlexisearch": {"false"},
		"flatResults":    {"true"},
	}
	endpoint := c.cfg.BaseURL + "/" + c.cfg.Release + "/search?" + params.Encode()

	start := time.Now()
	var body []byte
	err = c.withTimeout(ctx, "search", func(ctx context.Context) error {
		b, err := c.get(ctx, endpoint, token)
		if err != nil {
			return &Error{Op: "search", Kind: ErrUpstreamSearch, Err: err}
		}
		body = b
		return nil
	})
	c.metrics.ObserveUpstreamDuration("search", time.Since(start))
	if err != nil {
		c.metrics.IncUpstreamError("search", KindName(err))
		return nil, err
	}

	entities, err := decodeEntities(body)
	if err != nil {
		err = &Error{Op: "search", Kind: ErrUpstreamFormat, Err: err}
		c.metrics.IncUpstreamError("search", KindName(err))
		return nil, err
	}

	matches := make([]model.ConditionMatch, 0, len(entities))
	for _, e := range entities {
		matches = append(matches, model.ConditionMatch{
			Code:       string(e.TheCode),
			Title:      string(e.Title),
			Definition: string(e.Definition),
			EntityID:   string(e.ID),
			CleanTitle: StripMarkup(string(e.Title)),
		})
	}
	return matches, nil
}

type entity struct {
	ID         text `json:"id"`
	Title      text `json:"title"`
	TheCode    text `json:"theCode"`
	Definition text `json:"definition"`
}

// decodeEntities accepts either a bare list of entities or an object
// carrying them under destinationEntities.
func decodeEntities(body []byte) ([]entity, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errUnexpectedShape
	}

	switch trimmed[0] {
	case '[':
		var list []entity
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		var wrapped struct {
			DestinationEntities *[]entity `json:"destinationEntities"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.DestinationEntities == nil {
			return nil, errUnexpectedShape
		}
		return *wrapped.DestinationEntities, nil
	default:
		return nil, errUnexpectedShape
	}
}

// text decodes either a plain JSON string or a language-tagged
// {"@language": ..., "@value": ...} object.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var tagged struct {
		Value string `json:"@value"`
	}
	if err := json.Unmarshal(b, &tagged); err != nil {
		return err
	}
	*t = text(tagged.Value)
	return nil
}
