package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
)

// PageCount is the pagination summary for a search.
type PageCount struct {
	Pages int
	Total int
}

// PhotoMeta is one entry of a search page.
type PhotoMeta struct {
	ID    string
	Title string
	URL   string
}

type searchResponse struct {
	Photos *photosEnvelope `json:"photos"`
}

type photosEnvelope struct {
	Pages *int            `json:"pages"`
	Total *flexInt        `json:"total"`
	Photo json.RawMessage `json:"photo"`
}

// flexInt accepts both 12 and "12"; the API has served both forms.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

const snippetLimit = 256

// decodeEnvelope validates a search body and returns its photos object.
func decodeEnvelope(body []byte) (*photosEnvelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperr.Protocol("response is not valid JSON: %s", snippet(body))
	}

	if msg := statusMessage(body); msg != "" {
		return nil, apperr.Protocol("%s", msg)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Protocol("cannot decode response %s: %v", snippet(body), err)
	}

	if resp.Photos == nil {
		return nil, apperr.Protocol("cannot find key %q in %s", "photos", snippet(body))
	}

	return resp.Photos, nil
}

func decodePageCount(body []byte, maxPages int) (PageCount, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return PageCount{}, err
	}

	if env.Pages == nil {
		return PageCount{}, apperr.Protocol("cannot find key %q in %s", "pages", photosSnippet(body))
	}

	pages := *env.Pages
	if pages < 0 {
		pages = 0
	}
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	total := 0
	if env.Total != nil {
		total = int(*env.Total)
	}

	return PageCount{Pages: pages, Total: total}, nil
}

func decodePage(body []byte, imageField string) ([]PhotoMeta, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	if env.Total != nil && *env.Total <= 0 {
		return []PhotoMeta{}, nil
	}

	if len(env.Photo) == 0 || bytes.Equal(env.Photo, []byte("null")) {
		return nil, apperr.Protocol("cannot find key %q in %s", "photo", photosSnippet(body))
	}

	var raw []map[string]any
	if err := json.Unmarshal(env.Photo, &raw); err != nil {
		return nil, apperr.Protocol("cannot decode key %q in %s: %v", "photo", photosSnippet(body), err)
	}

	result := make([]PhotoMeta, 0, len(raw))
	for _, entry := range raw {
		meta := PhotoMeta{
			ID:    stringField(entry, "id"),
			Title: stringField(entry, "title"),
			URL:   stringField(entry, imageField),
		}
		if meta.ID == "" || meta.URL == "" {
			continue
		}
		result = append(result, meta)
	}

	return result, nil
}

// statusMessage extracts an explicit API failure message, if any.
func statusMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "status_message").String(); msg != "" {
		return msg
	}
	if gjson.GetBytes(body, "stat").String() == "fail" {
		if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			return msg
		}
		return "search request failed"
	}
	return ""
}

func stringField(entry map[string]any, key string) string {
	switch v := entry[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func photosSnippet(body []byte) string {
	if r := gjson.GetBytes(body, "photos"); r.Exists() {
		return snippet([]byte(r.Raw))
	}
	return snippet(body)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetLimit {
		return s[:snippetLimit] + "..."
	}
	return s
}
