package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"roombook/shared/constant"
)

// RelayRequest describes the upstream call to forward. Body is sent form-encoded
// unless the caller sets a JSON content type in Headers.
type RelayRequest struct {
	URL     string            `json:"url"     validate:"required,http_url"`
	Method  string            `json:"method"  validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Headers map[string]string `json:"headers"`
	Body    map[string]any    `json:"body"`
}

func (r *RelayRequest) HTTPMethod() string {
	if r.Method == constant.Empty {
		return http.MethodPost
	}

	return strings.ToUpper(r.Method)
}

// ContentType returns the content type the upstream body is encoded with.
func (r *RelayRequest) ContentType() string {
	for key, value := range r.Headers {
		if strings.EqualFold(key, constant.RequestHeaderContentType) {
			return value
		}
	}

	return constant.ContentTypeFormURLEncoded
}

func (r *RelayRequest) IsJSON() bool {
	mediaType, _, _ := strings.Cut(r.ContentType(), ";")

	return strings.EqualFold(strings.TrimSpace(mediaType), constant.ContentTypeJSON)
}

// Encode renders Body for the upstream request. A nil body sends no payload.
func (r *RelayRequest) Encode() (io.Reader, error) {
	if r.Body == nil {
		return nil, nil
	}

	if r.IsJSON() {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode relay body: %w", err)
		}

		return strings.NewReader(string(payload)), nil
	}

	keys := make([]string, 0, len(r.Body))
	for key := range r.Body {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	form := url.Values{}
	for _, key := range keys {
		form.Set(key, formValue(r.Body[key]))
	}

	return strings.NewReader(form.Encode()), nil
}

func formValue(value any) string {
	switch v := value.(type) {
	case nil:
		return constant.Empty
	case string:
		return v
	case map[string]any, []any:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(payload)
	default:
		return fmt.Sprint(v)
	}
}

// RelayResponse is the upstream answer, passed back verbatim.
type RelayResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
