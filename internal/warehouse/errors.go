package warehouse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stockscan/internal/services"
)

// Error codes carried in 409 bodies.
const (
	CodeConflict           = "conflict"
	CodeBundleModeRequired = "bundle_mode_required"
)

// APIError is a non-2xx response with its decoded body.
type APIError struct {
	StatusCode         int
	Code               string
	Detail             string
	Message            string
	CrewConflicts      []json.RawMessage
	TransportConflicts []json.RawMessage
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api returned %d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(" (")
		b.WriteString(e.Code)
		b.WriteByte(')')
	}
	if text := e.Text(); text != "" {
		b.WriteString(": ")
		b.WriteString(text)
	}
	return b.String()
}

// Unwrap exposes the taxonomy marker derived from status and code so
// errors.Is(err, services.ErrConflict) works on any APIError value.
func (e *APIError) Unwrap() error {
	return markerFor(e.StatusCode, e.Code)
}

// Text returns the human-readable detail, falling back to message.
func (e *APIError) Text() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// IsConflict reports whether the response is the generic collision payload.
func (e *APIError) IsConflict() bool {
	return e.Code == CodeConflict
}

type errorBody struct {
	Code               string            `json:"code"`
	Detail             json.RawMessage   `json:"detail"`
	Message            string            `json:"message"`
	CrewConflicts      []json.RawMessage `json:"crew_conflicts"`
	TransportConflicts []json.RawMessage `json:"transport_conflicts"`
}

// decodeAPIError builds an APIError from a status and raw body. Bodies that
// are not JSON leave Code and Detail empty.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = strings.TrimSpace(parsed.Code)
		apiErr.Detail = detailText(parsed.Detail)
		apiErr.Message = strings.TrimSpace(parsed.Message)
		apiErr.CrewConflicts = parsed.CrewConflicts
		apiErr.TransportConflicts = parsed.TransportConflicts
		// Some endpoints nest the code inside detail.
		if apiErr.Code == "" {
			var nested errorBody
			if json.Unmarshal(parsed.Detail, &nested) == nil && nested.Code != "" {
				apiErr.Code = strings.TrimSpace(nested.Code)
				apiErr.Detail = detailText(nested.Detail)
				if apiErr.Message == "" {
					apiErr.Message = strings.TrimSpace(nested.Message)
				}
				apiErr.CrewConflicts = nested.CrewConflicts
				apiErr.TransportConflicts = nested.TransportConflicts
			}
		}
	}
	return apiErr
}

func markerFor(status int, code string) error {
	switch {
	case code == CodeBundleModeRequired:
		return services.ErrBundleModeRequired
	case code == CodeConflict, status == http.StatusConflict:
		return services.ErrConflict
	case status == http.StatusNotFound:
		return services.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return services.ErrValidation
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return services.ErrNetwork
	default:
		return services.ErrOther
	}
}

// detailText renders a detail field that may be a string, a list of
// validation items ({"msg": ...}) or an object with a message.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return strings.TrimSpace(text)
	}
	type item struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	var items []item
	if json.Unmarshal(raw, &items) == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if msg := strings.TrimSpace(it.Msg + it.Message); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	var single item
	if json.Unmarshal(raw, &single) == nil {
		return strings.TrimSpace(single.Msg + single.Message)
	}
	return ""
}
