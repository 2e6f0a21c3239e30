package errors

// Response is the transport-safe representation of an Error. It always
// carries the error's identity and classification; internals such as the
// cause chain and context map are stripped unless explicitly requested,
// so a Response can be serialized to clients without leaking server
// detail.
type Response struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Code      Code           `json:"code,omitempty"`
	Message   string         `json:"message"`
	Status    int            `json:"status"`
	Retryable bool           `json:"retryable"`
	Cause     string         `json:"cause,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Response converts the error to its transport-safe form.
// When includeInternal is false the cause and context are omitted.
//
// Example:
//
//	resp := e.Response(false)
//	writeJSON(w, resp.Status, resp)
func (e *Error) Response(includeInternal bool) Response {
	resp := Response{
		ID:        e.ID,
		Category:  e.Category,
		Code:      e.Code,
		Message:   e.Message,
		Status:    e.HTTPStatus(),
		Retryable: e.Retryable,
	}
	if includeInternal {
		if e.Cause != nil {
			resp.Cause = e.Cause.Error()
		}
		if len(e.Context) > 0 {
			resp.Context = make(map[string]any, len(e.Context))
			for k, v := range e.Context {
				resp.Context[k] = v
			}
		}
	}
	return resp
}

// ResponseFor converts any error to a transport-safe Response, wrapping
// unclassified errors first. Handlers can call it directly on whatever
// error reaches them.
func ResponseFor(err error, includeInternal bool) Response {
	return FromError(err).Response(includeInternal)
}
