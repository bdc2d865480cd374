package action

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseErrorKind classifies parse failures at the oracle trust boundary.
type ParseErrorKind int

const (
	// MalformedPayload means the text was not decodable as an action at all.
	MalformedPayload ParseErrorKind = iota
	// UnknownActionKind means the payload decoded but named an action
	// outside the closed union.
	UnknownActionKind
)

// ParseError carries the raw oracle text for diagnostics. It is the only
// error type Parse returns: any lower-level decode failure is remapped.
type ParseError struct {
	Kind ParseErrorKind
	Raw  string
	err  error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnknownActionKind:
		return fmt.Sprintf("failed to parse instruction: unknown action kind in %q", e.Raw)
	default:
		if e.err != nil {
			return fmt.Sprintf("failed to parse instruction: %v", e.err)
		}
		return "failed to parse instruction: output is not a JSON action"
	}
}

func (e *ParseError) Unwrap() error { return e.err }

// Parse turns raw oracle output into a typed Action. The producer is an
// LLM and untrusted: the text may carry code fences, leading prose, or a
// hallucinated action name. Parse strips the wrapping defensively and
// maps every failure to a ParseError rather than letting it escape.
func Parse(raw string) (Action, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, &ParseError{Kind: MalformedPayload, Raw: raw}
	}

	var envelope struct {
		Action Kind `json:"action"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, &ParseError{Kind: MalformedPayload, Raw: raw, err: err}
	}
	if envelope.Action == "" {
		return nil, &ParseError{Kind: MalformedPayload, Raw: raw, err: fmt.Errorf("missing %q field", "action")}
	}

	act, ok := newByKind(envelope.Action)
	if !ok {
		return nil, &ParseError{Kind: UnknownActionKind, Raw: raw}
	}
	if err := json.Unmarshal([]byte(body), act); err != nil {
		return nil, &ParseError{Kind: MalformedPayload, Raw: raw, err: err}
	}
	return act, nil
}

// extractJSON strips code fences and surrounding prose, returning the
// outermost {...} object, or "" when the text holds none.
func extractJSON(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.Trim(strings.TrimSpace(s), "`")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
