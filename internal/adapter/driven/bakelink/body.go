package bakelink

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"
	"unicode/utf8"
)

// BodyKind tags the shape of a failed response's body.
type BodyKind int

const (
	BodyEmpty   BodyKind = iota // No bytes, or only whitespace.
	BodyText                    // JSON object carrying a usable "message".
	BodyBinary                  // Non-text payload such as a file download.
	BodyUnknown                 // Anything else; Raw holds the bytes.
)

func (k BodyKind) String() string {
	switch k {
	case BodyEmpty:
		return "empty"
	case BodyText:
		return "text"
	case BodyBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Body is the classified view of a response body.
type Body struct {
	Kind    BodyKind
	Message string // Set for BodyText.
	Raw     []byte // Set for BodyBinary and BodyUnknown; shares memory with the response.
}

// ParseBody classifies raw according to its Content-Type and content. It never
// modifies raw.
func ParseBody(contentType string, raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Body{Kind: BodyEmpty}
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	switch {
	case isJSONMedia(mediaType):
		return parseJSONBody(raw)
	case strings.HasPrefix(mediaType, "text/"):
		return Body{Kind: BodyUnknown, Raw: raw}
	case isBinaryMedia(mediaType) || !utf8.Valid(raw):
		return Body{Kind: BodyBinary, Raw: raw}
	case mediaType == "" && trimmed[0] == '{':
		return parseJSONBody(raw)
	default:
		return Body{Kind: BodyUnknown, Raw: raw}
	}
}

// parseJSONBody extracts "message" from a JSON object. Validation failures
// often carry a list of messages; those are joined.
func parseJSONBody(raw []byte) Body {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Message) == 0 {
		return Body{Kind: BodyUnknown, Raw: raw}
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil {
		if single == "" {
			return Body{Kind: BodyUnknown, Raw: raw}
		}
		return Body{Kind: BodyText, Message: single}
	}

	var list []string
	if err := json.Unmarshal(envelope.Message, &list); err == nil && len(list) > 0 {
		return Body{Kind: BodyText, Message: strings.Join(list, ", ")}
	}

	return Body{Kind: BodyUnknown, Raw: raw}
}

func isJSONMedia(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isBinaryMedia(mediaType string) bool {
	switch {
	case mediaType == "application/octet-stream",
		mediaType == "application/pdf",
		mediaType == "application/zip":
		return true
	case strings.HasPrefix(mediaType, "image/"),
		strings.HasPrefix(mediaType, "audio/"),
		strings.HasPrefix(mediaType, "video/"),
		strings.HasPrefix(mediaType, "application/vnd."):
		return true
	}
	return false
}
