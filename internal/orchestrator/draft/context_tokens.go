// Package draft composes and parses the "<<context:kind:path>>>" attachment
// tokens embedded in agent prompts, and builds the final sent message text
// from a thread's draft plus its resolved attachments.
package draft

import (
	"strings"

	"github.com/kandev/luban/internal/orchestrator/model"
)

const (
	tokenPrefix = "<<context:"
	tokenSuffix = ">>>"
)

// ContextToken is one parsed "<<context:kind:path>>>" occurrence.
type ContextToken struct {
	Kind  model.AttachmentKind
	Path  string
	Start int
	End   int
}

func parseKind(raw string) (model.AttachmentKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "image":
		return model.AttachmentImage, true
	case "text":
		return model.AttachmentText, true
	case "file":
		return model.AttachmentFile, true
	default:
		return "", false
	}
}

// FindContextTokens scans text for well-formed context tokens. Malformed
// occurrences (no kind separator, unknown kind, no closing suffix, empty
// path) are skipped and left as literal text, and scanning resumes just
// past the point of failure so a single bad token cannot hide later good
// ones.
func FindContextTokens(text string) []ContextToken {
	var out []ContextToken
	cursor := 0

	for {
		relStart := strings.Index(text[cursor:], tokenPrefix)
		if relStart < 0 {
			break
		}
		start := cursor + relStart
		afterPrefix := start + len(tokenPrefix)

		kindSepRel := strings.IndexByte(text[afterPrefix:], ':')
		if kindSepRel < 0 {
			cursor = afterPrefix
			continue
		}
		kindEnd := afterPrefix + kindSepRel
		kind, ok := parseKind(text[afterPrefix:kindEnd])
		if !ok {
			cursor = kindEnd + 1
			continue
		}

		pathStart := kindEnd + 1
		suffixRel := strings.Index(text[pathStart:], tokenSuffix)
		if suffixRel < 0 {
			cursor = pathStart
			continue
		}
		end := pathStart + suffixRel + len(tokenSuffix)
		path := strings.TrimSpace(text[pathStart : pathStart+suffixRel])
		if path == "" {
			cursor = end
			continue
		}

		out = append(out, ContextToken{Kind: kind, Path: path, Start: start, End: end})
		cursor = end
	}

	return out
}

// ExtractContextImagePathsInOrder returns the paths of every image-kind
// token in text, in the order they appear.
func ExtractContextImagePathsInOrder(text string) []string {
	tokens := FindContextTokens(text)
	var out []string
	for _, tok := range tokens {
		if tok.Kind == model.AttachmentImage {
			out = append(out, tok.Path)
		}
	}
	return out
}

// ExtractedAttachment is one attachment recovered from message text by
// DraftTextAndAttachmentsFromMessageText, anchored to its position in the
// returned clean draft.
type ExtractedAttachment struct {
	Kind   model.AttachmentKind
	Anchor int
	Path   string
}

// DraftTextAndAttachmentsFromMessageText strips every context token out of
// text, returning the clean draft and the attachments it referenced,
// anchored to their byte offset in the *output* draft (not the input).
func DraftTextAndAttachmentsFromMessageText(text string) (string, []ExtractedAttachment) {
	tokens := FindContextTokens(text)
	if len(tokens) == 0 {
		return text, nil
	}

	var draft strings.Builder
	draft.Grow(len(text))
	var attachments []ExtractedAttachment
	cursor := 0
	for _, tok := range tokens {
		if tok.Start > cursor {
			draft.WriteString(text[cursor:tok.Start])
		}
		anchor := draft.Len()
		attachments = append(attachments, ExtractedAttachment{Kind: tok.Kind, Anchor: anchor, Path: tok.Path})
		cursor = tok.End
	}
	if cursor < len(text) {
		draft.WriteString(text[cursor:])
	}

	return draft.String(), attachments
}
