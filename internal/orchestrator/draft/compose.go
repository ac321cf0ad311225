package draft

import (
	"sort"
	"strings"

	"github.com/kandev/luban/internal/orchestrator/model"
)

func contextToken(kind model.AttachmentKind, path string) string {
	return "<<context:" + string(kind) + ":" + path + ">>>"
}

// OrderedForDisplay returns attachments sorted by (anchor, id), the order
// they are shown to the user while composing.
func OrderedForDisplay(attachments []model.DraftAttachment) []model.DraftAttachment {
	out := append([]model.DraftAttachment(nil), attachments...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Anchor != out[j].Anchor {
			return out[i].Anchor < out[j].Anchor
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ComposeUserMessageText inserts a "<<context:kind:path>>>" token at each
// ready (resolved, not failed) attachment's anchor, ordered by (anchor, id).
// Attachments sharing an anchor are grouped: a leading newline is inserted
// before the group if the preceding character isn't already '\n', the
// tokens within the group are joined by bare newlines, and a trailing
// newline is inserted after the group if the following character isn't
// already '\n'. The result is trimmed. An anchor past the end of draftText
// is clamped to len(draftText).
func ComposeUserMessageText(draftText string, attachments []model.DraftAttachment) string {
	var ready []model.DraftAttachment
	for _, a := range attachments {
		if a.Ready() {
			ready = append(ready, a)
		}
	}
	if len(ready) == 0 {
		return strings.TrimSpace(draftText)
	}

	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].Anchor != ready[j].Anchor {
			return ready[i].Anchor < ready[j].Anchor
		}
		return ready[i].ID < ready[j].ID
	})

	bytes := []byte(draftText)
	cursor := 0
	var out strings.Builder
	out.Grow(len(draftText) + len(ready)*48)

	idx := 0
	for idx < len(ready) {
		anchor := ready[idx].Anchor
		if anchor > len(draftText) {
			anchor = len(draftText)
		}
		out.WriteString(draftText[cursor:anchor])

		if anchor > 0 && bytes[anchor-1] != '\n' {
			out.WriteByte('\n')
		}

		first := true
		for idx < len(ready) {
			a := ready[idx]
			aAnchor := a.Anchor
			if aAnchor > len(draftText) {
				aAnchor = len(draftText)
			}
			if aAnchor != anchor {
				break
			}
			if !first {
				out.WriteByte('\n')
			}
			first = false
			out.WriteString(contextToken(a.Kind, *a.Path))
			idx++
		}

		if anchor < len(draftText) && bytes[anchor] != '\n' {
			out.WriteByte('\n')
		}

		cursor = anchor
	}

	out.WriteString(draftText[cursor:])
	return strings.TrimSpace(out.String())
}
