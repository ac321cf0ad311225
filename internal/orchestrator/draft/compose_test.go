package draft

import (
	"testing"

	"github.com/kandev/luban/internal/orchestrator/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestExtractsContextTokensAndReturnsCleanDraft(t *testing.T) {
	input := "Hello\n<<context:image:/tmp/a.png>>>\nWorld\n<<context:text:/tmp/b.txt>>>"
	clean, attachments := DraftTextAndAttachmentsFromMessageText(input)

	assert.Equal(t, "Hello\n\nWorld\n", clean)
	require.Len(t, attachments, 2)
	assert.Equal(t, model.AttachmentImage, attachments[0].Kind)
	assert.Equal(t, "/tmp/a.png", attachments[0].Path)
	assert.Equal(t, model.AttachmentText, attachments[1].Kind)
	assert.Equal(t, "/tmp/b.txt", attachments[1].Path)
}

func TestUnknownKindsAreIgnored(t *testing.T) {
	assert.Empty(t, FindContextTokens("<<context:unknown:/x>>>"))
}

func TestComposeInsertsContextTokensAtAnchorsInOrder(t *testing.T) {
	attachments := []model.DraftAttachment{
		{ID: 2, Kind: model.AttachmentImage, Anchor: 5, Path: strPtr("/tmp/b.png")},
		{ID: 1, Kind: model.AttachmentText, Anchor: 5, Path: strPtr("/tmp/a.txt")},
	}

	composed := ComposeUserMessageText("HelloWorld", attachments)

	assert.Equal(t, "Hello\n<<context:text:/tmp/a.txt>>>\n<<context:image:/tmp/b.png>>>\nWorld", composed)
}

func TestComposeWithNoReadyAttachmentsJustTrims(t *testing.T) {
	attachments := []model.DraftAttachment{
		{ID: 1, Kind: model.AttachmentText, Anchor: 0, Failed: true, Path: strPtr("/tmp/a.txt")},
	}
	assert.Equal(t, "hello", ComposeUserMessageText("  hello  ", attachments))
}

func TestComposeClampsAnchorBeyondDraftLength(t *testing.T) {
	attachments := []model.DraftAttachment{
		{ID: 1, Kind: model.AttachmentFile, Anchor: 1000, Path: strPtr("/tmp/a.txt")},
	}
	composed := ComposeUserMessageText("hi", attachments)
	assert.Equal(t, "hi\n<<context:file:/tmp/a.txt>>>", composed)
}
