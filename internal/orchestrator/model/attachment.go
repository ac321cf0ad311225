package model

// AttachmentKind discriminates what a draft attachment or sent AttachmentRef
// represents.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentText  AttachmentKind = "text"
	AttachmentFile  AttachmentKind = "file"
)

// DraftAttachment is a user-side attachment in composition, anchored to a
// byte offset in the draft text. It is expanded to a <<context:...>>> token
// only at send time; the draft text itself never contains the token.
type DraftAttachment struct {
	ID     uint64         `json:"id"`
	Kind   AttachmentKind `json:"kind"`
	Anchor int            `json:"anchor"`
	Path   *string        `json:"path,omitempty"`
	Failed bool           `json:"failed"`
}

// Ready reports whether the attachment has resolved to a usable path and is
// not marked failed -- the criterion used when composing the sent message.
func (d DraftAttachment) Ready() bool {
	return d.Path != nil && !d.Failed
}

// AttachmentRef is the persisted form referenced by a sent message.
type AttachmentRef struct {
	ID          string         `json:"id"` // BLAKE3 hex
	Extension   string         `json:"extension"`
	ByteLength  int64          `json:"byte_length"`
	DisplayName string         `json:"display_name"`
	Kind        AttachmentKind `json:"kind"`

	// Path is the on-disk blob path, populated by the attachment-resolution
	// effect. It is what a context token embeds, never shown to the user.
	Path string `json:"path"`
}
