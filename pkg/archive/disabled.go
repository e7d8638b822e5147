package archive

import "context"

// Disabled stands in for the real uploader when no bucket is
// configured; notifications then carry the placeholder link text.
type Disabled struct{}

func (Disabled) ArchiveReplay(_ context.Context, _, _, _ string) (string, error) {
	return NoUploadText, nil
}
