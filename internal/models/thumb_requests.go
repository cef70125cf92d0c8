package models

import (
	"github.com/google/uuid"
)

// ThumbRequest asks for the thumbnail variants of one stored image to
// be generated or deleted, depending on the queue it arrives on.
type ThumbRequest struct {
	ThumbRequestID uuid.UUID `json:"thumbRequestId"`

	// Storage path of the source image.
	FilePath string `json:"filePath"`

	// Destination prefix the variants are written under.
	DestDir string `json:"destDir"`

	// Overwrite regenerates variants whose destination key already
	// exists. Ignored for delete requests.
	Overwrite bool `json:"overwrite"`
}
