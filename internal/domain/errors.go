package domain

import "errors"

var (
	ErrNothingToSend       = errors.New("nothing to send")
	ErrSendInFlight        = errors.New("send already in flight")
	ErrNilFile             = errors.New("nil file handle")
	ErrTooManyAttachments  = errors.New("too many attachments")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrPreviewReleased     = errors.New("preview already released")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
