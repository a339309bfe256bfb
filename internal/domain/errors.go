package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Attachment input errors.
	ErrMissingFilename     = errors.New("attachment filename is required")
	ErrEmptyContent        = errors.New("attachment content is empty")
	ErrUnsupportedFormat   = errors.New("unsupported attachment format")
	ErrMalformedAttachment = errors.New("malformed attachment")
	ErrAttachmentTooLarge  = errors.New("attachment exceeds maximum allowed size")

	// Decoding errors.
	ErrDecode               = errors.New("attachment could not be decoded")
	ErrNoExtractableContent = errors.New("document has no extractable content")

	ErrImageTooLarge = errors.New("image exceeds maximum allowed size after resizing")

	ErrTransport = errors.New("llm transport call failed")
)
