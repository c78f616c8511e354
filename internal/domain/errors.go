package domain

import "errors"

var (
	ErrInvalidInputFormat      = errors.New("invalid file format; must be XML")
	ErrMalformedXML            = errors.New("file is not well-formed XML")
	ErrSchema                  = errors.New("invalid XML structure; missing INProfileResponse root")
	ErrPersistence             = errors.New("report could not be saved")
	ErrReportNotFound          = errors.New("report not found")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrSourceUnavailable       = errors.New("original XML was not archived for this report")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrUnauthorized            = errors.New("unauthorized")
)
