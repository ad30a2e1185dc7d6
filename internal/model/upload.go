package model

import "time"

// UploadGrantRequest asks for a presigned PUT URL for a caller-chosen key.
type UploadGrantRequest struct {
	Key         string `json:"key" validate:"required"`
	ContentType string `json:"contentType" validate:"required,min=3"`
}

// UploadFileRequest asks for a presigned PUT URL under a server-generated key
// derived from the original file name.
type UploadFileRequest struct {
	Filename string `query:"filename" validate:"required,excludes=/"`
	Filetype string `query:"filetype" validate:"required,min=3"`
}

// UploadGrant is an ephemeral permission to upload one object. It is never persisted.
type UploadGrant struct {
	Key         string    `json:"key"`
	ContentType string    `json:"contentType"`
	UploadURL   string    `json:"uploadUrl"`
	ObjectURL   string    `json:"objectUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
