package model

// File is a small binary artifact, used for profile pictures and exported CV
// PDFs. Content is populated when the file lives in the database; newer rows
// carry StorageObjectName and keep the bytes in cloud storage instead.
type File struct {
	ID                int `gorm:"primaryKey"`
	Content           []byte
	Extension         string
	StorageObjectName *string
}
