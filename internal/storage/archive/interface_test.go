package archive

// Compile-time backend compliance.
var (
	_ Storage = (*LocalFS)(nil)
	_ Storage = (*S3Storage)(nil)
)
