package handlers

const (
	// maxUploadBytes caps the source image size
	maxUploadBytes = 10 << 20 // 10 MiB

	// historyPageSize is the page size for the generation history endpoint
	historyPageSize = 50
)

// allowedImageTypes is the upload content-type allowlist
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}
