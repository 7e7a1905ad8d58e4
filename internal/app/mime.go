package app

import (
	"log/slog"
	"mime"
)

// assetTypes pins the types of embedded assets; minimal container images
// ship without /etc/mime.types.
var assetTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".js":  "text/javascript; charset=utf-8",
	".svg": "image/svg+xml",
}

func init() {
	registerAssetTypes(assetTypes)
}

func registerAssetTypes(types map[string]string) {
	for ext, typ := range types {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, typ); err != nil {
			slog.Default().Warn("register asset mime type", slog.String("ext", ext), slog.Any("error", err))
		}
	}
}
