package storage

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is stored when nothing better can be inferred.
const DefaultContentType = "application/octet-stream"

var encodingByExt = map[string]string{
	".gz":  "gzip",
	".bz2": "bzip2",
	".xz":  "xz",
	".br":  "br",
}

// ContentHeaders infers the content type and encoding of an object.
// The type comes from the file extension, ignoring a trailing compression
// extension which instead sets the encoding ("app.js.gz" is gzip-encoded
// application/javascript). Unknown extensions fall back to sniffing data.
func ContentHeaders(name string, data []byte) PutOptions {
	var opts PutOptions

	base := name
	ext := strings.ToLower(path.Ext(base))
	if enc, ok := encodingByExt[ext]; ok {
		opts.ContentEncoding = enc
		base = strings.TrimSuffix(base, path.Ext(base))
		ext = strings.ToLower(path.Ext(base))
	}

	if ext != "" {
		opts.ContentType = mime.TypeByExtension(ext)
	}
	if opts.ContentType == "" && opts.ContentEncoding == "" && len(data) > 0 {
		opts.ContentType = mimetype.Detect(data).String()
	}
	if opts.ContentType == "" {
		opts.ContentType = DefaultContentType
	}
	return opts
}
