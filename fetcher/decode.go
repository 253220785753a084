package fetcher

import (
	"mime"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeBody turns response bytes into a string. It honors the charset
// declared in the Content-Type header when there is one and it is known,
// falls back to treating valid UTF-8 as-is, and finally decodes as
// ISO-8859-1, which maps every byte and therefore cannot fail.
func decodeBody(body []byte, contentType string) string {
	if name := declaredCharset(contentType); name != "" {
		if enc, err := htmlindex.Get(name); err == nil {
			if decoded, err := enc.NewDecoder().Bytes(body); err == nil {
				return string(decoded)
			}
		}
	}

	if utf8.Valid(body) {
		return string(body)
	}

	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(body)
	return string(decoded)
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
