package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Form is a multipart/form-data body. Parts are written in insertion order.
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	mimeType string
	content  io.Reader
}

// NewForm creates an empty multipart form.
func NewForm() *Form {
	return &Form{}
}

// Field adds a text part.
func (f *Form) Field(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})

	return f
}

// File adds a file part with an explicit content type.
func (f *Form) File(name, filename, mimeType string, content io.Reader) *Form {
	f.parts = append(f.parts, formPart{name: name, filename: filename, mimeType: mimeType, content: content})

	return f
}

// Names lists the part names in order.
func (f *Form) Names() []string {
	names := make([]string, 0, len(f.parts))
	for _, part := range f.parts {
		names = append(names, part.name)
	}

	return names
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for _, part := range f.parts {
		if part.content == nil {
			if err := writer.WriteField(part.name, part.value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", part.name, err)
			}

			continue
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(part.name), escapeQuotes(part.filename)))
		header.Set(ContentTypeHeader, part.mimeType)

		w, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", part.name, err)
		}

		if _, err := io.Copy(w, part.content); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", part.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

//nolint:gochecknoglobals
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
