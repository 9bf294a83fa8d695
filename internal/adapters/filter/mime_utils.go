package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractTextFromMessage extracts the text content of an email message. For
// multipart messages it collects the text/plain parts; everything else is
// returned as-is.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	var text bytes.Buffer
	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever text was already collected.
			break
		}

		partType := part.Header.Get("Content-Type")
		if partType == "" || strings.Contains(strings.ToLower(partType), "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			text.Write(partBytes)
			text.WriteString("\n")
		}
	}

	return text.String(), nil
}
