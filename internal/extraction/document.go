package extraction

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Document is the input of one extraction: inline bytes for the PDF and
// image channels, or a URL for the url channel.
type Document struct {
	MIMEType string
	Data     []byte
	URL      string
}

// ParseDataURI decodes "data:<mime>;base64,<payload>".
func ParseDataURI(uri string) (Document, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Document{}, errors.New("ParseDataURI: missing data: prefix")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Document{}, errors.New("ParseDataURI: missing payload separator")
	}

	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Document{}, errors.New("ParseDataURI: only base64 payloads are supported")
	}
	if mime == "" {
		return Document{}, errors.New("ParseDataURI: missing MIME type")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Document{}, fmt.Errorf("ParseDataURI: decode payload: %w", err)
	}
	if len(data) == 0 {
		return Document{}, errors.New("ParseDataURI: empty payload")
	}

	return Document{MIMEType: mime, Data: data}, nil
}

// Validate checks that doc carries what channel c needs.
func (doc Document) Validate(c Channel) error {
	if c == ChannelURL {
		if doc.URL == "" {
			return errors.New("url channel requires a URL")
		}
		u, err := url.Parse(doc.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid receipt URL %q", doc.URL)
		}
		return nil
	}

	if len(doc.Data) == 0 {
		return fmt.Errorf("%s channel requires document bytes", c)
	}
	if doc.MIMEType == "" {
		return fmt.Errorf("%s channel requires a MIME type", c)
	}
	if c != ChannelQRCode && doc.MIMEType != "application/pdf" {
		return fmt.Errorf("%s channel expects application/pdf, got %s", c, doc.MIMEType)
	}
	if c == ChannelQRCode && !strings.HasPrefix(doc.MIMEType, "image/") {
		return fmt.Errorf("qr_code channel expects an image, got %s", doc.MIMEType)
	}
	return nil
}
