// Package extraction turns receipt documents into raw product lines through a
// structured-output LLM call. Each ingestion channel has its own response
// schema; every response is validated before anything is returned.
package extraction

import (
	"fmt"
	"strings"
)

// Channel selects the response schema an extractor must produce.
type Channel string

const (
	// ChannelPDFPage is a single receipt page. Only products are returned.
	ChannelPDFPage Channel = "pdf_page"
	// ChannelPDFDocument is a full receipt with store header.
	ChannelPDFDocument Channel = "pdf_document"
	// ChannelQRCode is a photo of the receipt QR code. Products carry only name, quantity and price.
	ChannelQRCode Channel = "qr_code"
	// ChannelURL is a public receipt page, sent as a plain URL.
	ChannelURL Channel = "url"
)

// Channels lists every supported channel.
var Channels = []Channel{ChannelPDFPage, ChannelPDFDocument, ChannelQRCode, ChannelURL}

// ParseChannel accepts a channel name in any case.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown channel %q", s)
	}
	return c, nil
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelPDFPage, ChannelPDFDocument, ChannelQRCode, ChannelURL:
		return true
	}
	return false
}

// HasStore reports whether responses on c include store metadata.
func (c Channel) HasStore() bool {
	return c == ChannelPDFDocument || c == ChannelURL
}

// Categorized reports whether products on c are classified against the taxonomy.
func (c Channel) Categorized() bool {
	return c != ChannelQRCode
}

func (c Channel) String() string { return string(c) }
