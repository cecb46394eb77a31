package testsupport

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ListingEntry is one recording in a fake Now Playing document.
type ListingEntry struct {
	Title      string
	Episode    string
	Size       int64
	Duration   time.Duration
	Captured   time.Time
	URL        string
	Keep       bool
	InProgress bool
}

// Listing renders entries as a single-page Now Playing document in the
// recorder's XML shape.
func Listing(entries ...ListingEntry) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n<TiVoContainer>\n")
	fmt.Fprintf(&b, "  <Details><TotalItems>%d</TotalItems></Details>\n", len(entries))
	for _, e := range entries {
		b.WriteString("  <Item><Details><ContentType>video/x-tivo-raw-tts</ContentType>")
		fmt.Fprintf(&b, "<Title>%s</Title>", html.EscapeString(e.Title))
		if e.Episode != "" {
			fmt.Fprintf(&b, "<EpisodeTitle>%s</EpisodeTitle>", html.EscapeString(e.Episode))
		}
		fmt.Fprintf(&b, "<SourceSize>%d</SourceSize><Duration>%d</Duration><CaptureDate>0x%X</CaptureDate>",
			e.Size, e.Duration.Milliseconds(), e.Captured.Unix())
		b.WriteString("</Details><Links>")
		fmt.Fprintf(&b, "<Content><Url>%s</Url></Content>", html.EscapeString(e.URL))
		switch {
		case e.InProgress:
			b.WriteString("<CustomIcon><Url>urn:tivo:image:in-progress-recording</Url></CustomIcon>")
		case e.Keep:
			b.WriteString("<CustomIcon><Url>urn:tivo:image:save-until-i-delete-recording</Url></CustomIcon>")
		}
		b.WriteString("</Links></Item>\n")
	}
	b.WriteString("</TiVoContainer>\n")
	return []byte(b.String())
}
