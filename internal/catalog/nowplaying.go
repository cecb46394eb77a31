package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"nropster/internal/logging"
)

const (
	recordingContentType = "raw-tts"
	keepIconMarker       = "save-until-i-delete-recording"
	inProgressIconMarker = "in-progress-recording"
	// The recorder reports capture times two seconds early.
	captureSkew = 2 * time.Second
)

// nowPlaying mirrors the parts of a QueryContainer response the pipeline
// reads. Element names match regardless of the recorder's XML namespace.
type nowPlaying struct {
	XMLName   xml.Name         `xml:"TiVoContainer"`
	Details   containerDetails `xml:"Details"`
	ItemStart int              `xml:"ItemStart"`
	ItemCount int              `xml:"ItemCount"`
	Items     []nowPlayingItem `xml:"Item"`
}

type containerDetails struct {
	Title      string `xml:"Title,omitempty"`
	TotalItems int    `xml:"TotalItems"`
}

type nowPlayingItem struct {
	Details itemDetails `xml:"Details"`
	Links   itemLinks   `xml:"Links"`
}

type itemDetails struct {
	ContentType  string `xml:"ContentType"`
	Title        string `xml:"Title"`
	EpisodeTitle string `xml:"EpisodeTitle,omitempty"`
	SourceSize   int64  `xml:"SourceSize"`
	Duration     int64  `xml:"Duration"`
	CaptureDate  string `xml:"CaptureDate"`
}

type itemLinks struct {
	Content    link `xml:"Content"`
	CustomIcon link `xml:"CustomIcon"`
}

type link struct {
	URL string `xml:"Url,omitempty"`
}

func decodeNowPlaying(r io.Reader) (nowPlaying, error) {
	var doc nowPlaying
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nowPlaying{}, fmt.Errorf("decode listing: %w", err)
	}
	return doc, nil
}

func encodeNowPlaying(doc nowPlaying) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode listing: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Parse reads a listing document and returns the recordings it contains in
// document order. Entries that are not recordings (folders, other content
// types) are skipped, as are recordings whose capture date cannot be read.
func Parse(r io.Reader, logger *slog.Logger) ([]Recording, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	doc, err := decodeNowPlaying(r)
	if err != nil {
		return nil, err
	}
	recordings := make([]Recording, 0, len(doc.Items))
	for _, entry := range doc.Items {
		if !strings.Contains(entry.Details.ContentType, recordingContentType) {
			continue
		}
		rec, err := entry.recording()
		if err != nil {
			logger.Warn("listing entry skipped",
				logging.String(logging.FieldTitle, strings.TrimSpace(entry.Details.Title)),
				logging.String(logging.FieldEventType, "listing_entry_skipped"),
				logging.Error(err),
			)
			continue
		}
		recordings = append(recordings, rec)
	}
	return recordings, nil
}

func (i nowPlayingItem) recording() (Recording, error) {
	captured, err := parseCaptureDate(i.Details.CaptureDate)
	if err != nil {
		return Recording{}, fmt.Errorf("recording %q: %w", i.Details.Title, err)
	}
	icon := i.Links.CustomIcon.URL
	return Recording{
		Title:        strings.TrimSpace(i.Details.Title),
		EpisodeTitle: strings.TrimSpace(i.Details.EpisodeTitle),
		Size:         i.Details.SourceSize,
		CapturedAt:   captured,
		Duration:     time.Duration(i.Details.Duration) * time.Millisecond,
		URL:          strings.TrimSpace(i.Links.Content.URL),
		Keep:         strings.Contains(icon, keepIconMarker),
		InProgress:   strings.Contains(icon, inProgressIconMarker),
	}, nil
}

// parseCaptureDate decodes the recorder's hexadecimal epoch seconds.
func parseCaptureDate(value string) (time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "0x")
	if value == "" {
		return time.Time{}, fmt.Errorf("missing capture date")
	}
	seconds, err := strconv.ParseInt(value, 16, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse capture date %q: %w", value, err)
	}
	return time.Unix(seconds, 0).Add(captureSkew).UTC(), nil
}
