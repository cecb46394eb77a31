package catalog

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/icholy/digest"

	"nropster/internal/config"
	"nropster/internal/logging"
	"nropster/internal/services"
)

const (
	queryPath           = "/TiVoConnect"
	nowPlayingContainer = "/NowPlaying"
	maxListingBytes     = 32 << 20
)

// Client talks to the recorder over HTTPS with digest authentication. One
// cookie jar is shared between listing and content requests so the session
// the recorder hands out on the listing carries over to downloads.
type Client struct {
	base     *url.URL
	username string
	mak      string
	pageSize int
	listing  *http.Client
	content  *http.Client
	logger   *slog.Logger
}

// NewClient builds a client for the configured device.
func NewClient(dev config.Device, logger *slog.Logger) (*Client, error) {
	base, err := deviceURL(dev.Address)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "parse device address", "", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if dev.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // recorders ship self-signed certificates
	}

	pageSize := dev.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	return &Client{
		base:     base,
		username: dev.Username,
		mak:      dev.MediaAccessKey,
		pageSize: pageSize,
		listing: &http.Client{
			Timeout: time.Duration(dev.RequestTimeout) * time.Second,
			Transport: &digest.Transport{
				Username:  dev.Username,
				Password:  dev.MediaAccessKey,
				Transport: transport,
				Jar:       jar,
			},
		},
		// Content transfers run for as long as the recording takes to stream.
		content: &http.Client{Transport: transport, Jar: jar},
		logger:  logging.NewComponentLogger(logger, "catalog"),
	}, nil
}

func deviceURL(address string) (*url.URL, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("empty device address")
	}
	if !strings.Contains(address, "://") {
		address = "https://" + address
	}
	parsed, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("device address %q has no host", address)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed, nil
}

// FetchListing retrieves the full NowPlaying listing, following pages until
// the recorder's reported total is reached, and returns it as one document.
func (c *Client) FetchListing(ctx context.Context) ([]byte, error) {
	var merged nowPlaying
	offset := 0
	for {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, services.Wrap(services.ErrSourceUnreachable, "catalog", "query now playing", c.base.Host, err)
		}
		if offset == 0 {
			merged.Details = page.Details
		}
		merged.Items = append(merged.Items, page.Items...)
		offset += len(page.Items)
		c.logger.Debug("listing page received",
			logging.Int("offset", page.ItemStart),
			logging.Int("items", len(page.Items)),
			logging.Int("total", page.Details.TotalItems),
		)
		if len(page.Items) == 0 || offset >= page.Details.TotalItems {
			break
		}
	}
	merged.ItemCount = len(merged.Items)
	merged.Details.TotalItems = len(merged.Items)
	c.logger.Info("listing retrieved", logging.Int("items", len(merged.Items)))
	return encodeNowPlaying(merged)
}

func (c *Client) fetchPage(ctx context.Context, offset int) (nowPlaying, error) {
	endpoint := c.queryURL(offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nowPlaying{}, err
	}
	resp, err := c.listing.Do(req)
	if err != nil {
		return nowPlaying{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nowPlaying{}, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return decodeNowPlaying(io.LimitReader(resp.Body, maxListingBytes))
}

func (c *Client) queryURL(offset int) string {
	query := url.Values{}
	query.Set("Command", "QueryContainer")
	query.Set("Container", nowPlayingContainer)
	query.Set("Recurse", "Yes")
	query.Set("ItemCount", strconv.Itoa(c.pageSize))
	query.Set("AnchorOffset", strconv.Itoa(offset))

	endpoint := *c.base
	endpoint.Path = c.base.Path + queryPath
	endpoint.RawQuery = query.Encode()
	return endpoint.String()
}
