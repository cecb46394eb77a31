package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/icholy/digest"

	"nropster/internal/logging"
	"nropster/internal/services"
)

const (
	chunkSize       = 64 << 10
	maxHandshakeLen = 64 << 10
)

// ChunkStream yields a recording as a sequence of frames. The first frame is
// always the session handshake (the body of the recorder's authentication
// challenge, possibly empty) and carries no content. Frames are only valid
// until the next call to Next. Next returns io.EOF after the last frame.
type ChunkStream interface {
	Next() ([]byte, error)
	Close() error
}

type httpStream struct {
	handshake []byte
	delivered bool
	body      io.ReadCloser
	buf       []byte
}

func (s *httpStream) Next() ([]byte, error) {
	if !s.delivered {
		s.delivered = true
		return s.handshake, nil
	}
	n, err := s.body.Read(s.buf)
	if n > 0 {
		return s.buf[:n], nil
	}
	if err == nil {
		return s.buf[:0], nil
	}
	return nil, err
}

func (s *httpStream) Close() error {
	return s.body.Close()
}

// Open starts a content transfer for a recording URL. The recorder answers
// the first request with a digest challenge; its body becomes the handshake
// frame and the request is repeated with credentials. A 503 from either
// request means the recorder is busy with another transfer.
func (c *Client) Open(ctx context.Context, rawURL string) (ChunkStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "build request", rawURL, err)
	}

	resp, err := c.content.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "open stream", "", err)
	}

	handshake := []byte{}
	if resp.StatusCode == http.StatusUnauthorized {
		handshake, err = io.ReadAll(io.LimitReader(resp.Body, maxHandshakeLen))
		resp.Body.Close()
		if err != nil {
			return nil, services.Wrap(services.ErrFetchFailed, "fetch", "read challenge", "", err)
		}
		resp, err = c.authorize(ctx, req, resp.Header)
		if err != nil {
			return nil, err
		}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		resp.Body.Close()
		return nil, services.Wrap(services.ErrBusy, "fetch", "open stream", "recorder busy", nil)
	default:
		resp.Body.Close()
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "open stream", fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	c.logger.Debug("stream opened",
		logging.Int("handshake_bytes", len(handshake)),
		logging.Int64("content_length", resp.ContentLength),
	)
	return &httpStream{handshake: handshake, body: resp.Body, buf: make([]byte, chunkSize)}, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request, header http.Header) (*http.Response, error) {
	chal, err := digest.FindChallenge(header)
	if err != nil {
		if errors.Is(err, digest.ErrNoChallenge) {
			return nil, services.Wrap(services.ErrFetchFailed, "fetch", "authenticate", "recorder rejected the request without a digest challenge", nil)
		}
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "authenticate", "", err)
	}
	cred, err := digest.Digest(chal, digest.Options{
		Method:   req.Method,
		URI:      req.URL.RequestURI(),
		Count:    1,
		Username: c.username,
		Password: c.mak,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "authenticate", "", err)
	}

	authed := req.Clone(ctx)
	authed.Header.Set("Authorization", cred.String())
	resp, err := c.content.Do(authed)
	if err != nil {
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "open stream", "", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrFetchFailed, "fetch", "authenticate", "media access key rejected", nil)
	}
	return resp, nil
}
