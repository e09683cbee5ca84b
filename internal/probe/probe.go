package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/extfuzz/internal/config"
	"github.com/maxvaer/extfuzz/pkg/version"
)

// Prober issues the metadata-only request against the target.
type Prober struct {
	client    *http.Client
	userAgent string
}

// NewProber creates a Prober from the provided options. A zero
// ProbeTimeout leaves the transport defaults in place.
func NewProber(opts *config.Options) (*Prober, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "extfuzz/" + version.Version
	}

	return &Prober{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.ProbeTimeout,
		},
		userAgent: ua,
	}, nil
}

// FetchHeaders sends a HEAD request to rawURL, following redirects, and
// returns the final response's headers. Any failure is logged and turned
// into the Sentinel set; it is never returned to the caller.
func (p *Prober) FetchHeaders(ctx context.Context, rawURL string) HeaderSet {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		log.WithFields(log.Fields{"url": rawURL, "err": err}).Warn("Error fetching headers")
		return Sentinel()
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		log.WithFields(log.Fields{"url": rawURL, "err": err}).Warn("Error fetching headers")
		return Sentinel()
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{"url": rawURL, "status": resp.StatusCode, "headers": len(resp.Header)}).Debug("Probe finished")
	return NewHeaderSet(resp.Header)
}
