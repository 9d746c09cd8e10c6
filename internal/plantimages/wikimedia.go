package plantimages

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"github.com/k3a/html2text"
	"github.com/sony/gobreaker"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
)

const (
	wikiProviderName = "wikimedia"
	wikiAPIEndpoint  = "https://en.wikipedia.org/w/api.php"
	wikiThumbSize    = "400"
	wikiMaxRetries   = 3
	wikiHTTPTimeout  = 20 * time.Second
)

// wikiMediaProvider fetches plant thumbnails through the Wikipedia Action
// API. Scientific names resolve through redirects to the species article,
// and attribution comes from the Commons extended metadata of the article's
// page image.
type wikiMediaProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.ImageProviderMetrics
	userAgent  string
	maxRetries int
	debug      bool
}

// authorInfo carries the attribution fields extracted from the Commons
// extended metadata of a file page.
type authorInfo struct {
	authorName  string
	authorURL   string
	licenseName string
	licenseURL  string
}

// NewWikiMediaProvider creates a Wikipedia-backed image provider. Every
// outbound request passes the rate limiter and the circuit breaker.
func NewWikiMediaProvider(settings *conf.Settings, m *metrics.ImageProviderMetrics) (*wikiMediaProvider, error) {
	if settings == nil {
		return nil, errors.Newf("image provider requires settings").
			Component("plantimages").
			Category(errors.CategoryConfiguration).
			Build()
	}

	rps := settings.Images.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := settings.Images.Burst
	if burst < 1 {
		burst = 1
	}

	p := &wikiMediaProvider{
		// A nil Transport keeps http.DefaultTransport in play, which the
		// test suite swaps out with httpmock.
		httpClient: &http.Client{Timeout: wikiHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		metrics:    m,
		userAgent:  buildUserAgent(settings.Version),
		maxRetries: wikiMaxRetries,
		debug:      settings.Debug,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wikimedia-api",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				if p.metrics != nil {
					p.metrics.IncrementBreakerOpens()
				}
				getLogger().Warn("image provider circuit breaker opened",
					"breaker", name, "from", from.String())
				return
			}
			getLogger().Info("image provider circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return p, nil
}

// buildUserAgent identifies the application per the Wikimedia User-Agent
// policy. Anonymous tool traffic without contact information gets blocked.
func buildUserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("BloomCal/%s (https://github.com/verdantlabs/bloomcal) Go-http-client/%s",
		version, strings.TrimPrefix(runtime.Version(), "go"))
}

// Fetch retrieves the thumbnail and attribution for a plant. A page without
// a free-licensed page image yields ErrImageNotFound.
func (p *wikiMediaProvider) Fetch(ctx context.Context, scientificName string) (PlantImage, error) {
	reqID := uuid.New().String()[:8]
	p.debugLog("fetching plant image",
		"request_id", reqID, "scientific_name", scientificName)

	thumbnailURL, fileName, err := p.queryThumbnail(ctx, reqID, scientificName)
	if err != nil {
		return PlantImage{}, err
	}

	info, err := p.queryAuthorInfo(ctx, reqID, fileName)
	if err != nil {
		return PlantImage{}, err
	}

	return PlantImage{
		URL:            thumbnailURL,
		ScientificName: scientificName,
		LicenseName:    info.licenseName,
		LicenseURL:     info.licenseURL,
		AuthorName:     info.authorName,
		AuthorURL:      info.authorURL,
		CachedAt:       time.Now(),
		SourceProvider: wikiProviderName,
	}, nil
}

// queryThumbnail asks for the free-licensed page image of the species
// article. The pilicense filter means pages whose only image is non-free
// come back without a thumbnail.
func (p *wikiMediaProvider) queryThumbnail(ctx context.Context, reqID, scientificName string) (thumbnailURL, fileName string, err error) {
	page, err := p.queryAndGetFirstPage(ctx, reqID, url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"pageimages"},
		"piprop":        {"thumbnail|name"},
		"pilicense":     {"free"},
		"titles":        {scientificName},
		"pithumbsize":   {wikiThumbSize},
		"redirects":     {""},
	})
	if err != nil {
		return "", "", err
	}

	thumbnailURL, err = page.GetString("thumbnail", "source")
	if err != nil {
		p.debugLog("page has no free image",
			"request_id", reqID, "title", scientificName)
		return "", "", ErrImageNotFound
	}
	fileName, err = page.GetString("pageimage")
	if err != nil {
		return "", "", ErrImageNotFound
	}
	return thumbnailURL, fileName, nil
}

// queryAuthorInfo fetches the Commons extended metadata for the page image
// and extracts author and license attribution from it.
func (p *wikiMediaProvider) queryAuthorInfo(ctx context.Context, reqID, fileName string) (*authorInfo, error) {
	page, err := p.queryAndGetFirstPage(ctx, reqID, url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"imageinfo"},
		"iiprop":        {"extmetadata"},
		"titles":        {"File:" + fileName},
		"redirects":     {""},
	})
	if err != nil {
		return nil, err
	}

	imageInfo, err := page.GetObjectArray("imageinfo")
	if err != nil || len(imageInfo) == 0 {
		return nil, errors.Newf("file page carries no imageinfo: %s", fileName).
			Component("plantimages").
			Category(errors.CategoryImageFetch).
			Context("file", fileName).
			Build()
	}
	ext, err := imageInfo[0].GetObject("extmetadata")
	if err != nil {
		return nil, errors.New(err).
			Component("plantimages").
			Category(errors.CategoryImageFetch).
			Context("operation", "extract_metadata").
			Context("file", fileName).
			Build()
	}

	info := &authorInfo{
		authorName:  "Unknown",
		licenseName: "Unknown",
	}
	if artistHTML, aerr := ext.GetString("Artist", "value"); aerr == nil && artistHTML != "" {
		name, href := extractArtistInfo(artistHTML)
		if name != "" {
			info.authorName = name
		}
		info.authorURL = href
	}
	if license, lerr := ext.GetString("LicenseShortName", "value"); lerr == nil && license != "" {
		info.licenseName = license
	}
	if licenseURL, lerr := ext.GetString("LicenseUrl", "value"); lerr == nil {
		info.licenseURL = licenseURL
	}
	return info, nil
}

// queryAndGetFirstPage performs an Action API query and returns the first
// page of the response. Transient failures retry with exponential backoff;
// an empty page list means the title does not exist.
func (p *wikiMediaProvider) queryAndGetFirstPage(ctx context.Context, reqID string, params url.Values) (*jason.Object, error) {
	var lastErr error
	for attempt := range p.maxRetries {
		resp, err := p.apiRequest(ctx, reqID, params)
		if err == nil {
			pages, perr := resp.GetObjectArray("query", "pages")
			if perr != nil || len(pages) == 0 {
				p.debugLog("query returned no pages",
					"request_id", reqID, "titles", params.Get("titles"))
				return nil, ErrImageNotFound
			}
			return pages[0], nil
		}

		lastErr = err
		p.debugLog("api query failed",
			"request_id", reqID, "attempt", attempt+1, "error", err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < p.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second * time.Duration(1<<attempt)):
			}
		}
	}

	return nil, errors.New(lastErr).
		Component("plantimages").
		Category(errors.CategoryImageFetch).
		Context("titles", params.Get("titles")).
		Context("attempts", p.maxRetries).
		Build()
}

// apiRequest performs one rate-limited request against the Action API and
// decodes the response body.
func (p *wikiMediaProvider) apiRequest(ctx context.Context, reqID string, params url.Values) (*jason.Object, error) {
	if err := p.waitForSlot(ctx); err != nil {
		return nil, err
	}

	result, err := p.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			wikiAPIEndpoint+"?"+params.Encode(), http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				getLogger().Debug("response body close failed",
					"request_id", reqID, "error", cerr)
			}
		}()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("wikimedia api returned status %d", resp.StatusCode)
		}
		return jason.NewObjectFromReader(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.(*jason.Object), nil
}

// waitForSlot enforces the outbound request rate, counting only waits that
// actually block.
func (p *wikiMediaProvider) waitForSlot(ctx context.Context) error {
	if p.limiter.Allow() {
		return nil
	}
	if p.metrics != nil {
		p.metrics.IncrementRateLimitWaits()
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return errors.New(err).
			Component("plantimages").
			Category(errors.CategoryNetwork).
			Context("operation", "rate_limit_wait").
			Build()
	}
	return nil
}

func (p *wikiMediaProvider) debugLog(msg string, args ...any) {
	if p.debug {
		getLogger().Debug(msg, args...)
	}
}

// extractArtistInfo pulls a display name and link out of the Artist HTML
// fragment from Commons extended metadata. The fragment is free-form HTML;
// a single user page link is the most reliable signal when present.
func extractArtistInfo(artistHTML string) (name, href string) {
	doc, err := html.Parse(strings.NewReader(artistHTML))
	if err != nil {
		return strings.TrimSpace(html2text.HTML2Text(artistHTML)), ""
	}

	links := findLinks(doc)
	if len(links) == 0 {
		return strings.TrimSpace(html2text.HTML2Text(artistHTML)), ""
	}

	if userLinks := filterUserLinks(links); len(userLinks) == 1 {
		return linkText(userLinks[0]), linkHref(userLinks[0])
	}
	if len(links) == 1 {
		return linkText(links[0]), linkHref(links[0])
	}
	return strings.TrimSpace(html2text.HTML2Text(artistHTML)), ""
}

// findLinks collects the anchor elements of a parsed fragment.
func findLinks(doc *html.Node) []*html.Node {
	var links []*html.Node
	for n := range doc.Descendants() {
		if n.Type == html.ElementNode && n.Data == "a" {
			links = append(links, n)
		}
	}
	return links
}

// filterUserLinks keeps anchors that point at a wiki user page.
func filterUserLinks(links []*html.Node) []*html.Node {
	var userLinks []*html.Node
	for _, link := range links {
		if strings.Contains(linkHref(link), "/wiki/User:") {
			userLinks = append(userLinks, link)
		}
	}
	return userLinks
}

func linkHref(link *html.Node) string {
	for _, attr := range link.Attr {
		if attr.Key == "href" {
			return normalizeWikiHref(attr.Val)
		}
	}
	return ""
}

func linkText(link *html.Node) string {
	var sb strings.Builder
	for n := range link.Descendants() {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// normalizeWikiHref upgrades protocol-relative links, which is how Commons
// metadata usually writes them.
func normalizeWikiHref(href string) string {
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
