package scrape

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/krau/ocw-saver/common/cache"
	"github.com/krau/ocw-saver/pkg/ocw"
)

// Resolver walks the two page levels of a course section: the listing page that
// links resource pages, and the resource pages that link the assets.
type Resolver struct {
	client *Client
}

func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) Client() *Client {
	return r.client
}

// ResolveListing returns, in document order, the resource page urls linked by the
// anchors of the listing page that satisfy match. Each url is the listing's
// authority followed by the anchor href. Duplicates are kept.
func (r *Resolver) ResolveListing(ctx context.Context, listingURL string, match Predicate) ([]string, error) {
	logger := log.FromContext(ctx)
	doc, err := r.client.Document(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	authority := ocw.Authority(listingURL)
	links := make([]string, 0)
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		a := newAnchor(s)
		if !match(a) {
			return
		}
		if !a.HasHref {
			logger.Warn("Skipping matched anchor without href", "listing", listingURL, "anchor", a.HTML)
			return
		}
		links = append(links, authority+a.Href)
	})
	logger.Debugf("Found %d resource links in %s", len(links), listingURL)
	return links, nil
}

// ResolveAssets returns, in document order, the absolute urls of the anchors of a
// resource page whose href ends with ".pdf". Results are cached per resource url.
func (r *Resolver) ResolveAssets(ctx context.Context, resourceURL string) ([]string, error) {
	logger := log.FromContext(ctx)
	key := "assets:" + resourceURL
	if assets, ok := cache.Get[[]string](key); ok {
		logger.Debug("Asset links served from cache", "resource", resourceURL)
		return assets, nil
	}
	base, err := url.Parse(resourceURL)
	if err != nil {
		return nil, &ocw.FetchError{URL: resourceURL, Err: err}
	}
	doc, err := r.client.Document(ctx, resourceURL)
	if err != nil {
		return nil, err
	}
	assets := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasSuffix(href, ocw.AssetExt) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			logger.Warn("Skipping unparsable asset href", "resource", resourceURL, "href", href, "err", err)
			return
		}
		assets = append(assets, base.ResolveReference(ref).String())
	})
	if err := cache.Set(key, assets); err != nil {
		logger.Debug("Failed to cache asset links", "resource", resourceURL, "err", err)
	}
	return assets, nil
}
