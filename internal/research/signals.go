package research

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/campaign-composer/internal/fetch"
)

// MaxSignalChars caps how much site text is fed into a research prompt.
const MaxSignalChars = 4000

// browserTimeout bounds headless rendering of a single prospect site.
const browserTimeout = 30 * time.Second

// CollectSiteSignals fetches the prospect's website and extracts its main text for
// use as research signals. When the plain HTTP fetch yields too little content and
// useBrowser is set, the page is re-rendered in a headless browser.
func CollectSiteSignals(ctx context.Context, website string, useBrowser bool) (string, error) {
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	result, err := fetch.URL(ctx, website, nil)
	if err != nil && result == nil {
		return "", err
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.DefaultTextSelectors())
	if err != nil {
		return "", err
	}

	if useBrowser && fetch.ShouldUseBrowser(text) {
		html, berr := fetch.WithBrowser(ctx, website, browserTimeout)
		if berr == nil {
			if rendered, eerr := fetch.ExtractMainText(html, fetch.DefaultTextSelectors()); eerr == nil {
				text = rendered
			}
		}
	}

	if len(text) > MaxSignalChars {
		text = text[:MaxSignalChars]
	}
	return text, nil
}
