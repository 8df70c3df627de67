// internal/scraper/metadata.go
package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/evostudios/StableScraper/internal/utils"
)

// Sentinel values used when the page carries no usable title.
const (
	UnknownHorse   = "Unknown Horse"
	UnknownTrainer = "Unknown Trainer"
)

// PageMetadata is the structured result of parsing one report page.
type PageMetadata struct {
	TrainerLogoURL  string   `json:"trainer_logo_url,omitempty"`
	HorseName       string   `json:"horse_name"`
	TrainerName     string   `json:"trainer_name"`
	ReportText      string   `json:"report_text"`
	VideoPlayerURLs []string `json:"video_urls"`
	VideoCount      int      `json:"video_count"`
}

// MetadataExtractor parses report markup into PageMetadata.
type MetadataExtractor struct {
	videoHost string
}

var (
	logoClassPattern    = regexp.MustCompile(`(?i)logo|brand|trainer`)
	headerClassPattern  = regexp.MustCompile(`(?i)header|banner`)
	contentClassPattern = regexp.MustCompile(`(?i)content|report|main`)
)

// NewMetadataExtractor creates an extractor for the given video host domain.
func NewMetadataExtractor(videoHost string) *MetadataExtractor {
	if videoHost == "" {
		videoHost = "vimeo.com"
	}
	return &MetadataExtractor{videoHost: videoHost}
}

// Extract parses the raw markup. Missing optional fields are encoded as
// zero values in the result, never as errors; only unparseable markup
// fails, and goquery accepts essentially any byte stream, so failures are
// limited to reader errors.
func (me *MetadataExtractor) Extract(rawMarkup string) (*PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return nil, utils.WrapError(utils.ErrCodeMetadataParse, "failed to parse report markup", err)
	}

	meta := &PageMetadata{
		TrainerLogoURL:  me.extractTrainerLogo(doc),
		VideoPlayerURLs: me.extractVideoURLs(doc),
	}
	meta.VideoCount = len(meta.VideoPlayerURLs)
	meta.HorseName, meta.TrainerName = me.extractNames(doc)

	// Script and style content must not leak into the report text.
	doc.Find("script, style").Remove()
	meta.ReportText = me.extractReportText(doc)

	return meta, nil
}

// extractTrainerLogo finds the trainer logo: first an image with a
// logo/brand/trainer class, then any image inside a header/banner
// container, else empty.
func (me *MetadataExtractor) extractTrainerLogo(doc *goquery.Document) string {
	var logo string

	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		src, hasSrc := s.Attr("src")
		if logoClassPattern.MatchString(class) && hasSrc && src != "" {
			logo = src
			return false
		}
		return true
	})
	if logo != "" {
		return logo
	}

	doc.Find("header, div").EachWithBreak(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !headerClassPattern.MatchString(class) {
			return true
		}
		if src, ok := s.Find("img").First().Attr("src"); ok && src != "" {
			logo = src
			return false
		}
		return true
	})

	return logo
}

// extractVideoURLs collects every iframe pointing at the video host and
// normalizes protocol-relative and root-relative sources to absolute
// HTTPS URLs.
func (me *MetadataExtractor) extractVideoURLs(doc *goquery.Document) []string {
	var urls []string

	doc.Find("iframe[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		normalized, ok := me.normalizeVideoURL(src)
		if ok {
			urls = append(urls, normalized)
		}
	})

	return urls
}

// normalizeVideoURL makes src absolute and returns it only when its host
// belongs to the configured video host domain.
func (me *MetadataExtractor) normalizeVideoURL(src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(src, "//"):
		src = "https:" + src
	case strings.HasPrefix(src, "/"):
		src = fmt.Sprintf("https://%s%s", me.videoHost, src)
	}

	parsed, err := url.Parse(src)
	if err != nil || parsed.Host == "" {
		return "", false
	}

	host := strings.ToLower(parsed.Host)
	if host != me.videoHost && !strings.HasSuffix(host, "."+me.videoHost) {
		return "", false
	}

	// Upstream embeds are always served over TLS.
	parsed.Scheme = "https"
	return parsed.String(), true
}

// extractNames derives horse and trainer names from the page title
// ("Horse | Trainer"), falling back to the first heading and finally to
// the sentinel defaults.
func (me *MetadataExtractor) extractNames(doc *goquery.Document) (string, string) {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	if title != "" {
		if strings.Contains(title, "|") {
			parts := strings.SplitN(title, "|", 2)
			horse := strings.TrimSpace(parts[0])
			trainer := strings.TrimSpace(parts[1])
			if horse == "" {
				horse = UnknownHorse
			}
			if trainer == "" {
				trainer = UnknownTrainer
			}
			return horse, trainer
		}
		return title, UnknownTrainer
	}

	if heading := strings.TrimSpace(doc.Find("h1").First().Text()); heading != "" {
		return heading, UnknownTrainer
	}

	return UnknownHorse, UnknownTrainer
}

// extractReportText returns the line-normalized text of the most specific
// content/report/main-classed container, else the whole page.
func (me *MetadataExtractor) extractReportText(doc *goquery.Document) string {
	container := doc.Find("main, article, div").FilterFunction(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return contentClassPattern.MatchString(class)
	}).First()

	var lines []string
	if container.Length() > 0 {
		lines = textLines(container)
	} else {
		lines = textLines(doc.Selection)
	}

	return norm.NFC.String(strings.Join(lines, "\n"))
}

// textLines walks the selection's node tree and collects the trimmed,
// non-blank text nodes in document order.
func textLines(sel *goquery.Selection) []string {
	var lines []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, node := range sel.Nodes {
		walk(node)
	}
	return lines
}
