package casio

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"MarketSync/internal/config"
	"MarketSync/internal/domain"
	"MarketSync/internal/ports"
)

var archiveLinkExpr = regexp.MustCompile(`ostatki.*\.zip`)

// FeedClient downloads the wholesale remnants archive and parses it into
// feed items. The archive URL is either configured directly or discovered on
// the supplier download page.
type FeedClient struct {
	cfg    config.FeedConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.StockFeed = (*FeedClient)(nil)

// NewFeedClient wires an HTTP client; the default allows for the slow
// archive download.
func NewFeedClient(cfg config.FeedConfig, client *http.Client, logger *slog.Logger) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &FeedClient{cfg: cfg, client: client, logger: logger}
}

// Fetch resolves the archive location, downloads it and parses the tabular
// entry inside.
func (f *FeedClient) Fetch(ctx context.Context) ([]domain.FeedItem, error) {
	archiveURL := f.cfg.ArchiveURL
	if archiveURL == "" {
		discovered, err := f.discoverArchiveURL(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover archive: %w", err)
		}
		archiveURL = discovered
	}

	raw, err := f.download(ctx, archiveURL)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	items, err := f.parseArchive(raw)
	if err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	f.debug("feed parsed", "url", archiveURL, "items", len(items))
	return items, nil
}

// discoverArchiveURL scans the download page for the remnants archive link.
func (f *FeedClient) discoverArchiveURL(ctx context.Context) (string, error) {
	if f.cfg.PageURL == "" {
		return "", fmt.Errorf("neither archive nor page url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.PageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(i int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if archiveLinkExpr.MatchString(href) {
			found = href
			return false
		}
		return true
	})
	if found == "" {
		return "", fmt.Errorf("no remnants archive link on %s", f.cfg.PageURL)
	}

	base, err := url.Parse(f.cfg.PageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	ref, err := url.Parse(found)
	if err != nil {
		return "", fmt.Errorf("invalid archive link %s: %w", found, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (f *FeedClient) download(ctx context.Context, archiveURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supplier returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return raw, nil
}

func (f *FeedClient) parseArchive(raw []byte) ([]domain.FeedItem, error) {
	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	suffix := f.cfg.FileSuffix
	if suffix == "" {
		suffix = ".csv"
	}

	for _, entry := range archive.File {
		if !strings.HasSuffix(entry.Name, suffix) {
			continue
		}
		file, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", entry.Name, err)
		}
		items, err := f.parseTable(file)
		closeErr := file.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close %s: %w", entry.Name, closeErr)
		}
		return items, nil
	}

	return nil, fmt.Errorf("no %s entry in archive", suffix)
}

// parseTable reads the delimiter-separated export: a fixed preamble, then a
// header row naming the columns, then data rows. Footer rows without an
// article code are skipped.
func (f *FeedClient) parseTable(r io.Reader) ([]domain.FeedItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if f.cfg.Separator != "" {
		reader.Comma = []rune(f.cfg.Separator)[0]
	}

	for skipped := 0; skipped < f.cfg.PreambleRows; skipped++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skip preamble: %w", err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	codeIdx, err := columnIndex(header, f.cfg.CodeColumn)
	if err != nil {
		return nil, err
	}
	quantityIdx, err := columnIndex(header, f.cfg.QuantityColumn)
	if err != nil {
		return nil, err
	}
	priceIdx, err := columnIndex(header, f.cfg.PriceColumn)
	if err != nil {
		return nil, err
	}

	var items []domain.FeedItem
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		code := strings.TrimSpace(cell(row, codeIdx))
		if code == "" {
			continue
		}

		quantity, err := parseQuantity(cell(row, quantityIdx))
		if err != nil {
			return nil, fmt.Errorf("article %s: %w", code, err)
		}

		items = append(items, domain.FeedItem{
			Code:     code,
			Quantity: quantity,
			RawPrice: cell(row, priceIdx),
		})
	}

	return items, nil
}

// parseQuantity maps the supplier's stock notation to a sellable count.
// ">10" is reported as 100 so the marketplace never runs the listing dry;
// a single remaining unit is the showcase sample and is not for sale.
func parseQuantity(raw string) (int, error) {
	switch strings.TrimSpace(raw) {
	case ">10":
		return 100, nil
	case "1":
		return 0, nil
	case "":
		return 0, nil
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("bad quantity %q: %w", raw, err)
	}
	if quantity < 0 {
		return 0, fmt.Errorf("negative quantity %q", raw)
	}
	return quantity, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, column := range header {
		if strings.TrimSpace(column) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in feed header", name)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func (f *FeedClient) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
