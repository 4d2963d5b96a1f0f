package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/pkg/httputil"
	"github.com/wonny/gamedash/pkg/logger"
)

// Format selects the tabular parser
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat converts a config value into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatCSV, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown dataset format %q", s)
	}
}

// Source identifies a dataset: a local path or an http(s) URL
type Source struct {
	Location string
	Format   Format
}

// IsRemote reports whether the source is fetched over HTTP
func (s Source) IsRemote() bool {
	return strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://")
}

// Loader reads and normalizes datasets
// ⭐ SSOT: datasets are created only through this package
type Loader struct {
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates a new Loader. httpClient is only needed for remote sources.
func New(httpClient *httputil.Client, log *logger.Logger) *Loader {
	return &Loader{
		httpClient: httpClient,
		logger:     log,
	}
}

// Load reads src and returns the normalized dataset.
// Every failure is a *contracts.LoadError.
func (l *Loader) Load(ctx context.Context, src Source) (*contracts.Dataset, error) {
	start := time.Now()

	body, contentType, err := l.read(ctx, src)
	if err != nil {
		return nil, &contracts.LoadError{
			Source: src.Location,
			Op:     "read",
			Err:    fmt.Errorf("%w: %w", contracts.ErrSourceUnreadable, err),
		}
	}

	format := resolveFormat(src, contentType)

	ds, err := Parse(bytes.NewReader(body), format, src.Location)
	if err != nil {
		l.logger.WithError(err).WithField("source", src.Location).Error("Dataset load failed")
		return nil, err
	}

	l.logger.WithFields(map[string]interface{}{
		"source":              src.Location,
		"format":              string(format),
		"dataset_id":          ds.ID,
		"rows_read":           ds.Stats.RowsRead,
		"kept":                ds.Stats.Kept,
		"dropped_missing":     ds.Stats.DroppedMissing,
		"dropped_year":        ds.Stats.DroppedYear,
		"dropped_non_numeric": ds.Stats.DroppedNonNumeric,
		"duration":            time.Since(start).String(),
	}).Info("Dataset loaded")

	return ds, nil
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if src.IsRemote() {
		if l.httpClient == nil {
			return nil, "", fmt.Errorf("no http client configured for %s", src.Location)
		}
		return l.httpClient.GetBody(ctx, src.Location)
	}

	f, err := os.Open(src.Location)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return body, "", nil
}

// Parse normalizes a tabular stream. FormatAuto sniffs the content.
func Parse(r io.Reader, format Format, source string) (*contracts.Dataset, error) {
	if format == FormatAuto || format == "" {
		br, sniffed, err := sniff(r)
		if err != nil {
			return nil, &contracts.LoadError{
				Source: source,
				Op:     "read",
				Err:    fmt.Errorf("%w: %w", contracts.ErrSourceUnreadable, err),
			}
		}
		r, format = br, sniffed
	}

	var (
		t   *table
		err error
	)
	switch format {
	case FormatHTML:
		t, err = readHTMLTable(r)
	default:
		t, err = readCSVTable(r)
	}
	if err != nil {
		return nil, &contracts.LoadError{Source: source, Op: "parse " + string(format), Err: err}
	}

	records, stats, err := normalize(t)
	if err != nil {
		return nil, &contracts.LoadError{Source: source, Op: "normalize", Err: err}
	}

	return contracts.NewDataset(records, contracts.DatasetMeta{
		Source: source,
		Stats:  stats,
	}), nil
}

// resolveFormat picks a parser from the explicit format, then the extension, then the content type
func resolveFormat(src Source, contentType string) Format {
	if src.Format == FormatCSV || src.Format == FormatHTML {
		return src.Format
	}

	location := src.Location
	if i := strings.IndexAny(location, "?#"); i >= 0 && src.IsRemote() {
		location = location[:i]
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".csv":
		return FormatCSV
	case ".html", ".htm":
		return FormatHTML
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "text/csv", "application/csv":
			return FormatCSV
		case "text/html", "application/xhtml+xml":
			return FormatHTML
		}
	}

	return FormatAuto
}

// sniff decides between CSV and HTML from the first non-blank byte
func sniff(r io.Reader) (io.Reader, Format, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", err
	}
	head = head[:n]

	format := FormatCSV
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\ufeff")), " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		format = FormatHTML
	}

	return io.MultiReader(bytes.NewReader(head), r), format, nil
}
