package data

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"smsingest/pkg/errs"
)

const opLoad = "load"

// LoaderOptions tunes how a CSV source is fetched and parsed.
type LoaderOptions struct {
	Encoding   string        // source charset; empty or utf-8 reads bytes as-is
	Timeout    time.Duration // zero means no deadline beyond ctx
	LazyQuotes bool
	Client     *http.Client // nil uses http.DefaultClient
}

// Loader reads a CSV resource into a string-typed DataFrame.
type Loader struct {
	log    *zap.Logger
	opts   LoaderOptions
	client *http.Client
}

func NewLoader(log *zap.Logger, opts LoaderOptions) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{log: log, opts: opts, client: client}
}

// Load fetches source (http(s) URL, file:// URL or filesystem path) and
// parses it. Malformed content is a KindParse error; anything else that
// stops the fetch is KindIO.
func (l *Loader) Load(ctx context.Context, source string) (dataframe.DataFrame, error) {
	df, err := l.load(ctx, source)
	if err != nil {
		if errs.Is(err, errs.KindParse) {
			l.log.Error("Failed to parse CSV file", zap.String("source", source), zap.Error(err))
		} else {
			l.log.Error("Unknown error while loading data", zap.String("source", source), zap.Error(err))
		}
		return dataframe.DataFrame{}, err
	}
	l.log.Debug("Data loaded from "+source, zap.Int("rows", df.Nrow()), zap.Int("columns", df.Ncol()))
	return df, nil
}

func (l *Loader) load(ctx context.Context, source string) (dataframe.DataFrame, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	rc, err := l.open(ctx, source)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()

	return l.Read(rc)
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.fetch(ctx, source)
		case "file":
			source = u.Path
			if u.Host != "" && u.Host != "localhost" {
				source = u.Host + u.Path
			}
		}
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, errs.E(errs.KindIO, opLoad, err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errs.E(errs.KindIO, opLoad, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errs.E(errs.KindIO, opLoad, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errs.E(errs.KindIO, opLoad, fmt.Errorf("GET %s: unexpected status %s", source, resp.Status))
	}
	return resp.Body, nil
}

// Read parses CSV content from r. The first record is the header.
func (l *Loader) Read(r io.Reader) (dataframe.DataFrame, error) {
	dec, err := decoder(l.opts.Encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec.NewDecoder())
	}

	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = l.opts.LazyQuotes

	header, err := reader.Read()
	if err == io.EOF {
		return dataframe.DataFrame{}, errs.E(errs.KindParse, opLoad, errors.New("no columns to parse from file"))
	}
	if err != nil {
		return dataframe.DataFrame{}, readErr(err)
	}
	header = NormalizeHeader(header)

	records := [][]string{header}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dataframe.DataFrame{}, readErr(err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return dataframe.DataFrame{}, errs.E(errs.KindParse, opLoad, fmt.Errorf(
				"expected %d fields in line %d, saw %d", len(header), line, len(rec)))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		records = append(records, rec)
	}

	return frame(records)
}

func frame(records [][]string) (dataframe.DataFrame, error) {
	var df dataframe.DataFrame
	if len(records) == 1 {
		cols := make([]series.Series, len(records[0]))
		for i, name := range records[0] {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df = dataframe.New(cols...)
	} else {
		df = dataframe.LoadRecords(records,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			dataframe.NaNValues(nil),
		)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, errs.E(errs.KindUnknown, opLoad, df.Err)
	}
	return df, nil
}

func readErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errs.E(errs.KindParse, opLoad, err)
	}
	return errs.E(errs.KindIO, opLoad, err)
}

func decoder(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errs.E(errs.KindInvalid, opLoad, fmt.Errorf("unsupported encoding %q: %w", name, err))
	}
	return enc, nil
}

// NormalizeHeader names blank header cells "Unnamed: <index>" and
// de-duplicates repeated names with ".1", ".2", ... suffixes. A leading
// UTF-8 byte order mark is stripped from the first name.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for seen[name] > 0 {
			name = base + "." + strconv.Itoa(seen[base])
			seen[base]++
		}
		seen[name]++
		out[i] = name
	}
	return out
}
