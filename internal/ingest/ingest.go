package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"entmatch/internal/config"
	"entmatch/internal/logging"
)

// Options bounds what the ingestor admits.
type Options struct {
	MaxFileSize  int64
	AllowedTypes []string
}

// OptionsFromConfig maps the [upload] section onto ingestor options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxFileSize:  cfg.Upload.MaxFileSize,
		AllowedTypes: append([]string(nil), cfg.Upload.AllowedTypes...),
	}
}

// Ingestor validates and parses name files.
type Ingestor struct {
	opts    Options
	allowed map[string]struct{}
	logger  *slog.Logger
}

// New constructs an Ingestor.
func New(opts Options, logger *slog.Logger) *Ingestor {
	allowed := make(map[string]struct{}, len(opts.AllowedTypes))
	for _, t := range opts.AllowedTypes {
		allowed[baseType(t)] = struct{}{}
	}
	return &Ingestor{
		opts:    opts,
		allowed: allowed,
		logger:  logging.NewComponentLogger(logger, "ingest"),
	}
}

// Validate performs the pre-parse admission checks on the declared content
// type and size.
func (i *Ingestor) Validate(file File) error {
	if _, ok := i.allowed[baseType(file.ContentType)]; !ok || formatOf(file.ContentType) == formatUnknown {
		return invalid(fmt.Sprintf("Only %s files are allowed", i.allowedLabel()))
	}
	if i.opts.MaxFileSize > 0 && file.Size > i.opts.MaxFileSize {
		return i.sizeError()
	}
	return nil
}

// Ingest validates file and extracts its names in source order.
func (i *Ingestor) Ingest(ctx context.Context, file File) ([]string, error) {
	if err := i.Validate(file); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if file.Body == nil {
		return nil, invalid("File has no content")
	}

	data, err := i.readBounded(file.Body)
	if err != nil {
		return nil, err
	}

	f := formatOf(file.ContentType)
	if len(data) == 0 {
		return nil, invalid(fmt.Sprintf("%s file is empty", f.label()))
	}

	var names []string
	switch f {
	case formatCSV:
		names, err = parseCSV(ctx, data)
	case formatJSON:
		names, err = parseJSON(data)
	case formatYAML:
		names, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	i.logger.Debug("file ingested",
		logging.String("file", file.Name),
		logging.String("content_type", baseType(file.ContentType)),
		logging.Int("names", len(names)),
	)
	return names, nil
}

// readBounded reads at most MaxFileSize bytes, decoding UTF-8 and dropping a
// leading byte order mark.
func (i *Ingestor) readBounded(body io.Reader) ([]byte, error) {
	reader := body
	if i.opts.MaxFileSize > 0 {
		reader = io.LimitReader(body, i.opts.MaxFileSize+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if i.opts.MaxFileSize > 0 && int64(len(raw)) > i.opts.MaxFileSize {
		return nil, i.sizeError()
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, invalid(fmt.Sprintf("File is not valid text: %v", err))
	}
	return bytes.TrimSpace(decoded), nil
}

func (i *Ingestor) sizeError() *ValidationError {
	return invalid(fmt.Sprintf("File size must be less than %s", humanize.IBytes(uint64(i.opts.MaxFileSize))))
}

func (i *Ingestor) allowedLabel() string {
	seen := map[string]struct{}{}
	labels := make([]string, 0, len(i.opts.AllowedTypes))
	for _, t := range i.opts.AllowedTypes {
		label := formatOf(t).label()
		if label == "unknown" {
			label = baseType(t)
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	switch len(labels) {
	case 0:
		return "supported"
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}
