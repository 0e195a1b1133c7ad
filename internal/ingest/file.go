package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Content types recognized by the parsers. Admission is still governed by the
// configured allow list.
const (
	TypeCSV  = "text/csv"
	TypeJSON = "application/json"
	TypeYAML = "application/yaml"
)

type format int

const (
	formatUnknown format = iota
	formatCSV
	formatJSON
	formatYAML
)

var formatsByType = map[string]format{
	TypeCSV:                    formatCSV,
	"application/csv":          formatCSV,
	"application/vnd.ms-excel": formatCSV,
	"text/plain":               formatCSV,
	TypeJSON:                   formatJSON,
	"text/json":                formatJSON,
	TypeYAML:                   formatYAML,
	"application/x-yaml":       formatYAML,
	"text/yaml":                formatYAML,
	"text/x-yaml":              formatYAML,
}

var typesByExtension = map[string]string{
	".csv":  TypeCSV,
	".txt":  "text/plain",
	".json": TypeJSON,
	".yaml": TypeYAML,
	".yml":  TypeYAML,
}

// File is an uploaded name file. ContentType and Size are the declared values
// checked before parsing; Body supplies the bytes.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DetectContentType infers a declared content type from a filename extension.
func DetectContentType(name string) string {
	if t, ok := typesByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}

// Open prepares a File from disk. An empty contentType is inferred from the
// extension. The returned closer releases the underlying handle.
func Open(path, contentType string) (File, io.Closer, error) {
	handle, err := os.Open(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := handle.Stat()
	if err != nil {
		_ = handle.Close()
		return File{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = handle.Close()
		return File{}, nil, fmt.Errorf("%s is a directory", path)
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = DetectContentType(path)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Body:        handle,
	}, handle, nil
}

// baseType strips parameters such as "; charset=utf-8" and lower-cases.
func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func formatOf(contentType string) format {
	return formatsByType[baseType(contentType)]
}

func (f format) label() string {
	switch f {
	case formatCSV:
		return "CSV"
	case formatJSON:
		return "JSON"
	case formatYAML:
		return "YAML"
	default:
		return "unknown"
	}
}
