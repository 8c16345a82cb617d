package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	dto "chain-registry/internal/adapter/storage/catalog/dto"
	"chain-registry/internal/domain/entity"
	domainRepo "chain-registry/internal/domain/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed chains.yaml
var builtinCatalog []byte

// Compile-time check
var _ domainRepo.ChainRepository = (*Repository)(nil)

// Repository implements ChainRepository over a static catalog document.
type Repository struct {
	source string
	data   []byte
	path   string
	logger *zap.Logger
}

// NewBuiltinRepository returns a repository over the catalog compiled into the binary.
func NewBuiltinRepository(logger *zap.Logger) *Repository {
	return &Repository{
		source: "builtin",
		data:   builtinCatalog,
		logger: logger.Named("CatalogStorage"),
	}
}

// NewFileRepository returns a repository reading a YAML or JSON catalog file
// on every GetAllChains call.
func NewFileRepository(path string, logger *zap.Logger) (*Repository, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported catalog file extension %q (want .yaml, .yml or .json)", path)
	}
	return &Repository{
		source: "file",
		path:   path,
		logger: logger.Named("CatalogStorage"),
	}, nil
}

// GetAllChains decodes and maps the catalog document.
func (r *Repository) GetAllChains(_ context.Context) ([]entity.Chain, error) {
	data := r.data
	if r.path != "" {
		b, err := os.ReadFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", r.path, err)
		}
		data = b
	}

	chains, err := Decode(data)
	if err != nil {
		r.logger.Error("Failed to decode chain catalog",
			zap.String("source", r.source), zap.String("path", r.path), zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("Loaded chain catalog",
		zap.String("source", r.source), zap.String("path", r.path), zap.Int("count", len(chains)),
	)
	return chains, nil
}

// Decode parses a catalog document (a YAML or JSON list of entries).
func Decode(data []byte) ([]entity.Chain, error) {
	var rawChains []dto.ChainRaw
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rawChains); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse chain catalog: %w", err)
	}
	return toDomainChains(rawChains)
}

// Builtin returns the descriptors of the catalog compiled into the binary.
func Builtin() ([]entity.Chain, error) {
	return Decode(builtinCatalog)
}
