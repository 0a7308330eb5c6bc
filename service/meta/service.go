// Package meta loads configuration assets from any afs supported location.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Service loads and decodes assets
type Service struct {
	fs afs.Service
}

// Download returns asset content with ${env.KEY} expressions expanded
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", URL, err)
	}
	return []byte(expandEnvExpr(string(data))), nil
}

// Load decodes a yaml or json asset into target
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	switch strings.ToLower(path.Ext(URL)) {
	case ".json":
		err = json.Unmarshal(data, target)
	default:
		err = yaml.Unmarshal(data, target)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

// New creates a meta service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
