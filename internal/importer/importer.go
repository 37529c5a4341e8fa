// Package importer converts entities files between the graph-language and
// YAML world formats.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/stag/internal/game/world"
)

// Importer converts an entities file to the YAML world schema.
type Importer struct {
	logger *zap.Logger
}

// New constructs an Importer.
//
// Precondition: logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(logger *zap.Logger) *Importer {
	return &Importer{logger: logger}
}

// Run loads the world at sourcePath, encodes it as YAML and writes it to
// outputPath. The output is reloaded and compared with the source before it
// is written.
//
// Precondition: sourcePath is a readable entities file; outputPath ends in
// .yaml or .yml and its directory exists or is creatable.
// Postcondition: outputPath holds an equivalent YAML world, or an error is
// returned and nothing is written.
func (imp *Importer) Run(sourcePath, outputPath string) error {
	overall := time.Now()

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%w: output %s must be .yaml or .yml", world.ErrUnsupportedFormat, outputPath)
	}

	t0 := time.Now()
	w, err := world.LoadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("loaded source",
		zap.String("path", sourcePath),
		zap.Int("locations", len(w.Locations())),
		zap.Int("entities", len(w.EntityNames())),
		zap.Duration("elapsed", time.Since(t0)),
	)

	data, err := world.EncodeYAML(w)
	if err != nil {
		return err
	}

	// Validate output is loadable and equivalent before writing.
	back, err := world.LoadYAML(data)
	if err != nil {
		return fmt.Errorf("converted world failed validation: %w", err)
	}
	if back.Dump() != w.Dump() {
		return fmt.Errorf("converted world differs from %s", sourcePath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	imp.logger.Info("wrote world",
		zap.String("path", outputPath),
		zap.Duration("total", time.Since(overall)),
	)
	return nil
}
