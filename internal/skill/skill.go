// Package skill locates a skill directory and reads its SKILL.md manifest.
package skill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

var (
	errMissingFrontMatter   = errors.New("skill: missing frontmatter")
	errMalformedFrontMatter = errors.New("skill: malformed frontmatter")
)

type metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Load resolves path, checks that it is a directory holding SKILL.md and
// reads name/description from the manifest frontmatter. Bad or absent
// frontmatter is only logged; the directory name is used instead.
func Load(path string, logger *zap.Logger) (*domain.Skill, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve skill path: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSkillPathNotFound, dir)
		}
		return nil, fmt.Errorf("stat skill path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrSkillPathNotFound, dir)
	}

	content, err := os.ReadFile(filepath.Join(dir, domain.ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", domain.ErrManifestNotFound, dir)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	skill := &domain.Skill{
		Name:      filepath.Base(dir),
		Directory: dir,
	}

	meta, err := parseFrontMatter(content)
	if err != nil {
		logger.Warn("could not read skill frontmatter, using directory name",
			zap.String("path", dir),
			zap.Error(err),
		)
		return skill, nil
	}
	if meta.Name != "" {
		skill.Name = meta.Name
	}
	skill.Description = meta.Description
	return skill, nil
}

func parseFrontMatter(content []byte) (metadata, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return metadata{}, errMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---"), 2)
	if len(parts) < 2 {
		return metadata{}, errMalformedFrontMatter
	}

	var meta metadata
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return metadata{}, fmt.Errorf("%w: %v", errMalformedFrontMatter, err)
	}
	meta.Name = strings.TrimSpace(meta.Name)
	meta.Description = strings.TrimSpace(meta.Description)
	return meta, nil
}
