package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects how a thumbnail is scaled into its target box.
type Mode string

const (
	// ModeFit preserves aspect ratio and scales the image to the largest
	// size that fits entirely within the target box. No cropping.
	ModeFit Mode = "fit"

	// ModeCrop preserves aspect ratio, scales the image to fully cover
	// the target box and crops the excess symmetrically.
	ModeCrop Mode = "crop"
)

var (
	ErrNoSpecs       = errors.New("no thumbnail specs configured")
	ErrMissingName   = errors.New("thumbnail spec has no name")
	ErrDuplicateName = errors.New("duplicate thumbnail spec name")
	ErrQualityRange  = errors.New("quality must be between 0 and 100")
	ErrZeroDimension = errors.New("thumbnail dimensions must be positive")
	ErrUnknownMode   = errors.New("unknown thumbnail mode")
)

// ThumbnailSpec describes a single output variant. A set of specs is
// loaded once from YAML and validated; instances are read-only afterwards.
type ThumbnailSpec struct {
	Name string `yaml:"name"`

	// NamingPattern may reference {image_stem} and {thumb_name}.
	// Empty means the default pattern applies.
	NamingPattern string `yaml:"naming_pattern"`

	// Quality is only honored by lossy encodings. PNG ignores it.
	Quality int `yaml:"quality"`

	// Size is [width, height] in pixels.
	Size [2]int `yaml:"size"`

	Mode Mode `yaml:"mode"`
}

func (s ThumbnailSpec) Width() int  { return s.Size[0] }
func (s ThumbnailSpec) Height() int { return s.Size[1] }

type thumbsFile struct {
	Thumbs []ThumbnailSpec `yaml:"thumbs"`
}

// Load reads the thumbnail spec list from a YAML file and validates it.
// The returned slice preserves file order.
func Load(path string) ([]ThumbnailSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbs config %s: %w", path, err)
	}

	var file thumbsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse thumbs config %s: %w", path, err)
	}

	if err := Validate(file.Thumbs); err != nil {
		return nil, fmt.Errorf("invalid thumbs config %s: %w", path, err)
	}

	return file.Thumbs, nil
}

// Validate checks a spec list the way Load does. Exposed so callers
// constructing specs programmatically get the same guarantees.
func Validate(specs []ThumbnailSpec) error {
	if len(specs) == 0 {
		return ErrNoSpecs
	}

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return ErrMissingName
		}

		if _, ok := seen[spec.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, spec.Name)
		}
		seen[spec.Name] = struct{}{}

		if spec.Quality < 0 || spec.Quality > 100 {
			return fmt.Errorf(
				"%w: spec %q has quality %d",
				ErrQualityRange,
				spec.Name,
				spec.Quality,
			)
		}

		if spec.Width() <= 0 || spec.Height() <= 0 {
			return fmt.Errorf(
				"%w: spec %q is %dx%d",
				ErrZeroDimension,
				spec.Name,
				spec.Width(),
				spec.Height(),
			)
		}

		switch spec.Mode {
		case ModeFit, ModeCrop:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
		}
	}

	return nil
}
