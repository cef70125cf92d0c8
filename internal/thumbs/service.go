// Package thumbs orchestrates thumbnail generation: it decodes a source
// image once and fans the configured variant specs out over storage
// concurrently.
package thumbs

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/imagethumbs/imagethumbs/internal/codec"
	"github.com/imagethumbs/imagethumbs/internal/config"
	"github.com/imagethumbs/imagethumbs/internal/naming"
	"github.com/imagethumbs/imagethumbs/internal/resize"
	"github.com/imagethumbs/imagethumbs/internal/storage"
	"github.com/imagethumbs/imagethumbs/internal/telemetry"
	"github.com/imagethumbs/imagethumbs/internal/telemetry/metrics"
)

// Service generates thumbnail variants against an object store. Specs
// are validated at construction and read-only afterwards, so a single
// Service is safe for concurrent calls.
type Service struct {
	specs     []config.ThumbnailSpec
	store     storage.ObjectStore
	telemetry *telemetry.TelemetrySvc
}

func NewService(
	specs []config.ThumbnailSpec,
	store storage.ObjectStore,
	telemetrySvc *telemetry.TelemetrySvc,
) (*Service, error) {
	if err := config.Validate(specs); err != nil {
		return nil, err
	}

	if telemetrySvc == nil {
		telemetrySvc = telemetry.NewNoopTelemetrySvc()
	}

	return &Service{
		specs:     specs,
		store:     store,
		telemetry: telemetrySvc,
	}, nil
}

// CreateThumbs reads the image at sourcePath from storage, generates
// every configured variant and writes them under destPrefix. The source
// is decoded exactly once; the decoded buffer is shared read-only by
// all variant pipelines.
//
// With overwrite false, variants whose destination key already exists
// are skipped. The call succeeds only if every variant ends up written
// or skipped.
func (s *Service) CreateThumbs(
	ctx context.Context,
	sourcePath string,
	destPrefix string,
	overwrite bool,
) error {
	// Resolve the format before any I/O.
	format, err := codec.FormatFromPath(sourcePath)
	if err != nil {
		return err
	}

	data, err := s.store.Get(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source image %s: %w", sourcePath, err)
	}

	img, err := codec.Decode(data, format)
	if err != nil {
		return fmt.Errorf("failed to decode source image %s: %w", sourcePath, err)
	}

	stem, ext := splitStem(sourcePath)

	return s.generateAll(ctx, img, format, stem, ext, destPrefix, overwrite)
}

// CreateThumbsFromBytes generates variants for image bytes already in
// hand, bypassing the storage read. Thumbnails are named after stem and
// keep the canonical extension of format.
func (s *Service) CreateThumbsFromBytes(
	ctx context.Context,
	data []byte,
	destPrefix string,
	stem string,
	format codec.Format,
	overwrite bool,
) error {
	img, err := codec.Decode(data, format)
	if err != nil {
		return fmt.Errorf("failed to decode source image %s: %w", stem, err)
	}

	return s.generateAll(
		ctx,
		img,
		format,
		stem,
		format.Extension(),
		destPrefix,
		overwrite,
	)
}

// CreateThumbsDir generates variants for every supported image on one
// storage level. Objects that are not PNG or JPEG are skipped. With
// overwrite false, sources whose full variant set already exists under
// destPrefix are not even downloaded.
func (s *Service) CreateThumbsDir(
	ctx context.Context,
	dir string,
	destPrefix string,
	overwrite bool,
) error {
	sources, err := s.store.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to list source directory %s: %w", dir, err)
	}

	if !overwrite {
		existing, err := s.store.List(ctx, destPrefix)
		if err != nil {
			return fmt.Errorf(
				"failed to list destination directory %s: %w",
				destPrefix,
				err,
			)
		}

		sources = s.filterThumbed(sources, existing, destPrefix)
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := codec.FormatFromPath(source); err != nil {
			slog.Debug("Skipping unsupported object", "path", source)
			continue
		}

		if err := s.CreateThumbs(ctx, source, destPrefix, overwrite); err != nil {
			return err
		}
	}

	return nil
}

// DeleteThumbs removes every configured variant of sourcePath from
// destPrefix. Variants that do not exist are not an error.
func (s *Service) DeleteThumbs(
	ctx context.Context,
	sourcePath string,
	destPrefix string,
) error {
	if _, err := codec.FormatFromPath(sourcePath); err != nil {
		return err
	}

	stem, ext := splitStem(sourcePath)

	for _, spec := range s.specs {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, err := s.variantKey(spec, stem, ext, destPrefix)
		if err != nil {
			return err
		}

		err = s.store.Delete(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to delete thumbnail %s: %w", key, err)
		}

		slog.Debug("Deleted thumbnail", "key", key)
	}

	return nil
}

// generateAll fans one variant pipeline out per spec. The group carries
// no cancelling context on purpose: a failing variant surfaces its error
// but in-flight siblings run to completion, so storage is never left
// with a forcibly interrupted write.
func (s *Service) generateAll(
	ctx context.Context,
	img image.Image,
	format codec.Format,
	stem string,
	ext string,
	destPrefix string,
	overwrite bool,
) error {
	results := make([]GenerationResult, len(s.specs))

	var group errgroup.Group
	var launchErr error

	for i, spec := range s.specs {
		// Stop launching new variants on cancellation, but still wait
		// for the ones already in flight.
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}

		group.Go(func() error {
			result := s.generateVariant(
				ctx,
				img,
				format,
				spec,
				stem,
				ext,
				destPrefix,
				overwrite,
			)
			results[i] = result

			if result.Err != nil {
				s.telemetry.Metrics().Increment(metrics.ThumbFailed, map[string]string{
					"spec": spec.Name,
				})

				return fmt.Errorf("thumbnail %q: %w", spec.Name, result.Err)
			}

			return nil
		})
	}

	err := group.Wait()
	if err == nil {
		err = launchErr
	}

	written, skipped := 0, 0
	for _, result := range results {
		switch result.Status {
		case StatusWritten:
			written++
		case StatusSkipped:
			skipped++
		}
	}

	slog.Debug(
		"Thumbnail generation finished",
		"stem", stem,
		"written", written,
		"skipped", skipped,
		"failed", len(s.specs)-written-skipped,
	)

	return err
}

// generateVariant runs the pipeline for a single spec: render the
// destination key, honor the overwrite policy, resize, encode with the
// original format and write.
func (s *Service) generateVariant(
	ctx context.Context,
	img image.Image,
	format codec.Format,
	spec config.ThumbnailSpec,
	stem string,
	ext string,
	destPrefix string,
	overwrite bool,
) GenerationResult {
	key, err := s.variantKey(spec, stem, ext, destPrefix)
	if err != nil {
		return GenerationResult{Spec: spec.Name, Status: StatusFailed, Err: err}
	}

	if !overwrite {
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return GenerationResult{
				Spec:   spec.Name,
				Key:    key,
				Status: StatusFailed,
				Err:    fmt.Errorf("failed to check existence of %s: %w", key, err),
			}
		}

		if exists {
			slog.Debug("Thumbnail already exists, skipping", "key", key)
			s.telemetry.Metrics().Increment(metrics.ThumbSkipped, map[string]string{
				"spec": spec.Name,
			})

			return GenerationResult{Spec: spec.Name, Key: key, Status: StatusSkipped}
		}
	}

	resized, err := resize.Resize(img, spec.Width(), spec.Height(), spec.Mode)
	if err != nil {
		return GenerationResult{
			Spec:   spec.Name,
			Key:    key,
			Status: StatusFailed,
			Err:    err,
		}
	}

	encoded, err := codec.Encode(resized, format, spec.Quality)
	if err != nil {
		return GenerationResult{
			Spec:   spec.Name,
			Key:    key,
			Status: StatusFailed,
			Err:    err,
		}
	}

	if err := s.store.Put(ctx, key, encoded); err != nil {
		return GenerationResult{
			Spec:   spec.Name,
			Key:    key,
			Status: StatusFailed,
			Err:    fmt.Errorf("failed to write thumbnail %s: %w", key, err),
		}
	}

	s.telemetry.Metrics().Increment(metrics.ThumbCreated, map[string]string{
		"spec":      spec.Name,
		"thumbSize": fmt.Sprintf("%d", len(encoded)),
	})

	return GenerationResult{Spec: spec.Name, Key: key, Status: StatusWritten}
}

// variantKey renders the destination key for one spec.
func (s *Service) variantKey(
	spec config.ThumbnailSpec,
	stem string,
	ext string,
	destPrefix string,
) (string, error) {
	pattern := spec.NamingPattern
	if pattern == "" {
		pattern = naming.DefaultPattern
	}

	rendered, err := naming.Render(pattern, stem, spec.Name, ext)
	if err != nil {
		return "", fmt.Errorf("spec %q: %w", spec.Name, err)
	}

	return naming.Join(destPrefix, rendered), nil
}

// filterThumbed drops sources whose every variant key is already
// present in the existing destination listing. Listing output is
// already canonical; only the locally computed keys need normalizing.
func (s *Service) filterThumbed(sources, existing []string, destPrefix string) []string {
	existingSet := make(map[string]struct{}, len(existing))
	for _, key := range existing {
		existingSet[key] = struct{}{}
	}

	var remaining []string

	for _, source := range sources {
		if _, err := codec.FormatFromPath(source); err != nil {
			remaining = append(remaining, source)
			continue
		}

		stem, ext := splitStem(source)

		complete := true
		for _, spec := range s.specs {
			key, err := s.variantKey(spec, stem, ext, destPrefix)
			if err != nil {
				complete = false
				break
			}

			if _, ok := existingSet[storage.CanonicalKey(key)]; !ok {
				complete = false
				break
			}
		}

		if !complete {
			remaining = append(remaining, source)
		}
	}

	return remaining
}

// splitStem returns the base name without extension and the extension
// itself, leading dot included and case preserved.
func splitStem(sourcePath string) (string, string) {
	base := path.Base(sourcePath)
	ext := path.Ext(base)

	return strings.TrimSuffix(base, ext), ext
}
