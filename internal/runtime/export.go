package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/containerd/containerd/v2/core/content"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/core/images/archive"
	"github.com/containerd/containerd/v2/pkg/rootfs"
	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Filename of the OCI archive produced by Export.
const exportFilename = "image.tar"

// Commits the container's filesystem changes and exports the result as an
// OCI archive.
//
// The diff between the container's snapshot and its parent is stored as a
// new layer. The resulting image is written to output/image.tar. The stored
// image record in containerd is never modified: the mutated manifest,
// config, and index are written to the content store as ephemeral blobs and
// referenced only during the export. A content lease protects these blobs
// from garbage collection until the export completes.
func (c *Container) Export(ctx context.Context, output string) error {
	loaded, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	info, err := loaded.Info(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	layer, err := rootfs.CreateDiff(ctx,
		info.SnapshotKey,
		c.client.SnapshotService(info.Snapshotter),
		c.client.DiffService(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	diffID, err := images.GetDiffID(ctx, c.client.ContentStore(), layer)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	// Without a lease, containerd's GC scheduler may collect the ephemeral
	// blobs between the write and the export.
	ctx, done, err := c.client.WithLease(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer done(context.Background())

	target, err := c.committedTarget(ctx, info.Image, layer, diffID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	exportPath := filepath.Join(output, exportFilename)
	if err := c.writeArchive(ctx, target, info.Image, exportPath); err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Info("image exported", "path", exportPath)
	return nil
}

// Builds the export target descriptor for the container's base image with
// the committed layer appended.
//
// The mutated manifest, config, and (when the root is an index) a new
// single-entry index are written to the content store as ephemeral blobs.
// The stored image record is never modified, so subsequent builds always
// see the original, clean base image.
func (c *Container) committedTarget(ctx context.Context, imageName string, layer ocispec.Descriptor, diffID digest.Digest) (ocispec.Descriptor, error) {
	img, err := c.client.ImageService().Get(ctx, imageName)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	manifestDesc, index, err := c.platformManifest(ctx, img.Target, imageName)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	manifest, err := readBlobAs[ocispec.Manifest](ctx, c.client.ContentStore(), manifestDesc)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	config, err := readBlobAs[ocispec.Image](ctx, c.client.ContentStore(), manifest.Config)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	manifest.Layers = append(manifest.Layers, layer)
	config.RootFS.DiffIDs = append(config.RootFS.DiffIDs, diffID)

	configDesc, err := c.writeBlob(ctx, manifest.Config.MediaType, config, imageName+"-config")
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	manifest.Config = configDesc

	newManifestDesc, err := c.writeBlob(ctx, manifestDesc.MediaType, manifest, imageName+"-manifest",
		content.WithLabels(manifestGCLabels(manifest)))
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	if index == nil {
		return newManifestDesc, nil
	}

	// Entries for other platforms are dropped because their layer blobs are
	// typically not present in the content store.
	index.Manifests = []ocispec.Descriptor{newManifestDesc}
	return c.writeBlob(ctx, img.Target.MediaType, index, imageName+"-index",
		content.WithLabels(indexGCLabels(*index)))
}

// Resolves the image root descriptor to a platform-specific manifest.
//
// If the root is an OCI image index, the index is walked to find the
// manifest matching the container's platform, falling back to the first
// entry when none declares a matching platform. Returns the manifest
// descriptor and the index (nil when the root is already a manifest).
func (c *Container) platformManifest(ctx context.Context, root ocispec.Descriptor, imageName string) (ocispec.Descriptor, *ocispec.Index, error) {
	if !images.IsIndexType(root.MediaType) {
		return root, nil, nil
	}

	idx, err := readBlobAs[ocispec.Index](ctx, c.client.ContentStore(), root)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}
	if len(idx.Manifests) == 0 {
		return ocispec.Descriptor{}, nil, fmt.Errorf("%w: %s", ErrEmptyIndex, imageName)
	}

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}

	matcher := platforms.OnlyStrict(p)
	for _, m := range idx.Manifests {
		if m.Platform != nil && matcher.Match(*m.Platform) {
			return m, &idx, nil
		}
	}

	return idx.Manifests[0], &idx, nil
}

// Writes the image to an OCI tar archive at the given path.
//
// The target descriptor is exported directly via [archive.WithManifest]
// rather than looking up the image by name, so ephemeral content (the
// mutated manifest with the extra layer) can be exported without modifying
// the stored image record. The image name is attached as the OCI reference
// annotation on the archive entry.
func (c *Container) writeArchive(ctx context.Context, target ocispec.Descriptor, imageName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return err
	}

	return c.client.Export(ctx, f,
		archive.WithManifest(target, imageName),
		archive.WithPlatform(platforms.Only(p)),
	)
}

// Loads and decodes a JSON blob from the content store.
func readBlobAs[T any](ctx context.Context, cs content.Store, desc ocispec.Descriptor) (T, error) {
	var v T
	b, err := content.ReadBlob(ctx, cs, desc)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Serializes a value and writes it to the content store, returning the
// descriptor that references the stored blob.
func (c *Container) writeBlob(ctx context.Context, mediaType string, v any, ref string, opts ...content.Opt) (ocispec.Descriptor, error) {
	cs := c.client.ContentStore()
	b, err := json.Marshal(v)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(b),
		Size:      int64(len(b)),
	}
	if err := content.WriteBlob(ctx, cs, ref, bytes.NewReader(b), desc, opts...); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

// Computes containerd GC reference labels for a manifest's children.
//
// These labels allow containerd's garbage collector to trace reachability
// from the manifest blob to its config and layer blobs.
func manifestGCLabels(m ocispec.Manifest) map[string]string {
	labels := map[string]string{
		"containerd.io/gc.ref.content.config": m.Config.Digest.String(),
	}
	for i, layer := range m.Layers {
		key := fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)
		labels[key] = layer.Digest.String()
	}
	return labels
}

// Computes containerd GC reference labels for an index's children.
func indexGCLabels(idx ocispec.Index) map[string]string {
	labels := make(map[string]string, len(idx.Manifests))
	for i, m := range idx.Manifests {
		key := fmt.Sprintf("containerd.io/gc.ref.content.m.%d", i)
		labels[key] = m.Digest.String()
	}
	return labels
}
