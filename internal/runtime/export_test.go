package runtime

import (
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{Digest: digest.Digest("sha256:config")},
		Layers: []ocispec.Descriptor{
			{Digest: digest.Digest("sha256:layer0")},
			{Digest: digest.Digest("sha256:layer1")},
		},
	}

	labels := manifestGCLabels(m)

	if got := labels["containerd.io/gc.ref.content.config"]; got != "sha256:config" {
		t.Fatalf("config label = %q, want sha256:config", got)
	}
	if got := labels["containerd.io/gc.ref.content.l.0"]; got != "sha256:layer0" {
		t.Fatalf("layer 0 label = %q, want sha256:layer0", got)
	}
	if got := labels["containerd.io/gc.ref.content.l.1"]; got != "sha256:layer1" {
		t.Fatalf("layer 1 label = %q, want sha256:layer1", got)
	}
	if len(labels) != 3 {
		t.Fatalf("labels = %v, want config plus one per layer", labels)
	}
}

func TestManifestGCLabelsNoLayers(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{Digest: digest.Digest("sha256:config")},
	}

	labels := manifestGCLabels(m)

	if len(labels) != 1 {
		t.Fatalf("labels = %v, want only the config reference", labels)
	}
	if got := labels["containerd.io/gc.ref.content.config"]; got != "sha256:config" {
		t.Fatalf("config label = %q, want sha256:config", got)
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{
		Manifests: []ocispec.Descriptor{
			{Digest: digest.Digest("sha256:manifest0")},
			{Digest: digest.Digest("sha256:manifest1")},
		},
	}

	labels := indexGCLabels(idx)

	if len(labels) != 2 {
		t.Fatalf("labels = %v, want one per manifest", labels)
	}
	if got := labels["containerd.io/gc.ref.content.m.0"]; got != "sha256:manifest0" {
		t.Fatalf("manifest 0 label = %q, want sha256:manifest0", got)
	}
	if got := labels["containerd.io/gc.ref.content.m.1"]; got != "sha256:manifest1" {
		t.Fatalf("manifest 1 label = %q, want sha256:manifest1", got)
	}
}
