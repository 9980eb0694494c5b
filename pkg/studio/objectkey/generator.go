package objectkey

import (
	"fmt"
	"strings"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key from the content checksum
	GenerateKey(checksum string, metadata *KeyMetadata) string
}

// KeyMetadata contains information that influences key generation
type KeyMetadata struct {
	// Ext is the file extension without the dot, e.g. "jpg"
	Ext string
	// Prefix overrides the top-level directory (default "images")
	Prefix string
}

const defaultPrefix = "images"

// FlatGenerator stores every object directly under the prefix:
// images/<checksum>.<ext>
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(checksum string, metadata *KeyMetadata) string {
	return fmt.Sprintf("%s/%s", prefix(metadata), withExt(checksum, metadata))
}

// GitLikeGenerator provides Git-style sharded storage
// images/objects/ab/cd1234ef5678.jpg
type GitLikeGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewGitLikeGenerator() *GitLikeGenerator {
	return &GitLikeGenerator{
		ShardLength: 2,
	}
}

func (g *GitLikeGenerator) GenerateKey(checksum string, metadata *KeyMetadata) string {
	shard := g.ShardLength
	if shard > len(checksum) {
		shard = len(checksum)
	}
	shardDir, remaining := checksum[:shard], checksum[shard:]
	if remaining == "" {
		remaining = checksum
	}
	return fmt.Sprintf("%s/objects/%s/%s", prefix(metadata), shardDir, withExt(remaining, metadata))
}

// CustomFuncGenerator allows callers to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(checksum string, metadata *KeyMetadata) string
}

func NewCustomFuncGenerator(fn func(checksum string, metadata *KeyMetadata) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(checksum string, metadata *KeyMetadata) string {
	return g.GenerateFunc(checksum, metadata)
}

// NewRecommendedGenerator returns the generator used by default
func NewRecommendedGenerator() Generator {
	return NewGitLikeGenerator()
}

func prefix(metadata *KeyMetadata) string {
	if metadata != nil && metadata.Prefix != "" {
		return sanitizePathComponent(metadata.Prefix)
	}
	return defaultPrefix
}

func withExt(name string, metadata *KeyMetadata) string {
	if metadata == nil || metadata.Ext == "" {
		return name
	}
	return name + "." + sanitizePathComponent(strings.TrimPrefix(metadata.Ext, "."))
}

func sanitizePathComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.ToLower(replacer.Replace(component))
}
