package engineconfig

import (
	"github.com/Determinant/cordwood/cmd/cordwood/config"
	"github.com/Determinant/cordwood/pkg/local_object_storage/linear"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
)

const (
	subsection = "engine"

	// FileSizeDefault is a default size of a backing file.
	FileSizeDefault = linear.DefaultFileSize

	// PageCacheSizeDefault is a default number of cached pages.
	PageCacheSizeDefault = linear.DefaultPageCacheSize

	// ObjectCacheSizeDefault is a default number of cached records.
	ObjectCacheSizeDefault = objstore.DefaultCacheSize

	// FlushPoolSizeDefault is a default number of routines writing pages.
	FlushPoolSizeDefault = 4
)

// Path returns the value of "path" config parameter
// from "engine" section.
//
// Returns empty string if the value is missing.
func Path(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "path")
}

// Truncate returns the value of "truncate" config parameter
// from "engine" section.
//
// Returns false if the value is missing or invalid.
func Truncate(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "truncate")
}

// FileSize returns the value of "file_size" config parameter
// from "engine" section.
//
// Returns FileSizeDefault if the value is missing or not a positive
// multiple of the page size.
func FileSize(c *config.Config) uint64 {
	v := config.SizeInBytesSafe(c.Sub(subsection), "file_size")
	if v > 0 && v%linear.PageSize == 0 {
		return v
	}

	return FileSizeDefault
}

// Capacity returns the value of "capacity" config parameter
// from "engine" section.
//
// Returns 0 (no limit) if the value is missing or invalid.
func Capacity(c *config.Config) uint64 {
	return config.SizeInBytesSafe(c.Sub(subsection), "capacity")
}

// PageCacheSize returns the value of "page_cache_size" config parameter
// from "engine" section.
//
// Returns PageCacheSizeDefault if the value is not a positive number.
func PageCacheSize(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "page_cache_size")
	if v > 0 {
		return int(v)
	}

	return PageCacheSizeDefault
}

// ObjectCacheSize returns the value of "object_cache_size" config parameter
// from "engine" section.
//
// Returns ObjectCacheSizeDefault if the value is not a positive number.
func ObjectCacheSize(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "object_cache_size")
	if v > 0 {
		return int(v)
	}

	return ObjectCacheSizeDefault
}

// NoSync returns the value of "no_sync" config parameter
// from "engine" section.
//
// Returns false if the value is missing or invalid.
func NoSync(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "no_sync")
}

// FlushPoolSize returns the value of "flush_pool_size" config parameter
// from "engine" section.
//
// Returns FlushPoolSizeDefault if the value is not a positive number.
func FlushPoolSize(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection), "flush_pool_size")
	if v > 0 {
		return int(v)
	}

	return FlushPoolSizeDefault
}
