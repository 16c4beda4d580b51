// Package statecache deduplicates immutable state objects by description.
//
// Creating a blend, depth-stencil, rasterizer or sampler state with a
// description that matches a live object returns that object again:
//
//	c := statecache.New[BlendDesc, *BlendState](4096)
//	bs := c.Lookup(desc, acquire, create)
//
// The cache does not own its values. acquire must add a reference to a
// cached value and fail if the value is already being destroyed; the
// destroy path calls Forget. Past the soft limit the least recently used
// descriptions are forgotten, which only costs a duplicate object later.
//
// Cache is safe for concurrent use and must not be copied.
package statecache
