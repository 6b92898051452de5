// Package posts is a service client for a remote posts resource, built on
// the apikit request pipeline.
//
// The full listing is cached for a fixed duration as a single snapshot:
// readers either see the previous complete set or the new one, never a
// partial replacement. Any mutating operation clears the cache
// unconditionally, even when the write fails, and the next read
// repopulates it.
package posts
