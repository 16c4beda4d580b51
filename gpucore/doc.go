// Package gpucore provides the low-level command contract shared by the dxvk
// state tracker and its sink backends.
//
// The state tracker in the module root shadows every D3D11-style binding and
// translates dirty regions into calls on a [Sink] immediately before a draw or
// dispatch. This package holds only the vocabulary of that translation: the
// [Stage] enum, the opaque [Object] handle, bind ranges, derived pipeline
// state descriptors built on gputypes, and [SlotMask].
//
// # Architecture
//
//	              +------------------+
//	              |  dxvk contexts   |
//	              | (binding table)  |
//	              +--------+---------+
//	                       |  flush on Draw / Dispatch
//	              +--------v---------+
//	              |  gpucore.Sink    |
//	              +--------+---------+
//	                       |
//	        +--------------+--------------+
//	        |                             |
//	+-------v--------+          +---------v---------+
//	|   recording    |          | recording/backends|
//	|   (Recorder)   |          |  /wgpu (hal)      |
//	+----------------+          +-------------------+
//
// # Resource Handles
//
// Every object handed to a Sink implements [Object]. ObjectID is stable for
// the lifetime of the object and unique per process; Native returns whatever
// the configured [Allocator] produced when the object was created, or nil.
//
// # Slot Masks
//
// [SlotMask] is a fixed 128-bit set wide enough for the largest binding class
// (shader resource views). The state tracker uses it for bound, dirty and
// shader-used slot sets; [SlotMask.Runs] yields the minimal contiguous runs
// the applier emits as batched bind calls.
package gpucore
