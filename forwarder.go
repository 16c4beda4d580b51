package dxvk

import "slices"

// forwarder decides what a context does with a call besides applying it.
//
// The immediate context uses moveForwarder: arguments are applied in place
// and nothing is kept. Deferred contexts use copyForwarder: arguments are
// copied into a command, every referenced object is retained by the open
// command list, and the call is also applied so that Get calls observe it.
type forwarder interface {
	recording() bool
	retain(o Object)
	record(cmd Command)
}

type moveForwarder struct{}

func (moveForwarder) recording() bool { return false }
func (moveForwarder) retain(Object)   {}
func (moveForwarder) record(Command)  {}

type copyForwarder struct {
	list *CommandList
}

func (f *copyForwarder) recording() bool    { return true }
func (f *copyForwarder) retain(o Object)    { f.list.retain(o) }
func (f *copyForwarder) record(cmd Command) { f.list.append(cmd) }

// captureObjects copies s and retains every non-nil element in f.
func captureObjects[P interface {
	*E
	Object
}, E any](f forwarder, s []P) []P {
	out := slices.Clone(s)
	for _, p := range out {
		if p != nil {
			f.retain(p)
		}
	}
	return out
}

// captureObject retains p in f and returns it.
func captureObject[P interface {
	*E
	Object
}, E any](f forwarder, p P) P {
	if p != nil {
		f.retain(p)
	}
	return p
}
