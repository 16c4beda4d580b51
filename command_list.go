package dxvk

// CommandList is a finished recording of a deferred context.
//
// The list owns one reference to every object its commands captured. The
// references are dropped when the list itself is released, so a list can
// be executed any number of times before that.
type CommandList struct {
	deviceChild
	commands  []Command
	refs      []Object
	snapshots []*contextState
}

func newCommandList(reserve int) *CommandList {
	l := &CommandList{commands: make([]Command, 0, reserve)}
	l.init(nil, l.releaseResources)
	return l
}

// Commands returns the recorded commands in order.
func (l *CommandList) Commands() []Command { return l.commands }

// Len returns the number of recorded commands.
func (l *CommandList) Len() int { return len(l.commands) }

func (l *CommandList) retain(o Object) {
	o.AddRef()
	l.refs = append(l.refs, o)
}

func (l *CommandList) append(cmd Command) {
	l.commands = append(l.commands, cmd)
}

// keep transfers ownership of a snapshot to the list.
func (l *CommandList) keep(s *contextState) {
	l.snapshots = append(l.snapshots, s)
}

func (l *CommandList) releaseResources() {
	for _, o := range l.refs {
		o.Release()
	}
	for _, s := range l.snapshots {
		s.release()
	}
	l.refs, l.snapshots, l.commands = nil, nil, nil
}
