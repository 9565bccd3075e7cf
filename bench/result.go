package bench

import "github.com/ahrav/lockbench/spin"

// ResultSlot holds one worker's final iteration count. It is padded to
// occupy its own cache line so that N workers writing their final
// counts at the end of a run never generate false-sharing write-back
// traffic against each other during the run itself.
type ResultSlot struct {
	count uint64
	_     spin.Pad
}

// Count returns the slot's value.
func (r *ResultSlot) Count() uint64 { return r.count }
