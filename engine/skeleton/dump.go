package skeleton

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

// dumpConfig keeps dumps stable across runs: no pointer addresses, no slice capacities.
var dumpConfig = func() *spew.ConfigState {
	c := spew.NewDefaultConfig()
	c.DisableCapacities = true
	c.DisablePointerAddresses = true
	c.SortKeys = true
	return c
}()

// Dump writes a human readable listing of the bone list to w.
//
// Parameters:
//   - w: the destination writer
func (sk *Skeleton) Dump(w io.Writer) {
	dumpConfig.Fdump(w, sk.sizing, sk.layout, sk.bones)
}

// Sdump returns the same listing as Dump as a string.
func (sk *Skeleton) Sdump() string {
	return dumpConfig.Sdump(sk.sizing, sk.layout, sk.bones)
}
