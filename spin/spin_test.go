package spin

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestPadSize(t *testing.T) {
	assert.Equal(t, uintptr(CacheLine), unsafe.Sizeof(Pad{}))
}

func TestRelaxReturns(t *testing.T) {
	assert.NotPanics(t, func() { Relax(1000) })
	assert.NotPanics(t, func() { Relax(0) })
}

func TestYieldReturns(t *testing.T) {
	assert.NotPanics(t, Yield)
}
