package cop0

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchColdReset(t *testing.T) {
	c := New(TLBSize)
	c.wired = 5
	pc, handled := c.Dispatch(Request{Kind: ColdReset}, 0x1234, false)
	require.True(t, handled)
	assert.Equal(t, uint64(bootVector), pc)
	assert.Equal(t, uint32(0), c.wired)
}

func TestDispatchSoftResetSetsErrorEPC(t *testing.T) {
	c := New(TLBSize)
	pc, handled := c.Dispatch(Request{Kind: SoftReset}, 0x80001000, false)
	require.True(t, handled)
	assert.Equal(t, uint64(bootVector), pc)
	assert.Equal(t, uint64(0x80001000), c.ErrorEPC())
}

func TestDispatchNMIInDelaySlot(t *testing.T) {
	c := New(TLBSize)
	_, _ = c.Dispatch(Request{Kind: NMI}, 0x80001004, true)
	assert.Equal(t, uint64(0x80001000), c.ErrorEPC())
}

func TestDispatchTrapEntersSecureKernel(t *testing.T) {
	c := New(TLBSize)
	pc, handled := c.Dispatch(Request{Kind: Trap}, 0x80002000, false)
	require.True(t, handled)
	assert.Equal(t, uint64(secureKernelVector), pc)
	assert.True(t, c.Status().ERL)
	assert.Equal(t, uint64(0x80002000), c.ErrorEPC())
}

func TestDispatchOtherSetsEXLAndVector(t *testing.T) {
	c := New(TLBSize)
	c.ResetCold()
	c.status.BEV = false
	pc, handled := c.Dispatch(Request{Kind: ArithmeticOverflow}, 0x80003004, false)
	require.True(t, handled)
	assert.Equal(t, uint64(normalVector+0x180), pc)
	assert.True(t, c.Status().EXL)
	assert.Equal(t, uint64(0x80003004), c.EPC())
	assert.False(t, c.Cause().BD)
}

func TestDispatchDelaySlotSetsBDAndBacksUpEPC(t *testing.T) {
	c := New(TLBSize)
	c.status.BEV = true
	pc, _ := c.Dispatch(Request{Kind: ReservedInstruction}, 0x80003008, true)
	assert.Equal(t, uint64(0x80003004), c.EPC())
	assert.True(t, c.Cause().BD)
	assert.Equal(t, uint64(bootstrapVector+0x180), pc)
}

func TestDispatchTLBMissUsesZeroOffset(t *testing.T) {
	c := New(TLBSize)
	c.status.BEV = false
	pc, _ := c.Dispatch(Request{Kind: TLBMissRead, BadAddr: 0x12345678}, 0x80004000, false)
	assert.Equal(t, uint64(normalVector), pc)
	assert.Equal(t, uint64(0x12345678), c.BadVAddr())
}

func TestDispatchInterruptGuarded(t *testing.T) {
	c := New(TLBSize)
	c.status.ERL = false
	c.status.IE = false
	_, handled := c.Dispatch(Request{Kind: Interrupt}, 0x80005000, false)
	assert.False(t, handled)

	c.status.IE = true
	c.status.EXL = true
	_, handled = c.Dispatch(Request{Kind: Interrupt}, 0x80005000, false)
	assert.False(t, handled)

	c.status.EXL = false
	_, handled = c.Dispatch(Request{Kind: Interrupt}, 0x80005000, false)
	assert.True(t, handled)
}

func TestDispatchNoneIsNoop(t *testing.T) {
	c := New(TLBSize)
	pc, handled := c.Dispatch(Request{Kind: None}, 0x80006000, false)
	assert.False(t, handled)
	assert.Equal(t, uint64(0x80006000), pc)
}

func TestHighestPicksMostUrgent(t *testing.T) {
	req := Highest(
		Request{Kind: Interrupt},
		Request{Kind: TLBMissRead},
		Request{Kind: None},
		Request{Kind: BusErrorFetch},
	)
	assert.Equal(t, BusErrorFetch, req.Kind)
}

func TestHighestAllNone(t *testing.T) {
	req := Highest(Request{Kind: None}, Request{Kind: None})
	assert.Equal(t, None, req.Kind)
}
