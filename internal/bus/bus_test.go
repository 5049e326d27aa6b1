package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iquecore/internal/cop0"
	"iquecore/internal/pi"
	"iquecore/internal/virage"
)

func newTestBus() *Bus {
	c := cop0.New(32)
	p := pi.New(make([]byte, 1024), make([]byte, 1))
	v := virage.New()
	return New(c, p, v)
}

func TestDecodeTable(t *testing.T) {
	assert.Equal(t, regionRAM, decode(0))
	assert.Equal(t, regionSP, decode(0x04000000))
	assert.Equal(t, regionMI, decode(0x04300000))
	assert.Equal(t, regionVI, decode(0x04400000))
	assert.Equal(t, regionAI, decode(0x04500000))
	assert.Equal(t, regionPI, decode(0x04600000))
	assert.Equal(t, regionRI, decode(0x04700000))
	assert.Equal(t, regionSI, decode(0x04800000))
	assert.Equal(t, regionUSB0, decode(0x04900000))
	assert.Equal(t, regionUSB1, decode(0x04A00000))
	assert.Equal(t, regionUnmapped, decode(0x04B00000))
}

func TestRAMByteRoundTrip(t *testing.T) {
	b := newTestBus()
	b.WriteByte(0x100, 0x42, nil)
	assert.Equal(t, byte(0x42), b.ReadByte(0x100, nil))
}

func TestUnmappedReadLogsAndReturnsZero(t *testing.T) {
	b := newTestBus()
	var got string
	log := fakeLogger(func(format string, args ...any) { got = format })
	assert.Equal(t, byte(0), b.ReadByte(0x05000000, log))
	assert.NotEmpty(t, got)
}

func TestRITrafficIgnored(t *testing.T) {
	b := newTestBus()
	b.WriteByte(0x04700000, 0xFF, nil)
	assert.Equal(t, byte(0), b.ReadByte(0x04700000, nil))
}

func TestMIIntrMaskRegisterWiring(t *testing.T) {
	b := newTestBus()
	b.WriteByte(0x04300000+offMIIntrMask+3, 0x02, nil) // set source 0's mask bit
	assert.Equal(t, uint32(1), b.MI.IntrMask)
}

func TestVICurrentWriteAcksInterrupt(t *testing.T) {
	b := newTestBus()
	b.VI.Intr = 5
	b.VI.Current = 5
	b.VI.Tick()
	require.True(t, b.VI.RaiseInterrupt())
	b.WriteByte(0x04400000+offVICurrent+3, 0, nil)
	assert.False(t, b.VI.RaiseInterrupt())
}

func TestPIBUFWiring(t *testing.T) {
	b := newTestBus()
	b.WriteByte(0x04600000+offPIBUFBase, 0x55, nil)
	assert.Equal(t, byte(0x55), b.ReadByte(0x04600000+offPIBUFBase, nil))
}

func TestVirtualReadU32AlignedAndKseg0(t *testing.T) {
	b := newTestBus()
	b.RAM[0x10] = 0xDE
	b.RAM[0x11] = 0xAD
	b.RAM[0x12] = 0xBE
	b.RAM[0x13] = 0xEF
	v, af := b.ReadU32(0x80000010, nil)
	require.Nil(t, af)
	assert.Equal(t, uint32(0xDEADBEEF), v)
}

func TestVirtualReadMisaligned(t *testing.T) {
	b := newTestBus()
	_, af := b.ReadU32(0x80000011, nil)
	require.NotNil(t, af)
	assert.True(t, af.Misaligned)
	req := af.ToRequest()
	assert.Equal(t, cop0.AddressErrorRead, req.Kind)
}

func TestVirtualReadUnmappedTLBMiss(t *testing.T) {
	b := newTestBus()
	_, af := b.ReadU32(0x00100000, nil)
	require.NotNil(t, af)
	assert.Equal(t, cop0.FaultTLBMissRead, af.TLBFault)
	req := af.ToRequest()
	assert.Equal(t, cop0.TLBMissRead, req.Kind)
}

type fakeLogger func(format string, args ...any)

func (f fakeLogger) Warnf(format string, args ...any) { f(format, args...) }
