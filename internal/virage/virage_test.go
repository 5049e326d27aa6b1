package virage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankRecallReportsNotReadyOnce(t *testing.T) {
	b := NewBank(0, bankV0Size)
	b.LoadFuses([]byte{0xAA, 0xBB, 0xCC, 0xDD})

	b.WriteCtrl(0, 0)
	b.WriteCtrl(1, 0)
	b.WriteCtrl(2, 0)
	b.WriteCtrl(3, CmdRecall)

	assert.False(t, b.Ready())
	assert.True(t, b.Ready())
	assert.True(t, b.Pass())
	assert.Equal(t, byte(0xAA), b.ReadSRAM(0))
}

func TestBankStoreIsReadyImmediately(t *testing.T) {
	b := NewBank(0, bankV0Size)
	b.WriteSRAM(0, 0x42)
	b.WriteCtrl(3, CmdStore)
	assert.True(t, b.Ready())
	assert.Equal(t, byte(0x42), b.data[0])
}

func TestV0ClearsCommandOnCtrlRead(t *testing.T) {
	b := NewBank(0, bankV0Size)
	b.WriteCtrl(3, CmdRecall)
	b.OnCtrlRead()
	assert.Equal(t, uint8(0), b.cmd())
}

func TestV2ClearsCommandOnLastByteRead(t *testing.T) {
	b := NewBank(2, bankV2Size)
	b.WriteCtrl(3, CmdStore)
	require.True(t, b.transient())
	b.OnLastByteRead(3)
	assert.Equal(t, uint8(0), b.cmd())
}

func TestAggregatorOverlayToggle(t *testing.T) {
	a := New()
	require.NoError(t, a.LoadBootROM(make([]byte, BootROMSize)))
	a.bootROM[0] = 0x11
	a.bootRAM[0] = 0x22

	a.SetMapping(true)
	assert.Equal(t, byte(0x11), a.Read(base+romWindowOffset))
	assert.Equal(t, byte(0x22), a.Read(base+ramWindowOffset))

	a.SetMapping(false)
	assert.Equal(t, byte(0x22), a.Read(base+romWindowOffset))
	assert.Equal(t, byte(0x11), a.Read(base+ramWindowOffset))
}

func TestAggregatorBootROMIsReadOnly(t *testing.T) {
	a := New()
	require.NoError(t, a.LoadBootROM(make([]byte, BootROMSize)))
	a.SetMapping(true)
	a.Write(base+romWindowOffset, 0xFF)
	assert.Equal(t, byte(0), a.Read(base+romWindowOffset))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(0x1FC00000))
	assert.True(t, Contains(0x1FCFFFFF))
	assert.False(t, Contains(0x1FD00000))
	assert.False(t, Contains(0x1FBFFFFF))
}
