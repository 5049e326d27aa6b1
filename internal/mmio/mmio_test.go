package mmio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIIntrMaskPairedSetClear(t *testing.T) {
	m := NewMI()
	// set bit 0 via set_0 (bit 1), set bit 2 via set_2 (bit 5).
	m.WriteIntrMask((1 << 1) | (1 << 5))
	assert.Equal(t, uint32((1<<0)|(1<<2)), m.IntrMask)

	// clear bit 0 via clear_0 (bit 0).
	m.WriteIntrMask(1 << 0)
	assert.Equal(t, uint32(1<<2), m.IntrMask)
}

func TestMISecModeMapTriggersChange(t *testing.T) {
	m := NewMI()
	m.WriteSecMode(1 << 1) // map=1
	newMap, changed := m.ConsumeMapping()
	assert.True(t, changed)
	assert.True(t, newMap)

	_, changed = m.ConsumeMapping()
	assert.False(t, changed)
}

func TestMISecureTrapSetsExitAndKindBit(t *testing.T) {
	m := NewMI()
	m.SetSecureTrap(SecTrapFatal)
	assert.True(t, fSecSecureExit.GetBool(uint64(m.SecMode)))
	assert.True(t, fSecFatal.GetBool(uint64(m.SecMode)))
}

func TestMIButtonTrapGatedByEnableButton(t *testing.T) {
	m := NewMI()
	m.SetSecureTrap(SecTrapButton)
	assert.False(t, fSecSecureExit.GetBool(uint64(m.SecMode)))

	m.SecMode = uint32(fSecEnableButton.SetBool(0, true))
	m.SetSecureTrap(SecTrapButton)
	assert.True(t, fSecButton.GetBool(uint64(m.SecMode)))
}

func TestMIRaiseInterrupt(t *testing.T) {
	m := NewMI()
	m.IntrMask = 0x4
	m.IntrPending = 0x4
	assert.True(t, m.RaiseInterrupt())
	m.IntrPending = 0x1
	assert.False(t, m.RaiseInterrupt())
}

func TestVIInterruptOnCurrentMatch(t *testing.T) {
	v := NewVI()
	v.Intr = 5
	v.Current = 5
	v.Tick()
	assert.True(t, v.RaiseInterrupt())

	v.WriteCurrent(0)
	assert.False(t, v.RaiseInterrupt())
}

func TestVITickAdvancesHalfLine(t *testing.T) {
	v := NewVI()
	v.HSync = 10
	for i := 0; i < 20; i++ {
		v.Tick()
	}
	assert.LessOrEqual(t, v.Current, uint32(10))
}

func TestAIStatusMirrorsFull(t *testing.T) {
	a := &AI{}
	a.SetFull(true)
	s := a.ReadStatus()
	assert.NotZero(t, s&1)
	assert.NotZero(t, s&(1<<31))
}

func TestAIWriteStatusClearsInterrupt(t *testing.T) {
	a := &AI{Status: 0x2}
	a.WriteStatus(0)
	assert.Equal(t, uint32(0), a.Status&0x2)
}

func TestSIWriteStatusClearsInterrupt(t *testing.T) {
	s := &SI{Status: 1}
	s.WriteStatus(0)
	assert.Equal(t, uint32(0), s.Status)
}

func TestUSBTransmitsSOF(t *testing.T) {
	u := NewUSB()
	u.Ctrl = 1 << 3 // host mode enabled
	u.sofCount = 0
	var got [3]byte
	fired := false
	u.Sink = func(b [3]byte) { got = b; fired = true }
	u.Tick()
	assert.True(t, fired)
	assert.Equal(t, byte(usbSOFPID|((0xF&^usbSOFPID)<<4)), got[0])
}

func TestUSBTokenTogglesOddEven(t *testing.T) {
	u := NewUSB()
	u.Token = (1 << 31) | (pidOUT << 16)
	assert.False(t, u.oddEven[0])
	u.dispatchToken()
	assert.True(t, u.oddEven[0])
	assert.Equal(t, uint32(0), u.Token&(1<<31))
}
