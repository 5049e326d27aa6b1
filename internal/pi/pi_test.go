package pi

import (
	"crypto/aes"
	"crypto/cipher"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPI() *PI {
	return New(make([]byte, 1024), make([]byte, 1))
}

func TestDMAReadTransfer(t *testing.T) {
	p := newTestPI()
	copy(p.nand, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	ram := make([]byte, 16)

	p.DMA.CartAddr = 0
	p.DMA.DRAMAddr = 4
	p.DMA.WriteReadLen(3, 7) // length encodes (7+1)=8 bytes

	require.True(t, p.DMA.Busy)
	completed := p.StepDMA(ram)
	require.True(t, completed)
	assert.False(t, p.DMA.Busy)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, ram[4:12])
	assert.True(t, p.DMADoneInterrupt)
	assert.Equal(t, uint32(0), p.DMA.ReadLen)
}

func TestDMABufferTransferCapped(t *testing.T) {
	p := newTestPI()
	p.DMA.CartAddr = 0
	p.DMA.DRAMAddr = 0
	p.DMA.WriteBufferReadLen(3, 0xFF)
	p.DMA.WriteBufferReadLen(2, 0xFF)
	p.DMA.WriteBufferReadLen(1, 0xFF)
	p.DMA.WriteBufferReadLen(0, 0xFF)
	assert.Equal(t, uint32(bufTransferCap), p.DMA.lengthBytes())
}

func TestFlashReadCopiesPageAndSpare(t *testing.T) {
	p := newTestPI()
	page := make([]byte, flashPageSize)
	for i := range page {
		page[i] = byte(i)
	}
	copy(p.nand, page)
	p.spare[0] = 0xAB

	p.WriteFlashAddr(0, 0)
	p.WriteFlashAddr(1, 0)
	p.WriteFlashAddr(2, 0)
	p.WriteFlashAddr(3, 0)

	p.Flash.Ctrl = flashCmdRead << 8
	p.WriteFlashCtrl(3, byte(p.Flash.Ctrl)|0x01)

	assert.Equal(t, page[0], p.buf[0])
	assert.Equal(t, byte(0xAB), p.buf[0x400])

	for i := 0; i < flashOpTicks; i++ {
		p.TickFlash()
	}
	assert.False(t, p.Flash.running)
	assert.Equal(t, uint32(0), p.Flash.Ctrl&1)
}

func TestFlashReadID(t *testing.T) {
	p := newTestPI()
	p.Flash.Ctrl = flashCmdReadID << 8
	p.dispatchFlashCommand()
	assert.Equal(t, []byte{0xEC, 0x76, 0x00, 0x00}, p.buf[0:4])
}

func TestAESDecryptRoundTrip(t *testing.T) {
	p := newTestPI()
	key := make([]byte, aesBlockSize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	iv := make([]byte, aesBlockSize)
	for i := range iv {
		iv[i] = byte(0x10 + i)
	}
	copy(p.buf[bufKeyOffset:], key)
	copy(p.buf[256:], iv) // ivIndex=16 below selects BUF[256:272]

	plaintext := make([]byte, aesBlockSize*2)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	copy(p.buf[0:], ciphertext)

	p.AES.Ctrl = (1 << 24) | (16 << 8) // blockLen=1 -> 2 blocks, dataStart=0, ivIndex=16
	p.WriteAesCtrl(3, byte(p.AES.Ctrl)|0x01)

	assert.Equal(t, plaintext, p.buf[0:len(plaintext)])
}

func TestATBDecryptScenario(t *testing.T) {
	p := newTestPI()
	p = New(make([]byte, 2*nandBlockSize), make([]byte, 1))

	key := make([]byte, aesBlockSize)
	iv := make([]byte, aesBlockSize)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(0x20 + i)
	}
	copy(p.buf[bufKeyOffset:], key)
	copy(p.buf[bufIVOffset:], iv)

	plaintext := make([]byte, nandBlockSize)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	ciphertext := make([]byte, nandBlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	copy(p.nand, ciphertext)

	p.SetATBEntry(0, ATBEntry{VAddr: 0x4000, PAddr: 0, Size: 0, IV: true})
	p.SetATBEntry(1, ATBEntry{VAddr: 0x4001, PAddr: 0, Size: 0, IV: true})

	got, err := p.BusRead(0x10004000, aesBlockSize)
	require.NoError(t, err)
	assert.Equal(t, plaintext[:aesBlockSize], got)
}
