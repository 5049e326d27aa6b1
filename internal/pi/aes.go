package pi

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"iquecore/internal/bitfield"
)

var errAESRangeOutOfBounds = errors.New("pi: aes data range exceeds BUF")

const (
	bufKeyOffset = 0x4C0
	aesBlockSize = 16
)

// AESState models the AesCtrl register and its chained-IV latch. `state`
// points at the owning PI's BUF so the engine can read the key/IV/
// ciphertext regions and decrypt in place.
type AESState struct {
	Ctrl uint32

	lastBlock [aesBlockSize]byte
	hasLast   bool

	state *[bufSize]byte

	Err error
}

func (a *AESState) run() bool     { return a.Ctrl&(1<<0) != 0 }
func (a *AESState) chain() bool   { return a.Ctrl&(1<<1) != 0 }
func (a *AESState) ivIndex() int  { return int((a.Ctrl >> 8) & 0xFF) }
func (a *AESState) dataStart() int {
	return int((a.Ctrl >> 16) & 0xFF)
}
func (a *AESState) blockLen() int { return int((a.Ctrl >> 24) & 0xFF) }

// WriteAesCtrl dispatches the armed operation once the run bit is set by
// the last byte of the AesCtrl write.
func (p *PI) WriteAesCtrl(addr uint32, v byte) {
	p.AES.Ctrl = bitfield.MergeByte(p.AES.Ctrl, addr, v)
	if bitfield.IsLastByte(addr) && p.AES.run() {
		p.dispatchAES()
	}
}

// dispatchAES selects the IV per the chain bit, decrypts (len+1) 16-byte
// blocks in place starting at data*16, and latches the final ciphertext
// block for the next chained operation.
func (p *PI) dispatchAES() {
	a := &p.AES
	a.Err = nil

	var iv [aesBlockSize]byte
	if a.chain() && a.hasLast {
		iv = a.lastBlock
	} else {
		off := a.ivIndex() * aesBlockSize
		if off >= 0 && off+aesBlockSize <= bufSize {
			copy(iv[:], p.buf[off:off+aesBlockSize])
		}
	}

	var key [aesBlockSize]byte
	copy(key[:], p.buf[bufKeyOffset:bufKeyOffset+aesBlockSize])

	block, err := aes.NewCipher(key[:])
	if err != nil {
		a.Err = err
		a.Ctrl &^= 1 << 0
		return
	}

	nBlocks := a.blockLen() + 1
	start := a.dataStart() * aesBlockSize
	length := nBlocks * aesBlockSize
	if start < 0 || start+length > bufSize {
		a.Err = errAESRangeOutOfBounds
		a.Ctrl &^= 1 << 0
		return
	}

	ciphertext := make([]byte, length)
	copy(ciphertext, p.buf[start:start+length])
	var lastCiphertext [aesBlockSize]byte
	copy(lastCiphertext[:], ciphertext[length-aesBlockSize:])

	mode := cipher.NewCBCDecrypter(block, iv[:])
	mode.CryptBlocks(p.buf[start:start+length], ciphertext)

	a.lastBlock = lastCiphertext
	a.hasLast = true
	a.Ctrl &^= 1 << 0
}
