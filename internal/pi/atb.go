package pi

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

var (
	errATBMiss      = errors.New("pi: no ATB entry covers address")
	errATBNANDRange = errors.New("pi: ATB-resolved NAND offset out of range")
)

// bufIVOffset is PI.BUF[0x4D0..0x4E0], the fixed IV location the ATB
// decrypt path reads from when the predecessor entry's iv flag is set.
const bufIVOffset = 0x4D0

// ATBEntry is one of the 192 Address Translation Buffer entries.
type ATBEntry struct {
	VAddr uint16
	PAddr uint16
	Size  uint8 // block-count, log2
	Perm  uint8
	Dev   uint8
	IV    bool
}

func (p *PI) ATBEntry(i int) ATBEntry {
	if i < 0 || i >= atbSize {
		return ATBEntry{}
	}
	return p.atb[i]
}

func (p *PI) SetATBEntry(i int, e ATBEntry) {
	if i < 0 || i >= atbSize {
		return
	}
	p.atb[i] = e
}

// findCoveringEntry locates the ATB entry whose [vaddr, vaddr+2^size)
// range contains blockVAddr, along with its predecessor (used for IV
// selection and NAND offset computation). Entries are assumed sorted by
// VAddr ascending, as the boot firmware programs them.
func (p *PI) findCoveringEntry(blockVAddr uint16) (entry ATBEntry, idx int, ok bool) {
	best := -1
	for i, e := range p.atb {
		span := uint32(1) << e.Size
		if uint32(blockVAddr) >= uint32(e.VAddr) && uint32(blockVAddr) < uint32(e.VAddr)+span {
			if best < 0 || e.VAddr > p.atb[best].VAddr {
				best = i
			}
		}
	}
	if best < 0 {
		return ATBEntry{}, 0, false
	}
	return p.atb[best], best, true
}

func (p *PI) predecessor(idx int) (ATBEntry, bool) {
	if idx <= 0 {
		return ATBEntry{}, false
	}
	return p.atb[idx-1], true
}

// BusRead services a cart-domain read for address >= 0x10000000: iterate
// 16 KiB-aligned blocks, locate each block's covering ATB entry and
// predecessor, compute the NAND source offset and IV, decrypt the whole
// block, and splice out the requested byte range.
func (p *PI) BusRead(address uint32, length uint32) ([]byte, error) {
	out := make([]byte, 0, length)
	remaining := length
	cur := address

	for remaining > 0 {
		blockBase := cur &^ (nandBlockSize - 1)
		blockVAddr := uint16(blockBase >> 14)

		entry, idx, ok := p.findCoveringEntry(blockVAddr)
		if !ok {
			return nil, errATBMiss
		}

		nandOff := (int64(blockVAddr-entry.VAddr) + int64(entry.PAddr)) << 14
		var iv [aesBlockSize]byte
		if pred, has := p.predecessor(idx); has && pred.IV {
			copy(iv[:], p.buf[bufIVOffset:bufIVOffset+aesBlockSize])
		} else if has {
			predOff := (int64(pred.PAddr) << 14) + (int64(1)<<pred.Size)<<14 - aesBlockSize
			copy(iv[:], p.readNANDTail(predOff))
		}

		block, err := p.decryptBlock(nandOff, iv)
		if err != nil {
			return nil, err
		}

		blockOffset := cur - blockBase
		take := uint32(nandBlockSize) - blockOffset
		if take > remaining {
			take = remaining
		}
		out = append(out, block[blockOffset:blockOffset+take]...)

		cur += take
		remaining -= take
	}

	return out, nil
}

func (p *PI) readNANDTail(off int64) []byte {
	if off < 0 || int(off)+aesBlockSize > len(p.nand) {
		return make([]byte, aesBlockSize)
	}
	return p.nand[off : int(off)+aesBlockSize]
}

func (p *PI) decryptBlock(nandOff int64, iv [aesBlockSize]byte) ([]byte, error) {
	if nandOff < 0 || int(nandOff)+nandBlockSize > len(p.nand) {
		return nil, errATBNANDRange
	}
	var key [aesBlockSize]byte
	copy(key[:], p.buf[bufKeyOffset:bufKeyOffset+aesBlockSize])

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, nandBlockSize)
	copy(ciphertext, p.nand[nandOff:nandOff+nandBlockSize])
	plaintext := make([]byte, nandBlockSize)
	mode := cipher.NewCBCDecrypter(block, iv[:])
	mode.CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}
