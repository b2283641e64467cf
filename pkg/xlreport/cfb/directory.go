package cfb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/richardlehane/msoleps/types"
)

// entryMeta is the part of a directory entry mscfb does not surface
// losslessly.
type entryMeta struct {
	clsid     types.Guid
	stateBits uint32
	created   types.FileTime
	modified  types.FileTime
}

func (m entryMeta) apply(e *Entry) {
	e.CLSID = m.clsid
	e.StateBits = m.stateBits
	e.Created = m.created
	e.Modified = m.modified
}

// readMetadata decodes every directory entry of the document and returns the
// metadata in mscfb traversal order: the root first, then each entry after
// its left siblings and before its descendants and right siblings.
func readMetadata(r io.ReaderAt) ([]entryMeta, error) {
	header := make([]byte, sectorSize)
	if _, err := r.ReadAt(header, 0); err != nil {
		return nil, err
	}
	shift := binary.LittleEndian.Uint16(header[30:])
	if shift != 9 && shift != 12 {
		return nil, fmt.Errorf("sector shift %d", shift)
	}
	size := 1 << shift
	readSector := func(sn uint32) ([]byte, error) {
		buf := make([]byte, size)
		// the last sector may be stored short
		n, err := r.ReadAt(buf, int64(sn+1)*int64(size))
		if err != nil && !(errors.Is(err, io.EOF) && n > 0) {
			return nil, fmt.Errorf("sector %d: %v", sn, err)
		}
		return buf, nil
	}

	fatCount := int(binary.LittleEndian.Uint32(header[44:]))
	var fatSectors []uint32
	for i := 0; i < headerDIFAT && len(fatSectors) < fatCount; i++ {
		fatSectors = append(fatSectors, binary.LittleEndian.Uint32(header[76+i*4:]))
	}
	difat := binary.LittleEndian.Uint32(header[68:])
	for hops := int(binary.LittleEndian.Uint32(header[72:])); hops > 0 && len(fatSectors) < fatCount; hops-- {
		buf, err := readSector(difat)
		if err != nil {
			return nil, err
		}
		per := size/4 - 1
		for i := 0; i < per && len(fatSectors) < fatCount; i++ {
			fatSectors = append(fatSectors, binary.LittleEndian.Uint32(buf[i*4:]))
		}
		difat = binary.LittleEndian.Uint32(buf[per*4:])
	}

	var fat []uint32
	for _, sn := range fatSectors {
		buf, err := readSector(sn)
		if err != nil {
			return nil, err
		}
		for i := 0; i < size/4; i++ {
			fat = append(fat, binary.LittleEndian.Uint32(buf[i*4:]))
		}
	}

	var raw [][]byte
	for sn, hops := binary.LittleEndian.Uint32(header[48:]), 0; sn != endOfChain; hops++ {
		if hops > len(fat) || int(sn) >= len(fat) {
			return nil, fmt.Errorf("directory chain broken at sector %d", sn)
		}
		buf, err := readSector(sn)
		if err != nil {
			return nil, err
		}
		for i := 0; i+dirEntrySize <= size; i += dirEntrySize {
			raw = append(raw, buf[i:i+dirEntrySize])
		}
		sn = fat[sn]
	}
	if len(raw) == 0 {
		return nil, errors.New("empty directory")
	}

	var out []entryMeta
	calls := 0
	var visit func(id uint32) error
	visit = func(id uint32) error {
		calls++
		if int(id) >= len(raw) || calls > len(raw) {
			return fmt.Errorf("directory entry %d out of range", id)
		}
		d := raw[id]
		if left := binary.LittleEndian.Uint32(d[68:]); left != noStream {
			if err := visit(left); err != nil {
				return err
			}
		}
		out = append(out, entryMeta{
			clsid:     types.MustGuid(d[80:96]),
			stateBits: binary.LittleEndian.Uint32(d[96:]),
			created:   types.MustFileTime(d[100:108]),
			modified:  types.MustFileTime(d[108:116]),
		})
		if child := binary.LittleEndian.Uint32(d[76:]); child != noStream {
			if err := visit(child); err != nil {
				return err
			}
		}
		if right := binary.LittleEndian.Uint32(d[72:]); right != noStream {
			return visit(right)
		}
		return nil
	}
	if err := visit(0); err != nil {
		return nil, err
	}
	return out, nil
}

func putGUID(out []byte, g types.Guid) {
	binary.LittleEndian.PutUint32(out[0:], g.DataA)
	binary.LittleEndian.PutUint16(out[4:], g.DataB)
	binary.LittleEndian.PutUint16(out[6:], g.DataC)
	copy(out[8:16], g.DataD[:])
}

func putFileTime(out []byte, ft types.FileTime) {
	binary.LittleEndian.PutUint32(out[0:], ft.Low)
	binary.LittleEndian.PutUint32(out[4:], ft.High)
}
