package cfb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"unicode"
	"unicode/utf16"
)

// Version 3 layout constants.
const (
	sectorSize     = 512
	miniSectorSize = 64
	miniCutoff     = 4096
	dirEntrySize   = 128
	headerDIFAT    = 109
	fatPerSector   = sectorSize / 4
	maxNameLen     = 31

	freeSect   uint32 = 0xFFFFFFFF
	endOfChain uint32 = 0xFFFFFFFE
	fatSect    uint32 = 0xFFFFFFFD
	difSect    uint32 = 0xFFFFFFFC
	noStream   uint32 = 0xFFFFFFFF
)

const (
	typeStorage byte = 1
	typeStream  byte = 2
	typeRoot    byte = 5
	colorBlack  byte = 1
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

type dirEntry struct {
	entry *Entry
	kind  byte
	left  uint32
	right uint32
	child uint32
	start uint32
	size  uint32
}

type chain struct {
	start   uint32
	sectors int
}

// Bytes serialises the container.
func (c *Container) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the container as a version 3 compound document with
// 512-byte sectors. Streams shorter than 4096 bytes go to the mini stream.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	dir, err := flatten(c.Root)
	if err != nil {
		return 0, err
	}

	// mini stream
	var mini bytes.Buffer
	var miniFAT []uint32
	var large []*dirEntry
	for _, d := range dir[1:] {
		if d.kind != typeStream {
			continue
		}
		size := len(d.entry.Data)
		d.size = uint32(size)
		switch {
		case size == 0:
			d.start = endOfChain
		case size < miniCutoff:
			first := uint32(len(miniFAT))
			n := ceilDiv(size, miniSectorSize)
			for i := 0; i < n; i++ {
				next := first + uint32(i) + 1
				if i == n-1 {
					next = endOfChain
				}
				miniFAT = append(miniFAT, next)
			}
			mini.Write(d.entry.Data)
			mini.Write(make([]byte, n*miniSectorSize-size))
			d.start = first
		default:
			large = append(large, d)
		}
	}

	dirSectors := ceilDiv(len(dir)*dirEntrySize, sectorSize)
	miniFATSectors := ceilDiv(len(miniFAT)*4, sectorSize)
	miniSectors := ceilDiv(mini.Len(), sectorSize)
	data := dirSectors + miniFATSectors + miniSectors
	for _, d := range large {
		data += ceilDiv(len(d.entry.Data), sectorSize)
	}
	fatSectors, difatSectors := fatLayout(data)

	fat := make([]uint32, fatSectors*fatPerSector)
	for i := range fat {
		fat[i] = freeSect
	}
	next := 0
	for i := 0; i < fatSectors; i++ {
		fat[next] = fatSect
		next++
	}
	difatStart := uint32(next)
	for i := 0; i < difatSectors; i++ {
		fat[next] = difSect
		next++
	}
	allocate := func(n int) chain {
		if n == 0 {
			return chain{start: endOfChain}
		}
		ch := chain{start: uint32(next), sectors: n}
		for i := 0; i < n; i++ {
			if i == n-1 {
				fat[next] = endOfChain
			} else {
				fat[next] = uint32(next + 1)
			}
			next++
		}
		return ch
	}

	dirChain := allocate(dirSectors)
	miniFATChain := allocate(miniFATSectors)
	miniChain := allocate(miniSectors)
	largeChains := make([]chain, len(large))
	for i, d := range large {
		largeChains[i] = allocate(ceilDiv(len(d.entry.Data), sectorSize))
		d.start = largeChains[i].start
	}

	dir[0].start = miniChain.start
	dir[0].size = uint32(mini.Len())

	var out bytes.Buffer
	out.Grow(sectorSize * (1 + next))
	writeHeader(&out, fatSectors, difatSectors, difatStart, dirChain.start, miniFATChain, fat)

	// FAT sectors
	for _, v := range fat {
		putU32(&out, v)
	}
	// DIFAT sectors
	for i := 0; i < difatSectors; i++ {
		for j := 0; j < fatPerSector-1; j++ {
			idx := headerDIFAT + i*(fatPerSector-1) + j
			if idx < fatSectors {
				putU32(&out, uint32(idx))
			} else {
				putU32(&out, freeSect)
			}
		}
		if i == difatSectors-1 {
			putU32(&out, endOfChain)
		} else {
			putU32(&out, difatStart+uint32(i)+1)
		}
	}
	// directory
	for _, d := range dir {
		if err := writeDirEntry(&out, d); err != nil {
			return 0, err
		}
	}
	for i := len(dir); i < dirSectors*sectorSize/dirEntrySize; i++ {
		writeUnusedEntry(&out)
	}
	// mini FAT
	for _, v := range miniFAT {
		putU32(&out, v)
	}
	pad(&out, miniFATSectors*sectorSize-len(miniFAT)*4)
	// mini stream
	out.Write(mini.Bytes())
	pad(&out, miniSectors*sectorSize-mini.Len())
	// regular streams
	for i, d := range large {
		out.Write(d.entry.Data)
		pad(&out, largeChains[i].sectors*sectorSize-len(d.entry.Data))
	}

	n, err := w.Write(out.Bytes())
	return int64(n), err
}

// fatLayout returns the FAT and DIFAT sector counts needed to address data
// sectors plus the FAT and DIFAT sectors themselves.
func fatLayout(data int) (fatSectors, difatSectors int) {
	fatSectors = 1
	for {
		difat := 0
		if fatSectors > headerDIFAT {
			difat = ceilDiv(fatSectors-headerDIFAT, fatPerSector-1)
		}
		need := ceilDiv(data+fatSectors+difat, fatPerSector)
		if need <= fatSectors {
			return fatSectors, difat
		}
		fatSectors = need
	}
}

func writeHeader(out *bytes.Buffer, fatSectors, difatSectors int, difatStart, dirStart uint32, miniFAT chain, fat []uint32) {
	out.Write(signature)
	out.Write(make([]byte, 16)) // CLSID
	putU16(out, 0x003E)         // minor version
	putU16(out, 0x0003)         // major version
	putU16(out, 0xFFFE)         // byte order
	putU16(out, 9)              // sector shift
	putU16(out, 6)              // mini sector shift
	out.Write(make([]byte, 6))
	putU32(out, 0) // directory sectors, always 0 for version 3
	putU32(out, uint32(fatSectors))
	putU32(out, dirStart)
	putU32(out, 0) // transaction signature
	putU32(out, miniCutoff)
	putU32(out, miniFAT.start)
	putU32(out, uint32(miniFAT.sectors))
	if difatSectors > 0 {
		putU32(out, difatStart)
	} else {
		putU32(out, endOfChain)
	}
	putU32(out, uint32(difatSectors))
	for i := 0; i < headerDIFAT; i++ {
		if i < fatSectors {
			putU32(out, uint32(i))
		} else {
			putU32(out, freeSect)
		}
	}
}

// flatten numbers the tree in pre-order and links every storage's children
// into a balanced binary tree ordered the way the format compares names.
func flatten(root *Entry) ([]*dirEntry, error) {
	var dir []*dirEntry
	var walk func(e *Entry, kind byte) (*dirEntry, error)
	walk = func(e *Entry, kind byte) (*dirEntry, error) {
		if len(utf16.Encode([]rune(e.Name))) > maxNameLen {
			return nil, fmt.Errorf("cfb: entry name %q longer than %d characters", e.Name, maxNameLen)
		}
		d := &dirEntry{entry: e, kind: kind, left: noStream, right: noStream, child: noStream, start: endOfChain}
		dir = append(dir, d)
		if kind == typeStream {
			return d, nil
		}

		children := append([]*Entry(nil), e.Children...)
		sort.SliceStable(children, func(i, j int) bool {
			return compareNames(children[i].Name, children[j].Name) < 0
		})
		for i := 1; i < len(children); i++ {
			if compareNames(children[i-1].Name, children[i].Name) == 0 {
				return nil, fmt.Errorf("cfb: duplicate entry %q in storage %q", children[i].Name, e.Name)
			}
		}
		ids := make([]uint32, len(children))
		nodes := make([]*dirEntry, len(children))
		for i, child := range children {
			ck := typeStream
			if child.Storage {
				ck = typeStorage
			}
			ids[i] = uint32(len(dir))
			node, err := walk(child, ck)
			if err != nil {
				return nil, err
			}
			nodes[i] = node
		}
		d.child = link(ids, nodes, 0, len(children))
		return d, nil
	}

	if _, err := walk(root, typeRoot); err != nil {
		return nil, err
	}
	return dir, nil
}

// link builds a balanced tree over nodes[lo:hi] and returns the id of its root.
func link(ids []uint32, nodes []*dirEntry, lo, hi int) uint32 {
	if lo >= hi {
		return noStream
	}
	mid := (lo + hi) / 2
	nodes[mid].left = link(ids, nodes, lo, mid)
	nodes[mid].right = link(ids, nodes, mid+1, hi)
	return ids[mid]
}

// compareNames orders names by length first, then by upper-cased code units.
func compareNames(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	if len(ua) != len(ub) {
		if len(ua) < len(ub) {
			return -1
		}
		return 1
	}
	for i := range ua {
		ca := unicode.ToUpper(rune(ua[i]))
		cb := unicode.ToUpper(rune(ub[i]))
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func writeDirEntry(out *bytes.Buffer, d *dirEntry) error {
	name := utf16.Encode([]rune(d.entry.Name))
	var raw [64]byte
	for i, u := range name {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}
	out.Write(raw[:])
	putU16(out, uint16((len(name)+1)*2))
	out.WriteByte(d.kind)
	out.WriteByte(colorBlack)
	putU32(out, d.left)
	putU32(out, d.right)
	putU32(out, d.child)
	var meta [36]byte
	putGUID(meta[0:], d.entry.CLSID)
	binary.LittleEndian.PutUint32(meta[16:], d.entry.StateBits)
	putFileTime(meta[20:], d.entry.Created)
	putFileTime(meta[28:], d.entry.Modified)
	out.Write(meta[:])
	putU32(out, d.start)
	putU32(out, d.size)
	putU32(out, 0)
	return nil
}

func writeUnusedEntry(out *bytes.Buffer) {
	out.Write(make([]byte, 64))
	putU16(out, 0)
	out.WriteByte(0)
	out.WriteByte(0)
	putU32(out, noStream)
	putU32(out, noStream)
	putU32(out, noStream)
	out.Write(make([]byte, 16+4+16))
	putU32(out, 0)
	putU32(out, 0)
	putU32(out, 0)
}

func putU16(out *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	out.Write(b[:])
}

func putU32(out *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	out.Write(b[:])
}

func pad(out *bytes.Buffer, n int) {
	if n > 0 {
		out.Write(make([]byte, n))
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
