package page

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Codec is a hand-rolled binary layout for every page variant, in the
// same varint-field style as a btree node encoding, generalized from a
// fixed-size node layout to the variable-size reference/record vectors
// these page kinds need.

func putVarint(buf *bytes.Buffer, v int64) {
	tmp := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(tmp, v)
	buf.Write(tmp[:n])
}

func readVarint(r *bytes.Reader) (int64, error) {
	return binary.ReadVarint(r)
}

func putBytes(buf *bytes.Buffer, b []byte) {
	putVarint(buf, int64(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}

func putString(buf *bytes.Buffer, s string) {
	putBytes(buf, []byte(s))
}

func readString(r *bytes.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeReference(buf *bytes.Buffer, ref *Reference) {
	if ref == nil {
		ref = &Reference{PersistentKey: NullID}
	}
	putVarint(buf, ref.PersistentKey)
	if ref.LogKey == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	putVarint(buf, int64(ref.LogKey.Kind))
	putVarint(buf, ref.LogKey.Index)
	putVarint(buf, int64(ref.LogKey.Level))
	putVarint(buf, ref.LogKey.Position)
}

func decodeReference(r *bytes.Reader) (*Reference, error) {
	persistent, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	hasLog, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	ref := &Reference{PersistentKey: persistent}
	if hasLog == 1 {
		kind, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		index, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		level, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		position, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		ref.LogKey = &LogKey{Kind: Kind(kind), Index: index, Level: int(level), Position: position}
	}
	return ref, nil
}

// EncodePage serializes p into its on-disk byte layout.
func EncodePage(p Page) ([]byte, error) {
	buf := &bytes.Buffer{}
	switch v := p.(type) {
	case *UberPage:
		encodeReference(buf, v.RevisionTrie)
		putVarint(buf, int64(len(v.Shifts)))
		for kind, shifts := range v.Shifts {
			putVarint(buf, int64(kind))
			putVarint(buf, int64(len(shifts)))
			for _, s := range shifts {
				putVarint(buf, int64(s))
			}
		}
	case *RevisionRootPage:
		putVarint(buf, v.Revision)
		encodeReference(buf, v.RecordTrie)
		encodeReference(buf, v.NameTrie)
		encodeReference(buf, v.PathTrie)
		encodeReference(buf, v.CasTrie)
		encodeReference(buf, v.PathSummaryTrie)
	case *IndirectPage:
		putVarint(buf, int64(len(v.References)))
		for _, ref := range v.References {
			encodeReference(buf, ref)
		}
	case *RecordPage:
		putVarint(buf, v.PageKeyValue)
		encodeReference(buf, v.Previous)
		keys := v.Keys()
		putVarint(buf, int64(len(keys)))
		for _, k := range keys {
			rec, _ := v.Get(k)
			putBytes(buf, rec.Marshal())
		}
	case *NamePage:
		putVarint(buf, int64(len(v.indirectRefs)))
		for _, ref := range v.indirectRefs {
			encodeReference(buf, ref)
		}
		putVarint(buf, int64(len(v.names)))
		for key, name := range v.names {
			putVarint(buf, key)
			putString(buf, name)
			putBytes(buf, v.rawNames[key])
			putVarint(buf, v.counts[key])
		}
	case *PathPage:
		putVarint(buf, int64(len(v.indirectRefs)))
		for _, ref := range v.indirectRefs {
			encodeReference(buf, ref)
		}
	case *CasPage:
		putVarint(buf, int64(len(v.indirectRefs)))
		for _, ref := range v.indirectRefs {
			encodeReference(buf, ref)
		}
	case *PathSummaryPage:
		putVarint(buf, int64(len(v.indirectRefs)))
		for _, ref := range v.indirectRefs {
			encodeReference(buf, ref)
		}
		putVarint(buf, int64(len(v.levels)))
		for key, level := range v.levels {
			putVarint(buf, key)
			putVarint(buf, level)
		}
	default:
		return nil, fmt.Errorf("page: no codec for %T", p)
	}
	return buf.Bytes(), nil
}

// DecodePage deserializes data, previously tagged with kind, back into
// a concrete Page.
func DecodePage(kind Kind, data []byte) (Page, error) {
	r := bytes.NewReader(data)
	switch kind {
	case UberPageKind:
		trie, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		kindCount, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		shifts := make(map[Kind][]uint, kindCount)
		for i := int64(0); i < kindCount; i++ {
			k, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			n, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			levels := make([]uint, n)
			for j := int64(0); j < n; j++ {
				s, err := readVarint(r)
				if err != nil {
					return nil, err
				}
				levels[j] = uint(s)
			}
			shifts[Kind(k)] = levels
		}
		return &UberPage{RevisionTrie: trie, Shifts: shifts}, nil

	case RevisionRootPageKind:
		revision, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		recordTrie, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		nameTrie, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		pathTrie, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		casTrie, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		pathSummaryTrie, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		return &RevisionRootPage{
			Revision: revision, RecordTrie: recordTrie, NameTrie: nameTrie,
			PathTrie: pathTrie, CasTrie: casTrie, PathSummaryTrie: pathSummaryTrie,
		}, nil

	case IndirectPageKind:
		n, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		refs := make([]*Reference, n)
		for i := int64(0); i < n; i++ {
			ref, err := decodeReference(r)
			if err != nil {
				return nil, err
			}
			refs[i] = ref
		}
		return &IndirectPage{References: refs}, nil

	case RecordPageKind:
		pageKey, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		previous, err := decodeReference(r)
		if err != nil {
			return nil, err
		}
		count, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		rp := NewRecordPage(pageKey)
		rp.Previous = previous
		for i := int64(0); i < count; i++ {
			raw, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			rec, err := UnmarshalRecord(raw)
			if err != nil {
				return nil, err
			}
			rp.Put(rec)
		}
		return rp, nil

	case NamePageKind:
		n, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		np := NewNamePage()
		for i := int64(0); i < n; i++ {
			ref, err := decodeReference(r)
			if err != nil {
				return nil, err
			}
			np.SetIndirectReference(i, ref)
		}
		nameCount, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		for i := int64(0); i < nameCount; i++ {
			key, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			name, err := readString(r)
			if err != nil {
				return nil, err
			}
			raw, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			count, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			np.SetName(key, name, raw, count)
		}
		return np, nil

	case PathPageKind:
		n, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		pp := NewPathPage()
		for i := int64(0); i < n; i++ {
			ref, err := decodeReference(r)
			if err != nil {
				return nil, err
			}
			pp.SetIndirectReference(i, ref)
		}
		return pp, nil

	case CasPageKind:
		n, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		cp := NewCasPage()
		for i := int64(0); i < n; i++ {
			ref, err := decodeReference(r)
			if err != nil {
				return nil, err
			}
			cp.SetIndirectReference(i, ref)
		}
		return cp, nil

	case PathSummaryPageKind:
		n, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		sp := NewPathSummaryPage()
		for i := int64(0); i < n; i++ {
			ref, err := decodeReference(r)
			if err != nil {
				return nil, err
			}
			sp.SetIndirectReference(i, ref)
		}
		levelCount, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		for i := int64(0); i < levelCount; i++ {
			key, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			level, err := readVarint(r)
			if err != nil {
				return nil, err
			}
			sp.SetLevel(key, level)
		}
		return sp, nil

	default:
		return nil, fmt.Errorf("page: no codec for kind %v", kind)
	}
}
