package oracle

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DLC v0 TLV types.
const (
	typeEnumEventDescriptor uint64 = 55302
	typeOracleEvent         uint64 = 55330
	typeOracleAnnouncement  uint64 = 55332
)

var errShortBuffer = errors.New("oracle: short buffer")

// writer accumulates a DLC wire encoding.
type writer struct {
	buf []byte
}

func (w *writer) bigSize(v uint64) {
	switch {
	case v < 0xfd:
		w.buf = append(w.buf, byte(v))
	case v <= 0xffff:
		w.buf = append(w.buf, 0xfd)
		w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
	case v <= 0xffffffff:
		w.buf = append(w.buf, 0xfe)
		w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
	default:
		w.buf = append(w.buf, 0xff)
		w.buf = binary.BigEndian.AppendUint64(w.buf, v)
	}
}

func (w *writer) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) str(s string) {
	w.bigSize(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) tlv(typ uint64, value []byte) {
	w.bigSize(typ)
	w.bigSize(uint64(len(value)))
	w.buf = append(w.buf, value...)
}

// reader walks a DLC wire encoding.
type reader struct {
	buf []byte
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.buf) < n {
		return nil, errShortBuffer
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out, nil
}

func (r *reader) bigSize() (uint64, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	switch b[0] {
	case 0xfd:
		v, err := r.take(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(v)), nil
	case 0xfe:
		v, err := r.take(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(v)), nil
	case 0xff:
		v, err := r.take(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(v), nil
	default:
		return uint64(b[0]), nil
	}
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) str() (string, error) {
	n, err := r.bigSize()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// tlv reads one record and checks its type.
func (r *reader) tlv(want uint64) ([]byte, error) {
	typ, err := r.bigSize()
	if err != nil {
		return nil, err
	}
	if typ != want {
		return nil, fmt.Errorf("oracle: expected tlv type %d, got %d", want, typ)
	}
	n, err := r.bigSize()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}
