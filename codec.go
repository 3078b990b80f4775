package goSession

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const (
	recordFormatVersionCurrent = 2
	recordFormatVersionV1      = 1
)

// EncodeRecord serializes a record into the versioned binary storage format.
// The session id is not part of the blob; backends derive it from the file
// name or key and restore it after decode.
//
// Format (big endian): version byte, uint32 payload length, payload bytes,
// int64 CreatedAt, int64 LastActiveAt, int64 ExpiresAt (v2 only). The
// format is append-only: new versions add fields but never reinterpret old
// ones.
func EncodeRecord(r *Record) ([]byte, error) {
	if r == nil {
		return nil, ErrNilRecord
	}
	if len(r.Payload) > math.MaxUint32 {
		return nil, errors.New("payload too large")
	}
	if r.CreatedAt > r.LastActiveAt {
		return nil, errors.New("record timestamps out of order")
	}

	var buf bytes.Buffer
	buf.Grow(1 + 4 + len(r.Payload) + 3*8)

	buf.WriteByte(recordFormatVersionCurrent)

	if err := binary.Write(&buf, binary.BigEndian, uint32(len(r.Payload))); err != nil {
		return nil, err
	}
	buf.Write(r.Payload)

	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.LastActiveAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeRecord parses a storage blob produced by [EncodeRecord] or by the v1
// codec. v1 blobs lack the absolute-expiry field; ExpiresAt decodes as zero.
// The caller sets SessionID afterwards.
func DecodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionCurrent && version != recordFormatVersionV1 {
		return nil, errors.New("unsupported record format version")
	}

	var payloadLen uint32
	if err := binary.Read(reader, binary.BigEndian, &payloadLen); err != nil {
		return nil, err
	}
	if int64(payloadLen) > int64(reader.Len()) {
		return nil, errors.New("payload length exceeds blob size")
	}

	r := &Record{}
	if payloadLen > 0 {
		r.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(reader, r.Payload); err != nil {
			return nil, err
		}
	}

	if err := binary.Read(reader, binary.BigEndian, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &r.LastActiveAt); err != nil {
		return nil, err
	}
	if version == recordFormatVersionCurrent {
		if err := binary.Read(reader, binary.BigEndian, &r.ExpiresAt); err != nil {
			return nil, err
		}
	}

	if r.CreatedAt > r.LastActiveAt {
		return nil, errors.New("record timestamps out of order")
	}

	return r, nil
}
