package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maxpert/amqp-client-go/errors"
)

// Field type tags from the AMQP 0.9.1 field table grammar (RabbitMQ dialect).
// Every encoded value is self-describing via one of these single-byte tags,
// except table keys which are always short strings.
const (
	TagBoolean        = 't'
	TagShortShortInt  = 'b'
	TagShortShortUInt = 'B'
	TagShortInt       = 'U'
	TagShortUInt      = 'u'
	TagLongInt        = 'I'
	TagLongUInt       = 'i'
	TagLongLongInt    = 'L'
	TagLongLongUInt   = 'l'
	TagFloat          = 'f'
	TagDouble         = 'd'
	TagDecimal        = 'D'
	TagSignedShort    = 's'
	TagLongString     = 'S'
	TagByteArray      = 'x'
	TagArray          = 'A'
	TagTimestamp      = 'T'
	TagTable          = 'F'
	TagVoid           = 'V'
)

// MaxShortStringLen is the maximum byte length of an AMQP short string
const MaxShortStringLen = 255

// Table is an AMQP field table: short-string keys mapped to field values.
// Decoded values use the Go types documented on DecodeFieldValue; on duplicate
// keys the last decoded pair wins.
type Table map[string]interface{}

// Decimal is an AMQP fixed-point decimal: Value scaled down by 10^Scale.
// The scale octet is unsigned per the protocol grammar.
type Decimal struct {
	Scale uint8
	Value int32
}

// Float64 returns the decimal as a float64 approximation.
func (d Decimal) Float64() float64 {
	return float64(d.Value) / math.Pow10(int(d.Scale))
}

func (d Decimal) String() string {
	if d.Scale == 0 {
		return strconv.FormatInt(int64(d.Value), 10)
	}
	return strconv.FormatFloat(d.Float64(), 'f', int(d.Scale), 64)
}

// ParseDecimal parses a decimal string into its wire representation.
// Fractional input yields scale = number of fractional digits (trailing zeros
// stripped) and a scaled-up mantissa. Integral input yields scale 0; fractional
// precision cannot be represented on that path.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, errors.NewSyntaxError("empty decimal literal")
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = strings.TrimRight(s[dot+1:], "0")
	}

	if fracPart == "" {
		value, err := strconv.ParseInt(intPart, 10, 32)
		if err != nil {
			return Decimal{}, errors.NewSyntaxError(fmt.Sprintf("invalid decimal literal %q", s))
		}
		return Decimal{Scale: 0, Value: int32(value)}, nil
	}

	if len(fracPart) > math.MaxUint8 {
		return Decimal{}, errors.NewSyntaxError(fmt.Sprintf("decimal scale out of range in %q", s))
	}
	mantissa := intPart + fracPart
	if strings.HasPrefix(intPart, "-") {
		mantissa = "-" + strings.TrimPrefix(intPart, "-") + fracPart
	}
	value, err := strconv.ParseInt(mantissa, 10, 32)
	if err != nil {
		return Decimal{}, errors.NewSyntaxError(fmt.Sprintf("invalid decimal literal %q", s))
	}
	return Decimal{Scale: uint8(len(fracPart)), Value: int32(value)}, nil
}

// EncodeShortString encodes a string as an AMQP short string: a 1-byte length
// followed by up to 255 bytes of UTF-8 data. Longer input is an error, not
// truncated, so corrupted keys never silently reach the peer.
func EncodeShortString(s string) ([]byte, error) {
	if len(s) > MaxShortStringLen {
		return nil, errors.NewShortStringTooLong(len(s))
	}
	result := make([]byte, 1+len(s))
	result[0] = byte(len(s))
	copy(result[1:], s)
	return result, nil
}

func appendShortString(buf *bytes.Buffer, s string) error {
	if len(s) > MaxShortStringLen {
		return errors.NewShortStringTooLong(len(s))
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

// DecodeShortString decodes a short string from data at the given offset
func DecodeShortString(data []byte, offset int) (string, int, error) {
	if offset >= len(data) {
		return "", offset, errors.NewTruncatedField("short string length")
	}
	strLen := int(data[offset])
	offset++
	if offset+strLen > len(data) {
		return "", offset, errors.NewTruncatedField("short string")
	}
	s := string(data[offset : offset+strLen])
	offset += strLen
	return s, offset, nil
}

// EncodeFieldValue encodes a single field value with its type tag, returning
// the tagged byte representation.
func EncodeFieldValue(value interface{}) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := appendFieldValue(buf, value); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// appendFieldValue encodes value into buf. The type switch mirrors the wire
// grammar: strings before byte slices, booleans before integers (booleans are
// a distinct tag, never conflated with 0/1 integers), and every fixed-width
// integer collapses onto the 8-byte 'l' form. Peers depend on that exact tag
// choice, so small integers are not packed into narrower tags.
func appendFieldValue(buf *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case string:
		buf.WriteByte(TagLongString)
		appendLongUint(buf, uint32(len(v)))
		buf.WriteString(v)

	case []byte:
		buf.WriteByte(TagByteArray)
		appendLongUint(buf, uint32(len(v)))
		buf.Write(v)

	case bool:
		buf.WriteByte(TagBoolean)
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}

	case int:
		appendLongLong(buf, uint64(int64(v)))
	case int8:
		appendLongLong(buf, uint64(int64(v)))
	case int16:
		appendLongLong(buf, uint64(int64(v)))
	case int32:
		appendLongLong(buf, uint64(int64(v)))
	case int64:
		appendLongLong(buf, uint64(v))
	case uint:
		appendLongLong(buf, uint64(v))
	case uint8:
		appendLongLong(buf, uint64(v))
	case uint16:
		appendLongLong(buf, uint64(v))
	case uint32:
		appendLongLong(buf, uint64(v))
	case uint64:
		appendLongLong(buf, v)

	case Decimal:
		buf.WriteByte(TagDecimal)
		buf.WriteByte(v.Scale)
		var raw [4]byte
		binary.BigEndian.PutUint32(raw[:], uint32(v.Value))
		buf.Write(raw[:])

	case time.Time:
		buf.WriteByte(TagTimestamp)
		var raw [8]byte
		binary.BigEndian.PutUint64(raw[:], uint64(v.Unix()))
		buf.Write(raw[:])

	case Table:
		buf.WriteByte(TagTable)
		return appendFieldTable(buf, v)
	case map[string]interface{}:
		buf.WriteByte(TagTable)
		return appendFieldTable(buf, v)

	case []interface{}:
		nested := getBuffer()
		defer putBuffer(nested)
		for _, element := range v {
			if err := appendFieldValue(nested, element); err != nil {
				return err
			}
		}
		buf.WriteByte(TagArray)
		appendLongUint(buf, uint32(nested.Len()))
		buf.Write(nested.Bytes())

	case nil:
		buf.WriteByte(TagVoid)

	default:
		return errors.NewUnsupportedFieldType(value)
	}
	return nil
}

func appendLongUint(buf *bytes.Buffer, v uint32) {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], v)
	buf.Write(raw[:])
}

func appendLongLong(buf *bytes.Buffer, v uint64) {
	buf.WriteByte(TagLongLongUInt)
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], v)
	buf.Write(raw[:])
}

// DecodeFieldValue decodes one tagged field value from data at the given
// offset, returning the value and the new offset.
//
// Decoded Go types per tag: 't' bool, 'b' uint8, 'B' int8, 'U'/'s' int16,
// 'u' uint16, 'I' int32, 'i' uint32, 'L' int64, 'l' uint64, 'f'/'d' int64
// (the fractional part is dropped), 'D' Decimal, 'S' string (or []byte when
// the payload is not valid UTF-8), 'x' []byte, 'A' []interface{}, 'T'
// time.Time in UTC, 'F' Table, 'V' nil.
func DecodeFieldValue(data []byte, offset int) (interface{}, int, error) {
	if offset >= len(data) {
		return nil, offset, errors.NewTruncatedField("field type tag")
	}
	tag := data[offset]
	offset++

	switch tag {
	case TagBoolean:
		if err := ensure(data, offset, 1, "boolean"); err != nil {
			return nil, offset, err
		}
		return data[offset] != 0, offset + 1, nil

	case TagShortShortInt:
		if err := ensure(data, offset, 1, "short-short int"); err != nil {
			return nil, offset, err
		}
		// read unsigned, exactly as peers expect from this dialect
		return data[offset], offset + 1, nil

	case TagShortShortUInt:
		if err := ensure(data, offset, 1, "short-short uint"); err != nil {
			return nil, offset, err
		}
		// read signed, exactly as peers expect from this dialect
		return int8(data[offset]), offset + 1, nil

	case TagShortInt, TagSignedShort:
		if err := ensure(data, offset, 2, "short int"); err != nil {
			return nil, offset, err
		}
		return int16(binary.BigEndian.Uint16(data[offset : offset+2])), offset + 2, nil

	case TagShortUInt:
		if err := ensure(data, offset, 2, "short uint"); err != nil {
			return nil, offset, err
		}
		return binary.BigEndian.Uint16(data[offset : offset+2]), offset + 2, nil

	case TagLongInt:
		if err := ensure(data, offset, 4, "long int"); err != nil {
			return nil, offset, err
		}
		return int32(binary.BigEndian.Uint32(data[offset : offset+4])), offset + 4, nil

	case TagLongUInt:
		if err := ensure(data, offset, 4, "long uint"); err != nil {
			return nil, offset, err
		}
		return binary.BigEndian.Uint32(data[offset : offset+4]), offset + 4, nil

	case TagLongLongInt:
		if err := ensure(data, offset, 8, "long-long int"); err != nil {
			return nil, offset, err
		}
		return int64(binary.BigEndian.Uint64(data[offset : offset+8])), offset + 8, nil

	case TagLongLongUInt:
		if err := ensure(data, offset, 8, "long-long uint"); err != nil {
			return nil, offset, err
		}
		return binary.BigEndian.Uint64(data[offset : offset+8]), offset + 8, nil

	case TagFloat:
		if err := ensure(data, offset, 4, "float"); err != nil {
			return nil, offset, err
		}
		f := math.Float32frombits(binary.BigEndian.Uint32(data[offset : offset+4]))
		// fractional part is dropped
		return int64(f), offset + 4, nil

	case TagDouble:
		if err := ensure(data, offset, 8, "double"); err != nil {
			return nil, offset, err
		}
		f := math.Float64frombits(binary.BigEndian.Uint64(data[offset : offset+8]))
		// fractional part is dropped
		return int64(f), offset + 8, nil

	case TagDecimal:
		if err := ensure(data, offset, 5, "decimal"); err != nil {
			return nil, offset, err
		}
		scale := data[offset]
		raw := int32(binary.BigEndian.Uint32(data[offset+1 : offset+5]))
		return Decimal{Scale: scale, Value: raw}, offset + 5, nil

	case TagLongString:
		if err := ensure(data, offset, 4, "long string length"); err != nil {
			return nil, offset, err
		}
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
		if err := ensure(data, offset, length, "long string"); err != nil {
			return nil, offset, err
		}
		payload := data[offset : offset+length]
		offset += length
		if utf8.Valid(payload) {
			return string(payload), offset, nil
		}
		raw := make([]byte, length)
		copy(raw, payload)
		return raw, offset, nil

	case TagByteArray:
		if err := ensure(data, offset, 4, "byte array length"); err != nil {
			return nil, offset, err
		}
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
		if err := ensure(data, offset, length, "byte array"); err != nil {
			return nil, offset, err
		}
		raw := make([]byte, length)
		copy(raw, data[offset:offset+length])
		return raw, offset + length, nil

	case TagArray:
		if err := ensure(data, offset, 4, "array length"); err != nil {
			return nil, offset, err
		}
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
		if err := ensure(data, offset, length, "array"); err != nil {
			return nil, offset, err
		}
		limit := offset + length
		value := []interface{}{}
		for offset < limit {
			element, next, err := DecodeFieldValue(data, offset)
			if err != nil {
				return nil, next, err
			}
			value = append(value, element)
			offset = next
		}
		return value, offset, nil

	case TagTimestamp:
		if err := ensure(data, offset, 8, "timestamp"); err != nil {
			return nil, offset, err
		}
		seconds := binary.BigEndian.Uint64(data[offset : offset+8])
		return time.Unix(int64(seconds), 0).UTC(), offset + 8, nil

	case TagTable:
		return DecodeFieldTable(data, offset)

	case TagVoid:
		return nil, offset, nil

	default:
		return nil, offset, errors.NewInvalidFieldType(tag)
	}
}

// EncodeFieldTable encodes a field table: a 4-byte big-endian payload length
// followed by the concatenated (short-string key, tagged value) pairs in map
// iteration order.
func EncodeFieldTable(table Table) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := appendFieldTable(buf, table); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func appendFieldTable(buf *bytes.Buffer, table Table) error {
	// reserve the 4-byte length prefix, back-patched once the pairs are encoded
	lengthIndex := buf.Len()
	buf.Write([]byte{0, 0, 0, 0})
	start := buf.Len()

	for key, value := range table {
		if err := appendShortString(buf, key); err != nil {
			return err
		}
		if err := appendFieldValue(buf, value); err != nil {
			return err
		}
	}

	binary.BigEndian.PutUint32(buf.Bytes()[lengthIndex:lengthIndex+4], uint32(buf.Len()-start))
	return nil
}

// DecodeFieldTable decodes a field table from data at the given offset,
// returning the table and the new offset. Pairs are consumed until the
// absolute limit implied by the length prefix; a malformed length is a
// protocol violation, not something recoverable mid-stream.
func DecodeFieldTable(data []byte, offset int) (Table, int, error) {
	if offset+4 > len(data) {
		return nil, offset, errors.NewTruncatedField("field table length")
	}
	tableLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if offset+tableLen > len(data) {
		return nil, offset, errors.NewTruncatedField("field table")
	}

	limit := offset + tableLen
	table := make(Table)
	for offset < limit {
		key, next, err := DecodeShortString(data, offset)
		if err != nil {
			return nil, next, err
		}
		value, next, err := DecodeFieldValue(data, next)
		if err != nil {
			return nil, next, err
		}
		table[key] = value
		offset = next
	}
	return table, offset, nil
}

func ensure(data []byte, offset, n int, what string) error {
	if offset+n > len(data) {
		return errors.NewTruncatedField(what)
	}
	return nil
}
