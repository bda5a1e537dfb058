// Package featypes 定义特征值的类型全集与实体键的稳定字节编码。
//
// Value 是一个带类型标签的联合：基础类型（bytes、string、int32、int64、
// double、float、bool、unix 时间戳）及其列表形式。类型标签的数值是线上
// 存储的持久化格式的一部分，一经定义不可变更。
package featypes

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/featconf/xerrors"
)

// ValueType 特征值类型标签。数值参与持久化编码，保持稳定。
type ValueType uint32

const (
	TypeInvalid   ValueType = 0
	TypeBytes     ValueType = 1
	TypeString    ValueType = 2
	TypeInt32     ValueType = 3
	TypeInt64     ValueType = 4
	TypeDouble    ValueType = 5
	TypeFloat     ValueType = 6
	TypeBool      ValueType = 7
	TypeTimestamp ValueType = 8

	TypeBytesList     ValueType = 11
	TypeStringList    ValueType = 12
	TypeInt32List     ValueType = 13
	TypeInt64List     ValueType = 14
	TypeDoubleList    ValueType = 15
	TypeFloatList     ValueType = 16
	TypeBoolList      ValueType = 17
	TypeTimestampList ValueType = 18
)

// ErrUnsupportedType 值类型不在支持范围内
var ErrUnsupportedType = xerrors.New("featypes: unsupported value type")

// IsUnsupportedType 检查错误是否为不支持的值类型
func IsUnsupportedType(err error) bool {
	return xerrors.Is(err, ErrUnsupportedType)
}

// Value 带类型标签的特征值联合。零值表示 TypeInvalid。
//
// Value 是不可变的，通过构造函数创建，通过类型化取值方法读取。
type Value struct {
	typ  ValueType
	data any
}

// 构造函数

func BytesValue(v []byte) Value   { return Value{TypeBytes, v} }
func StringValue(v string) Value  { return Value{TypeString, v} }
func Int32Value(v int32) Value    { return Value{TypeInt32, v} }
func Int64Value(v int64) Value    { return Value{TypeInt64, v} }
func DoubleValue(v float64) Value { return Value{TypeDouble, v} }
func FloatValue(v float32) Value  { return Value{TypeFloat, v} }
func BoolValue(v bool) Value      { return Value{TypeBool, v} }

func TimestampValue(v time.Time) Value {
	return Value{TypeTimestamp, v.Unix()}
}

func BytesListValue(v [][]byte) Value   { return Value{TypeBytesList, v} }
func StringListValue(v []string) Value  { return Value{TypeStringList, v} }
func Int32ListValue(v []int32) Value    { return Value{TypeInt32List, v} }
func Int64ListValue(v []int64) Value    { return Value{TypeInt64List, v} }
func DoubleListValue(v []float64) Value { return Value{TypeDoubleList, v} }
func FloatListValue(v []float32) Value  { return Value{TypeFloatList, v} }
func BoolListValue(v []bool) Value      { return Value{TypeBoolList, v} }

func TimestampListValue(v []time.Time) Value {
	unix := make([]int64, len(v))
	for i, t := range v {
		unix[i] = t.Unix()
	}
	return Value{TypeTimestampList, unix}
}

// Type 返回类型标签
func (v Value) Type() ValueType {
	return v.typ
}

// IsValid 报告值是否携带有效类型
func (v Value) IsValid() bool {
	return v.typ != TypeInvalid
}

// 类型化取值方法，类型不匹配时返回零值和 false

func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.data.([]byte)
	return b, ok && v.typ == TypeBytes
}

// StringVal 返回字符串值（String 签名留给 fmt.Stringer，这里避免冲突）
func (v Value) StringVal() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.typ == TypeString
}

func (v Value) Int32() (int32, bool) {
	i, ok := v.data.(int32)
	return i, ok && v.typ == TypeInt32
}

func (v Value) Int64() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok && v.typ == TypeInt64
}

func (v Value) Double() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok && v.typ == TypeDouble
}

func (v Value) Float() (float32, bool) {
	f, ok := v.data.(float32)
	return f, ok && v.typ == TypeFloat
}

func (v Value) Bool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok && v.typ == TypeBool
}

func (v Value) Timestamp() (time.Time, bool) {
	unix, ok := v.data.(int64)
	if !ok || v.typ != TypeTimestamp {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}

func (v Value) StringList() ([]string, bool) {
	l, ok := v.data.([]string)
	return l, ok && v.typ == TypeStringList
}

func (v Value) Int64List() ([]int64, bool) {
	l, ok := v.data.([]int64)
	return l, ok && v.typ == TypeInt64List
}

func (v Value) DoubleList() ([]float64, bool) {
	l, ok := v.data.([]float64)
	return l, ok && v.typ == TypeDoubleList
}

// EncodeMsgpack 实现 msgpack.CustomEncoder，编码为 [type, payload] 二元组
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeUint32(uint32(v.typ)); err != nil {
		return err
	}
	return enc.Encode(v.data)
}

// DecodeMsgpack 实现 msgpack.CustomDecoder
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return xerrors.Wrapf(ErrUnsupportedType, "malformed value envelope: array len %d", n)
	}
	typ, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	v.typ = ValueType(typ)

	switch v.typ {
	case TypeBytes:
		b, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		v.data = b
	case TypeString:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		v.data = s
	case TypeInt32:
		i, err := dec.DecodeInt32()
		if err != nil {
			return err
		}
		v.data = i
	case TypeInt64, TypeTimestamp:
		i, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		v.data = i
	case TypeDouble:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		v.data = f
	case TypeFloat:
		f, err := dec.DecodeFloat32()
		if err != nil {
			return err
		}
		v.data = f
	case TypeBool:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		v.data = b
	case TypeBytesList:
		var l [][]byte
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	case TypeStringList:
		var l []string
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	case TypeInt32List:
		var l []int32
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	case TypeInt64List, TypeTimestampList:
		var l []int64
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	case TypeDoubleList:
		var l []float64
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	case TypeFloatList:
		var l []float32
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	case TypeBoolList:
		var l []bool
		if err := dec.Decode(&l); err != nil {
			return err
		}
		v.data = l
	default:
		return xerrors.Wrapf(ErrUnsupportedType, "type tag %d", typ)
	}
	return nil
}

// Row 一行特征：特征名到值的映射
type Row map[string]Value

// EncodeRow 将一行特征序列化为存储 blob
func EncodeRow(row Row) ([]byte, error) {
	b, err := msgpack.Marshal(row)
	if err != nil {
		return nil, xerrors.Wrap(err, "encode feature row")
	}
	return b, nil
}

// DecodeRow 从存储 blob 反序列化一行特征
func DecodeRow(blob []byte) (Row, error) {
	var row Row
	if err := msgpack.Unmarshal(blob, &row); err != nil {
		return nil, xerrors.Wrap(err, "decode feature row")
	}
	return row, nil
}
