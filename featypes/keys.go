package featypes

import (
	"encoding/binary"
	"sort"

	"github.com/ceyewan/featconf/xerrors"
)

// EntityKey 实体键：join key 名称与对应取值的平行切片。
type EntityKey struct {
	JoinKeys []string
	Values   []Value
}

// ErrMalformedEntityKey 实体键结构非法
var ErrMalformedEntityKey = xerrors.New("featypes: malformed entity key")

// SerializeEntityKey 将实体键编码为稳定的字节串，用作线上存储的查找键。
//
// 不能直接用通用序列化（如 protobuf）做查找键：同一数据的两次序列化
// 不保证产出相同的字节串。这里采用固定布局：join key 按名称排序后，
// 先写所有键定义（<u32 名称类型标签><名称字节><u32 值类型标签>），
// 再写所有值（<u32 长度><小端负载>）。
//
// 键值仅支持 string、bytes、int32、int64，其余类型返回错误。
func SerializeEntityKey(key EntityKey) ([]byte, error) {
	if len(key.JoinKeys) == 0 || len(key.JoinKeys) != len(key.Values) {
		return nil, xerrors.Wrapf(ErrMalformedEntityKey,
			"join keys %d, values %d", len(key.JoinKeys), len(key.Values))
	}

	// 按 join key 名称排序，值跟随各自的键
	idx := make([]int, len(key.JoinKeys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return key.JoinKeys[idx[a]] < key.JoinKeys[idx[b]]
	})

	var out []byte
	for _, i := range idx {
		out = appendUint32(out, uint32(TypeString))
		out = append(out, key.JoinKeys[i]...)
		out = appendUint32(out, uint32(key.Values[i].Type()))
	}
	for _, i := range idx {
		payload, err := serializeKeyValue(key.Values[i])
		if err != nil {
			return nil, xerrors.Wrapf(err, "join key %q", key.JoinKeys[i])
		}
		out = appendUint32(out, uint32(len(payload)))
		out = append(out, payload...)
	}
	return out, nil
}

// SerializeEntityKeyPrefix 仅编码 join key 名称，用于对线上存储做前缀扫描。
// 这是 SerializeEntityKey 的部分实现：只含键定义的名称部分，不含值。
func SerializeEntityKeyPrefix(joinKeys []string) []byte {
	sorted := append([]string(nil), joinKeys...)
	sort.Strings(sorted)

	var out []byte
	for _, k := range sorted {
		out = appendUint32(out, uint32(TypeString))
		out = append(out, k...)
	}
	return out
}

// serializeKeyValue 编码单个键值的负载，小端。
func serializeKeyValue(v Value) ([]byte, error) {
	switch v.Type() {
	case TypeString:
		s, _ := v.StringVal()
		return []byte(s), nil
	case TypeBytes:
		b, _ := v.Bytes()
		return b, nil
	case TypeInt32:
		i, _ := v.Int32()
		return binary.LittleEndian.AppendUint32(nil, uint32(i)), nil
	case TypeInt64:
		i, _ := v.Int64()
		return binary.LittleEndian.AppendUint64(nil, uint64(i)), nil
	default:
		return nil, xerrors.Wrapf(ErrUnsupportedType,
			"entity key value type %d (only string, bytes, int32, int64)", v.Type())
	}
}

func appendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}
