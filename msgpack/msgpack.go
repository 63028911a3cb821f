// Package msgpack encodes the wire forms of public objects.
//
// Encoding is canonical: map keys are sorted, so that equal values encode to
// equal bytes. Decoding rejects unknown fields.
package msgpack

import (
	"fmt"
	"reflect"

	"github.com/ugorji/go/codec"
)

var handle *codec.MsgpackHandle

func init() {
	handle = new(codec.MsgpackHandle)
	handle.ErrorIfNoField = true
	handle.ErrorIfNoArrayExpand = true
	handle.Canonical = true
	handle.RecursiveEmptyCheck = true
	handle.WriteExt = true
	handle.RawToString = false
	handle.MapType = reflect.TypeOf(map[string]interface{}(nil))
}

// Encode returns the msgpack encoding of obj
func Encode(obj interface{}) []byte {
	var b []byte
	enc := codec.NewEncoderBytes(&b, handle)
	enc.MustEncode(obj)
	return b
}

// Decode decodes b into objptr
func Decode(b []byte, objptr interface{}) error {
	dec := codec.NewDecoderBytes(b, handle)
	if err := dec.Decode(objptr); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}
	return nil
}
