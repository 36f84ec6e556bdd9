// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2) and RFC 3339 nanosecond timestamps.
var encMode cbor.EncMode

// decMode decodes standard CBOR. Unknown fields are ignored so a newer
// dashboard can talk to an older worker build.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// The core deterministic default encodes time.Time as integer Unix
	// seconds, which would truncate message timestamps on their way into
	// a worker context.
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Payload maps decoded into any-typed targets must be
		// map[string]any so they can be handed to encoding/json.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value. Envelope types use it to carry
// a payload that only the receiving processor knows how to decode.
type RawMessage = cbor.RawMessage

// MarshalRaw encodes v and returns it as a RawMessage ready to embed in
// an envelope. A nil v produces a nil RawMessage.
func MarshalRaw(v any) (RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	return RawMessage(data), nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
// Used in error messages when a worker rejects an envelope.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
