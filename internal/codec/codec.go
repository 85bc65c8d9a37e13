// Package codec frames table events for the wire and for storage.
//
// An event travels as a google.protobuf.Struct envelope:
//
//	{table_id, hand_id, server_seq, server_ts_ms, server_ts, type, payload}
//
// where payload is the event's JSON form and server_ts is the timestamp in
// google.protobuf.Timestamp JSON (omitted for untimed events). Any protobuf runtime can decode
// it without generated code.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"holdem-tourney/table"
)

var ErrBadEnvelope = errors.New("bad event envelope")

// ToStruct wraps e in its envelope.
func ToStruct(e table.Event) (*structpb.Struct, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	fields := map[string]any{
		"table_id":     e.TableID,
		"hand_id":      e.HandID,
		"server_seq":   float64(e.Seq),
		"server_ts_ms": float64(0),
		"type":         string(e.Type),
		"payload":      payload,
	}
	if !e.At.IsZero() {
		fields["server_ts_ms"] = float64(e.At.UnixMilli())
		ts, err := protojson.Marshal(timestamppb.New(e.At))
		if err != nil {
			return nil, fmt.Errorf("marshal timestamp: %w", err)
		}
		var text string
		if err := json.Unmarshal(ts, &text); err != nil {
			return nil, fmt.Errorf("marshal timestamp: %w", err)
		}
		fields["server_ts"] = text
	}
	return structpb.NewStruct(fields)
}

// ServerTime reads server_ts back from an envelope.
func ServerTime(s *structpb.Struct) (time.Time, bool) {
	v, ok := s.GetFields()["server_ts"]
	if !ok {
		return time.Time{}, false
	}
	raw, err := json.Marshal(v.GetStringValue())
	if err != nil {
		return time.Time{}, false
	}
	var ts timestamppb.Timestamp
	if err := protojson.Unmarshal(raw, &ts); err != nil || ts.CheckValid() != nil {
		return time.Time{}, false
	}
	return ts.AsTime(), true
}

// FromStruct unwraps an envelope built by ToStruct.
func FromStruct(s *structpb.Struct) (table.Event, error) {
	var e table.Event
	payload, ok := s.GetFields()["payload"]
	if !ok || payload.GetStructValue() == nil {
		return e, fmt.Errorf("%w: missing payload", ErrBadEnvelope)
	}
	raw, err := protojson.Marshal(payload.GetStructValue())
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	return e, nil
}

// EncodeEvent returns the binary protobuf envelope.
func EncodeEvent(e table.Event) ([]byte, error) {
	s, err := ToStruct(e)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func DecodeEvent(b []byte) (table.Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return table.Event{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	return FromStruct(&s)
}

// EncodeEventJSON returns the envelope in protobuf's canonical JSON.
func EncodeEventJSON(e table.Event) ([]byte, error) {
	s, err := ToStruct(e)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

func DecodeEventJSON(b []byte) (table.Event, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(b, &s); err != nil {
		return table.Event{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	return FromStruct(&s)
}
