package ws

import (
	"encoding/json"
	"testing"
)

func TestDeserializeRoutesEvents(t *testing.T) {
	event, err := Deserialize([]byte(`{"type":"room:join","payload":{"conversation_id":42}}`))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	join, ok := event.(*RoomJoin)
	if !ok {
		t.Fatalf("expected *RoomJoin, got %T", event)
	}
	if join.ConversationID != 42 {
		t.Errorf("conversation_id not parsed: %d", join.ConversationID)
	}

	event, err = Deserialize([]byte(`{"type":"message:send","payload":{"conversation_id":7,"content":"hi","attachments":[{"url":"https://cdn.example.com/a.jpg"}]}}`))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	send, ok := event.(*MessageSend)
	if !ok {
		t.Fatalf("expected *MessageSend, got %T", event)
	}
	if send.ConversationID != 7 || send.Content != "hi" || len(send.Attachments) != 1 {
		t.Errorf("message:send payload wrong: %+v", send)
	}

	for _, tc := range []struct {
		raw  string
		want string
	}{
		{`{"type":"typing:start","payload":{"conversation_id":3}}`, EventTypingStart},
		{`{"type":"typing:stop","payload":{"conversation_id":3}}`, EventTypingStop},
	} {
		event, err := Deserialize([]byte(tc.raw))
		if err != nil {
			t.Fatalf("Deserialize(%s) failed: %v", tc.raw, err)
		}
		if event.Type() != tc.want {
			t.Errorf("expected %s, got %s", tc.want, event.Type())
		}
	}
}

func TestDeserializeRejectsUnknownType(t *testing.T) {
	if _, err := Deserialize([]byte(`{"type":"admin:sudo","payload":{}}`)); err == nil {
		t.Error("unknown event type should error")
	}
	if _, err := Deserialize([]byte(`not json`)); err == nil {
		t.Error("malformed frame should error")
	}
	if _, err := Deserialize([]byte(`{"type":"room:join","payload":"nope"}`)); err == nil {
		t.Error("malformed payload should error")
	}
}

func TestDeserializeEmptyPayload(t *testing.T) {
	event, err := Deserialize([]byte(`{"type":"typing:stop"}`))
	if err != nil {
		t.Fatalf("missing payload should default to zero values: %v", err)
	}
	stop, ok := event.(*TypingStop)
	if !ok {
		t.Fatalf("expected *TypingStop, got %T", event)
	}
	if stop.ConversationID != 0 {
		t.Errorf("expected zero conversation_id, got %d", stop.ConversationID)
	}
}

func TestOutboundEnvelopes(t *testing.T) {
	var env Envelope
	if err := json.Unmarshal(RoomJoinedEvent(5), &env); err != nil || env.Type != EventRoomJoined {
		t.Errorf("room joined envelope wrong: %s %v", env.Type, err)
	}
	if err := json.Unmarshal(PresenceEvent(5, true), &env); err != nil || env.Type != EventPresenceOnline {
		t.Errorf("presence online envelope wrong: %s %v", env.Type, err)
	}
	if err := json.Unmarshal(PresenceEvent(5, false), &env); err != nil || env.Type != EventPresenceOffline {
		t.Errorf("presence offline envelope wrong: %s %v", env.Type, err)
	}
	if err := json.Unmarshal(ErrorEvent("nope"), &env); err != nil || env.Type != EventError {
		t.Errorf("error envelope wrong: %s %v", env.Type, err)
	}

	var payload struct {
		UserID uint `json:"user_id"`
		Typing bool `json:"typing"`
	}
	if err := json.Unmarshal(TypingEvent(9, true), &env); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.UserID != 9 || !payload.Typing {
		t.Errorf("typing payload wrong: %+v", payload)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	original := []byte(`{"type":"message:new","payload":{"content":"hello hello hello hello"}}`)
	compressed, err := compress(original)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	restored, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if string(restored) != string(original) {
		t.Error("round trip mangled the payload")
	}
}
