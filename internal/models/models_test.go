package models

import "testing"

func TestDirectKeyForIsOrderIndependent(t *testing.T) {
	if DirectKeyFor(3, 7) != DirectKeyFor(7, 3) {
		t.Error("direct key must not depend on argument order")
	}
	if got := DirectKeyFor(7, 3); got != "d:3:7" {
		t.Errorf("expected d:3:7, got %q", got)
	}
}

func TestConversationKinds(t *testing.T) {
	direct := Conversation{}
	group := Conversation{IsGroup: true}
	room := Conversation{IsGroup: true, IsPublic: true}

	if !direct.IsDirect() || direct.IsPrivateGroup() || direct.IsPublicRoom() {
		t.Error("default conversation should be direct")
	}
	if group.IsDirect() || !group.IsPrivateGroup() || group.IsPublicRoom() {
		t.Error("group flag alone means private group")
	}
	if room.IsDirect() || room.IsPrivateGroup() || !room.IsPublicRoom() {
		t.Error("group+public means public room")
	}
}

func TestParticipantActive(t *testing.T) {
	for status, want := range map[ParticipantStatus]bool{
		StatusInvited: true,
		StatusJoined:  true,
		StatusLeft:    false,
	} {
		p := Participant{Status: status}
		if p.Active() != want {
			t.Errorf("Active() for %s should be %v", status, want)
		}
	}
}

func TestMessageToResponse(t *testing.T) {
	width := 800
	m := Message{
		ID:             5,
		ConversationID: 2,
		Content:        "hi",
		Author:         User{ID: 1, Username: "alice"},
		Attachments: []Attachment{
			{ID: 9, URL: "https://cdn.example.com/a.jpg", Type: "image", Width: &width},
		},
	}
	resp := m.ToResponse()
	if resp.ID != 5 || resp.Author.Username != "alice" {
		t.Errorf("response not hydrated: %+v", resp)
	}
	if len(resp.Attachments) != 1 || resp.Attachments[0].URL != "https://cdn.example.com/a.jpg" {
		t.Errorf("attachments not mapped: %+v", resp.Attachments)
	}

	empty := Message{}
	if empty.ToResponse().Attachments == nil {
		t.Error("attachments should serialize as an empty array, not null")
	}
}
