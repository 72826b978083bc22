package handlers

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/judemcastillo/social-media-clone/internal/cache"
	"github.com/judemcastillo/social-media-clone/internal/handlers/ws"
	"github.com/judemcastillo/social-media-clone/internal/httpx"
	"github.com/judemcastillo/social-media-clone/internal/models"
	"github.com/judemcastillo/social-media-clone/internal/service"
	"github.com/judemcastillo/social-media-clone/internal/validation"
)

var defaultFeaturedRooms = []string{"New Members", "Yappers4Life", "Exclusive Yappers"}

type ConversationHandler struct {
	membership *service.MembershipService
	hub        *ws.Hub
	convCache  *cache.ConversationCache
}

func NewConversationHandler(membership *service.MembershipService, hub *ws.Hub, convCache *cache.ConversationCache) *ConversationHandler {
	return &ConversationHandler{membership: membership, hub: hub, convCache: convCache}
}

// GetConversations lists the viewer's conversations plus public rooms, each
// with last message and unread count.
func (h *ConversationHandler) GetConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}

	if cached, ok := h.convCache.GetList(userID); ok {
		return c.JSON(fiber.Map{"conversations": cached})
	}

	summaries, err := h.membership.ListConversations(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	_ = h.convCache.SetList(userID, summaries)
	return c.JSON(fiber.Map{"conversations": summaries})
}

// GetFeaturedRooms lists the configured featured public rooms.
func (h *ConversationHandler) GetFeaturedRooms(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}

	if cached, ok := h.convCache.GetFeatured(userID); ok {
		return c.JSON(fiber.Map{"rooms": cached})
	}

	rooms, err := h.membership.FeaturedRooms(userID, featuredRoomTitles())
	if err != nil {
		return respondServiceError(c, err)
	}
	_ = h.convCache.SetFeatured(userID, rooms)
	return c.JSON(fiber.Map{"rooms": rooms})
}

type createDirectRequest struct {
	PeerID uint `json:"peer_id"`
}

// CreateDirect finds or creates the DM with the peer.
func (h *ConversationHandler) CreateDirect(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	var req createDirectRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	conv, err := h.membership.CreateDirect(userID, req.PeerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"conversation_id": conv.ID})
}

type createGroupRequest struct {
	Title     string `json:"title"`
	MemberIDs []uint `json:"member_ids"`
}

// CreateGroup creates a private group; members start INVITED.
func (h *ConversationHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if !validation.ValidateTitle(req.Title) {
		return httpx.BadRequest(c, "invalid_title", "Title too long")
	}

	conv, err := h.membership.CreateGroup(userID, req.MemberIDs, req.Title)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation_id": conv.ID})
}

type createRoomRequest struct {
	Title string `json:"title"`
}

// CreateRoom creates an open-join public room.
func (h *ConversationHandler) CreateRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if !validation.ValidateTitle(req.Title) {
		return httpx.BadRequest(c, "invalid_title", "Title too long")
	}

	conv, err := h.membership.CreatePublicRoom(userID, req.Title)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation_id": conv.ID})
}

// JoinRoom joins a public room (upsert to JOINED).
func (h *ConversationHandler) JoinRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}

	if err := h.membership.JoinPublicRoom(userID, uint(conversationID)); err != nil {
		return respondServiceError(c, err)
	}
	h.convCache.InvalidateList(userID)
	return c.JSON(fiber.Map{"ok": true})
}

// Leave leaves a group or public room. A sole admin leaving a private group
// promotes the earliest joiner first.
func (h *ConversationHandler) Leave(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}

	if err := h.membership.Leave(userID, uint(conversationID)); err != nil {
		return respondServiceError(c, err)
	}
	// Stop room-path delivery for the leaver immediately.
	h.hub.RemoveUserFromRoom(uint(conversationID), userID)
	h.convCache.InvalidateList(userID)
	return c.JSON(fiber.Map{"ok": true})
}

type addMembersRequest struct {
	MemberIDs []uint `json:"member_ids"`
}

// AddMembers invites users into a private group (admin only).
func (h *ConversationHandler) AddMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}
	var req addMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if len(req.MemberIDs) == 0 {
		return httpx.BadRequest(c, "no_members", "Select at least one member")
	}

	participants, err := h.membership.AddMembers(userID, uint(conversationID), req.MemberIDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"participants": toParticipantResponses(participants)})
}

// RemoveMember removes a non-admin member from a private group (admin only).
func (h *ConversationHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}
	targetID, err := c.ParamsInt("user_id")
	if err != nil || targetID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid user id")
	}

	if err := h.membership.RemoveMember(userID, uint(conversationID), uint(targetID)); err != nil {
		return respondServiceError(c, err)
	}
	// A removed member must not keep receiving room-path events.
	h.hub.RemoveUserFromRoom(uint(conversationID), uint(targetID))
	h.convCache.InvalidateList(uint(targetID))
	return c.JSON(fiber.Map{"ok": true})
}

// GetParticipants lists the active membership of a conversation.
func (h *ConversationHandler) GetParticipants(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}

	participants, err := h.membership.Participants(userID, uint(conversationID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"participants": toParticipantResponses(participants)})
}

func toParticipantResponses(participants []models.Participant) []models.ParticipantResponse {
	out := make([]models.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, p.ToResponse())
	}
	return out
}

func featuredRoomTitles() []string {
	raw := strings.TrimSpace(os.Getenv("FEATURED_ROOMS"))
	if raw == "" {
		return defaultFeaturedRooms
	}
	parts := strings.Split(raw, ",")
	titles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			titles = append(titles, p)
		}
	}
	if len(titles) == 0 {
		return defaultFeaturedRooms
	}
	return titles
}
