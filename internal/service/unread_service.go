package service

import (
	"github.com/judemcastillo/social-media-clone/internal/repository"
)

// markReadBatchLimit bounds one MarkRead call. Callers needing more loop
// until the returned count is zero.
const markReadBatchLimit = 1000

// UnreadService computes unread totals on demand (no maintained counter to
// drift) and inserts read receipts idempotently.
type UnreadService struct {
	readRepo   repository.ReadReceiptRepositoryInterface
	membership *MembershipService
}

func NewUnreadService(readRepo repository.ReadReceiptRepositoryInterface, membership *MembershipService) *UnreadService {
	return &UnreadService{readRepo: readRepo, membership: membership}
}

// UnreadTotal counts messages authored by others that the user has no
// receipt for, across every conversation the user is an eligible reader of.
func (s *UnreadService) UnreadTotal(userID uint) (int64, error) {
	return s.readRepo.UnreadTotal(userID)
}

// MarkRead inserts receipts for up to markReadBatchLimit unread messages in
// the conversation and returns how many were newly marked. Calling it again
// with nothing new yields zero.
func (s *UnreadService) MarkRead(userID, conversationID uint) (int, error) {
	if _, err := s.membership.AuthorizeRead(userID, conversationID); err != nil {
		return 0, err
	}
	ids, err := s.readRepo.ListUnreadMessageIDs(userID, conversationID, markReadBatchLimit)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.readRepo.InsertBatch(userID, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
