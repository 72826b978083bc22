package validation

import (
	"os"
	"strconv"
	"strings"
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

func ValidateMessageContent(content string) bool {
	return len(content) <= MaxMessageLength()
}

func ValidateTitle(title string) bool {
	title = strings.TrimSpace(title)
	return len(title) <= 100
}

var allowedAttachmentTypes = map[string]struct{}{
	"image": {},
	"video": {},
	"file":  {},
}

func ValidateAttachmentType(t string) bool {
	if t == "" {
		return true // defaults to image
	}
	_, ok := allowedAttachmentTypes[t]
	return ok
}
