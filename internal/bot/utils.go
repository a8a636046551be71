package bot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// callbackDataMax is Telegram's limit on callback_data, in bytes.
const callbackDataMax = 64

// digestMark starts a callback argument that stands for a hashed id.
const digestMark = "#"

// callbackData joins prefix and id. Ids that would not fit, or that could be
// mistaken for a digest, are replaced by a short digest.
func callbackData(prefix, id string) string {
	data := prefix + ":" + id
	if len(data) <= callbackDataMax && !strings.HasPrefix(id, digestMark) {
		return data
	}
	return prefix + ":" + digestMark + idDigest(id)
}

func idDigest(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}

// resolveCallbackID turns a callback argument back into one of ids.
func resolveCallbackID(arg string, ids []string) (string, bool) {
	digest, hashed := strings.CutPrefix(arg, digestMark)
	if !hashed {
		return arg, true
	}
	for _, id := range ids {
		if idDigest(id) == digest {
			return id, true
		}
	}
	return "", false
}

func sessionID(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}

func splitCallback(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, ":")
	return action, arg
}

func formatPrice(amount float64) string {
	return fmt.Sprintf("%.2f €", amount)
}

// truncate shortens s to max runes for button labels.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
