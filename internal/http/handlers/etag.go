package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondOKWithETag writes a success envelope tagged with a hash of data and
// answers 304 when If-None-Match already names it. The message is not part of
// the tag so wording changes do not invalidate client copies.
func RespondOKWithETag(ctx *gin.Context, data any, message string) {
	tag, err := etagOf(data)
	if err != nil {
		RespondOK(ctx, http.StatusOK, data, message)
		return
	}

	// Registration and payment records carry personal data.
	ctx.Header("Cache-Control", "private, no-cache")
	ctx.Header("ETag", tag)

	if clientHas(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	RespondOK(ctx, http.StatusOK, data, message)
}

func etagOf(data any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

func clientHas(ifNoneMatch, tag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	switch ifNoneMatch {
	case "":
		return false
	case "*":
		return true
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == tag {
			return true
		}
	}
	return false
}
