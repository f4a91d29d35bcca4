package chat

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/kartuli/chat"
)

// ChatHandler godoc
// @Summary Send a chat message
// @Description Checks the caller's token quota, forwards the message to the assistant and records prompt and reply tokens.
// @Description Guests are identified by cookie, signed-in users by bearer token.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body chat.Request true "Chat message"
// @Success 200 {object} chat.Reply
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.QuotaExceededResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/chat [post]
func ChatHandler(svc Service, resolver *actor.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chat.Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		a, ok := resolver.MustResolve(c)
		if !ok {
			return
		}

		reply, err := svc.Send(c.Request.Context(), a, req)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, reply)
	}
}

// ImageHandler godoc
// @Summary Generate an image
// @Description Checks the caller's monthly image allowance and asks the image chatflow for a picture.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body chat.ImageRequest true "Image prompt"
// @Success 200 {object} chat.ImageReply
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.QuotaExceededResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/images [post]
func ImageHandler(svc Service, resolver *actor.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chat.ImageRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		a, ok := resolver.MustResolve(c)
		if !ok {
			return
		}

		reply, err := svc.GenerateImage(c.Request.Context(), a, req)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, reply)
	}
}

// maps chat service errors to responses
func RespondError(c *gin.Context, err error) {
	var quotaErr *chat.QuotaError

	switch {
	case stderrors.As(err, &quotaErr):
		errors.QuotaExceeded(c, quotaErr.Error(), quotaErr.Decision.Usage, quotaErr.Decision.Limits)
	case stderrors.Is(err, chat.ErrEmptyMessage), stderrors.Is(err, chat.ErrMessageTooLong):
		errors.BadRequest(c, err.Error(), nil)
	case stderrors.Is(err, flowise.ErrImagesDisabled):
		errors.ServiceUnavailable(c, "image generation is not available")
	case stderrors.Is(err, chat.ErrUpstream):
		errors.UpstreamError(c, "assistant is unavailable, try again later", err)
	default:
		errors.InternalError(c, "failed to process request", err)
	}
}
