package telegram

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
)

// unclassified responses are reported as "..., <code> <description>"
var responseCodeRe = regexp.MustCompile(`, (\d{3}) (.+)$`)

// wrapError converts a library error into *shared.APIError when the platform
// error code can be recovered; transport errors are wrapped as-is.
func wrapError(method string, err error) error {
	if err == nil {
		return nil
	}

	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return &shared.APIError{
			Method:      method,
			Code:        429,
			Description: tooMany.Message,
			RetryAfter:  tooMany.RetryAfter,
			Err:         err,
		}
	}

	code := 0
	switch {
	case errors.Is(err, bot.ErrorBadRequest):
		code = 400
	case errors.Is(err, bot.ErrorUnauthorized):
		code = 401
	case errors.Is(err, bot.ErrorForbidden):
		code = 403
	case errors.Is(err, bot.ErrorNotFound):
		code = 404
	case errors.Is(err, bot.ErrorConflict):
		code = 409
	}
	if code != 0 {
		return &shared.APIError{Method: method, Code: code, Description: description(err), Err: err}
	}

	if m := responseCodeRe.FindStringSubmatch(err.Error()); m != nil {
		code, _ = strconv.Atoi(m[1])
		return &shared.APIError{Method: method, Code: code, Description: m[2], Err: err}
	}

	return fmt.Errorf("telegram %s: %w", method, err)
}

// description strips the library's "<kind>, " prefix from a classified error.
func description(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, ", "); ok && rest != "" {
		return rest
	}
	return msg
}
