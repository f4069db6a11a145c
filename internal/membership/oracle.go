package membership

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Oracle queries the Telegram Bot API for a user's membership status in
// the gating channel. It deliberately uses its own HTTP client instead
// of the update-dispatching bot, so the authorization path has no shared
// state with message handling.
type Oracle struct {
	client *resty.Client
}

func NewOracle(token string) *Oracle {
	return &Oracle{
		client: resty.New().SetBaseURL(fmt.Sprintf("https://api.telegram.org/bot%s", token)),
	}
}

type chatMemberResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Result      struct {
		Status string `json:"status"`
	} `json:"result"`
}

// Status returns the live membership status of userID in channelID.
// A user the platform cannot find in the channel is reported as left.
func (o *Oracle) Status(ctx context.Context, channelID string, userID int64) (Status, error) {
	var result chatMemberResponse

	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"chat_id": channelID,
			"user_id": strconv.FormatInt(userID, 10),
		}).
		SetResult(&result).
		SetError(&result).
		Get("/getChatMember")
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}

	if !result.OK {
		if result.ErrorCode == http.StatusBadRequest &&
			strings.Contains(strings.ToLower(result.Description), "user not found") {
			return StatusLeft, nil
		}
		return "", fmt.Errorf("unexpected status code: %d %s", resp.StatusCode(), result.Description)
	}

	switch status := Status(result.Result.Status); status {
	case StatusCreator, StatusAdministrator, StatusMember, StatusRestricted, StatusLeft, StatusKicked:
		return status, nil
	default:
		return "", fmt.Errorf("unknown membership status %q", result.Result.Status)
	}
}
