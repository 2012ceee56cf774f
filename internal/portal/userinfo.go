package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	dErrors "trinity/pkg/domain-errors"
)

// UserInfo fetches the signed-in student's profile. Requires an established
// session: the csrf token plus the accumulated portal cookies.
func (c *Client) UserInfo(ctx context.Context, in UserInfoRequest) (*UserInfoResult, error) {
	if in.Csrf == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing session token")
	}

	headers := map[string]string{
		"x-csrf-token":     in.Csrf,
		"x-requested-with": "XMLHttpRequest",
		"Accept":           "application/json, text/javascript, */*; q=0.01",
	}
	resp, body, err := c.do(ctx, http.MethodPost, "/portal/main/findUserInfo.json", url.Values{}, in.Cookies, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("user info returned status %d", resp.StatusCode))
	}

	var payload struct {
		TrinityInfo TrinityInfo `json:"trinityInfo"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnexpectedResponse, "malformed user info payload", err)
	}

	return &UserInfoResult{UserInfo: payload.TrinityInfo}, nil
}
