package portal

import "trinity/internal/cookies"

// Wire types for the user.* stage calls. All session state travels inside
// these payloads; handlers keep nothing between invocations.

// LoginFormResult is the stage-1 output: the SAML request artifact embedded
// in the portal's login form, plus the portal's initial cookies.
type LoginFormResult struct {
	SamlRequest string      `json:"samlRequest"`
	Cookies     cookies.Jar `json:"cookies"`
}

// AuthRequest is the stage-2 input.
type AuthRequest struct {
	ID          string      `json:"id"`
	Password    string      `json:"password"`
	SamlRequest string      `json:"samlRequest"`
	Cookies     cookies.Jar `json:"cookies"`
}

// AuthResult is the stage-2 output: the SAML response artifact plus the
// cookie set grown with whatever the portal issued during authentication.
type AuthResult struct {
	SamlResponse string      `json:"samlResponse"`
	Cookies      cookies.Jar `json:"cookies"`
}

// SessionRequest is the stage-3 input.
type SessionRequest struct {
	SamlResponse string      `json:"samlResponse"`
	Cookies      cookies.Jar `json:"cookies"`
}

// SessionResult is the stage-3 output: the csrf token scraped from the
// landing page reached through the portal's redirect.
type SessionResult struct {
	Csrf    string      `json:"csrf"`
	Cookies cookies.Jar `json:"cookies"`
}

// LogoutRequest is the stage-4 input.
type LogoutRequest struct {
	Csrf    string      `json:"csrf"`
	Cookies cookies.Jar `json:"cookies"`
}

// UserInfoRequest asks the portal for the signed-in student's profile.
type UserInfoRequest struct {
	Csrf    string      `json:"csrf"`
	Cookies cookies.Jar `json:"cookies"`
}

// TrinityInfo is the portal's user profile record. Term fields (Shtm, Yyyy)
// may be filled in from the management service downstream.
type TrinityInfo struct {
	UserNm   string `json:"userNm,omitempty"`
	UserNo   string `json:"userNo,omitempty"`
	DeptNm   string `json:"deptNm,omitempty"`
	CampFg   string `json:"campFg,omitempty"`
	ShtmYyyy string `json:"shtmYyyy,omitempty"`
	ShtmFg   string `json:"SHTM_FG,omitempty"`
	Shtm     string `json:"shtm,omitempty"`
	Yyyy     string `json:"yyyy,omitempty"`
}

// UserInfoResult is the user-info reply.
type UserInfoResult struct {
	UserInfo TrinityInfo `json:"userInfo"`
}
