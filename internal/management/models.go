// Package management owns the administrative state: the login counter, the
// admin console sessions, and the academic term (shtm/yyyy) the rest of the
// system reads.
package management

// Topics served by the management worker.
const (
	TopicLoginSuccess    = "management.loginSuccess"
	TopicGetLoginCount   = "management.getLoginCount"
	TopicLogin           = "management.login"
	TopicLogout          = "management.logout"
	TopicValidateSession = "management.validateSession"
	TopicGetShtmYyyy     = "management.getShtmYyyy"
	TopicSetShtmYyyy     = "management.setShtmYyyy"
)

// Topics lists the request/reply topics, for provisioning with reply twins.
func Topics() []string {
	return []string{
		TopicGetLoginCount,
		TopicLogin,
		TopicLogout,
		TopicValidateSession,
		TopicGetShtmYyyy,
		TopicSetShtmYyyy,
	}
}

// EventTopics lists the fire-and-forget topics, provisioned without replies.
func EventTopics() []string {
	return []string{TopicLoginSuccess}
}

// Wire types.

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type LoginResult struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId,omitempty"`
}

type LogoutRequest struct {
	SessionID string `json:"sessionId"`
}

type ValidateSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type ValidateSessionResult struct {
	Valid bool `json:"valid"`
}

type LoginCountResult struct {
	Count int64 `json:"count"`
}

// Term is the current academic term. Empty strings mean not configured yet.
type Term struct {
	Shtm string `json:"shtm"`
	Yyyy string `json:"yyyy"`
}

type SetTermResult struct {
	Success bool `json:"success"`
}

// AckResult is the reply for operations that return no data.
type AckResult struct {
	Success bool `json:"success"`
}
