// Package parsing scrapes the portal's JSON endpoints for course and grade
// data. All calls need an established session: the csrf token plus the
// accumulated portal cookies travel inside every payload.
package parsing

import "trinity/internal/cookies"

// Topics served by the parsing worker.
const (
	TopicSubjectInfo = "parsing.subjectInfo"
	TopicGrade       = "parsing.grade"
)

// Topics lists every topic this worker consumes, for provisioning.
func Topics() []string {
	return []string{TopicSubjectInfo, TopicGrade}
}

// Wire types. Field names mirror the portal's own record layout so payloads
// pass through without remapping.

type SubjectInfoRequest struct {
	Csrf    string      `json:"csrf"`
	Cookies cookies.Jar `json:"cookies"`
	SujtNo  string      `json:"sujtNo"`
	ClassNo string      `json:"classNo"`
	CampFg  string      `json:"campFg"`
	Shtm    string      `json:"shtm"`
	Yyyy    string      `json:"yyyy"`
}

type SubjectInfoResult struct {
	SbjtKorNm    string `json:"sbjtKorNm"`
	SujtNo       string `json:"sujtNo"`
	ClassNo      string `json:"classNo"`
	TlsnAplyRcnt string `json:"tlsnAplyRcnt"`
	TlsnLmtRcnt  string `json:"tlsnLmtRcnt"`
	SustCd       string `json:"sustCd"`
	ExtraCnt     string `json:"extraCnt"`
}

type GradeRequest struct {
	Csrf     string      `json:"csrf"`
	Cookies  cookies.Jar `json:"cookies"`
	CampFg   string      `json:"campFg"`
	ShtmYyyy string      `json:"shtmYyyy"`
	ShtmFg   string      `json:"shtmFg"`
	StdNo    string      `json:"stdNo"`
}

type GradeInfo struct {
	SbjtNo        string   `json:"sbjtNo,omitempty"`
	SbjtKorNm     string   `json:"sbjtKorNm,omitempty"`
	CentesScorAdm string   `json:"centesScorAdm,omitempty"`
	EstiYn        string   `json:"estiYn,omitempty"`
	GrdAdm        string   `json:"grdAdm,omitempty"`
	Details       []string `json:"details"`
}

type GradeResult struct {
	Grades []GradeInfo `json:"grades"`
}
