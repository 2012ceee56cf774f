package parsing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trinity/internal/cookies"
	dErrors "trinity/pkg/domain-errors"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:72.0) Gecko/20100101 Firefox/72.0"

// Client calls the portal's JSON endpoints. Unlike the login relay there is
// no redirect handling here: every call is a single csrf-authenticated POST.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// SubjectInfo looks a course section up in the open-subject table, then makes
// a second call for its remaining-seat count. The portal keys sections by
// subject number plus class number inside a term-wide dump, so both calls
// fetch the whole table and filter locally.
func (c *Client) SubjectInfo(ctx context.Context, in SubjectInfoRequest) (*SubjectInfoResult, error) {
	if in.Csrf == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing session token")
	}

	form := url.Values{
		"quatFg":   {"INQ"},
		"posiFg":   {"10"},
		"openYyyy": {in.Yyyy},
		"openShtm": {in.Shtm},
		"campFg":   {in.CampFg},
		"sustCd":   {"%"},
		"corsCd":   {"|"},
		"danFg":    {""},
		"pobtFgCd": {"%"},
	}
	var payload struct {
		Subjects []struct {
			SbjtNo       string      `json:"sbjtNo"`
			ClssNo       string      `json:"clssNo"`
			SbjtKorNm    string      `json:"sbjtKorNm"`
			TlsnAplyRcnt json.Number `json:"tlsnAplyRcnt"`
			TlsnLmtRcnt  json.Number `json:"tlsnLmtRcnt"`
			SustCd       string      `json:"sustCd"`
		} `json:"DS_CURR_OPSB010"`
	}
	err := c.postJSON(ctx, "/stw/scsr/scoo/findOpsbOpenSubjectInq.json",
		"/stw/scsr/scoo/scooOpsbOpenSubjectInq.do", form, in.Csrf, in.Cookies, &payload)
	if err != nil {
		return nil, err
	}

	for _, subject := range payload.Subjects {
		if subject.SbjtNo != in.SujtNo || subject.ClssNo != in.ClassNo {
			continue
		}

		extraCnt, err := c.remainingSeats(ctx, in, subject.SustCd)
		if err != nil {
			return nil, err
		}

		limit := "-"
		if subject.TlsnLmtRcnt != "" {
			limit = subject.TlsnLmtRcnt.String()
		}
		return &SubjectInfoResult{
			SbjtKorNm:    subject.SbjtKorNm,
			SujtNo:       in.SujtNo,
			ClassNo:      in.ClassNo,
			TlsnAplyRcnt: subject.TlsnAplyRcnt.String(),
			TlsnLmtRcnt:  limit,
			SustCd:       subject.SustCd,
			ExtraCnt:     extraCnt,
		}, nil
	}

	return nil, dErrors.New(dErrors.CodeNotFound, "subject code or class number not found")
}

// remainingSeats returns the section's free-seat count, or "-" when the
// portal's seat table does not carry the section.
func (c *Client) remainingSeats(ctx context.Context, in SubjectInfoRequest, sustCd string) (string, error) {
	form := url.Values{
		"posiFg":   {"10"},
		"openYyyy": {in.Yyyy},
		"openShtm": {in.Shtm},
		"sustCd":   {sustCd},
		"corsCd":   {""},
		"majCd":    {"%"},
		"grade":    {"%"},
	}
	var payload struct {
		Subjects []struct {
			SbjtNo   string      `json:"sbjtNo"`
			ClssNo   string      `json:"clssNo"`
			ExtraCnt json.Number `json:"extraCnt"`
		} `json:"DS_COUR_TALA010"`
	}
	err := c.postJSON(ctx, "/stw/scsr/scoo/findTalaLessonApplicationOpsb.json",
		"/stw/scsr/scoo/scooLessonApplicationStudentReg.do", form, in.Csrf, in.Cookies, &payload)
	if err != nil {
		return "", err
	}

	for _, subject := range payload.Subjects {
		if subject.SbjtNo == in.SujtNo && subject.ClssNo == in.ClassNo {
			return subject.ExtraCnt.String(), nil
		}
	}
	return "-", nil
}

// Grades fetches the current-term grade table for the signed-in student.
func (c *Client) Grades(ctx context.Context, in GradeRequest) (*GradeResult, error) {
	if in.Csrf == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing session token")
	}

	form := url.Values{
		"posiFg":   {"10"},
		"campFg":   {in.CampFg},
		"shtmYyyy": {in.ShtmYyyy},
		"shtmFg":   {in.ShtmFg},
		"stdNo":    {in.StdNo},
	}
	var payload struct {
		Grades []struct {
			SbjtNo        string `json:"sbjtNo"`
			SbjtKorNm     string `json:"sbjtKorNm"`
			CentesScorAdm string `json:"centesScorAdm"`
			EstiYn        string `json:"estiYn"`
			GrdAdm        string `json:"grdAdm"`
		} `json:"DS_GRDE010"`
	}
	err := c.postJSON(ctx, "/stw/scsr/sgde/findCurrentGradeInq.json",
		"/stw/scsr/sgde/sgdeCurrentGradeInq.do", form, in.Csrf, in.Cookies, &payload)
	if err != nil {
		return nil, err
	}

	grades := make([]GradeInfo, 0, len(payload.Grades))
	for _, g := range payload.Grades {
		grades = append(grades, GradeInfo{
			SbjtNo:        g.SbjtNo,
			SbjtKorNm:     g.SbjtKorNm,
			CentesScorAdm: g.CentesScorAdm,
			EstiYn:        g.EstiYn,
			GrdAdm:        g.GrdAdm,
			Details:       []string{},
		})
	}
	return &GradeResult{Grades: grades}, nil
}

func (c *Client) postJSON(ctx context.Context, path, referer string, form url.Values, csrf string, jar cookies.Jar, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build portal request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("x-csrf-token", csrf)
	req.Header.Set("x-requested-with", "XMLHttpRequest")
	req.Header.Set("Origin", c.base)
	req.Header.Set("Referer", c.base+referer)
	if header := jar.Header(); header != "" {
		req.Header.Set("Cookie", header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnexpectedResponse, "portal unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("portal returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnexpectedResponse, "reading portal response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return dErrors.Wrap(dErrors.CodeUnexpectedResponse, "malformed portal payload", err)
	}
	return nil
}
