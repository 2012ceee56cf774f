package gateway

import (
	"net/http"

	"trinity/internal/bus"
	"trinity/internal/parsing"
	"trinity/internal/platform/middleware"
	"trinity/internal/searchlog"
)

type subjectInfoBody struct {
	SujtNo  string `json:"sujtNo"`
	ClassNo string `json:"classNo"`
	CampFg  string `json:"campFg"`
	Shtm    string `json:"shtm"`
	Yyyy    string `json:"yyyy"`
}

// HandleSubjectInfo proxies a course section lookup. Every successful lookup
// is also reported to the search log, fire-and-forget.
func (h *Handler) HandleSubjectInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := decodeJSON[subjectInfoBody](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[parsing.SubjectInfoResult](ctx, h.requester, parsing.TopicSubjectInfo, parsing.SubjectInfoRequest{
		Csrf:    cookieValue(r, cookieSessionToken),
		Cookies: portalJar(r),
		SujtNo:  body.SujtNo,
		ClassNo: body.ClassNo,
		CampFg:  body.CampFg,
		Shtm:    body.Shtm,
		Yyyy:    body.Yyyy,
	}, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.requester.Emit(ctx, searchlog.TopicSubjectSearch, searchlog.Entry{
		ClassKrName: result.SbjtKorNm,
		ClassId:     result.SujtNo,
		ClassNo:     result.ClassNo,
	}); err != nil {
		h.logger.WarnContext(ctx, "subject search log notification failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "subjectInfo": result})
}

type gradeBody struct {
	CampFg   string `json:"campFg"`
	ShtmYyyy string `json:"shtmYyyy"`
	ShtmFg   string `json:"shtmFg"`
	StdNo    string `json:"stdNo"`
}

// HandleGrade proxies a current-term grade lookup.
func (h *Handler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[gradeBody](w, r, h.logger)
	if !ok {
		return
	}

	result, err := bus.Call[parsing.GradeResult](r.Context(), h.requester, parsing.TopicGrade, parsing.GradeRequest{
		Csrf:     cookieValue(r, cookieSessionToken),
		Cookies:  portalJar(r),
		CampFg:   body.CampFg,
		ShtmYyyy: body.ShtmYyyy,
		ShtmFg:   body.ShtmFg,
		StdNo:    body.StdNo,
	}, h.timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "grades": result.Grades})
}
