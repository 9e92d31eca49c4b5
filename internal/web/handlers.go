package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"centerhub/internal/browser"
	"centerhub/internal/center"
	"centerhub/internal/dashboard"
	apperrors "centerhub/internal/errors"
	"centerhub/internal/filter"
)

// allUpazilas titles a summary that spans every upazila.
const allUpazilas = "সব উপজেলা"

type centersResponse struct {
	Count      int              `json:"count"`
	Centers    []center.Record  `json:"centers"`
	Selection  filter.Selection `json:"selection"`
	SearchHint string           `json:"searchHint"`
	RefreshID  string           `json:"refreshId"`
	FetchedAt  *time.Time       `json:"fetchedAt,omitempty"`
}

type actionLink struct {
	URL       string `json:"url,omitempty"`
	Available bool   `json:"available"`
}

type centerResponse struct {
	Center  center.Record                 `json:"center"`
	Actions map[browser.Action]actionLink `json:"actions"`
}

type optionsResponse struct {
	Dimension string   `json:"dimension"`
	Options   []string `json:"options"`
}

type refreshResponse struct {
	Records   int               `json:"records"`
	RefreshID string            `json:"refreshId,omitempty"`
	SheetID   string            `json:"sheetId"`
	EditURL   string            `json:"editUrl,omitempty"`
	Notice    *dashboard.Notice `json:"notice,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type sourceRequest struct {
	Source string `json:"source"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Notice *dashboard.Notice `json:"notice,omitempty"`
}

// SelectionFromQuery reads search and per-dimension filters from query
// parameters keyed by the dimension aliases (upazila, union, risk, type,
// police, bgb, army, rab, voters). Absent keys mean All.
func SelectionFromQuery(q url.Values) (filter.Selection, error) {
	sel := filter.NewSelection()
	for _, d := range filter.Dimensions {
		v := strings.TrimSpace(q.Get(d.Alias()))
		if v == "" {
			continue
		}
		if d == filter.TotalVoters && v != filter.All {
			vr, err := filter.ParseVoterRange(v)
			if err != nil {
				return sel, err
			}
			v = string(vr)
		}
		sel = sel.With(d, v)
	}
	return sel.WithSearch(strings.TrimSpace(q.Get("search"))), nil
}

func (s *Server) handleCenters(w http.ResponseWriter, r *http.Request) {
	sel, err := SelectionFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	snap := s.dash.Snapshot()
	records := filter.Apply(snap.Records, sel)
	resp := centersResponse{
		Count:      len(records),
		Centers:    records,
		Selection:  sel,
		SearchHint: filter.SearchHint(sel),
		RefreshID:  snap.RefreshID,
	}
	if !snap.FetchedAt.IsZero() {
		resp.FetchedAt = &snap.FetchedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCenter(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.dash.Find(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "center not found", nil)
		return
	}

	actions := make(map[browser.Action]actionLink, len(browser.Actions))
	for _, a := range browser.Actions {
		link, ok := browser.Resolve(rec, a)
		actions[a] = actionLink{URL: link, Available: ok}
	}
	writeJSON(w, http.StatusOK, centerResponse{Center: rec, Actions: actions})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	d, err := filter.ParseDimension(mux.Vars(r)["dimension"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	sel, err := SelectionFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{Dimension: d.Alias(), Options: s.dash.OptionsFor(sel, d)})
}

func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Tabs())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dash.Sync(r.Context())
	s.writeRefresh(w, snap, err)
}

func (s *Server) handleSourceShow(w http.ResponseWriter, r *http.Request) {
	id := s.dash.SheetID()
	resp := refreshResponse{Records: len(s.dash.Snapshot().Records), SheetID: id}
	if s.editURL != nil {
		resp.EditURL = s.editURL(id)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSource switches the spreadsheet and loads it right away.
func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	if _, err := s.dash.UpdateSource(req.Source); err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsInvalidSource(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error(), s.currentNotice())
		return
	}

	snap, err := s.dash.Refresh(r.Context())
	s.writeRefresh(w, snap, err)
}

func (s *Server) writeRefresh(w http.ResponseWriter, snap dashboard.Snapshot, err error) {
	resp := refreshResponse{
		Records:   len(snap.Records),
		RefreshID: snap.RefreshID,
		SheetID:   s.dash.SheetID(),
		Notice:    s.currentNotice(),
	}
	if s.editURL != nil {
		resp.EditURL = s.editURL(resp.SheetID)
	}

	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		switch {
		case errors.Is(err, dashboard.ErrStale):
			status = http.StatusConflict
		case apperrors.IsFetch(err):
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleNotice(w http.ResponseWriter, r *http.Request) {
	n := s.currentNotice()
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleSummary renders the filtered records as a PNG. Images are cached per
// refresh and query, so a new refresh never serves an old table.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := SelectionFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	title := strings.TrimSpace(q.Get("title"))
	if title == "" {
		title = allUpazilas
		if u := sel.Get(filter.Upazila); u != filter.All {
			title = u
		}
	}

	snap := s.dash.Snapshot()
	key := summaryKey(snap.RefreshID, sel, title)
	if cached, ok := s.summary.Get(key); ok {
		writePNG(w, cached.([]byte))
		return
	}

	records := filter.Apply(snap.Records, sel)
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no centers match", nil)
		return
	}
	png, err := s.render.RenderTable(records, title)
	if err != nil {
		s.logger.Error("❌ Failed to render summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed", nil)
		return
	}
	s.summary.SetDefault(key, png)
	writePNG(w, png)
}

func (s *Server) currentNotice() *dashboard.Notice {
	n, ok := s.dash.Notice()
	if !ok {
		return nil
	}
	return &n
}

func summaryKey(refreshID string, sel filter.Selection, title string) string {
	var sb strings.Builder
	sb.WriteString(refreshID)
	for _, d := range filter.Dimensions {
		sb.WriteString("|")
		sb.WriteString(sel.Get(d))
	}
	sb.WriteString("|")
	sb.WriteString(strings.ToLower(sel.Search))
	sb.WriteString("|")
	sb.WriteString(title)
	return sb.String()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, notice *dashboard.Notice) {
	writeJSON(w, status, errorResponse{Error: msg, Notice: notice})
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
