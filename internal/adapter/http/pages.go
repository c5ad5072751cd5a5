package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/waterpoints-service/internal/catalog"
	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	public *template.Template
	admin  *template.Template
}

func parsePages() *pages {
	funcs := template.FuncMap{
		"qrpath": qrPath,
		"pointhref": func(id string) string {
			return "/?id=" + url.QueryEscape(id)
		},
	}
	parse := func(page string) *template.Template {
		return template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	return &pages{public: parse("index.html"), admin: parse("admin.html")}
}

// marker is one map pin; the page script navigates to ?id= on click.
type marker struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type publicPage struct {
	Title      string
	State      domain.ViewState
	Success    bool
	Target     domain.MapTarget
	Markers    []marker
	IssueTypes []domain.IssueType
}

type adminPoint struct {
	domain.SelectedQrPoint
	Href string
}

type qrPanel struct {
	Point  domain.SelectedQrPoint
	Link   string
	QRPath string
}

type adminPage struct {
	Title    string
	Tab      string
	Query    string
	Points   []adminPoint
	Total    int
	Selected *qrPanel
	Reports  []domain.Report
	Notice   string
}

func qrPath(id string) string {
	return "/qr/" + url.PathEscape(id) + ".png"
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Catalog.Snapshot()
	q := r.URL.Query()

	state := domain.Idle()
	if q.Get("notice") == "sent" {
		state.Notice = report.SuccessMessage
	}
	if id := q.Get("id"); id != "" {
		if f, ok := s.locate(snap, id); ok {
			state = s.step(state.Select(f))
			if q.Get("step") == "report" {
				issue := q.Get("issue_type")
				if issue == "" {
					issue = snap.DefaultIssueType
				}
				state = s.step(state.StartReport(issue))
			}
		}
	}
	s.renderPublic(w, http.StatusOK, snap, state)
}

func (s *Server) handleReportForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	snap := s.deps.Catalog.Snapshot()
	issue := r.PostFormValue("issue_type")

	f, ok := s.locate(snap, r.PostFormValue("id"))
	if !ok {
		state := domain.Idle()
		state.Notice = report.FailureMessage
		s.renderPublic(w, http.StatusNotFound, snap, state)
		return
	}

	state := s.step(domain.Idle().Select(f))
	state = s.step(state.StartReport(issue))

	if _, err := s.deps.Submitter.Submit(r.Context(), f, issue); err != nil {
		status := http.StatusBadGateway
		if eris.Is(err, report.ErrMissingIssueType) {
			status = http.StatusUnprocessableEntity
			state.IssueType = snap.DefaultIssueType
		}
		s.renderPublic(w, status, snap, s.step(state.SubmitFailed(report.FailureMessage)))
		return
	}
	http.Redirect(w, r, "/?notice=sent", http.StatusSeeOther)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Catalog.Snapshot()
	q := r.URL.Query()

	page := adminPage{
		Title: "Beheer waterpunten",
		Tab:   "points",
		Query: q.Get("q"),
		Total: len(snap.Features),
	}
	if q.Get("tab") == "reports" {
		page.Tab = "reports"
	}

	for _, f := range domain.Filter(snap.Features, page.Query) {
		v := url.Values{"id": {f.ResolvedID}}
		if page.Query != "" {
			v.Set("q", page.Query)
		}
		page.Points = append(page.Points, adminPoint{
			SelectedQrPoint: domain.NewQrPoint(f),
			Href:            "/admin?" + v.Encode(),
		})
	}

	if id := q.Get("id"); id != "" {
		if f, ok := s.locate(snap, id); ok {
			page.Selected = &qrPanel{
				Point:  domain.NewQrPoint(f),
				Link:   domain.DeepLink(s.deps.BaseURL, f.ResolvedID),
				QRPath: qrPath(f.ResolvedID),
			}
		}
	}

	reports, err := s.deps.Reports.ListReports(r.Context())
	if err != nil {
		s.logger.Error("list reports failed", "error", err)
		page.Notice = report.FailureMessage
	}
	page.Reports = reports

	s.render(w, s.pages.admin, http.StatusOK, page)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(strings.TrimSuffix(chi.URLParam(r, "id"), ".png"))
	if err != nil || id == "" {
		http.NotFound(w, r)
		return
	}

	img, err := s.deps.QR.PNG(domain.DeepLink(s.deps.BaseURL, id))
	if err != nil {
		s.logger.Error("qr render failed", "id", id, "error", err)
		http.Error(w, "qr render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(img)
}

// step applies a view transition. A rejected transition keeps the previous
// state, which the transition already returns alongside the error.
func (s *Server) step(next domain.ViewState, err error) domain.ViewState {
	if err != nil {
		s.logger.Debug("view transition rejected", "error", err)
	}
	return next
}

func (s *Server) renderPublic(w http.ResponseWriter, status int, snap catalog.Snapshot, state domain.ViewState) {
	target := domain.OverviewTarget()
	if state.Feature != nil {
		target = domain.TargetFor(*state.Feature)
	}

	markers := make([]marker, 0, len(snap.Features))
	for _, f := range snap.Features {
		if f.Point == nil {
			continue
		}
		markers = append(markers, marker{ID: f.ResolvedID, Name: f.Name(), Lat: f.Point.Lat, Lon: f.Point.Lon})
	}

	s.render(w, s.pages.public, status, publicPage{
		Title:      "Waterpunten Gent",
		State:      state,
		Success:    state.Notice == report.SuccessMessage,
		Target:     target,
		Markers:    markers,
		IssueTypes: snap.IssueTypes,
	})
}

func (s *Server) render(w http.ResponseWriter, t *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		s.logger.Error("template render failed", "template", t.Name(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
