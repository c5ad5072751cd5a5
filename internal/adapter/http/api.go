package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/waterpoints-service/internal/catalog"
	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/report"
)

type pointResponse struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	Name       string            `json:"name"`
	Address    string            `json:"address"`
	Lat        *float64          `json:"lat,omitempty"`
	Lon        *float64          `json:"lon,omitempty"`
	Properties domain.Properties `json:"properties"`
}

type pointsResponse struct {
	Points   []pointResponse        `json:"points"`
	Sources  []catalog.SourceStatus `json:"sources"`
	LoadedAt time.Time              `json:"loaded_at"`
}

type selectionResponse struct {
	Point  pointResponse    `json:"point"`
	Target domain.MapTarget `json:"target"`
}

type issueTypesResponse struct {
	IssueTypes []domain.IssueType `json:"issue_types"`
	Default    string             `json:"default"`
}

type createReportRequest struct {
	WaterpuntID string `json:"waterpunt_id"`
	IssueType   string `json:"issue_type"`
}

type createReportResponse struct {
	Report  domain.Report `json:"report"`
	Message string        `json:"message"`
}

type adminPointResponse struct {
	domain.SelectedQrPoint
	Link   string `json:"link"`
	QRPath string `json:"qr_path"`
}

func toPointResponse(f domain.Feature) pointResponse {
	p := pointResponse{
		ID:         f.ResolvedID,
		Source:     f.Source,
		Name:       f.Name(),
		Address:    f.Address(),
		Properties: f.Properties,
	}
	if f.Point != nil {
		lat, lon := f.Point.Lat, f.Point.Lon
		p.Lat, p.Lon = &lat, &lon
	}
	return p
}

func (s *Server) handleListPoints(w http.ResponseWriter, _ *http.Request) {
	snap := s.deps.Catalog.Snapshot()
	points := make([]pointResponse, 0, len(snap.Features))
	for _, f := range snap.Features {
		points = append(points, toPointResponse(f))
	}
	writeJSON(w, http.StatusOK, pointsResponse{
		Points:   points,
		Sources:  snap.Sources,
		LoadedAt: snap.LoadedAt,
	})
}

func (s *Server) handleGetPoint(w http.ResponseWriter, r *http.Request) {
	f, ok := s.locate(s.deps.Catalog.Snapshot(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "point not found")
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{
		Point:  toPointResponse(f),
		Target: domain.TargetFor(f),
	})
}

func (s *Server) handleIssueTypes(w http.ResponseWriter, _ *http.Request) {
	snap := s.deps.Catalog.Snapshot()
	types := snap.IssueTypes
	if types == nil {
		types = []domain.IssueType{}
	}
	writeJSON(w, http.StatusOK, issueTypesResponse{IssueTypes: types, Default: snap.DefaultIssueType})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.deps.Reports.ListReports(r.Context())
	if err != nil {
		s.logger.Error("list reports failed", "error", err)
		writeError(w, http.StatusBadGateway, report.FailureMessage)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IssueType == "" {
		writeError(w, http.StatusBadRequest, report.ErrMissingIssueType.Error())
		return
	}

	f, ok := s.locate(s.deps.Catalog.Snapshot(), req.WaterpuntID)
	if !ok {
		writeError(w, http.StatusNotFound, "point not found")
		return
	}

	stored, err := s.deps.Submitter.Submit(r.Context(), f, req.IssueType)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createReportResponse{Report: stored, Message: report.SuccessMessage})
	case eris.Is(err, report.ErrMissingIssueType), eris.Is(err, report.ErrMissingPoint):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, report.FailureMessage)
	}
}

func (s *Server) handleAdminPoints(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Catalog.Snapshot()
	matches := domain.Filter(snap.Features, r.URL.Query().Get("q"))

	out := make([]adminPointResponse, 0, len(matches))
	for _, f := range matches {
		out = append(out, adminPointResponse{
			SelectedQrPoint: domain.NewQrPoint(f),
			Link:            domain.DeepLink(s.deps.BaseURL, f.ResolvedID),
			QRPath:          qrPath(f.ResolvedID),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
