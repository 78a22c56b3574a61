package server

import (
	"bytes"
	"net/http"

	"github.com/cleancity/bugbusters/pkg/config"
)

// RoleCookie carries the signed-in user's role so the admin route can be
// decided on the server. The login page sets it next to the storage token.
const RoleCookie = "cc_role"

// PickupRequest is one row of the dashboard's request table.
type PickupRequest struct {
	ID       string `json:"id"`
	Resident string `json:"resident"`
	City     string `json:"city"`
	Area     string `json:"area"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// Location is the text shown in the location column.
func (p PickupRequest) Location() string {
	return p.Area + ", " + p.City
}

// SampleRequests is the fixed data set behind the dashboard.
var SampleRequests = []PickupRequest{
	{ID: "REQ-1001", Resident: "Achieng Otieno", City: "Nairobi", Area: "Westlands", Date: "2025-03-03", Status: "Pending"},
	{ID: "REQ-1002", Resident: "Kiprono Kemboi", City: "Eldoret", Area: "Langas", Date: "2025-03-04", Status: "Scheduled"},
	{ID: "REQ-1003", Resident: "Wanjiru Kamau", City: "Nairobi", Area: "Kibera", Date: "2025-03-04", Status: "Completed"},
	{ID: "REQ-1004", Resident: "Chebet Rotich", City: "Eldoret", Area: "Kapsoya", Date: "2025-03-05", Status: "Pending"},
	{ID: "REQ-1005", Resident: "Hassan Mwinyi", City: "Mombasa", Area: "Nyali", Date: "2025-03-06", Status: "Scheduled"},
	{ID: "REQ-1006", Resident: "Ouma Odhiambo", City: "Kisumu", Area: "Milimani", Date: "2025-03-07", Status: "Pending"},
}

// Cities offered by the dashboard's location filter.
var Cities = []string{"Nairobi", "Eldoret", "Mombasa", "Kisumu"}

// FeedbackReasons offered by the feedback form.
var FeedbackReasons = []string{"Late Pickup", "Missed Pickup", "Rude Staff", "Other"}

type pageData struct {
	Title    string
	Bugs     Bugs
	Requests []PickupRequest
	Cities   []string
	Reasons  []string
	Denied   bool
}

func (s *Server) data(title string) pageData {
	return pageData{
		Title:    title,
		Bugs:     s.bugs,
		Requests: SampleRequests,
		Cities:   Cities,
		Reasons:  FeedbackReasons,
	}
}

var pageTitles = map[string]string{
	"login":    "Log in",
	"register": "Create account",
	"pickup":   "Request a pickup",
	"feedback": "Pickup feedback",
}

// handlePage renders a page whose behavior lives entirely in the browser.
func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, name, s.data(pageTitles[name]))
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "dashboard", s.data("Dashboard"))
}

// handleAdmin decides access from the role cookie. Anonymous visitors go to
// the login page; non-admins get a 403 unless the open-admin defect is on.
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RoleCookie)
	if err != nil || cookie.Value == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	d := s.data("Admin")
	if cookie.Value != "admin" && !s.bugs.Has(config.BugOpenAdmin) {
		d.Denied = true
		s.render(w, http.StatusForbidden, "admin", d)
		return
	}
	s.render(w, http.StatusOK, "admin", d)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, d pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, d); err != nil {
		s.logger.Error("render failed", "page", name, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
