package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termfolio/console"
	"pkt.systems/termfolio/internal/shell"
	"pkt.systems/termfolio/schema"
)

const (
	shutdownTimeout = 5 * time.Second
	maxExecBody     = 4 << 10
	defaultExecCols = 80
	maxExecCols     = 500
	highlightCount  = 2
)

// Server serves the plain portfolio page and the JSON API.
type Server struct {
	cfg      Config
	content  shell.ContentSource
	basePath string
	baseHref string
	now      func() time.Time
}

// NewServer constructs an HTTP server.
func NewServer(cfg Config, content shell.ContentSource) *Server {
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = "termfolio"
	}
	return &Server{
		cfg:      cfg,
		content:  content,
		basePath: normalizeBasePath(cfg.BasePath),
		baseHref: baseHref(cfg.BasePath),
		now:      time.Now,
	}
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/exec", s.handleExec)

	handler := withRequestLogging(mux)
	if s.basePath == "" {
		return handler
	}
	prefix := s.basePath
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	root.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != prefix {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, prefix+"/", http.StatusTemporaryRedirect)
	})
	return root
}

type pageData struct {
	Title      string
	BaseHref   string
	SSHCommand string
	Loaded     bool
	Content    schema.Content
	Projects   []projectView
	Contacts   []contactView
	Year       int
}

type projectView struct {
	Name       string
	Link       string
	Tagline    string
	Highlights []string
	Tech       []string
	Period     string
}

type contactView struct {
	Label    string
	Href     template.URL
	External bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	data := pageData{
		Title:      s.cfg.Title,
		BaseHref:   s.baseHref,
		SSHCommand: s.cfg.SSHCommand,
		Year:       s.now().Year(),
	}
	data.Content, data.Loaded = s.snapshot()
	if data.Loaded {
		data.Projects = projectViews(data.Content.Projects)
		data.Contacts = contactViews(data.Content.Links)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		pslog.Ctx(r.Context()).Warn("http page render failed", "err", err)
	}
}

func projectViews(projects []schema.Project) []projectView {
	out := make([]projectView, 0, len(projects))
	for _, p := range projects {
		highlights := p.Description
		if len(highlights) > highlightCount {
			highlights = highlights[:highlightCount]
		}
		out = append(out, projectView{
			Name:       p.Name,
			Link:       p.Link,
			Tagline:    p.Tagline,
			Highlights: highlights,
			Tech:       p.Tech,
			Period:     p.Period,
		})
	}
	return out
}

func contactViews(links schema.Links) []contactView {
	var out []contactView
	if addr := strings.TrimSpace(links.Email); addr != "" {
		out = append(out, contactView{Label: "Email", Href: template.URL("mailto:" + url.PathEscape(addr))})
	}
	if phone := strings.TrimSpace(links.Phone); phone != "" {
		out = append(out, contactView{Label: "Message", Href: template.URL("sms:" + url.PathEscape(phone))})
	}
	for _, l := range []struct{ label, href string }{
		{"X", links.X},
		{"LinkedIn", links.LinkedIn},
		{"GitHub", links.GitHub},
		{"Instagram", links.Instagram},
	} {
		if !isWebURL(l.href) {
			continue
		}
		out = append(out, contactView{Label: l.label, Href: template.URL(l.href), External: true})
	}
	return out
}

func isWebURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

func (s *Server) snapshot() (schema.Content, bool) {
	if s.content == nil {
		return schema.Content{}, false
	}
	return s.content.Snapshot()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, loaded := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "content_loaded": loaded})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	content, ok := s.snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, schema.ErrContentNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// ExecRequest runs one command line through the portfolio interpreter.
type ExecRequest struct {
	Command string `json:"command"`
	// Cols is the width the output is sized for; zero means 80.
	Cols int `json:"cols,omitempty"`
	// Plain strips ANSI escapes from the returned records.
	Plain bool `json:"plain,omitempty"`
}

// ExecResponse carries the records the command produced.
type ExecResponse struct {
	Records []schema.OutputRecord `json:"records"`
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	log := pslog.Ctx(r.Context())
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	var req ExecRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxExecBody), &req); err != nil {
		log.Warn("http exec decode failed", "err", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", schema.ErrInvalidRequest, err))
		return
	}
	if req.Cols < 0 || req.Cols > maxExecCols {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: cols must be between 0 and %d", schema.ErrInvalidRequest, maxExecCols))
		return
	}
	cols := req.Cols
	if cols == 0 {
		cols = defaultExecCols
	}
	interp := shell.New(s.content, shell.WithColumns(func() int { return cols }))
	records := interp.Execute(req.Command)
	if records == nil {
		records = []schema.OutputRecord{}
	}
	if req.Plain {
		for i := range records {
			records[i].Content = console.StripCodes(records[i].Content)
		}
	}
	log.Debug("http exec", "command", req.Command, "records", len(records))
	writeJSON(w, http.StatusOK, ExecResponse{Records: records})
}

func decodeJSON(body io.Reader, target any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
