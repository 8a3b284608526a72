package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/metrics"
	"github.com/google/uuid"
)

// multipart parts above this size spill to temp files
const multipartMemory = 32 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, nil)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up := s.readUpload(w, r)
	outcome := metrics.OutcomeOK
	if up.Error != "" {
		outcome = metrics.OutcomeError
	}
	s.metrics.Upload(outcome)
	s.render(w, r, func(p *Page) { p.Upload = up })
}

// readUpload previews an uploaded file. It is never cached and never replaces
// the default dataset.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) *UploadView {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > s.opt.MaxUploadBytes {
			return &UploadView{Error: fmt.Sprintf("The file exceeds the %d MB upload limit.", s.opt.MaxUploadBytes>>20)}
		}
		return &UploadView{Error: "Choose a CSV file to upload."}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return &UploadView{Error: "Choose a CSV file to upload."}
	}
	defer file.Close()

	up := &UploadView{Name: header.Filename}
	t, err := s.loader.LoadReader(header.Filename, file)
	if err != nil {
		up.Error = dataset.UserMessage(err)
		return up
	}
	up.Head = Grid{Columns: t.Columns(), Rows: t.Head(s.opt.HeadRows)}
	up.Shape = "Uploaded data shape: " + t.ShapeString()
	return up
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue("feedback"))
	receipt := uuid.NewString()
	// feedback is acknowledged, never stored
	s.log.Info().Str("receipt", receipt).Int("length", len(text)).Msg("feedback received")
	s.metrics.Feedback()
	s.render(w, r, func(p *Page) {
		p.Feedback = &FeedbackView{Message: "Thank you for your feedback!", Receipt: receipt}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// render runs one render pass and writes the page. Load failures still
// produce a page; they are reported in its status block.
func (s *Server) render(w http.ResponseWriter, r *http.Request, decorate func(*Page)) {
	start := time.Now()
	p, err := s.buildPage(r.URL.Query())
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		kind, _ := dataset.KindOf(err)
		s.metrics.LoadError(kind.String())
	}
	if decorate != nil {
		decorate(p)
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		s.log.Error().Err(err).Msg("template error")
		s.metrics.ObserveRender(metrics.OutcomeError, time.Since(start))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	s.metrics.ObserveRender(outcome, time.Since(start))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
