package web

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/formatrack/server/internal/core"
)

// handleApply processes the public application form. The form is
// multipart: text fields plus the resume and cover_letter files. Field
// validation lives in the service; the handler only shapes the request.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "formulaire invalide ou fichier trop volumineux")
		return
	}

	sub := core.Submission{
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Note:     r.FormValue("note"),
	}

	// Non-numeric ids fall through as zero and fail field validation,
	// like an absent field would.
	sub.TrainingID, _ = strconv.ParseInt(strings.TrimSpace(r.FormValue("training_id")), 10, 64)
	sub.SessionID, _ = strconv.ParseInt(strings.TrimSpace(r.FormValue("session_id")), 10, 64)

	var err error
	if sub.Resume, err = readFormFile(r, "resume"); err != nil {
		writeError(w, r, http.StatusBadRequest, "lecture du fichier resume impossible")
		return
	}
	if sub.CoverLetter, err = readFormFile(r, "cover_letter"); err != nil {
		writeError(w, r, http.StatusBadRequest, "lecture du fichier cover_letter impossible")
		return
	}

	message, err := s.service.Apply(r.Context(), sub)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": message})
}

// readFormFile loads one optional multipart file into memory. A missing
// file returns (nil, nil): required-file validation is the service's
// call, not the transport's.
func readFormFile(r *http.Request, field string) (*core.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &core.FileUpload{
		Name:        header.Filename,
		ContentType: contentType(header),
		Data:        data,
	}, nil
}

func contentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

// handleStatus is the candidate status lookup by email.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	views, err := s.service.StatusFor(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
