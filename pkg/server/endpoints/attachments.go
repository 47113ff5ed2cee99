package endpoints

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/metrics"
	"github.com/bcgov/restoration-tracker/pkg/model"
	"github.com/bcgov/restoration-tracker/pkg/objectstore"
	"github.com/bcgov/restoration-tracker/pkg/server"
	"github.com/bcgov/restoration-tracker/pkg/server/store"
)

// multipart form parts held in memory before spilling to disk
const formMemory = 8 << 20

// RegisterAttachmentEndpoints registers attachment upload, listing, signed
// downloads and deletion.
func RegisterAttachmentEndpoints(s *server.Server) {
	attachments := s.AttachmentsStore
	r := s.API.PathPrefix("/project/{projectId}/attachments").Subrouter()

	r.Handle("/upload", guard(s, projectEditor,
		handleUploadAttachment(attachments, s.Objects, s.Metrics, s.Config.AttachmentMaxBytes))).Methods("POST")
	r.Handle("/list", guard(s, projectReader(s), handleListAttachments(attachments))).Methods("GET")
	r.Handle("/{attachmentId}/signed-url", guard(s, projectReader(s), handleSignAttachment(attachments, s.Signer))).Methods("GET")
	r.Handle("/{attachmentId}/delete", guard(s, projectEditor, handleDeleteAttachment(attachments, s.Objects))).Methods("DELETE")

	s.API.HandleFunc(strings.TrimPrefix(objectstore.DownloadPath, server.APIPrefix),
		handleDownload(s.Signer, s.Objects)).Methods("GET")
}

func handleUploadAttachment(attachments store.AttachmentsStore, objects objectstore.Store, m *metrics.Metrics, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formMemory)
		if err := r.ParseMultipartForm(formMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				apierror.Write(w, apierror.BadRequest("File too large", fmt.Sprintf("maximum size is %d bytes", maxBytes)))
				return
			}
			apierror.Write(w, apierror.BadRequest("Invalid multipart request", err.Error()))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("media")
		if err != nil {
			apierror.Write(w, apierror.BadRequest("Missing required parameter", "media"))
			return
		}
		defer file.Close()

		if header.Size > maxBytes {
			apierror.Write(w, apierror.BadRequest("File too large", fmt.Sprintf("maximum size is %d bytes", maxBytes)))
			return
		}

		fileName, ok := clientFileName(header.Filename)
		if !ok {
			apierror.Write(w, apierror.BadRequest("Invalid file name", header.Filename))
			return
		}

		a := model.Attachment{
			UUID:     uuid.NewString(),
			FileName: fileName,
			FileType: attachmentType(fileName, header.Header.Get("Content-Type")),
			Size:     header.Size,
		}
		a.Key = objectstore.AttachmentKey(projectID, a.UUID, a.FileName)
		if v := r.FormValue("title"); v != "" {
			a.Title = &v
		}
		if v := r.FormValue("description"); v != "" {
			a.Description = &v
		}

		// A re-upload keeps the existing row's key, so written may differ from a.Key.
		var written string
		saved, err := attachments.UpsertAttachment(r.Context(), projectID, a, currentUserID(r), func(key string) error {
			n, err := objects.Put(r.Context(), key, io.LimitReader(file, maxBytes))
			if err != nil {
				return err
			}
			written = key
			m.ObserveUpload(n)
			return nil
		})
		if err != nil {
			if written == a.Key {
				if derr := objects.Delete(r.Context(), written); derr != nil && !errors.Is(derr, objectstore.ErrNotFound) {
					zap.L().Warn("failed to remove object for rejected upload",
						zap.String("key", written),
						zap.Error(derr),
					)
				}
			}
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, saved)
	}
}

// clientFileName reduces a client supplied name to its last path element,
// treating backslashes as separators.
func clientFileName(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "", false
	}
	return base, true
}

// attachmentType prefers the extension's registered type.
func attachmentType(fileName, declared string) string {
	if t := mime.TypeByExtension(path.Ext(fileName)); t != "" {
		return t
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}

func handleListAttachments(attachments store.AttachmentsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		list, err := attachments.ListAttachments(r.Context(), projectID)
		if err != nil {
			apierror.Write(w, storeError(err, "Project not found"))
			return
		}
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleSignAttachment(attachments store.AttachmentsStore, signer *objectstore.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		attachmentID, err := intVar(r, "attachmentId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		a, err := attachments.GetAttachment(r.Context(), projectID, attachmentID)
		if err != nil {
			apierror.Write(w, storeError(err, "Attachment not found"))
			return
		}

		signed, err := signer.Sign(a.Key, a.FileName)
		if err != nil {
			apierror.Write(w, apierror.Internal("Failed to sign download url", err))
			return
		}
		respondWithJSON(w, http.StatusOK, signed)
	}
}

// handleDownload streams an object named by a signed token. The token is
// the only credential.
func handleDownload(signer *objectstore.Signer, objects objectstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			apierror.Write(w, apierror.Unauthorized("Access Denied", "missing download token"))
			return
		}

		key, fileName, err := signer.Verify(token)
		if err != nil {
			apierror.Write(w, apierror.Forbidden("Access Denied", "invalid or expired download token"))
			return
		}

		obj, err := objects.Open(r.Context(), key)
		if err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				apierror.Write(w, apierror.NotFound("Attachment not found"))
				return
			}
			apierror.Write(w, apierror.Internal("Failed to open attachment", err))
			return
		}
		defer obj.Close()

		w.Header().Set("Content-Type", attachmentType(fileName, ""))
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj); err != nil {
			zap.L().Warn("attachment download interrupted", zap.String("key", key), zap.Error(err))
		}
	}
}

func handleDeleteAttachment(attachments store.AttachmentsStore, objects objectstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := intVar(r, "projectId")
		if err != nil {
			apierror.Write(w, err)
			return
		}
		attachmentID, err := intVar(r, "attachmentId")
		if err != nil {
			apierror.Write(w, err)
			return
		}

		key, err := attachments.DeleteAttachment(r.Context(), projectID, attachmentID)
		if err != nil {
			apierror.Write(w, storeError(err, "Attachment not found"))
			return
		}
		if err := objects.Delete(r.Context(), key); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
			zap.L().Warn("failed to delete attachment object", zap.String("key", key), zap.Error(err))
		}
		w.WriteHeader(http.StatusOK)
	}
}
