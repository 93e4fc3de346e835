package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"snipdrop/internal/service"
	"snipdrop/internal/store"
)

// RegisterRoutes attaches all HTTP routes. db may be nil when the active
// backend is not PostgreSQL; the health endpoint then skips the DB probe.
func RegisterRoutes(app *fiber.App, db *sql.DB, snippets service.SnippetService, files service.FileService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/api/code", GetCode(snippets))
	app.Put("/api/code", UpdateCode(snippets))

	app.Get("/api/files", ListFiles(files))
	app.Post("/api/files/upload", UploadFile(files))
	app.Post("/api/files", CreateFileRecord(files))
	app.Delete("/api/files/:id", DeleteFile(files))

	app.Post("/api/upload/token", UploadToken(files))
	app.Get("/api/upload/config", UploadConfig(files))

	app.Get("/objects/*", DownloadObject(files))
}

// HealthCheck probes DB connectivity when a database is wired in.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the bare liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// GetCode returns the shared document, creating the empty default on first
// read.
func GetCode(svc service.SnippetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

type updateCodeRequest struct {
	Content  *string `json:"content"`
	Language *string `json:"language"`
}

// UpdateCode applies a partial update to the shared document.
func UpdateCode(svc service.SnippetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateCodeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON with optional string fields content and language")
		}
		doc, err := svc.Update(c.UserContext(), store.DocumentUpdate{
			Content:  req.Content,
			Language: req.Language,
		})
		if err != nil {
			if errors.Is(err, service.ErrEmptyUpdate) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "at least one of content or language is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// ListFiles returns the file catalog.
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(records)
	}
}

type uploadFileRequest struct {
	Filename string `json:"filename"`
	File     string `json:"file"`
}

// UploadFile is the server-mediated upload path: base64 bytes in, storage
// reference out. The catalog record is created by a follow-up POST
// /api/files, shared with the client-to-store path.
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadFileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON")
		}
		if req.Filename == "" || req.File == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "filename and file are required")
		}
		res, err := svc.UploadDirect(c.UserContext(), req.Filename, req.File)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

type createFileRequest struct {
	FileURL  string `json:"fileURL"`
	Filename string `json:"filename"`
	FileSize string `json:"fileSize"`
}

// CreateFileRecord records metadata for an already-stored object.
func CreateFileRecord(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON")
		}
		if req.FileURL == "" || req.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "fileURL and filename are required")
		}
		size, err := service.ParseFileSize(req.FileSize)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "fileSize must be a decimal string")
		}
		rec, err := svc.CreateRecord(c.UserContext(), req.FileURL, req.Filename, size)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// DeleteFile removes a catalog entry; byte cleanup behind it is best-effort.
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"message": "file deleted"})
	}
}

type uploadTokenRequest struct {
	Filename string `json:"filename"`
}

// UploadToken issues a short-lived direct-upload authorization (presigned
// PUT) for the client-to-store path.
func UploadToken(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadTokenRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be JSON")
		}
		if req.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "filename is required")
		}
		res, err := svc.UploadToken(c.UserContext(), req.Filename)
		if err != nil {
			if errors.Is(err, service.ErrBlobDisabled) {
				return writeError(c, fiber.StatusBadRequest, "BLOB_NOT_CONFIGURED", "direct uploads require a remote object store")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// UploadConfig tells the client which upload path to use.
func UploadConfig(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Config())
	}
}

// DownloadObject streams a stored file matched by the tolerant path lookup.
func DownloadObject(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fragment := c.Params("*")
		if fragment == "" {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "object not found")
		}
		rc, info, err := svc.OpenByPath(c.UserContext(), fragment)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "object not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Set(fiber.HeaderContentType, info.ContentType)
		if info.Size > 0 {
			return c.SendStream(rc, int(info.Size))
		}
		return c.SendStream(rc)
	}
}
