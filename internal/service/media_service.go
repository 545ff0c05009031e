package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/media"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaService handles profile photo uploads.
type MediaService struct {
	teachers repository.TeacherRepository
	store    media.Store
	maxBytes int64
	log      zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(teachers repository.TeacherRepository, store media.Store, maxBytes int64, log zerolog.Logger) *MediaService {
	return &MediaService{
		teachers: teachers,
		store:    store,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "media_service").Logger(),
	}
}

// UploadTeacherPhoto validates an uploaded image, stores it on the media host
// under a UUID name and records the resulting URL on the teacher.
func (s *MediaService) UploadTeacherPhoto(ctx context.Context, teacher *model.Teacher, file multipart.File, header *multipart.FileHeader) (*model.TeacherPhotoResponse, error) {
	// Validate MIME type.
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	// Validate file size.
	if header.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxBytes)
	}

	filename := "teacher-" + uuid.New().String() + ext
	url, err := s.store.Put(ctx, filename, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	if err := s.teachers.UpdatePhoto(ctx, teacher.ID, url); err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}

	s.log.Info().Str("teacher_id", teacher.TeacherID).Str("url", url).Msg("Teacher photo uploaded")
	return &model.TeacherPhotoResponse{TeacherID: teacher.TeacherID, TeacherPhotoURL: url}, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
