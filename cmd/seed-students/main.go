package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/database"
	"github.com/stemsi/attendance-backend/internal/logger"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
)

// Expected header, in order. guardianEmail may be left blank.
var columns = []string{"studentId", "studentName", "studentClass", "fatherName", "motherName", "studentPhoneNumber", "guardianEmail"}

func main() {
	var path string
	flag.StringVar(&path, "file", "students.csv", "CSV roster to import")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open roster")
	}
	defer f.Close()

	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open credential store")
	}
	defer store.Close()

	rosterService := service.NewRosterService(store.Students, log)

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(columns)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read header")
	}
	for i, col := range columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			log.Fatal().Strs("expected", columns).Strs("got", header).Msg("Unexpected CSV header")
		}
	}

	fmt.Printf("=== Seeding students from %s ===\n", path)

	var created, skipped, invalid int
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Int("line", line).Msg("Failed to read row")
		}

		req := model.AddStudentRequest{
			StudentID:     rec[0],
			Name:          rec[1],
			Class:         rec[2],
			FatherName:    rec[3],
			MotherName:    rec[4],
			PhoneNumber:   rec[5],
			GuardianEmail: rec[6],
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			invalid++
			log.Warn().Int("line", line).Interface("fields", validator.TranslateErrors(err)).Msg("Invalid row skipped")
			continue
		}

		if _, err := rosterService.AddStudent(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Int("line", line).Msg("Failed to create student")
		}
		created++
	}

	fmt.Printf("Done. created=%d skipped(existing)=%d invalid=%d\n", created, skipped, invalid)
}
