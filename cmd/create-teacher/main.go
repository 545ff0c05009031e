package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/attendance-backend/internal/config"
	"github.com/stemsi/attendance-backend/internal/database"
	"github.com/stemsi/attendance-backend/internal/logger"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/repository"
	"github.com/stemsi/attendance-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to Credential Store ───────────────────────────────────
	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open credential store")
	}
	defer store.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(store.Teachers, tokens, cfg.BcryptCost, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Teacher ===")

	prompt := func(label string) string {
		fmt.Print(label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	req := model.AddTeacherRequest{
		TeacherID:   prompt("Enter Teacher ID: "),
		Name:        prompt("Enter Name: "),
		Class:       prompt("Enter Class (e.g. 5A): "),
		PhoneNumber: prompt("Enter Phone Number: "),
	}
	if req.TeacherID == "" || req.Name == "" || req.Class == "" || req.PhoneNumber == "" {
		fmt.Println("Error: Teacher ID, name, class and phone number are required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input
	req.Password = string(bytePassword)
	if req.Password == "" || len(req.Password) > model.MaxPasswordBytes {
		fmt.Printf("Error: Password must be 1 to %d bytes long\n", model.MaxPasswordBytes)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	teacher, err := authService.AddTeacher(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Printf("Error: teacher ID %q already exists\n", req.TeacherID)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create teacher")
	}

	fmt.Printf("\nSuccess! Teacher '%s' (%s, class %s) created with ref: %s\n",
		teacher.Name, teacher.TeacherID, teacher.Class, teacher.ID)
}
