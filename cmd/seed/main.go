package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/study-crew/peer-assist-api/internal/models"
	"github.com/study-crew/peer-assist-api/internal/repository"
	"github.com/study-crew/peer-assist-api/pkg/config"
	"github.com/study-crew/peer-assist-api/pkg/database"
	"github.com/study-crew/peer-assist-api/pkg/logger"
)

type seedCourse struct {
	name       string
	code       string
	year       string
	semester   int
	creditHour int
	program    string
	desc       string
}

var courses = []seedCourse{
	{"Fundamentals of Programming", "SWEN131", "Year I", 1, 3, "Software Engineering", "Introduction to programming concepts and problem-solving using a high-level language."},
	{"Discrete Mathematics", "MATH161", "Year I", 1, 3, "Software Engineering", "Mathematical foundations for computer science including sets, logic, and combinatorics."},
	{"Object Oriented Programming", "SWEN132", "Year I", 2, 4, "Software Engineering", "Principles and practice of object-oriented programming."},
	{"Linear Algebra", "MATH164", "Year I", 2, 3, "Software Engineering", "Vector spaces, matrices, linear transformations, and applications."},
	{"Fundamentals of Database Systems", "SWEN241", "Year II", 1, 3, "Software Engineering", "Introduction to database design, implementation, and management."},
	{"Data Structures and Algorithms", "SWEN233", "Year II", 1, 3, "Software Engineering", "Study of fundamental data structures and algorithm design."},
	{"Calculus", "MATH261", "Year II", 1, 3, "Software Engineering", "Differential and integral calculus with applications."},
	{"Advanced Programming", "SWEN232", "Year II", 2, 4, "Software Engineering", "Advanced programming concepts and techniques."},
	{"Operating Systems", "SWEN252", "Year II", 2, 3, "Software Engineering", "Operating system concepts, design, and implementation."},
	{"Web Systems and Services", "SWEN381", "Year III", 1, 3, "Software Engineering", "Web technologies, web services, and web application development."},
	{"Mobile Application Development", "SWEN331", "Year III", 1, 3, "Software Engineering", "Development of applications for mobile platforms."},
	{"Introduction to Artificial Intelligence", "SWEN363", "Year III", 1, 3, "Software Engineering", "Fundamentals of artificial intelligence and machine learning."},
	{"Software Quality Assurance and Testing", "SWEN322", "Year III", 2, 3, "Software Engineering", "Software testing techniques, quality assurance, and validation."},
}

type seedUser struct {
	name         string
	email        string
	password     string
	role         models.UserRole
	academicYear int
	bio          string
	telegram     string
}

var users = []seedUser{
	{"Hanna Tesfaye", "hanna@example.com", "password123", models.RoleAssistant, 4, "Senior student tutoring programming and databases.", "hanna_t"},
	{"Dawit Alemu", "dawit@example.com", "password123", models.RoleAssistant, 3, "Math enthusiast, happy to help with calculus.", "dawit_a"},
	{"Selam Bekele", "selam@example.com", "password123", models.RoleLearner, 1, "", "selam_b"},
	{"Yonas Girma", "yonas@example.com", "password123", models.RoleLearner, 2, "", ""},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	now := time.Now().UTC()

	for _, c := range courses {
		course := &models.Course{
			Name:        c.name,
			Code:        c.code,
			Year:        c.year,
			Semester:    c.semester,
			CreditHour:  c.creditHour,
			Program:     c.program,
			Description: c.desc,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := courseRepo.Create(ctx, course); err != nil {
			sugar.Fatalw("failed to seed course", "code", c.code, "error", err)
		}
	}
	sugar.Infow("seeded courses", "count", len(courses))

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			sugar.Fatalw("failed to hash password", "email", u.email, "error", err)
		}
		user := &models.User{
			Name:             u.name,
			Email:            u.email,
			PasswordHash:     string(hash),
			Role:             u.role,
			AcademicYear:     u.academicYear,
			Bio:              u.bio,
			TelegramUsername: u.telegram,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			sugar.Fatalw("failed to seed user", "email", u.email, "error", err)
		}
	}
	sugar.Infow("seeded users", "count", len(users))
}
